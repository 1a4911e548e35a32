// Package pipeline turns one track log into a self-describing output
// bundle: GPX track, flat point table, optional FIT activity, optional
// source copy and a manifest tying them together.
package pipeline

import (
	"log/slog"

	"voxtrack"
)

// BundleFormatVersion identifies the bundle layout written by Run.
const BundleFormatVersion = "voxtrack_bundle_v1"

// Point table formats accepted by Options.Format.
const (
	FormatParquet = "parquet"
	FormatCSV     = "csv"
)

// Options configures a single conversion run.
type Options struct {
	// LogPath is the CSV track log to convert.
	LogPath string
	// OutDir receives all artifacts. It is created if missing and must
	// be empty unless Overwrite is set.
	OutDir string
	// Format selects the point table format, "parquet" (default) or "csv".
	Format string
	// FIT additionally writes the track as a FIT activity file.
	FIT bool
	// CopySource copies the input log into the bundle under source/.
	CopySource bool
	// Overwrite allows writing into a non-empty output directory.
	Overwrite bool

	// IgnoreDOP and Encoding are passed through to the converter.
	IgnoreDOP bool
	Encoding  string

	Logger *slog.Logger
}

// Result reports the artifacts written by a run.
type Result struct {
	OutputDir      string `json:"output_dir"`
	ManifestPath   string `json:"manifest_path"`
	GPXPath        string `json:"gpx_path"`
	PointsPath     string `json:"points_path"`
	FITPath        string `json:"fit_path,omitempty"`
	SourceCopyPath string `json:"source_copy_path,omitempty"`

	Stats        voxtrack.ImportStats  `json:"stats"`
	Metrics      voxtrack.TrackMetrics `json:"metrics"`
	MissingFiles []string              `json:"missing_files,omitempty"`
	Warnings     []string              `json:"warnings,omitempty"`
	Summary      string                `json:"summary"`
}

// Manifest is persisted as manifest.json inside the bundle.
type Manifest struct {
	FormatVersion  string                `json:"format_version"`
	ConversionID   string                `json:"conversion_id"`
	GeneratedAtUTC string                `json:"generated_at_utc"`
	Source         ManifestSource        `json:"source"`
	Description    string                `json:"description"`
	Stats          voxtrack.ImportStats  `json:"stats"`
	Metrics        voxtrack.TrackMetrics `json:"metrics"`
	MissingFiles   []string              `json:"missing_files,omitempty"`
	Artifacts      []string              `json:"artifacts"`
}

// ManifestSource identifies the converted log file.
type ManifestSource struct {
	Path      string `json:"path"`
	SHA256    string `json:"sha256"`
	SizeBytes int64  `json:"size_bytes"`
}

// PointRow is one row of the flattened point table. Track points and
// waypoints are interleaved in import order, rescued points appear once.
type PointRow struct {
	Seq       int64    `json:"seq"`
	Kind      string   `json:"kind"`
	Lat       float64  `json:"lat"`
	Lon       float64  `json:"lon"`
	TimeUTC   string   `json:"time_utc,omitempty"`
	Elevation string   `json:"elevation,omitempty"`
	Fix       string   `json:"fix,omitempty"`
	PDOP      *float64 `json:"pdop,omitempty"`
	HDOP      *float64 `json:"hdop,omitempty"`
	VDOP      *float64 `json:"vdop,omitempty"`
	AudioName string   `json:"audio_name,omitempty"`
	AudioSeq  int64    `json:"audio_seq"`
	Rescued   bool     `json:"rescued"`
}
