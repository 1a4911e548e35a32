package pipeline

import (
	"crypto/sha256"
	"encoding/csv"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"voxtrack"
	"voxtrack/fitexport"
	"voxtrack/gpx"
)

// Run converts one track log and writes the full artifact bundle.
func Run(opts Options) (*Result, error) {
	if strings.TrimSpace(opts.LogPath) == "" {
		return nil, fmt.Errorf("log path is required")
	}
	if strings.TrimSpace(opts.OutDir) == "" {
		return nil, fmt.Errorf("output directory is required")
	}
	format := strings.ToLower(strings.TrimSpace(opts.Format))
	if format == "" {
		format = FormatParquet
	}
	if format != FormatParquet && format != FormatCSV {
		return nil, fmt.Errorf("unsupported format %q (expected parquet|csv)", format)
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}

	data, err := os.ReadFile(opts.LogPath)
	if err != nil {
		return nil, fmt.Errorf("read track log: %w", err)
	}
	sum := sha256.Sum256(data)
	sha := hex.EncodeToString(sum[:])

	res, err := voxtrack.ConvertFile(opts.LogPath, voxtrack.Config{
		IgnoreDOP: opts.IgnoreDOP,
		Encoding:  opts.Encoding,
		Logger:    log,
	})
	if err != nil {
		return nil, err
	}

	metrics := voxtrack.BuildTrackMetrics(res.Track)

	if err := ensureOutputDir(opts.OutDir, opts.Overwrite); err != nil {
		return nil, err
	}

	gpxPath := filepath.Join(opts.OutDir, "track.gpx")
	if err := gpx.Build(res).WriteFile(gpxPath); err != nil {
		return nil, fmt.Errorf("write track.gpx: %w", err)
	}

	rows := buildPointRows(res)
	pointsPath := filepath.Join(opts.OutDir, "points."+format)
	switch format {
	case FormatCSV:
		if err := writePointsCSV(pointsPath, rows); err != nil {
			return nil, fmt.Errorf("write point table: %w", err)
		}
	case FormatParquet:
		buf, err := marshalPointsParquet(rows)
		if err != nil {
			return nil, fmt.Errorf("marshal point table: %w", err)
		}
		if err := os.WriteFile(pointsPath, buf, 0o644); err != nil {
			return nil, fmt.Errorf("write point table: %w", err)
		}
	}

	warnings := buildWarnings(res)

	fitPath := ""
	if opts.FIT {
		if len(res.Track.Points) == 0 {
			warnings = append(warnings, "track.fit skipped: log contains no track points")
		} else {
			fitPath = filepath.Join(opts.OutDir, "track.fit")
			if err := fitexport.WriteFile(fitPath, res); err != nil {
				return nil, fmt.Errorf("write track.fit: %w", err)
			}
		}
	}

	sourceCopyPath := ""
	if opts.CopySource {
		sourceDir := filepath.Join(opts.OutDir, "source")
		if err := os.MkdirAll(sourceDir, 0o755); err != nil {
			return nil, fmt.Errorf("create source directory: %w", err)
		}
		sourceCopyPath = filepath.Join(sourceDir, filepath.Base(opts.LogPath))
		if err := copyFile(opts.LogPath, sourceCopyPath); err != nil {
			return nil, fmt.Errorf("copy source log: %w", err)
		}
	}

	manifestPath := filepath.Join(opts.OutDir, "manifest.json")
	manifest := Manifest{
		FormatVersion:  BundleFormatVersion,
		ConversionID:   uuid.NewString(),
		GeneratedAtUTC: time.Now().UTC().Format(time.RFC3339),
		Source: ManifestSource{
			Path:      opts.LogPath,
			SHA256:    sha,
			SizeBytes: int64(len(data)),
		},
		Description:  res.Description,
		Stats:        res.Stats,
		Metrics:      metrics,
		MissingFiles: res.MissingFiles,
		Artifacts:    bundleArtifacts(opts.OutDir, manifestPath, gpxPath, pointsPath, fitPath, sourceCopyPath),
	}
	if err := writeJSON(manifestPath, manifest); err != nil {
		return nil, fmt.Errorf("write manifest.json: %w", err)
	}

	return &Result{
		OutputDir:      opts.OutDir,
		ManifestPath:   manifestPath,
		GPXPath:        gpxPath,
		PointsPath:     pointsPath,
		FITPath:        fitPath,
		SourceCopyPath: sourceCopyPath,
		Stats:          res.Stats,
		Metrics:        metrics,
		MissingFiles:   res.MissingFiles,
		Warnings:       warnings,
		Summary:        voxtrack.BuildImportSummary(res.Stats),
	}, nil
}

// buildPointRows flattens track points and waypoints back into the
// order they held in the log. Rescued points are routed to both lists
// by the converter and must appear here exactly once.
func buildPointRows(res *voxtrack.ConversionResult) []PointRow {
	merged := make(map[int]*voxtrack.WayPoint, len(res.Track.Points)+len(res.Waypoints))
	for _, w := range res.Track.Points {
		merged[w.Seq] = w
	}
	for _, w := range res.Waypoints {
		merged[w.Seq] = w
	}
	seqs := make([]int, 0, len(merged))
	for seq := range merged {
		seqs = append(seqs, seq)
	}
	sort.Ints(seqs)

	rows := make([]PointRow, 0, len(seqs))
	for _, seq := range seqs {
		w := merged[seq]
		row := PointRow{
			Seq:       int64(w.Seq),
			Kind:      w.Class.String(),
			Lat:       w.Lat,
			Lon:       w.Lon,
			Elevation: w.Elevation,
			Fix:       w.Fix,
			PDOP:      w.PDOP,
			HDOP:      w.HDOP,
			VDOP:      w.VDOP,
			AudioSeq:  -1,
		}
		if !w.Time.IsZero() {
			row.TimeUTC = w.Time.UTC().Format(time.RFC3339)
		}
		if w.Audio != nil {
			row.AudioName = w.Audio.Name
			row.AudioSeq = int64(w.Audio.Sequence)
			row.Rescued = w.Audio.Rescued()
		}
		rows = append(rows, row)
	}
	return rows
}

func buildWarnings(res *voxtrack.ConversionResult) []string {
	var warnings []string
	for _, name := range res.MissingFiles {
		warnings = append(warnings, fmt.Sprintf("audio file %s was not found next to the track log", name))
	}
	if res.Stats.DateErrors > 0 {
		warnings = append(warnings, fmt.Sprintf("%d timestamps could not be converted", res.Stats.DateErrors))
	}
	if res.Stats.DOPErrors > 0 {
		warnings = append(warnings, fmt.Sprintf("%d precision values could not be converted", res.Stats.DOPErrors))
	}
	return warnings
}

func bundleArtifacts(outDir string, paths ...string) []string {
	arts := make([]string, 0, len(paths))
	for _, p := range paths {
		if p == "" {
			continue
		}
		rel, err := filepath.Rel(outDir, p)
		if err != nil {
			rel = filepath.Base(p)
		}
		arts = append(arts, filepath.ToSlash(rel))
	}
	return arts
}

func writePointsCSV(path string, rows []PointRow) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := []string{
		"seq", "kind", "lat", "lon", "time_utc", "elevation", "fix",
		"pdop", "hdop", "vdop", "audio_name", "audio_seq", "rescued",
	}
	if err := w.Write(header); err != nil {
		return err
	}
	for _, r := range rows {
		row := []string{
			strconv.FormatInt(r.Seq, 10),
			r.Kind,
			formatFloat(r.Lat),
			formatFloat(r.Lon),
			r.TimeUTC,
			r.Elevation,
			r.Fix,
			formatFloatPtr(r.PDOP),
			formatFloatPtr(r.HDOP),
			formatFloatPtr(r.VDOP),
			r.AudioName,
			strconv.FormatInt(r.AudioSeq, 10),
			strconv.FormatBool(r.Rescued),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func ensureOutputDir(path string, overwrite bool) error {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return fmt.Errorf("read output directory: %w", err)
	}
	if len(entries) > 0 && !overwrite {
		return fmt.Errorf("output directory is not empty: %s (set overwrite to allow)", path)
	}
	return nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Sync()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}

func formatFloatPtr(v *float64) string {
	if v == nil {
		return ""
	}
	return formatFloat(*v)
}
