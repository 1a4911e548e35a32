package voxtrack

import (
	"strings"
	"time"
)

// Class tags a converted record with its role in the output model.
type Class int

const (
	// ClassTrack is a continuously logged track point.
	ClassTrack Class = iota
	// ClassWaypoint is a standalone point of interest without audio.
	ClassWaypoint
	// ClassAudio is a waypoint recorded together with a voice note.
	ClassAudio
)

func (c Class) String() string {
	switch c {
	case ClassTrack:
		return "track"
	case ClassWaypoint:
		return "waypoint"
	case ClassAudio:
		return "audio"
	default:
		return "unknown"
	}
}

// AudioNote is the link artifact attached to a waypoint whose voice
// recording was found on disk.
type AudioNote struct {
	Name     string // file name with extension, e.g. "VOX01524.wav"
	Path     string // resolved path on disk
	URI      string // file URI consumed by output writers
	Text     string // display text; rescued notes are wrapped in asterisks
	Sequence int    // numeric suffix of the file name, -1 if unparseable
}

// Rescued reports whether the note was attached by the lost-audio pass
// rather than by a record reference.
func (n *AudioNote) Rescued() bool {
	return len(n.Text) >= 2 && strings.HasPrefix(n.Text, "*") && strings.HasSuffix(n.Text, "*")
}

// WayPoint is one converted log record. Identity is positional: Seq is
// the index of the point in the full import sequence, track points and
// waypoints interleaved in file order.
type WayPoint struct {
	Lat float64
	Lon float64

	Time      time.Time // zero when the log timestamp failed to parse
	Elevation string    // verbatim from the log, no numeric validation
	Fix       string    // extended layout only, lowercased ("2d", "3d")
	PDOP      *float64
	HDOP      *float64
	VDOP      *float64

	Class Class
	Seq   int

	Comment     string
	Description string
	Audio       *AudioNote
}

// Track is the single continuous track assembled from one log file.
type Track struct {
	Points []*WayPoint
}

// ImportStats aggregates the counters reported in the import summary.
// Waypoints counts the main parsing pass only; points added by the
// lost-audio rescue show up in the waypoint collection but not here.
type ImportStats struct {
	TrackPoints    int `json:"track_points"`
	Waypoints      int `json:"waypoints"`
	AudioWaypoints int `json:"audio_waypoints"`
	MissingAudio   int `json:"missing_audio"`
	RescuedAudio   int `json:"rescued_audio"`
	DateErrors     int `json:"date_errors"`
	DOPErrors      int `json:"dop_errors"`
}

// ConversionResult is the complete output of one ConvertFile call.
type ConversionResult struct {
	SourceFile  string
	Description string

	Track     Track
	Waypoints []*WayPoint // plain and audio waypoints, file order preserved

	MissingFiles []string // referenced audio files not found on disk
	Stats        ImportStats
}
