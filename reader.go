// Package voxtrack converts the CSV track logs written by handheld GPS
// voice loggers into a normalized track and waypoint model. The logger
// writes one line per fix in either a 10-field simple or a 15-field
// extended layout and stores voice notes as numbered .wav files next to
// the log; the converter links those recordings to their waypoints and
// recovers recordings whose reference never made it into the log.
package voxtrack

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// Config adjusts how a log is converted.
type Config struct {
	// IgnoreDOP skips the fix mode and DOP quality columns of extended
	// layout records.
	IgnoreDOP bool
	// Encoding names the input text encoding. Empty or "utf-8" reads
	// the log as is; "latin1" and "windows-1252" run it through the
	// matching character map.
	Encoding string
	// Logger receives conversion diagnostics, slog.Default() if nil.
	Logger *slog.Logger
}

// FormatError is a structural defect that makes the whole log unusable,
// a record with an unexpected shape or unparseable coordinates. Line is
// the 1-based line number in the source file.
type FormatError struct {
	Line int
	Err  error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *FormatError) Unwrap() error { return e.Err }

// converter holds the state of a single ConvertFile call.
type converter struct {
	cfg Config
	log *slog.Logger
	dir string

	vox       *voxIndex
	track     []*WayPoint
	waypoints []*WayPoint
	all       []*WayPoint
	missing   []string
	stats     ImportStats
}

// ConvertFile reads the track log at path and converts it into a track,
// its waypoints and the import statistics. All conversion state lives on
// the call, so different files may convert concurrently.
func ConvertFile(path string, cfg Config) (*ConversionResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open track log: %w", err)
	}
	defer f.Close()

	in, err := decodeReader(f, cfg.Encoding)
	if err != nil {
		return nil, err
	}

	c := &converter{
		cfg: cfg,
		log: cfg.Logger,
		dir: filepath.Dir(path),
		vox: newVoxIndex(),
	}
	if c.log == nil {
		c.log = slog.Default()
	}

	if err := c.run(in); err != nil {
		return nil, err
	}
	return c.result(path), nil
}

func (c *converter) run(r io.Reader) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	line := 1
	for sc.Scan() {
		fields := SplitRecord(sc.Text())
		if len(fields) == 0 || line <= 1 {
			line++
			continue
		}

		w, err := c.parseRecord(fields)
		if err != nil {
			return &FormatError{Line: line, Err: err}
		}
		c.place(w, fields[fieldType])
		line++
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("read track log: %w", err)
	}

	attached, rescued := rescueLostVox(c.all, c.vox, c.dir, c.log)
	c.admitRescued(attached)
	c.stats.RescuedAudio += rescued
	return nil
}

// place routes the point by its effective classification and accounts
// for marker transitions: a voice marker that lost its recording counts
// as missing, a plain marker that gained one counts as rescued, a voice
// marker that kept one counts as an audio waypoint.
func (c *converter) place(w *WayPoint, marker string) {
	w.Seq = len(c.all)
	c.all = append(c.all, w)

	if w.Class == ClassTrack {
		c.track = append(c.track, w)
		c.stats.TrackPoints++
		return
	}

	c.waypoints = append(c.waypoints, w)
	c.stats.Waypoints++
	switch {
	case marker == markerAudio && w.Class != ClassAudio:
		c.stats.MissingAudio++
	case marker == markerWaypoint && w.Class == ClassAudio:
		c.stats.RescuedAudio++
	case marker == markerAudio && w.Class == ClassAudio:
		c.stats.AudioWaypoints++
	}
}

// admitRescued adds rescue targets to the waypoint collection. Points
// already present, either as main pass waypoints or as a target rescued
// twice, are not added again.
func (c *converter) admitRescued(attached []*WayPoint) {
	seen := make(map[*WayPoint]bool, len(c.waypoints))
	for _, w := range c.waypoints {
		seen[w] = true
	}
	for _, w := range attached {
		if seen[w] {
			continue
		}
		seen[w] = true
		c.waypoints = append(c.waypoints, w)
	}
}

func (c *converter) result(path string) *ConversionResult {
	base := filepath.Base(path)
	res := &ConversionResult{
		SourceFile:   path,
		Description:  fmt.Sprintf("Converted by voxtrack from track file '%s'", base),
		Track:        Track{Points: c.track},
		Waypoints:    c.waypoints,
		MissingFiles: c.missing,
		Stats:        c.stats,
	}
	c.log.Info("track log converted",
		"file", base,
		"track_points", c.stats.TrackPoints,
		"waypoints", c.stats.Waypoints,
		"audio", c.stats.AudioWaypoints,
		"missing", c.stats.MissingAudio,
		"rescued", c.stats.RescuedAudio)
	return res
}

// decodeReader wraps r for logs written or edited on hosts using a
// legacy 8-bit encoding.
func decodeReader(r io.Reader, encoding string) (io.Reader, error) {
	switch strings.ToLower(encoding) {
	case "", "utf-8", "utf8":
		return r, nil
	case "latin1", "iso-8859-1":
		return transform.NewReader(r, charmap.ISO8859_1.NewDecoder()), nil
	case "windows-1252", "cp1252":
		return transform.NewReader(r, charmap.Windows1252.NewDecoder()), nil
	default:
		return nil, fmt.Errorf("unsupported encoding %q", encoding)
	}
}
