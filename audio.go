package voxtrack

import (
	"math"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const (
	voxPrefixLen = 3
	voxExt       = ".wav"
)

// voxIndex records every audio file linked during the main pass together
// with the numeric range observed across the whole log. The rescue pass
// reads it to spot gaps in the numbering.
type voxIndex struct {
	byName map[string]*WayPoint
	first  int
	last   int
}

func newVoxIndex() *voxIndex {
	return &voxIndex{
		byName: make(map[string]*WayPoint),
		first:  math.MaxInt32,
		last:   math.MinInt32,
	}
}

func (x *voxIndex) observe(num int) {
	if num < x.first {
		x.first = num
	}
	if num > x.last {
		x.last = num
	}
}

type linkOutcome int

const (
	linkAttached linkOutcome = iota
	linkMissing
)

// linkVox resolves the recording named by a record in the log directory
// and either attaches it to w or demotes w to a plain waypoint with a
// note about the missing file. name carries the audio extension already.
func (c *converter) linkVox(w *WayPoint, name string) linkOutcome {
	path := findVoxFile(c.dir, name)
	if path == "" {
		c.log.Error("audio file not found", "file", name)
		w.Comment = "Missing audio file: " + name
		w.Class = ClassWaypoint
		c.missing = append(c.missing, name)
		return linkMissing
	}

	c.vox.observe(voxNumber(name))
	attachAudio(w, name, name, path)
	if w.Class != ClassAudio {
		c.log.Info("rescued unlinked audio file", "file", name)
	}
	c.vox.byName[name] = w
	w.Class = ClassAudio
	return linkAttached
}

// attachAudio sets the link artifact on w. An existing note is replaced,
// one waypoint carries at most one recording.
func attachAudio(w *WayPoint, name, text, path string) {
	w.Audio = &AudioNote{
		Name:     name,
		Path:     path,
		URI:      fileURI(path),
		Text:     text,
		Sequence: voxNumber(name),
	}
	w.Comment = "Audio recording"
	w.Description = text
}

// findVoxFile probes dir for name as given, lowercased and uppercased.
// The logger card is FAT formatted, so the stored case depends on the
// writing host and none of the variants can be assumed.
func findVoxFile(dir, name string) string {
	for _, variant := range []string{name, strings.ToLower(name), strings.ToUpper(name)} {
		p := filepath.Join(dir, variant)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// voxNumber extracts the sequence number from a vox file name, 1524 for
// "VOX01524.wav". Returns -1 when the name does not follow the pattern.
func voxNumber(name string) int {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	if len(base) <= voxPrefixLen {
		return -1
	}
	n, err := strconv.Atoi(base[voxPrefixLen:])
	if err != nil {
		return -1
	}
	return n
}

func fileURI(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}
	return u.String()
}
