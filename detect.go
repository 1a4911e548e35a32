package voxtrack

import (
	"bufio"
	"fmt"
	"io"
	"os"
)

// Detection window. A file counts as logger output once more than
// detectMinRecords records carry a known type marker; scanning stops
// after detectMaxRecords lines unless the file already crossed the
// threshold, in which case it runs on.
const (
	detectMaxRecords = 20
	detectMinRecords = 10
)

// DetectFile reports whether the file at path looks like a logger track
// log. This is a heuristic over the leading records, not a validation of
// the whole file.
func DetectFile(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, fmt.Errorf("open track log: %w", err)
	}
	defer f.Close()
	return DetectReader(f), nil
}

// DetectReader applies the DetectFile heuristic to an open stream.
func DetectReader(r io.Reader) bool {
	sc := bufio.NewScanner(r)
	line, qualifying := 0, 0
	for sc.Scan() && (line < detectMaxRecords || qualifying > detectMinRecords) {
		fields := SplitRecord(sc.Text())
		line++
		if len(fields) == 0 || line <= 1 {
			continue
		}
		if len(fields) > fieldType && isTypeMarker(fields[fieldType]) {
			qualifying++
		}
	}
	return qualifying > detectMinRecords
}

func isTypeMarker(s string) bool {
	return s == markerTrack || s == markerAudio || s == markerWaypoint
}
