package voxtrack

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Record type markers written by the logger in the second field.
const (
	markerTrack    = "T"
	markerWaypoint = "C"
	markerAudio    = "V"
)

// Both layouts share fields 0..8 (index, type, date, time, latitude,
// longitude, elevation, speed, heading). The extended layout inserts fix
// mode, a validity column and the three DOP columns before the audio
// reference.
const (
	fieldType = 1
	fieldDate = 2
	fieldTime = 3
	fieldLat  = 4
	fieldLon  = 5
	fieldEle  = 6

	fieldFix  = 9
	fieldPDOP = 11
	fieldHDOP = 12
	fieldVDOP = 13

	fieldVoxSimple   = 9
	fieldVoxExtended = 14

	simpleFieldCount   = 10
	extendedFieldCount = 15
)

// Date and time fields combined, e.g. "090430/194134".
const logTimeLayout = "060102/150405"

// SplitRecord splits one log line into its comma separated fields.
// Surrounding whitespace is trimmed from each field and empty fields are
// dropped rather than preserved, so a trailing delimiter yields nothing
// while a whitespace padded field survives as an empty string.
func SplitRecord(line string) []string {
	fields := strings.FieldsFunc(line, func(r rune) bool { return r == ',' })
	for i, f := range fields {
		fields[i] = strings.TrimSpace(f)
	}
	return fields
}

// parseRecord converts one tokenized record into a WayPoint. Structural
// defects (field count, coordinates) are returned as errors and abort
// the import; every other field degrades individually.
func (c *converter) parseRecord(fields []string) (*WayPoint, error) {
	var extended bool
	switch len(fields) {
	case simpleFieldCount:
	case extendedFieldCount:
		extended = true
	default:
		return nil, fmt.Errorf("invalid number of fields: %d", len(fields))
	}

	lat, err := parseCoordinate(fields[fieldLat], "S")
	if err != nil {
		return nil, fmt.Errorf("latitude %q: %w", fields[fieldLat], err)
	}
	lon, err := parseCoordinate(fields[fieldLon], "W")
	if err != nil {
		return nil, fmt.Errorf("longitude %q: %w", fields[fieldLon], err)
	}

	w := &WayPoint{Lat: lat, Lon: lon, Seq: -1}
	w.Class = classForMarker(fields[fieldType])

	voxField := fieldVoxSimple
	if extended {
		voxField = fieldVoxExtended
	}
	if base := fields[voxField]; base != "" {
		c.linkVox(w, base+voxExt)
	}

	ts, err := time.ParseInLocation(logTimeLayout, fields[fieldDate]+"/"+fields[fieldTime], time.UTC)
	if err != nil {
		c.stats.DateErrors++
		c.log.Warn("unparseable record time", "date", fields[fieldDate], "time", fields[fieldTime])
	} else {
		w.Time = ts
	}

	w.Elevation = fields[fieldEle]

	if extended && !c.cfg.IgnoreDOP {
		w.Fix = strings.ToLower(fields[fieldFix])
		w.PDOP = c.parseDOP(fields[fieldPDOP])
		w.HDOP = c.parseDOP(fields[fieldHDOP])
		w.VDOP = c.parseDOP(fields[fieldVDOP])
	}

	return w, nil
}

func classForMarker(marker string) Class {
	switch marker {
	case markerTrack:
		return ClassTrack
	case markerAudio:
		return ClassAudio
	default:
		return ClassWaypoint
	}
}

// parseCoordinate reads the logger's "<decimal><hemisphere>" notation:
// the trailing hemisphere letter is stripped before the numeric parse
// and neg ("S" or "W") flips the sign.
func parseCoordinate(s, neg string) (float64, error) {
	if s == "" {
		return 0, fmt.Errorf("empty coordinate")
	}
	v, err := strconv.ParseFloat(s[:len(s)-1], 64)
	if err != nil {
		return 0, err
	}
	if strings.HasSuffix(s, neg) {
		v = -v
	}
	return v, nil
}

// parseDOP reads one dilution of precision column. Failures count but
// never abort the record, the attribute is simply left out.
func (c *converter) parseDOP(s string) *float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		c.stats.DOPErrors++
		return nil
	}
	return &v
}
