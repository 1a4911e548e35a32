// Package fitexport encodes converted track logs as FIT activity files.
package fitexport

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"

	"github.com/tormoder/fit"

	"voxtrack"
)

// Encode writes the track of res as a FIT activity bracketed by timer
// events. Waypoints have no FIT representation and stay with the GPX
// artifact; an empty track is an error because a FIT activity needs at
// least one record.
func Encode(w io.Writer, res *voxtrack.ConversionResult) error {
	pts := res.Track.Points
	if len(pts) == 0 {
		return fmt.Errorf("track log %q has no track points", res.SourceFile)
	}

	header := fit.NewHeader(fit.V20, true)
	file, err := fit.NewFile(fit.FileTypeActivity, header)
	if err != nil {
		return fmt.Errorf("new fit file: %w", err)
	}
	activity, err := file.Activity()
	if err != nil {
		return fmt.Errorf("activity accessor: %w", err)
	}

	start := fit.NewEventMsg()
	start.Event = fit.EventTimer
	start.EventType = fit.EventTypeStart
	if !pts[0].Time.IsZero() {
		start.Timestamp = pts[0].Time
	}
	activity.Events = append(activity.Events, start)

	for _, p := range pts {
		rec := fit.NewRecordMsg()
		if !p.Time.IsZero() {
			rec.Timestamp = p.Time
		}
		rec.PositionLat = fit.NewLatitudeDegrees(p.Lat)
		rec.PositionLong = fit.NewLongitudeDegrees(p.Lon)
		if alt, err := strconv.ParseFloat(p.Elevation, 64); err == nil {
			// Scale 5, offset 500 per the FIT profile; 0xFFFF is the
			// field's invalid sentinel, so elevations outside the
			// encodable range stay unset.
			if scaled := (alt + 500) * 5; scaled >= 0 && scaled < math.MaxUint16 {
				rec.Altitude = uint16(scaled)
			}
		}
		activity.Records = append(activity.Records, rec)
	}

	stop := fit.NewEventMsg()
	stop.Event = fit.EventTimer
	stop.EventType = fit.EventTypeStop
	if !pts[len(pts)-1].Time.IsZero() {
		stop.Timestamp = pts[len(pts)-1].Time
	}
	activity.Events = append(activity.Events, stop)

	if err := fit.Encode(w, file, binary.LittleEndian); err != nil {
		return fmt.Errorf("encode fit: %w", err)
	}
	return nil
}

// WriteFile saves the FIT rendition of res to path.
func WriteFile(path string, res *voxtrack.ConversionResult) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create fit file: %w", err)
	}
	defer f.Close()

	return Encode(f, res)
}
