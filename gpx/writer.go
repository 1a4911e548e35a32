package gpx

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"time"

	"voxtrack"
)

const (
	xmlns     = "http://www.topografix.com/GPX/1/1"
	creator   = "voxtrack"
	audioMIME = "audio/wav"
)

// Build maps a conversion result onto a GPX document.
func Build(res *voxtrack.ConversionResult) *GPX {
	doc := &GPX{
		Version:  "1.1",
		Creator:  creator,
		XMLNS:    xmlns,
		Metadata: &Metadata{Description: res.Description},
	}

	seg := TrackSegment{Points: make([]Point, 0, len(res.Track.Points))}
	for _, w := range res.Track.Points {
		seg.Points = append(seg.Points, convertPoint(w))
	}
	doc.Tracks = []Track{{Segments: []TrackSegment{seg}}}

	for _, w := range res.Waypoints {
		doc.Waypoints = append(doc.Waypoints, convertPoint(w))
	}
	return doc
}

func convertPoint(w *voxtrack.WayPoint) Point {
	p := Point{
		Lat:         w.Lat,
		Lon:         w.Lon,
		Elevation:   w.Elevation,
		Comment:     w.Comment,
		Description: w.Description,
		Fix:         w.Fix,
		HDOP:        w.HDOP,
		VDOP:        w.VDOP,
		PDOP:        w.PDOP,
	}
	if !w.Time.IsZero() {
		p.Time = w.Time.UTC().Format(time.RFC3339)
	}
	if w.Audio != nil {
		p.Link = &Link{Href: w.Audio.URI, Text: w.Audio.Text, Type: audioMIME}
	}
	return p
}

// WriteFile saves the document to path.
func (g *GPX) WriteFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create gpx file: %w", err)
	}
	defer f.Close()

	return g.Write(f)
}

// Write emits the document with an XML header and two space indent.
func (g *GPX) Write(w io.Writer) error {
	if _, err := w.Write([]byte(xml.Header)); err != nil {
		return err
	}

	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(g); err != nil {
		return fmt.Errorf("encode gpx: %w", err)
	}
	return nil
}
