// Package gpx renders converted track logs as GPX 1.1 documents.
package gpx

import "encoding/xml"

// GPX is the root element of a GPX 1.1 document.
type GPX struct {
	XMLName xml.Name `xml:"gpx"`
	Version string   `xml:"version,attr"`
	Creator string   `xml:"creator,attr"`
	XMLNS   string   `xml:"xmlns,attr"`

	Metadata  *Metadata `xml:"metadata,omitempty"`
	Waypoints []Point   `xml:"wpt"`
	Tracks    []Track   `xml:"trk"`
}

// Metadata carries the document level description.
type Metadata struct {
	Description string `xml:"desc,omitempty"`
	Time        string `xml:"time,omitempty"`
}

// Link references the audio recording belonging to a point.
type Link struct {
	Href string `xml:"href,attr"`
	Text string `xml:"text,omitempty"`
	Type string `xml:"type,omitempty"`
}

// Point is a wpt or trkpt element. Elevation keeps the verbatim logger
// string and Time is pre-formatted, so absent values simply drop out of
// the document. Field order follows the GPX 1.1 schema.
type Point struct {
	Lat float64 `xml:"lat,attr"`
	Lon float64 `xml:"lon,attr"`

	Elevation   string   `xml:"ele,omitempty"`
	Time        string   `xml:"time,omitempty"`
	Comment     string   `xml:"cmt,omitempty"`
	Description string   `xml:"desc,omitempty"`
	Link        *Link    `xml:"link,omitempty"`
	Fix         string   `xml:"fix,omitempty"`
	HDOP        *float64 `xml:"hdop,omitempty"`
	VDOP        *float64 `xml:"vdop,omitempty"`
	PDOP        *float64 `xml:"pdop,omitempty"`
}

// Track holds the track segments of a conversion; the converter always
// produces exactly one segment.
type Track struct {
	Name     string         `xml:"name,omitempty"`
	Segments []TrackSegment `xml:"trkseg"`
}

// TrackSegment is a contiguous run of track points.
type TrackSegment struct {
	Points []Point `xml:"trkpt"`
}
