package voxtrack

import (
	"math"
	"strconv"
	"time"
)

// TrackMetrics summarizes the geometry of a converted track.
type TrackMetrics struct {
	StartTime      time.Time `json:"start_time"`
	EndTime        time.Time `json:"end_time"`
	ElapsedSeconds float64   `json:"elapsed_seconds"`
	DistanceMeters float64   `json:"distance_meters"`
	AvgSpeedMps    float64   `json:"avg_speed_mps"`
	MaxSpeedMps    float64   `json:"max_speed_mps"`
	ElevationGainM float64   `json:"elevation_gain_m"`
	ElevationLossM float64   `json:"elevation_loss_m"`
	MinLat         float64   `json:"min_lat"`
	MaxLat         float64   `json:"max_lat"`
	MinLon         float64   `json:"min_lon"`
	MaxLon         float64   `json:"max_lon"`
}

// BuildTrackMetrics aggregates distance, speed and elevation change over
// the continuously logged track points. Waypoints do not contribute.
// Points without a usable timestamp or elevation simply drop out of the
// time and elevation sums.
func BuildTrackMetrics(track Track) TrackMetrics {
	var m TrackMetrics
	points := track.Points
	if len(points) == 0 {
		return m
	}

	first := points[0]
	m.MinLat, m.MaxLat = first.Lat, first.Lat
	m.MinLon, m.MaxLon = first.Lon, first.Lon
	prevEle, havePrevEle := elevationValue(first)

	for i := 1; i < len(points); i++ {
		prev, w := points[i-1], points[i]

		m.MinLat = math.Min(m.MinLat, w.Lat)
		m.MaxLat = math.Max(m.MaxLat, w.Lat)
		m.MinLon = math.Min(m.MinLon, w.Lon)
		m.MaxLon = math.Max(m.MaxLon, w.Lon)

		dist := haversineMeters(prev.Lat, prev.Lon, w.Lat, w.Lon)
		m.DistanceMeters += dist
		if !prev.Time.IsZero() && !w.Time.IsZero() {
			if dt := w.Time.Sub(prev.Time).Seconds(); dt > 0 {
				if v := dist / dt; v > m.MaxSpeedMps {
					m.MaxSpeedMps = v
				}
			}
		}

		if ele, ok := elevationValue(w); ok {
			if havePrevEle {
				if diff := ele - prevEle; diff > 0 {
					m.ElevationGainM += diff
				} else {
					m.ElevationLossM -= diff
				}
			}
			prevEle, havePrevEle = ele, true
		}
	}

	for _, w := range points {
		if w.Time.IsZero() {
			continue
		}
		if m.StartTime.IsZero() {
			m.StartTime = w.Time
		}
		m.EndTime = w.Time
	}
	if !m.StartTime.IsZero() && !m.EndTime.IsZero() {
		m.ElapsedSeconds = m.EndTime.Sub(m.StartTime).Seconds()
	}
	if m.ElapsedSeconds > 0 {
		m.AvgSpeedMps = m.DistanceMeters / m.ElapsedSeconds
	}
	return m
}

func elevationValue(w *WayPoint) (float64, bool) {
	v, err := strconv.ParseFloat(w.Elevation, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func haversineMeters(lat1, lon1, lat2, lon2 float64) float64 {
	const earthRadius = 6371000 // meters

	lat1Rad := lat1 * math.Pi / 180
	lat2Rad := lat2 * math.Pi / 180
	deltaLat := (lat2 - lat1) * math.Pi / 180
	deltaLon := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(deltaLat/2)*math.Sin(deltaLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(deltaLon/2)*math.Sin(deltaLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadius * c
}
