package voxtrack

import (
	"math"
	"testing"
	"time"
)

func metricPoint(lat, lon float64, ele string, at time.Time) *WayPoint {
	return &WayPoint{Class: ClassTrack, Lat: lat, Lon: lon, Elevation: ele, Time: at}
}

func TestBuildTrackMetricsEmptyTrack(t *testing.T) {
	m := BuildTrackMetrics(Track{})
	if m.DistanceMeters != 0 || m.ElapsedSeconds != 0 || !m.StartTime.IsZero() {
		t.Fatalf("expected zero metrics for empty track, got %+v", m)
	}
}

func TestBuildTrackMetricsDistanceAndSpeed(t *testing.T) {
	start := time.Date(2009, 4, 30, 19, 40, 0, 0, time.UTC)
	track := Track{Points: []*WayPoint{
		metricPoint(0, 0, "10", start),
		metricPoint(0, 0.01, "10", start.Add(100*time.Second)),
	}}

	m := BuildTrackMetrics(track)

	// 0.01 degrees of longitude on the equator is about 1112 m.
	if math.Abs(m.DistanceMeters-1111.95) > 0.1 {
		t.Fatalf("DistanceMeters = %f, want about 1111.95", m.DistanceMeters)
	}
	if m.ElapsedSeconds != 100 {
		t.Fatalf("ElapsedSeconds = %f, want 100", m.ElapsedSeconds)
	}
	if math.Abs(m.AvgSpeedMps-m.DistanceMeters/100) > 1e-9 {
		t.Fatalf("AvgSpeedMps = %f, want %f", m.AvgSpeedMps, m.DistanceMeters/100)
	}
	if math.Abs(m.MaxSpeedMps-m.AvgSpeedMps) > 1e-9 {
		t.Fatalf("MaxSpeedMps = %f, want %f", m.MaxSpeedMps, m.AvgSpeedMps)
	}
	if !m.StartTime.Equal(start) || !m.EndTime.Equal(start.Add(100*time.Second)) {
		t.Fatalf("time span = %s..%s", m.StartTime, m.EndTime)
	}
}

func TestBuildTrackMetricsElevation(t *testing.T) {
	start := time.Date(2009, 4, 30, 19, 40, 0, 0, time.UTC)
	track := Track{Points: []*WayPoint{
		metricPoint(48.85, 9.08, "100", start),
		metricPoint(48.86, 9.08, "150.5", start.Add(time.Minute)),
		metricPoint(48.87, 9.08, "120", start.Add(2*time.Minute)),
	}}

	m := BuildTrackMetrics(track)

	if math.Abs(m.ElevationGainM-50.5) > 1e-9 {
		t.Fatalf("ElevationGainM = %f, want 50.5", m.ElevationGainM)
	}
	if math.Abs(m.ElevationLossM-30.5) > 1e-9 {
		t.Fatalf("ElevationLossM = %f, want 30.5", m.ElevationLossM)
	}
}

func TestBuildTrackMetricsSkipsBadElevation(t *testing.T) {
	start := time.Date(2009, 4, 30, 19, 40, 0, 0, time.UTC)
	track := Track{Points: []*WayPoint{
		metricPoint(48.85, 9.08, "100", start),
		metricPoint(48.86, 9.08, "", start.Add(time.Minute)),
		metricPoint(48.87, 9.08, "90", start.Add(2*time.Minute)),
	}}

	m := BuildTrackMetrics(track)

	if m.ElevationGainM != 0 {
		t.Fatalf("ElevationGainM = %f, want 0", m.ElevationGainM)
	}
	if math.Abs(m.ElevationLossM-10) > 1e-9 {
		t.Fatalf("ElevationLossM = %f, want 10", m.ElevationLossM)
	}
}

func TestBuildTrackMetricsBounds(t *testing.T) {
	track := Track{Points: []*WayPoint{
		metricPoint(48.8, 9.0, "0", time.Time{}),
		metricPoint(48.9, 8.9, "0", time.Time{}),
		metricPoint(48.7, 9.1, "0", time.Time{}),
	}}

	m := BuildTrackMetrics(track)

	if m.MinLat != 48.7 || m.MaxLat != 48.9 {
		t.Fatalf("lat bounds = %f..%f", m.MinLat, m.MaxLat)
	}
	if m.MinLon != 8.9 || m.MaxLon != 9.1 {
		t.Fatalf("lon bounds = %f..%f", m.MinLon, m.MaxLon)
	}
}

func TestBuildTrackMetricsWithoutTimestamps(t *testing.T) {
	track := Track{Points: []*WayPoint{
		metricPoint(0, 0, "10", time.Time{}),
		metricPoint(0, 0.01, "10", time.Time{}),
	}}

	m := BuildTrackMetrics(track)

	if m.DistanceMeters == 0 {
		t.Fatal("expected distance to accumulate without timestamps")
	}
	if m.ElapsedSeconds != 0 || m.AvgSpeedMps != 0 || m.MaxSpeedMps != 0 {
		t.Fatalf("expected zero time-derived metrics, got %+v", m)
	}
}
