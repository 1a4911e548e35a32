package pipeline

import (
	"bytes"
	"crypto/sha256"
	"encoding/csv"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"voxtrack"
)

func testOptions(logPath, outDir string) Options {
	return Options{
		LogPath: logPath,
		OutDir:  outDir,
		Logger:  slog.New(slog.DiscardHandler),
	}
}

func logLine(idx int, marker, vox string) string {
	if vox == "" {
		vox = " "
	}
	return fmt.Sprintf("%d,%s,090430,%06d,48.856330N,009.089779E,318,20,0,%s",
		idx, marker, 194000+idx, vox)
}

func writeTrackLog(t *testing.T, dir string, lines ...string) string {
	t.Helper()
	content := "INDEX,TAG,DATE,TIME,LATITUDE N/S,LONGITUDE E/W,HEIGHT,SPEED,HEADING,VOX\n" +
		strings.Join(lines, "\n") + "\n"
	path := filepath.Join(dir, "trip.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write log: %v", err)
	}
	return path
}

func TestRunWritesBundle(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "vox00042.wav"), []byte("RIFF"), 0o644); err != nil {
		t.Fatalf("write vox file: %v", err)
	}
	logPath := writeTrackLog(t, dir,
		logLine(1, "T", ""),
		logLine(2, "T", ""),
		logLine(3, "T", ""),
		logLine(4, "V", "vox00042"),
	)
	outDir := filepath.Join(t.TempDir(), "out")

	opts := testOptions(logPath, outDir)
	opts.Format = "csv"
	opts.FIT = true
	opts.CopySource = true
	res, err := Run(opts)
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	want := voxtrack.ImportStats{TrackPoints: 3, Waypoints: 1, AudioWaypoints: 1}
	if res.Stats != want {
		t.Errorf("stats = %+v, want %+v", res.Stats, want)
	}
	if !strings.Contains(res.Summary, "Imported 3 track points") {
		t.Errorf("summary = %q", res.Summary)
	}
	for _, p := range []string{res.GPXPath, res.PointsPath, res.FITPath, res.ManifestPath, res.SourceCopyPath} {
		if _, err := os.Stat(p); err != nil {
			t.Errorf("artifact missing: %v", err)
		}
	}
	if got := filepath.Base(res.SourceCopyPath); got != "trip.csv" {
		t.Errorf("source copy base = %q, want trip.csv", got)
	}

	gpxData, err := os.ReadFile(res.GPXPath)
	if err != nil {
		t.Fatalf("read gpx: %v", err)
	}
	if !strings.Contains(string(gpxData), "<gpx") {
		t.Errorf("gpx artifact does not look like GPX")
	}

	f, err := os.Open(res.PointsPath)
	if err != nil {
		t.Fatalf("open point table: %v", err)
	}
	defer f.Close()
	cr := csv.NewReader(f)
	rows, err := cr.ReadAll()
	if err != nil {
		t.Fatalf("read point csv: %v", err)
	}
	if len(rows) != 5 {
		t.Fatalf("rows = %d, want header + 4 points", len(rows))
	}
	header := []string{
		"seq", "kind", "lat", "lon", "time_utc", "elevation", "fix",
		"pdop", "hdop", "vdop", "audio_name", "audio_seq", "rescued",
	}
	for i, col := range header {
		if rows[0][i] != col {
			t.Fatalf("header column %d: got %q want %q", i, rows[0][i], col)
		}
	}
	if rows[1][1] != "track" || rows[4][1] != "audio" {
		t.Errorf("kinds = %q, %q", rows[1][1], rows[4][1])
	}
	if rows[4][10] != "vox00042.wav" || rows[4][11] != "42" || rows[4][12] != "false" {
		t.Errorf("audio columns = %q, %q, %q", rows[4][10], rows[4][11], rows[4][12])
	}

	raw, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	sum := sha256.Sum256(raw)

	var manifest Manifest
	data, err := os.ReadFile(res.ManifestPath)
	if err != nil {
		t.Fatalf("read manifest: %v", err)
	}
	if err := json.Unmarshal(data, &manifest); err != nil {
		t.Fatalf("unmarshal manifest: %v", err)
	}
	if manifest.FormatVersion != BundleFormatVersion {
		t.Errorf("format version = %q", manifest.FormatVersion)
	}
	if manifest.ConversionID == "" {
		t.Errorf("conversion id is empty")
	}
	if manifest.Source.SHA256 != hex.EncodeToString(sum[:]) {
		t.Errorf("source sha = %q", manifest.Source.SHA256)
	}
	if manifest.Source.SizeBytes != int64(len(raw)) {
		t.Errorf("source size = %d, want %d", manifest.Source.SizeBytes, len(raw))
	}
	if manifest.Stats != res.Stats {
		t.Errorf("manifest stats = %+v", manifest.Stats)
	}
	// The three track points sit on the same coordinate one second apart.
	if manifest.Metrics.ElapsedSeconds != 2 {
		t.Errorf("manifest metrics elapsed = %f, want 2", manifest.Metrics.ElapsedSeconds)
	}
	if manifest.Metrics.DistanceMeters != 0 {
		t.Errorf("manifest metrics distance = %f, want 0", manifest.Metrics.DistanceMeters)
	}
	wantArtifacts := []string{"manifest.json", "track.gpx", "points.csv", "track.fit", "source/trip.csv"}
	if len(manifest.Artifacts) != len(wantArtifacts) {
		t.Fatalf("artifacts = %v", manifest.Artifacts)
	}
	for i, a := range wantArtifacts {
		if manifest.Artifacts[i] != a {
			t.Errorf("artifact %d = %q, want %q", i, manifest.Artifacts[i], a)
		}
	}
}

func TestRunDefaultsToParquet(t *testing.T) {
	dir := t.TempDir()
	logPath := writeTrackLog(t, dir, logLine(1, "T", ""), logLine(2, "T", ""))
	outDir := filepath.Join(t.TempDir(), "out")

	res, err := Run(testOptions(logPath, outDir))
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if filepath.Base(res.PointsPath) != "points.parquet" {
		t.Fatalf("points path = %q", res.PointsPath)
	}
	data, err := os.ReadFile(res.PointsPath)
	if err != nil {
		t.Fatalf("read parquet: %v", err)
	}
	magic := []byte("PAR1")
	if !bytes.HasPrefix(data, magic) || !bytes.HasSuffix(data, magic) {
		t.Errorf("point table is not a parquet file")
	}
}

func TestRunRefusesNonEmptyOutDir(t *testing.T) {
	dir := t.TempDir()
	logPath := writeTrackLog(t, dir, logLine(1, "T", ""))
	outDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(outDir, "stale.txt"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write stale file: %v", err)
	}

	_, err := Run(testOptions(logPath, outDir))
	if err == nil || !strings.Contains(err.Error(), "not empty") {
		t.Fatalf("err = %v, want not-empty refusal", err)
	}

	opts := testOptions(logPath, outDir)
	opts.Overwrite = true
	if _, err := Run(opts); err != nil {
		t.Fatalf("Run() with overwrite: %v", err)
	}
}

func TestRunRejectsUnknownFormat(t *testing.T) {
	opts := testOptions("trip.csv", t.TempDir())
	opts.Format = "xlsx"
	_, err := Run(opts)
	if err == nil || !strings.Contains(err.Error(), "unsupported format") {
		t.Fatalf("err = %v", err)
	}
}

func TestRunWarnsAboutMissingAudio(t *testing.T) {
	dir := t.TempDir()
	logPath := writeTrackLog(t, dir,
		logLine(1, "T", ""),
		logLine(2, "V", "VOX00099"),
	)
	outDir := filepath.Join(t.TempDir(), "out")

	opts := testOptions(logPath, outDir)
	opts.Format = "csv"
	res, err := Run(opts)
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if len(res.MissingFiles) != 1 || res.MissingFiles[0] != "VOX00099.wav" {
		t.Fatalf("missing files = %v", res.MissingFiles)
	}
	if len(res.Warnings) != 1 || !strings.Contains(res.Warnings[0], "VOX00099.wav") {
		t.Fatalf("warnings = %v", res.Warnings)
	}

	var manifest Manifest
	data, err := os.ReadFile(res.ManifestPath)
	if err != nil {
		t.Fatalf("read manifest: %v", err)
	}
	if err := json.Unmarshal(data, &manifest); err != nil {
		t.Fatalf("unmarshal manifest: %v", err)
	}
	if len(manifest.MissingFiles) != 1 || manifest.MissingFiles[0] != "VOX00099.wav" {
		t.Errorf("manifest missing files = %v", manifest.MissingFiles)
	}
}

func TestRunSkipsFITWithoutTrackPoints(t *testing.T) {
	dir := t.TempDir()
	logPath := writeTrackLog(t, dir, logLine(1, "C", ""), logLine(2, "C", ""))
	outDir := filepath.Join(t.TempDir(), "out")

	opts := testOptions(logPath, outDir)
	opts.Format = "csv"
	opts.FIT = true
	res, err := Run(opts)
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if res.FITPath != "" {
		t.Errorf("fit path = %q, want empty", res.FITPath)
	}
	found := false
	for _, w := range res.Warnings {
		if strings.Contains(w, "track.fit skipped") {
			found = true
		}
	}
	if !found {
		t.Errorf("warnings = %v, want fit skip notice", res.Warnings)
	}
}

func TestBuildPointRowsMergesRescued(t *testing.T) {
	shared := &voxtrack.WayPoint{
		Seq:   1,
		Class: voxtrack.ClassTrack,
		Audio: &voxtrack.AudioNote{Name: "vox00005.wav", Text: "*vox00005.wav*", Sequence: 5},
	}
	res := &voxtrack.ConversionResult{
		Track: voxtrack.Track{Points: []*voxtrack.WayPoint{
			{Seq: 0, Class: voxtrack.ClassTrack},
			shared,
		}},
		Waypoints: []*voxtrack.WayPoint{
			shared,
			{Seq: 2, Class: voxtrack.ClassWaypoint},
		},
	}

	rows := buildPointRows(res)
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(rows))
	}
	for i, row := range rows {
		if row.Seq != int64(i) {
			t.Errorf("row %d seq = %d", i, row.Seq)
		}
	}
	if !rows[1].Rescued || rows[1].AudioSeq != 5 {
		t.Errorf("rescued row = %+v", rows[1])
	}
	if rows[0].AudioSeq != -1 || rows[2].AudioSeq != -1 {
		t.Errorf("audio seq sentinel not applied: %+v, %+v", rows[0], rows[2])
	}
}
