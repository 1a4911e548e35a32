package voxtrack

import (
	"fmt"
	"log/slog"
)

// voxRescueBacktrack is how many sequence positions before the successor
// recording's owner a lost recording is attached. The offset compensates
// for the device's write latency and is kept verbatim.
const voxRescueBacktrack = 5

// rescueLostVox walks the numeric range observed during the main pass
// and picks up recordings that exist on disk but were never referenced
// by a record, typically because logging stopped right when recording
// started. Each one is attached to the most plausible point: a fixed
// distance before the point owning the successor recording, clamped to
// the first point, or the last point when no successor is known.
// Returns the attachment targets in rescue order and their count.
func rescueLostVox(points []*WayPoint, idx *voxIndex, dir string, log *slog.Logger) ([]*WayPoint, int) {
	var attached []*WayPoint
	rescued := 0
	for i := idx.first; i < idx.last; i++ {
		name := voxFileName(i)
		if _, ok := idx.byName[name]; ok {
			continue
		}
		log.Info("found lost vox file", "file", name)

		path := findVoxFile(dir, name)
		if path == "" {
			log.Error("could not link vox file", "file", name)
			continue
		}

		target := points[len(points)-1]
		if next, ok := idx.byName[voxFileName(i+1)]; ok {
			if at := next.Seq - voxRescueBacktrack; at >= 0 {
				target = points[at]
			} else {
				target = points[0]
			}
		}

		attachAudio(target, name, "*"+name+"*", path)
		log.Info("linked lost vox file", "file", name, "lat", target.Lat, "lon", target.Lon)
		attached = append(attached, target)
		rescued++
	}
	return attached, rescued
}

func voxFileName(num int) string {
	return fmt.Sprintf("vox%05d.wav", num)
}
