package voxtrack

import (
	"fmt"
	"strings"
)

// BuildImportSummary renders the human readable outcome of a conversion,
// one line plus optional notes about missing files and field faults.
func BuildImportSummary(stats ImportStats) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Imported %d track points and %d way points (%d with audio, %d rescued).",
		stats.TrackPoints, stats.Waypoints, stats.AudioWaypoints, stats.RescuedAudio)
	if stats.MissingAudio > 0 {
		fmt.Fprintf(&b, "\nNote: %d audio files could not be found, please check marker comments!",
			stats.MissingAudio)
	}
	if stats.DateErrors > 0 || stats.DOPErrors > 0 {
		fmt.Fprintf(&b, "\n%d date conversion faults and %d DOP conversion errors.",
			stats.DateErrors, stats.DOPErrors)
	}
	return b.String()
}
