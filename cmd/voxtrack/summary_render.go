package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"

	"voxtrack"
)

const (
	ansiReset  = "\x1b[0m"
	ansiYellow = "\x1b[33m"
)

// renderPairs draws a two column label/value table. Every report
// surface of the CLI is a label/value listing; numeric right aligns
// the value column.
func renderPairs(label, value string, rows [][2]string, numeric bool) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{label, value})
	for _, row := range rows {
		tw.AppendRow(table.Row{row[0], row[1]})
	}

	valueAlign := text.AlignLeft
	if numeric {
		valueAlign = text.AlignRight
	}
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignLeft, AlignHeader: text.AlignLeft},
		{Number: 2, Align: valueAlign, AlignHeader: text.AlignLeft},
	})
	return tw.Render()
}

func renderStatsTable(stats voxtrack.ImportStats, metrics voxtrack.TrackMetrics) string {
	rows := [][2]string{
		{"Track points", strconv.Itoa(stats.TrackPoints)},
		{"Way points", strconv.Itoa(stats.Waypoints)},
		{"With audio", strconv.Itoa(stats.AudioWaypoints)},
		{"Rescued audio", strconv.Itoa(stats.RescuedAudio)},
		{"Missing audio", strconv.Itoa(stats.MissingAudio)},
		{"Date faults", strconv.Itoa(stats.DateErrors)},
		{"DOP faults", strconv.Itoa(stats.DOPErrors)},
	}
	if metrics.DistanceMeters > 0 {
		rows = append(rows, [2]string{"Distance", fmt.Sprintf("%.2f km", metrics.DistanceMeters/1000)})
	}
	if metrics.ElapsedSeconds > 0 {
		d := time.Duration(metrics.ElapsedSeconds * float64(time.Second)).Round(time.Second)
		rows = append(rows, [2]string{"Duration", d.String()})
	}
	return renderPairs("Metric", "Value", rows, true)
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
