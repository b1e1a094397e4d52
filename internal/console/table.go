// Package console renders scan results to the terminal, grounded on the
// teacher's console package (github.com/nabbar/golib/console): colored
// output through github.com/fatih/color with a graceful plain-text fallback
// when color.NoColor is set, and right/left padding helpers in the same
// style as the teacher's PadLeft/PadRight.
package console

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/fatih/color"

	"github.com/charSLee013/edgescan/internal/rank"
	"github.com/charSLee013/edgescan/internal/size"
)

var (
	headerColor = color.New(color.FgCyan, color.Bold)
	goodColor   = color.New(color.FgGreen)
	warnColor   = color.New(color.FgYellow)
	badColor    = color.New(color.FgRed)
)

// padRight right-pads str with spaces to width runes, UTF-8 aware like the
// teacher's PadRight.
func padRight(str string, width int) string {
	n := width - utf8.RuneCountInString(str)
	if n <= 0 {
		return str
	}
	return str + strings.Repeat(" ", n)
}

// PrintTable writes the top len(rows) results as an aligned, colored table
// to w (spec.md §6 "Display"): latency rows are colored by loss rate, route
// rows by Status, speed rows plain.
func PrintTable(w io.Writer, rows []rank.Row) {
	header := rank.Header(rows)
	widths := columnWidths(header, rows)

	headerColor.Fprintln(w, formatRow(header, widths))
	for _, r := range rows {
		fmt.Fprintln(w, formatDataRow(r, header, widths))
	}
}

func columnWidths(header []string, rows []rank.Row) []int {
	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = utf8.RuneCountInString(h)
	}
	for _, r := range rows {
		cells := rowCells(r, header)
		for i, c := range cells {
			if n := utf8.RuneCountInString(c); n > widths[i] {
				widths[i] = n
			}
		}
	}
	return widths
}

func formatRow(cells []string, widths []int) string {
	parts := make([]string, len(cells))
	for i, c := range cells {
		parts[i] = padRight(c, widths[i]+2)
	}
	return strings.Join(parts, "")
}

func formatDataRow(r rank.Row, header []string, widths []int) string {
	cells := rowCells(r, header)
	rowColor := rowColorFor(r)
	parts := make([]string, len(cells))
	for i, c := range cells {
		cell := padRight(c, widths[i]+2)
		if rowColor != nil {
			cell = rowColor.Sprint(cell)
		}
		parts[i] = cell
	}
	return strings.Join(parts, "")
}

func rowCells(r rank.Row, header []string) []string {
	cells := make([]string, 0, len(header))
	for _, h := range header {
		switch h {
		case "IP":
			cells = append(cells, r.IP.String())
		case "Sent":
			cells = append(cells, fmt.Sprintf("%d", r.Attempts))
		case "Received":
			cells = append(cells, fmt.Sprintf("%d", r.Successes))
		case "LossRate":
			loss := 0.0
			if r.Attempts > 0 {
				loss = 1 - float64(r.Successes)/float64(r.Attempts)
			}
			cells = append(cells, fmt.Sprintf("%.2f", loss))
		case "AvgLatency(ms)":
			cells = append(cells, fmt.Sprintf("%.2f", r.MeanRTT))
		case "RouteStatus":
			cells = append(cells, r.Status.String())
		case "Throughput":
			cells = append(cells, size.Throughput(r.BytesDownloaded, r.DownloadSeconds)+" MB/s")
		}
	}
	return cells
}

func rowColorFor(r rank.Row) *color.Color {
	if r.HasLatency {
		switch {
		case r.Successes == 0:
			return badColor
		case r.Attempts > 0 && r.Successes < r.Attempts:
			return warnColor
		default:
			return goodColor
		}
	}
	if r.HasRoute {
		switch {
		case r.Status.String() == "NORMAL":
			return goodColor
		case r.Status.String() == "DIFF_LOCATION":
			return warnColor
		default:
			return badColor
		}
	}
	return nil
}
