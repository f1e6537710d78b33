// Package dashboard flattens a timeline snapshot into the renderable frame
// spec.md §4.5 describes: one scrolling sparkline row per endpoint plus a
// filtered problems block. Column-width math is grounded on the teacher's
// internal/display/stats.go/mtr.go host-column sizing; the sparkline glyph
// set and per-cell color binning is grounded on internal/display/tui.go's
// sparkChars/renderSparkline.
package dashboard

import (
	"fmt"

	"github.com/fprochazka/hydraping/internal/timeline"
	"github.com/fprochazka/hydraping/pkg/endpoint"
	"github.com/fprochazka/hydraping/pkg/probe"
)

// CellKind classifies one sparkline cell for rendering, independent of the
// concrete color a Theme assigns it.
type CellKind int

const (
	CellEmpty CellKind = iota
	CellFailure
	CellUnverified
	CellSuccess
)

// Cell is one bucket rendered into a single dashboard column. LatencyMs is
// the real sample latency, meaningful only when Kind == CellSuccess; colors
// are derived from it directly rather than from Bin, since Bin saturates at
// 7 (175ms) while spec.md §4.5's color thresholds run up to 200ms+.
type Cell struct {
	Kind      CellKind
	Glyph     rune
	Bin       int // 0-7, meaningful only when Kind == CellSuccess
	LatencyMs float64
}

// Row is one endpoint's rendered line: label, latency text, and the
// sparkline cells oldest-to-newest.
type Row struct {
	Label       string
	LatencyText string
	Cells       []Cell
}

// Frame is a complete renderable snapshot: the endpoint rows plus the
// suppression-filtered problems block (empty when nothing is active).
type Frame struct {
	Rows         []Row
	ProblemLines []string
}

// sparkChars mirrors the teacher's low-to-high sparkline glyph set.
var sparkChars = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

const binSizeMs = 25.0

// Thresholds is the color-bin boundary set for a success cell, in
// milliseconds, ascending. Default per spec.md §4.5; overridable via
// config's ui.thresholds_ms (Open Question 1).
type Thresholds struct {
	GreenBelow  float64
	YellowBelow float64
	OrangeBelow float64
}

// DefaultThresholds is spec.md §4.5's fixed 50/100/200ms bins.
var DefaultThresholds = Thresholds{GreenBelow: 50, YellowBelow: 100, OrangeBelow: 200}

// ColorBin classifies a latency in milliseconds into one of four named
// bins the Theme maps to a color: "green", "yellow", "orange", "red".
func (t Thresholds) ColorBin(latencyMs float64) string {
	switch {
	case latencyMs < t.GreenBelow:
		return "green"
	case latencyMs < t.YellowBelow:
		return "yellow"
	case latencyMs < t.OrangeBelow:
		return "orange"
	default:
		return "red"
	}
}

// BuildFrame flattens snapshots (one per endpoint, in the order they should
// render) into a Frame sized for terminal width termWidth.
func BuildFrame(snapshots []timeline.Snapshot, termWidth int) Frame {
	labelWidth := computeLabelWidth(snapshots, termWidth)
	graphWidth := termWidth - labelWidth - latencyTextWidth - 2

	rows := make([]Row, 0, len(snapshots))
	var problemLines []string
	for _, snap := range snapshots {
		rows = append(rows, buildRow(snap, labelWidth, graphWidth))
		for _, p := range snap.Problems {
			problemLines = append(problemLines, fmt.Sprintf("  • %s: %s", snap.Endpoint.Label, p.Message))
		}
	}
	return Frame{Rows: rows, ProblemLines: problemLines}
}

const latencyTextWidth = 14 // "%6.1fms (%s)" with a 3-char short name; ICMP/HTTP rows are one wider

func computeLabelWidth(snapshots []timeline.Snapshot, termWidth int) int {
	maxLen := 0
	for _, s := range snapshots {
		if l := len(s.Endpoint.Label); l > maxLen {
			maxLen = l
		}
	}
	capWidth := termWidth * 4 / 10
	if maxLen > capWidth {
		return capWidth
	}
	return maxLen
}

func buildRow(snap timeline.Snapshot, labelWidth, graphWidth int) Row {
	row := Row{Label: padLabel(snap.Endpoint.Label, labelWidth)}
	row.LatencyText = latencyText(snap.Endpoint, snap.Buckets)

	if graphWidth < 8 {
		return row
	}
	buckets := snap.Buckets
	if len(buckets) > graphWidth {
		buckets = buckets[len(buckets)-graphWidth:]
	}
	cells := make([]Cell, graphWidth)
	leading := graphWidth - len(buckets)
	for i := 0; i < leading; i++ {
		cells[i] = Cell{Kind: CellEmpty, Glyph: '.'}
	}
	for i, b := range buckets {
		cells[leading+i] = buildCell(snap.Endpoint, b)
	}
	row.Cells = cells
	return row
}

func padLabel(label string, width int) string {
	if len(label) > width {
		return label[:width]
	}
	return fmt.Sprintf("%*s", width, label)
}

func buildCell(ep endpoint.Endpoint, b timeline.Bucket) Cell {
	pick, ok := timeline.PrimaryPick(ep, b)
	if !ok {
		return Cell{Kind: CellEmpty, Glyph: '.'}
	}
	if pick.Status == probe.StatusCanceled {
		return Cell{Kind: CellEmpty, Glyph: '.'}
	}
	if pick.Status.Failed() {
		return Cell{Kind: CellFailure, Glyph: '!'}
	}
	if pick.Unverified {
		return Cell{Kind: CellUnverified, Glyph: '.'}
	}
	bin := int(pick.LatencyMs / binSizeMs)
	if bin > 7 {
		bin = 7
	}
	if bin < 0 {
		bin = 0
	}
	return Cell{Kind: CellSuccess, Glyph: sparkChars[bin], Bin: bin, LatencyMs: pick.LatencyMs}
}

// latencyText renders the current-latency column from the most recent
// bucket's PrimaryPick, falling back to "--" when nothing has run yet or
// the latest pick carries no valid latency (most failures). An unverified
// UDP sample carries a valid 0ms latency and renders as "  0.0ms (UDP)".
func latencyText(ep endpoint.Endpoint, buckets []timeline.Bucket) string {
	for i := len(buckets) - 1; i >= 0; i-- {
		pick, ok := timeline.PrimaryPick(ep, buckets[i])
		if !ok {
			continue
		}
		if !pick.LatencyValid {
			return fmt.Sprintf("%6s (%s)", "--", pick.CheckKind.ShortName())
		}
		return fmt.Sprintf("%6.1fms (%s)", pick.LatencyMs, pick.CheckKind.ShortName())
	}
	return fmt.Sprintf("%6s", "--")
}
