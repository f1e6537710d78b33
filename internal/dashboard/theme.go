package dashboard

import "github.com/charmbracelet/lipgloss"

// Theme maps the Frame's abstract cell kinds/color bins to concrete
// lipgloss styles. Colors follow the teacher's 256-color palette choices
// in internal/display/tui.go (rttStyle=82 green, timeoutStyle=196 red).
type Theme struct {
	Label    lipgloss.Style
	Header   lipgloss.Style
	Problem  lipgloss.Style
	Green    lipgloss.Style
	Yellow   lipgloss.Style
	Orange   lipgloss.Style
	Red      lipgloss.Style
	Dim      lipgloss.Style
	DimUnver lipgloss.Style
}

// DefaultTheme is the color set used when --no-color is not set.
var DefaultTheme = Theme{
	Label:    lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
	Header:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("240")),
	Problem:  lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
	Green:    lipgloss.NewStyle().Foreground(lipgloss.Color("82")),
	Yellow:   lipgloss.NewStyle().Foreground(lipgloss.Color("220")),
	Orange:   lipgloss.NewStyle().Foreground(lipgloss.Color("208")),
	Red:      lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
	Dim:      lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
	DimUnver: lipgloss.NewStyle().Foreground(lipgloss.Color("136")),
}

// PlainTheme renders every style as a no-op, used for --no-color.
var PlainTheme = Theme{
	Label: lipgloss.NewStyle(), Header: lipgloss.NewStyle(), Problem: lipgloss.NewStyle(),
	Green: lipgloss.NewStyle(), Yellow: lipgloss.NewStyle(), Orange: lipgloss.NewStyle(),
	Red: lipgloss.NewStyle(), Dim: lipgloss.NewStyle(), DimUnver: lipgloss.NewStyle(),
}

// RenderCell renders one cell's glyph with the style its kind/bin implies.
func (t Theme) RenderCell(c Cell, thresholds Thresholds) string {
	switch c.Kind {
	case CellFailure:
		return t.Red.Render(string(c.Glyph))
	case CellUnverified:
		return t.DimUnver.Render(string(c.Glyph))
	case CellSuccess:
		switch thresholds.ColorBin(c.LatencyMs) {
		case "green":
			return t.Green.Render(string(c.Glyph))
		case "yellow":
			return t.Yellow.Render(string(c.Glyph))
		case "orange":
			return t.Orange.Render(string(c.Glyph))
		default:
			return t.Red.Render(string(c.Glyph))
		}
	default:
		return t.Dim.Render(string(c.Glyph))
	}
}
