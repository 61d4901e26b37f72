package viz

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/scenecheck/internal/compare"
)

var (
	Subtle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#666688"))

	StatusOK = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00ff88"))

	StatusFail = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ff4444"))

	MetricValue = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00ccff")).
			Bold(true)

	MetricLabel = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888899"))

	KeyHint = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#666688")).
		Italic(true)

	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ffffff")).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(lipgloss.Color("#444466"))

	Selected = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ff00ff")).
			Background(lipgloss.Color("#1a001a"))

	Panel = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#444466")).
		Padding(0, 1)

	SparkHigh = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff4444"))
	SparkMid  = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffcc00"))
	SparkLow  = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ff88"))
)

var kindColors = map[compare.Kind]lipgloss.Color{
	compare.IdentitySetMismatch: lipgloss.Color("#ff00ff"),
	compare.LengthMismatch:      lipgloss.Color("#ffaa00"),
	compare.ToleranceExceeded:   lipgloss.Color("#ff4444"),
	compare.TypeMismatch:        lipgloss.Color("#00ffff"),
	compare.MissingField:        lipgloss.Color("#ffff00"),
}

func KindStyle(k compare.Kind) lipgloss.Style {
	c, ok := kindColors[k]
	if !ok {
		return Subtle
	}
	return lipgloss.NewStyle().Foreground(c)
}

// RenderReport renders rep for a terminal, truncated to limit mismatch lines
// when limit > 0.
func RenderReport(rep *compare.Report, limit int) string {
	var b strings.Builder
	b.WriteString(HeaderStyle.Render(fmt.Sprintf("%s vs %s", rep.A, rep.B)))
	b.WriteByte('\n')
	b.WriteString(MetricLabel.Render("mode ") + MetricValue.Render(string(rep.Mode)))
	b.WriteString(MetricLabel.Render("  steps ") + MetricValue.Render(fmt.Sprint(rep.Steps)))
	b.WriteString("  ")
	if rep.OK() {
		b.WriteString(StatusOK.Render("OK"))
		b.WriteByte('\n')
		return b.String()
	}
	b.WriteString(StatusFail.Render(fmt.Sprintf("%d MISMATCHES", len(rep.Mismatches))))
	b.WriteByte('\n')

	for i, m := range rep.Mismatches {
		if limit > 0 && i == limit {
			b.WriteString(Subtle.Render(fmt.Sprintf("  ... %d more", len(rep.Mismatches)-limit)))
			b.WriteByte('\n')
			break
		}
		b.WriteString("  ")
		b.WriteString(KindStyle(m.Kind).Render(m.String()))
		b.WriteByte('\n')
	}
	return b.String()
}

// RenderMetrics renders named values sorted by name.
func RenderMetrics(values map[string]float64) string {
	var b strings.Builder
	for _, name := range slices.Sorted(maps.Keys(values)) {
		b.WriteString(MetricLabel.Render(fmt.Sprintf("%-20s", name)))
		b.WriteString(MetricValue.Render(fmt.Sprintf("%.6g", values[name])))
		b.WriteByte('\n')
	}
	return b.String()
}

// SparklineChart renders a mini sparkline from values
func SparklineChart(values []float64, width int) string {
	if len(values) == 0 {
		return strings.Repeat("─", width)
	}

	chars := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	lo, hi := slices.Min(values), slices.Max(values)
	rng := hi - lo
	if rng == 0 {
		rng = 1
	}

	step := len(values) / width
	if step < 1 {
		step = 1
	}

	var result strings.Builder
	for i := 0; i < width && i*step < len(values); i++ {
		norm := (values[i*step] - lo) / rng
		idx := max(0, min(len(chars)-1, int(norm*float64(len(chars)-1))))

		c := string(chars[idx])
		switch {
		case norm > 0.7:
			result.WriteString(SparkHigh.Render(c))
		case norm > 0.3:
			result.WriteString(SparkMid.Render(c))
		default:
			result.WriteString(SparkLow.Render(c))
		}
	}
	return result.String()
}

func Separator(width int) string {
	mid := width / 2
	left := strings.Repeat("─", max(mid-3, 0))
	right := strings.Repeat("─", max(width-mid-3, 0))
	return Subtle.Render(left + " ◆ " + right)
}
