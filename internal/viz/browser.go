package viz

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/scenecheck/internal/compare"
	"github.com/san-kum/scenecheck/internal/metrics"
	"github.com/san-kum/scenecheck/internal/scenario"
)

var filterOrder = []compare.Kind{
	"",
	compare.ToleranceExceeded,
	compare.LengthMismatch,
	compare.IdentitySetMismatch,
	compare.TypeMismatch,
	compare.MissingField,
}

// Browser is a Bubble Tea model for stepping through a report's mismatches.
// For track mismatches it overlays both trajectories and their drift metrics.
type Browser struct {
	a, b          *scenario.Record
	rep           *compare.Report
	visible       []int
	cursor        int
	filter        int
	width, height int
}

func NewBrowser(a, b *scenario.Record, rep *compare.Report) Browser {
	br := Browser{a: a, b: b, rep: rep, width: 80, height: 24}
	br.applyFilter()
	return br
}

func (m Browser) Init() tea.Cmd { return nil }

func (m Browser) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.visible)-1 {
				m.cursor++
			}
		case "home", "g":
			m.cursor = 0
		case "end", "G":
			m.cursor = max(len(m.visible)-1, 0)
		case "tab":
			m.filter = (m.filter + 1) % len(filterOrder)
			m.applyFilter()
		}
	}
	return m, nil
}

func (m *Browser) applyFilter() {
	m.visible = nil
	kind := filterOrder[m.filter]
	for i, mm := range m.rep.Mismatches {
		if kind == "" || mm.Kind == kind {
			m.visible = append(m.visible, i)
		}
	}
	m.cursor = 0
}

// Selected returns the highlighted mismatch.
func (m Browser) Selected() (compare.Mismatch, bool) {
	if len(m.visible) == 0 {
		return compare.Mismatch{}, false
	}
	return m.rep.Mismatches[m.visible[m.cursor]], true
}

func (m Browser) Filter() compare.Kind { return filterOrder[m.filter] }

func (m Browser) View() string {
	var b strings.Builder

	filter := "all"
	if k := m.Filter(); k != "" {
		filter = string(k)
	}
	b.WriteString(HeaderStyle.Render(fmt.Sprintf("%s vs %s  [%s]  %d/%d",
		m.rep.A, m.rep.B, filter, len(m.visible), len(m.rep.Mismatches))))
	b.WriteByte('\n')

	if m.rep.OK() {
		b.WriteString(StatusOK.Render("no mismatches"))
		b.WriteByte('\n')
		b.WriteString(KeyHint.Render("q quit"))
		return b.String()
	}

	rows := max(m.height/3, 5)
	start := max(0, min(m.cursor-rows/2, len(m.visible)-rows))
	for i := start; i < len(m.visible) && i < start+rows; i++ {
		mm := m.rep.Mismatches[m.visible[i]]
		line := mm.String()
		if i == m.cursor {
			b.WriteString(Selected.Render("> " + line))
		} else {
			b.WriteString("  " + KindStyle(mm.Kind).Render(line))
		}
		b.WriteByte('\n')
	}

	if sel, ok := m.Selected(); ok {
		b.WriteString(Separator(min(m.width, 60)))
		b.WriteByte('\n')
		b.WriteString(m.detail(sel))
	}
	b.WriteString(KeyHint.Render("j/k move  tab filter  q quit"))
	return b.String()
}

func (m Browser) detail(sel compare.Mismatch) string {
	if sel.Collection != scenario.SectionTracks {
		return Panel.Render(sel.String()) + "\n"
	}
	ta, tb := m.track(m.a, sel.ID, 0), m.track(m.b, sel.ID, 1)
	if ta == nil || tb == nil {
		return Panel.Render(sel.String()) + "\n"
	}

	w := max(min(m.width-4, 60), 10)
	h := max(m.height/3, 4)
	plot := Overlay(path(ta), path(tb), w/2, h)
	stats := RenderMetrics(metrics.Track(ta, tb, metrics.Default()...))
	drift := SparklineChart(metrics.Distances(ta, tb), w)
	return Panel.Render(plot+"\n"+drift) + "\n" + stats
}

// track resolves an id against r, handling the "a|b" form used when the two
// records name their ego differently.
func (m Browser) track(r *scenario.Record, id string, side int) *scenario.Track {
	if parts := strings.SplitN(id, "|", 2); len(parts) == 2 {
		id = parts[side]
	}
	return r.Tracks[id]
}

func path(tr *scenario.Track) []r2.Vec {
	out := make([]r2.Vec, tr.State.Len())
	for i, p := range tr.State.Position {
		out[i] = r2.Vec{X: p.X, Y: p.Y}
	}
	return out
}
