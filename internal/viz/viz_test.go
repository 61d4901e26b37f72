package viz

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/scenecheck/internal/compare"
	"github.com/san-kum/scenecheck/internal/testutil"
)

func TestCanvasSet(t *testing.T) {
	c := NewCanvas(2, 1)
	c.Set(0, 0)
	c.Set(3, 3)
	c.Set(-1, 0)
	c.Set(10, 10)

	if c.Grid[0][0] != 0x2801 {
		t.Errorf("cell 0 = %U, want U+2801", c.Grid[0][0])
	}
	if c.Grid[0][1] != 0x2880 {
		t.Errorf("cell 1 = %U, want U+2880", c.Grid[0][1])
	}
}

func TestCanvasDrawLine(t *testing.T) {
	c := NewCanvas(2, 1)
	c.DrawLine(0, 0, 3, 0)

	// top row of both cells: dots 1 and 4
	for i, want := range []rune{0x2809, 0x2809} {
		if c.Grid[0][i] != want {
			t.Errorf("cell %d = %U, want %U", i, c.Grid[0][i], want)
		}
	}
}

func TestOverlay(t *testing.T) {
	a := []r2.Vec{{X: 0, Y: 0}, {X: 10, Y: 0}}
	b := []r2.Vec{{X: 0, Y: 5}, {X: 10, Y: 5}}

	out := Overlay(a, b, 10, 4)
	if got := strings.Count(out, "\n"); got != 4 {
		t.Errorf("rows = %d, want 4", got)
	}
	if Overlay(nil, nil, 3, 2) == "" {
		t.Error("empty overlay should still render blank cells")
	}
}

func TestRenderReport(t *testing.T) {
	a := testutil.Record("ep", 6, "ego", "car")
	b := a.Clone()
	for i := range b.Tracks["car"].State.Heading {
		b.Tracks["car"].State.Heading[i] = 2
	}
	rep, err := compare.Compare(a, b, compare.FullScene, compare.DefaultTolerance())
	if err != nil {
		t.Fatal(err)
	}

	out := RenderReport(rep, 2)
	if !strings.Contains(out, "6 MISMATCHES") {
		t.Errorf("missing summary in:\n%s", out)
	}
	if !strings.Contains(out, "4 more") {
		t.Errorf("missing truncation note in:\n%s", out)
	}

	ok, _ := compare.Compare(a, a, compare.FullScene, compare.DefaultTolerance())
	if !strings.Contains(RenderReport(ok, 0), "OK") {
		t.Error("clean report should render OK")
	}
}

func TestBrowser(t *testing.T) {
	a := testutil.Record("ep", 10, "ego", "car")
	b := a.Clone()
	b.Tracks["car"].State.Position[3].X = 9
	b.Tracks["car"].State.Position[4].X = 9
	delete(b.MapFeatures, "lane_1")
	rep, err := compare.Compare(a, b, compare.FullScene, compare.DefaultTolerance())
	if err != nil {
		t.Fatal(err)
	}

	var m tea.Model = NewBrowser(a, b, rep)
	key := func(s string) {
		var msg tea.KeyMsg
		switch s {
		case "tab":
			msg = tea.KeyMsg{Type: tea.KeyTab}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
		}
		m, _ = m.Update(msg)
	}

	sel, ok := m.(Browser).Selected()
	if !ok || sel.Timestep != 3 {
		t.Fatalf("initial selection = %+v", sel)
	}
	if !strings.Contains(m.View(), "position_drift") {
		t.Error("track mismatch view should show drift metrics")
	}

	key("j")
	if sel, _ := m.(Browser).Selected(); sel.Timestep != 4 {
		t.Errorf("after j selection = %+v", sel)
	}
	key("j")
	key("j")
	if sel, _ := m.(Browser).Selected(); sel.Kind != compare.IdentitySetMismatch {
		t.Errorf("cursor should stop at last mismatch, got %+v", sel)
	}

	key("tab")
	if f := m.(Browser).Filter(); f != compare.ToleranceExceeded {
		t.Errorf("filter = %q, want tolerance_exceeded", f)
	}
	if !strings.Contains(m.View(), "2/3") {
		t.Errorf("filtered header missing in:\n%s", m.View())
	}

	key("tab")
	if sel, ok := m.(Browser).Selected(); ok {
		t.Errorf("length filter matched %+v", sel)
	}

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Error("q should quit")
	}
}
