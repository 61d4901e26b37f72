package viz

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"gonum.org/v1/gonum/spatial/r2"
)

const blank = 0x2800

// Dot bits of a Braille cell, indexed [row][col].
var pixelMap = [4][2]int{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

// Canvas is a grid of Braille cells used to plot trajectories in a terminal.
type Canvas struct {
	Width, Height int
	Grid          [][]rune
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{
		Width:  w,
		Height: h,
		Grid:   make([][]rune, h),
	}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
		for j := range c.Grid[i] {
			c.Grid[i][j] = blank
		}
	}
	return c
}

// Set lights the dot at (x, y) in dot coordinates; the canvas is Width*2 by
// Height*4 dots. Out of range dots are ignored.
func (c *Canvas) Set(x, y int) {
	if x < 0 || y < 0 {
		return
	}

	col := x / 2
	row := y / 4
	if col >= c.Width || row >= c.Height {
		return
	}

	subX := x % 2
	subY := y % 4

	c.Grid[row][col] |= rune(pixelMap[subY][subX])
}

// DrawLine draws a Bresenham line between two dots.
func (c *Canvas) DrawLine(x0, y0, x1, y1 int) {
	dx := absInt(x1 - x0)
	dy := absInt(y1 - y0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy

	for {
		c.Set(x0, y0)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row) + "\n")
	}
	return b.String()
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

var (
	pathAStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ccff"))
	pathBStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffaa00"))
	bothStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffffff"))
)

// Bounds returns the planar bounding box of every point in paths.
func Bounds(paths ...[]r2.Vec) (lo, hi r2.Vec) {
	lo = r2.Vec{X: math.Inf(1), Y: math.Inf(1)}
	hi = r2.Vec{X: math.Inf(-1), Y: math.Inf(-1)}
	for _, p := range paths {
		for _, v := range p {
			lo.X, lo.Y = math.Min(lo.X, v.X), math.Min(lo.Y, v.Y)
			hi.X, hi.Y = math.Max(hi.X, v.X), math.Max(hi.Y, v.Y)
		}
	}
	return lo, hi
}

// DrawPath draws path scaled from the box [lo, hi] onto the canvas, with y
// pointing up.
func (c *Canvas) DrawPath(path []r2.Vec, lo, hi r2.Vec) {
	w, h := c.Width*2-1, c.Height*4-1
	sx, sy := hi.X-lo.X, hi.Y-lo.Y
	if sx == 0 {
		sx = 1
	}
	if sy == 0 {
		sy = 1
	}
	// Keep the aspect ratio; a Braille cell is two dots wide and four tall.
	scale := math.Min(float64(w)/sx, float64(h)/sy)

	px := func(v r2.Vec) (int, int) {
		return int(math.Round((v.X - lo.X) * scale)), h - int(math.Round((v.Y-lo.Y)*scale))
	}
	for i, v := range path {
		x1, y1 := px(v)
		if i == 0 {
			c.Set(x1, y1)
			continue
		}
		x0, y0 := px(path[i-1])
		c.DrawLine(x0, y0, x1, y1)
	}
}

// Overlay renders paths a and b on one w x h canvas. Cells touched only by a
// or only by b are colored apart; shared cells are white.
func Overlay(a, b []r2.Vec, w, h int) string {
	lo, hi := Bounds(a, b)
	ca, cb := NewCanvas(w, h), NewCanvas(w, h)
	if len(a) > 0 || len(b) > 0 {
		ca.DrawPath(a, lo, hi)
		cb.DrawPath(b, lo, hi)
	}

	var s strings.Builder
	for row := 0; row < h; row++ {
		for col := 0; col < w; col++ {
			ra, rb := ca.Grid[row][col], cb.Grid[row][col]
			cell := string(ra | rb)
			switch {
			case ra != blank && rb != blank:
				s.WriteString(bothStyle.Render(cell))
			case ra != blank:
				s.WriteString(pathAStyle.Render(cell))
			case rb != blank:
				s.WriteString(pathBStyle.Render(cell))
			default:
				s.WriteString(cell)
			}
		}
		s.WriteByte('\n')
	}
	return s.String()
}
