// Package export writes trajectory overlays as standalone SVG files.
package export

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/scenecheck/internal/viz"
)

var ErrTooShort = errors.New("export: nothing to draw")

// Series is one polyline in the overlay.
type Series struct {
	Name   string
	Points []r2.Vec
	Stroke string
}

// Marker highlights a single point, such as the step of largest drift.
type Marker struct {
	At    r2.Vec
	Label string
}

// TrajectorySVG draws every series into a width x height image with y up and
// a 10% margin around the combined bounds.
func TrajectorySVG(w io.Writer, width, height int, series []Series, markers ...Marker) error {
	paths := make([][]r2.Vec, 0, len(series))
	for _, s := range series {
		if len(s.Points) >= 2 {
			paths = append(paths, s.Points)
		}
	}
	if len(paths) == 0 {
		return ErrTooShort
	}

	lo, hi := viz.Bounds(paths...)
	rangeX, rangeY := hi.X-lo.X, hi.Y-lo.Y
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	lo.X -= rangeX * 0.1
	lo.Y -= rangeY * 0.1
	rangeX *= 1.2
	rangeY *= 1.2

	px := func(p r2.Vec) (float64, float64) {
		return (p.X - lo.X) / rangeX * float64(width),
			float64(height) - (p.Y-lo.Y)/rangeY*float64(height)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height)

	for i, s := range series {
		if len(s.Points) < 2 {
			continue
		}
		fmt.Fprintf(&sb, `<path id="%s" fill="none" stroke="%s" stroke-width="1.5" d="M`, s.Name, s.Stroke)
		for j, p := range s.Points {
			x, y := px(p)
			if j > 0 {
				sb.WriteString(" L")
			}
			fmt.Fprintf(&sb, "%.1f,%.1f", x, y)
		}
		sb.WriteString("\"/>\n")
		fmt.Fprintf(&sb, `<text x="8" y="%d" fill="%s" font-size="12">%s</text>
`, 16*(i+1), s.Stroke, s.Name)
	}

	for _, m := range markers {
		x, y := px(m.At)
		fmt.Fprintf(&sb, `<circle cx="%.1f" cy="%.1f" r="4" fill="none" stroke="#ff3366"/>
<text x="%.1f" y="%.1f" fill="#ff3366" font-size="11">%s</text>
`, x, y, x+6, y-6, m.Label)
	}

	sb.WriteString("</svg>\n")
	_, err := io.WriteString(w, sb.String())
	return err
}
