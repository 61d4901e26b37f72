package metrics

import (
	"math"

	"github.com/san-kum/scenecheck/internal/coords"
)

// HeadingDrift is the largest wrapped heading difference in radians.
type HeadingDrift struct {
	name   string
	maxAbs float64
}

func NewHeadingDrift() *HeadingDrift {
	return &HeadingDrift{name: "heading_drift"}
}

func (h *HeadingDrift) Name() string { return h.name }

func (h *HeadingDrift) Observe(a, b Sample, t int) {
	h.maxAbs = max(h.maxAbs, math.Abs(coords.AngleDiff(b.Heading, a.Heading)))
}

func (h *HeadingDrift) Value() float64 { return h.maxAbs }

func (h *HeadingDrift) Reset() { h.maxAbs = 0 }
