package metrics

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// VelocityDrift is the mean absolute speed difference.
type VelocityDrift struct {
	name    string
	sum     float64
	samples int
}

func NewVelocityDrift() *VelocityDrift {
	return &VelocityDrift{name: "velocity_drift"}
}

func (v *VelocityDrift) Name() string { return v.name }

func (v *VelocityDrift) Observe(a, b Sample, t int) {
	v.sum += math.Abs(r2.Norm(a.Velocity) - r2.Norm(b.Velocity))
	v.samples++
}

func (v *VelocityDrift) Value() float64 {
	if v.samples == 0 {
		return 0
	}
	return v.sum / float64(v.samples)
}

func (v *VelocityDrift) Reset() {
	v.sum = 0
	v.samples = 0
}

// ValidAgreement is the fraction of steps whose valid flags match.
type ValidAgreement struct {
	name       string
	violations int
	samples    int
}

func NewValidAgreement() *ValidAgreement {
	return &ValidAgreement{name: "valid_agreement"}
}

func (s *ValidAgreement) Name() string { return s.name }

func (s *ValidAgreement) Observe(a, b Sample, t int) {
	s.samples++
	if a.Valid != b.Valid {
		s.violations++
	}
}

func (s *ValidAgreement) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *ValidAgreement) Reset() {
	s.violations = 0
	s.samples = 0
}

// ControlEffort is the mean absolute control echo of the reproduced track.
// Tracks without control echoes score zero.
type ControlEffort struct {
	name    string
	sum     float64
	samples int
}

func NewControlEffort() *ControlEffort {
	return &ControlEffort{name: "control_effort"}
}

func (c *ControlEffort) Name() string { return c.name }

func (c *ControlEffort) Observe(a, b Sample, t int) {
	for _, val := range b.Controls {
		c.sum += math.Abs(val)
	}
	c.samples++
}

func (c *ControlEffort) Value() float64 {
	if c.samples == 0 {
		return 0
	}
	return c.sum / float64(c.samples)
}

func (c *ControlEffort) Reset() {
	c.sum = 0
	c.samples = 0
}
