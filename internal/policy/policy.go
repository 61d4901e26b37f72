package policy

import (
	"github.com/san-kum/scenecheck/internal/extract"
)

// Observation is what a policy sees at one step.
type Observation struct {
	Step int
	Time float64
	Ego  extract.Snapshot
}

// Action is a normalized command. Steering and Throttle both lie in [-1, 1];
// negative throttle brakes.
type Action struct {
	Steering float64
	Throttle float64
}

// Clamp limits both components to [-1, 1].
func (a Action) Clamp() Action {
	return Action{Steering: clamp(a.Steering), Throttle: clamp(a.Throttle)}
}

type Policy interface {
	Act(obs Observation) Action
}

// Func adapts an ordinary function to Policy.
type Func func(obs Observation) Action

func (f Func) Act(obs Observation) Action { return f(obs) }

// Configurable policies expose tunable parameters by name.
type Configurable interface {
	GetParams() map[string]float64
	SetParam(name string, value float64)
}

func clamp(v float64) float64 {
	return max(-1, min(1, v))
}
