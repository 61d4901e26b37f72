package policy

import (
	"errors"
	"fmt"

	"github.com/san-kum/scenecheck/internal/scenario"
)

var ErrNoControls = errors.New("policy: track has no control echoes")

// Replay returns the actions recorded on a track, one per step. Steps past the
// end repeat the last action.
type Replay struct {
	actions []Action
}

func NewReplay(actions []Action) *Replay {
	return &Replay{actions: actions}
}

// ReplayTrack builds a Replay from a track's steering, throttle and brake
// echoes. Throttle minus brake gives the signed throttle command.
func ReplayTrack(tr *scenario.Track) (*Replay, error) {
	c := tr.State.Controls
	steer, ok := c[scenario.ControlSteering]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoControls, scenario.ControlSteering)
	}
	throttle, ok := c[scenario.ControlThrottle]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoControls, scenario.ControlThrottle)
	}
	brake := c[scenario.ControlBrake]

	n := min(len(steer), len(throttle))
	actions := make([]Action, n)
	for i := range actions {
		a := Action{Steering: steer[i], Throttle: throttle[i]}
		if i < len(brake) {
			a.Throttle -= brake[i]
		}
		actions[i] = a.Clamp()
	}
	return NewReplay(actions), nil
}

func (r *Replay) Len() int { return len(r.actions) }

func (r *Replay) Act(obs Observation) Action {
	if len(r.actions) == 0 {
		return Action{}
	}
	i := max(0, min(obs.Step, len(r.actions)-1))
	return r.actions[i]
}
