package policy

import (
	"gonum.org/v1/gonum/spatial/r2"
)

// Cruise holds a target speed with a PID on throttle and keeps the lane
// y = LaneY with linear state feedback on lateral offset and heading.
type Cruise struct {
	Speed *PID
	LaneY float64
	// K weighs lateral offset and heading error for steering.
	K [2]float64
}

func NewCruise(speed, laneY float64) *Cruise {
	return &Cruise{
		Speed: NewPID(0.5, 0.05, 0.0, speed),
		LaneY: laneY,
		K:     [2]float64{0.2, 1.0},
	}
}

func (c *Cruise) Act(obs Observation) Action {
	throttle := c.Speed.Update(r2.Norm(obs.Ego.Velocity), obs.Time)
	steer := -c.K[0]*(obs.Ego.Position.Y-c.LaneY) - c.K[1]*obs.Ego.Heading
	return Action{Steering: steer, Throttle: throttle}.Clamp()
}

func (c *Cruise) GetParams() map[string]float64 {
	return map[string]float64{
		"Kp":    c.Speed.Kp,
		"Ki":    c.Speed.Ki,
		"Kd":    c.Speed.Kd,
		"Speed": c.Speed.Target,
		"LaneY": c.LaneY,
		"KLat":  c.K[0],
		"KHead": c.K[1],
	}
}

func (c *Cruise) SetParam(name string, value float64) {
	switch name {
	case "Kp":
		c.Speed.Kp = value
	case "Ki":
		c.Speed.Ki = value
	case "Kd":
		c.Speed.Kd = value
	case "Speed":
		c.Speed.Target = value
	case "LaneY":
		c.LaneY = value
	case "KLat":
		c.K[0] = value
	case "KHead":
		c.K[1] = value
	}
}
