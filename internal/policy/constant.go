package policy

type Constant struct {
	action Action
}

func NewConstant(steering, throttle float64) *Constant {
	return &Constant{action: Action{Steering: steering, Throttle: throttle}.Clamp()}
}

// Idle keeps the wheel straight at full throttle.
func Idle() *Constant {
	return NewConstant(0, 1)
}

func (c *Constant) Act(Observation) Action {
	return c.action
}
