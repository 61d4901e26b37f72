package synth

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/scenecheck/internal/coords"
	"github.com/san-kum/scenecheck/internal/extract"
	"github.com/san-kum/scenecheck/internal/policy"
	"github.com/san-kum/scenecheck/internal/scenario"
)

const (
	EgoID     = "ego"
	SourceTag = "synth"
	LaneWidth = 3.5
)

var ErrInvalidConfig = errors.New("synth: invalid config")

// Teleport shifts one object's logged position by Offset, in the source
// frame, from Step onwards.
type Teleport struct {
	Object string
	Step   int
	Offset r2.Vec
}

type Config struct {
	ID    string
	Dt    float64
	Steps int
	Seed  int64
	// Agents is the number of traffic vehicles besides the ego.
	Agents int
	// Speed is the ego's initial speed.
	Speed        float64
	SignalPeriod int
	Teleport     *Teleport
}

func DefaultConfig() Config {
	return Config{
		ID:           "synthetic",
		Dt:           0.1,
		Steps:        100,
		Seed:         1,
		Agents:       2,
		Speed:        10,
		SignalPeriod: 30,
	}
}

type Generator struct {
	dyn        *Bicycle
	integrator Integrator
	ego        policy.Policy
}

func New(dyn *Bicycle, integrator Integrator, ego policy.Policy) *Generator {
	return &Generator{dyn: dyn, integrator: integrator, ego: ego}
}

type vehicle struct {
	obj    extract.RawObject
	x      State
	policy policy.Policy
}

// Run simulates one episode and returns its raw, source-frame log.
func (g *Generator) Run(ctx context.Context, cfg Config) (*extract.Episode, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	vs := []*vehicle{g.newVehicle(EgoID, State{0, 0, 0, cfg.Speed}, g.ego)}
	vs[0].obj.Controls = map[string][]float64{
		scenario.ControlThrottle: make([]float64, 0, cfg.Steps),
		scenario.ControlBrake:    make([]float64, 0, cfg.Steps),
		scenario.ControlSteering: make([]float64, 0, cfg.Steps),
	}
	for k := 1; k <= cfg.Agents; k++ {
		lane := LaneWidth
		if k%2 == 0 {
			lane = -LaneWidth
		}
		speed := 5 + 10*rng.Float64()
		x0 := State{10 + 30*rng.Float64(), lane, 0, speed}
		vs = append(vs, g.newVehicle(fmt.Sprintf("agent_%d", k), x0, g.holdSpeed(speed)))
	}

	dt := cfg.Dt
	yaw := 0.0
	for step := 0; step < cfg.Steps; step++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		t := float64(step) * dt
		for i, v := range vs {
			g.record(v, step, cfg.Teleport)

			obs := policy.Observation{Step: step, Time: t, Ego: g.snapshot(step, v.x, yaw)}
			a := v.policy.Act(obs).Clamp()
			if i == 0 {
				c := v.obj.Controls
				c[scenario.ControlThrottle] = append(c[scenario.ControlThrottle], max(a.Throttle, 0))
				c[scenario.ControlBrake] = append(c[scenario.ControlBrake], max(-a.Throttle, 0))
				c[scenario.ControlSteering] = append(c[scenario.ControlSteering], a.Steering)
				yaw = g.dyn.YawRate(v.x[IdxSpeed], a.Steering)
			}

			v.x = g.integrator.Step(g.dyn, v.x, Control{a.Steering, a.Throttle}, t, dt)
			v.x[IdxSpeed] = max(v.x[IdxSpeed], 0)
		}
	}

	ep := &extract.Episode{
		ID:          cfg.ID,
		Source:      SourceTag,
		Dt:          cfg.Dt,
		Length:      cfg.Steps,
		SDCID:       EgoID,
		MapFeatures: lanes(cfg),
		Signals:     []extract.RawSignal{signal(cfg)},
	}
	for _, v := range vs {
		ep.Objects = append(ep.Objects, v.obj)
	}
	return ep, nil
}

func validateConfig(cfg Config) error {
	if cfg.Dt <= 0 {
		return fmt.Errorf("%w: dt must be positive, got %f", ErrInvalidConfig, cfg.Dt)
	}
	if cfg.Steps <= 0 {
		return fmt.Errorf("%w: steps must be positive, got %d", ErrInvalidConfig, cfg.Steps)
	}
	if cfg.Agents < 0 {
		return fmt.Errorf("%w: agents must not be negative, got %d", ErrInvalidConfig, cfg.Agents)
	}
	if cfg.Speed < 0 {
		return fmt.Errorf("%w: speed must not be negative, got %f", ErrInvalidConfig, cfg.Speed)
	}
	if cfg.SignalPeriod <= 0 {
		return fmt.Errorf("%w: signal period must be positive, got %d", ErrInvalidConfig, cfg.SignalPeriod)
	}
	if tp := cfg.Teleport; tp != nil && (tp.Step < 0 || tp.Step >= cfg.Steps) {
		return fmt.Errorf("%w: teleport step %d outside [0, %d)", ErrInvalidConfig, tp.Step, cfg.Steps)
	}
	return nil
}

func (g *Generator) newVehicle(id string, x0 State, p policy.Policy) *vehicle {
	return &vehicle{
		obj:    extract.RawObject{ID: id, Type: scenario.TypeVehicle},
		x:      x0,
		policy: p,
	}
}

// holdSpeed returns the throttle that balances drag at speed.
func (g *Generator) holdSpeed(speed float64) policy.Policy {
	return policy.NewConstant(0, g.dyn.Drag*speed/g.dyn.MaxAccel)
}

// record appends the vehicle's current state to its raw log in the source
// frame.
func (g *Generator) record(v *vehicle, step int, tp *Teleport) {
	x, y, theta, speed := v.x[IdxX], v.x[IdxY], v.x[IdxHeading], v.x[IdxSpeed]

	p := coords.VectorFromCanonical(r2.Vec{X: x, Y: y})
	if tp != nil && tp.Object == v.obj.ID && step >= tp.Step {
		p = r2.Add(p, tp.Offset)
	}
	vel := coords.VectorFromCanonical(r2.Vec{X: speed * math.Cos(theta), Y: speed * math.Sin(theta)})

	s := &v.obj.State
	s.Position = append(s.Position, r3.Vec{X: p.X, Y: p.Y})
	s.Heading = append(s.Heading, coords.HeadingFromCanonical(theta))
	s.Velocity = append(s.Velocity, vel)
	s.Size = append(s.Size, r3.Vec{X: g.dyn.Length, Y: g.dyn.Width, Z: g.dyn.Height})
	s.Valid = append(s.Valid, true)
}

func (g *Generator) snapshot(step int, x State, yaw float64) extract.Snapshot {
	theta, speed := x[IdxHeading], x[IdxSpeed]
	return extract.Snapshot{
		Index:           step,
		Position:        r2.Vec{X: x[IdxX], Y: x[IdxY]},
		Length:          g.dyn.Length,
		Width:           g.dyn.Width,
		Heading:         coords.WrapToPi(theta),
		Velocity:        r2.Vec{X: speed * math.Cos(theta), Y: speed * math.Sin(theta)},
		Valid:           true,
		AngularVelocity: yaw,
	}
}

func lanes(cfg Config) []extract.RawMapFeature {
	end := 50 + cfg.Speed*cfg.Dt*float64(cfg.Steps)*2
	line := func(y float64) []r3.Vec {
		const n = 11
		pts := make([]r3.Vec, n)
		for i := range pts {
			p := coords.VectorFromCanonical(r2.Vec{X: -50 + (end+50)*float64(i)/(n-1), Y: y})
			pts[i] = r3.Vec{X: p.X, Y: p.Y}
		}
		return pts
	}
	return []extract.RawMapFeature{
		{ID: "lane_center", Type: scenario.TypeLaneCenter, Polyline: line(0)},
		{ID: "lane_left", Type: scenario.TypeLaneCenter, Polyline: line(LaneWidth)},
		{ID: "lane_right", Type: scenario.TypeLaneCenter, Polyline: line(-LaneWidth)},
		{ID: "edge_left", Type: scenario.TypeRoadEdge, Polyline: line(1.5 * LaneWidth)},
		{ID: "edge_right", Type: scenario.TypeRoadEdge, Polyline: line(-1.5 * LaneWidth)},
	}
}

var phases = []string{"GREEN", "YELLOW", "RED"}

func signal(cfg Config) extract.RawSignal {
	s := extract.RawSignal{ID: "signal_0", Type: scenario.TypeTrafficLight, Phases: make([]string, cfg.Steps)}
	for i := range s.Phases {
		s.Phases[i] = phases[(i/cfg.SignalPeriod)%len(phases)]
	}
	return s
}
