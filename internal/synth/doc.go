// Package synth generates deterministic raw episodes for reproduction checks.
//
// A [Generator] drives a kinematic bicycle ([Bicycle]) for the ego with a
// [policy.Policy] and integrates every vehicle with a fixed-step [Integrator]
// ([RK4] or [Euler]). Output is written in the source frame, y flipped and
// heading negated, so that extract.BuildRecord has real conversion work to
// do. A [Teleport] injects a position discontinuity into one object.
//
//	gen := synth.New(synth.NewBicycle(), synth.NewRK4(), policy.Idle())
//	ep, err := gen.Run(ctx, synth.DefaultConfig())
//	rec, err := extract.BuildRecord(*ep)
package synth
