// Package policy defines how an ego agent is driven during a reproduction.
//
// A [Policy] maps the current [Observation] to an [Action]:
//
//   - [Constant]: fixed action every step, e.g. [Idle] (no steering, full throttle)
//   - [Replay]: feeds back the control echoes recorded on an ego track
//   - [Cruise]: PID speed keeping plus state-feedback lane keeping
//   - [Func]: adapts a plain function
//
// Policies implementing [Configurable] expose gains for tuning from config.
package policy
