// Package extract turns raw per-object motion logs into canonical kinematic
// snapshots, trajectories and whole scenario records.
//
// Raw logs arrive in the source frame and may contain teleports: a single step
// whose planar displacement exceeds [JumpThreshold]. Everything after the first
// such jump is treated as unusable. [SnapshotAt] (with CheckLastState) and
// [FullTrajectory] share the same scan, so both views of an object end at the
// same timestep.
//
// Truncation is not an error and out-of-range positive timesteps are clamped.
package extract
