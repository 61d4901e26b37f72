// Package compare decides whether two scenario records describe the same
// episode.
//
// Both records are sanity-checked first; a structurally invalid record is never
// compared. The comparison then walks the records under a [Tolerance] table keyed
// by field name, collecting every difference into a [Report] instead of stopping
// at the first one:
//
//	rep, err := compare.Compare(exported, replayed, compare.FullScene, compare.DefaultTolerance())
//	if err != nil {
//	    // a or b failed scenario.SanityCheck
//	}
//	if !rep.OK() {
//	    fmt.Print(rep.Format())
//	}
//
// # Length Policy
//
// Record a is the authoritative export and may be longer than b, which is often
// a reproduction that ended early. Only the common prefix is compared. A
// strict tolerance ([StrictTolerance]) restores the older equal-length,
// bit-exact policy.
//
// # Modes
//
//   - [EgoOnly]: only each record's own ego track is compared
//   - [FullScene]: tracks, map features and dynamic map states must share key
//     sets and every matched entry is compared
package compare
