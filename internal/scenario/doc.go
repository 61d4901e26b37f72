// Package scenario defines the canonical scenario record and its structural
// validator.
//
// A [Record] describes one episode: the time series of every traffic
// participant ([Track]), the static map ([MapFeature]) and time-varying map
// elements such as traffic signals ([DynamicState]). Every coordinate inside a
// record is expressed in the canonical frame (see package coords).
//
// Records are plain data. They are built once, by the extractor or by [Unmarshal],
// and are not modified afterwards; use [Record.Clone] to derive a variant.
//
// # Validation
//
// [SanityCheck] enforces the structural invariants before a record is compared
// or stored:
//
//	if err := scenario.SanityCheck(rec); err != nil {
//	    var se *scenario.StructuralError
//	    errors.As(err, &se) // se.Field names the first violated invariant
//	}
//
// # Thread Safety
//
// Records carry no behaviour and no locks. Concurrent reads are safe as long as
// no caller mutates a shared record.
package scenario
