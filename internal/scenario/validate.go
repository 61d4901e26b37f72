package scenario

import (
	"fmt"
	"maps"
	"slices"
)

// SanityCheck verifies the structural invariants of r and returns a
// *StructuralError for the first one violated. Checks run in a fixed order
// (sections, tracks by id, dynamic states by id, ego) so the reported
// violation is deterministic.
func SanityCheck(r *Record) error {
	if r == nil {
		return structural(ErrMissingField, "record", "record is nil")
	}

	switch {
	case r.Length == LengthUnset:
		return structural(ErrMissingField, SectionLength, "required section missing")
	case r.Length < 0:
		return structural(ErrInvalidLength, SectionLength, "negative length %d", r.Length)
	case r.Tracks == nil:
		return structural(ErrMissingField, SectionTracks, "required section missing")
	case r.MapFeatures == nil:
		return structural(ErrMissingField, SectionMapFeatures, "required section missing")
	case r.DynamicMapStates == nil:
		return structural(ErrMissingField, SectionDynamicMapStates, "required section missing")
	case r.Metadata == nil:
		return structural(ErrMissingField, SectionMetadata, "required section missing")
	}

	for _, id := range r.TrackIDs() {
		if err := checkTrack(id, r.Tracks[id], r.Length); err != nil {
			return err
		}
	}

	for _, id := range r.MapFeatureIDs() {
		if r.MapFeatures[id] == nil {
			return structural(ErrMissingField, SectionMapFeatures+"."+id, "entry is nil")
		}
	}

	for _, id := range r.DynamicStateIDs() {
		d := r.DynamicMapStates[id]
		field := SectionDynamicMapStates + "." + id
		if d == nil {
			return structural(ErrMissingField, field, "entry is nil")
		}
		if len(d.State) > r.Length {
			return structural(ErrLengthMismatch, field, "state length %d exceeds record length %d", len(d.State), r.Length)
		}
	}

	if r.Metadata.SDCID == "" {
		return structural(ErrUnresolvedEgo, SectionMetadata+".sdc_id", "empty")
	}
	if _, ok := r.Tracks[r.Metadata.SDCID]; !ok {
		return structural(ErrUnresolvedEgo, SectionMetadata+".sdc_id", "%q not in tracks", r.Metadata.SDCID)
	}

	return nil
}

func checkTrack(id string, t *Track, length int) error {
	field := SectionTracks + "." + id
	if t == nil {
		return structural(ErrMissingField, field, "entry is nil")
	}

	lengths := t.State.Lengths()
	want := t.State.Len()
	for _, name := range slices.Sorted(maps.Keys(lengths)) {
		if lengths[name] != want {
			return structural(ErrLengthMismatch, fmt.Sprintf("%s.state.%s", field, name),
				"length %d, position has %d", lengths[name], want)
		}
	}
	if want > length {
		return structural(ErrLengthMismatch, field+".state", "length %d exceeds record length %d", want, length)
	}
	return nil
}
