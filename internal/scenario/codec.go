package scenario

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// Wire shapes. A missing section encodes as null and decodes back to a nil
// map, so SanityCheck sees the same record on both sides of a round trip.
type wireRecord struct {
	Length           *int                         `json:"length"`
	Tracks           map[string]*wireTrack        `json:"tracks"`
	MapFeatures      map[string]*wireMapFeature   `json:"map_features"`
	DynamicMapStates map[string]*wireDynamicState `json:"dynamic_map_states"`
	Metadata         *Metadata                    `json:"metadata"`
}

type wireTrack struct {
	Type  ObjectType `json:"type"`
	State wireState  `json:"state"`
}

type wireState struct {
	Position [][3]wireFloat         `json:"position"`
	Heading  []wireFloat            `json:"heading"`
	Velocity [][2]wireFloat         `json:"velocity"`
	Size     [][3]wireFloat         `json:"size"`
	Valid    []bool                 `json:"valid"`
	Controls map[string][]wireFloat `json:"controls,omitempty"`
}

type wireMapFeature struct {
	Type     ObjectType     `json:"type"`
	Polyline [][3]wireFloat `json:"polyline"`
}

// wireFloat is a float64 whose non-finite values travel as the strings
// "NaN", "Inf" and "-Inf", which plain JSON numbers cannot express.
type wireFloat float64

func (f wireFloat) MarshalJSON() ([]byte, error) {
	v := float64(f)
	switch {
	case math.IsNaN(v):
		return []byte(`"NaN"`), nil
	case math.IsInf(v, 1):
		return []byte(`"Inf"`), nil
	case math.IsInf(v, -1):
		return []byte(`"-Inf"`), nil
	}
	return strconv.AppendFloat(nil, v, 'g', -1, 64), nil
}

func (f *wireFloat) UnmarshalJSON(data []byte) error {
	if len(data) == 0 || data[0] != '"' {
		var v float64
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*f = wireFloat(v)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch s {
	case "NaN":
		*f = wireFloat(math.NaN())
	case "Inf", "+Inf":
		*f = wireFloat(math.Inf(1))
	case "-Inf":
		*f = wireFloat(math.Inf(-1))
	default:
		return fmt.Errorf("scenario: invalid number %q", s)
	}
	return nil
}

type wireDynamicState struct {
	Type  ObjectType `json:"type"`
	State []string   `json:"state"`
}

// Marshal encodes r as JSON. It does not validate r.
func Marshal(r *Record) ([]byte, error) {
	if r == nil {
		return nil, fmt.Errorf("scenario: marshal nil record")
	}
	w := wireRecord{Metadata: r.Metadata}
	if r.Length != LengthUnset {
		l := r.Length
		w.Length = &l
	}
	if r.Tracks != nil {
		w.Tracks = make(map[string]*wireTrack, len(r.Tracks))
		for id, t := range r.Tracks {
			if t == nil {
				w.Tracks[id] = nil
				continue
			}
			w.Tracks[id] = &wireTrack{Type: t.Type, State: toWireState(t.State)}
		}
	}
	if r.MapFeatures != nil {
		w.MapFeatures = make(map[string]*wireMapFeature, len(r.MapFeatures))
		for id, f := range r.MapFeatures {
			if f == nil {
				w.MapFeatures[id] = nil
				continue
			}
			w.MapFeatures[id] = &wireMapFeature{Type: f.Type, Polyline: fromR3(f.Polyline)}
		}
	}
	if r.DynamicMapStates != nil {
		w.DynamicMapStates = make(map[string]*wireDynamicState, len(r.DynamicMapStates))
		for id, d := range r.DynamicMapStates {
			if d == nil {
				w.DynamicMapStates[id] = nil
				continue
			}
			w.DynamicMapStates[id] = &wireDynamicState{Type: d.Type, State: d.State}
		}
	}
	return json.Marshal(w)
}

// Unmarshal decodes a record produced by Marshal. Absent sections stay absent.
func Unmarshal(data []byte) (*Record, error) {
	var w wireRecord
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("scenario: decode: %w", err)
	}
	r := &Record{Length: LengthUnset, Metadata: w.Metadata}
	if w.Length != nil {
		r.Length = *w.Length
	}
	if w.Tracks != nil {
		r.Tracks = make(map[string]*Track, len(w.Tracks))
		for id, t := range w.Tracks {
			if t == nil {
				r.Tracks[id] = nil
				continue
			}
			r.Tracks[id] = &Track{Type: t.Type, State: fromWireState(t.State)}
		}
	}
	if w.MapFeatures != nil {
		r.MapFeatures = make(map[string]*MapFeature, len(w.MapFeatures))
		for id, f := range w.MapFeatures {
			if f == nil {
				r.MapFeatures[id] = nil
				continue
			}
			r.MapFeatures[id] = &MapFeature{Type: f.Type, Polyline: toR3(f.Polyline)}
		}
	}
	if w.DynamicMapStates != nil {
		r.DynamicMapStates = make(map[string]*DynamicState, len(w.DynamicMapStates))
		for id, d := range w.DynamicMapStates {
			if d == nil {
				r.DynamicMapStates[id] = nil
				continue
			}
			r.DynamicMapStates[id] = &DynamicState{Type: d.Type, State: d.State}
		}
	}
	return r, nil
}

func toWireState(s TrackState) wireState {
	w := wireState{
		Position: fromR3(s.Position),
		Heading:  toWireFloats(s.Heading),
		Velocity: make([][2]wireFloat, len(s.Velocity)),
		Size:     fromR3(s.Size),
		Valid:    s.Valid,
	}
	for i, v := range s.Velocity {
		w.Velocity[i] = [2]wireFloat{wireFloat(v.X), wireFloat(v.Y)}
	}
	if s.Controls != nil {
		w.Controls = make(map[string][]wireFloat, len(s.Controls))
		for name, vs := range s.Controls {
			w.Controls[name] = toWireFloats(vs)
		}
	}
	return w
}

func fromWireState(w wireState) TrackState {
	s := TrackState{
		Position: toR3(w.Position),
		Heading:  fromWireFloats(w.Heading),
		Velocity: make([]r2.Vec, len(w.Velocity)),
		Size:     toR3(w.Size),
		Valid:    w.Valid,
	}
	for i, v := range w.Velocity {
		s.Velocity[i] = r2.Vec{X: float64(v[0]), Y: float64(v[1])}
	}
	if w.Controls != nil {
		s.Controls = make(map[string][]float64, len(w.Controls))
		for name, vs := range w.Controls {
			s.Controls[name] = fromWireFloats(vs)
		}
	}
	return s
}

func fromR3(vs []r3.Vec) [][3]wireFloat {
	out := make([][3]wireFloat, len(vs))
	for i, v := range vs {
		out[i] = [3]wireFloat{wireFloat(v.X), wireFloat(v.Y), wireFloat(v.Z)}
	}
	return out
}

func toR3(vs [][3]wireFloat) []r3.Vec {
	out := make([]r3.Vec, len(vs))
	for i, v := range vs {
		out[i] = r3.Vec{X: float64(v[0]), Y: float64(v[1]), Z: float64(v[2])}
	}
	return out
}

// Nil stays nil in both directions so an absent field survives a round trip.
func toWireFloats(vs []float64) []wireFloat {
	if vs == nil {
		return nil
	}
	out := make([]wireFloat, len(vs))
	for i, v := range vs {
		out[i] = wireFloat(v)
	}
	return out
}

func fromWireFloats(ws []wireFloat) []float64 {
	if ws == nil {
		return nil
	}
	out := make([]float64, len(ws))
	for i, w := range ws {
		out[i] = float64(w)
	}
	return out
}
