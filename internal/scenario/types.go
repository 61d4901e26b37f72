package scenario

import (
	"maps"
	"slices"

	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// LengthUnset marks a record whose length was never provided.
const LengthUnset = -1

// Section and state field names as they appear in serialized records and
// mismatch reports.
const (
	SectionLength           = "length"
	SectionTracks           = "tracks"
	SectionMapFeatures      = "map_features"
	SectionDynamicMapStates = "dynamic_map_states"
	SectionMetadata         = "metadata"

	FieldPosition = "position"
	FieldHeading  = "heading"
	FieldVelocity = "velocity"
	FieldSize     = "size"
	FieldValid    = "valid"
	FieldType     = "type"
	FieldPolyline = "polyline"
	FieldState    = "state"
	FieldControls = "controls"

	ControlThrottle = "throttle"
	ControlBrake    = "brake"
	ControlSteering = "steering"
)

type ObjectType string

const (
	TypeVehicle    ObjectType = "VEHICLE"
	TypePedestrian ObjectType = "PEDESTRIAN"
	TypeCyclist    ObjectType = "CYCLIST"
	TypeOther      ObjectType = "OTHER"

	TypeLaneCenter   ObjectType = "LANE_SURFACE_STREET"
	TypeRoadLine     ObjectType = "ROAD_LINE_BROKEN_SINGLE_WHITE"
	TypeRoadEdge     ObjectType = "ROAD_EDGE_BOUNDARY"
	TypeCrosswalk    ObjectType = "CROSSWALK"
	TypeTrafficLight ObjectType = "TRAFFIC_LIGHT"
)

type Record struct {
	Length           int
	Tracks           map[string]*Track
	MapFeatures      map[string]*MapFeature
	DynamicMapStates map[string]*DynamicState
	Metadata         *Metadata
}

// New returns a record with every section present and empty.
func New(id string, length int) *Record {
	return &Record{
		Length:           length,
		Tracks:           make(map[string]*Track),
		MapFeatures:      make(map[string]*MapFeature),
		DynamicMapStates: make(map[string]*DynamicState),
		Metadata:         &Metadata{ID: id},
	}
}

type Metadata struct {
	ID     string            `json:"id"`
	SDCID  string            `json:"sdc_id"`
	Source string            `json:"source,omitempty"`
	Dt     float64           `json:"dt,omitempty"`
	Extra  map[string]string `json:"extra,omitempty"`
}

type Track struct {
	Type  ObjectType
	State TrackState
}

// TrackState holds one participant's per-timestep arrays. Controls carries
// command echoes (throttle, brake, steering) recorded by simulated sources;
// they are not ground truth.
type TrackState struct {
	Position []r3.Vec
	Heading  []float64
	Velocity []r2.Vec
	Size     []r3.Vec
	Valid    []bool
	Controls map[string][]float64
}

// Lengths reports the sequence length of every state field, keyed by field name.
func (s TrackState) Lengths() map[string]int {
	l := map[string]int{
		FieldPosition: len(s.Position),
		FieldHeading:  len(s.Heading),
		FieldVelocity: len(s.Velocity),
		FieldSize:     len(s.Size),
		FieldValid:    len(s.Valid),
	}
	for name, v := range s.Controls {
		l[name] = len(v)
	}
	return l
}

// Len is the length of the position sequence, which every other field must match.
func (s TrackState) Len() int {
	return len(s.Position)
}

// ControlNames returns the recorded control echo names in sorted order.
func (s TrackState) ControlNames() []string {
	return slices.Sorted(maps.Keys(s.Controls))
}

type MapFeature struct {
	Type     ObjectType
	Polyline []r3.Vec
}

// DynamicState is a time-varying map element, e.g. a signal whose State holds
// one phase name per timestep.
type DynamicState struct {
	Type  ObjectType
	State []string
}

// SDCTrack returns the ego track, or nil when it cannot be resolved.
func (r *Record) SDCTrack() *Track {
	if r == nil || r.Metadata == nil || r.Tracks == nil {
		return nil
	}
	return r.Tracks[r.Metadata.SDCID]
}

func (r *Record) TrackIDs() []string {
	return slices.Sorted(maps.Keys(r.Tracks))
}

func (r *Record) MapFeatureIDs() []string {
	return slices.Sorted(maps.Keys(r.MapFeatures))
}

func (r *Record) DynamicStateIDs() []string {
	return slices.Sorted(maps.Keys(r.DynamicMapStates))
}

// Clone returns a deep copy. Missing sections stay missing.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	c := &Record{Length: r.Length}
	if r.Tracks != nil {
		c.Tracks = make(map[string]*Track, len(r.Tracks))
		for id, t := range r.Tracks {
			c.Tracks[id] = t.Clone()
		}
	}
	if r.MapFeatures != nil {
		c.MapFeatures = make(map[string]*MapFeature, len(r.MapFeatures))
		for id, f := range r.MapFeatures {
			if f == nil {
				c.MapFeatures[id] = nil
				continue
			}
			c.MapFeatures[id] = &MapFeature{Type: f.Type, Polyline: slices.Clone(f.Polyline)}
		}
	}
	if r.DynamicMapStates != nil {
		c.DynamicMapStates = make(map[string]*DynamicState, len(r.DynamicMapStates))
		for id, d := range r.DynamicMapStates {
			if d == nil {
				c.DynamicMapStates[id] = nil
				continue
			}
			c.DynamicMapStates[id] = &DynamicState{Type: d.Type, State: slices.Clone(d.State)}
		}
	}
	if r.Metadata != nil {
		m := *r.Metadata
		m.Extra = maps.Clone(r.Metadata.Extra)
		c.Metadata = &m
	}
	return c
}

func (t *Track) Clone() *Track {
	if t == nil {
		return nil
	}
	c := &Track{
		Type: t.Type,
		State: TrackState{
			Position: slices.Clone(t.State.Position),
			Heading:  slices.Clone(t.State.Heading),
			Velocity: slices.Clone(t.State.Velocity),
			Size:     slices.Clone(t.State.Size),
			Valid:    slices.Clone(t.State.Valid),
		},
	}
	if t.State.Controls != nil {
		c.State.Controls = make(map[string][]float64, len(t.State.Controls))
		for k, v := range t.State.Controls {
			c.State.Controls[k] = slices.Clone(v)
		}
	}
	return c
}
