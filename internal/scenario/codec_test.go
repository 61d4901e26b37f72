package scenario_test

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/scenecheck/internal/scenario"
	"github.com/san-kum/scenecheck/internal/testutil"
)

func TestCodec_RoundTrip(t *testing.T) {
	rec := testutil.Record("s1", 15, "ego", "car_1", "ped_1")
	rec.Tracks["ped_1"].Type = scenario.TypePedestrian
	rec.Metadata.Extra = map[string]string{"map": "S"}

	data, err := scenario.Marshal(rec)
	require.NoError(t, err)

	got, err := scenario.Unmarshal(data)
	require.NoError(t, err)
	require.NoError(t, scenario.SanityCheck(got))

	if diff := cmp.Diff(rec, got, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestCodec_NonFiniteRoundTrip(t *testing.T) {
	rec := testutil.Record("s3", 4, "ego")
	st := &rec.Tracks["ego"].State
	st.Heading[1] = math.NaN()
	st.Position[2].X = math.Inf(1)
	st.Velocity[3].Y = math.Inf(-1)
	st.Controls[scenario.ControlSteering][0] = math.NaN()
	rec.MapFeatures["lane_1"].Polyline[0].Z = math.NaN()
	require.NoError(t, scenario.SanityCheck(rec))

	data, err := scenario.Marshal(rec)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"NaN"`)
	assert.Contains(t, string(data), `"-Inf"`)

	got, err := scenario.Unmarshal(data)
	require.NoError(t, err)
	if diff := cmp.Diff(rec, got, cmpopts.EquateEmpty(), cmpopts.EquateNaNs()); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestCodec_InvalidNumberString(t *testing.T) {
	_, err := scenario.Unmarshal([]byte(`{"length":1,"tracks":{"a":{"type":"VEHICLE","state":{"heading":["pi"]}}}}`))
	assert.Error(t, err)
}

func TestCodec_MissingSectionSurvives(t *testing.T) {
	rec := testutil.Record("s2", 10)
	rec.DynamicMapStates = nil

	data, err := scenario.Marshal(rec)
	require.NoError(t, err)
	got, err := scenario.Unmarshal(data)
	require.NoError(t, err)

	assert.Nil(t, got.DynamicMapStates)
	assert.NotNil(t, got.MapFeatures)
	assert.True(t, errors.Is(scenario.SanityCheck(got), scenario.ErrMissingField))
}

func TestCodec_MissingLength(t *testing.T) {
	got, err := scenario.Unmarshal([]byte(`{"tracks":{},"map_features":{},"dynamic_map_states":{},"metadata":{"id":"x","sdc_id":"a"}}`))
	require.NoError(t, err)
	assert.Equal(t, scenario.LengthUnset, got.Length)

	var se *scenario.StructuralError
	require.ErrorAs(t, scenario.SanityCheck(got), &se)
	assert.Equal(t, "length", se.Field)
}

func TestCodec_InvalidJSON(t *testing.T) {
	_, err := scenario.Unmarshal([]byte("{not json"))
	assert.Error(t, err)
}

func TestClone_Independent(t *testing.T) {
	rec := testutil.Record("s3", 5, "ego")
	c := rec.Clone()
	c.Tracks["ego"].State.Heading[0] = 42
	c.Metadata.SDCID = "other"

	assert.Equal(t, 0.0, rec.Tracks["ego"].State.Heading[0])
	assert.Equal(t, "ego", rec.Metadata.SDCID)
	assert.Equal(t, rec.TrackIDs(), c.TrackIDs())
}
