package driver

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/pitchsim/internal/config"
	"github.com/zeusync/pitchsim/internal/core/pitch"
)

func TestSimulate_CannedPitches(t *testing.T) {
	for _, typ := range pitch.CannedTypes() {
		t.Run(string(typ), func(t *testing.T) {
			s := pitch.NewSession(pitch.DefaultTarget())
			sum, err := Simulate(s, pitch.Canned(typ), 1.0/60, 5)
			require.NoError(t, err)

			assert.Equal(t, typ, sum.Type)
			assert.Equal(t, pitch.ReasonArrived, sum.Reason)
			assert.NotEmpty(t, sum.PitchID)
			assert.Positive(t, sum.Samples)
			require.NotNil(t, sum.Crossing)
			assert.GreaterOrEqual(t, sum.Final.Z, pitch.DefaultTarget().DistanceAlongAxis()+pitch.DefaultArrivalMargin)
		})
	}
}

func TestSimulate_Timeout(t *testing.T) {
	s := pitch.NewSession(pitch.DefaultTarget())
	sum, err := Simulate(s, pitch.Canned(pitch.Fastball), 1.0/60, 0.05)
	require.ErrorIs(t, err, ErrFlightTimeout)
	assert.Equal(t, pitch.StatusInFlight, s.Status())
	assert.Positive(t, sum.Samples)
}

func TestSimulate_Errors(t *testing.T) {
	s := pitch.NewSession(pitch.DefaultTarget())

	_, err := Simulate(s, pitch.Canned(pitch.PitchType("eephus")), 1.0/60, 5)
	assert.ErrorIs(t, err, pitch.ErrUnknownProfile)

	_, err = Simulate(s, pitch.Loaded(), 1.0/60, 5)
	assert.ErrorIs(t, err, pitch.ErrMissingData)

	_, err = Simulate(s, pitch.Canned(pitch.Fastball), 0, 5)
	assert.Error(t, err)
	assert.Equal(t, pitch.StatusIdle, s.Status())
}

func TestSimulateBatch(t *testing.T) {
	cfg := config.Default()
	refs := []pitch.PitchRef{
		pitch.Canned(pitch.Fastball),
		pitch.Canned(pitch.PitchType("eephus")),
		pitch.Raw([]byte(`{"Release":{"Speed":90,"SpinRate":2000},"Movement":{"Tilt":"2:00"}}`)),
		pitch.Canned(pitch.Changeup),
	}

	out, err := SimulateBatch(context.Background(), &cfg, refs, 2, nil)
	require.NoError(t, err)
	require.Len(t, out, len(refs))

	assert.Equal(t, pitch.Fastball, out[0].Type)
	assert.Empty(t, out[0].Error)
	assert.Contains(t, out[1].Error, "eephus")
	assert.Empty(t, out[2].Error)
	assert.Equal(t, pitch.ReasonArrived, out[2].Reason)
	assert.Equal(t, pitch.Changeup, out[3].Type)
}

func TestSimulateBatch_Cancelled(t *testing.T) {
	cfg := config.Default()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := SimulateBatch(ctx, &cfg, []pitch.PitchRef{pitch.Canned(pitch.Fastball)}, 1, nil)
	assert.ErrorIs(t, err, context.Canceled)
}
