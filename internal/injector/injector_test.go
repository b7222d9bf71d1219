package injector

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/pitchsim/internal/config"
	"github.com/zeusync/pitchsim/internal/core/events/bus"
	"github.com/zeusync/pitchsim/internal/core/pitch"
)

func TestInitializeApp(t *testing.T) {
	cfg := config.Default()
	cfg.Log.Level = "error"

	app, err := InitializeApp(&cfg)
	require.NoError(t, err)
	require.NotNil(t, app.Session)
	require.NotNil(t, app.Runner)
	require.NotNil(t, app.Server)

	var started []bus.Event
	_, err = app.Bus.Subscribe(pitch.EventStarted, func(e bus.Event) error {
		started = append(started, e)
		return nil
	})
	require.NoError(t, err)

	require.NoError(t, app.Session.StartPitch(pitch.Canned(pitch.Slider)))
	assert.Len(t, started, 1)
	assert.Equal(t, cfg.Simulation.TrajectoryCap, app.Session.Capacity())
}

func TestInitializeApp_BadLogConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Log.Encoding = "xml"

	_, err := InitializeApp(&cfg)
	assert.Error(t, err)
}
