package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/pitchsim/internal/core/pitch"
)

func TestDefaultIsValid(t *testing.T) {
	c := Default()
	require.NoError(t, c.Validate())
	assert.InDelta(t, 1.0/60, c.Simulation.Dt(), 1e-12)
	assert.InDelta(t, 0.4572+18.44, c.Target().DistanceAlongAxis(), 1e-12)
	assert.InDelta(t, pitch.DefaultStrikeZone().Center(), c.Target().Position.Y, 1e-12)
}

func TestLoadYAMLOverridesDefaults(t *testing.T) {
	src := `
field:
  rubber_to_homeplate: 12.44
simulation:
  trajectory_cap: 500
  arrival_margin: 0.1
log:
  level: debug
  encoding: console
server:
  listen_addr: ":9090"
  write_timeout: 2s
`
	c, err := LoadYAML(strings.NewReader(src))
	require.NoError(t, err)
	assert.Equal(t, 12.44, c.Field.RubberToHomeplate)
	assert.Equal(t, pitch.DefaultRubberOffset, c.Field.RubberOffset)
	assert.Equal(t, 500, c.Simulation.TrajectoryCap)
	assert.Equal(t, 60.0, c.Simulation.TickRate)
	assert.Equal(t, "debug", c.Log.Level)
	assert.Equal(t, ":9090", c.Server.ListenAddr)
	assert.Equal(t, 2*time.Second, c.Server.WriteTimeout.Std())
}

func TestLoadYAMLEmpty(t *testing.T) {
	c, err := LoadYAML(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, Default(), *c)
}

func TestLoadJSON(t *testing.T) {
	c, err := LoadJSON(strings.NewReader(`{"simulation":{"tick_rate":120}}`))
	require.NoError(t, err)
	assert.Equal(t, 120.0, c.Simulation.TickRate)
}

func TestDurationDecoding(t *testing.T) {
	c, err := LoadJSON(strings.NewReader(`{"server":{"write_timeout":"1500ms"}}`))
	require.NoError(t, err)
	assert.Equal(t, 1500*time.Millisecond, c.Server.WriteTimeout.Std())

	c, err = LoadJSON(strings.NewReader(`{"server":{"write_timeout":3000000000}}`))
	require.NoError(t, err)
	assert.Equal(t, 3*time.Second, c.Server.WriteTimeout.Std())

	c, err = LoadYAML(strings.NewReader("server:\n  write_timeout: 250000000\n"))
	require.NoError(t, err)
	assert.Equal(t, 250*time.Millisecond, c.Server.WriteTimeout.Std())

	_, err = LoadJSON(strings.NewReader(`{"server":{"write_timeout":"soon"}}`))
	assert.ErrorIs(t, err, ErrInvalidConfig)

	out, err := Duration(5 * time.Second).MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `"5s"`, string(out))
}

func TestValidateRejects(t *testing.T) {
	cases := map[string]string{
		"tick":   `{"simulation":{"tick_rate":0}}`,
		"cap":    `{"simulation":{"trajectory_cap":-1}}`,
		"plate":  `{"field":{"rubber_to_homeplate":0}}`,
		"level":  `{"log":{"level":"loud"}}`,
		"margin": `{"simulation":{"arrival_margin":-0.5}}`,
	}
	for name, src := range cases {
		_, err := LoadJSON(strings.NewReader(src))
		assert.ErrorIs(t, err, ErrInvalidConfig, name)
	}
}

func TestLoadFileByExtension(t *testing.T) {
	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "sim.json")
	yamlPath := filepath.Join(dir, "sim.yaml")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`{"viewer":{"frame_rate":30}}`), 0o600))
	require.NoError(t, os.WriteFile(yamlPath, []byte("viewer:\n  frame_rate: 24\n"), 0o600))

	c, err := LoadFile(jsonPath)
	require.NoError(t, err)
	assert.Equal(t, 30.0, c.Viewer.FrameRate)

	c, err = LoadFile(yamlPath)
	require.NoError(t, err)
	assert.Equal(t, 24.0, c.Viewer.FrameRate)

	_, err = LoadFile(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestSessionOptions(t *testing.T) {
	c := Default()
	c.Simulation.TrajectoryCap = 7
	s := pitch.NewSession(c.Target(), c.SessionOptions()...)
	assert.Equal(t, 7, s.Capacity())
	assert.Equal(t, c.Field.ReleaseHeight, s.InitialPosition().Y)
	assert.Equal(t, c.Field.RubberOffset, s.InitialPosition().Z)
}
