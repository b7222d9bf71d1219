package server

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/pitchsim/internal/core/pitch"
	"github.com/zeusync/pitchsim/internal/driver"
)

func getJSON(t *testing.T, url string, status int, v any) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, status, resp.StatusCode)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func TestHTTP_StateAndCurve(t *testing.T) {
	server, ts := newTestServer(t)

	var snap pitch.Snapshot
	getJSON(t, ts.URL+"/state", http.StatusOK, &snap)
	assert.Equal(t, pitch.StatusIdle, snap.Status)

	require.NoError(t, server.runner.Start(context.Background(), pitch.Canned(pitch.Changeup)))
	require.Eventually(t, func() bool {
		s, err := server.runner.Snapshot(context.Background())
		return err == nil && s.Status == pitch.StatusCompleted
	}, 3*time.Second, 10*time.Millisecond)

	getJSON(t, ts.URL+"/state", http.StatusOK, &snap)
	require.NotEmpty(t, snap.Trajectory)

	var curve curveResponse
	getJSON(t, ts.URL+"/curve?divisions=3", http.StatusOK, &curve)
	assert.Equal(t, 3, curve.Divisions)
	assert.Len(t, curve.Points, (len(snap.Trajectory)-1)*3+1)
	assert.True(t, curve.Points[0].ApproxEqual(snap.Trajectory[0].Position, 1e-9))

	var bad errorResponse
	getJSON(t, ts.URL+"/curve?divisions=zero", http.StatusBadRequest, &bad)
	assert.NotEmpty(t, bad.Error)
}

func TestHTTP_Profiles(t *testing.T) {
	_, ts := newTestServer(t)

	var profiles []pitch.Profile
	getJSON(t, ts.URL+"/profiles", http.StatusOK, &profiles)
	require.Len(t, profiles, 4)
	assert.Equal(t, pitch.Fastball, profiles[0].Type)
	assert.InDelta(t, pitch.MphToMs(95), profiles[0].Speed, 1e-9)
}

func TestServer_StartStop(t *testing.T) {
	session := pitch.NewSession(pitch.DefaultTarget())
	runner := driver.NewRunner(session, driver.RunnerConfig{Dt: 1.0 / 60}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer func() {
		cancel()
		<-runner.Done()
	}()
	go func() { _ = runner.Run(ctx) }()

	cfg := DefaultServerConfig()
	cfg.ListenAddr = "127.0.0.1:0"
	server := NewServer(runner, nil, cfg, nil)

	require.NoError(t, server.Start(ctx))
	assert.ErrorIs(t, server.Start(ctx), ErrServerAlreadyRunning)
	require.NotNil(t, server.Addr())

	var profiles []pitch.Profile
	getJSON(t, "http://"+server.Addr().String()+"/profiles", http.StatusOK, &profiles)
	assert.Len(t, profiles, 4)

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer stopCancel()
	require.NoError(t, server.Stop(stopCtx))
	assert.ErrorIs(t, server.Stop(stopCtx), ErrServerNotRunning)

	require.NoError(t, server.Close())
	assert.ErrorIs(t, server.Start(ctx), ErrServerClosed)
}
