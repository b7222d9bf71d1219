package trajectory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/pitchsim/internal/core/physics"
)

func TestCurveShortInputIsCopied(t *testing.T) {
	assert.Empty(t, Curve(nil, 4))

	in := []physics.Vec3{physics.V3(0, 0, 0), physics.V3(1, 1, 1)}
	out := Curve(in, 4)
	require.Equal(t, in, out)
	out[0].X = 5
	assert.Zero(t, in[0].X)
}

func TestCurvePassesThroughEveryPoint(t *testing.T) {
	pts := []physics.Vec3{
		physics.V3(0, 1.8, 0.5),
		physics.V3(0.02, 1.7, 3),
		physics.V3(0.05, 1.5, 6),
		physics.V3(0.09, 1.2, 9),
	}
	const div = 5
	out := Curve(pts, div)
	require.Len(t, out, (len(pts)-1)*div+1)
	for i, p := range pts {
		assert.True(t, p.ApproxEqual(out[i*div], 1e-12), "point %d", i)
	}
	for _, p := range out {
		assert.True(t, p.IsFinite())
	}
}

func TestCurveOfCollinearPointsStaysOnLine(t *testing.T) {
	pts := []physics.Vec3{
		physics.V3(0, 0, 0),
		physics.V3(0, 0, 1),
		physics.V3(0, 0, 2),
		physics.V3(0, 0, 3),
	}
	out := Curve(pts, 0)
	require.Len(t, out, 3*DefaultDivisions+1)
	for i := 1; i < len(out); i++ {
		assert.InDelta(t, 0, out[i].X, 1e-9)
		assert.InDelta(t, 0, out[i].Y, 1e-9)
		assert.Greater(t, out[i].Z, out[i-1].Z)
	}
}

func TestCurveToleratesDuplicatePoints(t *testing.T) {
	p := physics.V3(1, 2, 3)
	out := Curve([]physics.Vec3{p, p, p}, 3)
	for _, q := range out {
		assert.True(t, q.IsFinite())
		assert.True(t, p.ApproxEqual(q, 1e-9))
	}
}
