package physics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPositionAtZeroIsReleasePoint(t *testing.T) {
	p0 := V3(0.1, 1.8, 0.4572)
	v0 := V3(0, -4.2, 42.2)
	got := Position(p0, v0, V3(0, 1, 0), 2500, 0)
	require.Equal(t, p0, got)
}

func TestPositionIsPure(t *testing.T) {
	p0 := V3(0, 1.8, 0.4572)
	v0 := V3(0.3, -4.2, 42.2)
	axis := V3(0.7, -0.7, 0)

	first := Position(p0, v0, axis, 2400, 0.25)
	for i := 0; i < 10; i++ {
		require.Equal(t, first, Position(p0, v0, axis, 2400, 0.25))
	}
}

func TestPositionSumsTerms(t *testing.T) {
	p0 := V3(0, 1.8, 0.5)
	v0 := V3(0, -2, 40)
	axis := V3(0, 1, 0)
	tm := 0.3

	want := p0.Add(v0.Scale(tm)).
		Add(GravityDisplacement(tm)).
		Add(DragDisplacement(v0, tm)).
		Add(MagnusDisplacement(v0, axis, 2500, tm))
	assert.True(t, want.ApproxEqual(Position(p0, v0, axis, 2500, tm), 1e-12))
}

func TestGravityDisplacement(t *testing.T) {
	g := GravityDisplacement(1)
	assert.InDelta(t, -4.905, g.Y, 1e-12)
	assert.Zero(t, g.X)
	assert.Zero(t, g.Z)
}

func TestDragOpposesVelocity(t *testing.T) {
	v0 := V3(0, 0, 40)
	d := DragDisplacement(v0, 1)
	want := 0.5 * AirDensity * 40 * DragCoefficient * math.Pi * BallRadius * BallRadius
	assert.InDelta(t, -want, d.Z, 1e-12)
	assert.Zero(t, d.X)
	assert.Zero(t, d.Y)
}

func TestDragWithZeroVelocityIsNaN(t *testing.T) {
	d := DragDisplacement(Vec3{}, 0.5)
	assert.False(t, d.IsFinite())
	assert.False(t, Position(V3(0, 1.8, 0), Vec3{}, V3(0, 1, 0), 2000, 0.5).IsFinite())
}

func TestMagnusBackspinOnForwardPitchIsLateral(t *testing.T) {
	v0 := V3(0, 0, 40)
	m := MagnusDisplacement(v0, V3(0, 2, 0), 2500, 1)
	k := MagnusCoefficient * AirDensity * math.Pi * math.Pow(BallRadius, 3)
	assert.InDelta(t, 40*RPMToRadPerSec(2500)*k, m.X, 1e-12)
	assert.Zero(t, m.Y)
	assert.Zero(t, m.Z)
}

func TestVectorHelpers(t *testing.T) {
	assert.Equal(t, V3(0, 0, 1), V3(1, 0, 0).Cross(V3(0, 1, 0)))
	assert.InDelta(t, 5.0, V3(3, 4, 0).Length(), 1e-12)
	assert.Equal(t, Vec3{}, Vec3{}.Normalize())
	assert.InDelta(t, 1.0, V3(1, 2, 3).Normalize().Length(), 1e-12)
	assert.Equal(t, V3(1, 1, 1), V3(0, 0, 0).Lerp(V3(2, 2, 2), 0.5))
	assert.False(t, V3(math.Inf(1), 0, 0).IsFinite())
	assert.False(t, V3(0, math.NaN(), 0).IsFinite())
}
