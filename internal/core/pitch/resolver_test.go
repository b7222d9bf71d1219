package pitch

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/pitchsim/internal/core/physics"
)

func fp(v float64) *float64 { return &v }
func sp(v string) *string   { return &v }

func fullRecord() *PitchData {
	return &PitchData{
		Release:  Release{Speed: fp(92), SpinRate: fp(2300)},
		Movement: Movement{Tilt: sp("1:30")},
	}
}

func TestMphToMs(t *testing.T) {
	assert.InDelta(t, 42.469, MphToMs(95), 0.01)
	assert.Equal(t, 0.44704, MphToMs(1))
}

func TestTiltAngle(t *testing.T) {
	cases := map[string]float64{
		"12:00": -90,
		"3:00":  0,
		"10:30": 225,
		"1:15":  -52.5,
		"15:00": 0,
	}
	for tilt, want := range cases {
		got, err := TiltAngle(tilt)
		require.NoError(t, err, tilt)
		assert.InDelta(t, want, got, 1e-12, tilt)
	}
}

func TestTiltAxisNoon(t *testing.T) {
	axis, err := TiltAxis("12:00")
	require.NoError(t, err)
	assert.True(t, axis.ApproxEqual(physics.V3(0, 0, -1), 1e-12), "%+v", axis)
	assert.InDelta(t, 1, axis.Length(), 1e-12)
}

func TestTiltMalformed(t *testing.T) {
	for _, tilt := range []string{"1030", "x:10", "1:xx", "1:60", "-1:00"} {
		_, err := TiltAngle(tilt)
		assert.ErrorIs(t, err, ErrInvalidData, tilt)
	}
}

func TestResolveCanned(t *testing.T) {
	r := NewResolver(DefaultTarget())
	for _, typ := range CannedTypes() {
		p, err := r.Resolve(Canned(typ))
		require.NoError(t, err)
		assert.Equal(t, typ, p.Type)
		assert.InDelta(t, 1, p.SpinAxis.Length(), 1e-12)
		require.NotNil(t, p.Direction)
		assert.InDelta(t, 1, p.Direction.Length(), 1e-12)
		assert.Nil(t, p.Aim)
	}

	p, err := r.Resolve(Canned(" Slider "))
	require.NoError(t, err)
	assert.Equal(t, Slider, p.Type)
	assert.InDelta(t, MphToMs(85), p.Speed, 1e-12)
	assert.InDelta(t, 2400, p.SpinRate, 0)
	assert.True(t, p.SpinAxis.ApproxEqual(physics.V3(math.Sqrt2/2, -math.Sqrt2/2, 0), 1e-12))

	_, err = r.Resolve(Canned("knuckleball"))
	assert.ErrorIs(t, err, ErrUnknownProfile)
}

func TestCannedProfilesIsACopy(t *testing.T) {
	table := CannedProfiles()
	require.Len(t, table, 4)
	delete(table, Fastball)
	assert.Len(t, CannedProfiles(), 4)
}

func TestResolveDataMissingFields(t *testing.T) {
	r := NewResolver(DefaultTarget())

	noSpin := fullRecord()
	noSpin.Release.SpinRate = nil
	_, err := r.Resolve(Recorded(noSpin))
	require.ErrorIs(t, err, ErrMissingData)
	assert.Contains(t, err.Error(), "SpinRate")

	noSpeed := fullRecord()
	noSpeed.Release.Speed = nil
	_, err = r.Resolve(Recorded(noSpeed))
	assert.ErrorIs(t, err, ErrMissingData)

	noTilt := fullRecord()
	noTilt.Movement.Tilt = nil
	_, err = r.Resolve(Recorded(noTilt))
	assert.ErrorIs(t, err, ErrMissingData)

	_, err = r.Resolve(Recorded(nil))
	assert.ErrorIs(t, err, ErrMissingData)

	zeroSpeed := fullRecord()
	zeroSpeed.Release.Speed = fp(0)
	_, err = r.Resolve(Recorded(zeroSpeed))
	assert.ErrorIs(t, err, ErrInvalidData)
}

func TestResolveDataAim(t *testing.T) {
	target := DefaultTarget()
	r := NewResolver(target)

	p, err := r.Resolve(Recorded(fullRecord()))
	require.NoError(t, err)
	require.NotNil(t, p.Aim)
	assert.Equal(t, target.Position, *p.Aim)
	assert.InDelta(t, MphToMs(92), p.Speed, 1e-12)

	rec := fullRecord()
	rec.X0 = &PlateLoc{X: fp(0.1), Z: fp(0.8)}
	rec.NineP = &NineP{Pfxx: fp(10), Pfxz: fp(-20)}
	p, err = r.Resolve(Recorded(rec))
	require.NoError(t, err)
	assert.True(t, p.Aim.ApproxEqual(physics.V3(0, 1.0, target.DistanceAlongAxis()), 1e-12), "%+v", *p.Aim)
}

func TestParsePitchDataEnvelope(t *testing.T) {
	bare := `{"Release":{"Speed":90,"SpinRate":2200},"Movement":{"Tilt":"12:45"}}`
	wrapped := `{"data":{"Pitch":` + bare + `}}`

	for _, raw := range []string{bare, wrapped} {
		d, err := ParsePitchData([]byte(raw))
		require.NoError(t, err)
		require.NotNil(t, d.Release.Speed)
		assert.Equal(t, 90.0, *d.Release.Speed)
		assert.Equal(t, "12:45", *d.Movement.Tilt)
	}

	d, err := DecodePitchData(strings.NewReader(`{"Release":{"Speed":90}}`))
	require.NoError(t, err)
	assert.Nil(t, d.Release.SpinRate)

	_, err = ParsePitchData([]byte(`{`))
	assert.ErrorIs(t, err, ErrInvalidData)
}

func TestResolveRaw(t *testing.T) {
	r := NewResolver(DefaultTarget())
	p, err := r.Resolve(Raw([]byte(`{"Release":{"Speed":80,"SpinRate":2600},"Movement":{"Tilt":"3:00"}}`)))
	require.NoError(t, err)
	assert.True(t, p.SpinAxis.ApproxEqual(physics.V3(1, 0, 0), 1e-12))

	_, err = r.Resolve(Loaded())
	assert.ErrorIs(t, err, ErrMissingData)
}

func TestStrikeZone(t *testing.T) {
	z := DefaultStrikeZone()
	assert.InDelta(t, 1.8288*0.5635, z.Top(), 1e-12)
	assert.InDelta(t, 1.8288*0.2764, z.Bottom(), 1e-12)
	assert.True(t, z.Contains(0, z.Center()))
	assert.True(t, z.Contains(PlateWidth/2, z.Center()))
	assert.False(t, z.Contains(0.5, z.Center()))
	assert.False(t, z.Contains(0, 0.1))
}

func TestTarget(t *testing.T) {
	tg := NewTarget(0.4572, 0, 0.8)
	assert.InDelta(t, 0.4572+18.44, tg.DistanceAlongAxis(), 1e-12)
	assert.Equal(t, physics.V3(0, 0.8, tg.DistanceAlongAxis()), tg.Position)
}
