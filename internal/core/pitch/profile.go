// Package pitch resolves pitch profiles and runs the pitch session state
// machine on top of the closed-form flight model in package physics.
package pitch

import (
	"strings"

	"github.com/zeusync/pitchsim/internal/core/physics"
)

// MetersPerSecondPerMph is the exact mph to m/s factor.
const MetersPerSecondPerMph = 0.44704

// MphToMs converts miles per hour to meters per second.
func MphToMs(mph float64) float64 { return mph * MetersPerSecondPerMph }

// NominalDirection is the launch direction of canned pitches: toward home
// plate, slightly downward.
var NominalDirection = physics.V3(0, -0.1, 1).Normalize()

type PitchType string

const (
	Fastball  PitchType = "fastball"
	Curveball PitchType = "curveball"
	Slider    PitchType = "slider"
	Changeup  PitchType = "changeup"
)

// ParsePitchType normalizes a user-supplied token.
func ParsePitchType(s string) PitchType {
	return PitchType(strings.ToLower(strings.TrimSpace(s)))
}

// Profile holds the physical parameters of one pitch. Values are immutable
// once built by NewProfile.
type Profile struct {
	Type      PitchType     `json:"type,omitempty"`
	Speed     float64       `json:"speed"`     // m/s
	SpinRate  float64       `json:"spin_rate"` // rpm
	SpinAxis  physics.Vec3  `json:"spin_axis"`
	Direction *physics.Vec3 `json:"direction,omitempty"`
	// Aim overrides the target crossing point in data-driven mode.
	Aim *physics.Vec3 `json:"aim,omitempty"`
}

// NewProfile normalizes the spin axis.
func NewProfile(typ PitchType, speed, spinRate float64, spinAxis physics.Vec3) Profile {
	return Profile{
		Type:     typ,
		Speed:    speed,
		SpinRate: spinRate,
		SpinAxis: spinAxis.Normalize(),
	}
}

// WithDirection returns a copy of p launched along dir (normalized).
func (p Profile) WithDirection(dir physics.Vec3) Profile {
	d := dir.Normalize()
	p.Direction = &d
	return p
}

// WithAim returns a copy of p aimed at the given crossing point.
func (p Profile) WithAim(aim physics.Vec3) Profile {
	p.Aim = &aim
	return p
}

// Integrate evaluates the flight model for this profile.
func (p Profile) Integrate(p0, v0 physics.Vec3, t float64) physics.Vec3 {
	return physics.Position(p0, v0, p.SpinAxis, p.SpinRate, t)
}

type cannedEntry struct {
	speedMph float64
	spinRpm  float64
	axis     physics.Vec3
}

var cannedTable = map[PitchType]cannedEntry{
	Fastball:  {speedMph: 95, spinRpm: 2500, axis: physics.V3(0, 1, 0)},
	Curveball: {speedMph: 80, spinRpm: 2800, axis: physics.V3(0, -1, 0)},
	Slider:    {speedMph: 85, spinRpm: 2400, axis: physics.V3(0.7, -0.7, 0)},
	Changeup:  {speedMph: 85, spinRpm: 1800, axis: physics.V3(0, 1, 0.2)},
}

// CannedTypes lists the canned pitch types in keyboard order.
func CannedTypes() []PitchType {
	return []PitchType{Fastball, Curveball, Slider, Changeup}
}

// CannedProfiles returns a fresh copy of the resolved canned table.
func CannedProfiles() map[PitchType]Profile {
	out := make(map[PitchType]Profile, len(cannedTable))
	for typ, e := range cannedTable {
		out[typ] = e.profile(typ)
	}
	return out
}

func (e cannedEntry) profile(typ PitchType) Profile {
	return NewProfile(typ, MphToMs(e.speedMph), e.spinRpm, e.axis).WithDirection(NominalDirection)
}
