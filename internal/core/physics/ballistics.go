package physics

import "math"

// Ball and air constants. They are fixed by the flight model and not
// configurable at runtime.
const (
	Gravity           = -9.81 // m/s^2, along Y
	AirDensity        = 1.225 // kg/m^3
	BallMass          = 0.145 // kg
	BallRadius        = 0.037 // m
	DragCoefficient   = 0.3
	MagnusCoefficient = 0.5
)

// magnusConstant is k = Cm * rho * pi * r^3.
var magnusConstant = MagnusCoefficient * AirDensity * math.Pi * BallRadius * BallRadius * BallRadius

// RPMToRadPerSec converts a spin rate in revolutions per minute to rad/s.
func RPMToRadPerSec(rpm float64) float64 { return rpm * 2 * math.Pi / 60 }

// GravityDisplacement is the free-fall offset after t seconds.
func GravityDisplacement(t float64) Vec3 {
	return Vec3{Y: Gravity / 2 * t * t}
}

// DragDisplacement opposes the launch direction and grows with t².
// The magnitude is 0.5 * rho * |v0| * Cd * pi * r^2 * t^2. A zero v0 yields NaN.
func DragDisplacement(v0 Vec3, t float64) Vec3 {
	speed := v0.Length()
	magnitude := 0.5 * AirDensity * speed * DragCoefficient * math.Pi * BallRadius * BallRadius * t * t
	return v0.Unit().Scale(-magnitude)
}

// MagnusDisplacement is the spin-induced offset cross(axis, v0) * omega * k * t².
func MagnusDisplacement(v0, spinAxis Vec3, spinRateRPM, t float64) Vec3 {
	omega := RPMToRadPerSec(spinRateRPM)
	return spinAxis.Unit().Cross(v0).Scale(omega * magnusConstant * t * t)
}

// Position returns the ball position t seconds after release from p0 with
// launch velocity v0. It is a closed-form function of absolute elapsed time:
// callers never step it incrementally, and equal inputs give equal outputs.
func Position(p0, v0, spinAxis Vec3, spinRateRPM, t float64) Vec3 {
	if t == 0 {
		return p0
	}
	return p0.
		Add(v0.Scale(t)).
		Add(GravityDisplacement(t)).
		Add(DragDisplacement(v0, t)).
		Add(MagnusDisplacement(v0, spinAxis, spinRateRPM, t))
}
