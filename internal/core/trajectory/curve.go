package trajectory

import (
	"math"

	"github.com/zeusync/pitchsim/internal/core/physics"
)

// DefaultDivisions is the number of interpolated steps per span between two
// logged points.
const DefaultDivisions = 8

// Curve interpolates a centripetal Catmull-Rom spline through every point and
// returns it as a polyline. Each span between consecutive points contributes
// divisions steps; the first and last points are reproduced exactly.
// With fewer than three points there is nothing to smooth and a copy of the
// input is returned.
func Curve(points []physics.Vec3, divisions int) []physics.Vec3 {
	if len(points) < 3 {
		out := make([]physics.Vec3, len(points))
		copy(out, points)
		return out
	}
	if divisions <= 0 {
		divisions = DefaultDivisions
	}

	n := len(points)
	out := make([]physics.Vec3, 0, (n-1)*divisions+1)
	for i := 0; i < n-1; i++ {
		p1, p2 := points[i], points[i+1]
		var p0, p3 physics.Vec3
		if i > 0 {
			p0 = points[i-1]
		} else {
			p0 = p1.Scale(2).Sub(p2)
		}
		if i+2 < n {
			p3 = points[i+2]
		} else {
			p3 = p2.Scale(2).Sub(p1)
		}

		seg := newSpan(p0, p1, p2, p3)
		for step := 0; step < divisions; step++ {
			out = append(out, seg.at(float64(step)/float64(divisions)))
		}
	}
	return append(out, points[n-1])
}

type cubic struct{ c0, c1, c2, c3 float64 }

func (c cubic) at(t float64) float64 {
	t2 := t * t
	return c.c0 + c.c1*t + c.c2*t2 + c.c3*t2*t
}

// hermite builds the cubic from endpoints x0, x1 and tangents t0, t1.
func hermite(x0, x1, t0, t1 float64) cubic {
	return cubic{
		c0: x0,
		c1: t0,
		c2: -3*x0 + 3*x1 - 2*t0 - t1,
		c3: 2*x0 - 2*x1 + t0 + t1,
	}
}

func nonUniform(x0, x1, x2, x3, dt0, dt1, dt2 float64) cubic {
	t1 := (x1-x0)/dt0 - (x2-x0)/(dt0+dt1) + (x2-x1)/dt1
	t2 := (x2-x1)/dt1 - (x3-x1)/(dt1+dt2) + (x3-x2)/dt2
	return hermite(x1, x2, t1*dt1, t2*dt1)
}

type span struct{ x, y, z cubic }

func newSpan(p0, p1, p2, p3 physics.Vec3) span {
	const minKnot = 1e-4
	dt0 := math.Pow(p0.Sub(p1).LengthSq(), 0.25)
	dt1 := math.Pow(p1.Sub(p2).LengthSq(), 0.25)
	dt2 := math.Pow(p2.Sub(p3).LengthSq(), 0.25)
	if dt1 < minKnot {
		dt1 = 1
	}
	if dt0 < minKnot {
		dt0 = dt1
	}
	if dt2 < minKnot {
		dt2 = dt1
	}
	return span{
		x: nonUniform(p0.X, p1.X, p2.X, p3.X, dt0, dt1, dt2),
		y: nonUniform(p0.Y, p1.Y, p2.Y, p3.Y, dt0, dt1, dt2),
		z: nonUniform(p0.Z, p1.Z, p2.Z, p3.Z, dt0, dt1, dt2),
	}
}

func (s span) at(t float64) physics.Vec3 {
	return physics.Vec3{X: s.x.at(t), Y: s.y.at(t), Z: s.z.at(t)}
}
