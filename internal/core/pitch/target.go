package pitch

import (
	"math"

	"github.com/zeusync/pitchsim/internal/core/physics"
)

// Field geometry defaults, meters.
const (
	DefaultRubberOffset      = 0.4572
	DefaultRubberToHomeplate = 18.44
	DefaultBatterHeight      = 1.8288
	PlateWidth               = 0.4318

	zoneTopRatio    = 0.5635
	zoneBottomRatio = 0.2764
)

// StrikeZone is the rulebook zone over home plate for a batter of the given
// height.
type StrikeZone struct {
	BatterHeight float64 `json:"batter_height"`
}

// DefaultStrikeZone uses DefaultBatterHeight.
func DefaultStrikeZone() StrikeZone { return StrikeZone{BatterHeight: DefaultBatterHeight} }

func (z StrikeZone) Top() float64    { return z.BatterHeight * zoneTopRatio }
func (z StrikeZone) Bottom() float64 { return z.BatterHeight * zoneBottomRatio }
func (z StrikeZone) Center() float64 { return (z.Top() + z.Bottom()) / 2 }

// Contains reports whether a ball centred at lateral x and height y touches
// the zone.
func (z StrikeZone) Contains(x, y float64) bool {
	r := physics.BallRadius
	return math.Abs(x) <= PlateWidth/2+r &&
		y >= z.Bottom()-r &&
		y <= z.Top()+r
}

// Target is the home-plate crossing reference. It is fixed per field
// configuration and read-only to sessions.
type Target struct {
	RubberOffset      float64      `json:"rubber_offset"`
	RubberToHomeplate float64      `json:"rubber_to_homeplate"`
	Position          physics.Vec3 `json:"position"`
}

// NewTarget places the crossing point at the given height over the front of
// home plate. A non-positive rubberToHomeplate selects the regulation distance.
func NewTarget(rubberOffset, rubberToHomeplate, height float64) Target {
	if rubberToHomeplate <= 0 {
		rubberToHomeplate = DefaultRubberToHomeplate
	}
	return Target{
		RubberOffset:      rubberOffset,
		RubberToHomeplate: rubberToHomeplate,
		Position:          physics.V3(0, height, rubberOffset+rubberToHomeplate),
	}
}

// DefaultTarget aims at the centre of the default strike zone.
func DefaultTarget() Target {
	return NewTarget(DefaultRubberOffset, DefaultRubberToHomeplate, DefaultStrikeZone().Center())
}

// DistanceAlongAxis is the travel-axis distance from the origin to the plate.
func (t Target) DistanceAlongAxis() float64 {
	return t.RubberOffset + t.RubberToHomeplate
}
