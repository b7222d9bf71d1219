package pitch

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/zeusync/pitchsim/internal/core/physics"
)

// PitchData is an externally supplied, sensor-style pitch record. Pointer
// fields distinguish a missing value from a zero one.
type PitchData struct {
	Release  Release   `json:"Release"`
	Movement Movement  `json:"Movement"`
	NineP    *NineP    `json:"NineP,omitempty"`
	X0       *PlateLoc `json:"X0,omitempty"`
}

type Release struct {
	Speed    *float64 `json:"Speed,omitempty"`    // mph
	SpinRate *float64 `json:"SpinRate,omitempty"` // rpm
}

type Movement struct {
	Tilt *string `json:"Tilt,omitempty"` // clock face, "H:MM"
}

// NineP carries the break offsets, in centimeters.
type NineP struct {
	Pfxx *float64 `json:"Pfxx,omitempty"`
	Pfxz *float64 `json:"Pfxz,omitempty"`
}

// PlateLoc is the strike-zone crossing location, in meters. Z is height.
type PlateLoc struct {
	X *float64 `json:"X,omitempty"`
	Z *float64 `json:"Z,omitempty"`
}

type envelope struct {
	Data *struct {
		Pitch *PitchData `json:"Pitch"`
	} `json:"data"`
	PitchData
}

// ParsePitchData decodes a record, either bare or wrapped as
// {"data":{"Pitch":{...}}}.
func ParsePitchData(raw []byte) (*PitchData, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidData, err)
	}
	if env.Data != nil && env.Data.Pitch != nil {
		return env.Data.Pitch, nil
	}
	d := env.PitchData
	return &d, nil
}

// DecodePitchData reads a whole record from r.
func DecodePitchData(r io.Reader) (*PitchData, error) {
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(r); err != nil {
		return nil, err
	}
	return ParsePitchData(buf.Bytes())
}

// TiltAngle converts a clock-face tilt "H:MM" into degrees:
// (hour mod 12) * 30 + minute * 0.5 - 90.
func TiltAngle(tilt string) (float64, error) {
	hs, ms, ok := strings.Cut(strings.TrimSpace(tilt), ":")
	if !ok {
		return 0, fmt.Errorf("%w: tilt %q is not H:MM", ErrInvalidData, tilt)
	}
	hour, err := strconv.Atoi(hs)
	if err != nil || hour < 0 {
		return 0, fmt.Errorf("%w: tilt %q has a bad hour", ErrInvalidData, tilt)
	}
	minute, err := strconv.Atoi(ms)
	if err != nil || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("%w: tilt %q has a bad minute", ErrInvalidData, tilt)
	}
	return float64(hour%12)*30 + float64(minute)*0.5 - 90, nil
}

// TiltAxis returns the unit spin axis (cos a, 0, sin a) for a clock-face tilt.
func TiltAxis(tilt string) (physics.Vec3, error) {
	deg, err := TiltAngle(tilt)
	if err != nil {
		return physics.Vec3{}, err
	}
	rad := deg * math.Pi / 180
	return physics.V3(math.Cos(rad), 0, math.Sin(rad)).Normalize(), nil
}

func (d *PitchData) validate() error {
	switch {
	case d.Release.Speed == nil:
		return fmt.Errorf("%w: Release.Speed", ErrMissingData)
	case d.Release.SpinRate == nil:
		return fmt.Errorf("%w: Release.SpinRate", ErrMissingData)
	case d.Movement.Tilt == nil || strings.TrimSpace(*d.Movement.Tilt) == "":
		return fmt.Errorf("%w: Movement.Tilt", ErrMissingData)
	}
	speed, spin := *d.Release.Speed, *d.Release.SpinRate
	if math.IsNaN(speed) || math.IsInf(speed, 0) || speed <= 0 {
		return fmt.Errorf("%w: release speed %v must be positive", ErrInvalidData, speed)
	}
	if math.IsNaN(spin) || math.IsInf(spin, 0) || spin < 0 {
		return fmt.Errorf("%w: spin rate %v must be non-negative", ErrInvalidData, spin)
	}
	return nil
}
