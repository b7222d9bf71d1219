package pitch

import "fmt"

// PitchRef names what to pitch: a canned type, a decoded record, raw record
// bytes, or the record previously loaded into the session.
type PitchRef struct {
	Type   PitchType
	Data   *PitchData
	Raw    []byte
	data   bool
	loaded bool
}

// Canned refers to an entry of the canned profile table.
func Canned(t PitchType) PitchRef { return PitchRef{Type: t} }

// Recorded refers to an already decoded record. A nil record resolves to
// ErrMissingData.
func Recorded(d *PitchData) PitchRef { return PitchRef{Data: d, data: true} }

// Raw refers to undecoded record bytes, bare or wrapped.
func Raw(raw []byte) PitchRef { return PitchRef{Raw: raw, data: true} }

// Loaded refers to the record stored with Session.SetPitchData.
func Loaded() PitchRef { return PitchRef{data: true, loaded: true} }

// IsLoaded reports whether r is Loaded().
func (r PitchRef) IsLoaded() bool { return r.loaded }

// IsDataDriven reports whether r resolves through a pitch-data record.
func (r PitchRef) IsDataDriven() bool { return r.data }

func (r PitchRef) String() string {
	switch {
	case r.loaded:
		return "loaded-data"
	case r.data:
		return "data"
	default:
		return string(r.Type)
	}
}

// Resolver turns a PitchRef into a Profile. It holds only read-only
// configuration and may be shared.
type Resolver struct {
	target Target
}

// NewResolver creates a resolver aiming data-driven pitches at target.
func NewResolver(target Target) *Resolver {
	return &Resolver{target: target}
}

// Resolve produces the profile for ref. Loaded refs cannot be resolved here;
// the session substitutes its loaded record first.
func (r *Resolver) Resolve(ref PitchRef) (Profile, error) {
	switch {
	case ref.loaded:
		return Profile{}, fmt.Errorf("%w: no pitch data loaded", ErrMissingData)
	case !ref.IsDataDriven():
		return r.ResolveType(ref.Type)
	case ref.Data != nil:
		return r.ResolveData(ref.Data)
	case len(ref.Raw) > 0:
		d, err := ParsePitchData(ref.Raw)
		if err != nil {
			return Profile{}, err
		}
		return r.ResolveData(d)
	default:
		return r.ResolveData(nil)
	}
}

// ResolveType looks a token up in the canned table.
func (r *Resolver) ResolveType(t PitchType) (Profile, error) {
	t = ParsePitchType(string(t))
	e, ok := cannedTable[t]
	if !ok {
		return Profile{}, fmt.Errorf("%w: %q", ErrUnknownProfile, t)
	}
	return e.profile(t), nil
}

// ResolveData builds a profile from a sensor-style record. The aim point is
// the target crossing point, moved to the record's X0 location when given and
// shifted against the record's break so the modelled break carries the ball
// back toward it.
func (r *Resolver) ResolveData(d *PitchData) (Profile, error) {
	if d == nil {
		return Profile{}, fmt.Errorf("%w: empty record", ErrMissingData)
	}
	if err := d.validate(); err != nil {
		return Profile{}, err
	}
	axis, err := TiltAxis(*d.Movement.Tilt)
	if err != nil {
		return Profile{}, err
	}

	aim := r.target.Position
	if d.X0 != nil {
		if d.X0.X != nil {
			aim.X = *d.X0.X
		}
		if d.X0.Z != nil {
			aim.Y = *d.X0.Z
		}
	}
	if d.NineP != nil {
		if d.NineP.Pfxx != nil {
			aim.X -= *d.NineP.Pfxx / 100
		}
		if d.NineP.Pfxz != nil {
			aim.Y -= *d.NineP.Pfxz / 100
		}
	}

	p := NewProfile("", MphToMs(*d.Release.Speed), *d.Release.SpinRate, axis)
	return p.WithAim(aim), nil
}
