package pitch

import (
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/zeusync/pitchsim/internal/core/events/bus"
	"github.com/zeusync/pitchsim/internal/core/observability/log"
	"github.com/zeusync/pitchsim/internal/core/physics"
	"github.com/zeusync/pitchsim/internal/core/trajectory"
)

const (
	// DefaultArrivalMargin is how far past the plate plane the ball travels
	// before the flight is considered complete.
	DefaultArrivalMargin = 0.2
	// DefaultReleaseHeight is the release point height above the rubber.
	DefaultReleaseHeight = 1.8
)

// View is the read-only surface a renderer holds on to.
type View interface {
	Status() Status
	Position() physics.Vec3
	Trajectory() []trajectory.Sample
	Curve(divisions int) []physics.Vec3
}

var _ View = (*Session)(nil)

// Crossing records where and when the ball crossed the front plane of home plate.
type Crossing struct {
	Position physics.Vec3 `json:"position"`
	Time     float64      `json:"time"`
	Strike   bool         `json:"strike"`
}

// Snapshot is a copy of the session state at one instant.
type Snapshot struct {
	PitchID    string              `json:"pitch_id,omitempty"`
	Type       PitchType           `json:"type,omitempty"`
	Status     Status              `json:"status"`
	Reason     CompletionReason    `json:"reason,omitempty"`
	Elapsed    float64             `json:"elapsed"`
	Position   physics.Vec3        `json:"position"`
	Trajectory []trajectory.Sample `json:"trajectory"`
	Crossing   *Crossing           `json:"crossing,omitempty"`
}

type sessionOptions struct {
	logger   log.Log
	bus      bus.EventBus
	capacity int
	margin   float64
	release  *physics.Vec3
	resolver *Resolver
	zone     StrikeZone
	cacheMax int
}

// SessionOption configures a Session.
type SessionOption func(*sessionOptions)

// WithLogger sets the session logger. The default discards everything.
func WithLogger(l log.Log) SessionOption { return func(o *sessionOptions) { o.logger = l } }

// WithBus makes the session publish its lifecycle events on b.
func WithBus(b bus.EventBus) SessionOption { return func(o *sessionOptions) { o.bus = b } }

// WithCapacity bounds the trajectory log to n samples.
func WithCapacity(n int) SessionOption { return func(o *sessionOptions) { o.capacity = n } }

// WithArrivalMargin sets how far past the target plane a flight may go
// before it counts as arrived.
func WithArrivalMargin(m float64) SessionOption { return func(o *sessionOptions) { o.margin = m } }

// WithResolver replaces the default profile resolver.
func WithResolver(r *Resolver) SessionOption { return func(o *sessionOptions) { o.resolver = r } }

// WithStrikeZone sets the zone used for plate crossings.
func WithStrikeZone(z StrikeZone) SessionOption { return func(o *sessionOptions) { o.zone = z } }

// WithCacheSize bounds the number of resolved data profiles kept.
func WithCacheSize(n int) SessionOption { return func(o *sessionOptions) { o.cacheMax = n } }

// WithReleasePoint overrides the release point, which otherwise sits at
// DefaultReleaseHeight above the rubber.
func WithReleasePoint(p physics.Vec3) SessionOption {
	return func(o *sessionOptions) { o.release = &p }
}

// Session owns the state of the live pitch. It is driven from outside: one
// Update per frame plus StartPitch/ResetBall commands. Calls must be
// serialized by the caller.
type Session struct {
	target Target
	zone   StrikeZone
	margin float64
	cache  *ProfileCache
	logger log.Log
	bus    bus.EventBus

	status     Status
	reason     CompletionReason
	elapsed    float64
	profile    *Profile
	pitchID    string
	initialPos physics.Vec3
	initialVel physics.Vec3
	position   physics.Vec3
	sampler    *trajectory.Sampler
	loaded     *PitchData

	// last valid sample short of the plate plane
	approach trajectory.Sample
	crossing *Crossing
}

// NewSession creates an idle session for the given target.
func NewSession(target Target, opts ...SessionOption) *Session {
	o := sessionOptions{
		margin: DefaultArrivalMargin,
		zone:   DefaultStrikeZone(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = log.NewNop()
	}
	if o.resolver == nil {
		o.resolver = NewResolver(target)
	}
	release := physics.V3(0, DefaultReleaseHeight, target.RubberOffset)
	if o.release != nil {
		release = *o.release
	}

	s := &Session{
		target:     target,
		zone:       o.zone,
		margin:     o.margin,
		cache:      NewProfileCache(o.resolver, o.cacheMax),
		logger:     o.logger,
		bus:        o.bus,
		initialPos: release,
		position:   release,
		sampler:    trajectory.NewSampler(o.capacity),
	}
	s.approach = trajectory.Sample{Position: release}
	return s
}

// SetPitchData stores an externally loaded record for use with Loaded().
// Passing nil forgets it.
func (s *Session) SetPitchData(d *PitchData) {
	s.loaded = d
}

// StartPitch resolves ref and launches a new pitch. On a resolution error the
// session is left exactly as it was. A Loaded ref with no record loaded yet is
// a no-op.
func (s *Session) StartPitch(ref PitchRef) error {
	if ref.IsLoaded() {
		if s.loaded == nil {
			s.logger.Debug("pitch data not loaded yet, start ignored")
			return nil
		}
		ref = Recorded(s.loaded)
	}

	profile, err := s.cache.Resolve(ref)
	if err != nil {
		s.logger.Warn("pitch rejected", log.Stringer("ref", ref), log.Error(err))
		return fmt.Errorf("start pitch %s: %w", ref, err)
	}

	s.clear()
	s.profile = &profile
	s.pitchID = uuid.NewString()
	s.initialVel = s.launchVelocity(profile)
	s.status = StatusInFlight

	s.logger.Info("pitch started",
		log.String("pitch_id", s.pitchID),
		log.Stringer("ref", ref),
		log.Float64("speed", profile.Speed),
		log.Float64("spin_rate", profile.SpinRate),
	)
	s.publish(EventStarted, StartedEvent{
		PitchID:  s.pitchID,
		Ref:      ref.String(),
		Profile:  profile,
		Velocity: s.initialVel,
	})
	return nil
}

func (s *Session) launchVelocity(p Profile) physics.Vec3 {
	switch {
	case p.Aim != nil:
		return p.Aim.Sub(s.initialPos).Unit().Scale(p.Speed)
	case p.Direction != nil:
		return p.Direction.Scale(p.Speed)
	default:
		return NominalDirection.Scale(p.Speed)
	}
}

// ResetBall returns the session to Idle at the release point. It is always
// allowed and idempotent.
func (s *Session) ResetBall() {
	id := s.pitchID
	s.clear()
	s.status = StatusIdle
	s.profile = nil
	s.pitchID = ""
	s.publish(EventReset, ResetEvent{PitchID: id})
}

func (s *Session) clear() {
	s.elapsed = 0
	s.reason = ReasonNone
	s.position = s.initialPos
	s.sampler.Reset()
	s.approach = trajectory.Sample{Position: s.initialPos}
	s.crossing = nil
}

// Update advances the flight by dt seconds. Outside of InFlight, or for a
// dt that is non-positive, non-finite or too small to move the clock, it
// does nothing.
func (s *Session) Update(dt float64) {
	if s.status != StatusInFlight || s.profile == nil {
		return
	}
	if !(dt > 0) || math.IsInf(dt, 1) {
		return
	}
	elapsed := s.elapsed + dt
	if elapsed <= s.elapsed {
		return
	}

	s.elapsed = elapsed
	next := s.profile.Integrate(s.initialPos, s.initialVel, s.elapsed)
	if !next.IsFinite() {
		s.logger.Debug("invalid ball position, ending pitch",
			log.String("pitch_id", s.pitchID),
			log.Float64("elapsed", s.elapsed),
		)
		s.complete(ReasonInvalidPosition)
		return
	}

	s.position = next
	sample := trajectory.Sample{T: s.elapsed, Position: next}
	s.sampler.Append(sample)

	plate := s.target.DistanceAlongAxis()
	if next.Z < plate {
		s.approach = sample
	} else if s.crossing == nil {
		s.crossing = s.plateCrossing(s.approach, sample, plate)
	}

	if next.Z >= plate+s.margin {
		s.complete(ReasonArrived)
	}
}

func (s *Session) plateCrossing(before, after trajectory.Sample, plate float64) *Crossing {
	frac := 1.0
	if dz := after.Position.Z - before.Position.Z; dz > 0 {
		frac = math.Min(1, math.Max(0, (plate-before.Position.Z)/dz))
	}
	pos := before.Position.Lerp(after.Position, frac)
	return &Crossing{
		Position: pos,
		Time:     before.T + (after.T-before.T)*frac,
		Strike:   s.zone.Contains(pos.X, pos.Y),
	}
}

func (s *Session) complete(reason CompletionReason) {
	s.status = StatusCompleted
	s.reason = reason

	fields := []log.Field{
		log.String("pitch_id", s.pitchID),
		log.String("reason", string(reason)),
		log.Float64("elapsed", s.elapsed),
		log.Int("samples", s.sampler.Len()),
	}
	if s.crossing != nil {
		fields = append(fields, log.Bool("strike", s.crossing.Strike))
	}
	s.logger.Info("pitch completed", fields...)

	s.publish(EventCompleted, CompletedEvent{
		PitchID:  s.pitchID,
		Reason:   reason,
		Elapsed:  s.elapsed,
		Position: s.position,
		Samples:  s.sampler.Len(),
		Crossing: s.copyCrossing(),
	})
}

func (s *Session) copyCrossing() *Crossing {
	if s.crossing == nil {
		return nil
	}
	c := *s.crossing
	return &c
}

func (s *Session) Status() Status                     { return s.status }
func (s *Session) Reason() CompletionReason           { return s.reason }
func (s *Session) ElapsedTime() float64               { return s.elapsed }
func (s *Session) Position() physics.Vec3             { return s.position }
func (s *Session) InitialPosition() physics.Vec3      { return s.initialPos }
func (s *Session) InitialVelocity() physics.Vec3      { return s.initialVel }
func (s *Session) PitchID() string                    { return s.pitchID }
func (s *Session) Target() Target                     { return s.target }
func (s *Session) StrikeZone() StrikeZone             { return s.zone }
func (s *Session) Capacity() int                      { return s.sampler.Cap() }
func (s *Session) CacheStats() CacheStats             { return s.cache.Stats() }
func (s *Session) Trajectory() []trajectory.Sample    { return s.sampler.Samples() }
func (s *Session) Curve(divisions int) []physics.Vec3 { return s.sampler.Curve(divisions) }

// Profile returns the profile of the current or last pitch.
func (s *Session) Profile() (Profile, bool) {
	if s.profile == nil {
		return Profile{}, false
	}
	return *s.profile, true
}

// Crossing returns the plate crossing of the current pitch, once it happened.
func (s *Session) Crossing() (Crossing, bool) {
	if s.crossing == nil {
		return Crossing{}, false
	}
	return *s.crossing, true
}

// Snapshot copies the current state.
func (s *Session) Snapshot() Snapshot {
	snap := Snapshot{
		PitchID:    s.pitchID,
		Status:     s.status,
		Reason:     s.reason,
		Elapsed:    s.elapsed,
		Position:   s.position,
		Trajectory: s.sampler.Samples(),
		Crossing:   s.copyCrossing(),
	}
	if s.profile != nil {
		snap.Type = s.profile.Type
	}
	return snap
}
