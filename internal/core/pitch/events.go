package pitch

import (
	"github.com/zeusync/pitchsim/internal/core/events/bus"
	"github.com/zeusync/pitchsim/internal/core/observability/log"
	"github.com/zeusync/pitchsim/internal/core/physics"
)

// Event types published by a Session.
const (
	EventStarted   = "pitch.started"
	EventCompleted = "pitch.completed"
	EventReset     = "pitch.reset"

	eventSource = "pitch.session"
)

type StartedEvent struct {
	PitchID  string       `json:"pitch_id"`
	Ref      string       `json:"ref"`
	Profile  Profile      `json:"profile"`
	Velocity physics.Vec3 `json:"velocity"`
}

type CompletedEvent struct {
	PitchID  string           `json:"pitch_id"`
	Reason   CompletionReason `json:"reason"`
	Elapsed  float64          `json:"elapsed"`
	Position physics.Vec3     `json:"position"`
	Samples  int              `json:"samples"`
	Crossing *Crossing        `json:"crossing,omitempty"`
}

type ResetEvent struct {
	PitchID string `json:"pitch_id"`
}

func (s *Session) publish(typ string, data any) {
	if s.bus == nil {
		return
	}
	if err := s.bus.Publish(bus.NewEvent(typ, eventSource, data)); err != nil {
		s.logger.Warn("pitch event handler failed", log.String("event", typ), log.Error(err))
	}
}
