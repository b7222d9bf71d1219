package pitch

import "fmt"

// Status is the session's flight state.
type Status uint8

const (
	StatusIdle Status = iota
	StatusInFlight
	StatusCompleted
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusInFlight:
		return "in_flight"
	case StatusCompleted:
		return "completed"
	default:
		return fmt.Sprintf("status(%d)", uint8(s))
	}
}

// MarshalText encodes the status as its String form.
func (s Status) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// UnmarshalText is the inverse of MarshalText.
func (s *Status) UnmarshalText(b []byte) error {
	switch string(b) {
	case "idle":
		*s = StatusIdle
	case "in_flight":
		*s = StatusInFlight
	case "completed":
		*s = StatusCompleted
	default:
		return fmt.Errorf("unknown status %q", b)
	}
	return nil
}

// CompletionReason tells why a flight ended.
type CompletionReason string

const (
	ReasonNone            CompletionReason = ""
	ReasonArrived         CompletionReason = "arrived"
	ReasonInvalidPosition CompletionReason = "invalid_position"
)
