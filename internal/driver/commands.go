package driver

import "github.com/zeusync/pitchsim/internal/core/pitch"

type CommandType string

const (
	CmdStart CommandType = "start"
	CmdReset CommandType = "reset"
	CmdLoad  CommandType = "load"
)

// Command mutates the session inside the runner loop.
type Command interface {
	Type() CommandType
	apply(s *pitch.Session) error
}

// StartCommand launches a pitch.
type StartCommand struct{ Ref pitch.PitchRef }

func (c StartCommand) Type() CommandType            { return CmdStart }
func (c StartCommand) apply(s *pitch.Session) error { return s.StartPitch(c.Ref) }

// ResetCommand returns the ball to the release point.
type ResetCommand struct{}

func (c ResetCommand) Type() CommandType { return CmdReset }
func (c ResetCommand) apply(s *pitch.Session) error {
	s.ResetBall()
	return nil
}

// LoadCommand stores an externally fetched record for pitch.Loaded().
type LoadCommand struct{ Data *pitch.PitchData }

func (c LoadCommand) Type() CommandType { return CmdLoad }
func (c LoadCommand) apply(s *pitch.Session) error {
	s.SetPitchData(c.Data)
	return nil
}
