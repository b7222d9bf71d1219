package driver

import (
	"context"
	"fmt"

	"github.com/zeusync/pitchsim/internal/config"
	"github.com/zeusync/pitchsim/internal/core/observability/log"
	"github.com/zeusync/pitchsim/internal/core/physics"
	"github.com/zeusync/pitchsim/internal/core/pitch"
	"github.com/zeusync/pitchsim/pkg/concurrent"
	"github.com/zeusync/pitchsim/pkg/sequence"
)

// Summary is the outcome of one headless pitch.
type Summary struct {
	Ref      string                 `json:"ref"`
	PitchID  string                 `json:"pitch_id,omitempty"`
	Type     pitch.PitchType        `json:"type,omitempty"`
	Reason   pitch.CompletionReason `json:"reason,omitempty"`
	Elapsed  float64                `json:"elapsed"`
	Samples  int                    `json:"samples"`
	Final    physics.Vec3           `json:"final"`
	Crossing *pitch.Crossing        `json:"crossing,omitempty"`
	Strike   bool                   `json:"strike"`
	Error    string                 `json:"error,omitempty"`
}

// Simulate launches ref on s and steps it by dt until it completes. It fails
// with ErrFlightTimeout if the pitch is still in flight after maxTime seconds.
func Simulate(s *pitch.Session, ref pitch.PitchRef, dt, maxTime float64) (Summary, error) {
	sum := Summary{Ref: ref.String()}
	if dt <= 0 {
		return sum, fmt.Errorf("simulate %s: non-positive step %v", ref, dt)
	}
	if err := s.StartPitch(ref); err != nil {
		return sum, err
	}
	if s.Status() != pitch.StatusInFlight {
		// pitch.Loaded() with nothing loaded
		return sum, fmt.Errorf("simulate %s: %w", ref, pitch.ErrMissingData)
	}

	for s.Status() == pitch.StatusInFlight && s.ElapsedTime() < maxTime {
		s.Update(dt)
	}

	snap := s.Snapshot()
	sum.PitchID = snap.PitchID
	sum.Type = snap.Type
	sum.Reason = snap.Reason
	sum.Elapsed = snap.Elapsed
	sum.Samples = len(snap.Trajectory)
	sum.Final = snap.Position
	sum.Crossing = snap.Crossing
	if snap.Crossing != nil {
		sum.Strike = snap.Crossing.Strike
	}

	if snap.Status == pitch.StatusInFlight {
		return sum, fmt.Errorf("simulate %s after %.2fs: %w", ref, snap.Elapsed, ErrFlightTimeout)
	}
	return sum, nil
}

// SimulateBatch runs every ref on its own session in parallel. Per-pitch
// failures are reported in Summary.Error; only cancellation fails the batch.
func SimulateBatch(ctx context.Context, cfg *config.Config, refs []pitch.PitchRef, workers int, logger log.Log) ([]Summary, error) {
	if logger == nil {
		logger = log.NewNop()
	}
	dt := cfg.Simulation.Dt()
	target := cfg.Target()

	return concurrent.MapContext(ctx, sequence.From(refs), workers,
		func(ctx context.Context, ref pitch.PitchRef) (Summary, error) {
			if err := ctx.Err(); err != nil {
				return Summary{}, err
			}
			s := pitch.NewSession(target, append(cfg.SessionOptions(), pitch.WithLogger(logger))...)
			sum, err := Simulate(s, ref, dt, cfg.Simulation.MaxFlightTime)
			if err != nil {
				logger.Warn("pitch simulation failed", log.String("ref", ref.String()), log.Error(err))
				sum.Error = err.Error()
			}
			return sum, nil
		})
}
