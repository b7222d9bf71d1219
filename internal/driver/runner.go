// Package driver runs a pitch session on a fixed cadence and serializes every
// command and read through a single goroutine.
package driver

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/zeusync/pitchsim/internal/core/observability/log"
	"github.com/zeusync/pitchsim/internal/core/physics"
	"github.com/zeusync/pitchsim/internal/core/pitch"
)

// Frame is the light per-tick view pushed to subscribers.
type Frame struct {
	Seq      uint64                 `json:"seq"`
	PitchID  string                 `json:"pitch_id,omitempty"`
	Type     pitch.PitchType        `json:"type,omitempty"`
	Status   pitch.Status           `json:"status"`
	Reason   pitch.CompletionReason `json:"reason,omitempty"`
	Elapsed  float64                `json:"elapsed"`
	Position physics.Vec3           `json:"position"`
	Samples  int                    `json:"samples"`
	Crossing *pitch.Crossing        `json:"crossing,omitempty"`
}

type RunnerConfig struct {
	// Dt is the simulated step per tick, seconds.
	Dt float64
	// Interval is the wall-clock time between ticks; zero derives it from Dt.
	Interval time.Duration
	// Queue is the per-subscriber frame buffer.
	Queue int
}

type request struct {
	cmd   Command
	reply chan error
}

type inspectReq struct {
	fn   func(*pitch.Session)
	done chan struct{}
}

// Runner owns a Session. All access goes through its loop, so callers from
// any goroutine get serialized commands, and commands queued before a tick
// are applied before that tick.
type Runner struct {
	session *pitch.Session
	cfg     RunnerConfig
	logger  log.Log

	cmdCh       chan request
	inspectCh   chan inspectReq
	subscribeCh chan chan Frame
	unsubCh     chan chan Frame
	done        chan struct{}
	started     atomic.Bool

	seq uint64
}

// NewRunner wraps session. Zero fields of cfg take defaults: a 1/60 s step,
// a tick interval matching the step, and a 32-frame subscriber buffer.
// A nil logger discards output.
func NewRunner(session *pitch.Session, cfg RunnerConfig, logger log.Log) *Runner {
	if cfg.Dt <= 0 {
		cfg.Dt = 1.0 / 60
	}
	if cfg.Interval <= 0 {
		cfg.Interval = time.Duration(cfg.Dt * float64(time.Second))
	}
	if cfg.Queue <= 0 {
		cfg.Queue = 32
	}
	if logger == nil {
		logger = log.NewNop()
	}
	return &Runner{
		session:     session,
		cfg:         cfg,
		logger:      logger,
		cmdCh:       make(chan request, 128),
		inspectCh:   make(chan inspectReq, 32),
		subscribeCh: make(chan chan Frame),
		unsubCh:     make(chan chan Frame),
		done:        make(chan struct{}),
	}
}

// Submit queues cmd and waits until the loop applied it.
func (r *Runner) Submit(ctx context.Context, cmd Command) error {
	req := request{cmd: cmd, reply: make(chan error, 1)}
	select {
	case r.cmdCh <- req:
	case <-r.done:
		return ErrRunnerStopped
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-req.reply:
		return err
	case <-r.done:
		return ErrRunnerStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Start launches the pitch named by ref.
func (r *Runner) Start(ctx context.Context, ref pitch.PitchRef) error {
	return r.Submit(ctx, StartCommand{Ref: ref})
}

// Reset returns the session to Idle.
func (r *Runner) Reset(ctx context.Context) error {
	return r.Submit(ctx, ResetCommand{})
}

// Load stores d for later Loaded() starts.
func (r *Runner) Load(ctx context.Context, d *pitch.PitchData) error {
	return r.Submit(ctx, LoadCommand{Data: d})
}

func (r *Runner) inspect(ctx context.Context, fn func(*pitch.Session)) error {
	req := inspectReq{fn: fn, done: make(chan struct{})}
	select {
	case r.inspectCh <- req:
	case <-r.done:
		return ErrRunnerStopped
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-req.done:
		return nil
	case <-r.done:
		return ErrRunnerStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Snapshot returns a full copy of the session state, trajectory included.
func (r *Runner) Snapshot(ctx context.Context) (pitch.Snapshot, error) {
	var snap pitch.Snapshot
	err := r.inspect(ctx, func(s *pitch.Session) { snap = s.Snapshot() })
	return snap, err
}

// Curve returns the smoothed trajectory.
func (r *Runner) Curve(ctx context.Context, divisions int) ([]physics.Vec3, error) {
	var curve []physics.Vec3
	err := r.inspect(ctx, func(s *pitch.Session) { curve = s.Curve(divisions) })
	return curve, err
}

// Subscribe returns a frame channel and a func that cancels the subscription.
// Slow subscribers miss frames. The channel is closed when the runner stops
// or after unsubscribing.
func (r *Runner) Subscribe(ctx context.Context) (<-chan Frame, func()) {
	ch := make(chan Frame, r.cfg.Queue)

	select {
	case r.subscribeCh <- ch:
	case <-r.done:
		close(ch)
		return ch, func() {}
	case <-ctx.Done():
		close(ch)
		return ch, func() {}
	}

	unsub := func() {
		select {
		case r.unsubCh <- ch:
		case <-r.done:
		}
	}
	return ch, unsub
}

// Done is closed once Run returned.
func (r *Runner) Done() <-chan struct{} { return r.done }

// Run drives the session until ctx is cancelled. A Runner runs once; any
// later call returns ErrRunnerRunning.
func (r *Runner) Run(ctx context.Context) error {
	if !r.started.CompareAndSwap(false, true) {
		return ErrRunnerRunning
	}
	defer close(r.done)

	subs := map[chan Frame]struct{}{}
	publish := func() {
		r.seq++
		f := r.frame()
		for ch := range subs {
			select {
			case ch <- f:
			default:
				// slow subscriber -> drop frame
			}
		}
	}
	apply := func(req request) {
		err := req.cmd.apply(r.session)
		req.reply <- err
		if err != nil {
			r.logger.Debug("command failed", log.String("command", string(req.cmd.Type())), log.Error(err))
			return
		}
		publish()
	}

	tick := time.NewTicker(r.cfg.Interval)
	defer tick.Stop()

	r.logger.Info("runner started",
		log.Float64("dt", r.cfg.Dt),
		log.Duration("interval", r.cfg.Interval),
	)

	for {
		select {
		case <-ctx.Done():
			for ch := range subs {
				close(ch)
			}
			r.logger.Info("runner stopped")
			return nil

		case ch := <-r.subscribeCh:
			subs[ch] = struct{}{}
			ch <- r.frame()

		case ch := <-r.unsubCh:
			if _, ok := subs[ch]; ok {
				delete(subs, ch)
				close(ch)
			}

		case req := <-r.inspectCh:
			req.fn(r.session)
			close(req.done)

		case req := <-r.cmdCh:
			apply(req)

		case <-tick.C:
			// latest commands win: everything queued lands before this tick
		drain:
			for {
				select {
				case req := <-r.cmdCh:
					apply(req)
				default:
					break drain
				}
			}

			if r.session.Status() == pitch.StatusInFlight {
				r.session.Update(r.cfg.Dt)
				publish()
			}
		}
	}
}

func (r *Runner) frame() Frame {
	snap := r.session.Snapshot()
	return Frame{
		Seq:      r.seq,
		PitchID:  snap.PitchID,
		Type:     snap.Type,
		Status:   snap.Status,
		Reason:   snap.Reason,
		Elapsed:  snap.Elapsed,
		Position: snap.Position,
		Samples:  len(snap.Trajectory),
		Crossing: snap.Crossing,
	}
}
