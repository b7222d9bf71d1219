// Package viewer draws a side view of the pitch in a terminal.
package viewer

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/zeusync/pitchsim/internal/core/observability/log"
	"github.com/zeusync/pitchsim/internal/core/physics"
	"github.com/zeusync/pitchsim/internal/core/pitch"
	"github.com/zeusync/pitchsim/internal/core/trajectory"
)

const (
	statusRows = 2
	// headroom above the release height, meters
	topMargin = 0.6
	// field shown past the arrival plane, at least one tick of a fast pitch
	runOut = 1.0
)

var (
	styleDefault = tcell.StyleDefault
	styleGround  = tcell.StyleDefault.Foreground(tcell.ColorGreen)
	styleZone    = tcell.StyleDefault.Foreground(tcell.ColorYellow)
	styleTrail   = tcell.StyleDefault.Foreground(tcell.ColorSilver)
	styleBall    = tcell.StyleDefault.Foreground(tcell.ColorWhite).Bold(true)
	styleStrike  = tcell.StyleDefault.Foreground(tcell.ColorGreen).Bold(true)
	styleBallOut = tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)
	styleError   = tcell.StyleDefault.Foreground(tcell.ColorRed)
)

type Config struct {
	// MetersPerColumn scales the travel axis; zero fits the field to the width.
	MetersPerColumn float64
	FrameRate       float64
	CurveDivisions  int
}

// keyPitches maps the number keys to canned pitches.
var keyPitches = map[rune]pitch.PitchType{
	'1': pitch.Fastball,
	'2': pitch.Curveball,
	'3': pitch.Slider,
	'4': pitch.Changeup,
}

// Viewer owns the screen and drives the session once per frame.
type Viewer struct {
	screen  tcell.Screen
	session *pitch.Session
	cfg     Config
	logger  log.Log

	width, height int
	message       string
	messageStyle  tcell.Style
}

func New(screen tcell.Screen, session *pitch.Session, cfg Config, logger log.Log) *Viewer {
	if cfg.FrameRate <= 0 {
		cfg.FrameRate = 60
	}
	if cfg.CurveDivisions <= 0 {
		cfg.CurveDivisions = trajectory.DefaultDivisions
	}
	if logger == nil {
		logger = log.NewNop()
	}
	v := &Viewer{
		screen:       screen,
		session:      session,
		cfg:          cfg,
		logger:       logger.With(log.String("component", "viewer")),
		message:      "1-4 pitch  l recorded  r reset  q quit",
		messageStyle: styleDefault,
	}
	v.width, v.height = screen.Size()
	return v
}

// Run loops until ctx is cancelled or the user quits. The caller owns the
// screen and must Fini it afterwards.
func (v *Viewer) Run(ctx context.Context) error {
	frame := time.Duration(float64(time.Second) / v.cfg.FrameRate)
	ticker := time.NewTicker(frame)
	defer ticker.Stop()

	eventChan := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := v.screen.PollEvent()
			if ev == nil {
				// screen finalized
				return
			}
			select {
			case eventChan <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	v.logger.Info("viewer started", log.Float64("frame_rate", v.cfg.FrameRate))
	defer v.logger.Info("viewer stopped")

	last := time.Now()
	v.Draw()
	for {
		select {
		case <-ctx.Done():
			return nil

		case ev := <-eventChan:
			if !v.HandleEvent(ev) {
				return nil
			}

		case now := <-ticker.C:
			v.session.Update(now.Sub(last).Seconds())
			last = now
			v.Draw()
		}
	}
}

// HandleEvent applies one terminal event and reports whether to keep running.
func (v *Viewer) HandleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		return v.HandleKey(ev.Key(), ev.Rune())
	case *tcell.EventResize:
		v.width, v.height = v.screen.Size()
		v.screen.Sync()
	}
	return true
}

// HandleKey is HandleEvent for a decoded key press.
func (v *Viewer) HandleKey(key tcell.Key, r rune) bool {
	switch key {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return false
	case tcell.KeyRune:
	default:
		return true
	}

	switch r {
	case 'q', 'Q':
		return false
	case 'r', 'R':
		v.session.ResetBall()
		v.setMessage("reset", styleDefault)
	case 'l', 'L':
		// recorded pitch, if one was loaded with SetPitchData
		prev := v.session.PitchID()
		if err := v.session.StartPitch(pitch.Loaded()); err != nil {
			v.setMessage(err.Error(), styleError)
			return true
		}
		if id := v.session.PitchID(); id == "" || id == prev {
			v.setMessage("no pitch data loaded", styleError)
			return true
		}
		v.setMessage("recorded pitch", styleDefault)
	default:
		typ, ok := keyPitches[r]
		if !ok {
			return true
		}
		if err := v.session.StartPitch(pitch.Canned(typ)); err != nil {
			v.setMessage(err.Error(), styleError)
			return true
		}
		v.setMessage(string(typ), styleDefault)
	}
	return true
}

func (v *Viewer) setMessage(msg string, style tcell.Style) {
	v.message = msg
	v.messageStyle = style
}

// Draw renders the current session state.
func (v *Viewer) Draw() {
	v.screen.Clear()
	if v.width < 10 || v.height < statusRows+4 {
		v.screen.Show()
		return
	}

	p := v.projection()

	// ground line
	gy := v.height - statusRows - 1
	for x := 0; x < v.width; x++ {
		v.screen.SetContent(x, gy, '_', nil, styleGround)
	}

	// strike zone at the plate
	zone := v.session.StrikeZone()
	plateX, top, _ := p.cell(physics.V3(0, zone.Top(), v.session.Target().DistanceAlongAxis()))
	_, bottom, _ := p.cell(physics.V3(0, zone.Bottom(), 0))
	for y := top; y <= bottom; y++ {
		v.set(plateX, y, '|', styleZone)
	}

	for _, pt := range v.session.Curve(v.cfg.CurveDivisions) {
		if x, y, ok := p.cell(pt); ok {
			v.set(x, y, '·', styleTrail)
		}
	}

	ballStyle := styleBall
	if c, ok := v.session.Crossing(); ok {
		if c.Strike {
			ballStyle = styleStrike
		} else {
			ballStyle = styleBallOut
		}
	}
	if x, y, below, ok := p.ballCell(v.session.Position()); ok {
		glyph := '●'
		if below {
			glyph = '▼'
		}
		v.set(x, y, glyph, ballStyle)
	}

	v.drawStatus()
	v.screen.Show()
}

func (v *Viewer) drawStatus() {
	pos := v.session.Position()
	line := fmt.Sprintf("%-9s t=%.3fs  x=%+.2f y=%.2f z=%.2f  samples=%d",
		v.session.Status(), v.session.ElapsedTime(), pos.X, pos.Y, pos.Z, len(v.session.Trajectory()))
	if c, ok := v.session.Crossing(); ok {
		call := "ball"
		if c.Strike {
			call = "strike"
		}
		line += fmt.Sprintf("  %s at (%+.2f, %.2f)", call, c.Position.X, c.Position.Y)
	}
	v.text(0, v.height-2, line, styleDefault)
	v.text(0, v.height-1, v.message, v.messageStyle)
}

func (v *Viewer) set(x, y int, r rune, style tcell.Style) {
	if x >= 0 && x < v.width && y >= 0 && y < v.height-statusRows {
		v.screen.SetContent(x, y, r, nil, style)
	}
}

func (v *Viewer) text(x, y int, s string, style tcell.Style) {
	for _, r := range s {
		if x >= v.width {
			return
		}
		v.screen.SetContent(x, y, r, nil, style)
		x++
	}
}

// projection maps field meters onto screen cells: Z to columns, Y to rows.
type projection struct {
	zMin, perCol float64
	yMax, perRow float64
	cols, rows   int
}

func (v *Viewer) projection() projection {
	release := v.session.InitialPosition()
	far := v.session.Target().DistanceAlongAxis() + pitch.DefaultArrivalMargin + runOut
	zMin := math.Min(0, release.Z)
	cols := v.width - 1

	perCol := v.cfg.MetersPerColumn
	if perCol <= 0 {
		perCol = (far - zMin) / float64(cols)
	}

	rows := v.height - statusRows - 1
	yMax := math.Max(release.Y, v.session.StrikeZone().Top()) + topMargin
	return projection{
		zMin:   zMin,
		perCol: perCol,
		yMax:   yMax,
		perRow: yMax / float64(rows),
		cols:   cols,
		rows:   rows,
	}
}

// cell returns the screen cell of pos and whether it lies on the field area.
func (p projection) cell(pos physics.Vec3) (x, y int, ok bool) {
	if !pos.IsFinite() {
		return 0, 0, false
	}
	x = int(math.Round((pos.Z - p.zMin) / p.perCol))
	y = int(math.Round((p.yMax - pos.Y) / p.perRow))
	ok = x >= 0 && x <= p.cols && y >= 0 && y <= p.rows
	return x, y, ok
}

// ballCell is cell, except that a ball below the ground stays visible: it is
// pinned to the ground row and below is set.
func (p projection) ballCell(pos physics.Vec3) (x, y int, below, ok bool) {
	x, y, ok = p.cell(pos)
	if ok || !pos.IsFinite() || x < 0 || x > p.cols || y < 0 {
		return x, y, false, ok
	}
	return x, p.rows, true, true
}
