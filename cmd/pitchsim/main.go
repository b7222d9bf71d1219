package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"
	"golang.org/x/sync/errgroup"

	"github.com/zeusync/pitchsim/internal/config"
	"github.com/zeusync/pitchsim/internal/core/observability/log"
	"github.com/zeusync/pitchsim/internal/core/pitch"
	"github.com/zeusync/pitchsim/internal/driver"
	"github.com/zeusync/pitchsim/internal/injector"
	"github.com/zeusync/pitchsim/internal/viewer"
	"github.com/zeusync/pitchsim/pkg/sequence"
)

type options struct {
	configPath string
	mode       string
	pitches    string
	dataPath   string
	workers    int
}

func main() {
	var opts options
	flag.StringVar(&opts.configPath, "config", "", "path to a YAML or JSON config file")
	flag.StringVar(&opts.mode, "mode", "simulate", "simulate, view or serve")
	flag.StringVar(&opts.pitches, "pitch", "", "comma-separated pitch types (simulate mode, default all)")
	flag.StringVar(&opts.dataPath, "data", "", "pitch-data JSON file")
	flag.IntVar(&opts.workers, "workers", 4, "parallel simulations")
	flag.Parse()

	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error loading config:", err)
		os.Exit(2)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-stopCh
		cancel()
	}()

	switch opts.mode {
	case "simulate":
		err = runSimulate(ctx, cfg, opts)
	case "view":
		err = runView(ctx, cfg, opts)
	case "serve":
		err = runServe(ctx, cfg, opts)
	default:
		err = fmt.Errorf("unknown mode %q", opts.mode)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		c := config.Default()
		return &c, nil
	}
	return config.LoadFile(path)
}

func readData(path string) (*pitch.PitchData, error) {
	if path == "" {
		return nil, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return pitch.DecodePitchData(f)
}

func runSimulate(ctx context.Context, cfg *config.Config, opts options) error {
	logger, err := log.New(cfg.Log)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	var refs []pitch.PitchRef
	if opts.pitches == "" && opts.dataPath == "" {
		for _, typ := range pitch.CannedTypes() {
			refs = append(refs, pitch.Canned(typ))
		}
	}
	for _, name := range strings.Split(opts.pitches, ",") {
		if name = strings.TrimSpace(name); name != "" {
			refs = append(refs, pitch.Canned(pitch.ParsePitchType(name)))
		}
	}
	if opts.dataPath != "" {
		raw, err := os.ReadFile(opts.dataPath)
		if err != nil {
			return err
		}
		refs = append(refs, pitch.Raw(raw))
	}

	summaries, err := driver.SimulateBatch(ctx, cfg, refs, opts.workers, logger)
	if err != nil {
		return err
	}

	for _, s := range summaries {
		if s.Error != "" {
			fmt.Printf("%-10s error: %s\n", s.Ref, s.Error)
			continue
		}
		call := "no crossing"
		if s.Crossing != nil {
			call = "ball"
			if s.Strike {
				call = "strike"
			}
			call = fmt.Sprintf("%s at x=%+.3f y=%.3f t=%.3fs", call, s.Crossing.Position.X, s.Crossing.Position.Y, s.Crossing.Time)
		}
		fmt.Printf("%-10s %-16s %.3fs %4d samples  %s\n", s.Ref, s.Reason, s.Elapsed, s.Samples, call)
	}
	failed := sequence.From(summaries).Filter(func(s driver.Summary) bool { return s.Error != "" }).Count()
	if failed > 0 {
		return fmt.Errorf("%d of %d pitches failed", failed, len(summaries))
	}
	return nil
}

func runView(ctx context.Context, cfg *config.Config, opts options) error {
	data, err := readData(opts.dataPath)
	if err != nil {
		return err
	}

	// the terminal belongs to the viewer, keep logs off it
	if cfg.Log.Output == "" || cfg.Log.Output == "stderr" || cfg.Log.Output == "stdout" {
		cfg.Log.Output = os.DevNull
	}
	logger, err := log.New(cfg.Log)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()

	session := pitch.NewSession(cfg.Target(), append(cfg.SessionOptions(), pitch.WithLogger(logger))...)
	session.SetPitchData(data)

	v := viewer.New(screen, session, viewer.Config{
		MetersPerColumn: cfg.Viewer.MetersPerColumn,
		FrameRate:       cfg.Viewer.FrameRate,
		CurveDivisions:  cfg.Simulation.CurveDivisions,
	}, logger)
	return v.Run(ctx)
}

func runServe(ctx context.Context, cfg *config.Config, opts options) error {
	data, err := readData(opts.dataPath)
	if err != nil {
		return err
	}

	app, err := injector.InitializeApp(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = app.Logger.Sync() }()

	app.Session.SetPitchData(data)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return app.Runner.Run(gctx) })

	if err := app.Server.Start(gctx); err != nil {
		cancel()
		_ = g.Wait()
		return err
	}

	g.Go(func() error {
		<-gctx.Done()
		stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return app.Server.Stop(stopCtx)
	})

	return g.Wait()
}
