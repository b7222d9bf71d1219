// Package config loads the simulator configuration from YAML or JSON.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/zeusync/pitchsim/internal/core/observability/log"
	"github.com/zeusync/pitchsim/internal/core/physics"
	"github.com/zeusync/pitchsim/internal/core/pitch"
	"github.com/zeusync/pitchsim/internal/core/trajectory"
)

var ErrInvalidConfig = errors.New("invalid configuration")

type Config struct {
	Field      FieldConfig      `json:"field" yaml:"field"`
	Simulation SimulationConfig `json:"simulation" yaml:"simulation"`
	Log        log.Config       `json:"log" yaml:"log"`
	Server     ServerConfig     `json:"server" yaml:"server"`
	Viewer     ViewerConfig     `json:"viewer" yaml:"viewer"`
}

// FieldConfig describes the mound-to-plate geometry, meters.
type FieldConfig struct {
	RubberOffset      float64 `json:"rubber_offset" yaml:"rubber_offset"`
	RubberToHomeplate float64 `json:"rubber_to_homeplate" yaml:"rubber_to_homeplate"`
	BatterHeight      float64 `json:"batter_height" yaml:"batter_height"`
	ReleaseHeight     float64 `json:"release_height" yaml:"release_height"`
}

type SimulationConfig struct {
	TickRate       float64 `json:"tick_rate" yaml:"tick_rate"` // Hz
	TrajectoryCap  int     `json:"trajectory_cap" yaml:"trajectory_cap"`
	ArrivalMargin  float64 `json:"arrival_margin" yaml:"arrival_margin"`
	CurveDivisions int     `json:"curve_divisions" yaml:"curve_divisions"`
	MaxFlightTime  float64 `json:"max_flight_time" yaml:"max_flight_time"` // seconds, headless runs
	CacheSize      int     `json:"cache_size" yaml:"cache_size"`
}

type ServerConfig struct {
	ListenAddr      string   `json:"listen_addr" yaml:"listen_addr"`
	WriteTimeout    Duration `json:"write_timeout" yaml:"write_timeout"` // "5s" or nanoseconds
	SubscriberQueue int      `json:"subscriber_queue" yaml:"subscriber_queue"`
}

type ViewerConfig struct {
	// MetersPerColumn scales the travel axis onto terminal columns; zero fits
	// the whole distance to the screen width.
	MetersPerColumn float64 `json:"meters_per_column" yaml:"meters_per_column"`
	FrameRate       float64 `json:"frame_rate" yaml:"frame_rate"`
}

// Default returns the regulation field and a 60 Hz simulation.
func Default() Config {
	return Config{
		Field: FieldConfig{
			RubberOffset:      pitch.DefaultRubberOffset,
			RubberToHomeplate: pitch.DefaultRubberToHomeplate,
			BatterHeight:      pitch.DefaultBatterHeight,
			ReleaseHeight:     pitch.DefaultReleaseHeight,
		},
		Simulation: SimulationConfig{
			TickRate:       60,
			TrajectoryCap:  trajectory.DefaultCapacity,
			ArrivalMargin:  pitch.DefaultArrivalMargin,
			CurveDivisions: trajectory.DefaultDivisions,
			MaxFlightTime:  5,
			CacheSize:      pitch.DefaultCacheSize,
		},
		Log: log.DefaultConfig(),
		Server: ServerConfig{
			ListenAddr:      "127.0.0.1:8080",
			WriteTimeout:    Duration(5 * time.Second),
			SubscriberQueue: 32,
		},
		Viewer: ViewerConfig{
			FrameRate: 60,
		},
	}
}

// LoadJSON decodes a config from r on top of Default.
func LoadJSON(r io.Reader) (*Config, error) {
	c := Default()
	dec := json.NewDecoder(r)
	if err := dec.Decode(&c); err != nil {
		return nil, err
	}
	return &c, c.Validate()
}

// LoadYAML decodes a config from r on top of Default.
func LoadYAML(r io.Reader) (*Config, error) {
	c := Default()
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&c); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return &c, c.Validate()
}

// LoadFile picks the decoder from the file extension (.json, otherwise YAML).
func LoadFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if strings.EqualFold(filepath.Ext(path), ".json") {
		return LoadJSON(f)
	}
	return LoadYAML(f)
}

// Validate checks ranges.
func (c *Config) Validate() error {
	switch {
	case c.Field.RubberOffset < 0:
		return fmt.Errorf("%w: field.rubber_offset must not be negative", ErrInvalidConfig)
	case c.Field.RubberToHomeplate <= 0:
		return fmt.Errorf("%w: field.rubber_to_homeplate must be positive", ErrInvalidConfig)
	case c.Field.BatterHeight <= 0:
		return fmt.Errorf("%w: field.batter_height must be positive", ErrInvalidConfig)
	case c.Simulation.TickRate <= 0:
		return fmt.Errorf("%w: simulation.tick_rate must be positive", ErrInvalidConfig)
	case c.Simulation.TrajectoryCap <= 0:
		return fmt.Errorf("%w: simulation.trajectory_cap must be positive", ErrInvalidConfig)
	case c.Simulation.ArrivalMargin < 0:
		return fmt.Errorf("%w: simulation.arrival_margin must not be negative", ErrInvalidConfig)
	case c.Simulation.MaxFlightTime <= 0:
		return fmt.Errorf("%w: simulation.max_flight_time must be positive", ErrInvalidConfig)
	}
	if _, ok := log.ParseLevel(c.Log.Level); !ok {
		return fmt.Errorf("%w: unknown log level %q", ErrInvalidConfig, c.Log.Level)
	}
	return nil
}

// Dt is the fixed simulation step derived from the tick rate.
func (c SimulationConfig) Dt() float64 { return 1 / c.TickRate }

// Target builds the plate reference aimed at the strike-zone centre.
func (c *Config) Target() pitch.Target {
	return pitch.NewTarget(c.Field.RubberOffset, c.Field.RubberToHomeplate, c.StrikeZone().Center())
}

func (c *Config) StrikeZone() pitch.StrikeZone {
	return pitch.StrikeZone{BatterHeight: c.Field.BatterHeight}
}

// SessionOptions translates the simulation settings into session options.
func (c *Config) SessionOptions() []pitch.SessionOption {
	return []pitch.SessionOption{
		pitch.WithCapacity(c.Simulation.TrajectoryCap),
		pitch.WithArrivalMargin(c.Simulation.ArrivalMargin),
		pitch.WithStrikeZone(c.StrikeZone()),
		pitch.WithReleasePoint(physics.V3(0, c.Field.ReleaseHeight, c.Field.RubberOffset)),
		pitch.WithCacheSize(c.Simulation.CacheSize),
	}
}
