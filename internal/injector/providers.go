package injector

import (
	"github.com/google/wire"

	"github.com/zeusync/pitchsim/internal/config"
	"github.com/zeusync/pitchsim/internal/core/events/bus"
	"github.com/zeusync/pitchsim/internal/core/observability/log"
	"github.com/zeusync/pitchsim/internal/core/pitch"
	"github.com/zeusync/pitchsim/internal/driver"
	"github.com/zeusync/pitchsim/internal/server"
)

// App is everything the serve mode needs, built from one config.
type App struct {
	Config  *config.Config
	Logger  *log.Logger
	Bus     bus.EventBus
	Session *pitch.Session
	Runner  *driver.Runner
	Server  *server.Server
}

var ProviderSet = wire.NewSet(
	ProvideLogger,
	ProvideBus,
	ProvideSession,
	ProvideRunner,
	ProvideServer,
)

func ProvideLogger(cfg *config.Config) (*log.Logger, error) {
	return log.New(cfg.Log)
}

func ProvideBus() bus.EventBus {
	return bus.New()
}

func ProvideSession(cfg *config.Config, logger *log.Logger, b bus.EventBus) *pitch.Session {
	opts := append(cfg.SessionOptions(), pitch.WithLogger(logger), pitch.WithBus(b))
	return pitch.NewSession(cfg.Target(), opts...)
}

func ProvideRunner(cfg *config.Config, session *pitch.Session, logger *log.Logger) *driver.Runner {
	return driver.NewRunner(session, driver.RunnerConfig{
		Dt:    cfg.Simulation.Dt(),
		Queue: cfg.Server.SubscriberQueue,
	}, logger.With(log.String("component", "runner")))
}

func ProvideServer(cfg *config.Config, runner *driver.Runner, b bus.EventBus, logger *log.Logger) *server.Server {
	return server.NewServer(runner, b, server.Config{
		ListenAddr:     cfg.Server.ListenAddr,
		WriteTimeout:   cfg.Server.WriteTimeout.Std(),
		CurveDivisions: cfg.Simulation.CurveDivisions,
	}, logger)
}
