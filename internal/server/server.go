// Package server exposes a pitch runner over HTTP and websocket.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/zeusync/pitchsim/internal/core/events/bus"
	"github.com/zeusync/pitchsim/internal/core/observability/log"
	"github.com/zeusync/pitchsim/internal/driver"
)

// Server serves the state of one pitch runner
type Server struct {
	runner *driver.Runner
	events bus.EventBus
	http   *http.Server
	addr   net.Addr

	// Client management
	clients     sync.Map // map[string]*wsClient
	clientCount int64    // atomic

	// Server state
	running int32 // atomic bool
	closed  int32 // atomic bool

	config Config
	logger log.Log

	workerGroup sync.WaitGroup
	stopChan    chan struct{}
}

// Config holds server configuration
type Config struct {
	ListenAddr string

	// WriteTimeout bounds a single websocket write
	WriteTimeout time.Duration

	// CurveDivisions is the /curve default when the query omits it
	CurveDivisions int

	// MaxMessageSize limits inbound websocket messages
	MaxMessageSize int64
}

// DefaultServerConfig returns default server configuration
func DefaultServerConfig() Config {
	return Config{
		ListenAddr:     "127.0.0.1:8080",
		WriteTimeout:   5 * time.Second,
		CurveDivisions: 8,
		MaxMessageSize: 64 * 1024,
	}
}

// NewServer creates a server for runner. Events published on events are
// forwarded to websocket clients; events may be nil.
func NewServer(runner *driver.Runner, events bus.EventBus, config Config, logger log.Log) *Server {
	def := DefaultServerConfig()
	if config.WriteTimeout <= 0 {
		config.WriteTimeout = def.WriteTimeout
	}
	if config.CurveDivisions <= 0 {
		config.CurveDivisions = def.CurveDivisions
	}
	if config.MaxMessageSize <= 0 {
		config.MaxMessageSize = def.MaxMessageSize
	}
	if logger == nil {
		logger = log.NewNop()
	}

	server := &Server{
		runner:   runner,
		events:   events,
		config:   config,
		logger:   logger.With(log.String("component", "server")),
		stopChan: make(chan struct{}),
	}
	server.http = &http.Server{
		Handler:           server.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	server.logger.Info("Server created", log.String("listen_addr", config.ListenAddr))

	return server
}

// Handler returns the HTTP routes of the server
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /state", s.handleState)
	mux.HandleFunc("GET /curve", s.handleCurve)
	mux.HandleFunc("GET /profiles", s.handleProfiles)
	mux.HandleFunc("/ws", s.handleWebSocket)
	return mux
}

// Start starts listening and serving in the background
func (s *Server) Start(_ context.Context) error {
	if atomic.LoadInt32(&s.closed) == 1 {
		return ErrServerClosed
	}

	if !atomic.CompareAndSwapInt32(&s.running, 0, 1) {
		return ErrServerAlreadyRunning
	}

	s.logger.Info("Starting server")

	listener, err := net.Listen("tcp", s.config.ListenAddr)
	if err != nil {
		atomic.StoreInt32(&s.running, 0)
		s.logger.Error("Failed to create listener", log.Error(err))
		return fmt.Errorf("%w: %w", ErrListenerFailed, err)
	}
	s.addr = listener.Addr()

	s.workerGroup.Add(1)
	go func() {
		defer s.workerGroup.Done()
		if err := s.http.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("HTTP server failed", log.Error(err))
		}
	}()

	s.logger.Info("Server listening", log.String("addr", s.addr.String()))

	return nil
}

// Addr is the bound listen address, nil before Start
func (s *Server) Addr() net.Addr { return s.addr }

// Stop shuts down the HTTP server and disconnects websocket clients
func (s *Server) Stop(ctx context.Context) error {
	if !atomic.CompareAndSwapInt32(&s.running, 1, 0) {
		return ErrServerNotRunning
	}

	s.logger.Info("Stopping server")

	close(s.stopChan)

	err := s.http.Shutdown(ctx)

	// hijacked connections are not tracked by Shutdown
	s.clients.Range(func(_, value any) bool {
		value.(*wsClient).close()
		return true
	})

	s.workerGroup.Wait()

	s.logger.Info("Server stopped")

	return err
}

// Close stops the server if needed and marks it unusable
func (s *Server) Close() error {
	if !atomic.CompareAndSwapInt32(&s.closed, 0, 1) {
		return nil // Already closed
	}

	if atomic.LoadInt32(&s.running) == 1 {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.Stop(ctx)
	}

	s.logger.Info("Server closed")

	return nil
}

// GetStats returns server statistics
func (s *Server) GetStats() Stats {
	return Stats{
		ClientCount: atomic.LoadInt64(&s.clientCount),
		Running:     atomic.LoadInt32(&s.running) == 1,
	}
}

// Stats contains server statistics
type Stats struct {
	ClientCount int64 `json:"client_count"`
	Running     bool  `json:"running"`
}
