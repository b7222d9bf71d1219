package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/zeusync/pitchsim/internal/core/events/bus"
	"github.com/zeusync/pitchsim/internal/core/observability/log"
	"github.com/zeusync/pitchsim/internal/core/pitch"
	"github.com/zeusync/pitchsim/internal/driver"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// Client message types
const (
	MessageStart = "start"
	MessageReset = "reset"
	MessageLoad  = "load"
)

// Server message types
const (
	MessageFrame = "frame"
	MessageAck   = "ack"
	MessageError = "error"
	MessageEvent = "event"
)

// ClientMessage is a command sent by a websocket client. Start takes either
// a canned pitch name or a pitch-data record.
type ClientMessage struct {
	Type  string          `json:"type"`
	Pitch string          `json:"pitch,omitempty"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// ServerMessage is pushed to websocket clients.
type ServerMessage struct {
	Type    string        `json:"type"`
	Command string        `json:"command,omitempty"`
	Frame   *driver.Frame `json:"frame,omitempty"`
	Event   *bus.Event    `json:"event,omitempty"`
	Error   string        `json:"error,omitempty"`
}

type wsClient struct {
	id     string
	conn   *websocket.Conn
	out    chan ServerMessage
	closed atomic.Bool
	once   sync.Once
}

func (c *wsClient) close() {
	c.once.Do(func() {
		c.closed.Store(true)
		_ = c.conn.Close()
	})
}

// send queues a reply, dropping it if the writer is backed up
func (c *wsClient) send(msg ServerMessage) bool {
	select {
	case c.out <- msg:
		return true
	default:
		return false
	}
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("Websocket upgrade failed", log.Error(err))
		return
	}
	conn.SetReadLimit(s.config.MaxMessageSize)

	client := &wsClient{
		id:   uuid.NewString(),
		conn: conn,
		out:  make(chan ServerMessage, 16),
	}
	s.clients.Store(client.id, client)
	atomic.AddInt64(&s.clientCount, 1)

	clientLogger := s.logger.With(log.String("client_id", client.id))
	clientLogger.Info("Client connected",
		log.String("remote_addr", conn.RemoteAddr().String()),
		log.Int64("total_clients", atomic.LoadInt64(&s.clientCount)))

	ctx, cancel := context.WithCancel(context.Background())
	frames, unsub := s.runner.Subscribe(ctx)
	events := s.subscribeEvents(client, clientLogger)

	defer func() {
		cancel()
		unsub()
		if events != nil {
			_ = events.Cancel()
		}
		client.close()
		s.clients.Delete(client.id)
		atomic.AddInt64(&s.clientCount, -1)
		clientLogger.Info("Client disconnected",
			log.Int64("total_clients", atomic.LoadInt64(&s.clientCount)))
	}()

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		s.writeLoop(ctx, client, frames)
	}()

	s.readLoop(ctx, client, clientLogger)

	cancel()
	client.close()
	<-writerDone
}

// subscribeEvents forwards session events to client. Handlers run on the
// publisher's goroutine, so delivery goes through the non-blocking send.
func (s *Server) subscribeEvents(client *wsClient, logger log.Log) bus.Subscription {
	if s.events == nil {
		return nil
	}
	sub, err := s.events.Subscribe(bus.WildcardType, func(e bus.Event) error {
		if !strings.HasPrefix(e.Type, "pitch.") || client.closed.Load() {
			return nil
		}
		if !client.send(ServerMessage{Type: MessageEvent, Event: &e}) {
			logger.Debug("Event dropped, client backed up", log.String("event", e.Type))
		}
		return nil
	})
	if err != nil {
		logger.Warn("Failed to subscribe to events", log.Error(err))
		return nil
	}
	return sub
}

func (s *Server) readLoop(ctx context.Context, client *wsClient, logger log.Log) {
	for {
		var msg ClientMessage
		if err := client.conn.ReadJSON(&msg); err != nil {
			if !client.closed.Load() && !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Debug("Failed to read message", log.Error(err))
			}
			return
		}

		if err := s.handleMessage(ctx, msg); err != nil {
			logger.Debug("Command rejected", log.String("type", msg.Type), log.Error(err))
			client.send(ServerMessage{Type: MessageError, Command: msg.Type, Error: err.Error()})
			continue
		}
		client.send(ServerMessage{Type: MessageAck, Command: msg.Type})
	}
}

func (s *Server) handleMessage(ctx context.Context, msg ClientMessage) error {
	switch msg.Type {
	case MessageStart:
		switch {
		case len(msg.Data) > 0:
			return s.runner.Start(ctx, pitch.Raw(msg.Data))
		case msg.Pitch != "":
			return s.runner.Start(ctx, pitch.Canned(pitch.ParsePitchType(msg.Pitch)))
		default:
			return s.runner.Start(ctx, pitch.Loaded())
		}
	case MessageReset:
		return s.runner.Reset(ctx)
	case MessageLoad:
		if len(msg.Data) == 0 {
			return fmt.Errorf("%w: load without data", ErrInvalidMessage)
		}
		d, err := pitch.ParsePitchData(msg.Data)
		if err != nil {
			return err
		}
		return s.runner.Load(ctx, d)
	default:
		return fmt.Errorf("%w: unknown type %q", ErrInvalidMessage, msg.Type)
	}
}

// writeLoop is the only writer of client.conn.
func (s *Server) writeLoop(ctx context.Context, client *wsClient, frames <-chan driver.Frame) {
	write := func(msg ServerMessage) bool {
		_ = client.conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
		if err := client.conn.WriteJSON(msg); err != nil {
			client.close()
			return false
		}
		return true
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopChan:
			_ = client.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server stopping"),
				time.Now().Add(time.Second))
			client.close()
			return
		case msg := <-client.out:
			if !write(msg) {
				return
			}
		case f, ok := <-frames:
			if !ok {
				client.close()
				return
			}
			if !write(ServerMessage{Type: MessageFrame, Frame: &f}) {
				return
			}
		}
	}
}
