// Package live runs interactive graph sessions over a WebSocket. The server owns the
// View and its simulation, the browser only draws the streamed positions and sends
// back the interactions it sees.
package live

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/psidex/kgviz/internal/graph"
	"github.com/psidex/kgviz/internal/graphs"
	"github.com/psidex/kgviz/internal/lib"
)

const (
	DefaultTickInterval = 50 * time.Millisecond
	MinTickInterval     = 10 * time.Millisecond
	DefaultMaxRuntime   = 10 * time.Minute
)

// SessionConfig is the first message a client sends.
type SessionConfig struct {
	Kind         graphs.Kind    `json:"kind"`
	Nodes        []graph.Node   `json:"nodes"`
	Edges        []graph.Edge   `json:"edges"`
	Options      graphs.Options `json:"options"`
	TickInterval lib.Duration   `json:"tickInterval"`
	Runtime      lib.Duration   `json:"runtime"`
}

// Limits bound what a client may ask for.
type Limits struct {
	TickInterval time.Duration `mapstructure:"tickInterval"`
	MaxRuntime   time.Duration `mapstructure:"maxRuntime"`
}

func (l Limits) withDefaults() Limits {
	if l.TickInterval <= 0 {
		l.TickInterval = DefaultTickInterval
	}
	if l.MaxRuntime <= 0 {
		l.MaxRuntime = DefaultMaxRuntime
	}
	return l
}

// Session is one live View bound to one socket.
type Session struct {
	ws       lib.ThreadSafeWebSocket
	view     *graphs.View
	logger   *slog.Logger
	interval time.Duration
	runtime  time.Duration

	settled  bool
	writeErr error
}

// NewSession builds the View described by cfg. Force layouts keep their simulation
// running so the client sees it settle.
func NewSession(ws lib.ThreadSafeWebSocket, cfg SessionConfig, limits Limits, sheet *graphs.Stylesheet, logger *slog.Logger) (*Session, error) {
	limits = limits.withDefaults()
	logger = lib.LoggerOr(logger)

	kind := cfg.Kind
	if kind == "" {
		kind = graphs.Network
	}
	o := cfg.Options
	o.Simulate = true
	o.Stylesheet = sheet

	v, err := graphs.New(kind, cfg.Nodes, cfg.Edges, o, logger)
	if err != nil {
		return nil, err
	}

	s := &Session{
		ws:       ws,
		view:     v,
		logger:   logger,
		interval: max(cfg.TickInterval.Or(limits.TickInterval), MinTickInterval),
		runtime:  min(cfg.Runtime.Or(limits.MaxRuntime), limits.MaxRuntime),
	}
	for _, t := range []graphs.EventType{
		graphs.EventTick, graphs.EventHover, graphs.EventUnhover, graphs.EventClick,
		graphs.EventDrag, graphs.EventDragEnd, graphs.EventZoom,
		graphs.EventHighlight, graphs.EventClear,
	} {
		v.On(t, s.forward)
	}
	return s, nil
}

// View returns the session's View. It must only be used from the goroutine running
// the session.
func (s *Session) View() *graphs.View { return s.view }

func (s *Session) send(m Message) {
	if s.writeErr != nil {
		return
	}
	if err := s.ws.WriteJSON(m); err != nil {
		s.writeErr = fmt.Errorf("writing %s message: %w", m.Type, err)
	}
}

func (s *Session) forward(u graphs.Update) {
	if m, ok := updateMessage(u); ok {
		s.send(m)
	}
}

// sendGraph writes every node then every edge, in the coordinates ticks use.
func (s *Session) sendGraph() error {
	scene := s.view.SimulationScene()
	for _, n := range scene.Nodes {
		s.send(nodeMessage(n))
	}
	for _, e := range scene.Edges {
		s.send(edgeMessage(e))
	}
	return s.writeErr
}

var errClientClosed = errors.New("client closed the session")

// read decodes client frames into events until the socket fails, done is closed or
// the client asks to close.
func (s *Session) read(events chan<- graphs.Event, errs chan<- error, done <-chan struct{}) {
	for {
		_, msg, err := s.ws.ReadMessage()
		if err != nil {
			errs <- err
			return
		}
		var e graphs.Event
		if err := json.Unmarshal(msg, &e); err != nil || e.Type == "" {
			s.logger.Warn("ignoring malformed client message", "err", err, "msg", string(msg))
			continue
		}
		if e.Type == TypeClose {
			errs <- errClientClosed
			return
		}
		select {
		case events <- e:
		case <-done:
			return
		}
	}
}

// Run streams the graph and then serves ticks and interactions until the runtime
// elapses, ctx is cancelled or the client goes away. The View is destroyed on return.
func (s *Session) Run(ctx context.Context) error {
	defer s.view.Destroy()

	if err := s.sendGraph(); err != nil {
		return err
	}

	events := make(chan graphs.Event)
	readErrs := make(chan error, 1)
	done := make(chan struct{})
	defer close(done)
	go s.read(events, readErrs, done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	deadline := time.NewTimer(s.runtime)
	defer deadline.Stop()

	s.settled = !s.view.Simulating()
	s.logger.Info("live session started",
		"nodes", len(s.view.Graph().Nodes), "edges", len(s.view.Graph().Edges),
		"interval", s.interval, "runtime", s.runtime)

	for {
		select {
		case <-ctx.Done():
			s.finish("cancelled")
			return ctx.Err()

		case <-deadline.C:
			s.finish("runtime")
			return s.writeErr

		case err := <-readErrs:
			if errors.Is(err, errClientClosed) {
				s.finish("closed")
				return s.writeErr
			}
			s.logger.Debug("client went away", "err", err)
			return nil

		case e := <-events:
			if _, err := s.view.Dispatch(e); err != nil {
				return err
			}
			if e.Type == graphs.EventDrag {
				s.settled = false
			}

		case <-ticker.C:
			if !s.settled {
				s.settled = !s.view.Tick()
			}
		}

		if s.writeErr != nil {
			return s.writeErr
		}
	}
}

func (s *Session) finish(reason string) {
	s.send(Message{Type: TypeDone, Data: doneData{Reason: reason}})
	s.logger.Info("live session finished", "reason", reason)
}
