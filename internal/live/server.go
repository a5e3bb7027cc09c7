package live

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/psidex/kgviz/internal/graphs"
	"github.com/psidex/kgviz/internal/lib"
)

// Server upgrades /ws requests into Sessions and optionally serves static files.
type Server struct {
	upgrader websocket.Upgrader
	limits   Limits
	sheet    *graphs.Stylesheet
	logger   *slog.Logger
}

// NewServer returns a Server whose sessions share sheet.
func NewServer(limits Limits, sheet *graphs.Stylesheet, logger *slog.Logger) *Server {
	return &Server{
		upgrader: websocket.Upgrader{
			// Pages are opened from local files, which have no usable origin.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		limits: limits.withDefaults(),
		sheet:  sheet,
		logger: lib.LoggerOr(logger),
	}
}

// Handler routes /ws to live sessions and everything else to staticDir, when set.
func (s *Server) Handler(staticDir string) http.Handler {
	mux := http.NewServeMux()
	if staticDir != "" {
		mux.Handle("/", http.FileServer(http.Dir(staticDir)))
	}
	mux.HandleFunc("/ws", s.ServeWS)
	return mux
}

// ServeWS runs one session. The first frame must be a SessionConfig.
func (s *Server) ServeWS(w http.ResponseWriter, r *http.Request) {
	c, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("ws upgrade failed", "err", err)
		return
	}
	ws := lib.NewThreadSafeWebSocket(c)
	defer ws.Close()

	logger := s.logger.With("remote", r.RemoteAddr)

	_, msg, err := ws.ReadMessage()
	if err != nil {
		logger.Warn("ws config read failed", "err", err)
		return
	}

	cfg := SessionConfig{}
	if err = json.Unmarshal(msg, &cfg); err != nil {
		logger.Warn("ws config unmarshal failed", "err", err)
		_ = ws.WriteJSON(Message{Type: TypeError, Data: errorData{Message: err.Error()}})
		return
	}

	session, err := NewSession(ws, cfg, s.limits, s.sheet, logger)
	if err != nil {
		logger.Warn("ws session rejected", "err", err)
		_ = ws.WriteJSON(Message{Type: TypeError, Data: errorData{Message: err.Error()}})
		return
	}

	if err := session.Run(r.Context()); err != nil {
		logger.Warn("live session ended with error", "err", err)
	}
}
