// Package web serves the console page over HTTP and pushes re-rendered
// regions to browsers over a websocket.
package web

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pthm-cable/cavern/config"
	"github.com/pthm-cable/cavern/game"
	"github.com/pthm-cable/cavern/store"
	"github.com/pthm-cable/cavern/ui"
)

// maxActionBody caps the size of a JSON action.
const maxActionBody = 64 << 10

// Options configures a Server.
type Options struct {
	Config   config.ServerConfig
	Logger   *slog.Logger
	Gatherer prometheus.Gatherer // nil disables /metrics
}

// Server is the HTTP front end.
type Server struct {
	game     *game.Game
	view     *ui.View
	hub      *Hub
	cfg      config.ServerConfig
	logger   *slog.Logger
	gatherer prometheus.Gatherer
	upgrader websocket.Upgrader

	unsubscribe func()
}

// New creates a server for g and v and subscribes its websocket hub to the
// store. Call Close to unsubscribe.
func New(g *game.Game, v *ui.View, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		game:     g,
		view:     v,
		hub:      newHub(opts.Config.WriteWait, logger),
		cfg:      opts.Config,
		logger:   logger,
		gatherer: opts.Gatherer,
		upgrader: websocket.Upgrader{ReadBufferSize: 1024, WriteBufferSize: 1024},
	}
	s.unsubscribe = g.Subscribe(s.onChange)
	return s
}

// Hub returns the websocket hub.
func (s *Server) Hub() *Hub { return s.hub }

// onChange runs on the game goroutine after every dispatch.
func (s *Server) onChange() {
	changes, err := s.view.Refresh(s.game.State())
	if err != nil {
		s.logger.Error("refresh failed", "error", err)
		return
	}
	msgs, err := encode(changes)
	if err != nil {
		s.logger.Error("encoding changes", "error", err)
		return
	}
	s.hub.broadcast(msgs)
}

// Handler returns the routes of the server.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handlePage)
	mux.HandleFunc("POST /actions/{id}", s.handleButton)
	mux.HandleFunc("POST /actions", s.handleAction)
	mux.HandleFunc("GET /state", s.handleState)
	mux.HandleFunc("GET /ws", s.handleWS)
	if s.gatherer != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
	return mux
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := s.view.Render(&buf, s.game.State()); err != nil {
		s.logger.Error("render failed", "error", err)
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}

func (s *Server) handleButton(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	action, err := s.view.Action(id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	if _, err := s.game.Dispatch(r.Context(), action); err != nil {
		s.dispatchError(w, err)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleAction(w http.ResponseWriter, r *http.Request) {
	var action store.Action
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxActionBody)).Decode(&action); err != nil {
		http.Error(w, fmt.Sprintf("decoding action: %v", err), http.StatusBadRequest)
		return
	}
	st, err := s.game.Dispatch(r.Context(), action)
	if err != nil {
		s.dispatchError(w, err)
		return
	}
	writeJSON(w, st)
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.game.State())
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	c := &client{conn: conn, send: make(chan []byte, sendBuffer)}

	err = s.hub.add(c, func() ([][]byte, error) {
		changes, err := s.view.Snapshot(s.game.State())
		if err != nil {
			return nil, err
		}
		return encode(changes)
	})
	if err != nil {
		s.logger.Error("websocket snapshot failed", "error", err)
		conn.Close()
		return
	}
	s.logger.Debug("websocket connected", "remote", conn.RemoteAddr().String(), "clients", s.hub.Len())

	go s.hub.writePump(c)
	s.hub.readPump(c)
}

func (s *Server) dispatchError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, game.ErrStopped):
		http.Error(w, "shutting down", http.StatusServiceUnavailable)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		http.Error(w, "dispatch timed out", http.StatusGatewayTimeout)
	default:
		s.logger.Error("dispatch failed", "error", err)
		http.Error(w, "dispatch failed", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

// ListenAndServe serves until ctx ends, then shuts down within the
// configured timeout and disconnects websocket clients.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: s.cfg.ReadHeaderTimeout,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.cfg.Addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return fmt.Errorf("web: serve: %w", err)
	case <-ctx.Done():
	}

	timeout := s.cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	s.hub.closeAll()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("web: shutdown: %w", err)
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("web: serve: %w", err)
	}
	return nil
}

// Close unsubscribes from the store and disconnects websocket clients.
func (s *Server) Close() {
	s.unsubscribe()
	s.hub.closeAll()
}
