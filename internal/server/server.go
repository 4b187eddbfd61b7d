// Package server exposes the gamepad table over HTTP: a websocket feed, a
// JSON snapshot endpoint and the embedded viewer.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/lxzan/gws"

	"github.com/soar/padtable/internal/gamepad"
	"github.com/soar/padtable/internal/hub"
)

type Server struct {
	hub         *hub.Hub
	broadcaster *hub.Broadcaster
	table       hub.Snapshotter
	assets      *assets
	upgrader    *gws.Upgrader
	addr        string
	logger      *slog.Logger
	httpServer  *http.Server
}

func New(h *hub.Hub, b *hub.Broadcaster, table hub.Snapshotter, frontendFS fs.FS, addr string, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}
	a, err := loadAssets(frontendFS, logger)
	if err != nil {
		return nil, fmt.Errorf("load frontend: %w", err)
	}
	s := &Server{
		hub:         h,
		broadcaster: b,
		table:       table,
		assets:      a,
		upgrader:    newUpgrader(h, b, logger),
		addr:        addr,
		logger:      logger,
	}
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s, nil
}

// Handler returns the routes without binding a listener.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /ws", s.handleWebSocket)
	mux.HandleFunc("GET /api/snapshot", s.handleSnapshot)
	mux.Handle("GET /", s.assets)
	return mux
}

// handleSnapshot returns the current table, optionally narrowed with
// ?player=N.
func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	player := 0
	if p := r.URL.Query().Get("player"); p != "" {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 || n > gamepad.MaxSlots {
			http.Error(w, "invalid player", http.StatusBadRequest)
			return
		}
		player = n
	}

	snap := s.table.Snapshot()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(hub.NewState(&snap, player)); err != nil {
		s.logger.Warn("write snapshot", "err", err)
	}
}

// ListenAndServe returns http.ErrServerClosed once Shutdown has been called,
// including when Shutdown ran first.
func (s *Server) ListenAndServe() error {
	s.logger.Info("HTTP server listening", "addr", s.addr)
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}
