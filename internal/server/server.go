// Package server exposes the relay over HTTP: the landing page, static
// assets, the websocket endpoint and a health check.
package server

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"path/filepath"
	"slices"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"realtime-presence/internal/config"
	"realtime-presence/internal/relay"
)

// Server wires the hub to an http.Server.
type Server struct {
	cfg      *config.Config
	hub      *relay.Hub
	logger   zerolog.Logger
	upgrader websocket.Upgrader
}

// New constructs a Server. The hub is started by Serve, not here.
func New(cfg *config.Config, hub *relay.Hub, logger zerolog.Logger) *Server {
	s := &Server{
		cfg:    cfg,
		hub:    hub,
		logger: logger.With().Str("component", "http").Logger(),
	}
	s.upgrader = websocket.Upgrader{
		CheckOrigin: s.checkOrigin,
	}
	return s
}

// Run listens on the configured port and serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Address())
	if err != nil {
		return errors.Wrapf(err, "listen on %s", s.cfg.Address())
	}
	return s.Serve(ctx, ln)
}

// Serve runs the hub and the HTTP server on ln. Cancelling ctx shuts the
// HTTP server down gracefully, then stops the hub, which closes every socket.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	httpSrv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	hubCtx, stopHub := context.WithCancel(context.WithoutCancel(ctx))
	defer stopHub()

	g.Go(func() error {
		return s.hub.Run(hubCtx)
	})

	g.Go(func() error {
		s.logger.Info().Str("addr", ln.Addr().String()).Msg("relay listening")
		if err := httpSrv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "http server")
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		defer stopHub()

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.ShutdownTimeout)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error().Err(err).Msg("server shutdown error")
			return errors.Wrap(err, "shutdown")
		}
		s.logger.Info().Msg("server shutdown complete")
		return nil
	})

	return g.Wait()
}

// Handler returns the routes. Any upgrade request is treated as a relay
// socket regardless of path.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/ws", s.handleWebSocket)

	static := http.FileServer(http.Dir(s.cfg.StaticDir))
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if websocket.IsWebSocketUpgrade(r) {
			s.handleWebSocket(w, r)
			return
		}
		if r.URL.Path == "/" {
			http.ServeFile(w, r, filepath.Join(s.cfg.StaticDir, s.cfg.IndexFile))
			return
		}
		static.ServeHTTP(w, r)
	})

	return s.loggingMiddleware(mux)
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		s.logger.Warn().Err(err).Str("remote", r.RemoteAddr).Msg("websocket upgrade failed")
		return
	}
	if _, err := s.hub.Attach(conn); err != nil {
		s.logger.Warn().Err(err).Msg("rejecting connection")
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	stats := s.hub.Stats()
	respondJSON(w, http.StatusOK, map[string]any{
		"status":       "ok",
		"connections":  stats.Connections,
		"participants": stats.Participants,
		"photos":       stats.Photos,
	})
}

// checkOrigin allows everything when no allow-list is configured. Requests
// without an Origin header come from non-browser clients and pass.
func (s *Server) checkOrigin(r *http.Request) bool {
	if len(s.cfg.AllowedOrigins) == 0 {
		return true
	}
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	return slices.Contains(s.cfg.AllowedOrigins, origin)
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Error().Err(err).Msg("failed to encode json response")
	}
}
