// Package server publishes stored histories and the run journal over HTTP.
// It never triggers a scrape.
package server

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"time"
)

type Server struct {
	srv *http.Server
}

// New creates a server whose request contexts derive from baseCtx.
func New(baseCtx context.Context, addr string, hist Histories, jobs Journal) *Server {
	return &Server{
		srv: &http.Server{
			Addr:    addr,
			Handler: NewHandler(hist, jobs),
			BaseContext: func(_ net.Listener) context.Context {
				return baseCtx
			},
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 60 * time.Second,
			IdleTimeout:  120 * time.Second,
		},
	}
}

func (s *Server) Start() error {
	slog.Info("starting server", "addr", s.srv.Addr)
	return s.srv.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	slog.Info("shutting down server")
	return s.srv.Shutdown(ctx)
}
