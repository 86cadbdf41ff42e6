// Package http is the thin boundary of the server: JSON envelopes, the
// middleware chain, metrics and the listener.
package http

import (
	"context"
	"net/http"
	"time"
)

// Server wraps the net/http server with a graceful shutdown.
type Server struct {
	srv *http.Server
}

func NewServer(addr string, handler http.Handler) *Server {
	return &Server{srv: &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}}
}

// ListenAndServe blocks serving requests.
func (s *Server) ListenAndServe() error {
	return s.srv.ListenAndServe()
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
