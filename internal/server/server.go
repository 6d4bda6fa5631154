package server

import (
	"context"
	"crypto/tls"
	"net"
	"net/http"
	"time"
)

// Server represents an HTTP server
type Server struct {
	srv      *http.Server
	tlsCert  string
	tlsKey   string
	listener net.Listener
	errs     chan error
}

// New creates a new server instance. An empty tlsCert or tlsKey serves plain HTTP.
func New(handler http.Handler, port, tlsCert, tlsKey string) *Server {
	return &Server{
		srv: &http.Server{
			Addr:              ":" + port,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
		tlsCert: tlsCert,
		tlsKey:  tlsKey,
		errs:    make(chan error, 1),
	}
}

// Start binds the listen address and serves in the background. Bind errors
// are returned; later serve errors arrive on Errors.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return err
	}
	s.listener = ln

	if s.tlsCert != "" && s.tlsKey != "" {
		s.srv.TLSConfig = &tls.Config{
			MinVersion: tls.VersionTLS12,
		}
		go s.serve(func() error { return s.srv.ServeTLS(ln, s.tlsCert, s.tlsKey) })
		return nil
	}

	go s.serve(func() error { return s.srv.Serve(ln) })
	return nil
}

func (s *Server) serve(fn func() error) {
	if err := fn(); err != nil && err != http.ErrServerClosed {
		s.errs <- err
	}
	close(s.errs)
}

// Errors delivers a serve failure, then closes when serving stops.
func (s *Server) Errors() <-chan error {
	return s.errs
}

// Addr returns the bound address, or the configured one before Start.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.srv.Addr
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
