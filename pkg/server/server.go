package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"
)

const shutdownTimeout = 10 * time.Second

type HTTPServer interface {
	Run() error
	Shutdown() error
}

type Option func(*httpServer)

type httpServer struct {
	srv *http.Server
}

func NewHTTPServer(opts ...Option) HTTPServer {
	s := &httpServer{
		srv: &http.Server{
			Addr:              ":8080",
			ReadHeaderTimeout: 5 * time.Second,
		},
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

func WithAddr(host string, port uint16) Option {
	return func(s *httpServer) {
		s.srv.Addr = net.JoinHostPort(host, strconv.Itoa(int(port)))
	}
}

func WithTimeout(read, write, idle time.Duration) Option {
	return func(s *httpServer) {
		s.srv.ReadTimeout = read
		s.srv.WriteTimeout = write
		s.srv.IdleTimeout = idle
	}
}

func WithHandler(h http.Handler) Option {
	return func(s *httpServer) {
		s.srv.Handler = h
	}
}

// Run blocks until the server stops. A graceful Shutdown is not an error.
func (s *httpServer) Run() error {
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

func (s *httpServer) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	return s.srv.Shutdown(ctx)
}
