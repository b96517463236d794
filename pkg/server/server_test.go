package server

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewHTTPServer_Options(t *testing.T) {
	t.Parallel()

	h := http.NewServeMux()

	s := NewHTTPServer(
		WithAddr("127.0.0.1", 9090),
		WithTimeout(time.Second, 2*time.Second, 3*time.Second),
		WithHandler(h),
	).(*httpServer)

	assert.Equal(t, "127.0.0.1:9090", s.srv.Addr)
	assert.Equal(t, time.Second, s.srv.ReadTimeout)
	assert.Equal(t, 2*time.Second, s.srv.WriteTimeout)
	assert.Equal(t, 3*time.Second, s.srv.IdleTimeout)
	assert.Equal(t, h, s.srv.Handler)
}

func TestHTTPServer_ShutdownStopsRun(t *testing.T) {
	t.Parallel()

	s := NewHTTPServer(WithAddr("127.0.0.1", 0), WithHandler(http.NewServeMux()))

	done := make(chan error, 1)
	go func() { done <- s.Run() }()

	// give ListenAndServe a moment to bind
	time.Sleep(50 * time.Millisecond)

	assert.NoError(t, s.Shutdown())

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
