package server

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/preston-bernstein/city-dashboard/internal/dashboard"
)

type stubController struct {
	mu         sync.Mutex
	startCalls int
	stopCalls  int
	err        error
	status     dashboard.Status
}

func (c *stubController) Start(ctx context.Context) {
	_ = ctx
	c.mu.Lock()
	c.startCalls++
	c.mu.Unlock()
}

func (c *stubController) Stop(ctx context.Context) error {
	_ = ctx
	c.mu.Lock()
	c.stopCalls++
	c.mu.Unlock()
	return c.err
}

func (c *stubController) Status() dashboard.Status {
	return c.status
}

func (c *stubController) calls() (start, stop int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.startCalls, c.stopCalls
}

type stubHTTPServer struct {
	addr          string
	handler       http.Handler
	shutdownCalls int
	listenErr     error
	shutdownErr   error
}

func (s *stubHTTPServer) ListenAndServe() error { return s.listenErr }

func (s *stubHTTPServer) Shutdown(ctx context.Context) error {
	_ = ctx
	s.shutdownCalls++
	return s.shutdownErr
}

func (s *stubHTTPServer) Addr() string          { return s.addr }
func (s *stubHTTPServer) Handler() http.Handler { return s.handler }

type blockingHTTPServer struct {
	shutdownCalls int
	unblock       chan struct{}
}

func (s *blockingHTTPServer) ListenAndServe() error { return nil }

func (s *blockingHTTPServer) Shutdown(ctx context.Context) error {
	s.shutdownCalls++
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-s.unblock:
		return nil
	}
}

func (s *blockingHTTPServer) Addr() string          { return ":0" }
func (s *blockingHTTPServer) Handler() http.Handler { return http.NewServeMux() }

var errListen = errors.New("listen failure")
