package utils

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
)

const (
	DEFAULT_READ_TIMEOUT     = 60 * time.Second
	DEFAULT_WRITE_TIMEOUT    = DEFAULT_READ_TIMEOUT
	DEFAULT_SHUTDOWN_TIMEOUT = 30 * time.Second
)

// ShutdownHook runs after the HTTP server stopped accepting requests.
type ShutdownHook func(ctx context.Context) error

// Server wraps http.Server to drain in-flight requests on SIGINT/SIGTERM.
type Server struct {
	*http.Server

	logger       *zap.Logger
	listener     net.Listener
	hooks        []ShutdownHook
	signalChan   chan os.Signal
	shutdownChan chan struct{}
}

// NewServer creates a Server with timeouts and handler.
func NewServer(addr string, handler http.Handler, logger *zap.Logger) *Server {
	return &Server{
		Server: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadTimeout:       DEFAULT_READ_TIMEOUT,
			ReadHeaderTimeout: 10 * time.Second,
			WriteTimeout:      DEFAULT_WRITE_TIMEOUT,
		},
		logger:       logger,
		signalChan:   make(chan os.Signal, 1),
		shutdownChan: make(chan struct{}),
	}
}

// OnShutdown registers a hook. Hooks run in registration order.
func (srv *Server) OnShutdown(hook ShutdownHook) {
	srv.hooks = append(srv.hooks, hook)
}

// ListenAndServe blocks until the server was shut down by a signal or failed to serve.
func (srv *Server) ListenAndServe() error {
	if err := srv.listen(); err != nil {
		return err
	}
	return srv.serve()
}

func (srv *Server) listen() error {
	addr := srv.Addr
	if addr == "" {
		addr = ":http"
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("net.Listen error: %w", err)
	}
	srv.listener = ln
	return nil
}

func (srv *Server) serve() error {
	signal.Notify(srv.signalChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(srv.signalChan)

	go srv.handleSignals()
	err := srv.Server.Serve(srv.listener)
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	// Wait until Shutdown finished
	<-srv.shutdownChan
	return nil
}

func (srv *Server) handleSignals() {
	sig, ok := <-srv.signalChan
	if !ok {
		return
	}
	srv.logger.Info("received signal, graceful shutting down HTTP server", zap.String("signal", sig.String()))
	srv.shutdown()
}

func (srv *Server) shutdown() {
	defer close(srv.shutdownChan)

	ctx, cancel := context.WithTimeout(context.Background(), DEFAULT_SHUTDOWN_TIMEOUT)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		srv.logger.Error("HTTP server shutdown error", zap.Error(err))
	} else {
		srv.logger.Info("HTTP server shutdown success")
	}

	for _, hook := range srv.hooks {
		if err := hook(ctx); err != nil {
			srv.logger.Error("shutdown hook failed", zap.Error(err))
		}
	}
}

// GraceServer starts an HTTP server that drains on SIGINT/SIGTERM and then runs hooks.
func GraceServer(addr string, handler http.Handler, logger *zap.Logger, hooks ...ShutdownHook) error {
	srv := NewServer(addr, handler, logger)
	for _, h := range hooks {
		srv.OnShutdown(h)
	}
	return srv.ListenAndServe()
}
