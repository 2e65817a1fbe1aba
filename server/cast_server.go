package server

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"

	"shuttlecast/config"
	"shuttlecast/core/media"

	"go.uber.org/zap"
)

// ErrBind is returned by Start when the listening socket cannot be bound.
var ErrBind = errors.New("bind cast server")

// Logger is the logging capability the cast server needs. *zap.Logger satisfies it.
type Logger interface {
	Debug(msg string, fields ...zap.Field)
	Info(msg string, fields ...zap.Field)
	Warn(msg string, fields ...zap.Field)
	Error(msg string, fields ...zap.Field)
}

// CastServer exposes the registry's audio file and image on a loopback HTTP
// endpoint. Start and Stop are idempotent; a stopped server can be started again.
type CastServer struct {
	cfg      config.CastConfig
	registry *media.Registry
	log      Logger
	handler  http.Handler

	mu         sync.Mutex
	started    bool
	httpServer *http.Server
	listener   net.Listener
	serveDone  chan struct{}
}

// NewCastServer wires a server around registry. A nil log discards output.
func NewCastServer(cfg config.CastConfig, registry *media.Registry, log Logger) *CastServer {
	if log == nil {
		log = zap.NewNop()
	}
	h := newCastHandler(registry, media.NewMimeResolver(cfg.MimeTypes), log)
	return &CastServer{
		cfg:      cfg,
		registry: registry,
		log:      log,
		handler:  withRequestID(withCORS(withAccessLog(log, h.routes()))),
	}
}

// Handler returns the request handler without a listener, for embedding.
func (s *CastServer) Handler() http.Handler {
	return s.handler
}

// Registry returns the resources this server streams.
func (s *CastServer) Registry() *media.Registry {
	return s.registry
}

// SetAudio is shorthand for Registry().SetAudio.
func (s *CastServer) SetAudio(path string) {
	s.registry.SetAudio(path)
}

// SetImage is shorthand for Registry().SetImage.
func (s *CastServer) SetImage(data []byte) {
	s.registry.SetImage(data)
}

// Start binds the configured address and serves in the background. On a bind
// failure the server stays stopped and Start may be retried.
func (s *CastServer) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	addr := s.cfg.Addr()
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		s.log.Error("cast server failed to bind", zap.String("addr", addr), zap.Error(err))
		return fmt.Errorf("%w on %s: %w", ErrBind, addr, err)
	}

	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: s.cfg.ReadHeaderTimeout,
	}
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("cast server stopped serving", zap.Error(err))
		}
	}()

	s.httpServer = srv
	s.listener = ln
	s.serveDone = done
	s.started = true
	s.log.Info("cast server started", zap.String("addr", ln.Addr().String()))
	return nil
}

// Stop closes the listener and every open connection, then releases both
// streams so in-flight transfers fail immediately.
func (s *CastServer) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	if err := s.httpServer.Close(); err != nil {
		s.log.Warn("closing cast server", zap.Error(err))
	}
	<-s.serveDone
	s.httpServer, s.listener, s.serveDone = nil, nil, nil
	s.started = false
	s.registry.CloseStreams()
	s.log.Info("cast server stopped")
}

// Started reports whether the server is currently listening.
func (s *CastServer) Started() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.started
}

// Addr returns the bound address while running, or "" when stopped.
func (s *CastServer) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}
