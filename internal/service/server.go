package service

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const (
	// request bodies are login forms and single patient records
	readHeaderTimeout = 5 * time.Second
	readTimeout       = 15 * time.Second
	// full-table Excel exports are built before the first byte is written
	writeTimeout = 2 * time.Minute
	idleTimeout  = 90 * time.Second

	// ShutdownGrace bounds how long Stop waits for in-flight requests.
	ShutdownGrace = 10 * time.Second
)

// Server serves the clinician and data-scientist UI and API.
type Server struct {
	httpServer *http.Server
	logger     *zap.Logger
}

func NewServer(addr string, handler http.Handler, logger *zap.Logger) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: readHeaderTimeout,
			ReadTimeout:       readTimeout,
			WriteTimeout:      writeTimeout,
			IdleTimeout:       idleTimeout,
			ErrorLog:          zap.NewStdLog(logger.Named("http")),
		},
		logger: logger,
	}
}

// Start blocks until the listener fails or Stop is called, in which case
// it returns http.ErrServerClosed.
func (s *Server) Start() error {
	s.logger.Info("Stroke warning API listening",
		zap.String("addr", s.httpServer.Addr),
		zap.Duration("read_timeout", s.httpServer.ReadTimeout),
		zap.Duration("write_timeout", s.httpServer.WriteTimeout),
	)
	return s.httpServer.ListenAndServe()
}

// Stop drains in-flight requests until ctx expires.
func (s *Server) Stop(ctx context.Context) error {
	fields := []zap.Field{zap.String("addr", s.httpServer.Addr)}
	if deadline, ok := ctx.Deadline(); ok {
		fields = append(fields, zap.Duration("grace", time.Until(deadline).Round(time.Millisecond)))
	}
	s.logger.Info("Draining stroke warning API", fields...)

	started := time.Now()
	err := s.httpServer.Shutdown(ctx)
	if err != nil {
		s.logger.Warn("Drain interrupted", zap.Duration("elapsed", time.Since(started)), zap.Error(err))
		return err
	}
	s.logger.Info("Stroke warning API drained", zap.Duration("elapsed", time.Since(started)))
	return nil
}
