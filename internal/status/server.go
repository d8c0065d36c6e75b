// Package status serves a small HTTP view of an accessory: its current
// reading, the inert write routes and the poller health.
package status

import (
	"context"
	"net/http"
	"time"

	"codeberg.org/mutker/gpufanbridge/internal/errors"
	"codeberg.org/mutker/gpufanbridge/internal/logger"
	"codeberg.org/mutker/gpufanbridge/internal/poller"
	"codeberg.org/mutker/gpufanbridge/internal/state"
	"github.com/gorilla/mux"
)

const (
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 5 * time.Second
)

type Accessory interface {
	State() state.AccessoryState
	Stats() poller.Stats
	SetOn(value bool)
	SetRotationSpeed(value float64)
}

type Server struct {
	cfg       Config
	accessory Accessory
	router    *mux.Router
	logger    logger.Logger
}

func New(cfg Config, acc Accessory, log logger.Logger) (*Server, error) {
	errFactory := errors.New()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if acc == nil {
		return nil, errFactory.WithMessage(errors.ErrInvalidArgument, "Status server needs an accessory")
	}
	if log == nil {
		log = logger.Nop()
	}

	s := &Server{
		cfg:       cfg,
		accessory: acc,
		logger:    log,
	}
	s.router = s.routes()

	return s, nil
}

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()
	r.Use(requestLogger(s.logger))

	r.HandleFunc("/state", s.handleState).Methods(http.MethodGet)
	r.HandleFunc("/state/on", s.handleSetOn).Methods(http.MethodPut)
	r.HandleFunc("/state/rotation-speed", s.handleSetRotationSpeed).Methods(http.MethodPut)
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)

	return r
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// Run listens on the configured address until ctx is done, then shuts
// the server down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errFactory := errors.New()

	srv := &http.Server{
		Addr:              s.cfg.Listen,
		Handler:           s.router,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		s.logger.Info().Str("listen", s.cfg.Listen).Msg("Status server listening")
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		return errFactory.Wrap(ErrServeFailed, err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errFactory.Wrap(errors.ErrShutdownFailed, err)
	}
	if err := <-serveErr; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errFactory.Wrap(ErrServeFailed, err)
	}

	s.logger.Info().Msg("Status server stopped")

	return nil
}
