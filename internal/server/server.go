package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/yigit/offerdesk/internal/app/services"
	"github.com/yigit/offerdesk/internal/bootstrap"
	"github.com/yigit/offerdesk/internal/config"
	"github.com/yigit/offerdesk/internal/middleware"
	"github.com/yigit/offerdesk/internal/pkg/metrics"
)

const shutdownTimeout = 10 * time.Second

// Server holds the state for one HTTP listener and its background workers.
type Server struct {
	name    string
	http    *http.Server
	logger  zerolog.Logger
	workers []func(ctx context.Context)
	closers []func()
}

// New creates a server for handler on addr
func New(name, addr string, handler http.Handler, readTimeout, writeTimeout time.Duration, logger zerolog.Logger) *Server {
	return &Server{
		name: name,
		http: &http.Server{
			Addr:         addr,
			Handler:      handler,
			ReadTimeout:  readTimeout,
			WriteTimeout: writeTimeout,
			IdleTimeout:  120 * time.Second,
		},
		logger: logger.With().Str("server", name).Logger(),
	}
}

// Go registers a worker that runs for the lifetime of Run
func (s *Server) Go(worker func(ctx context.Context)) {
	s.workers = append(s.workers, worker)
}

// OnClose registers cleanup run after the listener has stopped
func (s *Server) OnClose(fn func()) {
	s.closers = append(s.closers, fn)
}

// NewAPIServer creates the offer letter API server and its dependencies.
func NewAPIServer(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (*Server, error) {
	if err := cfg.ValidateForAPI(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	database, err := bootstrap.SetupDatabase(ctx, cfg, lgr)
	if err != nil {
		return nil, fmt.Errorf("failed to setup database: %w", err)
	}

	m := metrics.New()
	deps, err := bootstrap.BuildDependencies(ctx, cfg, database, m, lgr)
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to setup dependencies: %w", err)
	}

	router := bootstrap.SetupRouter(cfg, deps, lgr)

	s := New("api", ":"+cfg.Server.Port, middleware.CORS(cfg.Server.AllowedOrigins)(router),
		config.MustDuration(cfg.Server.ReadTimeout),
		config.MustDuration(cfg.Server.WriteTimeout),
		lgr)
	s.Go(deps.Hub.Run)
	s.Go(deps.VerifyLimiter.RunCleanup)
	s.Go(startupReconcile(deps.Reconciler, cfg.Document.ReconcileBatch, lgr))
	s.OnClose(func() {
		lgr.Info().Msg("Closing database connection pool...")
		database.Close()
	})
	return s, nil
}

// startupReconcile runs one reconciliation pass when the API comes up
func startupReconcile(r *services.Reconciler, batch int, lgr zerolog.Logger) func(ctx context.Context) {
	return func(ctx context.Context) {
		res, err := r.Run(ctx, batch)
		if err != nil {
			if ctx.Err() == nil {
				lgr.Error().Err(err).Msg("Startup reconciliation failed")
			}
			return
		}
		lgr.Info().
			Int("scanned", res.Scanned).
			Int("promoted", res.Promoted).
			Int("failed", res.Failed).
			Msg("Startup reconciliation finished")
	}
}

// NewRelayServer creates the email relay server.
func NewRelayServer(cfg *config.Config, lgr zerolog.Logger) (*Server, error) {
	if err := cfg.ValidateForRelay(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	handler, err := bootstrap.BuildRelay(cfg, metrics.New(), lgr)
	if err != nil {
		return nil, err
	}

	// Fetching and forwarding a PDF can outlast the API's write timeout
	writeTimeout := config.MustDuration(cfg.Relay.Timeout) + config.MustDuration(cfg.Relay.FetchTimeout)
	return New("relay", ":"+cfg.Relay.Port, handler,
		config.MustDuration(cfg.Server.ReadTimeout), writeTimeout, lgr), nil
}

// Run starts the HTTP server and blocks until ctx is cancelled or the
// listener fails, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.http.Addr)
	if err != nil {
		return fmt.Errorf("error starting %s server: %w", s.name, err)
	}
	return s.serve(ctx, ln)
}

func (s *Server) serve(ctx context.Context, ln net.Listener) error {
	workerCtx, stopWorkers := context.WithCancel(ctx)
	var wg sync.WaitGroup
	for _, worker := range s.workers {
		wg.Add(1)
		go func(run func(context.Context)) {
			defer wg.Done()
			run(workerCtx)
		}(worker)
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", ln.Addr().String()).Msg("HTTP server listening")
		serverErrors <- s.http.Serve(ln)
	}()

	var runErr error
	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			runErr = fmt.Errorf("error running %s server: %w", s.name, err)
		}
	case <-ctx.Done():
		s.logger.Info().Msg("Shutdown requested")
	}

	shutdownErr := s.Shutdown(context.WithoutCancel(ctx))
	stopWorkers()
	wg.Wait()
	for _, fn := range s.closers {
		fn()
	}

	s.logger.Info().Msg("Server shutdown process complete.")
	return errors.Join(runErr, shutdownErr)
}

// Shutdown gracefully stops the listener, waiting up to ten seconds for
// in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	s.logger.Info().Msg("Shutting down HTTP server...")
	if err := s.http.Shutdown(ctx); err != nil {
		s.logger.Error().Err(err).Msg("HTTP server shutdown error")
		return fmt.Errorf("%s server shutdown: %w", s.name, err)
	}
	s.logger.Info().Msg("HTTP server gracefully stopped.")
	return nil
}
