package app

import (
	"context"
	"errors"
	"fmt"
	stdhttp "net/http"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/vovakirdan/roomsignal/internal/audit"
	"github.com/vovakirdan/roomsignal/internal/config"
	"github.com/vovakirdan/roomsignal/internal/core"
	"github.com/vovakirdan/roomsignal/internal/log"
	"github.com/vovakirdan/roomsignal/internal/store"
	"github.com/vovakirdan/roomsignal/internal/store/sqlite"
	transporthttp "github.com/vovakirdan/roomsignal/internal/transport/http"
)

// App wires together core and transport layers.
type App struct {
	server          *transporthttp.Server
	shutdownTimeout time.Duration
	hub             *core.Hub
	store           store.PresenceLog
	recorder        *audit.Recorder
	log             *zerolog.Logger
}

// New constructs the application with provided configuration.
func New(cfg *config.Config, logger *zerolog.Logger) (*App, error) {
	a := &App{
		shutdownTimeout: cfg.ShutdownTimeout,
		log:             logger,
	}

	opts := []core.Option{core.WithDefaultDisplayName(cfg.DefaultDisplayName)}

	if cfg.AuditDatabasePath != "" {
		st, err := sqlite.New(cfg.AuditDatabasePath)
		if err != nil {
			return nil, fmt.Errorf("init presence store: %w", err)
		}
		logger.Info().Str("db_path", cfg.AuditDatabasePath).Msg("presence audit log enabled")

		a.store = st
		a.recorder = audit.NewRecorder(st, cfg.AuditBufferSize, log.Component(logger, "audit"))
		opts = append(opts, core.WithObserver(a.recorder))
	}

	a.hub = core.NewHub(log.Component(logger, "hub"), opts...)
	a.server = transporthttp.NewServer(a.hub, a.store, cfg, log.Component(logger, "http"))
	return a, nil
}

// Handler exposes the HTTP handler, mainly for tests.
func (a *App) Handler() stdhttp.Handler {
	return a.server.Handler
}

// Run starts the HTTP server and the audit worker and blocks until context
// cancellation or a fatal error. On shutdown live WebSocket sessions are
// closed and their departures recorded before the audit worker stops.
func (a *App) Run(ctx context.Context) error {
	defer a.cleanup()

	g, gctx := errgroup.WithContext(ctx)

	// The recorder outlives the server so departures of sessions closed
	// during shutdown still reach the audit log.
	recCtx, stopRecorder := context.WithCancel(context.Background())
	defer stopRecorder()

	g.Go(func() error {
		a.log.Info().Str("addr", a.server.Addr).Msg("http server listening")
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
		defer cancel()

		defer stopRecorder()

		a.log.Info().Msg("shutting down http server")
		return a.server.Shutdown(shutdownCtx)
	})

	if a.recorder != nil {
		g.Go(func() error {
			return a.recorder.Run(recCtx)
		})
	}

	return g.Wait()
}

// cleanup closes database and other resources.
func (a *App) cleanup() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.log.Warn().Err(err).Msg("failed to close store")
		} else {
			a.log.Info().Msg("store closed")
		}
	}
}
