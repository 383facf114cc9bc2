package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"mentorlink/internal/api"
	"mentorlink/internal/config"
	"mentorlink/internal/relay"
	"mentorlink/internal/room"
	"mentorlink/internal/storage"
	"mentorlink/internal/websocket"
)

// Application wires the components together and owns their lifecycle.
// Initialization order follows the dependency chain:
// storage -> store -> engine -> transport -> HTTP.
type Application struct {
	cfg        *config.Config
	messageLog storage.MessageLog
	store      *room.Store
	engine     *relay.Engine
	httpServer *http.Server
	logger     zerolog.Logger
}

// New builds an application from a validated configuration.
func New(cfg *config.Config, logger zerolog.Logger) (*Application, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	messageLog, err := storage.Open(cfg.Storage.Backend, cfg.Storage.Path)
	if err != nil {
		return nil, fmt.Errorf("open message log: %w", err)
	}

	store := room.NewStore()
	engine := relay.New(store, messageLog, logger)

	wsHandler := websocket.NewHandler(engine, websocket.Config{
		PingInterval:   cfg.WebSocket.PingInterval,
		PongWait:       cfg.WebSocket.PongWait,
		WriteWait:      cfg.WebSocket.WriteWait,
		MaxMessageSize: cfg.WebSocket.MaxMessageSize,
	}, logger)

	apiServer := api.NewServer(engine, cfg.Storage.Backend, wsHandler.HandleWebSocket, logger)

	httpServer := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           apiServer,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return &Application{
		cfg:        cfg,
		messageLog: messageLog,
		store:      store,
		engine:     engine,
		httpServer: httpServer,
		logger:     logger,
	}, nil
}

// Start begins serving. It returns once the listener is up or startup fails.
func (app *Application) Start(ctx context.Context) error {
	app.logger.Info().Str("addr", app.httpServer.Addr).Str("storage", app.cfg.Storage.Backend).Msg("starting")

	errCh := make(chan error, 1)
	go func() {
		if err := app.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case err := <-errCh:
		_ = app.messageLog.Close()
		return err
	case <-time.After(100 * time.Millisecond):
		app.logger.Info().Msg("started")
		return nil
	case <-ctx.Done():
		_ = app.messageLog.Close()
		return ctx.Err()
	}
}

// Stop shuts the application down in reverse dependency order: stop
// accepting connections, then close the message log.
func (app *Application) Stop(ctx context.Context) error {
	app.logger.Info().Msg("shutting down")

	if err := app.httpServer.Shutdown(ctx); err != nil {
		app.logger.Error().Err(err).Msg("http shutdown failed")
	}

	if err := app.messageLog.Close(); err != nil {
		app.logger.Error().Err(err).Msg("message log close failed")
	}

	app.logger.Info().Msg("shutdown complete")
	return nil
}

// Addr returns the configured listen address.
func (app *Application) Addr() string {
	return app.httpServer.Addr
}
