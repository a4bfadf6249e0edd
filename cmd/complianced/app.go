package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/assurecode/compliance/api"
	"github.com/assurecode/compliance/compliance"
	"github.com/assurecode/compliance/config"
	"github.com/assurecode/compliance/event"
	"github.com/assurecode/compliance/oracle"
	"github.com/assurecode/compliance/queue"
	"github.com/assurecode/compliance/storage"
)

// App wires together the engine, its collaborators, and the HTTP surface.
type App struct {
	cfg    *config.Config
	logger *slog.Logger

	engine    *compliance.Engine
	events    *event.Client
	publisher *queue.Publisher
	store     *storage.Store

	natsConn *nats.Conn
}

// NewApp builds the application from configuration. The NATS-backed pieces
// (queue, store) are optional: without a broker the service still analyzes,
// it just skips persistence and runs the queue in local-only mode.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}

	endpoints := make([]oracle.Endpoint, len(cfg.Oracle.Endpoints))
	for i, ep := range cfg.Oracle.Endpoints {
		endpoints[i] = oracle.Endpoint{
			Name:     ep.Name,
			Provider: ep.Provider,
			URL:      ep.URL,
			Model:    ep.Model,
		}
	}

	opts := []oracle.ClientOption{
		oracle.WithLogger(logger),
		oracle.WithTemperature(cfg.Oracle.Temperature),
	}
	if cfg.Oracle.MaxTokens > 0 {
		opts = append(opts, oracle.WithMaxTokens(cfg.Oracle.MaxTokens))
	}
	if cfg.Oracle.Timeout > 0 {
		opts = append(opts, oracle.WithHTTPClient(&http.Client{Timeout: cfg.Oracle.Timeout}))
	}
	client := oracle.NewClient(endpoints, opts...)

	engine := compliance.NewEngine(compliance.DefaultCatalog(), client,
		compliance.WithEngineLogger(logger))

	events := event.NewClient(cfg.Events.BaseURL, cfg.Events.ClientID, cfg.Events.ClientSecret,
		event.WithLogger(logger))

	return &App{
		cfg:    cfg,
		logger: logger,
		engine: engine,
		events: events,
	}, nil
}

// Engine exposes the compliance engine for one-shot CLI use.
func (a *App) Engine() *compliance.Engine {
	return a.engine
}

// connectNATS attaches the optional broker-backed collaborators.
func (a *App) connectNATS(ctx context.Context) error {
	if a.cfg.Queue.NATSURL == "" {
		a.logger.Info("No NATS URL configured, running without persistence")
		publisher, err := queue.NewPublisher(ctx, nil, a.cfg.Queue.Subject, a.logger)
		if err != nil {
			return err
		}
		a.publisher = publisher
		return nil
	}

	conn, err := nats.Connect(a.cfg.Queue.NATSURL,
		nats.Name("complianced"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second))
	if err != nil {
		return fmt.Errorf("connect NATS: %w", err)
	}
	a.natsConn = conn

	js, err := jetstream.New(conn)
	if err != nil {
		return fmt.Errorf("create JetStream context: %w", err)
	}

	store, err := storage.NewStore(ctx, js)
	if err != nil {
		return fmt.Errorf("initialize storage: %w", err)
	}
	a.store = store

	publisher, err := queue.NewPublisher(ctx, js, a.cfg.Queue.Subject, a.logger)
	if err != nil {
		return fmt.Errorf("initialize queue publisher: %w", err)
	}
	a.publisher = publisher

	return nil
}

// Run starts the HTTP service and blocks until ctx is canceled.
func (a *App) Run(ctx context.Context) error {
	if err := a.connectNATS(ctx); err != nil {
		return err
	}
	defer a.Close()

	mux := http.NewServeMux()
	server := api.NewServer(a.engine, a.events, a.publisher, a.store, a.logger)
	server.RegisterHTTPHandlers("api/compliance", mux)
	api.RegisterMetricsHandler(mux)

	httpServer := &http.Server{
		Addr:              a.cfg.HTTP.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("Compliance service listening", "addr", a.cfg.HTTP.Addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("HTTP server: %w", err)
		}
		return nil
	}
}

// Close releases broker resources.
func (a *App) Close() {
	if a.natsConn != nil {
		a.natsConn.Close()
	}
}
