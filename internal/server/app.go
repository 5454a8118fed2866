// Package server assembles the GophNotes backend from its configuration and
// runs the HTTP API (and optionally the gRPC health endpoint) until the
// process is asked to stop.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/gophnotes/internal/logging"
	"github.com/dmitrijs2005/gophnotes/internal/server/ai"
	"github.com/dmitrijs2005/gophnotes/internal/server/auth"
	"github.com/dmitrijs2005/gophnotes/internal/server/config"
	"github.com/dmitrijs2005/gophnotes/internal/server/metrics"
	"github.com/dmitrijs2005/gophnotes/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophnotes/internal/server/services"
	"github.com/dmitrijs2005/gophnotes/internal/server/storage"
	"github.com/dmitrijs2005/gophnotes/internal/tracing"

	gs "github.com/dmitrijs2005/gophnotes/internal/server/grpc"
	hs "github.com/dmitrijs2005/gophnotes/internal/server/http"
)

const serviceName = "gophnotes"

// seams for tests
var (
	logOutput io.Writer = os.Stdout

	openDB = func(dsn string) (*sql.DB, error) {
		return sql.Open("pgx", dsn)
	}

	newRepositoryManager = repomanager.NewPostgresRepositoryManager
)

type App struct {
	config         *config.Config
	logger         logging.Logger
	db             *sql.DB
	httpServer     *hs.Server
	healthServer   *gs.HealthServer
	shutdownTracer func(context.Context) error
}

// NewApp wires every component. On error, anything already opened is closed.
func NewApp(ctx context.Context, c *config.Config) (app *App, err error) {
	logger := logging.NewJSONLogger(logOutput, c.LogLevel)

	shutdownTracer, err := tracing.Init(c.TracingEndpoint, serviceName)
	if err != nil {
		return nil, fmt.Errorf("tracing init error: %w", err)
	}
	defer func() {
		if err != nil {
			_ = shutdownTracer(context.Background())
		}
	}()

	db, err := openDB(c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	defer func() {
		if err != nil {
			_ = db.Close()
		}
	}()

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("db ping error: %w", err)
	}

	rm := newRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	tokens := auth.NewTokenIssuer(c.SecretKey, c.TokenValidityDuration)
	if tokens.Degraded() {
		logger.Warn(ctx, "no JWT secret configured, using the insecure fallback secret")
	}

	m := metrics.New()
	gateway := ai.NewGateway(c, logger.With("module", "ai"), ai.WithMetrics(m))
	if !gateway.Configured() {
		logger.Warn(ctx, "no AI API key configured, AI requests will return mock output")
	}

	deps := hs.Deps{
		Users:      services.NewUserService(db, rm, tokens),
		Notes:      services.NewNoteService(db, rm),
		AI:         services.NewAIService(db, rm, gateway),
		Logger:     logger,
		Metrics:    m,
		CORSOrigin: c.CORSOrigin,
	}

	if c.ExportEnabled() {
		store, err := storage.NewS3Store(ctx, c)
		if err != nil {
			return nil, fmt.Errorf("object storage init error: %w", err)
		}
		deps.Export = services.NewExportService(db, rm, store)
	}

	app = &App{
		config:         c,
		logger:         logger,
		db:             db,
		httpServer:     hs.NewServer(c.HTTPAddr, logger, hs.NewRouter(deps)),
		shutdownTracer: shutdownTracer,
	}
	if c.GRPCHealthAddr != "" {
		app.healthServer = gs.NewHealthServer(c.GRPCHealthAddr, logger, db)
	}
	return app, nil
}

// Run blocks until ctx is cancelled, a termination signal arrives or a
// server fails. Resources are released before it returns.
func (app *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	start := func(name string, run func(context.Context) error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := run(ctx); err != nil {
				app.logger.Error(ctx, name+" failed", "error", err)
				mu.Lock()
				errs = append(errs, fmt.Errorf("%s: %w", name, err))
				mu.Unlock()
				cancelFunc()
			}
		}()
	}

	start("http server", app.httpServer.Run)
	if app.healthServer != nil {
		start("grpc health server", app.healthServer.Run)
	}

	wg.Wait()

	app.logger.Info(context.Background(), "Shutting down...")
	app.close()

	return errors.Join(errs...)
}

func (app *App) close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err)
	}
	if err := app.shutdownTracer(ctx); err != nil {
		app.logger.Error(ctx, "tracer shutdown error", "error", err)
	}
}
