// Package server initializes and runs the label validation backend: it
// selects and migrates the storage backend, wires the services, and serves
// the HTTP API with graceful shutdown that flushes buffered records.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/gabrielslopes/labelcheck/internal/logging"
	"github.com/gabrielslopes/labelcheck/internal/server/config"
	"github.com/gabrielslopes/labelcheck/internal/server/httpapi"
	"github.com/gabrielslopes/labelcheck/internal/server/records"
	"github.com/gabrielslopes/labelcheck/internal/server/repositories/repomanager"
	"github.com/gabrielslopes/labelcheck/internal/server/scan"
	"github.com/gabrielslopes/labelcheck/internal/server/users"
)

type App struct {
	config        *config.Config
	logger        logging.Logger
	db            *sql.DB
	userService   *users.Service
	recordService *records.Service
	scanService   *scan.Service
}

// OpenDB opens the configured storage backend. The caller owns the handle.
func OpenDB(cfg *config.Config) (*sql.DB, error) {
	switch cfg.StorageBackend {
	case config.BackendSQLite:
		return sql.Open("sqlite", cfg.SQLitePath)
	case config.BackendPostgres:
		return sql.Open("pgx", cfg.DatabaseDSN)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}

func NewApp(cfg *config.Config) (*App, error) {

	slogger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(slogger)

	db, err := OpenDB(cfg)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm, err := repomanager.NewManager(cfg.StorageBackend)
	if err != nil {
		return nil, err
	}

	// a broken or half-migrated schema halts startup
	if err := rm.RunMigrations(context.Background(), db); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	us := users.NewService(rm.Users(db), cfg, logger)
	rs := records.NewService(db, rm, cfg, logger)
	ss := scan.NewService(us, rs, logger)

	return &App{
		config:        cfg,
		logger:        logger,
		db:            db,
		userService:   us,
		recordService: rs,
		scanService:   ss,
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := httpapi.NewServer(app.config, app.logger, app.userService, app.recordService, app.scanService)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)

	app.logger.Info(ctx, "Starting app...",
		"backend", app.config.StorageBackend, "address", app.config.EndpointAddrHTTP)

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	// buffered entries must survive shutdown
	if err := app.recordService.Close(context.Background()); err != nil {
		app.logger.Error(ctx, "final flush failed", "error", err)
	}
	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close failed", "error", err)
	}

	app.logger.Info(ctx, "App stopped")
}
