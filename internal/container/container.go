// Package container builds the application dependency graph.
package container

import (
	"context"
	"fmt"
	"net/http"

	"goeda/adapters/excel"
	"goeda/adapters/memory"
	"goeda/adapters/postgres"
	"goeda/app"
	"goeda/internal/analysis"
	"goeda/internal/api"
	"goeda/internal/config"
	"goeda/internal/errors"
	"goeda/internal/migration"
	"goeda/internal/store"
	"goeda/ports"
	"goeda/ui"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config
	Logger *zap.Logger

	// Infrastructure; DB is nil when running in memory
	DB *sqlx.DB

	DatasetRepo ports.DatasetRepository
	Reader      *excel.DataReader
	Analyzer    *analysis.Analyzer

	ProfileService *app.ProfileService
	Workspaces     *store.Registry

	API *api.Server
	UI  *ui.App
}

// New creates a container. Nothing is connected until Init is called.
func New(cfg *config.Config, logger *zap.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Container{Config: cfg, Logger: logger}, nil
}

// Init connects storage and builds every component
func (c *Container) Init(ctx context.Context) error {
	if c.Config.UsesDatabase() {
		db, err := connectDatabase(ctx, c.Config.Database)
		if err != nil {
			return err
		}
		if err := c.InitWithDatabase(ctx, db); err != nil {
			db.Close()
			return err
		}
	} else {
		c.Logger.Warn("no database configured, datasets are kept in memory")
		c.DatasetRepo = memory.NewDatasetRepository()
	}

	return c.initServices()
}

// InitWithDatabase uses db for persistence, running migrations when configured
func (c *Container) InitWithDatabase(ctx context.Context, db *sqlx.DB) error {
	if db == nil {
		return fmt.Errorf("database connection cannot be nil")
	}
	c.DB = db

	if c.Config.Database.RunMigrations {
		runner := migration.NewRunner()
		if err := runner.Run(ctx, db); err != nil {
			return errors.Wrap(err, "database migration failed")
		}
		c.Logger.Info("migrations applied", zap.String("version", runner.Version()))
	}

	c.DatasetRepo = postgres.NewDatasetRepository(db)
	return nil
}

func (c *Container) initServices() error {
	readerConfig := excel.DefaultReaderConfig()
	readerConfig.MaxRows = c.Config.Analysis.SampleRows
	c.Reader = excel.NewDataReader(readerConfig, c.Logger)
	c.Analyzer = analysis.NewAnalyzer(analysis.WithLogger(c.Logger))

	c.ProfileService = app.NewProfileService(c.DatasetRepo, c.Reader, c.Analyzer, c.Logger)
	c.Workspaces = store.NewRegistry(c.Analyzer,
		store.WithHistoryLimit(c.Config.Analysis.HistoryLimit),
		store.WithLogger(c.Logger))

	c.API = api.NewServer(c.ProfileService, c.Workspaces,
		api.WithMaxUploadBytes(c.Config.MaxUploadBytes()),
		api.WithLogger(c.Logger))

	browser, err := ui.NewApp(c.ProfileService, ui.Config{RequestLogging: c.Config.Logging.Level == "debug"}, c.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize report browser: %w", err)
	}
	c.UI = browser
	c.API.Mount("/ui", c.UI)

	c.Logger.Info("container initialized", zap.Bool("database", c.DB != nil))
	return nil
}

// Handler returns the HTTP handler serving the API and the report browser
func (c *Container) Handler() http.Handler {
	return c.API.Handler()
}

// Shutdown releases external resources
func (c *Container) Shutdown(ctx context.Context) error {
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}

func connectDatabase(ctx context.Context, cfg config.DatabaseConfig) (*sqlx.DB, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", cfg.URL)
	if err != nil {
		return nil, errors.WithCode(errors.CodeDatabaseError, errors.Wrap(err, "failed to connect to database"))
	}
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
		db.SetMaxIdleConns(cfg.MaxOpenConns)
	}
	return db, nil
}
