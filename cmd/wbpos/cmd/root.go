// Package cmd holds the wbpos operator commands. They run the tracking
// services in-process against the configured stores.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	catalogapp "github.com/wbpos/backend/internal/application/catalog"
	trackingapp "github.com/wbpos/backend/internal/application/tracking"
	"github.com/wbpos/backend/internal/domain/catalog"
	"github.com/wbpos/backend/internal/domain/tracking"
	"github.com/wbpos/backend/internal/infrastructure/blobstore"
	"github.com/wbpos/backend/internal/infrastructure/cache"
	"github.com/wbpos/backend/internal/infrastructure/config"
	"github.com/wbpos/backend/internal/infrastructure/ecommerce"
	"github.com/wbpos/backend/internal/infrastructure/logger"
	"github.com/wbpos/backend/internal/infrastructure/persistence"
	"github.com/wbpos/backend/internal/infrastructure/ranking"
)

// Store selections for --store
const (
	StoreSQLite = "sqlite"
	StoreConfig = "config"
)

// CatalogService lists the seller's products
type CatalogService interface {
	FetchCatalog(ctx context.Context, token, search string) ([]catalog.Product, error)
}

// TrackingService is the part of the tracking service the commands drive
type TrackingService interface {
	LoadConfig(ctx context.Context) (*tracking.Config, error)
	SaveConfig(ctx context.Context, cmd trackingapp.SaveConfigCommand) (*tracking.Config, error)
	RunCheck(ctx context.Context, cmd trackingapp.RunCheckCommand) (*trackingapp.CheckResult, error)
	Table(ctx context.Context) (*trackingapp.Table, error)
}

// App is what a command runs against
type App struct {
	Catalog  CatalogService
	Tracking TrackingService
	Out      io.Writer
	close    func() error
}

// Close releases the stores opened for the app
func (a *App) Close() error {
	if a.close == nil {
		return nil
	}
	return a.close()
}

// Flags are the persistent flags of the root command
type Flags struct {
	ConfigPath string
	Store      string
	SQLitePath string
	LogLevel   string
}

// Builder wires an App from configuration
type Builder func(ctx context.Context, cfg *config.Config, log *zap.Logger) (*App, error)

type runner struct {
	flags *Flags
	build Builder
}

// app loads configuration and builds the App for one command
func (r *runner) app(cmd *cobra.Command) (*App, error) {
	cfg, err := loadConfig(r.flags)
	if err != nil {
		return nil, err
	}
	log, err := logger.New(&logger.Config{
		Level:  r.flags.LogLevel,
		Format: "console",
		Output: "stderr",
	})
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	app, err := r.build(cmd.Context(), cfg, log)
	if err != nil {
		return nil, err
	}
	if app.Out == nil {
		app.Out = cmd.OutOrStdout()
	}
	return app, nil
}

// run wraps fn as a RunE: it builds the App, runs fn against it and closes
// the app afterwards, whether fn failed or not
func (r *runner) run(fn func(cmd *cobra.Command, args []string, app *App) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) (err error) {
		app, err := r.app(cmd)
		if err != nil {
			return err
		}
		defer func() {
			err = errors.Join(err, app.Close())
		}()
		return fn(cmd, args, app)
	}
}

// NewRootCmd builds the command tree. build is called once per command
// run; nil uses the real stores and upstreams.
func NewRootCmd(build Builder) *cobra.Command {
	if build == nil {
		build = BuildApp
	}
	flags := &Flags{}

	r := &runner{flags: flags, build: build}

	root := &cobra.Command{
		Use:           "wbpos",
		Short:         "wbpos tracks Wildberries search positions of one product.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.CompletionOptions.DisableDefaultCmd = true

	pf := root.PersistentFlags()
	pf.StringVar(&flags.ConfigPath, "config", "", "path to config.toml (default: search ., ./backend, /app)")
	pf.StringVar(&flags.Store, "store", StoreSQLite, "config store: sqlite (local file) or config (store.backend from configuration)")
	pf.StringVar(&flags.SQLitePath, "db", "", "sqlite file used with --store sqlite (default: database.sqlite_path)")
	pf.StringVar(&flags.LogLevel, "log-level", "warn", "log level: debug, info, warn, error")

	root.AddCommand(newCatalogCmd(r), newConfigCmd(r), newCheckCmd(r), newTableCmd(r))
	return root
}

// Execute runs the CLI and exits non-zero on error
func Execute() {
	if err := NewRootCmd(nil).ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func loadConfig(flags *Flags) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if flags.ConfigPath != "" {
		cfg, err = config.LoadFrom(flags.ConfigPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	switch flags.Store {
	case StoreSQLite:
		cfg.Store.Backend = config.StoreBackendDatabase
		cfg.Database.Driver = "sqlite"
		if flags.SQLitePath != "" {
			cfg.Database.SQLitePath = flags.SQLitePath
		}
	case StoreConfig:
	default:
		return nil, fmt.Errorf("--store must be %s or %s, got %q", StoreSQLite, StoreConfig, flags.Store)
	}
	return cfg, nil
}

// BuildApp opens the config store and wires the services the same way the
// HTTP server does
func BuildApp(ctx context.Context, cfg *config.Config, log *zap.Logger) (*App, error) {
	store, err := blobstore.NewFactory(cfg, blobstore.WithLogger(log)).Open(ctx)
	if err != nil {
		return nil, err
	}

	snapshots, closeCache, err := cache.NewCatalogCacheFactory(cfg.Catalog, cfg.Redis,
		cache.WithLogger(log), cache.WithInMemoryFallback(true)).CreateCache()
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	closeAll := func() error {
		cacheErr := closeCache()
		if err := store.Close(); err != nil {
			return err
		}
		return cacheErr
	}

	wb, err := ecommerce.NewWildberriesAdapter(&ecommerce.WildberriesConfig{
		APIBaseURL:     cfg.Wildberries.APIBaseURL,
		TimeoutSeconds: cfg.Wildberries.TimeoutSeconds,
		PageLimit:      cfg.Wildberries.PageLimit,
	})
	if err != nil {
		_ = closeAll()
		return nil, err
	}
	sampler, err := ranking.NewSampler(cfg.Ranking, log)
	if err != nil {
		_ = closeAll()
		return nil, err
	}

	catalogService := catalogapp.NewService(wb,
		catalogapp.WithCache(snapshots, cfg.Catalog.CacheTTL),
		catalogapp.WithMaxPages(cfg.Catalog.MaxPages),
		catalogapp.WithLogger(log),
	)
	trackingService := trackingapp.NewService(
		persistence.NewBlobConfigRepository(store, blobstore.StorageKey(cfg)),
		sampler,
		trackingapp.WithLabeler(catalogService),
		trackingapp.WithWindowDays(cfg.Ranking.WindowDays),
		trackingapp.WithTopN(cfg.Ranking.TopN),
		trackingapp.WithLogger(log),
	)

	return &App{Catalog: catalogService, Tracking: trackingService, close: closeAll}, nil
}
