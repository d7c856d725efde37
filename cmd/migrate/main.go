package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/wbpos/backend/internal/infrastructure/config"
	"github.com/wbpos/backend/internal/infrastructure/logger"
	"github.com/wbpos/backend/internal/infrastructure/migration"
)

const defaultMigrationsDir = "migrations"

var errUsage = errors.New("usage")

// options holds the parsed command line
type options struct {
	path     string
	logLevel string
	command  string
	args     []string
}

// dbCommand runs against an open migrator
type dbCommand func(m *migration.Migrator, args []string, log *zap.Logger) error

var dbCommands = map[string]dbCommand{
	"up": func(m *migration.Migrator, _ []string, _ *zap.Logger) error {
		return m.Up()
	},
	"down": func(m *migration.Migrator, _ []string, _ *zap.Logger) error {
		return m.Down()
	},
	"step": func(m *migration.Migrator, args []string, _ *zap.Logger) error {
		n, err := intArg(args, "step <n>")
		if err != nil {
			return err
		}
		return m.Steps(n)
	},
	"goto": func(m *migration.Migrator, args []string, _ *zap.Logger) error {
		if len(args) == 0 {
			return fmt.Errorf("%w: migrate goto <version>", errUsage)
		}
		v, err := strconv.ParseUint(args[0], 10, 32)
		if err != nil {
			return fmt.Errorf("invalid version %q", args[0])
		}
		return m.GoTo(uint(v))
	},
	"version": func(m *migration.Migrator, _ []string, log *zap.Logger) error {
		v, dirty, err := m.Version()
		if err != nil {
			return err
		}
		if v == 0 {
			log.Info("No migrations applied")
			return nil
		}
		log.Info("Current migration version", zap.Uint("version", v), zap.Bool("dirty", dirty))
		return nil
	},
	"force": func(m *migration.Migrator, args []string, log *zap.Logger) error {
		v, err := intArg(args, "force <version>")
		if err != nil {
			return err
		}
		log.Warn("Forcing migration version, the dirty flag is cleared without running SQL", zap.Int("version", v))
		return m.Force(v)
	},
}

func main() {
	opts, err := parseFlags(os.Args[1:])
	if err != nil {
		printUsage(os.Stderr)
		os.Exit(2)
	}

	log, err := logger.New(&logger.Config{
		Level:      opts.logLevel,
		Format:     "console",
		Output:     "stdout",
		TimeFormat: "2006-01-02 15:04:05",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}

	err = run(opts, log)
	_ = log.Sync()
	if errors.Is(err, errUsage) {
		fmt.Fprintln(os.Stderr, err)
		printUsage(os.Stderr)
		os.Exit(2)
	}
	if err != nil {
		log.Error("Migration command failed", zap.String("command", opts.command), zap.Error(err))
		os.Exit(1)
	}
}

func parseFlags(argv []string) (*options, error) {
	fs := flag.NewFlagSet("migrate", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	opts := &options{}
	fs.StringVar(&opts.path, "path", "", "read migrations from this directory instead of the embedded set")
	fs.StringVar(&opts.logLevel, "log-level", "info", "debug, info, warn or error")
	if err := fs.Parse(argv); err != nil {
		return nil, err
	}
	if fs.NArg() == 0 {
		return nil, errUsage
	}
	opts.command, opts.args = fs.Arg(0), fs.Args()[1:]
	return opts, nil
}

func run(opts *options, log *zap.Logger) error {
	// create and list always work on a directory, embedded or not
	dir := opts.path
	if dir == "" {
		dir = defaultMigrationsDir
	}
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("resolve migrations dir: %w", err)
	}

	switch opts.command {
	case "create":
		return create(absDir, opts.args, log)
	case "list":
		return list(absDir, log)
	}

	cmd, ok := dbCommands[opts.command]
	if !ok {
		return fmt.Errorf("%w: unknown command %q", errUsage, opts.command)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.Database.Driver != "postgres" {
		return fmt.Errorf("driver %q: migrations target postgres, sqlite is migrated by the server on startup", cfg.Database.Driver)
	}

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}

	migrateOpts := []migration.Option{migration.WithLogger(log)}
	if opts.path != "" {
		migrateOpts = append(migrateOpts, migration.WithPath(absDir))
	}
	m, err := migration.New(db, migrateOpts...)
	if err != nil {
		return err
	}
	defer m.Close()

	log.Info("Running migration command",
		zap.String("command", opts.command),
		zap.Bool("embedded", opts.path == ""),
		zap.String("host", cfg.Database.Host),
		zap.String("database", cfg.Database.DBName),
	)
	return cmd(m, opts.args, log)
}

func create(dir string, args []string, log *zap.Logger) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: migrate create <name> [description]", errUsage)
	}
	var description string
	if len(args) > 1 {
		description = args[1]
	}
	mf, err := migration.CreateMigration(dir, args[0], description)
	if err != nil {
		return err
	}
	log.Info("Migration created",
		zap.String("version", mf.Version),
		zap.String("up", mf.UpPath),
		zap.String("down", mf.DownPath),
	)
	return nil
}

func list(dir string, log *zap.Logger) error {
	names, err := migration.ListMigrations(dir)
	if err != nil {
		return err
	}
	log.Info("Available migrations", zap.String("dir", dir), zap.Int("count", len(names)))
	for _, n := range names {
		fmt.Println("  -", n)
	}
	return nil
}

func intArg(args []string, usage string) (int, error) {
	if len(args) == 0 {
		return 0, fmt.Errorf("%w: migrate %s", errUsage, usage)
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", args[0])
	}
	return n, nil
}

func printUsage(w io.Writer) {
	fmt.Fprint(w, `Usage: migrate [-path dir] [-log-level level] <command> [args]

Commands:
  up                    apply every pending migration
  down                  roll every migration back
  step <n>              move n migrations, negative goes down
  goto <version>        migrate to an exact version
  version               print the applied version
  force <version>       set the version without running SQL
  create <name> [desc]  write a new up/down pair into -path (default ./migrations)
  list                  list migration files in -path

The database is taken from WBPOS_DATABASE_HOST, _PORT, _USER, _PASSWORD,
_DBNAME and _SSLMODE; WBPOS_DATABASE_DRIVER must be postgres.
`)
}
