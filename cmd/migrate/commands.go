package main

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/farmerp/backend/internal/infrastructure/config"
	"github.com/farmerp/backend/internal/infrastructure/logger"
	"github.com/farmerp/backend/internal/infrastructure/migration"
	_ "github.com/lib/pq"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const defaultMigrationsPath = "migrations"

type cliOptions struct {
	migrationsPath string
	logLevel       string
}

func newRootCmd() *cobra.Command {
	opts := &cliOptions{}
	root := &cobra.Command{
		Use:           "migrate",
		Short:         "Farm ERP database migration tool",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.migrationsPath, "path", "", "path to the migrations directory (default ./migrations)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "info", "log level: debug, info, warn, error")

	root.AddCommand(
		newMigratorCmd(opts, "up", "Apply all pending migrations", cobra.NoArgs,
			func(m *migration.Migrator, _ *zap.Logger, _ []string) error { return m.Up() }),
		newMigratorCmd(opts, "down", "Roll back all migrations", cobra.NoArgs,
			func(m *migration.Migrator, _ *zap.Logger, _ []string) error { return m.Down() }),
		newMigratorCmd(opts, "steps <n>", "Apply n migrations (negative rolls back)", cobra.ExactArgs(1),
			func(m *migration.Migrator, _ *zap.Logger, args []string) error {
				n, err := strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("invalid step count %q", args[0])
				}
				return m.Steps(n)
			}),
		newMigratorCmd(opts, "goto <version>", "Migrate to a specific version", cobra.ExactArgs(1),
			func(m *migration.Migrator, _ *zap.Logger, args []string) error {
				version, err := strconv.ParseUint(args[0], 10, 32)
				if err != nil {
					return fmt.Errorf("invalid version %q", args[0])
				}
				return m.GoTo(uint(version))
			}),
		newMigratorCmd(opts, "version", "Show the current migration version", cobra.NoArgs,
			func(m *migration.Migrator, log *zap.Logger, _ []string) error {
				version, dirty, err := m.Version()
				if err != nil {
					return err
				}
				if version == 0 {
					log.Info("No migrations applied")
					return nil
				}
				log.Info("Current migration version", zap.Uint("version", version), zap.Bool("dirty", dirty))
				return nil
			}),
		newMigratorCmd(opts, "force <version>", "Force the recorded version after a failed migration", cobra.ExactArgs(1),
			func(m *migration.Migrator, log *zap.Logger, args []string) error {
				version, err := strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("invalid version %q", args[0])
				}
				log.Warn("Forcing migration version", zap.Int("version", version))
				return m.Force(version)
			}),
		newCreateCmd(opts),
		newListCmd(opts),
	)
	return root
}

// newMigratorCmd builds a command that needs a database connection
func newMigratorCmd(
	opts *cliOptions,
	use, short string,
	args cobra.PositionalArgs,
	run func(m *migration.Migrator, log *zap.Logger, args []string) error,
) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  args,
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := opts.logger()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync(log) }()

			path, err := opts.resolvePath()
			if err != nil {
				return err
			}
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}

			db, err := sql.Open("postgres", cfg.Database.DSN())
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer db.Close()
			if err := db.PingContext(cmd.Context()); err != nil {
				return fmt.Errorf("ping database: %w", err)
			}

			m, err := migration.New(db, path, log)
			if err != nil {
				return err
			}
			defer m.Close()

			log.Info("Running migration command", zap.String("command", cmd.Name()), zap.String("migrations_path", path))
			return run(m, log, args)
		},
	}
}

func newCreateCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "create <name> [description]",
		Short: "Create a new numbered migration pair",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := opts.resolvePath()
			if err != nil {
				return err
			}
			description := ""
			if len(args) > 1 {
				description = args[1]
			}
			mf, err := migration.CreateMigration(path, args[0], description)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %s\n  %s\n  %s\n", mf.Version, mf.UpPath, mf.DownPath)
			return nil
		},
	}
}

func newListCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the migrations on disk",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := opts.resolvePath()
			if err != nil {
				return err
			}
			migrations, err := migration.ListMigrations(path)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(migrations) == 0 {
				fmt.Fprintln(out, "no migrations found")
				return nil
			}
			for _, m := range migrations {
				down := ""
				if !m.HasDown {
					down = " (no down)"
				}
				fmt.Fprintf(out, "%06d %s%s\n", m.Version, m.Name, down)
			}
			return nil
		},
	}
}

func (o *cliOptions) logger() (*zap.Logger, error) {
	return logger.New(&logger.Config{
		Level:      o.logLevel,
		Format:     "console",
		Output:     "stdout",
		TimeFormat: "2006-01-02 15:04:05",
	})
}

// resolvePath finds the migrations directory: the flag, then ./migrations,
// then the one two levels above the executable.
func (o *cliOptions) resolvePath() (string, error) {
	path := o.migrationsPath
	if path == "" {
		path = defaultMigrationsPath
		if _, err := os.Stat(path); err != nil {
			if exe, err := os.Executable(); err == nil {
				candidate := filepath.Join(filepath.Dir(exe), "..", "..", defaultMigrationsPath)
				if _, err := os.Stat(candidate); err == nil {
					path = candidate
				}
			}
		}
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve migrations path: %w", err)
	}
	return abs, nil
}
