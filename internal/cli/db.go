package cli

import (
	"errors"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/mcoot/pcarrot/internal/config"
	"github.com/mcoot/pcarrot/internal/storage/sqlstore"
)

func newInitDBCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init-db",
		Short: "Create the account and news tables",
		Long: `init-db runs the bundled schema for the configured database driver.
Every statement is idempotent, so running it against an existing
database is safe.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := config.Load(cfg.ConfigPath)
			if err != nil {
				return err
			}
			if settings.StorageType != config.StorageSQL {
				return errors.New("init-db requires the sql storage type")
			}

			db, err := sqlstore.Open(settings.Database())
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			if err := sqlstore.InitSchema(cmd.Context(), db, sqlstore.Dialect(settings.DatabaseDriver)); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).PrintMessage("Initialized the database")
			return nil
		},
	}
}

// stderrLogger logs server components used by database commands
func stderrLogger(settings *config.Config) *slog.Logger {
	level := settings.SlogLevel()
	if !cfg.Verbose && level < slog.LevelWarn {
		level = slog.LevelWarn
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
