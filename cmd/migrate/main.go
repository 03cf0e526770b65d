// Command migrate applies, reverts or lists the embedded goose migrations.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/noah-isme/timetable-api/migrations"
	"github.com/noah-isme/timetable-api/pkg/config"
	"github.com/noah-isme/timetable-api/pkg/database"
	"github.com/noah-isme/timetable-api/pkg/logger"
)

func main() {
	root := &cobra.Command{
		Use:           "migrate",
		Short:         "Manage the timetable database schema",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply pending migrations",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withDB(cmd.Context(), func(ctx context.Context, m *database.Migrator, log *zap.SugaredLogger) error {
					ran, err := m.Up(ctx)
					if err != nil {
						return err
					}
					log.Infow("migrations applied", "versions", ran)
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "Revert the latest migration",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withDB(cmd.Context(), func(ctx context.Context, m *database.Migrator, log *zap.SugaredLogger) error {
					version, err := m.Down(ctx)
					if err != nil {
						return err
					}
					if version == 0 {
						log.Infow("no migration to revert")
						return nil
					}
					log.Infow("migration reverted", "version", version)
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "status",
			Short: "List migrations and whether they are applied",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withDB(cmd.Context(), func(ctx context.Context, m *database.Migrator, log *zap.SugaredLogger) error {
					states, err := m.Status(ctx)
					if err != nil {
						return err
					}
					for _, state := range states {
						log.Infow("migration", "version", state.Version, "file", state.Path, "applied", state.Applied)
					}
					return nil
				})
			},
		},
	)

	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func withDB(ctx context.Context, fn func(context.Context, *database.Migrator, *zap.SugaredLogger) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logr, err := logger.New(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer db.Close()

	migrator, err := database.NewMigrator(db, migrations.FS)
	if err != nil {
		return err
	}
	return fn(ctx, migrator, logr.Sugar())
}
