package admin

import (
	"database/sql"
	"fmt"
	"log"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/spf13/cobra"

	"github.com/finsight-labs/finrag/internal/config"
)

// MigrateCmd creates the migrate command with up/down/version subcommands.
func MigrateCmd() *cobra.Command {
	var migrationsDir string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage database migrations",
	}

	cmd.PersistentFlags().StringVar(&migrationsDir, "dir", "migrations", "Migrations directory")

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(migrationsDir, func(m *migrate.Migrate) error {
				if err := m.Up(); err != nil && err != migrate.ErrNoChange {
					return fmt.Errorf("failed to apply migrations: %w", err)
				}
				return logVersion(m)
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back the most recent migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(migrationsDir, func(m *migrate.Migrate) error {
				if err := m.Steps(-1); err != nil {
					return fmt.Errorf("failed to roll back migration: %w", err)
				}
				return logVersion(m)
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the current migration version",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(migrationsDir, logVersion)
		},
	})

	return cmd
}

func withMigrator(migrationsDir string, fn func(*migrate.Migrate) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance("file://"+migrationsDir, "postgres", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	return fn(m)
}

func logVersion(m *migrate.Migrate) error {
	version, dirty, err := m.Version()
	if err == migrate.ErrNilVersion {
		log.Println("migrations: no migrations applied")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to get migration version: %w", err)
	}
	if dirty {
		return fmt.Errorf("migration version %d is dirty - manual intervention required", version)
	}
	log.Printf("migrations: version %d", version)
	return nil
}
