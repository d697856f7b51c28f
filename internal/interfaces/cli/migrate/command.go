// Package migrate implements the "migrate" command over the embedded
// goose migrations.
package migrate

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"enverge/internal/infrastructure/config"
	"enverge/internal/infrastructure/database"
	"enverge/internal/infrastructure/migration"
	"enverge/internal/shared/logger"
)

var env string

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage database migrations",
	}

	cmd.PersistentFlags().StringVarP(&env, "env", "e", "development", "Environment (development, test, production)")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			RunE:  runUp,
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back the most recent migration",
			RunE:  runDown,
		},
		&cobra.Command{
			Use:   "status",
			Short: "Print the current migration version",
			RunE:  runStatus,
		},
	)

	return cmd
}

func initEnv() error {
	if envVar := os.Getenv("ENV"); envVar != "" {
		env = envVar
	}

	cfg, err := config.Load(env)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := logger.Init(&cfg.Logger); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	if err := database.Init(&cfg.Database); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	return nil
}

func runUp(cmd *cobra.Command, args []string) error {
	if err := initEnv(); err != nil {
		return err
	}
	defer database.Close()

	if err := migration.Up(database.Get()); err != nil {
		return err
	}
	fmt.Println("migrations applied")
	return nil
}

func runDown(cmd *cobra.Command, args []string) error {
	if err := initEnv(); err != nil {
		return err
	}
	defer database.Close()

	if err := migration.Down(database.Get()); err != nil {
		return err
	}
	fmt.Println("migration rolled back")
	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	if err := initEnv(); err != nil {
		return err
	}
	defer database.Close()

	version, err := migration.Version(database.Get())
	if err != nil {
		return err
	}
	fmt.Printf("current migration version: %d\n", version)
	return nil
}
