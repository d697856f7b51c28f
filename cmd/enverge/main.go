package main

import (
	"os"

	"github.com/spf13/cobra"

	"enverge/internal/interfaces/cli/migrate"
	"enverge/internal/interfaces/cli/notifier"
	"enverge/internal/interfaces/cli/server"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "enverge",
		Short: "Enverge - IEEE 2030.5 / CSIP-AUS utility server",
	}

	rootCmd.AddCommand(
		server.NewCommand(),
		notifier.NewCommand(),
		migrate.NewCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
