// Standalone notifier entrypoint for deployments that scale the worker
// independently of the HTTP servers.
package main

import (
	"os"

	"enverge/internal/interfaces/cli/notifier"
)

func main() {
	if err := notifier.NewCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
