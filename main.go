// Command datashift reversibly obfuscates files with a per-file byte shift.
package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/idelchi/datashift/internal/commands"
	"github.com/idelchi/datashift/internal/config"
)

// Replaced at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)

	cfg := &config.Config{}

	err := commands.Execute(ctx, commands.NewRootCommand(cfg, version), os.Args[1:])

	stop()

	if err != nil {
		os.Exit(1)
	}
}
