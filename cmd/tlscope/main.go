// Command tlscope explores the Telegram TL schema across layers.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/tlscope/internal/adapters/driven/config/file"
	"github.com/custodia-labs/tlscope/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/tlscope/internal/adapters/driving/cli"
	"github.com/custodia-labs/tlscope/internal/core/ports/driven"
	"github.com/custodia-labs/tlscope/internal/core/services"
	"github.com/custodia-labs/tlscope/internal/logger"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// A missing .env is the common case.
	_ = godotenv.Load()

	settingsService := services.NewSettingsService(openConfigStore())

	cli.SetVersion(version)
	cli.SetSettingsService(settingsService)
	cli.SetBootstrap(func(ctx context.Context) (*cli.Services, error) {
		settings, err := settingsService.Get()
		if err != nil {
			return nil, fmt.Errorf("loading settings: %w", err)
		}
		return buildServices(ctx, settings)
	})

	return cli.Execute(ctx)
}

// openConfigStore opens the TOML config file, falling back to an in-memory
// store so that environment overrides still apply.
func openConfigStore() driven.ConfigStore {
	store, err := file.NewConfigStore("")
	if err != nil {
		logger.Warn("config file unavailable, using defaults: %v", err)
		return memory.NewConfigStore(nil)
	}
	return store
}
