package internal

import (
	"log/slog"

	"github.com/starford/vaultboard/internal/backlog"
	"github.com/starford/vaultboard/internal/storage"
	"github.com/starford/vaultboard/internal/todo"
)

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config *Config

	logger  *slog.Logger
	store   *storage.FS
	tickets *backlog.Repository
	todos   *todo.Repository
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithVaultPath overrides the vault location from the configuration.
func WithVaultPath(path string) Option {
	return func(a *application) {
		if path != "" && a.config != nil {
			a.config.Vault.Path = path
		}
	}
}
