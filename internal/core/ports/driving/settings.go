package driving

import "github.com/custodia-labs/tlscope/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get resolves settings from defaults, the config file and the environment.
	Get() (*domain.Settings, error)

	// Set validates and persists a single dotted key to the config file.
	Set(key, value string) error

	// Keys lists the recognised config keys.
	Keys() []string

	// Path returns the config file location.
	Path() string
}
