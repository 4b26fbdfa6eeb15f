package github

import (
	"strings"

	"github.com/custodia-labs/tlscope/internal/core/domain"
)

// Defaults for the schema repository layout.
const (
	DefaultBranch = "master"
	DefaultPath   = "schemes"
)

// Config locates the layer files in a GitHub repository.
type Config struct {
	Owner  string
	Repo   string
	Branch string

	// Path is the directory holding <id>.tl files, relative to the root.
	Path string
}

// ConfigFromSettings builds a Config from source settings, applying
// defaults for the branch and path.
func ConfigFromSettings(s domain.SourceSettings) (Config, error) {
	cfg := Config{
		Owner:  strings.TrimSpace(s.Owner),
		Repo:   strings.TrimSpace(s.Repo),
		Branch: strings.TrimSpace(s.Branch),
		Path:   strings.Trim(strings.TrimSpace(s.Path), "/"),
	}
	if cfg.Owner == "" || cfg.Repo == "" {
		return Config{}, ErrConfigInvalid
	}
	if cfg.Branch == "" {
		cfg.Branch = DefaultBranch
	}
	if cfg.Path == "" {
		cfg.Path = DefaultPath
	}
	return cfg, nil
}

// filePath joins the layer directory and a file name.
func (c Config) filePath(name string) string {
	return c.Path + "/" + name
}
