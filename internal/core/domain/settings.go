package domain

import "time"

const unknownDescription = "Unknown"

// StoreDriver selects the relational store holding raw layer text.
type StoreDriver string

// Available store drivers.
const (
	// StoreDriverSQLite is the embedded pure-Go SQLite store (default).
	StoreDriverSQLite StoreDriver = "sqlite"

	// StoreDriverPostgres is an external PostgreSQL database.
	StoreDriverPostgres StoreDriver = "postgres"

	// StoreDriverMemory keeps layers in process memory only.
	StoreDriverMemory StoreDriver = "memory"
)

// IsValid returns true if the driver is recognised.
func (d StoreDriver) IsValid() bool {
	switch d {
	case StoreDriverSQLite, StoreDriverPostgres, StoreDriverMemory:
		return true
	default:
		return false
	}
}

// Description returns a human-readable description of the driver.
func (d StoreDriver) Description() string {
	switch d {
	case StoreDriverSQLite:
		return "SQLite (embedded)"
	case StoreDriverPostgres:
		return "PostgreSQL"
	case StoreDriverMemory:
		return "In-memory (not persisted)"
	default:
		return unknownDescription
	}
}

// SourceKind selects where new layer text is fetched from.
type SourceKind string

// Available layer sources.
const (
	// SourceKindGitHub reads <path>/<id>.tl files from a GitHub repository.
	SourceKindGitHub SourceKind = "github"

	// SourceKindDir reads <id>.tl files from a local directory.
	SourceKindDir SourceKind = "dir"

	// SourceKindNone disables ingestion.
	SourceKindNone SourceKind = "none"
)

// IsValid returns true if the source kind is recognised.
func (k SourceKind) IsValid() bool {
	switch k {
	case SourceKindGitHub, SourceKindDir, SourceKindNone:
		return true
	default:
		return false
	}
}

// StoreSettings configures the raw layer store.
type StoreSettings struct {
	Driver StoreDriver

	// DSN is the PostgreSQL connection string; unused for SQLite.
	DSN string

	// DataDir holds the SQLite database. Empty means ~/.tlscope/data.
	DataDir string
}

// SourceSettings configures the ingestion source.
type SourceSettings struct {
	Kind SourceKind

	// GitHub repository coordinates.
	Owner  string
	Repo   string
	Branch string
	Path   string
	Token  string

	// Dir is the local directory for SourceKindDir.
	Dir string
}

// IngestSettings configures periodic ingestion.
type IngestSettings struct {
	Enabled  bool
	Interval time.Duration
}

// SearchSettings configures the search index.
type SearchSettings struct {
	// ReplaceOnStart repopulates the index from the catalogue at startup.
	ReplaceOnStart bool
}

// QuerySettings configures default and maximum result sizes.
type QuerySettings struct {
	DefaultLimit int
	MaxLimit     int
}

// Settings holds all user-configurable settings.
type Settings struct {
	Store  StoreSettings
	Source SourceSettings
	Ingest IngestSettings
	Search SearchSettings
	Query  QuerySettings

	// MCPAddr is the HTTP listen address for the MCP server. Empty means stdio.
	MCPAddr string
}

// DefaultSettings returns the built-in defaults.
func DefaultSettings() Settings {
	return Settings{
		Store: StoreSettings{
			Driver: StoreDriverSQLite,
		},
		Source: SourceSettings{
			Kind:   SourceKindGitHub,
			Owner:  "vrumger",
			Repo:   "tl",
			Branch: "master",
			Path:   "schemes",
		},
		Ingest: IngestSettings{
			Enabled:  true,
			Interval: 1 * time.Hour,
		},
		Search: SearchSettings{
			ReplaceOnStart: true,
		},
		Query: QuerySettings{
			DefaultLimit: DefaultQueryLimit,
			MaxLimit:     MaxQueryLimit,
		},
	}
}

// SchedulerConfig derives the scheduler configuration from ingest settings.
func (s Settings) SchedulerConfig() SchedulerConfig {
	enabled := s.Ingest.Enabled && s.Source.Kind != SourceKindNone
	return SchedulerConfig{
		Enabled: enabled,
		TaskConfigs: map[string]TaskConfig{
			TaskIDLayerIngest: {
				Enabled:  enabled,
				Interval: s.Ingest.Interval,
			},
		},
	}
}
