package services

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/tlscope/internal/core/domain"
	"github.com/custodia-labs/tlscope/internal/core/ports/driven"
	"github.com/custodia-labs/tlscope/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyStoreDriver    = "store.driver"
	keyStoreDSN       = "store.dsn"
	keyDataDir        = "data_dir"
	keySourceKind     = "source.kind"
	keySourceOwner    = "source.owner"
	keySourceRepo     = "source.repo"
	keySourceBranch   = "source.branch"
	keySourcePath     = "source.path"
	keySourceToken    = "source.token"
	keySourceDir      = "source.dir"
	keyIngestEnabled  = "ingest.enabled"
	keyIngestInterval = "ingest.interval"
	keySearchReplace  = "search.replace_on_start"
	keyQueryDefault   = "query.default_limit"
	keyQueryMax       = "query.max_limit"
	keyMCPAddr        = "mcp.addr"
)

// EnvPrefix prefixes environment overrides: store.driver is read from
// TLSCOPE_STORE_DRIVER.
const EnvPrefix = "TLSCOPE_"

// githubTokenEnv is honoured when no token is configured.
//
//nolint:gosec // G101: environment variable name.
const githubTokenEnv = "GITHUB_TOKEN"

type valueKind int

const (
	kindString valueKind = iota
	kindInt
	kindBool
	kindDuration
)

type settingKey struct {
	key  string
	kind valueKind
}

// settingKeys lists every recognised key in display order.
var settingKeys = []settingKey{
	{keyStoreDriver, kindString},
	{keyStoreDSN, kindString},
	{keyDataDir, kindString},
	{keySourceKind, kindString},
	{keySourceOwner, kindString},
	{keySourceRepo, kindString},
	{keySourceBranch, kindString},
	{keySourcePath, kindString},
	{keySourceToken, kindString},
	{keySourceDir, kindString},
	{keyIngestEnabled, kindBool},
	{keyIngestInterval, kindDuration},
	{keySearchReplace, kindBool},
	{keyQueryDefault, kindInt},
	{keyQueryMax, kindInt},
	{keyMCPAddr, kindString},
}

// SettingsService resolves settings from defaults, then the config store,
// then TLSCOPE_* environment variables.
type SettingsService struct {
	configStore driven.ConfigStore
	lookupEnv   func(string) (string, bool)
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		lookupEnv:   os.LookupEnv,
	}
}

// EnvName returns the environment variable that overrides key.
func EnvName(key string) string {
	return EnvPrefix + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.Settings, error) {
	d := domain.DefaultSettings()
	r := resolver{s: s}

	settings := &domain.Settings{
		Store: domain.StoreSettings{
			Driver:  domain.StoreDriver(r.str(keyStoreDriver, string(d.Store.Driver))),
			DSN:     r.str(keyStoreDSN, d.Store.DSN),
			DataDir: r.str(keyDataDir, d.Store.DataDir),
		},
		Source: domain.SourceSettings{
			Kind:   domain.SourceKind(r.str(keySourceKind, string(d.Source.Kind))),
			Owner:  r.str(keySourceOwner, d.Source.Owner),
			Repo:   r.str(keySourceRepo, d.Source.Repo),
			Branch: r.str(keySourceBranch, d.Source.Branch),
			Path:   r.str(keySourcePath, d.Source.Path),
			Token:  r.str(keySourceToken, d.Source.Token),
			Dir:    r.str(keySourceDir, d.Source.Dir),
		},
		Ingest: domain.IngestSettings{
			Enabled:  r.boolean(keyIngestEnabled, d.Ingest.Enabled),
			Interval: r.duration(keyIngestInterval, d.Ingest.Interval),
		},
		Search: domain.SearchSettings{
			ReplaceOnStart: r.boolean(keySearchReplace, d.Search.ReplaceOnStart),
		},
		Query: domain.QuerySettings{
			DefaultLimit: r.integer(keyQueryDefault, d.Query.DefaultLimit),
			MaxLimit:     r.integer(keyQueryMax, d.Query.MaxLimit),
		},
		MCPAddr: r.str(keyMCPAddr, d.MCPAddr),
	}

	if settings.Source.Token == "" {
		if tok, ok := s.lookupEnv(githubTokenEnv); ok {
			settings.Source.Token = tok
		}
	}

	if r.err != nil {
		return nil, r.err
	}
	if err := validateSettings(settings); err != nil {
		return nil, err
	}
	return settings, nil
}

// Set validates and persists a single key.
func (s *SettingsService) Set(key, value string) error {
	i := slices.IndexFunc(settingKeys, func(k settingKey) bool { return k.key == key })
	if i < 0 {
		return fmt.Errorf("%w: unknown config key %q", domain.ErrInvalidInput, key)
	}

	parsed, err := parseValue(settingKeys[i].kind, value)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", domain.ErrInvalidInput, key, err)
	}

	switch key {
	case keyStoreDriver:
		if !domain.StoreDriver(value).IsValid() {
			return fmt.Errorf("%w: invalid store driver %q", domain.ErrInvalidInput, value)
		}
	case keySourceKind:
		if !domain.SourceKind(value).IsValid() {
			return fmt.Errorf("%w: invalid source kind %q", domain.ErrInvalidInput, value)
		}
	}

	// Durations are stored in their string form.
	if d, ok := parsed.(time.Duration); ok {
		parsed = d.String()
	}
	if err := s.configStore.Set(key, parsed); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// Keys lists the recognised config keys.
func (s *SettingsService) Keys() []string {
	keys := make([]string, len(settingKeys))
	for i, k := range settingKeys {
		keys[i] = k.key
	}
	return keys
}

// Path returns the config file location.
func (s *SettingsService) Path() string {
	return s.configStore.Path()
}

func parseValue(kind valueKind, value string) (any, error) {
	switch kind {
	case kindInt:
		return strconv.Atoi(value)
	case kindBool:
		return strconv.ParseBool(value)
	case kindDuration:
		return time.ParseDuration(value)
	default:
		return value, nil
	}
}

func validateSettings(s *domain.Settings) error {
	switch {
	case !s.Store.Driver.IsValid():
		return fmt.Errorf("%w: invalid store driver %q", domain.ErrInvalidInput, s.Store.Driver)
	case s.Store.Driver == domain.StoreDriverPostgres && s.Store.DSN == "":
		return fmt.Errorf("%w: %s is required for the postgres driver", domain.ErrInvalidInput, keyStoreDSN)
	case !s.Source.Kind.IsValid():
		return fmt.Errorf("%w: invalid source kind %q", domain.ErrInvalidInput, s.Source.Kind)
	case s.Source.Kind == domain.SourceKindDir && s.Source.Dir == "":
		return fmt.Errorf("%w: %s is required for the dir source", domain.ErrInvalidInput, keySourceDir)
	case s.Ingest.Interval <= 0:
		return fmt.Errorf("%w: %s must be positive", domain.ErrInvalidInput, keyIngestInterval)
	case s.Query.DefaultLimit <= 0 || s.Query.MaxLimit <= 0:
		return fmt.Errorf("%w: query limits must be positive", domain.ErrInvalidInput)
	case s.Query.DefaultLimit > s.Query.MaxLimit:
		return fmt.Errorf("%w: %s exceeds %s", domain.ErrInvalidInput, keyQueryDefault, keyQueryMax)
	}
	return nil
}

// resolver reads one key at a time, environment first, and keeps the first
// parse error.
type resolver struct {
	s   *SettingsService
	err error
}

func (r *resolver) env(key string) (string, bool) {
	v, ok := r.s.lookupEnv(EnvName(key))
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

func (r *resolver) fail(key string, err error) {
	if r.err == nil {
		r.err = fmt.Errorf("%w: %s: %w", domain.ErrInvalidInput, key, err)
	}
}

func (r *resolver) str(key, def string) string {
	if v, ok := r.env(key); ok {
		return v
	}
	if v := r.s.configStore.GetString(key); v != "" {
		return v
	}
	return def
}

func (r *resolver) integer(key string, def int) int {
	if v, ok := r.env(key); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			r.fail(key, err)
			return def
		}
		return n
	}
	if v := r.s.configStore.GetInt(key); v != 0 {
		return v
	}
	return def
}

func (r *resolver) boolean(key string, def bool) bool {
	if v, ok := r.env(key); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			r.fail(key, err)
			return def
		}
		return b
	}
	if _, exists := r.s.configStore.Get(key); exists {
		return r.s.configStore.GetBool(key)
	}
	return def
}

func (r *resolver) duration(key string, def time.Duration) time.Duration {
	v, ok := r.env(key)
	if !ok {
		v = r.s.configStore.GetString(key)
	}
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		r.fail(key, err)
		return def
	}
	return d
}
