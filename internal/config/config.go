package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Config is the root configuration for boxreport, stored in
// ~/.boxreport/config.json. The file supports single-line // comments for
// documentation purposes.
type Config struct {
	API      APIConfig      `json:"api"`
	Defaults DefaultsConfig `json:"defaults"`
	Log      LogConfig      `json:"log"`
	Server   ServerConfig   `json:"server"`
	Cache    CacheConfig    `json:"cache"`
}

// APIConfig holds the BoxTasks backend location and credentials.
type APIConfig struct {
	// BaseURL is the backend root, e.g. "https://boxtasks.example.com".
	BaseURL string `json:"base_url"`
	// Token is a static bearer token. Takes precedence over client credentials.
	Token string `json:"token"`
	// ClientID, ClientSecret and TokenURL configure the OAuth2
	// client-credentials grant.
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	TokenURL     string `json:"token_url"`
}

// DefaultsConfig holds values used when a command flag is omitted.
type DefaultsConfig struct {
	Workspace string `json:"workspace"`
	// Timezone is the IANA zone report dates are interpreted in. Empty = local.
	Timezone string `json:"timezone"`
	// Concurrency bounds parallel card requests.
	Concurrency int `json:"concurrency"`
}

// LogConfig selects the log level: debug, info, warn or error.
type LogConfig struct {
	Level string `json:"level"`
}

// ServerConfig configures `boxreport serve`.
type ServerConfig struct {
	Addr string `json:"addr"`
}

// CacheConfig configures the optional redis report cache.
type CacheConfig struct {
	// RedisAddr is host:port of a redis server. Empty disables caching.
	RedisAddr  string `json:"redis_addr"`
	TTLSeconds int    `json:"ttl_seconds"`
}

// TTL returns the cache TTL as a duration.
func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLSeconds) * time.Second
}

const (
	// DefaultBaseURL points at a locally running backend.
	DefaultBaseURL = "http://localhost:8080"
	// DefaultLogLevel is used when log.level is empty.
	DefaultLogLevel = "info"
	// DefaultAddr is the listen address of the HTTP surface.
	DefaultAddr = ":8090"
	// DefaultConcurrency is the number of parallel card requests.
	DefaultConcurrency = 4
	// DefaultCacheTTLSeconds is how long cached reports stay valid.
	DefaultCacheTTLSeconds = 300
)

// Environment overrides.
const (
	EnvAPIURL = "BOXREPORT_API_URL"
	EnvToken  = "BOXREPORT_TOKEN"
)

// defaultConfig returns a Config pre-filled with sensible defaults.
func defaultConfig() Config {
	return Config{
		API:      APIConfig{BaseURL: DefaultBaseURL},
		Defaults: DefaultsConfig{Concurrency: DefaultConcurrency},
		Log:      LogConfig{Level: DefaultLogLevel},
		Server:   ServerConfig{Addr: DefaultAddr},
		Cache:    CacheConfig{TTLSeconds: DefaultCacheTTLSeconds},
	}
}

// configTemplate is the annotated config written on first run.
// Lines whose trimmed content starts with // are stripped before JSON parsing,
// allowing human-readable documentation inside the file.
const configTemplate = `// boxreport configuration – ~/.boxreport/config.json
//
// All settings are optional. BOXREPORT_API_URL and BOXREPORT_TOKEN override
// the api section when set.
{
  // ── BoxTasks backend ─────────────────────────────────────────────────────
  "api": {
    // Root URL of the backend serving /jsonapi.
    "base_url": "http://localhost:8080",

    // Static bearer token. Leave empty to use client credentials below.
    "token": "",

    // OAuth2 client-credentials grant. The issued token is cached in
    // ~/.boxreport/auth/token.json.
    "client_id": "",
    "client_secret": "",
    "token_url": ""
  },

  // ── Report defaults ──────────────────────────────────────────────────────
  "defaults": {
    // Workspace used when --workspace is omitted.
    "workspace": "",

    // IANA timezone for --from/--to and trend buckets, e.g. "Europe/Berlin".
    // Leave empty to use the local timezone.
    "timezone": "",

    // Parallel card requests per report.
    "concurrency": 4
  },

  // debug, info, warn or error
  "log": {
    "level": "info"
  },

  // ── boxreport serve ──────────────────────────────────────────────────────
  "server": {
    "addr": ":8090"
  },

  // Redis report cache for the HTTP surface. Empty redis_addr disables it.
  "cache": {
    "redis_addr": "",
    "ttl_seconds": 300
  }
}
`

// Dir returns ~/.boxreport.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".boxreport"), nil
}

// FilePath returns the path to ~/.boxreport/config.json.
func FilePath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// stripLineComments removes lines whose leading non-whitespace content starts
// with //. Only full-line comments are handled; inline comments are not stripped.
func stripLineComments(data []byte) []byte {
	var out []byte
	for _, line := range bytes.Split(data, []byte("\n")) {
		if bytes.HasPrefix(bytes.TrimLeft(line, " \t"), []byte("//")) {
			continue
		}
		out = append(out, line...)
		out = append(out, '\n')
	}
	return out
}

// Load reads ~/.boxreport/config.json, creating it with annotated defaults
// on first run, and applies environment overrides.
func Load() (Config, error) {
	path, err := FilePath()
	if err != nil {
		cfg := defaultConfig()
		applyEnv(&cfg, os.Getenv)
		return cfg, err
	}
	return LoadFile(path, os.Getenv)
}

// LoadFile reads the config at path. getenv supplies environment
// overrides; nil disables them.
func LoadFile(path string, getenv func(string) string) (Config, error) {
	cfg, err := loadFile(path)
	if getenv != nil {
		applyEnv(&cfg, getenv)
	}
	return cfg, err
}

func loadFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		// First run: write the annotated template so users can discover options.
		if writeErr := writeDefault(path); writeErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not create config file %s: %v\n", path, writeErr)
		}
		return defaultConfig(), nil
	}
	if err != nil {
		return defaultConfig(), fmt.Errorf("reading config file %s: %w", path, err)
	}

	cleaned := stripLineComments(data)
	var cfg Config
	if err := json.Unmarshal(cleaned, &cfg); err != nil {
		return defaultConfig(), fmt.Errorf("parsing config file %s: %w\nTip: delete the file to regenerate defaults", path, err)
	}

	// Fill zero-value fields with built-in defaults so callers always get
	// a usable Config even if the user only partially fills in the file.
	if cfg.API.BaseURL == "" {
		cfg.API.BaseURL = DefaultBaseURL
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = DefaultAddr
	}
	if cfg.Defaults.Concurrency <= 0 {
		cfg.Defaults.Concurrency = DefaultConcurrency
	}
	if cfg.Cache.TTLSeconds <= 0 {
		cfg.Cache.TTLSeconds = DefaultCacheTTLSeconds
	}
	return cfg, nil
}

func applyEnv(cfg *Config, getenv func(string) string) {
	if v := getenv(EnvAPIURL); v != "" {
		cfg.API.BaseURL = v
	}
	if v := getenv(EnvToken); v != "" {
		cfg.API.Token = v
	}
}

// Location resolves Defaults.Timezone, falling back to time.Local.
func (c Config) Location() (*time.Location, error) {
	if c.Defaults.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Defaults.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Defaults.Timezone, err)
	}
	return loc, nil
}

// writeDefault creates the config directory and writes the annotated default
// config template.
func writeDefault(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(configTemplate), 0o600); err != nil {
		return fmt.Errorf("writing default config: %w", err)
	}
	return nil
}
