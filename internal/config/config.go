package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Config holds all sagequill configuration.
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Store    StoreConfig    `toml:"store"`
	Provider ProviderConfig `toml:"provider"`
	Prompts  PromptsConfig  `toml:"prompts"`
	Auth     AuthConfig     `toml:"auth"`
	Log      LogConfig      `toml:"log"`
}

type ServerConfig struct {
	Addr       string `toml:"addr"`
	CORSOrigin string `toml:"cors_origin"`
	Compress   bool   `toml:"compress"`
}

type StoreConfig struct {
	// Driver is "sqlite3" (cgo, mattn) or "sqlite" (pure Go, modernc).
	Driver string `toml:"driver"`
	Path   string `toml:"path"`
}

type ProviderConfig struct {
	// Name is "gemini" or "anthropic".
	Name string `toml:"name"`
	// Model and BaseURL default per provider when empty.
	Model     string `toml:"model"`
	BaseURL   string `toml:"base_url"`
	APIKeyEnv string `toml:"api_key_env"`
}

type PromptsConfig struct {
	// Path to a YAML prompt catalog. Empty uses the built-in catalog.
	Path  string `toml:"path"`
	Watch bool   `toml:"watch"`
}

type AuthConfig struct {
	SessionTTLHours int `toml:"session_ttl_hours"`
}

type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// DefaultConfig returns config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Addr:       ":8080",
			CORSOrigin: "*",
			Compress:   true,
		},
		Store: StoreConfig{
			Driver: "sqlite3",
			Path:   "~/.sagequill/sagequill.db",
		},
		Provider: ProviderConfig{
			Name:      "gemini",
			APIKeyEnv: "GEMINI_API_KEY",
		},
		Auth: AuthConfig{
			SessionTTLHours: 24 * 7,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads config from path, or from the standard locations when path
// is empty, falling back to defaults.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	paths := configPaths()
	if path != "" {
		paths = []string{path}
	}

	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			if _, err := toml.DecodeFile(p, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config %s: %w", p, err)
			}
			break
		} else if path != "" {
			return cfg, fmt.Errorf("read config %s: %w", p, err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}

	cfg.Store.Path = expandHome(cfg.Store.Path)
	cfg.Prompts.Path = expandHome(cfg.Prompts.Path)

	return cfg, nil
}

// Validate checks enumerated settings.
func (c Config) Validate() error {
	switch c.Store.Driver {
	case "sqlite3", "sqlite":
	default:
		return fmt.Errorf("unknown store driver %q (want sqlite3 or sqlite)", c.Store.Driver)
	}
	switch c.Provider.Name {
	case "gemini", "anthropic":
	default:
		return fmt.Errorf("unknown provider %q (want gemini or anthropic)", c.Provider.Name)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log format %q (want text or json)", c.Log.Format)
	}
	return nil
}

// SessionTTL returns the configured session lifetime.
func (c Config) SessionTTL() time.Duration {
	if c.Auth.SessionTTLHours <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(c.Auth.SessionTTLHours) * time.Hour
}

// APIKey reads the provider API key from the environment.
// A missing key is not an error; the provider rejects the call instead.
func (c Config) APIKey() string {
	return os.Getenv(c.Provider.APIKeyEnv)
}

func configPaths() []string {
	var paths []string

	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		paths = append(paths, filepath.Join(xdg, "sagequill", "config.toml"))
	}

	home, _ := os.UserHomeDir()
	if home != "" {
		paths = append(paths, filepath.Join(home, ".config", "sagequill", "config.toml"))
	}

	return paths
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}
