// Package file loads knowctl configuration from a TOML file on the
// local filesystem.
package file

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/praxis-labs/knowctl/internal/core/ports/driven"
)

// ConfigFileName is the configuration file name within the config
// directory.
const ConfigFileName = "config.toml"

// Config is the full knowctl configuration. Zero values are replaced
// by defaults on load; secrets such as API keys never live here, they
// come from the environment.
type Config struct {
	Storage   StorageConfig   `toml:"storage"`
	Chunking  ChunkingConfig  `toml:"chunking"`
	Embedding EmbeddingConfig `toml:"embedding"`
	Watch     WatchConfig     `toml:"watch"`
}

// StorageConfig configures the document store.
type StorageConfig struct {
	// DataDir is the directory holding the database file.
	// Defaults to ~/.knowctl/data.
	DataDir string `toml:"data_dir"`

	// Policy selects how re-ingested documents are reconciled:
	// "delete_recreate" or "reuse".
	Policy string `toml:"policy"`
}

// ChunkingConfig configures the sentence splitter.
type ChunkingConfig struct {
	Window  int `toml:"window"`
	Overlap int `toml:"overlap"`
}

// EmbeddingConfig configures the embedding backend.
type EmbeddingConfig struct {
	// Provider is "openai", "ollama" or "none".
	Provider string `toml:"provider"`

	BaseURL        string  `toml:"base_url"`
	Model          string  `toml:"model"`
	TimeoutSeconds int     `toml:"timeout_seconds"`
	Dimensions     int     `toml:"dimensions"`
	RequestsPerSec float64 `toml:"requests_per_sec"`
	Burst          int     `toml:"burst"`
}

// WatchConfig configures the filesystem trigger.
type WatchConfig struct {
	// Extensions lists file suffixes the watcher ingests.
	Extensions []string `toml:"extensions"`

	// DebounceMillis is the quiet period before a changed file is
	// re-ingested.
	DebounceMillis int `toml:"debounce_millis"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		Storage: StorageConfig{
			Policy: "delete_recreate",
		},
		Chunking: ChunkingConfig{
			Window:  5,
			Overlap: 1,
		},
		Embedding: EmbeddingConfig{
			Provider:       "none",
			TimeoutSeconds: 30,
		},
		Watch: WatchConfig{
			Extensions:     []string{".txt", ".md"},
			DebounceMillis: 500,
		},
	}
}

// Load reads configuration from configDir/config.toml, applying
// defaults for missing values. If configDir is empty it defaults to
// ~/.knowctl. A missing file is not an error.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home directory: %w", err)
		}
		configDir = filepath.Join(home, ".knowctl")
	}

	cfg := Default()

	data, err := os.ReadFile(filepath.Join(configDir, ConfigFileName))
	if err != nil {
		if os.IsNotExist(err) {
			return &cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes the configuration to configDir/config.toml, creating the
// directory if needed.
func (c *Config) Save(configDir string) error {
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	return os.WriteFile(filepath.Join(configDir, ConfigFileName), data, 0600)
}

// ReconcilePolicy maps the configured policy string onto the store's
// policy type.
func (c *Config) ReconcilePolicy() driven.ReconcilePolicy {
	if c.Storage.Policy == "reuse" {
		return driven.PolicyReuse
	}
	return driven.PolicyDeleteRecreate
}

// EmbeddingTimeout returns the embedding request timeout.
func (c *Config) EmbeddingTimeout() time.Duration {
	return time.Duration(c.Embedding.TimeoutSeconds) * time.Second
}

// WatchDebounce returns the watcher quiet period.
func (c *Config) WatchDebounce() time.Duration {
	return time.Duration(c.Watch.DebounceMillis) * time.Millisecond
}

func (c *Config) validate() error {
	switch c.Storage.Policy {
	case "", "delete_recreate", "reuse":
	default:
		return fmt.Errorf("invalid storage policy %q", c.Storage.Policy)
	}

	switch c.Embedding.Provider {
	case "", "none", "openai", "ollama":
	default:
		return fmt.Errorf("invalid embedding provider %q", c.Embedding.Provider)
	}

	if c.Chunking.Window < 0 || c.Chunking.Overlap < 0 {
		return fmt.Errorf("chunking window and overlap must be non-negative")
	}

	return nil
}
