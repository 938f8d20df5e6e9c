// Package config provides configuration loading and structs for the termground server and CLI.
package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hyperjump/termground/internal/ranking"
)

// Config holds all configuration for the application.
type Config struct {
	Debug          bool                  `yaml:"debug"`
	Server         ServerConfig          `yaml:"server"`
	Resources      ResourcesConfig       `yaml:"resources"`
	Grounding      GroundingConfig       `yaml:"grounding"`
	Scoring        ranking.ScoringConfig `yaml:"scoring"`
	Disambiguation DisambiguationConfig  `yaml:"disambiguation"`
	Cache          CacheConfig           `yaml:"cache"`
	Search         SearchConfig          `yaml:"search"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// ResourcesConfig locates the term table, disambiguation models and rule tables.
type ResourcesConfig struct {
	TermsPath string `yaml:"terms_path"`
	// TermsFormat is tsv, xlsx or sqlite; empty infers it from the extension.
	TermsFormat string `yaml:"terms_format"`
	// DatabasePath is where `termground import` writes the SQLite term store.
	DatabasePath string `yaml:"database_path"`
	ModelsDir    string `yaml:"models_dir"`
	// TablesPath is an optional YAML file with stoplist and depluralization rules.
	TablesPath    string        `yaml:"tables_path"`
	Watch         bool          `yaml:"watch"`
	WatchDebounce time.Duration `yaml:"watch_debounce"`
}

// GroundingConfig holds grounder defaults.
type GroundingConfig struct {
	Organisms         []string `yaml:"organisms"`
	NamespacePriority []string `yaml:"namespace_priority"`
	BatchConcurrency  int      `yaml:"batch_concurrency"`
	DefaultLimit      int      `yaml:"default_limit"`
	MaxLimit          int      `yaml:"max_limit"`
}

// DisambiguationConfig holds settings for the context similarity backend's embedder.
type DisambiguationConfig struct {
	Embedder   string `yaml:"embedder"` // hashing or onnx
	ModelPath  string `yaml:"model_path"`
	Dimensions int    `yaml:"dimensions"`
	MaxTokens  int    `yaml:"max_tokens"`
	CacheSize  int    `yaml:"cache_size"`
}

// CacheConfig selects the ground result cache.
type CacheConfig struct {
	Kind          string        `yaml:"kind"` // none, memory or redis
	Size          int           `yaml:"size"`
	RedisAddr     string        `yaml:"redis_addr"`
	RedisPassword string        `yaml:"redis_password"`
	RedisDB       int           `yaml:"redis_db"`
	TTL           time.Duration `yaml:"ttl"`
}

// SearchConfig holds free-text entity search settings.
type SearchConfig struct {
	// IndexPath persists the bleve index; empty keeps it in memory.
	IndexPath       string  `yaml:"index_path"`
	Fuzziness       int     `yaml:"fuzziness"`
	NameBoost       float64 `yaml:"name_boost"`
	SemanticEnabled bool    `yaml:"semantic_enabled"`
	DefaultLimit    int     `yaml:"default_limit"`
}

// Load reads and parses the config file at path, expands paths, and applies defaults.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)

	configDir := filepath.Dir(path)
	for _, p := range []*string{
		&cfg.Resources.TermsPath,
		&cfg.Resources.DatabasePath,
		&cfg.Resources.ModelsDir,
		&cfg.Resources.TablesPath,
		&cfg.Disambiguation.ModelPath,
		&cfg.Search.IndexPath,
	} {
		*p = expandPath(*p, configDir)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save writes the config to path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// Write encodes cfg as YAML to w.
func Write(w io.Writer, cfg *Config) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return enc.Close()
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// other relative paths are relative to the home directory. Empty paths stay empty.
func expandPath(path string, configDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || strings.HasPrefix(path, "../") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
