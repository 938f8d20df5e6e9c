package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/hyperjump/termground/internal/errs"
	"github.com/hyperjump/termground/internal/organism"
	"github.com/hyperjump/termground/internal/ranking"
)

const dataDir = "/usr/local/var/termground"

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 10 * time.Second
	}
	if cfg.Resources.TermsPath == "" {
		cfg.Resources.TermsPath = filepath.Join(dataDir, "resources", "grounding_terms.tsv.gz")
	}
	if cfg.Resources.DatabasePath == "" {
		cfg.Resources.DatabasePath = filepath.Join(dataDir, "db", "terms.db")
	}
	if cfg.Resources.ModelsDir == "" {
		cfg.Resources.ModelsDir = filepath.Join(dataDir, "models")
	}
	if cfg.Resources.WatchDebounce == 0 {
		cfg.Resources.WatchDebounce = 2 * time.Second
	}
	if cfg.Grounding.Organisms == nil {
		cfg.Grounding.Organisms = []string{organism.Human}
	}
	if cfg.Grounding.NamespacePriority == nil {
		cfg.Grounding.NamespacePriority = append([]string(nil), ranking.DefaultNamespacePriority...)
	}
	if cfg.Grounding.BatchConcurrency == 0 {
		cfg.Grounding.BatchConcurrency = 8
	}
	if cfg.Grounding.DefaultLimit == 0 {
		cfg.Grounding.DefaultLimit = 10
	}
	if cfg.Grounding.MaxLimit == 0 {
		cfg.Grounding.MaxLimit = 100
	}
	cfg.Scoring.ApplyDefaults()
	if cfg.Disambiguation.Embedder == "" {
		cfg.Disambiguation.Embedder = "hashing"
	}
	if cfg.Disambiguation.Dimensions == 0 {
		if cfg.Disambiguation.Embedder == "onnx" {
			cfg.Disambiguation.Dimensions = 384
		} else {
			cfg.Disambiguation.Dimensions = 512
		}
	}
	if cfg.Disambiguation.MaxTokens == 0 {
		cfg.Disambiguation.MaxTokens = 256
	}
	if cfg.Disambiguation.CacheSize == 0 {
		cfg.Disambiguation.CacheSize = 10000
	}
	if cfg.Cache.Kind == "" {
		cfg.Cache.Kind = "memory"
	}
	if cfg.Cache.Size == 0 {
		cfg.Cache.Size = 50000
	}
	if cfg.Cache.RedisAddr == "" {
		cfg.Cache.RedisAddr = "localhost:6379"
	}
	if cfg.Cache.TTL == 0 {
		cfg.Cache.TTL = 10 * time.Minute
	}
	if cfg.Search.Fuzziness == 0 {
		cfg.Search.Fuzziness = 1
	}
	if cfg.Search.NameBoost == 0 {
		cfg.Search.NameBoost = 2.0
	}
	if cfg.Search.DefaultLimit == 0 {
		cfg.Search.DefaultLimit = 10
	}
}

// Validate rejects settings the loaders and servers cannot honor.
func Validate(cfg *Config) error {
	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		return fmt.Errorf("%w: server.port %d out of range", errs.ErrInvalidConfig, cfg.Server.Port)
	}
	switch strings.ToLower(cfg.Resources.TermsFormat) {
	case "", "tsv", "xlsx", "sqlite":
	default:
		return fmt.Errorf("%w: resources.terms_format %q (want tsv, xlsx or sqlite)", errs.ErrInvalidConfig, cfg.Resources.TermsFormat)
	}
	if cfg.Grounding.BatchConcurrency < 0 {
		return fmt.Errorf("%w: grounding.batch_concurrency must not be negative", errs.ErrInvalidConfig)
	}
	if cfg.Grounding.DefaultLimit > cfg.Grounding.MaxLimit {
		return fmt.Errorf("%w: grounding.default_limit %d exceeds max_limit %d", errs.ErrInvalidConfig, cfg.Grounding.DefaultLimit, cfg.Grounding.MaxLimit)
	}
	if err := cfg.Scoring.Validate(); err != nil {
		return fmt.Errorf("scoring: %w", err)
	}
	switch cfg.Disambiguation.Embedder {
	case "hashing":
	case "onnx":
		if cfg.Disambiguation.ModelPath == "" {
			return fmt.Errorf("%w: disambiguation.model_path is required for the onnx embedder", errs.ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: disambiguation.embedder %q (want hashing or onnx)", errs.ErrInvalidConfig, cfg.Disambiguation.Embedder)
	}
	switch cfg.Cache.Kind {
	case "none", "memory", "redis":
	default:
		return fmt.Errorf("%w: cache.kind %q (want none, memory or redis)", errs.ErrInvalidConfig, cfg.Cache.Kind)
	}
	if cfg.Search.Fuzziness < 0 || cfg.Search.Fuzziness > 2 {
		return fmt.Errorf("%w: search.fuzziness must be 0, 1 or 2", errs.ErrInvalidConfig)
	}
	return nil
}
