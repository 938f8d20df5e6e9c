// Package engine assembles loaded resources into immutable snapshots and
// serves grounding operations against the current one.
package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hyperjump/termground/internal/config"
	"github.com/hyperjump/termground/internal/disambig"
	"github.com/hyperjump/termground/internal/embedding"
	"github.com/hyperjump/termground/internal/grounding"
	"github.com/hyperjump/termground/internal/keyword"
	"github.com/hyperjump/termground/internal/metrics"
	"github.com/hyperjump/termground/internal/normalize"
	"github.com/hyperjump/termground/internal/ranking"
	"github.com/hyperjump/termground/internal/resources"
	"github.com/hyperjump/termground/internal/search"
	"github.com/hyperjump/termground/internal/termindex"
	"github.com/hyperjump/termground/internal/vector"
)

// Snapshot is one generation of loaded resources. Nothing in it changes after Build.
type Snapshot struct {
	ID            string
	LoadedAt      time.Time
	TermsPath     string
	Stats         termindex.Stats
	Stoplist      int
	Grounder      *grounding.Grounder
	Disambiguator *disambig.Disambiguator
	Search        *search.Engine
	indexDir      string
}

// Deps are the long lived collaborators shared by every snapshot.
type Deps struct {
	Embedder embedding.Embedder
	Metrics  *metrics.Metrics
	Logger   *zap.Logger
}

// Build loads every resource named in cfg and wires a new snapshot.
func Build(ctx context.Context, cfg *config.Config, deps Deps) (*Snapshot, error) {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	start := time.Now()
	id := uuid.NewString()

	tables, err := resources.LoadTables(cfg.Resources.TablesPath)
	if err != nil {
		return nil, err
	}
	normalizer := normalize.New(normalize.WithRules(tables.Depluralization))

	terms, err := resources.LoadTerms(ctx, cfg.Resources.TermsPath, cfg.Resources.TermsFormat)
	if err != nil {
		return nil, fmt.Errorf("load terms from %s: %w", cfg.Resources.TermsPath, err)
	}
	index, err := termindex.Build(terms, normalizer)
	if err != nil {
		return nil, fmt.Errorf("build index from %s: %w", cfg.Resources.TermsPath, err)
	}
	stoplist := normalize.NewStoplist(normalizer, tables.Stoplist)

	scoring := cfg.Scoring
	scoring.ApplyDefaults()
	if err := scoring.Validate(); err != nil {
		return nil, err
	}

	grounder := grounding.New(index, normalizer,
		grounding.WithScorer(ranking.NewLogisticScorer(&scoring)),
		grounding.WithNamespacePriority(cfg.Grounding.NamespacePriority),
		grounding.WithStoplist(stoplist),
		grounding.WithDefaultOrganisms(cfg.Grounding.Organisms),
		grounding.WithSpellChecker(keyword.NewSpellChecker(index)),
		grounding.WithLogger(logger),
	)

	predictors, err := resources.LoadModels(ctx, cfg.Resources.ModelsDir, deps.Embedder, logger)
	if err != nil {
		return nil, err
	}
	disambiguator := disambig.New(disambig.NewRegistry(predictors...),
		disambig.WithLogger(logger),
		disambig.WithMetrics(deps.Metrics),
	)

	searchEngine, indexDir, err := buildSearch(ctx, cfg, id, index, deps.Embedder, logger)
	if err != nil {
		return nil, err
	}

	snap := &Snapshot{
		ID:            id,
		LoadedAt:      time.Now(),
		TermsPath:     cfg.Resources.TermsPath,
		Stats:         index.Stats(),
		Stoplist:      stoplist.Len(),
		Grounder:      grounder,
		Disambiguator: disambiguator,
		Search:        searchEngine,
		indexDir:      indexDir,
	}
	logger.Info("snapshot built",
		zap.String("id", id),
		zap.Int("terms", snap.Stats.Terms),
		zap.Int("keys", snap.Stats.Keys),
		zap.Int("models", disambiguator.Registry().Len()),
		zap.Duration("took", time.Since(start)))
	return snap, nil
}

func buildSearch(ctx context.Context, cfg *config.Config, id string, index *termindex.TermIndex, e embedding.Embedder, logger *zap.Logger) (*search.Engine, string, error) {
	indexDir := ""
	if cfg.Search.IndexPath != "" {
		if err := os.MkdirAll(cfg.Search.IndexPath, 0755); err != nil {
			return nil, "", fmt.Errorf("create search index dir: %w", err)
		}
		indexDir = filepath.Join(cfg.Search.IndexPath, id)
	}
	kw, err := keyword.NewBleveIndex(indexDir)
	if err != nil {
		return nil, "", err
	}
	var vecs vector.VectorIndex
	if cfg.Search.SemanticEnabled && e != nil {
		mem, err := vector.NewMemoryIndex(e.Dimensions())
		if err != nil {
			_ = kw.Close()
			return nil, "", err
		}
		vecs = mem
	} else {
		e = nil
	}
	engine := search.NewEngine(kw, e, vecs, search.Options{
		NameBoost: cfg.Search.NameBoost,
		Fuzziness: cfg.Search.Fuzziness,
		Logger:    logger,
	})
	if err := engine.Index(ctx, keyword.DocumentsFromTerms(index.Terms())); err != nil {
		_ = engine.Close()
		return nil, "", err
	}
	return engine, indexDir, nil
}

// Close releases the search indexes and removes an on-disk index.
func (s *Snapshot) Close() error {
	err := s.Search.Close()
	if s.indexDir != "" {
		if rerr := os.RemoveAll(s.indexDir); rerr != nil && err == nil {
			err = rerr
		}
	}
	return err
}
