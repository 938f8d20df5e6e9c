package engine

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/termground/internal/cache"
	"github.com/hyperjump/termground/internal/config"
	"github.com/hyperjump/termground/internal/disambig"
	"github.com/hyperjump/termground/internal/embedding"
	"github.com/hyperjump/termground/internal/grounding"
	"github.com/hyperjump/termground/internal/metrics"
	"github.com/hyperjump/termground/internal/models"
	"github.com/hyperjump/termground/internal/search"
	"github.com/hyperjump/termground/internal/storage"
)

// retireDelay is how long a replaced snapshot stays open for in-flight queries.
const retireDelay = 30 * time.Second

const suggestions = 5

// Service answers queries against the current snapshot and swaps in a new
// one on Reload. Queries never observe a partially built snapshot.
type Service struct {
	cfg      *config.Config
	current  atomic.Pointer[Snapshot]
	reloadMu sync.Mutex
	embedder embedding.Embedder
	cache    cache.ResultCache
	metrics  *metrics.Metrics
	logger   *zap.Logger
	started  time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMetrics enables instrumentation.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithCache overrides the result cache selected by configuration.
func WithCache(c cache.ResultCache) Option {
	return func(s *Service) {
		s.cache = c
	}
}

// WithEmbedder overrides the embedder selected by configuration.
func WithEmbedder(e embedding.Embedder) Option {
	return func(s *Service) {
		s.embedder = e
	}
}

// NewService creates the shared embedder and result cache, then builds the first snapshot.
func NewService(ctx context.Context, cfg *config.Config, opts ...Option) (*Service, error) {
	s := &Service{cfg: cfg, logger: zap.NewNop(), started: time.Now()}
	for _, opt := range opts {
		opt(s)
	}
	if s.embedder == nil {
		e, err := embedding.New(embedding.Options{
			Kind:       embedding.Kind(cfg.Disambiguation.Embedder),
			ModelPath:  cfg.Disambiguation.ModelPath,
			Dimensions: cfg.Disambiguation.Dimensions,
			MaxTokens:  cfg.Disambiguation.MaxTokens,
			CacheSize:  cfg.Disambiguation.CacheSize,
		})
		if err != nil {
			return nil, err
		}
		s.embedder = e
	}
	if s.cache == nil {
		c, err := newResultCache(ctx, cfg.Cache)
		if err != nil {
			_ = s.embedder.Close()
			return nil, err
		}
		s.cache = c
	}
	if err := s.Reload(ctx); err != nil {
		_ = s.cache.Close()
		_ = s.embedder.Close()
		return nil, err
	}
	return s, nil
}

func newResultCache(ctx context.Context, cfg config.CacheConfig) (cache.ResultCache, error) {
	switch cfg.Kind {
	case "redis":
		client, err := cache.Dial(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, err
		}
		return cache.NewRedisCache(client, cache.WithTTL(cfg.TTL)), nil
	case "memory":
		return cache.NewMemoryCache(cfg.Size), nil
	default:
		return cache.NopCache{}, nil
	}
}

// Snapshot returns the active snapshot.
func (s *Service) Snapshot() *Snapshot {
	return s.current.Load()
}

// Reload builds a fresh snapshot and swaps it in. On failure the current
// snapshot stays active.
func (s *Service) Reload(ctx context.Context) error {
	s.reloadMu.Lock()
	defer s.reloadMu.Unlock()

	snap, err := Build(ctx, s.cfg, Deps{Embedder: s.embedder, Metrics: s.metrics, Logger: s.logger})
	s.metrics.Reloaded(err)
	if err != nil {
		s.logger.Error("reload failed", zap.Error(err))
		return err
	}
	old := s.current.Swap(snap)
	s.metrics.SetTerms(snap.Stats.Terms)
	if old != nil {
		time.AfterFunc(retireDelay, func() {
			if err := old.Close(); err != nil {
				s.logger.Warn("failed to close retired snapshot", zap.String("id", old.ID), zap.Error(err))
			}
		})
	}
	return nil
}

// Ground validates req, grounds its text and, when context is given,
// annotates the matches with the registered disambiguation model.
func (s *Service) Ground(ctx context.Context, req *models.GroundRequest) (*models.GroundResponse, error) {
	start := time.Now()
	defer func() { s.metrics.ObserveRequest("ground", time.Since(start)) }()
	req.Limit = s.limit(req.Limit)
	if err := req.Validate(); err != nil {
		return nil, err
	}
	snap := s.Snapshot()
	matches := s.ground(ctx, snap, req.Text, grounding.GroundOptions{
		Organisms:  req.Organisms,
		Namespaces: req.Namespaces,
		Limit:      req.Limit,
	})
	if req.Disambiguate && req.Context != "" {
		matches = snap.Disambiguator.Disambiguate(ctx, req.Text, matches, req.Context)
		if req.Rerank {
			matches = disambig.Rerank(matches)
		}
	}
	s.metrics.ObserveMatches(len(matches))

	resp := &models.GroundResponse{
		Text:     req.Text,
		Matches:  matches,
		Total:    len(matches),
		Snapshot: snap.ID,
	}
	if len(matches) == 0 {
		resp.Suggestions = snap.Grounder.Suggest(req.Text, suggestions)
	}
	resp.QueryTime = time.Since(start).Milliseconds()
	return resp, nil
}

// limit applies the configured default and ceiling to a requested limit.
func (s *Service) limit(n int) int {
	if n <= 0 {
		return s.cfg.Grounding.DefaultLimit
	}
	if m := s.cfg.Grounding.MaxLimit; m > 0 && n > m {
		return m
	}
	return n
}

// ground consults the result cache before the grounder. Cache failures
// degrade to an uncached call.
func (s *Service) ground(ctx context.Context, snap *Snapshot, text string, opts grounding.GroundOptions) []models.ScoredMatch {
	key := cache.Key(snap.ID, text, opts.Organisms, opts.Namespaces, opts.Limit)
	cached, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.Warn("result cache get failed", zap.Error(err))
	}
	s.metrics.CacheLookup(ok)
	if ok {
		return cached
	}
	matches := snap.Grounder.Ground(text, opts)
	if err := s.cache.Set(ctx, key, matches); err != nil {
		s.logger.Warn("result cache set failed", zap.Error(err))
	}
	return matches
}

// GroundBatch grounds every text with shared options. Results keep input order.
func (s *Service) GroundBatch(ctx context.Context, req *models.BatchGroundRequest) ([]models.GroundResponse, error) {
	start := time.Now()
	defer func() { s.metrics.ObserveRequest("ground_batch", time.Since(start)) }()
	req.Limit = s.limit(req.Limit)
	if err := req.Validate(); err != nil {
		return nil, err
	}
	snap := s.Snapshot()
	results, err := snap.Grounder.GroundBatch(ctx, req.Texts, grounding.GroundOptions{
		Organisms:  req.Organisms,
		Namespaces: req.Namespaces,
		Limit:      req.Limit,
	}, s.cfg.Grounding.BatchConcurrency)
	if err != nil {
		return nil, err
	}
	out := make([]models.GroundResponse, len(results))
	for i, matches := range results {
		out[i] = models.GroundResponse{Text: req.Texts[i], Matches: matches, Total: len(matches), Snapshot: snap.ID}
	}
	return out, nil
}

// Lookup returns the raw index hits for req.Text.
func (s *Service) Lookup(req *models.LookupRequest) ([]models.Term, error) {
	start := time.Now()
	defer func() { s.metrics.ObserveRequest("lookup", time.Since(start)) }()
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return s.Snapshot().Grounder.Lookup(req.Text), nil
}

// Disambiguate annotates req.Matches, or the grounding of req.Shortform when
// no matches are supplied.
func (s *Service) Disambiguate(ctx context.Context, req *models.DisambiguateRequest) ([]models.ScoredMatch, error) {
	start := time.Now()
	defer func() { s.metrics.ObserveRequest("disambiguate", time.Since(start)) }()
	if err := req.Validate(); err != nil {
		return nil, err
	}
	snap := s.Snapshot()
	matches := req.Matches
	if len(matches) == 0 {
		matches = s.ground(ctx, snap, req.Shortform, grounding.GroundOptions{Organisms: req.Organisms})
	}
	return snap.Disambiguator.Disambiguate(ctx, req.Shortform, matches, req.Context), nil
}

// Suggest returns up to n close index keys for text.
func (s *Service) Suggest(text string, n int) []string {
	if n <= 0 {
		n = suggestions
	}
	return s.Snapshot().Grounder.Suggest(text, n)
}

// Search runs a free-text entity search.
func (s *Service) Search(ctx context.Context, q *search.Query) (*search.Response, error) {
	start := time.Now()
	defer func() { s.metrics.ObserveRequest("search", time.Since(start)) }()
	return s.Snapshot().Search.Search(ctx, q)
}

// Models describes the loaded disambiguation models.
func (s *Service) Models() []disambig.ModelInfo {
	return s.Snapshot().Disambiguator.Registry().Models()
}

// Status summarizes the active snapshot.
type Status struct {
	Snapshot   string    `json:"snapshot"`
	LoadedAt   time.Time `json:"loaded_at"`
	TermsPath  string    `json:"terms_path"`
	Terms      int       `json:"terms"`
	Keys       int       `json:"keys"`
	Namespaces int       `json:"namespaces"`
	Organisms  int       `json:"organisms"`
	Stoplist   int       `json:"stoplist"`
	Models     int       `json:"models"`
	Semantic   bool      `json:"semantic_search"`
	DiskBytes  int64     `json:"disk_bytes"`
	Uptime     string    `json:"uptime"`
}

// Status reports what the active snapshot holds.
func (s *Service) Status() Status {
	snap := s.Snapshot()
	disk, err := storage.DiskUsageBytes(s.cfg.Resources.TermsPath, s.cfg.Resources.ModelsDir, s.cfg.Resources.TablesPath)
	if err != nil {
		s.logger.Debug("disk usage unavailable", zap.Error(err))
	}
	return Status{
		Snapshot:   snap.ID,
		LoadedAt:   snap.LoadedAt,
		TermsPath:  snap.TermsPath,
		Terms:      snap.Stats.Terms,
		Keys:       snap.Stats.Keys,
		Namespaces: len(snap.Stats.Namespaces),
		Organisms:  len(snap.Stats.Organisms),
		Stoplist:   snap.Stoplist,
		Models:     snap.Disambiguator.Registry().Len(),
		Semantic:   snap.Search.Semantic(),
		DiskBytes:  disk,
		Uptime:     time.Since(s.started).Truncate(time.Second).String(),
	}
}

// Close releases the active snapshot, the cache and the embedder.
func (s *Service) Close() error {
	var errs []error
	if snap := s.current.Swap(nil); snap != nil {
		errs = append(errs, snap.Close())
	}
	errs = append(errs, s.cache.Close(), s.embedder.Close())
	for _, err := range errs {
		if err != nil {
			return fmt.Errorf("close service: %w", err)
		}
	}
	return nil
}
