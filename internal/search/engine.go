package search

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/hyperjump/termground/internal/embedding"
	"github.com/hyperjump/termground/internal/keyword"
	"github.com/hyperjump/termground/internal/vector"
)

const (
	keywordWeight  = 0.7
	semanticWeight = 0.3
	embedBatchSize = 256
)

// Options tunes the keyword leg and candidate pool.
type Options struct {
	NameBoost float64
	Fuzziness int
	// TopK is the candidate count fetched from each leg before fusion.
	TopK   int
	Logger *zap.Logger
}

// Engine runs entity search. The semantic leg is active only when the engine
// was built with an embedder.
type Engine struct {
	keywordIndex keyword.KeywordIndex
	embedder     embedding.Embedder
	vectorIndex  vector.VectorIndex
	entities     map[string]keyword.EntityDocument
	opts         Options
}

// NewEngine creates an engine over empty indexes. embedder and vectorIndex
// may both be nil to disable the semantic leg.
func NewEngine(kw keyword.KeywordIndex, embedder embedding.Embedder, vectorIndex vector.VectorIndex, opts Options) *Engine {
	if opts.TopK <= 0 {
		opts.TopK = 100
	}
	if opts.NameBoost == 0 {
		opts.NameBoost = 2.0
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if embedder == nil || vectorIndex == nil {
		embedder, vectorIndex = nil, nil
	}
	return &Engine{
		keywordIndex: kw,
		embedder:     embedder,
		vectorIndex:  vectorIndex,
		entities:     make(map[string]keyword.EntityDocument),
		opts:         opts,
	}
}

// Index adds entity documents to both legs. It must complete before Search is called.
func (e *Engine) Index(ctx context.Context, docs []keyword.EntityDocument) error {
	for _, d := range docs {
		e.entities[d.ID] = d
	}
	if err := e.keywordIndex.IndexAll(ctx, docs); err != nil {
		return fmt.Errorf("keyword index: %w", err)
	}
	if e.embedder == nil {
		return nil
	}
	for start := 0; start < len(docs); start += embedBatchSize {
		end := min(start+embedBatchSize, len(docs))
		ids := make([]string, 0, end-start)
		texts := make([]string, 0, end-start)
		for _, d := range docs[start:end] {
			ids = append(ids, d.ID)
			texts = append(texts, d.Name+" "+strings.ReplaceAll(d.Synonyms, " | ", " "))
		}
		vecs, err := e.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return fmt.Errorf("embed entities: %w", err)
		}
		if err := e.vectorIndex.Add(ctx, ids, vecs); err != nil {
			return fmt.Errorf("vector index: %w", err)
		}
	}
	e.opts.Logger.Debug("entity search index built",
		zap.Int("entities", len(docs)),
		zap.Bool("semantic", e.embedder != nil))
	return nil
}

// Semantic reports whether the embedding leg is available.
func (e *Engine) Semantic() bool {
	return e.embedder != nil
}

// Search runs the keyword leg, and the semantic leg when requested and
// available, then fuses them.
func (e *Engine) Search(ctx context.Context, q *Query) (*Response, error) {
	startTime := time.Now()
	if err := ProcessQuery(q); err != nil {
		return nil, err
	}
	semantic := q.Semantic && e.embedder != nil

	var (
		keywordResults  []*keyword.KeywordResult
		semanticResults []*vector.VectorResult
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		opts := &keyword.SearchOptions{NameBoost: e.opts.NameBoost, Namespace: q.Namespace}
		if q.Fuzzy {
			opts.FuzzyEnabled = true
			opts.Fuzziness = e.opts.Fuzziness
		}
		results, err := e.keywordIndex.Search(gctx, q.Text, e.opts.TopK, opts)
		if err != nil {
			return fmt.Errorf("keyword search failed: %w", err)
		}
		keywordResults = results
		return nil
	})
	if semantic {
		g.Go(func() error {
			queryEmbedding, err := e.embedder.Embed(gctx, q.Text)
			if err != nil {
				return fmt.Errorf("embedding failed: %w", err)
			}
			results, err := e.vectorIndex.Search(gctx, queryEmbedding, e.opts.TopK)
			if err != nil {
				return fmt.Errorf("vector search failed: %w", err)
			}
			semanticResults = results
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	kwWeight, semWeight := 1.0, 0.0
	if semantic {
		kwWeight, semWeight = keywordWeight, semanticWeight
	}
	fused := Fuse(NormalizeKeywordScores(keywordResults), NormalizeSemanticScores(semanticResults), kwWeight, semWeight)

	response := &Response{Query: q.Text, Results: make([]Result, 0, min(q.Limit, len(fused)))}
	for _, f := range fused {
		doc, ok := e.entities[f.ID]
		if !ok || (q.Namespace != "" && doc.Namespace != q.Namespace) || f.Score <= 0 {
			continue
		}
		response.Total++
		if len(response.Results) < q.Limit {
			response.Results = append(response.Results, Result{
				Entity:        doc,
				Score:         f.Score,
				KeywordScore:  f.KeywordScore,
				SemanticScore: f.SemanticScore,
				Rank:          len(response.Results) + 1,
			})
		}
	}
	response.QueryTime = time.Since(startTime).Milliseconds()
	return response, nil
}

// Close releases both indexes.
func (e *Engine) Close() error {
	var err error
	if e.vectorIndex != nil {
		err = e.vectorIndex.Close()
	}
	if cerr := e.keywordIndex.Close(); cerr != nil {
		err = cerr
	}
	return err
}
