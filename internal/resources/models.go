package resources

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"go.uber.org/zap"

	"github.com/hyperjump/termground/internal/disambig"
	"github.com/hyperjump/termground/internal/embedding"
)

// Model directories under the models root.
const (
	AcronymDir    = "adeft"
	SimilarityDir = "gilda"
)

// LoadModels builds a predictor for every JSON model under dir/adeft and
// dir/gilda. Missing directories contribute nothing; a malformed model
// fails the whole load. Similarity models are skipped when e is nil.
func LoadModels(ctx context.Context, dir string, e embedding.Embedder, logger *zap.Logger) ([]disambig.Predictor, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if dir == "" {
		return nil, nil
	}
	var predictors []disambig.Predictor

	acronymFiles, err := modelFiles(filepath.Join(dir, AcronymDir))
	if err != nil {
		return nil, err
	}
	for _, path := range acronymFiles {
		p, err := loadAcronym(path)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		predictors = append(predictors, p)
	}

	similarityFiles, err := modelFiles(filepath.Join(dir, SimilarityDir))
	if err != nil {
		return nil, err
	}
	if len(similarityFiles) > 0 && e == nil {
		logger.Warn("no embedder configured, skipping context similarity models", zap.Int("models", len(similarityFiles)))
		similarityFiles = nil
	}
	for _, path := range similarityFiles {
		p, err := loadSimilarity(ctx, path, e)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		predictors = append(predictors, p)
	}

	logger.Info("loaded disambiguation models",
		zap.String("dir", dir),
		zap.Int("adeft", len(acronymFiles)),
		zap.Int("gilda", len(similarityFiles)))
	return predictors, nil
}

func modelFiles(dir string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, err
	}
	sort.Strings(matches)
	return matches, nil
}

func loadAcronym(path string) (disambig.Predictor, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	m, err := disambig.DecodeAcronymModel(f)
	if err != nil {
		return nil, err
	}
	return disambig.NewAcronymClassifier(m)
}

func loadSimilarity(ctx context.Context, path string, e embedding.Embedder) (disambig.Predictor, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	m, err := disambig.DecodeSimilarityModel(f)
	if err != nil {
		return nil, err
	}
	return disambig.NewContextSimilarity(ctx, m, e)
}
