package embedding

import (
	"fmt"

	"github.com/hyperjump/termground/internal/errs"
)

// Kind names an embedder implementation.
type Kind string

const (
	// KindHashing is the built in feature hashing embedder.
	KindHashing Kind = "hashing"
	// KindONNX runs a sentence embedding model through ONNX Runtime (cgo builds only).
	KindONNX Kind = "onnx"
)

// Options configures New.
type Options struct {
	Kind       Kind
	ModelPath  string
	Dimensions int
	MaxTokens  int
	CacheSize  int
}

// New creates the configured embedder wrapped in a cache when CacheSize > 0.
func New(opts Options) (Embedder, error) {
	var e Embedder
	switch opts.Kind {
	case KindHashing, "":
		e = NewHashingEmbedder(opts.Dimensions)
	case KindONNX:
		onnx, err := NewONNXEmbedder(opts.ModelPath, opts.Dimensions, opts.MaxTokens)
		if err != nil {
			return nil, err
		}
		e = onnx
	default:
		return nil, fmt.Errorf("%w: unknown embedder %q (supported: hashing, onnx)", errs.ErrInvalidConfig, opts.Kind)
	}
	if opts.CacheSize > 0 {
		return NewCachedEmbedder(e, opts.CacheSize), nil
	}
	return e, nil
}
