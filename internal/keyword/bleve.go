package keyword

import (
	"context"
	"fmt"
	"os"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"
	blevequery "github.com/blevesearch/bleve/v2/search/query"
)

const batchSize = 1000

// BleveIndex implements KeywordIndex using Bleve.
type BleveIndex struct {
	index bleve.Index
}

func entityMapping() *mapping.IndexMappingImpl {
	im := bleve.NewIndexMapping()
	docMapping := bleve.NewDocumentMapping()

	// standard analyzer: lowercase and tokenize without stemming, so gene
	// symbols are not mangled
	text := bleve.NewTextFieldMapping()
	text.Analyzer = standard.Name
	docMapping.AddFieldMappingsAt("name", text)
	docMapping.AddFieldMappingsAt("synonyms", text)

	kw := bleve.NewKeywordFieldMapping()
	docMapping.AddFieldMappingsAt("namespace", kw)
	docMapping.AddFieldMappingsAt("organism", kw)

	im.AddDocumentMapping("entity", docMapping)
	im.DefaultType = "entity"
	im.DefaultMapping = docMapping
	return im
}

// NewBleveIndex opens or creates an index at path. An empty path creates an
// in-memory index, which is what a snapshot rebuilt on every reload uses.
func NewBleveIndex(path string) (*BleveIndex, error) {
	if path == "" {
		index, err := bleve.NewMemOnly(entityMapping())
		if err != nil {
			return nil, fmt.Errorf("failed to create in-memory Bleve index: %w", err)
		}
		return &BleveIndex{index: index}, nil
	}
	if _, err := os.Stat(path); err == nil {
		index, openErr := bleve.Open(path)
		if openErr != nil {
			return nil, fmt.Errorf("failed to open Bleve index: %w", openErr)
		}
		return &BleveIndex{index: index}, nil
	}
	index, err := bleve.New(path, entityMapping())
	if err != nil {
		return nil, fmt.Errorf("failed to create Bleve index: %w", err)
	}
	return &BleveIndex{index: index}, nil
}

// IndexAll indexes docs in batches, keyed by their grounding.
func (b *BleveIndex) IndexAll(ctx context.Context, docs []EntityDocument) error {
	batch := b.index.NewBatch()
	for i, d := range docs {
		if err := ctx.Err(); err != nil {
			return err
		}
		fields := map[string]interface{}{
			"name":      d.Name,
			"synonyms":  d.Synonyms,
			"namespace": d.Namespace,
			"organism":  d.Organism,
		}
		if err := batch.Index(d.ID, fields); err != nil {
			return fmt.Errorf("failed to index %s: %w", d.ID, err)
		}
		if (i+1)%batchSize == 0 {
			if err := b.index.Batch(batch); err != nil {
				return fmt.Errorf("Bleve batch failed: %w", err)
			}
			batch = b.index.NewBatch()
		}
	}
	if batch.Size() > 0 {
		if err := b.index.Batch(batch); err != nil {
			return fmt.Errorf("Bleve batch failed: %w", err)
		}
	}
	return nil
}

// Search matches query against entry names and synonyms. Name matches are
// weighted by opts.NameBoost (default 2).
func (b *BleveIndex) Search(ctx context.Context, query string, limit int, opts *SearchOptions) ([]*KeywordResult, error) {
	nameBoost := 2.0
	fuzziness := 0
	namespace := ""
	if opts != nil {
		if opts.NameBoost > 0 {
			nameBoost = opts.NameBoost
		}
		if opts.FuzzyEnabled {
			fuzziness = 2
			if opts.Fuzziness > 0 {
				fuzziness = opts.Fuzziness
			}
		}
		namespace = opts.Namespace
	}
	if limit <= 0 {
		limit = 10
	}

	q := blevequery.Query(bleve.NewDisjunctionQuery(
		fieldQuery(query, "name", nameBoost, fuzziness),
		fieldQuery(query, "synonyms", 1.0, fuzziness),
	))
	if namespace != "" {
		nsq := bleve.NewTermQuery(namespace)
		nsq.SetField("namespace")
		q = bleve.NewConjunctionQuery(q, nsq)
	}

	req := bleve.NewSearchRequest(q)
	req.Size = limit
	results, err := b.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("Bleve search failed: %w", err)
	}
	out := make([]*KeywordResult, len(results.Hits))
	for i, hit := range results.Hits {
		out[i] = &KeywordResult{ID: hit.ID, Score: hit.Score}
	}
	return out, nil
}

// fieldQuery builds a match query on field; with fuzziness each token is
// matched fuzzily and any token may match.
func fieldQuery(query, field string, boost float64, fuzziness int) blevequery.Query {
	terms := tokenizeQuery(query)
	if fuzziness == 0 || len(terms) == 0 {
		mq := bleve.NewMatchQuery(query)
		mq.SetField(field)
		mq.SetBoost(boost)
		return mq
	}
	queries := make([]blevequery.Query, 0, len(terms))
	for _, term := range terms {
		fq := bleve.NewFuzzyQuery(term)
		fq.SetFuzziness(fuzziness)
		fq.SetField(field)
		fq.SetBoost(boost)
		queries = append(queries, fq)
	}
	if len(queries) == 1 {
		return queries[0]
	}
	return bleve.NewDisjunctionQuery(queries...)
}

// DocCount returns the total number of entities in the index.
func (b *BleveIndex) DocCount() (uint64, error) {
	return b.index.DocCount()
}

// Close closes the Bleve index.
func (b *BleveIndex) Close() error {
	return b.index.Close()
}
