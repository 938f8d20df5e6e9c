package resources

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/hyperjump/termground/internal/errs"
	"github.com/hyperjump/termground/internal/normalize"
)

// LoadTables reads the stoplist and depluralization rules. An empty path
// gives an empty stoplist and the default rules.
func LoadTables(path string) (*normalize.Tables, error) {
	tables := &normalize.Tables{}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read tables: %w", err)
		}
		if err := yaml.Unmarshal(data, tables); err != nil {
			return nil, fmt.Errorf("%w: parse tables %s: %v", errs.ErrInvalidConfig, path, err)
		}
	}
	if len(tables.Depluralization) == 0 {
		tables.Depluralization = normalize.DefaultRules()
	}
	for i, r := range tables.Depluralization {
		if r.Suffix == "" {
			return nil, fmt.Errorf("%w: depluralization rule %d has no suffix", errs.ErrInvalidConfig, i)
		}
	}
	return tables, nil
}
