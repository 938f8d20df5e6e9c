package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiskUsageBytes(t *testing.T) {
	dir := t.TempDir()
	terms := filepath.Join(dir, "terms.tsv")
	require.NoError(t, os.WriteFile(terms, []byte("hello"), 0644))

	models := filepath.Join(dir, "models", "adeft")
	require.NoError(t, os.MkdirAll(models, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(models, "IR.json"), []byte("ab"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(models, "ER.json"), []byte("c"), 0644))

	cases := []struct {
		name  string
		paths []string
		want  int64
	}{
		{"file", []string{terms}, 5},
		{"nested dir", []string{filepath.Join(dir, "models")}, 3},
		{"file and dir", []string{terms, models}, 8},
		{"missing skipped", []string{terms, filepath.Join(dir, "nope"), models}, 8},
		{"empty skipped", []string{"", terms}, 5},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := DiskUsageBytes(tc.paths...)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}
