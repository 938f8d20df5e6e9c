// Package resources loads term tables, normalization tables and
// disambiguation models from disk.
package resources

import (
	"bufio"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/hyperjump/termground/internal/errs"
	"github.com/hyperjump/termground/internal/models"
	"github.com/hyperjump/termground/internal/storage"
)

// Term table formats.
const (
	FormatTSV    = "tsv"
	FormatXLSX   = "xlsx"
	FormatSQLite = "sqlite"
)

// Columns is the column order of TSV and XLSX term tables.
var Columns = []string{"norm_text", "text", "db", "id", "entry_name", "status", "source", "organism"}

// minColumns allows tables without the trailing organism column.
const minColumns = 7

// DetectFormat infers a term table format from the file name.
func DetectFormat(path string) (string, error) {
	name := strings.TrimSuffix(strings.ToLower(path), ".gz")
	switch filepath.Ext(name) {
	case ".tsv", ".txt":
		return FormatTSV, nil
	case ".xlsx":
		return FormatXLSX, nil
	case ".db", ".sqlite", ".sqlite3":
		return FormatSQLite, nil
	}
	return "", fmt.Errorf("%w: cannot infer term format of %s", errs.ErrUnsupportedFormat, path)
}

// LoadTerms reads all term records from path. An empty format is inferred.
func LoadTerms(ctx context.Context, path, format string) ([]models.Term, error) {
	if format == "" {
		f, err := DetectFormat(path)
		if err != nil {
			return nil, err
		}
		format = f
	}
	switch strings.ToLower(format) {
	case FormatTSV:
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open terms: %w", err)
		}
		defer f.Close()
		return ReadTSV(f)
	case FormatXLSX:
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open terms: %w", err)
		}
		defer f.Close()
		return ReadXLSX(f)
	case FormatSQLite:
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("open terms: %w", err)
		}
		store, err := storage.NewSQLiteStorage(path)
		if err != nil {
			return nil, err
		}
		defer store.Close()
		return store.AllTerms(ctx)
	}
	return nil, fmt.Errorf("%w: term format %q", errs.ErrUnsupportedFormat, format)
}

// ReadTSV parses a tab separated term table, gzip compressed or plain. A
// header row naming the columns is optional. Fields are taken literally:
// "NA", "None" and "" are ordinary strings.
func ReadTSV(r io.Reader) ([]models.Term, error) {
	br := bufio.NewReader(r)
	if magic, err := br.Peek(2); err == nil && magic[0] == 0x1f && magic[1] == 0x8b {
		gz, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("gunzip terms: %w", err)
		}
		defer gz.Close()
		br = bufio.NewReader(gz)
	}

	scanner := bufio.NewScanner(br)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)
	var terms []models.Term
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSuffix(scanner.Text(), "\r")
		if text == "" {
			continue
		}
		fields := strings.Split(text, "\t")
		if line == 1 && isHeader(fields) {
			continue
		}
		t, err := parseRow(fields)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		terms = append(terms, t)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read terms: %w", err)
	}
	return terms, nil
}

// WriteTSV writes terms with a header row.
func WriteTSV(w io.Writer, terms []models.Term) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(strings.Join(Columns, "\t") + "\n"); err != nil {
		return err
	}
	for i, t := range terms {
		row := termRow(t)
		for _, f := range row {
			if strings.ContainsAny(f, "\t\n") {
				return fmt.Errorf("term %d: %w: field %q contains a tab or newline", i, errs.ErrMalformedTerm, f)
			}
		}
		if _, err := bw.WriteString(strings.Join(row, "\t") + "\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// ReadXLSX reads terms from the first sheet of a workbook.
func ReadXLSX(r io.Reader) ([]models.Term, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open Excel: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("get rows for sheet %q: %w", sheets[0], err)
	}
	var terms []models.Term
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		if i == 0 && isHeader(row) {
			continue
		}
		// GetRows drops trailing empty cells.
		for len(row) < len(Columns) {
			row = append(row, "")
		}
		t, err := parseRow(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		terms = append(terms, t)
	}
	return terms, nil
}

// WriteXLSX writes terms to a single sheet workbook with a header row.
func WriteXLSX(w io.Writer, terms []models.Term) error {
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	header := make([]interface{}, len(Columns))
	for i, c := range Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	for i, t := range terms {
		row := termRow(t)
		cells := make([]interface{}, len(row))
		for j, v := range row {
			cells[j] = v
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
			return err
		}
	}
	return f.Write(w)
}

func isHeader(fields []string) bool {
	return len(fields) > 0 && strings.TrimPrefix(fields[0], "\ufeff") == Columns[0]
}

func parseRow(fields []string) (models.Term, error) {
	if len(fields) < minColumns {
		return models.Term{}, fmt.Errorf("%w: expected at least %d columns, got %d", errs.ErrMalformedTerm, minColumns, len(fields))
	}
	t := models.Term{
		NormText:  fields[0],
		Text:      fields[1],
		Namespace: fields[2],
		ID:        fields[3],
		EntryName: fields[4],
		Status:    models.Status(fields[5]),
		Source:    fields[6],
	}
	if len(fields) > 7 {
		t.Organism = fields[7]
	}
	return t, t.Validate()
}

func termRow(t models.Term) []string {
	return []string{t.NormText, t.Text, t.Namespace, t.ID, t.EntryName, string(t.Status), t.Source, t.Organism}
}
