package main

import (
	"compress/gzip"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hyperjump/termground/internal/resources"
	"github.com/hyperjump/termground/internal/storage"
)

func newImportCmd(a *app) *cobra.Command {
	var (
		dbPath     string
		format     string
		appendMode bool
	)
	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Load a TSV or XLSX term table into the SQLite term store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if dbPath == "" {
				dbPath = a.cfg.Resources.DatabasePath
			}
			return runImport(cmd.Context(), a, args[0], format, dbPath, appendMode, cmd)
		},
	}
	cmd.Flags().StringVar(&dbPath, "db", "", "SQLite database path (default from config)")
	cmd.Flags().StringVar(&format, "format", "", "input format: tsv or xlsx (default from extension)")
	cmd.Flags().BoolVar(&appendMode, "append", false, "append to the existing terms instead of replacing them")
	return cmd
}

func runImport(ctx context.Context, a *app, src, format, dbPath string, appendMode bool, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if format == "" {
		detected, err := resources.DetectFormat(src)
		if err != nil {
			return err
		}
		format = detected
	}
	if format == resources.FormatSQLite {
		return fmt.Errorf("%s is already a term store", src)
	}
	start := time.Now()
	terms, err := resources.LoadTerms(ctx, src, format)
	if err != nil {
		return err
	}
	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	if appendMode {
		err = store.AppendTerms(ctx, terms)
	} else {
		err = store.ReplaceTerms(ctx, terms, storage.Import{
			ID:        uuid.NewString(),
			Source:    src,
			Format:    format,
			Terms:     int64(len(terms)),
			CreatedAt: time.Now().UTC(),
		})
	}
	if err != nil {
		return err
	}
	total, err := store.CountTerms(ctx)
	if err != nil {
		return err
	}
	a.logger.Info("terms imported",
		zap.String("source", src),
		zap.String("db", dbPath),
		zap.Int("read", len(terms)),
		zap.Int64("total", total),
		zap.Duration("took", time.Since(start)))
	fmt.Fprintf(cmd.OutOrStdout(), "imported %d terms into %s (%d total)\n", len(terms), dbPath, total)
	return nil
}

func newExportCmd(a *app) *cobra.Command {
	var from string
	cmd := &cobra.Command{
		Use:   "export FILE",
		Short: "Write the term table as TSV (.tsv, .tsv.gz) or XLSX (.xlsx)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			if from == "" {
				from = a.cfg.Resources.TermsPath
			}
			terms, err := resources.LoadTerms(ctx, from, "")
			if err != nil {
				return err
			}
			dst := args[0]
			if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
				return err
			}
			f, err := os.Create(dst)
			if err != nil {
				return err
			}
			switch lower := strings.ToLower(dst); {
			case strings.HasSuffix(lower, ".xlsx"):
				err = resources.WriteXLSX(f, terms)
			case strings.HasSuffix(lower, ".gz"):
				gz := gzip.NewWriter(f)
				err = resources.WriteTSV(gz, terms)
				if cerr := gz.Close(); err == nil {
					err = cerr
				}
			default:
				err = resources.WriteTSV(f, terms)
			}
			if cerr := f.Close(); err == nil {
				err = cerr
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "exported %d terms to %s\n", len(terms), dst)
			return nil
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "source term table (default resources.terms_path)")
	return cmd
}
