package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hyperjump/termground/internal/cli"
	"github.com/hyperjump/termground/internal/engine"
	"github.com/hyperjump/termground/internal/extract"
	"github.com/hyperjump/termground/internal/models"
	"github.com/hyperjump/termground/internal/search"
)

// contextFlags are shared by commands that accept disambiguation context.
type contextFlags struct {
	text   string
	file   string
	window int
}

func (c *contextFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&c.text, "context", "", "surrounding text used for disambiguation")
	cmd.Flags().StringVar(&c.file, "context-file", "", "read context from a .txt, .md, .pdf, .docx, .odt or .rtf file")
	cmd.Flags().IntVar(&c.window, "window", 0, "keep only this many words around each mention of the shortform (0 = whole text)")
}

// resolve returns the context for shortform, reading and windowing the file when given.
func (c *contextFlags) resolve(shortform string) (string, error) {
	ctxText := c.text
	if c.file != "" {
		text, err := extract.NewExtractor().Extract(c.file)
		if err != nil {
			return "", fmt.Errorf("read context file: %w", err)
		}
		ctxText = strings.TrimSpace(ctxText + "\n" + text)
	}
	if c.window > 0 {
		ctxText = extract.Window(ctxText, shortform, c.window)
	}
	return ctxText, nil
}

// withService opens the engine, runs fn, and closes the engine.
func withService(cmd *cobra.Command, a *app, fn func(ctx context.Context, svc *engine.Service) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	svc, err := a.openService(ctx)
	if err != nil {
		return err
	}
	defer svc.Close()
	return fn(ctx, svc)
}

func newGroundCmd(a *app) *cobra.Command {
	var (
		cf         contextFlags
		organisms  []string
		namespaces []string
		limit      int
		rerank     bool
	)
	cmd := &cobra.Command{
		Use:   "ground TEXT [TEXT...]",
		Short: "Ground entity names to ranked identifiers",
		Example: `  termground ground KRAS
  termground ground IR --context "the insulin receptor (IR) binds insulin" --rerank
  termground ground BRAF NRAS "interferon gamma" -o json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd, a, func(ctx context.Context, svc *engine.Service) error {
				if len(args) > 1 {
					out, err := svc.GroundBatch(ctx, &models.BatchGroundRequest{
						Texts:      args,
						Organisms:  organisms,
						Namespaces: namespaces,
						Limit:      limit,
					})
					if err != nil {
						return err
					}
					return cli.WriteBatch(cmd.OutOrStdout(), out, a.format)
				}
				ctxText, err := cf.resolve(args[0])
				if err != nil {
					return err
				}
				resp, err := svc.Ground(ctx, &models.GroundRequest{
					Text:       args[0],
					Context:    ctxText,
					Organisms:  organisms,
					Namespaces: namespaces,
					Limit:      limit,
					Rerank:     rerank,
				})
				if err != nil {
					return err
				}
				return cli.WriteGround(cmd.OutOrStdout(), resp, a.format)
			})
		},
	}
	cf.register(cmd)
	cmd.Flags().StringSliceVar(&organisms, "organism", nil, "taxonomy codes in priority order (default from config)")
	cmd.Flags().StringSliceVar(&namespaces, "namespace", nil, "only return matches from these namespaces")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "maximum matches per text")
	cmd.Flags().BoolVar(&rerank, "rerank", false, "order matches by disambiguation verdict")
	return cmd
}

func newLookupCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "lookup TEXT",
		Short: "Show the raw index terms for a text, unscored",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd, a, func(_ context.Context, svc *engine.Service) error {
				terms, err := svc.Lookup(&models.LookupRequest{Text: args[0]})
				if err != nil {
					return err
				}
				return cli.WriteTerms(cmd.OutOrStdout(), terms, a.format)
			})
		},
	}
}

func newDisambiguateCmd(a *app) *cobra.Command {
	var (
		cf        contextFlags
		organisms []string
	)
	cmd := &cobra.Command{
		Use:   "disambiguate SHORTFORM",
		Short: "Ground a shortform and annotate the candidates using context",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctxText, err := cf.resolve(args[0])
			if err != nil {
				return err
			}
			if ctxText == "" {
				return fmt.Errorf("--context or --context-file is required")
			}
			return withService(cmd, a, func(ctx context.Context, svc *engine.Service) error {
				matches, err := svc.Disambiguate(ctx, &models.DisambiguateRequest{
					Shortform: args[0],
					Context:   ctxText,
					Organisms: organisms,
				})
				if err != nil {
					return err
				}
				return cli.WriteMatches(cmd.OutOrStdout(), matches, a.format)
			})
		},
	}
	cf.register(cmd)
	cmd.Flags().StringSliceVar(&organisms, "organism", nil, "taxonomy codes in priority order (default from config)")
	return cmd
}

func newSuggestCmd(a *app) *cobra.Command {
	var n int
	cmd := &cobra.Command{
		Use:   "suggest TEXT",
		Short: "Suggest index keys close to a misspelled name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd, a, func(_ context.Context, svc *engine.Service) error {
				return cli.WriteSuggestions(cmd.OutOrStdout(), svc.Suggest(args[0], n), a.format)
			})
		},
	}
	cmd.Flags().IntVarP(&n, "limit", "n", 5, "maximum suggestions")
	return cmd
}

func newSearchCmd(a *app) *cobra.Command {
	var q search.Query
	cmd := &cobra.Command{
		Use:   "search QUERY...",
		Short: "Free-text search over entity names and synonyms",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q.Text = strings.Join(args, " ")
			return withService(cmd, a, func(ctx context.Context, svc *engine.Service) error {
				resp, err := svc.Search(ctx, &q)
				if err != nil {
					return err
				}
				// Retry with typo tolerance before reporting nothing.
				if resp.Total == 0 && !q.Fuzzy {
					q.Fuzzy = true
					if fuzzy, ferr := svc.Search(ctx, &q); ferr == nil && fuzzy.Total > 0 {
						resp = fuzzy
					}
				}
				return cli.WriteSearch(cmd.OutOrStdout(), resp, a.format)
			})
		},
	}
	cmd.Flags().IntVarP(&q.Limit, "limit", "n", 10, "maximum results")
	cmd.Flags().StringVar(&q.Namespace, "namespace", "", "restrict to one namespace")
	cmd.Flags().BoolVar(&q.Fuzzy, "fuzzy", false, "tolerate typos")
	cmd.Flags().BoolVar(&q.Semantic, "semantic", false, "add embedding similarity (requires search.semantic_enabled)")
	return cmd
}
