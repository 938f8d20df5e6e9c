package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hyperjump/termground/internal/cli"
	"github.com/hyperjump/termground/internal/config"
	"github.com/hyperjump/termground/internal/engine"
	"github.com/hyperjump/termground/internal/storage"
)

func newStatusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Load the resources and summarize what they contain",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withService(cmd, a, func(ctx context.Context, svc *engine.Service) error {
				if err := cli.WriteStatus(cmd.OutOrStdout(), svc.Status(), a.format); err != nil {
					return err
				}
				if a.format == cli.OutputText {
					writeImportInfo(ctx, cmd, a.cfg.Resources.DatabasePath)
				}
				return nil
			})
		},
	}
}

// writeImportInfo reports the last import into the term store, if there is one.
func writeImportInfo(ctx context.Context, cmd *cobra.Command, dbPath string) {
	if du, _ := storage.DiskUsageBytes(dbPath); du == 0 {
		return
	}
	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return
	}
	defer store.Close()
	imp, err := store.LatestImport(ctx)
	if err != nil {
		return
	}
	fmt.Fprintf(cmd.OutOrStdout(), "last import: %s (%d terms from %s at %s)\n",
		imp.ID, imp.Terms, imp.Source, imp.CreatedAt.Format("2006-01-02 15:04:05"))
}

func newModelsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List the loaded disambiguation models",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withService(cmd, a, func(_ context.Context, svc *engine.Service) error {
				return cli.WriteModels(cmd.OutOrStdout(), svc.Models(), a.format)
			})
		},
	}
}

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or write the effective configuration",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if a.resolved != "" {
				fmt.Fprintf(cmd.ErrOrStderr(), "# loaded from %s\n", a.resolved)
			}
			return config.Write(cmd.OutOrStdout(), a.cfg)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "init PATH",
		Short: "Write the effective configuration to PATH",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.Save(args[0], a.cfg); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", args[0])
			return nil
		},
	})
	return cmd
}
