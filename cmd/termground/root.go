package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hyperjump/termground/internal/cli"
	"github.com/hyperjump/termground/internal/config"
	"github.com/hyperjump/termground/internal/engine"
	"github.com/hyperjump/termground/pkg/utils"
)

const defaultConfigPath = "/usr/local/etc/termground/config.yaml"

// app carries the state shared by every subcommand.
type app struct {
	configPath string
	debug      bool
	output     string

	cfg      *config.Config
	resolved string
	format   cli.OutputFormat
	logger   *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "termground",
		Short:         "Ground biomedical entity names to database identifiers",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init()
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", defaultConfigPath, "config file path")
	root.PersistentFlags().BoolVar(&a.debug, "debug", false, "enable debug logging")
	root.PersistentFlags().StringVarP(&a.output, "output", "o", "text", "output format: text or json")

	root.AddCommand(
		newServerCmd(a),
		newGroundCmd(a),
		newLookupCmd(a),
		newDisambiguateCmd(a),
		newSuggestCmd(a),
		newSearchCmd(a),
		newImportCmd(a),
		newExportCmd(a),
		newStatusCmd(a),
		newModelsCmd(a),
		newConfigCmd(a),
		newVersionCmd(),
	)
	return root
}

func (a *app) init() error {
	format, err := cli.ParseFormat(a.output)
	if err != nil {
		return err
	}
	a.format = format
	cfg, resolved, err := loadConfig(a.configPath)
	if err != nil {
		return err
	}
	a.cfg, a.resolved = cfg, resolved
	logger, err := utils.NewLogger(cfg.Debug || a.debug)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	a.logger = logger
	a.logger.Debug("config loaded", zap.String("config_path", resolved))
	return nil
}

// loadConfig loads config from path. For the default path it first looks for
// config.yaml in the working directory; when neither exists the built-in
// defaults are used.
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, err := os.Getwd(); err == nil {
			local := filepath.Join(cwd, "config.yaml")
			if _, err := os.Stat(local); err == nil {
				cfg, err := config.Load(local)
				return cfg, local, err
			}
		}
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			cfg := &config.Config{}
			config.ApplyDefaults(cfg)
			return cfg, "", config.Validate(cfg)
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

// openService builds the engine from the loaded resources.
func (a *app) openService(ctx context.Context) (*engine.Service, error) {
	svc, err := engine.NewService(ctx, a.cfg, engine.WithLogger(a.logger))
	if err != nil {
		return nil, fmt.Errorf("load resources: %w", err)
	}
	return svc, nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		// Skip config loading.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "termground version %s\n", version)
		},
	}
}
