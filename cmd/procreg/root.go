package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/spachava753/procreg/internal/catalog"
	"github.com/spachava753/procreg/internal/config"
	"github.com/spachava753/procreg/internal/models"
	"github.com/spachava753/procreg/internal/registry"
	"github.com/spachava753/procreg/internal/remote"
)

// errInstancesFailed makes the process exit non-zero after the affected
// instances have already been printed.
var errInstancesFailed = errors.New("one or more instances ended in error")

var (
	cfgFile  string
	logLevel string
	cfg      models.Config
)

var rootCmd = &cobra.Command{
	Use:   "procreg",
	Short: "Start, stop and track database processes on a remote service",
	Long: `procreg keeps a local registry of database processes (vector stores, graph
stores, key-value stores, ...) launched through a remote process service, and
reconciles it with what the service reports.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: initConfig,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: ./"+config.DefaultConfigFile+")")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"log level: debug, info, warn or error (overrides config)")
}

func initConfig(cmd *cobra.Command, args []string) error {
	loaded, err := config.LoadConfigFile(cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if cmd.Flags().Changed("log-level") {
		loaded.LogLevel = logLevel
	}

	level, err := config.ParseLogLevel(loaded.LogLevel)
	if err != nil {
		return err
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	cfg = loaded
	return nil
}

func loadCatalog() (*catalog.Catalog, error) {
	cat, err := catalog.Load(cfg.Catalog.Path)
	if err != nil {
		return nil, fmt.Errorf("loading catalog: %w", err)
	}
	return cat, nil
}

func newRegistry() (*registry.Registry, error) {
	cat, err := loadCatalog()
	if err != nil {
		return nil, err
	}
	client := remote.New(remote.Config{
		BaseURL: cfg.Remote.BaseURL,
		Timeout: cfg.Remote.RequestTimeout(),
	})
	return registry.New(cat, client, slog.Default()), nil
}
