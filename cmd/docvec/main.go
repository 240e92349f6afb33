// Package main is the entry point for the docvec CLI.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"docvec/internal/config"
	"docvec/internal/store"
	"docvec/internal/store/badger"
	"docvec/internal/store/dir"
)

// Version information set via ldflags during build.
var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var cfgPath string

	cmd := &cobra.Command{
		Use:           "docvec",
		Short:         "Train and compare document embedding models",
		Long:          `docvec trains document embedding models on tagged corpora, checks that each model recognises its own training documents, and tests whether related document pairs score differently from unrelated ones.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&cfgPath, "config", "", "Path to YAML config file (default: ./docvec.yaml or ~/.config/docvec/config.yaml)")

	cmd.AddCommand(runCmd(&cfgPath))
	cmd.AddCommand(importCmd(&cfgPath))
	cmd.AddCommand(listCmd(&cfgPath))
	cmd.AddCommand(versionCmd())

	return cmd
}

// loadConfig reads .env (if present) and then the YAML config.
func loadConfig(path string) (*config.AppConfig, error) {
	_ = godotenv.Load()

	var (
		cfg *config.AppConfig
		err error
	)
	if path == "" {
		cfg, _, err = config.LoadDefault()
	} else {
		cfg, err = config.Load(path)
	}
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func openStore(cfg config.StoreConfig, logger *zap.Logger) (store.Store, error) {
	switch cfg.Type {
	case "dir", "":
		return dir.New(cfg.Path), nil
	case "badger":
		st, err := badger.Open(badger.Config{Path: cfg.Path, Logger: logger.Named("badger")})
		if err != nil {
			return nil, err
		}
		return st, nil
	default:
		return nil, fmt.Errorf("unknown store type: %s", cfg.Type)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("docvec version %s\n", version)
			fmt.Printf("  commit: %s\n", commit)
		},
	}
}
