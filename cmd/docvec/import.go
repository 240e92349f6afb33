package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"docvec/internal/logging"
	"docvec/internal/service"
)

func importCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "import file.json [file.json ...]",
		Short: "Copy JSON corpora and pairing sets into the dataset store",
		Long: `Copy JSON corpora and pairing sets into the configured dataset store.

Each file is stored under its base name without extension, so
ref_train_pcorpus.json becomes the dataset ref_train_pcorpus.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*cfgPath)
			if err != nil {
				return err
			}
			logger, err := logging.New(cfg.LogLevel)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			st, err := openStore(cfg.Store, logger)
			if err != nil {
				return err
			}
			defer func() { _ = st.Close() }()

			names, err := service.ImportFiles(st, args)
			for _, n := range names {
				logger.Info("dataset imported", zap.String("name", n), zap.String("store", cfg.Store.Type))
			}
			if err != nil {
				return err
			}
			fmt.Printf("imported %d dataset(s) into %s\n", len(names), cfg.Store.Path)
			return nil
		},
	}
}

func listCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List datasets in the dataset store",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*cfgPath)
			if err != nil {
				return err
			}
			logger, err := logging.New(cfg.LogLevel)
			if err != nil {
				return err
			}
			st, err := openStore(cfg.Store, logger)
			if err != nil {
				return err
			}
			defer func() { _ = st.Close() }()

			names, err := st.Names()
			if err != nil {
				return err
			}
			for _, n := range names {
				fmt.Println(n)
			}
			return nil
		},
	}
}
