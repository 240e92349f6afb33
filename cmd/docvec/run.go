package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"docvec/internal/logging"
	"docvec/internal/service"
	"docvec/internal/tui"
)

func runCmd(cfgPath *string) *cobra.Command {
	var (
		noTUI   bool
		logFile string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Train and evaluate every configured experiment",
		Long: `Train and evaluate every configured experiment, then write the summary CSV.

Configuration is loaded in the following order (later sources override earlier):
  1. Default values
  2. YAML config file
  3. .env file in the current directory
  4. Environment variables

Environment variables:
  DOCVEC_LOG_LEVEL    Log level: debug, info, warn, error (default: info)
  DOCVEC_STORE_TYPE   Dataset store: dir, badger (default: dir)
  DOCVEC_STORE_PATH   Dataset directory or database path (default: ../data)`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExperiments(*cfgPath, noTUI, logFile)
		},
	}

	cmd.Flags().BoolVar(&noTUI, "no-tui", false, "Log progress and print the summary instead of starting the terminal UI")
	cmd.Flags().StringVar(&logFile, "log-file", "docvec.log", "Log destination while the terminal UI is running")

	return cmd
}

func runExperiments(cfgPath string, noTUI bool, logFile string) error {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		return err
	}

	var outputs []string
	if !noTUI && logFile != "" {
		outputs = append(outputs, logFile)
	}
	logger, err := logging.New(cfg.LogLevel, outputs...)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	st, err := openStore(cfg.Store, logger)
	if err != nil {
		logger.Error("open store", zap.Error(err))
		return err
	}
	defer func() { _ = st.Close() }()

	trainer, err := service.NewTrainer(cfg.Model)
	if err != nil {
		return err
	}
	svc := service.NewExperimentService(st, trainer, cfg, logger)

	if noTUI {
		sum, err := svc.RunAll()
		if err != nil {
			logger.Error("run failed", zap.Error(err))
			return err
		}
		fmt.Println(tui.RenderSummary(sum))
		return nil
	}

	if err := svc.Prepare(); err != nil {
		logger.Error("prepare failed", zap.Error(err))
		return err
	}
	final, err := tea.NewProgram(tui.New(svc)).Run()
	if err != nil {
		return err
	}
	if m, ok := final.(tui.Model); ok && m.Err() != nil {
		return m.Err()
	}
	return nil
}
