package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"docvec/internal/config"
	"docvec/internal/domain"
	"docvec/internal/embedding/doc2vec"
	"docvec/internal/embedding/tfidf"
	"docvec/internal/evaluation"
	"docvec/internal/report"
	"docvec/internal/store"
)

// NewTrainer builds the trainer selected in the model config.
func NewTrainer(cfg config.ModelConfig) (domain.Trainer, error) {
	switch cfg.Trainer {
	case "doc2vec", "":
		return doc2vec.NewTrainer(doc2vec.Config{
			Window:   cfg.Window,
			Negative: cfg.Negative,
			Alpha:    cfg.Alpha,
			MinAlpha: cfg.MinAlpha,
			Seed:     cfg.Seed,
		}), nil
	case "tfidf":
		return tfidf.NewTrainer(), nil
	default:
		return nil, fmt.Errorf("unknown trainer: %s", cfg.Trainer)
	}
}

// ModelOptions converts the config into Modeler defaults. VectorSize is left
// for each experiment to set.
func ModelOptions(cfg *config.AppConfig) evaluation.Options {
	opts := evaluation.DefaultOptions(0)
	if cfg.Model.Architecture == "dbow" {
		opts.Params.Architecture = domain.DistributedBagOfWords
	}
	opts.Params.MinCount = cfg.Model.MinCount
	opts.Params.Epochs = cfg.Model.Epochs
	opts.SuccessThreshold = cfg.Evaluation.SuccessThreshold
	opts.Alpha = cfg.Evaluation.SignificanceLevel
	opts.Welch = cfg.Evaluation.Welch
	return opts
}

// ExperimentService runs the configured experiment list against datasets
// from a store and exports the comparison table.
type ExperimentService struct {
	store    store.Store
	trainer  domain.Trainer
	cfg      *config.AppConfig
	logger   *zap.Logger
	runID    string
	registry *evaluation.Registry
	corpora  map[string]domain.Corpus
}

func NewExperimentService(st store.Store, trainer domain.Trainer, cfg *config.AppConfig, logger *zap.Logger) *ExperimentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	runID := uuid.NewString()
	return &ExperimentService{
		store:   st,
		trainer: trainer,
		cfg:     cfg,
		logger:  logger.With(zap.String("run_id", runID)),
		runID:   runID,
		corpora: make(map[string]domain.Corpus),
	}
}

// RunID identifies this service's run in logs.
func (s *ExperimentService) RunID() string { return s.runID }

// Experiments returns the configured experiment list.
func (s *ExperimentService) Experiments() []config.ExperimentConfig { return s.cfg.Experiments }

// Prepare loads both pairing sets and creates an empty registry.
func (s *ExperimentService) Prepare() error {
	train, err := store.LoadPairings(s.store, s.cfg.Evaluation.TrainPairings)
	if err != nil {
		return err
	}
	test, err := store.LoadPairings(s.store, s.cfg.Evaluation.TestPairings)
	if err != nil {
		return err
	}
	opts := evaluation.RegistryOptions{Model: ModelOptions(s.cfg)}
	if s.cfg.Output.SavePlots {
		opts.PlotDir = s.cfg.Output.ImageDir
	}
	s.registry = evaluation.NewRegistry(s.trainer, train, test, opts, s.logger)
	s.logger.Info("pairings loaded",
		zap.Int("train_pairs", len(train)),
		zap.Int("test_pairs", len(test)),
		zap.String("trainer", s.trainer.Name()),
		zap.Int("experiments", len(s.cfg.Experiments)),
	)
	return nil
}

// RunExperiment trains and evaluates the i-th configured experiment.
func (s *ExperimentService) RunExperiment(i int) (evaluation.Record, error) {
	if s.registry == nil {
		return evaluation.Record{}, errors.New("service not prepared")
	}
	if i < 0 || i >= len(s.cfg.Experiments) {
		return evaluation.Record{}, fmt.Errorf("experiment index %d out of range", i)
	}
	exp := s.cfg.Experiments[i]
	corpus, err := s.corpus(exp.Corpus)
	if err != nil {
		return evaluation.Record{}, err
	}
	start := time.Now()
	s.logger.Info("experiment started",
		zap.String("model", exp.Name),
		zap.String("corpus", exp.CorpusLabel),
		zap.Int("vector_size", exp.VectorSize),
	)
	if _, err := s.registry.TrainAndEvaluate(exp.Name, corpus, exp.CorpusLabel, exp.VectorSize); err != nil {
		return evaluation.Record{}, fmt.Errorf("experiment %s: %w", exp.Name, err)
	}
	rec, _ := s.registry.Lookup(exp.Name)
	s.logger.Info("experiment finished",
		zap.String("model", exp.Name),
		zap.Float64("self_recog_rate", rec.SelfRecognitionRate),
		zap.Bool("cs_test_significant", rec.CosineTest.Significant),
		zap.Duration("elapsed", time.Since(start)),
	)
	return rec, nil
}

func (s *ExperimentService) corpus(name string) (domain.Corpus, error) {
	if c, ok := s.corpora[name]; ok {
		return c, nil
	}
	c, err := store.LoadCorpus(s.store, name)
	if err != nil {
		return nil, err
	}
	s.corpora[name] = c
	return c, nil
}

// Summary returns the comparison table so far.
func (s *ExperimentService) Summary() evaluation.Summary {
	if s.registry == nil {
		return evaluation.Summary{}
	}
	return s.registry.Summarize()
}

// Export writes the summary CSV and returns its path.
func (s *ExperimentService) Export() (string, error) {
	path := s.cfg.Output.SummaryCSV
	if err := report.SaveCSV(path, s.Summary()); err != nil {
		return "", err
	}
	s.logger.Info("summary exported", zap.String("path", path), zap.Int("models", s.Summary().Len()))
	return path, nil
}

// RunAll prepares, runs every experiment in order and exports the table.
// The first failure aborts the run.
func (s *ExperimentService) RunAll() (evaluation.Summary, error) {
	if err := s.Prepare(); err != nil {
		return evaluation.Summary{}, err
	}
	for i := range s.cfg.Experiments {
		if _, err := s.RunExperiment(i); err != nil {
			return evaluation.Summary{}, err
		}
	}
	if _, err := s.Export(); err != nil {
		return evaluation.Summary{}, err
	}
	return s.Summary(), nil
}

// ImportFiles copies JSON dataset files into the store, naming each dataset
// after its file name without extension.
func ImportFiles(st store.Store, paths []string) ([]string, error) {
	var names []string
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return names, err
		}
		if !json.Valid(data) {
			return names, fmt.Errorf("%s: not valid JSON", p)
		}
		name := strings.TrimSuffix(filepath.Base(p), filepath.Ext(p))
		if err := st.Save(name, json.RawMessage(data)); err != nil {
			return names, fmt.Errorf("import %s: %w", p, err)
		}
		names = append(names, name)
	}
	return names, nil
}
