package evaluation

import (
	"fmt"

	"go.uber.org/zap"

	"docvec/internal/domain"
)

// RegistryOptions configure every model a Registry trains.
type RegistryOptions struct {
	// Model holds the shared defaults; VectorSize is set per experiment.
	Model Options
	// PlotDir receives the distribution plots. Empty renders without saving.
	PlotDir string
}

// Registry trains models over corpus/hyperparameter combinations and keeps
// one Record per model name. It starts empty and only Record adds to it.
type Registry struct {
	trainer domain.Trainer
	train   domain.PairingSet
	test    domain.PairingSet
	opts    RegistryOptions
	logger  *zap.Logger

	records map[string]Record
	models  map[string]*Modeler
	order   []string
}

// NewRegistry creates an empty registry evaluating against the given train
// and test pairing sets.
func NewRegistry(trainer domain.Trainer, train, test domain.PairingSet, opts RegistryOptions, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		trainer: trainer,
		train:   train,
		test:    test,
		opts:    opts,
		logger:  logger,
		records: make(map[string]Record),
		models:  make(map[string]*Modeler),
	}
}

// TrainAndEvaluate runs the full pipeline for one configuration: fit,
// self-recognition, pair stats on both splits, the four significance tests
// and the four distribution plots. The result is recorded under name.
func (r *Registry) TrainAndEvaluate(name string, corpus domain.Corpus, corpusLabel string, vectorSize int) (*Modeler, error) {
	opts := r.opts.Model
	opts.Params.VectorSize = vectorSize
	m := NewModeler(name, corpusLabel, corpus, r.trainer, opts, r.logger.With(zap.String("model", name)))

	if err := m.Fit(); err != nil {
		return nil, err
	}
	if _, err := m.SelfRecognition(); err != nil {
		return nil, err
	}
	if _, err := m.PairwiseSimilarity(Train, r.train); err != nil {
		return nil, err
	}
	if _, err := m.PairwiseSimilarity(Test, r.test); err != nil {
		return nil, err
	}
	for _, metric := range metrics {
		for _, split := range splits {
			if _, err := m.SignificanceTest(split, metric); err != nil {
				return nil, err
			}
		}
	}
	for _, metric := range metrics {
		for _, split := range splits {
			if err := r.plot(m, split, metric); err != nil {
				return nil, err
			}
		}
	}
	if err := r.Record(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (r *Registry) plot(m *Modeler, split Split, metric Metric) error {
	if r.opts.PlotDir == "" {
		_, err := m.PlotDistribution(split, metric)
		return err
	}
	_, err := m.SaveDistributionPlot(split, metric, r.opts.PlotDir)
	return err
}

// Record stores the statistics of a fully evaluated Modeler, replacing any
// previous entry with the same name in place.
func (r *Registry) Record(m *Modeler) error {
	rec, err := m.Record()
	if err != nil {
		return fmt.Errorf("record %q: %w", m.Name(), err)
	}
	if _, exists := r.records[rec.Name]; !exists {
		r.order = append(r.order, rec.Name)
	} else {
		r.logger.Warn("replacing recorded model", zap.String("model", rec.Name))
	}
	r.records[rec.Name] = rec
	r.models[rec.Name] = m
	return nil
}

// Lookup returns the record stored under name.
func (r *Registry) Lookup(name string) (Record, bool) {
	rec, ok := r.records[name]
	return rec, ok
}

// Model returns the Modeler last recorded under name.
func (r *Registry) Model(name string) (*Modeler, bool) {
	m, ok := r.models[name]
	return m, ok
}

// Len returns the number of recorded models.
func (r *Registry) Len() int { return len(r.order) }

// Summarize materializes the recorded statistics in registration order.
func (r *Registry) Summarize() Summary {
	out := make([]Record, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.records[name])
	}
	return Summary{Records: out}
}
