// Package evaluation trains document-embedding models and scores them by
// self-recognition and by how well they separate true document pairings from
// mismatched ones.
//
// A Modeler walks through a fixed sequence of stages (see Phase). Each stage
// checks that its prerequisite ran and returns an error wrapping ErrPhase
// otherwise. A Registry runs the full sequence for many configurations and
// keeps one Record per model name.
package evaluation

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"gonum.org/v1/plot"

	"docvec/internal/chart"
	"docvec/internal/domain"
	"docvec/internal/similarity"
	"docvec/internal/stats"
)

const (
	DefaultMinCount         = 2
	DefaultEpochs           = 100
	DefaultSuccessThreshold = 0.95
	DefaultAlpha            = 0.01
)

// Options configure a single Modeler.
type Options struct {
	Params domain.TrainParams
	// SuccessThreshold is the self-recognition rate counted as a pass.
	SuccessThreshold float64
	// Alpha is the significance level of the t-tests.
	Alpha float64
	// Welch disables the pooled-variance assumption of the t-test.
	Welch bool
}

// DefaultOptions returns distributed-memory training with min count 2,
// 100 epochs, a 0.95 success threshold and 1% significance.
func DefaultOptions(vectorSize int) Options {
	return Options{
		Params: domain.TrainParams{
			VectorSize:   vectorSize,
			Architecture: domain.DistributedMemory,
			MinCount:     DefaultMinCount,
			Epochs:       DefaultEpochs,
		},
		SuccessThreshold: DefaultSuccessThreshold,
		Alpha:            DefaultAlpha,
	}
}

// InferredVector is one entry of the inferred-vector cache.
type InferredVector struct {
	DocumentID string
	Words      []string
	Vector     []float64
}

// SelfRecognition summarizes how often training documents rank themselves first.
type SelfRecognition struct {
	// Ranks holds each document's own position, in corpus order.
	Ranks []int
	// RankCounts maps a rank to the number of documents at that rank.
	RankCounts map[int]int
	// RunnersUp holds the second-best match per document; zero when the corpus has one document.
	RunnersUp  []domain.Match
	Recognized int
	Rate       float64
	Passed     bool
}

// ScoredPairing is a pairing with both inferred vectors and their comparison.
type ScoredPairing struct {
	domain.Pairing
	ReferenceVec []float64
	TargetVec    []float64
	Cosine       float64
	Euclidean    float64
}

// GroupStats summarizes one metric for the true and false groups.
type GroupStats struct {
	True  stats.Summary
	False stats.Summary
}

// PairStats is the result of PairwiseSimilarity for one split.
type PairStats struct {
	Split Split
	// True and False hold the scored pairings of each group in pairing order.
	True      []ScoredPairing
	False     []ScoredPairing
	Cosine    GroupStats
	Euclidean GroupStats
}

// Len is the number of scored pairings in both groups.
func (p *PairStats) Len() int { return len(p.True) + len(p.False) }

// Values returns the metric values of the true (isPair) or false group, in pairing order.
func (p *PairStats) Values(metric Metric, isPair bool) []float64 {
	group := p.False
	if isPair {
		group = p.True
	}
	out := make([]float64, 0, len(group))
	for _, sp := range group {
		if metric == Euclidean {
			out = append(out, sp.Euclidean)
		} else {
			out = append(out, sp.Cosine)
		}
	}
	return out
}

// Group returns the summary for metric.
func (p *PairStats) Group(metric Metric) GroupStats {
	if metric == Euclidean {
		return p.Euclidean
	}
	return p.Cosine
}

// TestResult is the outcome of one significance test.
type TestResult struct {
	Split  Split
	Metric Metric
	stats.TTestResult
	Significant bool
}

type testKey struct {
	split  Split
	metric Metric
}

// Modeler owns one trained embedding model and its evaluation results.
// It is not safe for concurrent use.
type Modeler struct {
	name        string
	corpusLabel string
	corpus      domain.Corpus
	trainer     domain.Trainer
	opts        Options
	logger      *zap.Logger

	phase       Phase
	model       domain.Model
	inferred    []InferredVector
	recognition *SelfRecognition
	pairs       map[Split]*PairStats
	tests       map[testKey]TestResult
}

// NewModeler creates an untrained Modeler over corpus.
func NewModeler(name, corpusLabel string, corpus domain.Corpus, trainer domain.Trainer, opts Options, logger *zap.Logger) *Modeler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Modeler{
		name:        name,
		corpusLabel: corpusLabel,
		corpus:      corpus,
		trainer:     trainer,
		opts:        opts,
		logger:      logger,
		pairs:       make(map[Split]*PairStats),
		tests:       make(map[testKey]TestResult),
	}
}

func (m *Modeler) Name() string          { return m.name }
func (m *Modeler) CorpusLabel() string   { return m.corpusLabel }
func (m *Modeler) Options() Options      { return m.opts }
func (m *Modeler) Phase() Phase          { return m.phase }
func (m *Modeler) Model() domain.Model   { return m.model }
func (m *Modeler) Corpus() domain.Corpus { return m.corpus }

// InferredVectors returns the inferred-vector cache in insertion order.
func (m *Modeler) InferredVectors() []InferredVector {
	out := make([]InferredVector, len(m.inferred))
	copy(out, m.inferred)
	return out
}

// SelfRecognitionResult returns the last self-recognition result, if any.
func (m *Modeler) SelfRecognitionResult() (*SelfRecognition, bool) {
	return m.recognition, m.recognition != nil
}

// PairStats returns the pair statistics computed for split, if any.
func (m *Modeler) PairStats(split Split) (*PairStats, bool) {
	p, ok := m.pairs[split]
	return p, ok
}

// TestResult returns the significance test computed for split and metric, if any.
func (m *Modeler) TestResult(split Split, metric Metric) (TestResult, bool) {
	r, ok := m.tests[testKey{split, metric}]
	return r, ok
}

func (m *Modeler) require(p Phase, op string) error {
	if m.phase < p {
		return fmt.Errorf("%s on model %q requires %s, model is %s: %w", op, m.name, p, m.phase, ErrPhase)
	}
	return nil
}

func (m *Modeler) advance(p Phase) {
	if p > m.phase {
		m.phase = p
	}
}

// Fit trains the model. Calling it again retrains and discards every
// downstream result except the inferred-vector cache, which only grows.
func (m *Modeler) Fit() error {
	start := time.Now()
	model, err := m.trainer.Train(m.corpus, m.opts.Params)
	if err != nil {
		return fmt.Errorf("fit %q: %w", m.name, err)
	}
	m.model = model
	m.recognition = nil
	m.pairs = make(map[Split]*PairStats)
	m.tests = make(map[testKey]TestResult)
	m.phase = Trained
	m.logger.Info("model training complete",
		zap.String("trainer", m.trainer.Name()),
		zap.Int("documents", len(m.corpus)),
		zap.Int("vector_size", m.opts.Params.VectorSize),
		zap.Stringer("architecture", m.opts.Params.Architecture),
		zap.Duration("elapsed", time.Since(start)),
	)
	return nil
}

// SelfRecognition infers a vector for every training document and records
// where the document's own tag ranks among all training documents.
// Stochastic trainers give different results run to run; average repeated
// runs for a stable estimate.
func (m *Modeler) SelfRecognition() (*SelfRecognition, error) {
	if err := m.require(Trained, "self-recognition"); err != nil {
		return nil, err
	}
	n := len(m.corpus)
	if n == 0 {
		return nil, errors.New("self-recognition: empty corpus")
	}
	res := &SelfRecognition{
		Ranks:      make([]int, n),
		RankCounts: make(map[int]int),
		RunnersUp:  make([]domain.Match, n),
	}
	for i, doc := range m.corpus {
		vec, err := m.model.Infer(doc.Words)
		if err != nil {
			return nil, fmt.Errorf("infer document %q: %w", doc.ID, err)
		}
		m.inferred = append(m.inferred, InferredVector{DocumentID: doc.ID, Words: doc.Words, Vector: vec})
		matches, err := m.model.Rank(vec)
		if err != nil {
			return nil, fmt.Errorf("rank document %q: %w", doc.ID, err)
		}
		rank := -1
		for j, match := range matches {
			if match.ID == doc.ID {
				rank = j
				break
			}
		}
		if rank < 0 {
			return nil, fmt.Errorf("document %q missing from model ranking", doc.ID)
		}
		res.Ranks[i] = rank
		res.RankCounts[rank]++
		if len(matches) > 1 {
			res.RunnersUp[i] = matches[1]
		}
	}
	res.Recognized = res.RankCounts[0]
	res.Rate = float64(res.Recognized) / float64(n)
	res.Passed = res.Rate >= m.opts.SuccessThreshold
	m.recognition = res
	m.advance(SelfRecognitionComputed)
	m.logger.Info("self-recognition computed",
		zap.Int("recognized", res.Recognized),
		zap.Int("documents", n),
		zap.Float64("rate", res.Rate),
		zap.Bool("passed", res.Passed),
	)
	return res, nil
}

// PairwiseSimilarity infers both sides of every pairing, compares them and
// summarizes each metric per group. The train split must run before the
// test split. Both groups must be non-empty.
//
// A successful run drops the significance tests of split. Re-running the
// train split also drops the test split's pair stats and tests, so both
// must be computed again before Record.
func (m *Modeler) PairwiseSimilarity(split Split, pairings domain.PairingSet) (*PairStats, error) {
	required := SelfRecognitionComputed
	if split == Test {
		required = TrainPairStatsComputed
	}
	if err := m.require(required, split.String()+" pairwise similarity"); err != nil {
		return nil, err
	}
	truePairs, falsePairs := pairings.Partition()
	if len(truePairs) == 0 {
		return nil, fmt.Errorf("%s pairings: true group: %w", split, stats.ErrInsufficientData)
	}
	if len(falsePairs) == 0 {
		return nil, fmt.Errorf("%s pairings: false group: %w", split, stats.ErrInsufficientData)
	}
	res := &PairStats{Split: split}
	var err error
	if res.True, err = m.score(truePairs); err != nil {
		return nil, fmt.Errorf("%s true pairings: %w", split, err)
	}
	if res.False, err = m.score(falsePairs); err != nil {
		return nil, fmt.Errorf("%s false pairings: %w", split, err)
	}
	for _, metric := range metrics {
		tru, err := stats.Summarize(res.Values(metric, true))
		if err != nil {
			return nil, fmt.Errorf("%s pairings: true group: %w", split, err)
		}
		fls, err := stats.Summarize(res.Values(metric, false))
		if err != nil {
			return nil, fmt.Errorf("%s pairings: false group: %w", split, err)
		}
		if metric == Euclidean {
			res.Euclidean = GroupStats{True: tru, False: fls}
		} else {
			res.Cosine = GroupStats{True: tru, False: fls}
		}
	}
	m.invalidate(split)
	m.pairs[split] = res
	m.phase = split.pairPhase()
	m.logger.Info("pair stats computed",
		zap.Stringer("split", split),
		zap.Int("true_pairs", res.Cosine.True.Count),
		zap.Int("false_pairs", res.Cosine.False.Count),
		zap.Float64("cs_true_mean", res.Cosine.True.Mean),
		zap.Float64("cs_false_mean", res.Cosine.False.Mean),
	)
	return res, nil
}

func (m *Modeler) score(pairings domain.PairingSet) ([]ScoredPairing, error) {
	out := make([]ScoredPairing, 0, len(pairings))
	for i, p := range pairings {
		ref, err := m.model.Infer(p.Reference)
		if err != nil {
			return nil, fmt.Errorf("infer reference of pairing %d: %w", i, err)
		}
		tgt, err := m.model.Infer(p.Target)
		if err != nil {
			return nil, fmt.Errorf("infer target of pairing %d: %w", i, err)
		}
		out = append(out, ScoredPairing{
			Pairing:      p,
			ReferenceVec: ref,
			TargetVec:    tgt,
			Cosine:       similarity.Cosine(ref, tgt),
			Euclidean:    similarity.Euclidean(ref, tgt),
		})
	}
	return out, nil
}

// invalidate removes results derived from split's pair stats.
func (m *Modeler) invalidate(split Split) {
	stale := []Split{split}
	if split == Train {
		delete(m.pairs, Test)
		stale = append(stale, Test)
	}
	for _, sp := range stale {
		for _, metric := range metrics {
			delete(m.tests, testKey{sp, metric})
		}
	}
}

// SignificanceTest compares the true and false groups of split on metric
// with a two-tailed two-sample t-test.
func (m *Modeler) SignificanceTest(split Split, metric Metric) (TestResult, error) {
	if err := m.require(split.pairPhase(), split.String()+" significance test"); err != nil {
		return TestResult{}, err
	}
	ps, ok := m.pairs[split]
	if !ok {
		return TestResult{}, fmt.Errorf("%s pair stats missing for %q: %w", split, m.name, ErrPhase)
	}
	tt, err := stats.TTest(ps.Values(metric, true), ps.Values(metric, false), !m.opts.Welch)
	if err != nil {
		return TestResult{}, fmt.Errorf("%s %s t-test: %w", split, metric.Short(), err)
	}
	res := TestResult{Split: split, Metric: metric, TTestResult: tt, Significant: tt.Significant(m.opts.Alpha)}
	m.tests[testKey{split, metric}] = res
	if len(m.tests) == len(splits)*len(metrics) {
		m.advance(SignificanceComputed)
	}
	m.logger.Info("significance test computed",
		zap.Stringer("split", split),
		zap.String("metric", metric.Short()),
		zap.Float64("statistic", tt.Statistic),
		zap.Float64("p_value", tt.PValue),
		zap.Bool("significant", res.Significant),
	)
	return res, nil
}

// PlotDistribution renders overlaid histograms of the true and false groups
// of split on metric.
func (m *Modeler) PlotDistribution(split Split, metric Metric) (*plot.Plot, error) {
	if err := m.require(split.pairPhase(), split.String()+" distribution plot"); err != nil {
		return nil, err
	}
	ps := m.pairs[split]
	return chart.Render(chart.Distribution{
		Title:  "Distributions of DocVec Similarity - Model: " + m.name,
		XLabel: metric.String() + " of Reference & Target DocVectors",
		True:   ps.Values(metric, true),
		False:  ps.Values(metric, false),
	})
}

// PlotFileName is the image name for a distribution plot of this model.
func (m *Modeler) PlotFileName(split Split, metric Metric) string {
	return fmt.Sprintf("%s_%s_dist_%s.png", metric.Short(), split, m.name)
}

// SaveDistributionPlot renders the distribution plot and writes it under dir.
func (m *Modeler) SaveDistributionPlot(split Split, metric Metric, dir string) (string, error) {
	p, err := m.PlotDistribution(split, metric)
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, m.PlotFileName(split, metric))
	if err := chart.Save(p, path); err != nil {
		return "", fmt.Errorf("save plot %s: %w", path, err)
	}
	m.logger.Debug("distribution plot saved", zap.String("path", path))
	return path, nil
}

// Record extracts the fixed statistic fields. Every significance test must have run.
func (m *Modeler) Record() (Record, error) {
	if err := m.require(SignificanceComputed, "record"); err != nil {
		return Record{}, err
	}
	rec := Record{
		Name:                m.name,
		CorpusLabel:         m.corpusLabel,
		VectorSize:          m.opts.Params.VectorSize,
		SelfRecognitionRate: m.recognition.Rate,
		SelfRecognized:      m.recognition.Passed,
	}
	for _, split := range splits {
		for _, metric := range metrics {
			tr := m.tests[testKey{split, metric}]
			g := m.pairs[split].Group(metric)
			*rec.field(split, metric) = MetricStats{
				Statistic:   tr.Statistic,
				PValue:      tr.PValue,
				Significant: tr.Significant,
				True:        g.True,
				False:       g.False,
			}
		}
	}
	return rec, nil
}
