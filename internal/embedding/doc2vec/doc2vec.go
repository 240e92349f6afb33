// Package doc2vec trains paragraph-vector document embeddings (PV-DM and
// PV-DBOW) with negative sampling.
//
// Training and inference are stochastic: two models trained on the same
// corpus differ unless Config.Seed is fixed. Inference draws from the
// model's own generator, so repeated Infer calls on the same words return
// different vectors.
package doc2vec

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"sort"
	"sync"
	"time"

	"gonum.org/v1/gonum/floats"

	"docvec/internal/domain"
	"docvec/internal/vectorstore"
	"docvec/internal/vectorstore/memory"
)

// Config holds the training knobs not covered by domain.TrainParams.
type Config struct {
	Window   int
	Negative int
	Alpha    float64
	MinAlpha float64
	// Seed fixes the random generator; zero seeds from the clock.
	Seed uint64
}

// DefaultConfig mirrors the usual paragraph-vector defaults.
func DefaultConfig() Config {
	return Config{Window: 5, Negative: 5, Alpha: 0.025, MinAlpha: 0.0001}
}

// Trainer builds paragraph-vector models.
type Trainer struct {
	cfg Config
	rng *rand.Rand
}

// NewTrainer creates a trainer. Zero-valued knobs fall back to DefaultConfig.
func NewTrainer(cfg Config) *Trainer {
	def := DefaultConfig()
	if cfg.Window <= 0 {
		cfg.Window = def.Window
	}
	if cfg.Negative <= 0 {
		cfg.Negative = def.Negative
	}
	if cfg.Alpha <= 0 {
		cfg.Alpha = def.Alpha
	}
	if cfg.MinAlpha <= 0 || cfg.MinAlpha > cfg.Alpha {
		cfg.MinAlpha = math.Min(def.MinAlpha, cfg.Alpha)
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &Trainer{cfg: cfg, rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Name returns the identifier of this trainer implementation.
func (t *Trainer) Name() string { return "doc2vec" }

// Train builds the vocabulary and learns document and word vectors.
func (t *Trainer) Train(corpus domain.Corpus, params domain.TrainParams) (domain.Model, error) {
	if len(corpus) == 0 {
		return nil, errors.New("empty corpus for doc2vec training")
	}
	if params.VectorSize <= 0 {
		return nil, fmt.Errorf("invalid vector size %d", params.VectorSize)
	}
	if params.Epochs <= 0 {
		return nil, fmt.Errorf("invalid epoch count %d", params.Epochs)
	}
	m := &Model{
		cfg:    t.cfg,
		params: params,
		rng:    rand.New(rand.NewPCG(t.rng.Uint64(), t.rng.Uint64())),
		store:  memory.NewStorage(),
	}
	if err := m.buildVocab(corpus); err != nil {
		return nil, err
	}
	m.initWeights(len(corpus))

	docs := make([][]int, len(corpus))
	for i, d := range corpus {
		docs[i] = m.indices(d.Words)
	}
	steps := float64(params.Epochs * len(corpus))
	for epoch := 0; epoch < params.Epochs; epoch++ {
		for step, di := range m.rng.Perm(len(corpus)) {
			progress := float64(epoch*len(corpus)+step) / steps
			alpha := m.cfg.Alpha - (m.cfg.Alpha-m.cfg.MinAlpha)*progress
			m.trainDocument(m.docVecs[di], docs[di], alpha, true)
		}
	}

	if err := m.store.Init(params.VectorSize); err != nil {
		return nil, err
	}
	ids := make([]string, len(corpus))
	for i, d := range corpus {
		ids[i] = d.ID
	}
	if err := m.store.Upsert(ids, m.docVecs); err != nil {
		return nil, fmt.Errorf("index document vectors: %w", err)
	}
	return m, nil
}

// Model is a trained paragraph-vector model.
type Model struct {
	cfg    Config
	params domain.TrainParams

	mu  sync.Mutex
	rng *rand.Rand

	vocab    map[string]int
	cumTable []float64

	docVecs  [][]float64
	wordVecs [][]float64
	outVecs  [][]float64

	store vectorstore.Storage
}

// Dimension returns the vector size.
func (m *Model) Dimension() int { return m.params.VectorSize }

// Params returns the hyperparameters the model was trained with.
func (m *Model) Params() domain.TrainParams { return m.params }

// VocabularySize returns the number of words that survived min count.
func (m *Model) VocabularySize() int { return len(m.vocab) }

// Infer learns a vector for words against the frozen word and output
// weights, running as many epochs as training did.
func (m *Model) Infer(words []string) ([]float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	vec := m.randomVector()
	idxs := m.indices(words)
	for epoch := 0; epoch < m.params.Epochs; epoch++ {
		progress := float64(epoch) / float64(m.params.Epochs)
		alpha := m.cfg.Alpha - (m.cfg.Alpha-m.cfg.MinAlpha)*progress
		m.trainDocument(vec, idxs, alpha, false)
	}
	return vec, nil
}

// Rank orders all training documents by cosine similarity to vec.
func (m *Model) Rank(vec []float64) ([]domain.Match, error) {
	return m.store.Search(vec, 0)
}

func (m *Model) buildVocab(corpus domain.Corpus) error {
	minCount := m.params.MinCount
	if minCount < 1 {
		minCount = 1
	}
	counts := make(map[string]int)
	for _, d := range corpus {
		for _, w := range d.Words {
			counts[w]++
		}
	}
	words := make([]string, 0, len(counts))
	for w, c := range counts {
		if c >= minCount {
			words = append(words, w)
		}
	}
	if len(words) == 0 {
		return errors.New("no words survive min count; lower min_count or enlarge the corpus")
	}
	sort.Slice(words, func(i, j int) bool {
		if counts[words[i]] != counts[words[j]] {
			return counts[words[i]] > counts[words[j]]
		}
		return words[i] < words[j]
	})
	m.vocab = make(map[string]int, len(words))
	m.cumTable = make([]float64, len(words))
	total := 0.0
	for i, w := range words {
		m.vocab[w] = i
		total += math.Pow(float64(counts[w]), 0.75)
		m.cumTable[i] = total
	}
	return nil
}

func (m *Model) initWeights(nDocs int) {
	dim := m.params.VectorSize
	m.docVecs = make([][]float64, nDocs)
	for i := range m.docVecs {
		m.docVecs[i] = m.randomVector()
	}
	m.wordVecs = make([][]float64, len(m.vocab))
	m.outVecs = make([][]float64, len(m.vocab))
	for i := range m.wordVecs {
		m.wordVecs[i] = m.randomVector()
		m.outVecs[i] = make([]float64, dim)
	}
}

func (m *Model) randomVector() []float64 {
	dim := m.params.VectorSize
	v := make([]float64, dim)
	for i := range v {
		v[i] = (m.rng.Float64() - 0.5) / float64(dim)
	}
	return v
}

// indices maps words to vocabulary indexes, dropping unknown words.
func (m *Model) indices(words []string) []int {
	out := make([]int, 0, len(words))
	for _, w := range words {
		if idx, ok := m.vocab[w]; ok {
			out = append(out, idx)
		}
	}
	return out
}

// trainDocument runs one pass over a document. Word and output weights are
// only updated when learnWeights is set; the document vector always is.
func (m *Model) trainDocument(docVec []float64, idxs []int, alpha float64, learnWeights bool) {
	if m.params.Architecture == domain.DistributedBagOfWords {
		m.trainDBOW(docVec, idxs, alpha, learnWeights)
		return
	}
	m.trainDM(docVec, idxs, alpha, learnWeights)
}

func (m *Model) trainDBOW(docVec []float64, idxs []int, alpha float64, learnWeights bool) {
	neu1e := make([]float64, len(docVec))
	for _, target := range idxs {
		for i := range neu1e {
			neu1e[i] = 0
		}
		m.negativeSample(target, docVec, neu1e, alpha, learnWeights)
		floats.Add(docVec, neu1e)
	}
}

// trainDM predicts each word from the mean of the document vector and the
// context word vectors inside a randomly shrunk window.
func (m *Model) trainDM(docVec []float64, idxs []int, alpha float64, learnWeights bool) {
	dim := len(docVec)
	neu1 := make([]float64, dim)
	neu1e := make([]float64, dim)
	ctx := make([]int, 0, 2*m.cfg.Window)
	for pos, target := range idxs {
		reduced := m.rng.IntN(m.cfg.Window)
		lo := max(0, pos-m.cfg.Window+reduced)
		hi := min(len(idxs)-1, pos+m.cfg.Window-reduced)
		ctx = ctx[:0]
		for c := lo; c <= hi; c++ {
			if c != pos {
				ctx = append(ctx, idxs[c])
			}
		}

		copy(neu1, docVec)
		for _, c := range ctx {
			floats.Add(neu1, m.wordVecs[c])
		}
		count := float64(len(ctx) + 1)
		floats.Scale(1/count, neu1)
		for i := range neu1e {
			neu1e[i] = 0
		}

		m.negativeSample(target, neu1, neu1e, alpha, learnWeights)

		floats.Scale(1/count, neu1e)
		floats.Add(docVec, neu1e)
		if learnWeights {
			for _, c := range ctx {
				floats.Add(m.wordVecs[c], neu1e)
			}
		}
	}
}

// negativeSample scores the target word (label 1) and Negative noise words
// (label 0) against hidden, accumulating the hidden-layer error into neu1e.
func (m *Model) negativeSample(target int, hidden, neu1e []float64, alpha float64, learnWeights bool) {
	for d := 0; d <= m.cfg.Negative; d++ {
		idx, label := target, 1.0
		if d > 0 {
			idx, label = m.sampleNoise(), 0.0
			if idx == target {
				continue
			}
		}
		out := m.outVecs[idx]
		f := sigmoid(floats.Dot(hidden, out))
		g := (label - f) * alpha
		floats.AddScaled(neu1e, g, out)
		if learnWeights {
			floats.AddScaled(out, g, hidden)
		}
	}
}

// sampleNoise draws a word index from the unigram distribution raised to 3/4.
func (m *Model) sampleNoise() int {
	total := m.cumTable[len(m.cumTable)-1]
	idx := sort.SearchFloat64s(m.cumTable, m.rng.Float64()*total)
	if idx >= len(m.cumTable) {
		idx = len(m.cumTable) - 1
	}
	return idx
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}
