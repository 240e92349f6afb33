package evaluation

import (
	"errors"
	"math"
	"strconv"

	"docvec/internal/domain"
)

// vectorTrainer builds vectorModels: a document's words are the decimal
// components of its vector, so tests control every similarity exactly.
type vectorTrainer struct {
	trained int
	params  domain.TrainParams
}

func (t *vectorTrainer) Name() string { return "vector" }

func (t *vectorTrainer) Train(corpus domain.Corpus, params domain.TrainParams) (domain.Model, error) {
	if len(corpus) == 0 {
		return nil, errors.New("empty corpus")
	}
	t.trained++
	t.params = params
	return &vectorModel{corpus: corpus}, nil
}

// vectorModel ranks even-indexed documents first for their own query and
// odd-indexed documents second.
type vectorModel struct {
	corpus domain.Corpus
}

func (m *vectorModel) Dimension() int { return 2 }

func (m *vectorModel) Infer(words []string) ([]float64, error) {
	vec := make([]float64, 0, len(words))
	for _, w := range words {
		f, err := strconv.ParseFloat(w, 64)
		if err != nil {
			return nil, err
		}
		vec = append(vec, f)
	}
	return vec, nil
}

func (m *vectorModel) Rank(vec []float64) ([]domain.Match, error) {
	q := int(vec[0])
	var out []domain.Match
	for i, d := range m.corpus {
		if i != q {
			out = append(out, domain.Match{ID: d.ID})
		}
	}
	pos := 0
	if q%2 == 1 {
		pos = 1
	}
	own := domain.Match{ID: m.corpus[q].ID, Score: 1}
	out = append(out[:pos], append([]domain.Match{own}, out[pos:]...)...)
	return out, nil
}

func numberedCorpus(n int) domain.Corpus {
	c := make(domain.Corpus, n)
	for i := range c {
		c[i] = domain.TaggedDocument{ID: "doc-" + strconv.Itoa(i), Words: []string{strconv.Itoa(i), "1"}}
	}
	return c
}

func vecWords(v ...float64) []string {
	out := make([]string, len(v))
	for i, f := range v {
		out[i] = strconv.FormatFloat(f, 'g', -1, 64)
	}
	return out
}

// anglePairings returns nTrue true pairs and nFalse false pairs; the target
// of each sits at the given angle (radians) from the reference [1, 0].
func anglePairings(trueAngles, falseAngles []float64) domain.PairingSet {
	var set domain.PairingSet
	add := func(angle float64, isPair bool) {
		set = append(set, domain.Pairing{
			Reference: vecWords(1, 0),
			Target:    vecWords(math.Cos(angle), math.Sin(angle)),
			IsPair:    isPair,
		})
	}
	for i := 0; i < len(trueAngles) || i < len(falseAngles); i++ {
		if i < len(trueAngles) {
			add(trueAngles[i], true)
		}
		if i < len(falseAngles) {
			add(falseAngles[i], false)
		}
	}
	return set
}

func spread(n int, lo, hi float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = lo + (hi-lo)*float64(i)/float64(n-1)
	}
	return out
}
