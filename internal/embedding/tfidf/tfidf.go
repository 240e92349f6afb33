package tfidf

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"gonum.org/v1/gonum/floats"

	"docvec/internal/domain"
	"docvec/internal/vectorstore"
	"docvec/internal/vectorstore/memory"
)

// Trainer builds TF-IDF document models. It is deterministic, which makes it
// a useful baseline next to the stochastic paragraph-vector models.
// VectorSize, Architecture and Epochs are ignored: the dimension is the
// pruned vocabulary size.
type Trainer struct {
	stopwords map[string]struct{}
}

// NewTrainer creates a TF-IDF trainer with the default English stopword list.
func NewTrainer() *Trainer {
	return &Trainer{stopwords: defaultStopwords()}
}

// Name returns the identifier of this trainer implementation.
func (t *Trainer) Name() string { return "tfidf" }

// Train builds the vocabulary and IDF values from the corpus. Terms occurring
// fewer than params.MinCount times in total are dropped.
func (t *Trainer) Train(corpus domain.Corpus, params domain.TrainParams) (domain.Model, error) {
	if len(corpus) == 0 {
		return nil, errors.New("empty corpus for TF-IDF training")
	}
	// Build vocabulary and document frequencies
	df := make(map[string]int)
	total := make(map[string]int)
	for _, doc := range corpus {
		seen := make(map[string]struct{})
		for _, tok := range t.normalize(doc.Words) {
			total[tok]++
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}
			df[tok]++
		}
	}
	// Create stable ordering for vocabulary
	terms := make([]string, 0, len(df))
	for term := range df {
		if total[term] < params.MinCount {
			continue
		}
		terms = append(terms, term)
	}
	sort.Strings(terms)
	if len(terms) == 0 {
		return nil, errors.New("no terms survive min count; lower min_count or enlarge the corpus")
	}
	m := &Model{
		vocabulary: make(map[string]int, len(terms)),
		idf:        make([]float64, len(terms)),
		trainer:    t,
		store:      memory.NewStorage(),
	}
	n := float64(len(corpus))
	for i, term := range terms {
		m.vocabulary[term] = i
		// Smoothed IDF
		m.idf[i] = math.Log((1+n)/(1+float64(df[term]))) + 1.0
	}
	if err := m.store.Init(len(terms)); err != nil {
		return nil, err
	}
	ids := make([]string, len(corpus))
	vecs := make([][]float64, len(corpus))
	for i, doc := range corpus {
		ids[i] = doc.ID
		vecs[i] = m.embed(doc.Words)
	}
	if err := m.store.Upsert(ids, vecs); err != nil {
		return nil, fmt.Errorf("index documents: %w", err)
	}
	return m, nil
}

func (t *Trainer) normalize(words []string) []string {
	out := make([]string, 0, len(words))
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w == "" {
			continue
		}
		if _, isStop := t.stopwords[w]; isStop {
			continue
		}
		out = append(out, w)
	}
	return out
}

// Model is a fitted TF-IDF vectorizer plus the indexed training documents.
type Model struct {
	vocabulary map[string]int
	idf        []float64
	trainer    *Trainer
	store      vectorstore.Storage
}

// Dimension returns the vocabulary size.
func (m *Model) Dimension() int { return len(m.idf) }

// Infer returns the L2-normalized TF-IDF vector of words. Unknown words are ignored.
func (m *Model) Infer(words []string) ([]float64, error) {
	return m.embed(words), nil
}

// Rank orders all training documents by cosine similarity to vec.
func (m *Model) Rank(vec []float64) ([]domain.Match, error) {
	return m.store.Search(vec, 0)
}

func (m *Model) embed(words []string) []float64 {
	vec := make([]float64, len(m.idf))
	tf := make(map[int]int)
	total := 0
	for _, tok := range m.trainer.normalize(words) {
		if idx, ok := m.vocabulary[tok]; ok {
			tf[idx]++
			total++
		}
	}
	if total == 0 {
		return vec
	}
	for idx, count := range tf {
		vec[idx] = float64(count) / float64(total) * m.idf[idx]
	}
	if norm := floats.Norm(vec, 2); norm > 0 {
		floats.Scale(1/norm, vec)
	}
	return vec
}

func defaultStopwords() map[string]struct{} {
	words := []string{
		"a", "an", "the", "and", "or", "but", "if", "then", "else", "for", "to", "of", "in", "on", "at", "by", "with", "as", "is", "are", "was", "were", "be", "been", "being", "it", "this", "that", "these", "those", "from", "up", "down", "over", "under", "again", "further", "than", "so", "such", "into", "about", "between", "through", "during", "before", "after", "above", "below", "out", "off", "own", "same", "too", "very", "can", "will", "just", "don", "should", "now",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}
