package memory

import (
	"errors"
	"sort"
	"sync"

	"gonum.org/v1/gonum/floats"

	"docvec/internal/domain"
	"docvec/internal/vectorstore"
)

var _ vectorstore.Storage = (*Storage)(nil)

// Storage is a simple in-memory vector store using brute-force cosine similarity.
type Storage struct {
	mu        sync.RWMutex
	dimension int
	vectors   [][]float64
	ids       []string
}

func NewStorage() *Storage { return &Storage{} }

func (s *Storage) Init(dimension int) error {
	if dimension <= 0 {
		return errors.New("invalid dimension")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dimension = dimension
	s.vectors = nil
	s.ids = nil
	return nil
}

// Upsert stores L2-normalized copies of the vectors. Zero vectors are kept as-is.
func (s *Storage) Upsert(ids []string, vectors [][]float64) error {
	if len(ids) != len(vectors) {
		return errors.New("ids and vectors length mismatch")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, v := range vectors {
		if len(v) != s.dimension {
			return errors.New("vector dimension mismatch")
		}
	}
	for i, v := range vectors {
		s.ids = append(s.ids, ids[i])
		s.vectors = append(s.vectors, normalized(v))
	}
	return nil
}

// Search ranks stored vectors by cosine similarity to vector. A non-positive
// topK returns every stored vector.
func (s *Storage) Search(vector []float64, topK int) ([]domain.Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(vector) != s.dimension {
		return nil, errors.New("query dimension mismatch")
	}
	q := normalized(vector)
	scores := make([]float64, len(s.vectors))
	for i := range s.vectors {
		scores[i] = floats.Dot(s.vectors[i], q)
	}
	idxs := argsortDesc(scores)
	if topK <= 0 || topK > len(idxs) {
		topK = len(idxs)
	}
	results := make([]domain.Match, 0, topK)
	for i := 0; i < topK; i++ {
		j := idxs[i]
		results = append(results, domain.Match{ID: s.ids[j], Score: scores[j]})
	}
	return results, nil
}

func (s *Storage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.ids)
}

func (s *Storage) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vectors = nil
	s.ids = nil
	return nil
}

func normalized(v []float64) []float64 {
	out := make([]float64, len(v))
	copy(out, v)
	if norm := floats.Norm(out, 2); norm > 0 {
		floats.Scale(1/norm, out)
	}
	return out
}

// argsortDesc orders indexes by descending value; ties keep insertion order.
func argsortDesc(vals []float64) []int {
	idxs := make([]int, len(vals))
	for i := range vals {
		idxs[i] = i
	}
	sort.SliceStable(idxs, func(a, b int) bool { return vals[idxs[a]] > vals[idxs[b]] })
	return idxs
}
