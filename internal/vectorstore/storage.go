package vectorstore

import "docvec/internal/domain"

// Storage persists tagged vectors and ranks them against a query.
type Storage interface {
	Init(dimension int) error
	Upsert(ids []string, vectors [][]float64) error
	Search(vector []float64, topK int) ([]domain.Match, error)
	Len() int
	Clear() error
}
