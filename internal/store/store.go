// Package store loads and saves named datasets (corpora and pairing sets).
// Backends live in subpackages; values are JSON-encoded.
package store

import (
	"errors"
	"fmt"
	"strings"

	"docvec/internal/domain"
)

// ErrNotFound is returned when no dataset exists under a name.
var ErrNotFound = errors.New("dataset not found")

// Store is a "load by name" dataset collection.
type Store interface {
	Load(name string, v any) error
	Save(name string, v any) error
	Names() ([]string, error)
	Close() error
}

// ValidateName rejects names that cannot be used as a file or key name.
func ValidateName(name string) error {
	if name == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return fmt.Errorf("invalid dataset name %q", name)
	}
	return nil
}

// LoadCorpus loads a corpus and checks that document IDs are present and unique.
func LoadCorpus(s Store, name string) (domain.Corpus, error) {
	var c domain.Corpus
	if err := s.Load(name, &c); err != nil {
		return nil, fmt.Errorf("load corpus %s: %w", name, err)
	}
	if len(c) == 0 {
		return nil, fmt.Errorf("corpus %s is empty", name)
	}
	seen := make(map[string]struct{}, len(c))
	for i, d := range c {
		if d.ID == "" {
			return nil, fmt.Errorf("corpus %s: document %d has no id", name, i)
		}
		if _, dup := seen[d.ID]; dup {
			return nil, fmt.Errorf("corpus %s: duplicate document id %q", name, d.ID)
		}
		seen[d.ID] = struct{}{}
	}
	return c, nil
}

// LoadPairings loads a pairing set.
func LoadPairings(s Store, name string) (domain.PairingSet, error) {
	var p domain.PairingSet
	if err := s.Load(name, &p); err != nil {
		return nil, fmt.Errorf("load pairings %s: %w", name, err)
	}
	if len(p) == 0 {
		return nil, fmt.Errorf("pairing set %s is empty", name)
	}
	return p, nil
}
