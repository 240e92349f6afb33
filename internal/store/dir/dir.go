package dir

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"docvec/internal/store"
)

const ext = ".json"

// Store keeps each dataset as <root>/<name>.json.
type Store struct {
	root string
}

// New returns a store rooted at root. The directory is created on first Save.
func New(root string) *Store { return &Store{root: root} }

func (s *Store) path(name string) string { return filepath.Join(s.root, name+ext) }

func (s *Store) Load(name string, v any) error {
	if err := store.ValidateName(name); err != nil {
		return err
	}
	data, err := os.ReadFile(s.path(name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%s: %w", name, store.ErrNotFound)
		}
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", name, err)
	}
	return nil
}

func (s *Store) Save(name string, v any) error {
	if err := store.ValidateName(name); err != nil {
		return err
	}
	if err := os.MkdirAll(s.root, 0o755); err != nil {
		return err
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	return os.WriteFile(s.path(name), data, 0o644)
}

// Names lists stored datasets in lexical order.
func (s *Store) Names() ([]string, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ext) {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), ext))
	}
	sort.Strings(names)
	return names, nil
}

func (s *Store) Close() error { return nil }
