package store_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docvec/internal/domain"
	"docvec/internal/store"
	"docvec/internal/store/dir"
)

func TestValidateName(t *testing.T) {
	assert.NoError(t, store.ValidateName("ref_train_pcorpus"))
	for _, bad := range []string{"", ".", "..", "a/b", `a\b`} {
		assert.Error(t, store.ValidateName(bad), bad)
	}
}

func TestLoadCorpus(t *testing.T) {
	s := dir.New(t.TempDir())
	require.NoError(t, s.Save("ok", domain.Corpus{{ID: "0", Words: []string{"a"}}, {ID: "1", Words: []string{"b"}}}))
	require.NoError(t, s.Save("dup", domain.Corpus{{ID: "0"}, {ID: "0"}}))
	require.NoError(t, s.Save("noid", domain.Corpus{{Words: []string{"a"}}}))
	require.NoError(t, s.Save("empty", domain.Corpus{}))

	c, err := store.LoadCorpus(s, "ok")
	require.NoError(t, err)
	assert.Len(t, c, 2)

	for _, name := range []string{"dup", "noid", "empty"} {
		_, err := store.LoadCorpus(s, name)
		assert.Error(t, err, name)
	}
	_, err = store.LoadCorpus(s, "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestLoadPairings(t *testing.T) {
	s := dir.New(t.TempDir())
	require.NoError(t, s.Save("train_pairings", domain.PairingSet{
		{Reference: []string{"a"}, Target: []string{"b"}, IsPair: true},
		{Reference: []string{"a"}, Target: []string{"c"}},
	}))

	p, err := store.LoadPairings(s, "train_pairings")
	require.NoError(t, err)
	tru, fls := p.Partition()
	assert.Len(t, tru, 1)
	assert.Len(t, fls, 1)

	_, err = store.LoadPairings(s, "test_pairings")
	assert.ErrorIs(t, err, store.ErrNotFound)
}
