package service

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docvec/internal/config"
	"docvec/internal/domain"
	"docvec/internal/embedding/doc2vec"
	"docvec/internal/embedding/tfidf"
	"docvec/internal/store"
	"docvec/internal/store/dir"
)

func seedStore(t *testing.T, st store.Store) {
	t.Helper()
	require.NoError(t, st.Save("ref_corpus", domain.Corpus{
		{ID: "0", Words: []string{"rain", "cloud", "storm", "rain"}},
		{ID: "1", Words: []string{"sun", "beach", "sand", "sun"}},
		{ID: "2", Words: []string{"snow", "ice", "cold", "snow"}},
	}))
	var pairs domain.PairingSet
	for i := 0; i < 3; i++ {
		pairs = append(pairs,
			domain.Pairing{Reference: []string{"rain", "storm"}, Target: []string{"storm", "cloud"}, IsPair: true},
			domain.Pairing{Reference: []string{"sun"}, Target: []string{"sun", "sand", "beach"}, IsPair: true},
			domain.Pairing{Reference: []string{"snow"}, Target: []string{"beach"}, IsPair: false},
			domain.Pairing{Reference: []string{"cloud"}, Target: []string{"ice", "cold"}, IsPair: false},
		)
	}
	require.NoError(t, st.Save("train_pairings", pairs))
	require.NoError(t, st.Save("test_pairings", pairs[:8]))
}

func testConfig(t *testing.T) *config.AppConfig {
	t.Helper()
	out := t.TempDir()
	cfg, err := config.Load(filepath.Join(out, "missing.yaml"))
	require.NoError(t, err)
	cfg.Model.Trainer = "tfidf"
	cfg.Model.MinCount = 1
	cfg.Output.SummaryCSV = filepath.Join(out, "data", "eval_df.csv")
	cfg.Output.ImageDir = filepath.Join(out, "images")
	cfg.Experiments = []config.ExperimentConfig{
		{Name: "r_50", Corpus: "ref_corpus", CorpusLabel: "r_tr", VectorSize: 50},
		{Name: "r_100", Corpus: "ref_corpus", CorpusLabel: "r_tr", VectorSize: 100},
	}
	return cfg
}

func TestNewTrainer(t *testing.T) {
	tr, err := NewTrainer(config.ModelConfig{Trainer: "doc2vec", Seed: 1})
	require.NoError(t, err)
	assert.IsType(t, &doc2vec.Trainer{}, tr)

	tr, err = NewTrainer(config.ModelConfig{Trainer: "tfidf"})
	require.NoError(t, err)
	assert.IsType(t, &tfidf.Trainer{}, tr)

	_, err = NewTrainer(config.ModelConfig{Trainer: "word2vec"})
	assert.Error(t, err)
}

func TestModelOptions(t *testing.T) {
	cfg := testConfig(t)
	cfg.Model.Architecture = "dbow"
	cfg.Model.Epochs = 7
	cfg.Evaluation.Welch = true

	opts := ModelOptions(cfg)
	assert.Equal(t, domain.DistributedBagOfWords, opts.Params.Architecture)
	assert.Equal(t, 7, opts.Params.Epochs)
	assert.Equal(t, 1, opts.Params.MinCount)
	assert.Equal(t, 0.01, opts.Alpha)
	assert.True(t, opts.Welch)
}

func TestExperimentService_RunAll(t *testing.T) {
	st := dir.New(t.TempDir())
	seedStore(t, st)
	cfg := testConfig(t)

	svc := NewExperimentService(st, tfidf.NewTrainer(), cfg, nil)
	assert.NotEmpty(t, svc.RunID())

	sum, err := svc.RunAll()
	require.NoError(t, err)
	require.Equal(t, 2, sum.Len())
	assert.Equal(t, "r_50", sum.Records[0].Name)
	assert.Equal(t, "r_100", sum.Records[1].Name)
	assert.Equal(t, 1.0, sum.Records[0].SelfRecognitionRate)

	assert.FileExists(t, cfg.Output.SummaryCSV)
	entries, err := os.ReadDir(cfg.Output.ImageDir)
	require.NoError(t, err)
	assert.Len(t, entries, 8)
}

func TestExperimentService_Errors(t *testing.T) {
	st := dir.New(t.TempDir())
	cfg := testConfig(t)
	svc := NewExperimentService(st, tfidf.NewTrainer(), cfg, nil)

	_, err := svc.RunExperiment(0)
	assert.Error(t, err)
	assert.ErrorIs(t, svc.Prepare(), store.ErrNotFound)

	seedStore(t, st)
	require.NoError(t, svc.Prepare())
	_, err = svc.RunExperiment(5)
	assert.Error(t, err)

	cfg.Experiments[0].Corpus = "missing_corpus"
	_, err = svc.RunExperiment(0)
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.Equal(t, 0, svc.Summary().Len())
}

func TestImportFiles(t *testing.T) {
	src := t.TempDir()
	good := filepath.Join(src, "ref_train_pcorpus.json")
	require.NoError(t, os.WriteFile(good, []byte(`[{"id":"0","words":["a","b"]}]`), 0o644))
	bad := filepath.Join(src, "broken.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{`), 0o644))

	st := dir.New(t.TempDir())
	names, err := ImportFiles(st, []string{good})
	require.NoError(t, err)
	assert.Equal(t, []string{"ref_train_pcorpus"}, names)

	c, err := store.LoadCorpus(st, "ref_train_pcorpus")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, c[0].Words)

	_, err = ImportFiles(st, []string{bad})
	assert.Error(t, err)
}
