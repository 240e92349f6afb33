package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "doc2vec", cfg.Model.Trainer)
	assert.Equal(t, "dm", cfg.Model.Architecture)
	assert.Equal(t, 2, cfg.Model.MinCount)
	assert.Equal(t, 100, cfg.Model.Epochs)
	assert.Equal(t, 0.95, cfg.Evaluation.SuccessThreshold)
	assert.Equal(t, 0.01, cfg.Evaluation.SignificanceLevel)
	assert.Equal(t, "../data/eval_df.csv", cfg.Output.SummaryCSV)
	require.NoError(t, cfg.Validate())
}

func TestDefaultExperiments(t *testing.T) {
	exps := defaultExperiments()
	require.Len(t, exps, 12)
	assert.Equal(t, ExperimentConfig{Name: "r_50", Corpus: "ref_train_pcorpus", CorpusLabel: "r_tr", VectorSize: 50}, exps[0])
	assert.Equal(t, ExperimentConfig{Name: "rt_tagged_200", Corpus: "rt_tagged_train_pcorpus", CorpusLabel: "rt_tagged_tr", VectorSize: 200}, exps[11])

	names := map[string]bool{}
	for _, e := range exps {
		names[e.Name] = true
	}
	assert.Len(t, names, 12)
}

func TestLoad_FileAppliesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "docvec.yaml")
	data := []byte(`
model:
  architecture: dbow
  epochs: 20
experiments:
  - name: small
    corpus: ref_train_pcorpus
    corpus_label: r_tr
    vector_size: 16
`)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "dbow", cfg.Model.Architecture)
	assert.Equal(t, 20, cfg.Model.Epochs)
	assert.Equal(t, 2, cfg.Model.MinCount)
	assert.Equal(t, "doc2vec", cfg.Model.Trainer)
	assert.Equal(t, "dir", cfg.Store.Type)
	require.Len(t, cfg.Experiments, 1)
	assert.Equal(t, "small", cfg.Experiments[0].Name)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("DOCVEC_LOG_LEVEL", "debug")
	t.Setenv("DOCVEC_STORE_TYPE", "badger")
	t.Setenv("DOCVEC_STORE_PATH", "/tmp/datasets")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "badger", cfg.Store.Type)
	assert.Equal(t, "/tmp/datasets", cfg.Store.Path)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"UnknownTrainer", "model:\n  trainer: bert\n"},
		{"UnknownArchitecture", "model:\n  architecture: skipgram\n"},
		{"UnknownStore", "store:\n  type: s3\n"},
		{"MissingCorpus", "experiments:\n  - name: x\n    vector_size: 10\n"},
		{"ZeroVectorSize", "experiments:\n  - name: x\n    corpus: c\n"},
		{"BadYAML", "model: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "docvec.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.body), 0o644))
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := defaultConfig()
	cfg.Model.Seed = 99
	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}
