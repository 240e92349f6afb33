package evaluation

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docvec/internal/domain"
	"docvec/internal/embedding/tfidf"
)

func testRegistry(t *testing.T, tr domain.Trainer, plotDir string) *Registry {
	t.Helper()
	train := anglePairings(spread(10, 0, 0.5), spread(10, 2, 3))
	test := anglePairings(spread(5, 0, 0.6), spread(5, 1.8, 3))
	return NewRegistry(tr, train, test, RegistryOptions{Model: DefaultOptions(0), PlotDir: plotDir}, nil)
}

func TestRegistry_TrainAndEvaluateRecordsAutomatically(t *testing.T) {
	tr := &vectorTrainer{}
	dir := t.TempDir()
	reg := testRegistry(t, tr, dir)

	m, err := reg.TrainAndEvaluate("r_50", numberedCorpus(6), "r_tr", 50)
	require.NoError(t, err)
	assert.Equal(t, SignificanceComputed, m.Phase())
	assert.Equal(t, 50, tr.params.VectorSize)
	assert.Equal(t, DefaultMinCount, tr.params.MinCount)
	assert.Equal(t, DefaultEpochs, tr.params.Epochs)
	assert.Equal(t, domain.DistributedMemory, tr.params.Architecture)

	rec, ok := reg.Lookup("r_50")
	require.True(t, ok)
	assert.Equal(t, "r_tr", rec.CorpusLabel)
	assert.Equal(t, 50, rec.VectorSize)
	assert.True(t, rec.CosineTrain.Significant)
	assert.True(t, rec.EuclideanTest.Significant)

	got, ok := reg.Model("r_50")
	require.True(t, ok)
	assert.Same(t, m, got)

	for _, name := range []string{
		"cs_train_dist_r_50.png", "cs_test_dist_r_50.png",
		"ed_train_dist_r_50.png", "ed_test_dist_r_50.png",
	} {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, err, name)
	}
}

func TestRegistry_SameNameOverwrites(t *testing.T) {
	reg := testRegistry(t, &vectorTrainer{}, "")

	_, err := reg.TrainAndEvaluate("r_50", numberedCorpus(4), "r_tr", 50)
	require.NoError(t, err)
	_, err = reg.TrainAndEvaluate("t_50", numberedCorpus(4), "t_tr", 50)
	require.NoError(t, err)
	_, err = reg.TrainAndEvaluate("r_50", numberedCorpus(4), "r_tr_v2", 100)
	require.NoError(t, err)

	assert.Equal(t, 2, reg.Len())
	sum := reg.Summarize()
	require.Equal(t, 2, sum.Len())
	assert.Equal(t, "r_50", sum.Records[0].Name)
	assert.Equal(t, "r_tr_v2", sum.Records[0].CorpusLabel)
	assert.Equal(t, 100, sum.Records[0].VectorSize)
	assert.Equal(t, "t_50", sum.Records[1].Name)
}

func TestRegistry_RecordRejectsIncompleteModel(t *testing.T) {
	reg := testRegistry(t, &vectorTrainer{}, "")
	m := NewModeler("partial", "l", numberedCorpus(2), &vectorTrainer{}, DefaultOptions(2), nil)
	require.NoError(t, m.Fit())

	err := reg.Record(m)
	assert.ErrorIs(t, err, ErrPhase)
	assert.Equal(t, 0, reg.Len())
}

func TestRegistry_SummarizeTable(t *testing.T) {
	reg := testRegistry(t, &vectorTrainer{}, "")
	assert.Equal(t, 0, reg.Summarize().Len())

	_, err := reg.TrainAndEvaluate("rt_200", numberedCorpus(4), "rt_tr", 200)
	require.NoError(t, err)

	sum := reg.Summarize()
	cols := sum.Columns()
	rows := sum.Rows()
	require.Len(t, rows, 1)
	require.Len(t, rows[0], len(cols))
	assert.Equal(t, "model", cols[0])
	assert.Equal(t, "rt_200", rows[0][0])
	assert.Equal(t, "200", rows[0][2])
	assert.Contains(t, cols, "cs_train_p_val")
	assert.Contains(t, cols, "ed_test_is_significant")
	assert.Contains(t, cols, "cs_test_false_min")
}

func TestRegistry_TFIDFEndToEnd(t *testing.T) {
	corpus := domain.Corpus{
		{ID: "0", Words: []string{"rain", "cloud", "storm", "rain"}},
		{ID: "1", Words: []string{"sun", "beach", "sand", "sun"}},
		{ID: "2", Words: []string{"snow", "ice", "cold", "snow"}},
	}
	pairs := func(n int) domain.PairingSet {
		var set domain.PairingSet
		for i := 0; i < n; i++ {
			set = append(set,
				domain.Pairing{Reference: []string{"rain", "storm"}, Target: []string{"storm", "cloud", "rain"}, IsPair: true},
				domain.Pairing{Reference: []string{"sun", "sand"}, Target: []string{"beach", "sun"}, IsPair: true},
				domain.Pairing{Reference: []string{"rain", "cloud"}, Target: []string{"sand", "beach"}, IsPair: false},
				domain.Pairing{Reference: []string{"ice", "snow"}, Target: []string{"sun"}, IsPair: false},
			)
		}
		return set
	}
	opts := DefaultOptions(0)
	opts.Params.MinCount = 1
	reg := NewRegistry(tfidf.NewTrainer(), pairs(3), pairs(2), RegistryOptions{Model: opts}, nil)

	m, err := reg.TrainAndEvaluate("tfidf", corpus, "weather", 0)
	require.NoError(t, err)
	res, ok := m.SelfRecognitionResult()
	require.True(t, ok)
	assert.Equal(t, 1.0, res.Rate)
	assert.True(t, res.Passed)

	rec, ok := reg.Lookup("tfidf")
	require.True(t, ok)
	assert.Greater(t, rec.CosineTrain.True.Mean, rec.CosineTrain.False.Mean)
	assert.Equal(t, 0.0, rec.CosineTrain.False.Max)
}
