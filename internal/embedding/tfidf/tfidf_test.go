package tfidf

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docvec/internal/domain"
)

func corpus() domain.Corpus {
	return domain.Corpus{
		{ID: "0", Words: strings.Fields("the river runs cold under the bridge river")},
		{ID: "1", Words: strings.Fields("a fire burns bright in the night fire")},
		{ID: "2", Words: strings.Fields("cold night wind over the river")},
	}
}

func TestTrainer_VocabularyRespectsMinCount(t *testing.T) {
	model, err := NewTrainer().Train(corpus(), domain.TrainParams{MinCount: 2})
	require.NoError(t, err)
	m := model.(*Model)
	// river(3), cold(2), fire(2), night(2); stopwords dropped
	assert.Equal(t, 4, m.Dimension())
	assert.Contains(t, m.vocabulary, "river")
	assert.NotContains(t, m.vocabulary, "bridge")
	assert.NotContains(t, m.vocabulary, "the")
}

func TestTrainer_SelfRanksFirst(t *testing.T) {
	c := corpus()
	model, err := NewTrainer().Train(c, domain.TrainParams{MinCount: 1})
	require.NoError(t, err)
	for _, doc := range c {
		vec, err := model.Infer(doc.Words)
		require.NoError(t, err)
		matches, err := model.Rank(vec)
		require.NoError(t, err)
		require.Len(t, matches, len(c))
		assert.Equal(t, doc.ID, matches[0].ID)
		assert.InDelta(t, 1.0, matches[0].Score, 1e-9)
	}
}

func TestTrainer_InferUnknownWordsIsZero(t *testing.T) {
	model, err := NewTrainer().Train(corpus(), domain.TrainParams{MinCount: 1})
	require.NoError(t, err)
	vec, err := model.Infer([]string{"zebra", "the"})
	require.NoError(t, err)
	for _, v := range vec {
		assert.Zero(t, v)
	}
}

func TestTrainer_Errors(t *testing.T) {
	_, err := NewTrainer().Train(nil, domain.TrainParams{})
	assert.Error(t, err)
	_, err = NewTrainer().Train(corpus(), domain.TrainParams{MinCount: 100})
	assert.Error(t, err)
}
