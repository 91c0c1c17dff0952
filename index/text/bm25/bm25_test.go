package bm25

import (
	"testing"

	"github.com/hupe1980/termq/idset"
	"github.com/hupe1980/termq/index"
	"github.com/hupe1980/termq/model"
	"github.com/hupe1980/termq/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestIndex(t *testing.T) *Index {
	t.Helper()

	ix := New("body")
	docs := []struct {
		id   model.DocID
		text string
	}{
		{1, "the quick brown fox"},
		{2, "jumped over the lazy dog"},
		{3, "quick brown dogs"},
		{4, "fox and dog"},
	}
	for _, d := range docs {
		require.NoError(t, ix.IndexDoc(d.id, value.Document{"body": value.String(d.text)}))
	}
	return ix
}

func TestMatchText(t *testing.T) {
	ix := newTestIndex(t)

	tests := []struct {
		query string
		want  []model.DocID
	}{
		{"fox", []model.DocID{1, 4}},
		{"FOX", []model.DocID{1, 4}},
		{"quick brown", []model.DocID{1, 3}},
		{"quick AND dog", nil},
		{"fox OR lazy", []model.DocID{1, 2, 4}},
		{"dog NOT lazy", []model.DocID{4}},
		{"NOT fox", []model.DocID{2, 3}},
		{`"brown fox"`, []model.DocID{1}},
		{`"fox brown"`, nil},
		{"dog*", []model.DocID{2, 3, 4}},
		{"(quick OR lazy) AND (dog OR dogs)", []model.DocID{2, 3}},
		{"unknown", nil},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			ids, err := ix.MatchText(tt.query)
			require.NoError(t, err)
			got := ids.IDs()
			if len(got) == 0 {
				got = nil
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMalformedQuery(t *testing.T) {
	ix := newTestIndex(t)

	for _, q := range []string{"", "   ", "(fox", "fox)", "fox AND", "OR fox", `"brown fox`, "()", "NOT"} {
		t.Run(q, func(t *testing.T) {
			_, err := ix.MatchText(q)
			assert.ErrorIs(t, err, index.ErrMalformedQuery)
		})
	}
}

func TestScore(t *testing.T) {
	ix := newTestIndex(t)

	scores, err := ix.Score("fox")
	require.NoError(t, err)
	require.Len(t, scores, 2)
	assert.Greater(t, scores[1], 0.0)
	// shorter document ranks higher for the same term frequency
	assert.Greater(t, scores[4], scores[1])

	_, err = ix.Score("(")
	assert.ErrorIs(t, err, index.ErrMalformedQuery)
}

func TestDelete(t *testing.T) {
	ix := New("body")
	ix.Add(1, "test content")
	ix.Add(2, "other content")

	ids, _ := ix.MatchText("test")
	assert.Equal(t, 1, ids.Len())

	ix.UnindexDoc(1)
	ids, _ = ix.MatchText("test")
	assert.True(t, ids.IsEmpty())
	assert.Equal(t, []model.DocID{2}, ix.All().IDs())

	ix.Add(1, "test content again")
	ids, _ = ix.MatchText("test")
	assert.Equal(t, 1, ids.Len())

	require.NoError(t, ix.IndexDoc(1, value.Document{"body": value.Int(3)}))
	assert.False(t, ix.All().Contains(1))
}

func TestExtent(t *testing.T) {
	ix := newTestIndex(t)

	ids, err := ix.ExtentAny(idset.Of(4, 5))
	require.NoError(t, err)
	assert.Equal(t, []model.DocID{4}, ids.IDs())

	ids, err = ix.ExtentNone(idset.Of(4, 5))
	require.NoError(t, err)
	assert.Equal(t, []model.DocID{5}, ids.IDs())
}

func TestTokenize(t *testing.T) {
	assert.Equal(t, []string{"hello", "wörld", "42"}, Tokenize("Hello, WÖRLD! 42"))
	assert.Empty(t, Tokenize("--"))
}
