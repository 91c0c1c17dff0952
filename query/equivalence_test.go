package query_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/termq/query"
	"github.com/hupe1980/termq/testutil"
)

func TestEvaluateMatchesBruteForce(t *testing.T) {
	for _, seed := range []int64{1, 7, 42, 1337} {
		rng := testutil.NewRNG(seed)
		docs := rng.Docs(300)
		site, err := testutil.NewSite(docs)
		require.NoError(t, err)

		for i := 0; i < 200; i++ {
			term := rng.Term(3)
			got, err := query.Evaluate(context.Background(), term, site)
			require.NoError(t, err, "seed %d: %s", seed, term)
			assert.Equal(t, testutil.BruteForce(term, docs), got.IDs(), "seed %d: %s", seed, term)
		}
	}
}

func TestNotIsComplement(t *testing.T) {
	rng := testutil.NewRNG(3)
	docs := rng.Docs(100)
	site, err := testutil.NewSite(docs)
	require.NoError(t, err)
	ctx := context.Background()

	for i := 0; i < 50; i++ {
		term := rng.Term(2)
		pos, err := query.Evaluate(ctx, term, site)
		require.NoError(t, err)
		neg, err := query.Evaluate(ctx, query.Not(term), site)
		require.NoError(t, err)

		assert.Equal(t, len(docs), pos.Len()+neg.Len(), term.String())
	}
}
