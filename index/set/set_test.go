package set

import (
	"testing"

	"github.com/hupe1980/termq/idset"
	"github.com/hupe1980/termq/index"
	"github.com/hupe1980/termq/model"
	"github.com/hupe1980/termq/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strs(s ...string) []value.Value {
	out := make([]value.Value, len(s))
	for i := range s {
		out[i] = value.String(s[i])
	}
	return out
}

func newTestIndex(t *testing.T) *Index {
	t.Helper()

	ix := New("tags")
	docs := map[model.DocID]value.Value{
		1: value.Strings([]string{"a", "b"}),
		2: value.Strings([]string{"b", "c"}),
		3: value.String("c"),
		4: value.Strings([]string{"a", "b", "c", "a"}),
		5: value.Strings(nil),
	}
	for id, v := range docs {
		require.NoError(t, ix.IndexDoc(id, value.Document{"tags": v}))
	}
	return ix
}

func TestAnyOfAllOf(t *testing.T) {
	ix := newTestIndex(t)

	ids, err := ix.AnyOf(strs("a", "c"))
	require.NoError(t, err)
	assert.Equal(t, []model.DocID{1, 2, 3, 4}, ids.IDs())

	ids, err = ix.AllOf(strs("a", "b"))
	require.NoError(t, err)
	assert.Equal(t, []model.DocID{1, 4}, ids.IDs())

	ids, err = ix.AllOf(strs("a", "zzz"))
	require.NoError(t, err)
	assert.True(t, ids.IsEmpty())

	t.Run("EmptyValues", func(t *testing.T) {
		ids, err := ix.AnyOf(nil)
		require.NoError(t, err)
		assert.True(t, ids.IsEmpty())

		ids, err = ix.AllOf(nil)
		require.NoError(t, err)
		assert.Equal(t, []model.DocID{1, 2, 3, 4}, ids.IDs())
	})
}

func TestSetBetween(t *testing.T) {
	ix := New("scores")
	ix.Set(1, value.Ints([]int{1, 9}))
	ix.Set(2, value.Ints([]int{4, 5}))
	ix.Set(3, value.Int(7))

	ids, err := ix.SetBetween(index.Range{Min: value.Int(5), Max: value.Int(7)})
	require.NoError(t, err)
	assert.Equal(t, []model.DocID{2, 3}, ids.IDs())

	ids, err = ix.SetBetween(index.Range{Min: value.Int(5), Max: value.Int(7), ExcludeMin: true})
	require.NoError(t, err)
	assert.Equal(t, []model.DocID{3}, ids.IDs())

	ids, err = ix.SetBetween(index.Range{Min: value.Int(8)})
	require.NoError(t, err)
	assert.Equal(t, []model.DocID{1}, ids.IDs())

	_, err = ix.SetBetween(index.Range{Min: value.Int(1), Max: value.String("x")})
	assert.ErrorIs(t, err, value.ErrIncomparable)
}

func TestExtentAndMaintenance(t *testing.T) {
	ix := newTestIndex(t)

	ids, err := ix.ExtentAny(idset.Of(3, 5, 6))
	require.NoError(t, err)
	assert.Equal(t, []model.DocID{3}, ids.IDs())

	ids, err = ix.ExtentNone(idset.Of(3, 5, 6))
	require.NoError(t, err)
	assert.Equal(t, []model.DocID{5, 6}, ids.IDs())

	ix.UnindexDoc(4)
	ids, _ = ix.AnyOf(strs("a"))
	assert.Equal(t, []model.DocID{1}, ids.IDs())
	assert.Empty(t, ix.Members(4))
	assert.Len(t, ix.Members(1), 2)
}
