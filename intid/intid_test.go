package intid

import (
	"context"
	"testing"

	"github.com/hupe1980/termq/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type doc struct{ name string }

func TestRegister(t *testing.T) {
	ctx := context.Background()
	r := New()

	a, b := &doc{"a"}, &doc{"a"}
	idA, err := r.Register(ctx, a)
	require.NoError(t, err)
	idB, err := r.Register(ctx, b)
	require.NoError(t, err)
	assert.NotEqual(t, idA, idB, "distinct pointers get distinct ids")

	again, err := r.Register(ctx, a)
	require.NoError(t, err)
	assert.Equal(t, idA, again)

	obj, err := r.Object(ctx, idB)
	require.NoError(t, err)
	assert.Same(t, b, obj)

	id, ok := r.ID(a)
	assert.True(t, ok)
	assert.Equal(t, idA, id)
	assert.Equal(t, []model.DocID{idA, idB}, r.All().IDs())
}

func TestNotComparable(t *testing.T) {
	r := New()

	_, err := r.Register(context.Background(), []int{1})
	assert.ErrorIs(t, err, ErrNotComparable)

	_, err = r.Register(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNotComparable)

	_, ok := r.ID(map[string]int{})
	assert.False(t, ok)
}

func TestUnregisterNeverReusesIDs(t *testing.T) {
	ctx := context.Background()
	r := New()

	id1, _ := r.Register(ctx, "one")
	require.NoError(t, r.Unregister(id1))
	assert.ErrorIs(t, r.Unregister(id1), ErrNotFound)

	_, err := r.Object(ctx, id1)
	assert.ErrorIs(t, err, ErrNotFound)

	id2, _ := r.Register(ctx, "one")
	assert.Greater(t, id2, id1)
	assert.Equal(t, 1, r.Len())
}
