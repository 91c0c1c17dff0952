package catalog

import (
	"testing"

	"github.com/hupe1980/termq/index/field"
	"github.com/hupe1980/termq/index/set"
	"github.com/hupe1980/termq/intid"
	"github.com/hupe1980/termq/model"
	"github.com/hupe1980/termq/query"
	"github.com/hupe1980/termq/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalog(t *testing.T) {
	c := New("catalog1")
	f1, tags := field.New("f1"), set.New("tags")
	require.NoError(t, c.Add(f1))
	require.NoError(t, c.Add(tags))
	assert.ErrorIs(t, c.Add(field.New("f1")), ErrDuplicate)

	idx, ok := c.Index("f1")
	require.True(t, ok)
	assert.Same(t, f1, idx)
	assert.Equal(t, model.Ref("catalog1", "tags"), c.Ref("tags"))

	names := []string{}
	for _, ix := range c.Indexes() {
		names = append(names, ix.Name())
	}
	assert.Equal(t, []string{"f1", "tags"}, names)

	require.NoError(t, c.IndexDoc(1, value.Document{
		"f1":   value.String("a"),
		"tags": value.Strings([]string{"x", "y"}),
	}))
	assert.True(t, f1.All().Contains(1))
	assert.True(t, tags.All().Contains(1))

	c.UnindexDoc(1)
	assert.True(t, f1.All().IsEmpty())
	assert.True(t, tags.All().IsEmpty())

	assert.True(t, c.Remove("tags"))
	assert.False(t, c.Remove("tags"))
	_, ok = c.Index("tags")
	assert.False(t, ok)
}

func TestSiteLookup(t *testing.T) {
	objs := intid.New()
	global := New("catalog1")
	local := New("catalog1")
	other := New("catalog2")

	root := NewSite("root", WithObjects(objs), WithCatalog(global), WithCatalog(other))
	folder := root.Child("folder")
	require.NoError(t, folder.AddCatalog(local))
	assert.ErrorIs(t, folder.AddCatalog(local), ErrDuplicate)

	c, err := folder.Catalog("catalog1")
	require.NoError(t, err)
	assert.Same(t, local, c)

	c, err = folder.Catalog("catalog2")
	require.NoError(t, err)
	assert.Same(t, other, c)

	c, err = root.Catalog("catalog1")
	require.NoError(t, err)
	assert.Same(t, global, c)

	_, err = folder.Catalog("missing")
	assert.ErrorIs(t, err, query.ErrUnresolved)

	assert.Same(t, objs, folder.Objects())
	assert.Same(t, root, folder.Parent())

	own := intid.New()
	folder.SetObjects(own)
	assert.Same(t, own, folder.Objects())
	assert.Same(t, objs, root.Objects())
	assert.Nil(t, NewSite("bare").Objects())
}
