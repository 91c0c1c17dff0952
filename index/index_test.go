package index

import (
	"testing"

	"github.com/hupe1980/termq/value"
	"github.com/stretchr/testify/assert"
)

func TestCapability(t *testing.T) {
	c := CapField | CapExtent | CapSort
	assert.True(t, c.Has(CapField))
	assert.True(t, c.Has(CapField|CapSort))
	assert.False(t, c.Has(CapText))
	assert.Equal(t, "field|extent|sort", c.String())
	assert.Equal(t, "none", Capability(0).String())
}

func TestRangeContains(t *testing.T) {
	r := Range{Min: value.Int(2), Max: value.Int(5), ExcludeMax: true}
	assert.False(t, r.Contains(value.Int(1)))
	assert.True(t, r.Contains(value.Int(2)))
	assert.True(t, r.Contains(value.Float(4.5)))
	assert.False(t, r.Contains(value.Int(5)))
	assert.False(t, r.Contains(value.String("3")))
	assert.False(t, r.Contains(value.Null()))
	assert.Equal(t, "[2, 5)", r.String())

	open := Range{Min: value.String("b")}
	assert.True(t, open.Contains(value.String("z")))
	assert.False(t, open.Contains(value.String("a")))

	assert.True(t, Range{}.Unbounded())
	assert.True(t, Range{}.Contains(value.Bool(false)))
}

func TestRangeValidate(t *testing.T) {
	assert.NoError(t, Range{Min: value.Int(1), Max: value.Float(2)}.Validate())
	assert.NoError(t, Range{Max: value.String("x")}.Validate())
	assert.ErrorIs(t, Range{Min: value.Int(1), Max: value.String("x")}.Validate(), value.ErrIncomparable)
	assert.ErrorIs(t, Range{Min: value.Ints([]int{1})}.Validate(), value.ErrIncomparable)
}
