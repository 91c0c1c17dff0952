package termq

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/termq/catalog"
	"github.com/hupe1980/termq/docstore"
	"github.com/hupe1980/termq/index"
	"github.com/hupe1980/termq/index/field"
	"github.com/hupe1980/termq/index/set"
	"github.com/hupe1980/termq/index/text/bm25"
	"github.com/hupe1980/termq/intid"
	"github.com/hupe1980/termq/model"
	"github.com/hupe1980/termq/query"
	"github.com/hupe1980/termq/resource"
	"github.com/hupe1980/termq/value"
)

var (
	color = model.Ref("things", "color")
	size  = model.Ref("things", "size")
	tags  = model.Ref("things", "tags")
	desc  = model.Ref("things", "desc")
)

type thing struct {
	Name string
}

func newSite(t *testing.T) *catalog.Site {
	t.Helper()

	cat := catalog.New("things")
	require.NoError(t, cat.Add(field.New("color")))
	require.NoError(t, cat.Add(field.New("size")))
	require.NoError(t, cat.Add(set.New("tags")))
	require.NoError(t, cat.Add(bm25.New("desc")))

	objects := intid.New()
	for i, d := range []struct {
		color string
		size  int64
		tags  []string
		desc  string
	}{
		{"red", 3, []string{"round"}, "a red ball"},
		{"blue", 1, []string{"square", "small"}, "a blue box"},
		{"red", 2, []string{"square"}, "a red box"},
		{"green", 5, nil, "a green hat"},
	} {
		id, err := objects.Register(context.Background(), &thing{Name: fmt.Sprintf("thing-%d", i+1)})
		require.NoError(t, err)
		require.NoError(t, cat.IndexDoc(id, value.Document{
			"color": value.String(d.color),
			"size":  value.Int(d.size),
			"tags":  value.Strings(d.tags),
			"desc":  value.String(d.desc),
		}))
	}
	return catalog.NewSite("root", catalog.WithCatalog(cat), catalog.WithObjects(objects))
}

func names(res *query.Result) []string {
	var out []string
	for obj := range res.All() {
		out = append(out, obj.(*thing).Name)
	}
	return out
}

func TestNew(t *testing.T) {
	_, err := New(nil)
	assert.ErrorIs(t, err, ErrNilContext)

	eng, err := New(newSite(t), nil, WithLogger(nil), WithMetricsCollector(nil))
	require.NoError(t, err)
	assert.NotNil(t, eng.Context())
}

func TestEngineSearch(t *testing.T) {
	metrics := &BasicMetricsCollector{}
	eng, err := New(newSite(t), WithMetricsCollector(metrics))
	require.NoError(t, err)
	ctx := context.Background()

	res, err := eng.Search(ctx,
		query.Eq(color, value.String("red")).Or(query.AnyOf(tags, value.String("small"))),
		query.WithSort(size),
	)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Total())
	assert.Equal(t, []string{"thing-2", "thing-3", "thing-1"}, names(res))

	ids, err := eng.Evaluate(ctx, query.Text(desc, "box"))
	require.NoError(t, err)
	assert.Equal(t, []model.DocID{2, 3}, ids.IDs())

	stats := metrics.GetStats()
	assert.Equal(t, int64(1), stats.SearchCount)
	assert.Equal(t, int64(3), stats.SearchResults)
	assert.Equal(t, int64(1), stats.EvaluateCount)
	assert.Zero(t, stats.SearchErrors)
}

func TestEngineDefaultSearchOptions(t *testing.T) {
	eng, err := New(newSite(t), WithDefaultSearchOptions(query.WithSort(size), query.WithLimit(2)))
	require.NoError(t, err)

	res, err := eng.Search(context.Background(), query.All(color))
	require.NoError(t, err)
	assert.Equal(t, 4, res.Total())
	assert.Equal(t, []string{"thing-2", "thing-3"}, names(res))

	// per-call options override the defaults
	res, err = eng.Search(context.Background(), query.All(color), query.WithReverse(), query.WithLimit(1))
	require.NoError(t, err)
	assert.Equal(t, []string{"thing-4"}, names(res))
}

func TestEngineErrors(t *testing.T) {
	metrics := &BasicMetricsCollector{}
	eng, err := New(newSite(t), WithMetricsCollector(metrics))
	require.NoError(t, err)
	ctx := context.Background()

	t.Run("Capability", func(t *testing.T) {
		_, err := eng.Search(ctx, query.AnyOf(color, value.String("red")))
		var mc *ErrMissingCapability
		require.ErrorAs(t, err, &mc)
		assert.Equal(t, color, mc.Ref)
		assert.Equal(t, index.CapSet, mc.Capability)
		assert.ErrorIs(t, err, ErrUnsupported)
	})

	t.Run("Sort", func(t *testing.T) {
		_, err := eng.Search(ctx, query.All(color), query.WithSort(tags))
		var mc *ErrMissingCapability
		require.ErrorAs(t, err, &mc)
		assert.Equal(t, index.CapSort, mc.Capability)
		assert.ErrorIs(t, err, ErrUnsupported)
	})

	t.Run("Unresolved", func(t *testing.T) {
		_, err := eng.Search(ctx, query.All(model.Ref("nope", "color")))
		assert.ErrorIs(t, err, ErrUnresolved)
	})

	t.Run("Incomparable", func(t *testing.T) {
		_, err := eng.Search(ctx, query.Between(size, value.Int(1), value.String("z")))
		assert.ErrorIs(t, err, ErrIncomparable)
	})

	t.Run("InvalidOption", func(t *testing.T) {
		_, err := eng.Search(ctx, query.All(color), query.WithLimit(-1))
		assert.ErrorIs(t, err, ErrInvalidOption)
	})

	assert.Equal(t, int64(5), metrics.GetStats().SearchErrors)
}

func TestTranslateError(t *testing.T) {
	assert.Nil(t, translateError(nil))

	err := translateError(fmt.Errorf("load: %w", docstore.ErrNotFound))
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, err, docstore.ErrNotFound)

	assert.ErrorIs(t, translateError(intid.ErrNotFound), ErrNotFound)

	plain := errors.New("boom")
	assert.Same(t, plain, translateError(plain))
}

func TestEngineSearchAll(t *testing.T) {
	metrics := &BasicMetricsCollector{}
	eng, err := New(newSite(t),
		WithMetricsCollector(metrics),
		WithResourceController(resource.NewController(resource.Config{MaxConcurrentSearches: 2})),
	)
	require.NoError(t, err)
	ctx := context.Background()

	results, err := eng.SearchAll(ctx, []Request{
		{Term: query.Eq(color, value.String("red"))},
		{Term: query.Ge(size, value.Int(3)), Options: []query.SearchOption{query.WithSort(size)}},
		{Term: query.Text(desc, "hat")},
		{Term: query.Not(query.Eq(color, value.String("red")))},
	})
	require.NoError(t, err)
	require.Len(t, results, 4)
	assert.Equal(t, []model.DocID{1, 3}, results[0].IDs())
	assert.Equal(t, []model.DocID{1, 4}, results[1].IDs())
	assert.Equal(t, []model.DocID{4}, results[2].IDs())
	assert.Equal(t, []model.DocID{2, 4}, results[3].IDs())

	_, err = eng.SearchAll(ctx, []Request{
		{Term: query.All(color)},
		{Term: query.AllOf(size, value.Int(1))},
	})
	assert.ErrorIs(t, err, ErrUnsupported)

	stats := metrics.GetStats()
	assert.Equal(t, int64(2), stats.BatchSearchCount)
	assert.Equal(t, int64(6), stats.BatchSearchItems)
	// the sibling may also be cancelled before it starts
	assert.GreaterOrEqual(t, stats.BatchSearchFailed, int64(1))
}

func TestEngineConcurrentSearch(t *testing.T) {
	eng, err := New(newSite(t))
	require.NoError(t, err)

	term := query.And(query.Eq(color, value.String("red")), query.Le(size, value.Int(2)))
	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := eng.Search(context.Background(), term)
			assert.NoError(t, err)
			assert.Equal(t, []model.DocID{3}, res.IDs())
		}()
	}
	wg.Wait()
}

func TestEngineTextRejected(t *testing.T) {
	var buf bytes.Buffer
	metrics := &BasicMetricsCollector{}
	logger := NewLogger(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	eng, err := New(newSite(t), WithLogger(logger), WithMetricsCollector(metrics))
	require.NoError(t, err)

	res, err := eng.Search(context.Background(), query.Text(desc, "red AND ("))
	require.NoError(t, err)
	assert.Zero(t, res.Total())

	assert.Equal(t, int64(1), metrics.GetStats().TextRejected)
	assert.Contains(t, buf.String(), `"msg":"text query rejected"`)
	assert.Contains(t, buf.String(), `"index":"things.desc"`)
	assert.Contains(t, buf.String(), `"msg":"search completed"`)
	assert.Contains(t, buf.String(), `"term":"Text(things.desc, `)
}
