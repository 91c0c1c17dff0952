package query_test

import (
	"context"
	"testing"

	"github.com/hupe1980/termq/catalog"
	"github.com/hupe1980/termq/index/field"
	"github.com/hupe1980/termq/index/set"
	"github.com/hupe1980/termq/index/text/bm25"
	"github.com/hupe1980/termq/intid"
	"github.com/hupe1980/termq/model"
	"github.com/hupe1980/termq/query"
	"github.com/hupe1980/termq/value"
	"github.com/stretchr/testify/require"
)

type doc struct {
	ID   int
	F1   string
	F2   string
	Tags []string
	Body string
}

type fixture struct {
	site    *catalog.Site
	catalog *catalog.Catalog
	objects *intid.Registry
	docs    map[model.DocID]*doc
}

var (
	f1   = model.Ref("catalog1", "f1")
	f2   = model.Ref("catalog1", "f2")
	tags = model.Ref("catalog1", "tags")
	body = model.Ref("catalog1", "body")
)

// newFixture indexes documents 1-6 with
//
//	f1 = a, a, X, a, X, Y
//	f2 = b, c, c, b, b, Z
func newFixture(t *testing.T) *fixture {
	t.Helper()

	cat := catalog.New("catalog1")
	require.NoError(t, cat.Add(field.New("f1")))
	require.NoError(t, cat.Add(field.New("f2")))
	require.NoError(t, cat.Add(set.New("tags")))
	require.NoError(t, cat.Add(bm25.New("body")))

	reg := intid.New()
	f := &fixture{
		site:    catalog.NewSite("root", catalog.WithObjects(reg), catalog.WithCatalog(cat)),
		catalog: cat,
		objects: reg,
		docs:    make(map[model.DocID]*doc),
	}

	for _, d := range []*doc{
		{ID: 1, F1: "a", F2: "b", Tags: []string{"x", "y"}, Body: "quick brown fox"},
		{ID: 2, F1: "a", F2: "c", Tags: []string{"y"}, Body: "lazy dog"},
		{ID: 3, F1: "X", F2: "c", Tags: []string{"z"}, Body: "quick dog"},
		{ID: 4, F1: "a", F2: "b", Tags: []string{"x", "y", "z"}},
		{ID: 5, F1: "X", F2: "b", Body: "fox"},
		{ID: 6, F1: "Y", F2: "Z", Tags: []string{"x"}, Body: "brown"},
	} {
		f.add(t, d)
	}
	return f
}

func (f *fixture) add(t *testing.T, d *doc) model.DocID {
	t.Helper()

	id, err := f.objects.Register(context.Background(), d)
	require.NoError(t, err)
	f.docs[id] = d

	fields := value.Document{"tags": value.Strings(d.Tags)}
	if d.F1 != "" {
		fields["f1"] = value.String(d.F1)
	}
	if d.F2 != "" {
		fields["f2"] = value.String(d.F2)
	}
	if d.Body != "" {
		fields["body"] = value.String(d.Body)
	}
	require.NoError(t, f.catalog.IndexDoc(id, fields))
	return id
}

func (f *fixture) eval(t *testing.T, term query.Term) []model.DocID {
	t.Helper()

	ids, err := query.Evaluate(context.Background(), term, f.site)
	require.NoError(t, err)
	return ids.IDs()
}

func strs(s ...string) []value.Value {
	out := make([]value.Value, len(s))
	for i := range s {
		out[i] = value.String(s[i])
	}
	return out
}
