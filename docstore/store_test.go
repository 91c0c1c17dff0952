package docstore_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/termq/blobstore"
	"github.com/hupe1980/termq/catalog"
	"github.com/hupe1980/termq/codec"
	"github.com/hupe1980/termq/docstore"
	"github.com/hupe1980/termq/index/field"
	"github.com/hupe1980/termq/model"
	"github.com/hupe1980/termq/query"
	"github.com/hupe1980/termq/resource"
	"github.com/hupe1980/termq/value"
)

func book(key, author string, year int64) docstore.Record {
	return docstore.Record{
		Key: key,
		Fields: value.Document{
			"author": value.String(author),
			"year":   value.Int(year),
		},
	}
}

func TestStorePutGet(t *testing.T) {
	ctx := context.Background()

	for _, c := range []docstore.Compression{docstore.CompressionNone, docstore.CompressionLZ4, docstore.CompressionZSTD} {
		t.Run(c.String(), func(t *testing.T) {
			s, err := docstore.Open(ctx, blobstore.NewMemoryStore(), docstore.WithCompression(c))
			require.NoError(t, err)

			id, err := s.Put(ctx, book("b1", "Le Guin", 1969))
			require.NoError(t, err)
			assert.Equal(t, model.DocID(1), id)

			rec, err := s.Get(ctx, id)
			require.NoError(t, err)
			assert.Equal(t, "b1", rec.Key)
			assert.Equal(t, "Le Guin", rec.Fields["author"].StringValue())
			n, _ := rec.Fields["year"].AsInt64()
			assert.Equal(t, int64(1969), n)
		})
	}
}

func TestStoreReplaceKeepsID(t *testing.T) {
	ctx := context.Background()
	s, err := docstore.Open(ctx, blobstore.NewMemoryStore())
	require.NoError(t, err)

	id1, err := s.Put(ctx, book("b1", "Le Guin", 1969))
	require.NoError(t, err)
	id2, err := s.Put(ctx, book("b1", "Le Guin", 1974))
	require.NoError(t, err)
	assert.Equal(t, id1, id2)
	assert.Equal(t, 1, s.Len())

	rec, err := s.Get(ctx, id1)
	require.NoError(t, err)
	n, _ := rec.Fields["year"].AsInt64()
	assert.Equal(t, int64(1974), n)
}

func TestStoreDelete(t *testing.T) {
	ctx := context.Background()
	blobs := blobstore.NewMemoryStore()
	s, err := docstore.Open(ctx, blobs)
	require.NoError(t, err)

	id, err := s.Put(ctx, book("b1", "Le Guin", 1969))
	require.NoError(t, err)
	require.NoError(t, s.Delete(ctx, id))

	_, err = s.Get(ctx, id)
	assert.ErrorIs(t, err, docstore.ErrNotFound)
	assert.ErrorIs(t, s.Delete(ctx, id), docstore.ErrNotFound)
	assert.True(t, s.All().IsEmpty())

	names, err := blobs.List(ctx, "records/")
	require.NoError(t, err)
	assert.Empty(t, names)

	// ids are not reused
	next, err := s.Put(ctx, book("b2", "Butler", 1979))
	require.NoError(t, err)
	assert.Equal(t, model.DocID(2), next)
}

func TestStoreReopen(t *testing.T) {
	ctx := context.Background()
	blobs := blobstore.NewLocalStore(t.TempDir())

	s, err := docstore.Open(ctx, blobs, docstore.WithCodec(codec.JSON{}))
	require.NoError(t, err)
	_, err = s.Put(ctx, book("b1", "Le Guin", 1969))
	require.NoError(t, err)
	id2, err := s.Put(ctx, book("b2", "Butler", 1979))
	require.NoError(t, err)
	_, err = s.Put(ctx, book("b3", "Jemisin", 2015))
	require.NoError(t, err)
	require.NoError(t, s.Delete(ctx, id2))

	reopened, err := docstore.Open(ctx, blobs, docstore.WithCodec(codec.GoJSON{}), docstore.WithCompression(docstore.CompressionLZ4))
	require.NoError(t, err)
	assert.Equal(t, []model.DocID{1, 3}, reopened.All().IDs())

	id, ok := reopened.Lookup("b3")
	require.True(t, ok)
	rec, err := reopened.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Jemisin", rec.Fields["author"].StringValue())

	id4, err := reopened.Put(ctx, book("b4", "Chiang", 2002))
	require.NoError(t, err)
	assert.Equal(t, model.DocID(4), id4)
}

func TestStoreCache(t *testing.T) {
	ctx := context.Background()
	s, err := docstore.Open(ctx, blobstore.NewMemoryStore(),
		docstore.WithResourceController(resource.NewController(resource.Config{IOLimitBytesPerSec: 1 << 20})),
	)
	require.NoError(t, err)

	id, err := s.Put(ctx, book("b1", "Le Guin", 1969))
	require.NoError(t, err)

	for range 3 {
		_, err := s.Get(ctx, id)
		require.NoError(t, err)
	}
	hits, misses := s.CacheStats()
	assert.Equal(t, int64(3), hits)
	assert.Equal(t, int64(0), misses)

	uncached, err := docstore.Open(ctx, blobstore.NewMemoryStore(), docstore.WithCacheSize(0))
	require.NoError(t, err)
	id, err = uncached.Put(ctx, book("b1", "Le Guin", 1969))
	require.NoError(t, err)
	_, err = uncached.Get(ctx, id)
	require.NoError(t, err)
	hits, misses = uncached.CacheStats()
	assert.Zero(t, hits+misses)
}

func TestStoreRegister(t *testing.T) {
	ctx := context.Background()
	s, err := docstore.Open(ctx, blobstore.NewMemoryStore())
	require.NoError(t, err)

	rec := book("b1", "Le Guin", 1969)
	id, err := s.Register(ctx, rec)
	require.NoError(t, err)

	again, err := s.Register(ctx, &rec)
	require.NoError(t, err)
	assert.Equal(t, id, again)

	byKey, err := s.Register(ctx, "b1")
	require.NoError(t, err)
	assert.Equal(t, id, byKey)

	_, err = s.Register(ctx, "missing")
	assert.ErrorIs(t, err, docstore.ErrNotFound)
	_, err = s.Register(ctx, 42)
	assert.ErrorIs(t, err, docstore.ErrUnsupportedObject)
	_, err = s.Put(ctx, docstore.Record{})
	assert.ErrorIs(t, err, docstore.ErrEmptyKey)

	obj, err := s.Object(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "b1", obj.(docstore.Record).Key)
}

type failingStore struct {
	*blobstore.MemoryStore
	failOn string
}

func (f *failingStore) Put(ctx context.Context, name string, data []byte) error {
	if name == f.failOn {
		return errors.New("disk full")
	}
	return f.MemoryStore.Put(ctx, name, data)
}

func TestStorePutRollsBack(t *testing.T) {
	ctx := context.Background()
	blobs := &failingStore{MemoryStore: blobstore.NewMemoryStore(), failOn: "MANIFEST"}
	s, err := docstore.Open(ctx, blobs)
	require.NoError(t, err)

	_, err = s.Put(ctx, book("b1", "Le Guin", 1969))
	require.ErrorContains(t, err, "disk full")

	_, ok := s.Lookup("b1")
	assert.False(t, ok)
	assert.Equal(t, 0, s.Len())
	names, err := blobs.List(ctx, "records/")
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestStoreAsSearchContext(t *testing.T) {
	ctx := context.Background()

	books := catalog.New("books")
	require.NoError(t, books.Add(field.New("author")))
	require.NoError(t, books.Add(field.New("year")))

	blobs := blobstore.NewMemoryStore()
	s, err := docstore.Open(ctx, blobs, docstore.WithIndexer(books))
	require.NoError(t, err)

	for _, r := range []docstore.Record{
		book("b1", "Le Guin", 1969),
		book("b2", "Butler", 1979),
		book("b3", "Le Guin", 1974),
	} {
		_, err := s.Put(ctx, r)
		require.NoError(t, err)
	}

	site := catalog.NewSite("root", catalog.WithCatalog(books), catalog.WithObjects(s))
	term := query.And(
		query.Eq(books.Ref("author"), value.String("Le Guin")),
		query.Ge(books.Ref("year"), value.Int(1970)),
	)

	res, err := query.Search(ctx, term, site)
	require.NoError(t, err)
	require.Equal(t, 1, res.Total())
	first, ok := res.First()
	require.True(t, ok)
	assert.Equal(t, "b3", first.(docstore.Record).Key)

	// replacing a record reindexes it
	_, err = s.Put(ctx, book("b1", "Le Guin", 1985))
	require.NoError(t, err)
	res, err = query.Search(ctx, term, site)
	require.NoError(t, err)
	assert.Equal(t, []model.DocID{1, 3}, res.IDs())

	// Objects leaves register through the store
	res, err = query.Search(ctx, query.Objects("b2", book("b9", "Chiang", 2002)), site)
	require.NoError(t, err)
	assert.Equal(t, []model.DocID{2, 4}, res.IDs())

	// a second catalog rebuilt from the persisted records
	rebuilt := catalog.New("books")
	require.NoError(t, rebuilt.Add(field.New("author")))
	reopened, err := docstore.Open(ctx, blobs, docstore.WithIndexer(rebuilt), docstore.WithReindexConcurrency(2))
	require.NoError(t, err)
	require.NoError(t, reopened.Reindex(ctx))

	idx, _ := rebuilt.Index("author")
	fi := idx.(*field.Index)
	got, err := fi.Equal(value.String("Le Guin"))
	require.NoError(t, err)
	assert.Equal(t, []model.DocID{1, 3}, got.IDs())
}
