package docstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/termq/blobstore"
	"github.com/hupe1980/termq/codec"
	"github.com/hupe1980/termq/idset"
	"github.com/hupe1980/termq/internal/cache"
	"github.com/hupe1980/termq/model"
	"github.com/hupe1980/termq/query"
	"github.com/hupe1980/termq/resource"
	"github.com/hupe1980/termq/value"
)

const (
	manifestName  = "MANIFEST"
	recordsPrefix = "records/"

	defaultCacheSize   = 8 << 20
	defaultConcurrency = 4
)

var (
	// ErrNotFound is returned for unknown ids and keys.
	ErrNotFound = errors.New("docstore: record not found")
	// ErrUnsupportedObject is returned by Register for objects that are not records.
	ErrUnsupportedObject = errors.New("docstore: unsupported object")
	// ErrEmptyKey is returned when storing a record without a key.
	ErrEmptyKey = errors.New("docstore: empty record key")
)

var _ query.ObjectResolver = (*Store)(nil)

// Record is the unit stored by a Store.
type Record struct {
	Key    string         `json:"key"`
	Fields value.Document `json:"fields,omitempty"`
}

// Indexer receives the fields of stored records. *catalog.Catalog implements it.
type Indexer interface {
	IndexDoc(id model.DocID, doc value.Document) error
	UnindexDoc(id model.DocID)
}

type options struct {
	codec       codec.Codec
	compression Compression
	cacheSize   int64
	rc          *resource.Controller
	indexer     Indexer
	logger      *slog.Logger
	concurrency int
}

// Option configures a Store.
type Option func(*options)

// WithCodec sets the record encoding. Defaults to codec.Default.
func WithCodec(c codec.Codec) Option {
	return func(o *options) { o.codec = c }
}

// WithCompression sets the block compression for new records. Defaults to ZSTD.
func WithCompression(c Compression) Option {
	return func(o *options) { o.compression = c }
}

// WithCacheSize sets the record cache capacity in bytes. Zero disables caching.
func WithCacheSize(bytes int64) Option {
	return func(o *options) { o.cacheSize = bytes }
}

// WithResourceController bounds cache memory and read throughput.
func WithResourceController(rc *resource.Controller) Option {
	return func(o *options) { o.rc = rc }
}

// WithIndexer keeps an indexer in sync with stored records.
func WithIndexer(ix Indexer) Option {
	return func(o *options) { o.indexer = ix }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithReindexConcurrency bounds the parallel record loads of Reindex.
func WithReindexConcurrency(n int) Option {
	return func(o *options) { o.concurrency = n }
}

// Store is a blob-backed record store.
type Store struct {
	blobs blobstore.BlobStore
	opts  options
	cache *cache.LRU

	mu       sync.RWMutex
	manifest *manifest
	all      *idset.Set
}

// Open opens the store kept in blobs, loading its manifest if one exists.
func Open(ctx context.Context, blobs blobstore.BlobStore, optFns ...Option) (*Store, error) {
	o := options{
		codec:       codec.Default,
		compression: CompressionZSTD,
		cacheSize:   defaultCacheSize,
		concurrency: defaultConcurrency,
	}
	for _, fn := range optFns {
		fn(&o)
	}
	if o.logger == nil {
		o.logger = slog.New(slog.DiscardHandler)
	}
	if o.concurrency <= 0 {
		o.concurrency = defaultConcurrency
	}

	s := &Store{
		blobs: blobs,
		opts:  o,
		all:   idset.New(),
	}
	if o.cacheSize > 0 {
		s.cache = cache.NewLRU(o.cacheSize, o.rc)
	}

	m, err := s.loadManifest(ctx)
	if err != nil {
		return nil, err
	}
	s.manifest = m
	for id := range m.ids {
		s.all.Add(id)
	}

	o.logger.Debug("docstore opened", "records", len(m.ids), "codec", o.codec.Name(), "compression", o.compression.String())
	return s, nil
}

func (s *Store) loadManifest(ctx context.Context) (*manifest, error) {
	blob, err := s.blobs.Open(ctx, manifestName)
	if errors.Is(err, blobstore.ErrNotFound) {
		return newManifest(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("open manifest: %w", err)
	}
	defer blob.Close()

	return decodeManifest(s.reader(ctx, blob))
}

func (s *Store) reader(ctx context.Context, blob blobstore.Blob) io.Reader {
	return resource.NewRateLimitedReader(ctx, io.NewSectionReader(blob, 0, blob.Size()), s.opts.rc)
}

func (s *Store) saveManifestLocked(ctx context.Context) error {
	data, err := s.manifest.encode()
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	if err := s.blobs.Put(ctx, manifestName, data); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	return nil
}

func recordName(id model.DocID) string {
	return recordsPrefix + strconv.FormatUint(uint64(id), 10)
}

// Put stores rec, replacing any record with the same key, and returns its id.
func (s *Store) Put(ctx context.Context, rec Record) (model.DocID, error) {
	if rec.Key == "" {
		return 0, ErrEmptyKey
	}

	payload, err := s.opts.codec.Marshal(rec)
	if err != nil {
		return 0, fmt.Errorf("encode record %q: %w", rec.Key, err)
	}
	block, err := compressBlock(payload, s.opts.compression)
	if err != nil {
		return 0, fmt.Errorf("compress record %q: %w", rec.Key, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id, isNew := s.manifest.assign(rec.Key)
	name := recordName(id)

	if err := s.blobs.Put(ctx, name, block); err != nil {
		if isNew {
			s.manifest.remove(id)
		}
		return 0, fmt.Errorf("write record %q: %w", rec.Key, err)
	}
	if isNew {
		if err := s.saveManifestLocked(ctx); err != nil {
			s.manifest.remove(id)
			_ = s.blobs.Delete(ctx, name)
			return 0, err
		}
		s.all.Add(id)
	}

	if s.cache != nil {
		s.cache.Set(name, payload)
	}

	if ix := s.opts.indexer; ix != nil {
		if !isNew {
			ix.UnindexDoc(id)
		}
		if err := ix.IndexDoc(id, rec.Fields); err != nil {
			return id, fmt.Errorf("index record %q: %w", rec.Key, err)
		}
	}

	s.opts.logger.Debug("record stored", "id", id, "key", rec.Key, "bytes", len(block), "new", isNew)
	return id, nil
}

// Get loads the record stored under id.
func (s *Store) Get(ctx context.Context, id model.DocID) (Record, error) {
	s.mu.RLock()
	key, ok := s.manifest.ids[id]
	s.mu.RUnlock()
	if !ok {
		return Record{}, fmt.Errorf("%w: id %d", ErrNotFound, id)
	}

	name := recordName(id)
	payload, err := s.load(ctx, name)
	if errors.Is(err, blobstore.ErrNotFound) {
		return Record{}, fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	if err != nil {
		return Record{}, fmt.Errorf("load record %q: %w", key, err)
	}

	var rec Record
	if err := s.opts.codec.Unmarshal(payload, &rec); err != nil {
		return Record{}, fmt.Errorf("decode record %q: %w", key, err)
	}
	return rec, nil
}

func (s *Store) load(ctx context.Context, name string) ([]byte, error) {
	if s.cache != nil {
		if payload, ok := s.cache.Get(name); ok {
			return payload, nil
		}
	}

	blob, err := s.blobs.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	defer blob.Close()

	block, err := io.ReadAll(s.reader(ctx, blob))
	if err != nil {
		return nil, err
	}
	payload, err := decompressBlock(block)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		s.cache.Set(name, payload)
	}
	return payload, nil
}

// Lookup returns the id of the record stored under key.
func (s *Store) Lookup(key string) (model.DocID, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.manifest.keys[key]
	return id, ok
}

// Delete removes the record stored under id. Its id is not reused.
func (s *Store) Delete(ctx context.Context, id model.DocID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key, ok := s.manifest.remove(id)
	if !ok {
		return fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	if err := s.saveManifestLocked(ctx); err != nil {
		s.manifest.keys[key] = id
		s.manifest.ids[id] = key
		return err
	}
	s.all.Remove(id)

	name := recordName(id)
	if s.cache != nil {
		s.cache.Invalidate(name)
	}
	if err := s.blobs.Delete(ctx, name); err != nil {
		// The manifest no longer references the blob; it is only garbage now.
		s.opts.logger.Warn("orphaned record blob", "id", id, "key", key, "error", err)
	}
	if ix := s.opts.indexer; ix != nil {
		ix.UnindexDoc(id)
	}

	s.opts.logger.Debug("record deleted", "id", id, "key", key)
	return nil
}

// Object implements query.ObjectResolver and returns the Record stored under id.
func (s *Store) Object(ctx context.Context, id model.DocID) (any, error) {
	return s.Get(ctx, id)
}

// Register implements query.ObjectResolver. Records and record pointers are
// stored if their key is unknown; a string is looked up as a key. A known key
// returns its id without rewriting the record.
func (s *Store) Register(ctx context.Context, obj any) (model.DocID, error) {
	var rec Record
	switch o := obj.(type) {
	case Record:
		rec = o
	case *Record:
		if o == nil {
			return 0, fmt.Errorf("%w: nil record", ErrUnsupportedObject)
		}
		rec = *o
	case string:
		if id, ok := s.Lookup(o); ok {
			return id, nil
		}
		return 0, fmt.Errorf("%w: key %q", ErrNotFound, o)
	default:
		return 0, fmt.Errorf("%w: %T", ErrUnsupportedObject, obj)
	}

	if id, ok := s.Lookup(rec.Key); ok {
		return id, nil
	}
	return s.Put(ctx, rec)
}

// All implements query.ObjectResolver.
func (s *Store) All() *idset.Set {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.all.Clone()
}

// Len returns the number of stored records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.manifest.ids)
}

// Reindex loads every record and feeds it to the indexer. It is used after
// Open to rebuild in-memory indexes.
func (s *Store) Reindex(ctx context.Context) error {
	ix := s.opts.indexer
	if ix == nil {
		return nil
	}

	ids := s.All().IDs()
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.concurrency)

	for _, id := range ids {
		g.Go(func() error {
			rec, err := s.Get(ctx, id)
			if errors.Is(err, ErrNotFound) {
				return nil
			}
			if err != nil {
				return err
			}
			ix.UnindexDoc(id)
			return ix.IndexDoc(id, rec.Fields)
		})
	}

	if err := g.Wait(); err != nil {
		return fmt.Errorf("reindex: %w", err)
	}
	s.opts.logger.Info("docstore reindexed", "records", len(ids))
	return nil
}

// CacheStats returns record cache hits and misses.
func (s *Store) CacheStats() (hits, misses int64) {
	if s.cache == nil {
		return 0, 0
	}
	return s.cache.Stats()
}
