// Package bleve provides a text index backed by an in-memory bleve index.
//
// Queries use bleve's query string syntax (+required, -excluded, "phrases",
// field:value, prefix*, /regexp/). Text that bleve cannot parse, or that
// parses into a query bleve cannot run (an invalid regexp), fails with
// index.ErrMalformedQuery.
package bleve

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"
	bq "github.com/blevesearch/bleve/v2/search/query"
	"github.com/hupe1980/termq/idset"
	"github.com/hupe1980/termq/index"
	"github.com/hupe1980/termq/model"
	"github.com/hupe1980/termq/value"
)

var (
	_ index.TextQuerier   = (*Index)(nil)
	_ index.ExtentQuerier = (*Index)(nil)
	_ index.Maintainer    = (*Index)(nil)
)

// Index is a text index delegating analysis and matching to bleve.
type Index struct {
	name  string
	field string
	bi    bleve.Index

	mu     sync.RWMutex
	domain *idset.Set
}

// Option configures an Index.
type Option func(*config)

type config struct {
	field   string
	mapping mapping.IndexMapping
}

// WithField reads text from the named document field instead of the index
// name.
func WithField(field string) Option {
	return func(c *config) {
		c.field = field
	}
}

// WithMapping sets the bleve index mapping. Defaults to bleve.NewIndexMapping.
func WithMapping(m mapping.IndexMapping) Option {
	return func(c *config) {
		c.mapping = m
	}
}

// New creates an empty in-memory bleve index.
func New(name string, opts ...Option) (*Index, error) {
	c := config{field: name}
	for _, opt := range opts {
		opt(&c)
	}
	if c.mapping == nil {
		c.mapping = bleve.NewIndexMapping()
	}

	bi, err := bleve.NewMemOnly(c.mapping)
	if err != nil {
		return nil, fmt.Errorf("bleve: create index %q: %w", name, err)
	}

	return &Index{
		name:   name,
		field:  c.field,
		bi:     bi,
		domain: idset.New(),
	}, nil
}

// Name returns the index name.
func (ix *Index) Name() string { return ix.name }

// Capabilities implements index.Index.
func (ix *Index) Capabilities() index.Capability {
	return index.CapText | index.CapExtent
}

// Add indexes text for id, replacing previous text.
func (ix *Index) Add(id model.DocID, text string) error {
	doc := map[string]any{"text": text}
	if err := ix.bi.Index(docKey(id), doc); err != nil {
		return fmt.Errorf("bleve: index %d: %w", id, err)
	}

	ix.mu.Lock()
	ix.domain.Add(id)
	ix.mu.Unlock()
	return nil
}

// Delete removes id from the index.
func (ix *Index) Delete(id model.DocID) error {
	if err := ix.bi.Delete(docKey(id)); err != nil {
		return fmt.Errorf("bleve: delete %d: %w", id, err)
	}

	ix.mu.Lock()
	ix.domain.Remove(id)
	ix.mu.Unlock()
	return nil
}

// IndexDoc implements index.Maintainer.
func (ix *Index) IndexDoc(id model.DocID, doc value.Document) error {
	var parts []string
	for _, v := range doc[ix.field].Elements() {
		if s, ok := v.AsString(); ok {
			parts = append(parts, s)
		}
	}
	if len(parts) == 0 {
		return ix.Delete(id)
	}
	return ix.Add(id, strings.Join(parts, " "))
}

// UnindexDoc implements index.Maintainer.
func (ix *Index) UnindexDoc(id model.DocID) {
	_ = ix.Delete(id)
}

// All implements index.Index.
func (ix *Index) All() *idset.Set {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	return ix.domain.Clone()
}

// MatchText implements index.TextQuerier.
func (ix *Index) MatchText(query string) (*idset.Set, error) {
	q := bleve.NewQueryStringQuery(query)
	parsed, err := q.Parse()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", index.ErrMalformedQuery, err)
	}
	if err := validate(parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", index.ErrMalformedQuery, err)
	}

	n, err := ix.bi.DocCount()
	if err != nil {
		return nil, fmt.Errorf("bleve: doc count: %w", err)
	}
	if n == 0 {
		return idset.New(), nil
	}

	req := bleve.NewSearchRequestOptions(parsed, int(n), 0, false)
	res, err := ix.bi.Search(req)
	if err != nil {
		return nil, fmt.Errorf("bleve: search: %w", err)
	}

	out := idset.New()
	for _, hit := range res.Hits {
		id, err := strconv.ParseUint(hit.ID, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("bleve: unexpected document id %q: %w", hit.ID, err)
		}
		out.Add(model.DocID(id))
	}
	return out, nil
}

// ExtentAny implements index.ExtentQuerier.
func (ix *Index) ExtentAny(extent *idset.Set) (*idset.Set, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	if extent == nil {
		return ix.domain.Clone(), nil
	}
	return idset.Intersect(extent, ix.domain), nil
}

// ExtentNone implements index.ExtentQuerier.
func (ix *Index) ExtentNone(extent *idset.Set) (*idset.Set, error) {
	if extent == nil {
		return idset.New(), nil
	}
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	return idset.Difference(extent, ix.domain), nil
}

// Close releases the bleve index.
func (ix *Index) Close() error {
	return ix.bi.Close()
}

func docKey(id model.DocID) string {
	return strconv.FormatUint(uint64(id), 10)
}

// validate rejects queries that parse but fail once bleve builds their
// searchers. Regexps are only compiled at search time.
func validate(q bq.Query) error {
	switch q := q.(type) {
	case *bq.BooleanQuery:
		if q == nil {
			return nil
		}
		for _, c := range []bq.Query{q.Must, q.Should, q.MustNot} {
			if err := validate(c); err != nil {
				return err
			}
		}
	case *bq.ConjunctionQuery:
		if q == nil {
			return nil
		}
		for _, c := range q.Conjuncts {
			if err := validate(c); err != nil {
				return err
			}
		}
	case *bq.DisjunctionQuery:
		if q == nil {
			return nil
		}
		for _, c := range q.Disjuncts {
			if err := validate(c); err != nil {
				return err
			}
		}
	case *bq.RegexpQuery:
		if q == nil {
			return nil
		}
		if _, err := regexp.Compile(q.Regexp); err != nil {
			return fmt.Errorf("regexp %q: %w", q.Regexp, err)
		}
	}
	if vq, ok := q.(bq.ValidatableQuery); ok {
		return vq.Validate()
	}
	return nil
}
