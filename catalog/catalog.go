// Package catalog provides named index collections and the hierarchical
// sites terms are evaluated in.
//
// A Site holds catalogs and an object resolver and may have a parent. Lookups
// start at the site and walk up, so a catalog registered on a child site
// shadows one with the same name further up.
package catalog

import (
	"errors"
	"fmt"
	"sync"

	"github.com/hupe1980/termq/index"
	"github.com/hupe1980/termq/model"
	"github.com/hupe1980/termq/value"
)

// ErrDuplicate is returned when adding a name that is already registered.
var ErrDuplicate = errors.New("catalog: duplicate name")

var _ index.Catalog = (*Catalog)(nil)

// Catalog is a named, ordered collection of indexes.
type Catalog struct {
	name string

	mu      sync.RWMutex
	indexes map[string]index.Index
	order   []string
}

// New creates an empty catalog.
func New(name string) *Catalog {
	return &Catalog{
		name:    name,
		indexes: make(map[string]index.Index),
	}
}

// Name returns the catalog name.
func (c *Catalog) Name() string { return c.name }

// Add registers idx under its name.
func (c *Catalog) Add(idx index.Index) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	name := idx.Name()
	if _, ok := c.indexes[name]; ok {
		return fmt.Errorf("%w: index %q in catalog %q", ErrDuplicate, name, c.name)
	}
	c.indexes[name] = idx
	c.order = append(c.order, name)
	return nil
}

// Remove unregisters the named index.
func (c *Catalog) Remove(name string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.indexes[name]; !ok {
		return false
	}
	delete(c.indexes, name)
	for i, n := range c.order {
		if n == name {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return true
}

// Index implements index.Catalog.
func (c *Catalog) Index(name string) (index.Index, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	idx, ok := c.indexes[name]
	return idx, ok
}

// Indexes returns the indexes in registration order.
func (c *Catalog) Indexes() []index.Index {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]index.Index, 0, len(c.order))
	for _, n := range c.order {
		out = append(out, c.indexes[n])
	}
	return out
}

// Ref returns a reference to the named index of this catalog.
func (c *Catalog) Ref(indexName string) model.IndexRef {
	return model.Ref(c.name, indexName)
}

// IndexDoc feeds doc to every index that implements index.Maintainer.
func (c *Catalog) IndexDoc(id model.DocID, doc value.Document) error {
	var errs []error
	for _, idx := range c.Indexes() {
		m, ok := idx.(index.Maintainer)
		if !ok {
			continue
		}
		if err := m.IndexDoc(id, doc); err != nil {
			errs = append(errs, fmt.Errorf("index %q: %w", idx.Name(), err))
		}
	}
	return errors.Join(errs...)
}

// UnindexDoc removes id from every index that implements index.Maintainer.
func (c *Catalog) UnindexDoc(id model.DocID) {
	for _, idx := range c.Indexes() {
		if m, ok := idx.(index.Maintainer); ok {
			m.UnindexDoc(id)
		}
	}
}
