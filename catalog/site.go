package catalog

import (
	"fmt"
	"sync"

	"github.com/hupe1980/termq/index"
	"github.com/hupe1980/termq/query"
)

var _ query.Context = (*Site)(nil)

// Site is a node in a hierarchy of evaluation contexts.
type Site struct {
	name   string
	parent *Site

	mu       sync.RWMutex
	catalogs map[string]index.Catalog
	objects  query.ObjectResolver
}

// SiteOption configures a Site.
type SiteOption func(*Site)

// WithObjects sets the object resolver of the site.
func WithObjects(r query.ObjectResolver) SiteOption {
	return func(s *Site) {
		s.objects = r
	}
}

// WithCatalog registers c on the site.
func WithCatalog(c index.Catalog) SiteOption {
	return func(s *Site) {
		s.catalogs[c.Name()] = c
	}
}

// NewSite creates a root site.
func NewSite(name string, opts ...SiteOption) *Site {
	s := &Site{
		name:     name,
		catalogs: make(map[string]index.Catalog),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Child creates a site below s.
func (s *Site) Child(name string, opts ...SiteOption) *Site {
	c := NewSite(name, opts...)
	c.parent = s
	return c
}

// Name returns the site name.
func (s *Site) Name() string { return s.name }

// Parent returns the parent site, or nil for a root.
func (s *Site) Parent() *Site { return s.parent }

// AddCatalog registers c on the site.
func (s *Site) AddCatalog(c index.Catalog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.catalogs[c.Name()]; ok {
		return fmt.Errorf("%w: catalog %q on site %q", ErrDuplicate, c.Name(), s.name)
	}
	s.catalogs[c.Name()] = c
	return nil
}

// SetObjects replaces the object resolver of the site.
func (s *Site) SetObjects(r query.ObjectResolver) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.objects = r
}

// Catalog implements query.Context. The nearest site holding the name wins.
func (s *Site) Catalog(name string) (index.Catalog, error) {
	for cur := s; cur != nil; cur = cur.parent {
		cur.mu.RLock()
		c, ok := cur.catalogs[name]
		cur.mu.RUnlock()
		if ok {
			return c, nil
		}
	}
	return nil, &query.ResolveError{Catalog: name}
}

// Objects implements query.Context. The nearest site with a resolver wins.
func (s *Site) Objects() query.ObjectResolver {
	for cur := s; cur != nil; cur = cur.parent {
		cur.mu.RLock()
		r := cur.objects
		cur.mu.RUnlock()
		if r != nil {
			return r
		}
	}
	return nil
}
