package model

import "fmt"

// DocID identifies a document. IDs are issued by an object resolver and stay
// stable for the lifetime of the document.
type DocID uint32

// IndexRef names an index within a catalog. It carries no handle; the
// reference is resolved against a context each time a term is evaluated.
type IndexRef struct {
	Catalog string
	Index   string
}

// Ref is shorthand for IndexRef{Catalog: catalog, Index: index}.
func Ref(catalog, index string) IndexRef {
	return IndexRef{Catalog: catalog, Index: index}
}

// String returns a string representation of the IndexRef.
func (r IndexRef) String() string {
	return fmt.Sprintf("%s.%s", r.Catalog, r.Index)
}
