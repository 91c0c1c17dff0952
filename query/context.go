package query

import (
	"context"

	"github.com/hupe1980/termq/idset"
	"github.com/hupe1980/termq/index"
	"github.com/hupe1980/termq/model"
)

// ObjectResolver maps ids to objects and back.
type ObjectResolver interface {
	// Object returns the object registered under id.
	Object(ctx context.Context, id model.DocID) (any, error)
	// Register returns the id of obj, issuing a new one if needed.
	Register(ctx context.Context, obj any) (model.DocID, error)
	// All returns every registered id.
	All() *idset.Set
}

// Context is the environment a term is evaluated in. It is passed to every
// evaluation and never stored on terms.
type Context interface {
	// Catalog returns the named catalog. Unknown names fail with an error
	// wrapping ErrUnresolved.
	Catalog(name string) (index.Catalog, error)
	// Objects returns the object resolver, or nil if there is none.
	Objects() ObjectResolver
}
