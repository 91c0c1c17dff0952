// Package intid provides an in-memory registry issuing stable document ids
// for objects.
//
// Objects are keyed by identity: pointers by address, other comparable values
// by equality. Ids are issued from 1 upwards and never reused, even after an
// object is unregistered.
package intid

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/hupe1980/termq/idset"
	"github.com/hupe1980/termq/model"
	"github.com/hupe1980/termq/query"
)

var (
	// ErrNotComparable is returned for objects that cannot be used as keys.
	ErrNotComparable = errors.New("intid: object is not comparable")
	// ErrNotFound is returned for unknown ids.
	ErrNotFound = errors.New("intid: id not found")
)

var _ query.ObjectResolver = (*Registry)(nil)

// Registry maps objects to ids.
type Registry struct {
	mu   sync.RWMutex
	ids  map[any]model.DocID
	objs map[model.DocID]any
	all  *idset.Set
	next model.DocID
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		ids:  make(map[any]model.DocID),
		objs: make(map[model.DocID]any),
		all:  idset.New(),
		next: 1,
	}
}

// Register implements query.ObjectResolver. Registering a known object
// returns its existing id.
func (r *Registry) Register(_ context.Context, obj any) (model.DocID, error) {
	if obj == nil || !reflect.ValueOf(obj).Comparable() {
		return 0, fmt.Errorf("%w: %T", ErrNotComparable, obj)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if id, ok := r.ids[obj]; ok {
		return id, nil
	}
	id := r.next
	r.next++
	r.ids[obj] = id
	r.objs[id] = obj
	r.all.Add(id)
	return id, nil
}

// ID returns the id of obj.
func (r *Registry) ID(obj any) (model.DocID, bool) {
	if obj == nil || !reflect.ValueOf(obj).Comparable() {
		return 0, false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.ids[obj]
	return id, ok
}

// Object implements query.ObjectResolver.
func (r *Registry) Object(_ context.Context, id model.DocID) (any, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	obj, ok := r.objs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	return obj, nil
}

// Unregister forgets the object registered under id.
func (r *Registry) Unregister(id model.DocID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	obj, ok := r.objs[id]
	if !ok {
		return fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	delete(r.objs, id)
	delete(r.ids, obj)
	r.all.Remove(id)
	return nil
}

// All implements query.ObjectResolver.
func (r *Registry) All() *idset.Set {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.all.Clone()
}

// Len returns the number of registered objects.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.objs)
}
