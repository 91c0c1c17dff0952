// Package cache provides a byte-budgeted LRU for decoded document records.
//
// Memory held by the cache is reserved from a resource.Controller when one is
// supplied; entries the controller refuses are simply not cached.
package cache
