// Package blobstore provides the storage abstraction behind the document
// store.
//
// BlobStore is the interface for reading and writing named blobs (records and
// manifests). Implementations must be safe for concurrent use.
//
// # Built-in Implementations
//
//   - MemoryStore: in-memory, for tests and ephemeral stores
//   - LocalStore: local filesystem, atomic writes via temp file and rename
//   - s3.Store: Amazon S3
//   - minio.Store: MinIO and other S3-compatible servers
//
// LocalStore goes through internal/fs; WithFileSystem swaps in a fault
// injecting file system in tests.
package blobstore
