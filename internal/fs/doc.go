// Package fs provides filesystem abstractions for testability and fault injection.
//
// The package defines two key interfaces:
//
//   - [File]: Represents an open file with read/write/sync capabilities
//   - [FileSystem]: Abstracts filesystem operations (open, remove, rename, etc.)
//
// # Implementations
//
//   - [OS]: passes calls through to package os
//   - [FaultyFS]: Test utility for fault injection (simulate I/O errors)
//
// blobstore.LocalStore uses fs.Default; tests inject a [FaultyFS]:
//
//	ffs := fs.NewFaultyFS(nil)
//	ffs.AddRule("records/", fs.Fault{FailAfterBytes: -1, FailOnSync: true})
//	store := blobstore.NewLocalStore(dir, blobstore.WithFileSystem(ffs))
//
// Filesystem operations take no context.Context: local calls are short and
// not interruptible at the syscall level.
package fs
