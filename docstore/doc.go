// Package docstore persists keyed records in a blobstore.BlobStore and serves
// them as the object resolver of a search context.
//
// Each record is encoded with a codec.Codec, block compressed and written to
// its own blob. A manifest blob maps record keys to the document ids handed
// out to indexes. Decoded payloads are kept in a byte-bounded LRU cache and
// reads are throttled by an optional resource.Controller.
//
//	store, err := docstore.Open(ctx, blobstore.NewLocalStore(dir),
//	    docstore.WithIndexer(cat),
//	    docstore.WithCompression(docstore.CompressionZSTD),
//	)
//	id, err := store.Put(ctx, docstore.Record{Key: "book-1", Fields: fields})
package docstore
