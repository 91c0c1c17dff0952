// Package termq provides composable set-algebra queries over pluggable
// indexes.
//
// Queries are immutable term trees built with the query package. Leaves name
// an index by catalog and index name; the reference is resolved against a
// search context every time a term is evaluated, so one term can run against
// many sites. Combinators intersect, unite and subtract the id sets of their
// children, and the result assembler sorts, windows and materializes the
// matching objects.
//
// # Quick Start
//
//	books := catalog.New("books")
//	books.Add(field.New("author"))
//	books.Add(field.New("year"))
//	books.Add(bm25.New("title"))
//
//	objects := intid.New()
//	site := catalog.NewSite("root", catalog.WithCatalog(books), catalog.WithObjects(objects))
//
//	id, _ := objects.Register(ctx, book)
//	books.IndexDoc(id, value.Document{"author": value.String("Le Guin"), ...})
//
//	eng, _ := termq.New(site)
//	res, _ := eng.Search(ctx,
//	    query.Eq(books.Ref("author"), value.String("Le Guin")).
//	        And(query.Text(books.Ref("title"), "dark* OR wind")),
//	    query.WithSort(books.Ref("year")),
//	    query.WithLimit(10),
//	)
//
// # Indexes
//
// An index advertises what it can answer through an index.Capability mask:
//
//   - index/field: single-valued fields (equality, ranges, sorting)
//   - index/set: multi-valued fields (any-of, all-of, set ranges)
//   - index/text/bm25: positional full-text index with a small query grammar
//   - index/text/bleve: full-text index over bleve's query-string syntax
//
// # Storage
//
// The docstore package keeps records in a blobstore.BlobStore (memory, local
// disk, S3 or MinIO) and serves them as the object resolver of a site.
package termq
