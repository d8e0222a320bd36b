// Package sqlite implements the document storage gateway on SQLite.
//
// It owns the reconciliation policy for re-ingested documents and the
// (document, index) identity of chunks. Embeddings are stored in the
// textual wire format ("[0.1,0.2,...]") and similarity search is
// computed over them in process; the store therefore also implements
// the VectorSearcher capability.
package sqlite
