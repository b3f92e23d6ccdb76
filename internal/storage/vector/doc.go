// Package vector implements the embeddings tier: a flat, brute-force
// similarity index over float32 vectors. Every Add appends to a dense
// in-memory array that is persisted whole on each write; Search ranks
// every stored vector by cosine similarity and returns the top k.
//
// A flat index is the deliberate MVP choice carried over from the
// engine this package replaces — an IVF or HNSW index is the obvious
// next step once a single index holds more than a few hundred thousand
// vectors.
package vector
