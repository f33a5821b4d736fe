// Package corpus builds the read-only lab index used by candidate
// generation and reranking.
//
// Build tokenizes each lab's search passage into a BM25 index and embeds the
// passage once. The resulting Index never changes; a changed corpus gets a
// new Index, published to readers through a Holder in a single atomic swap.
package corpus
