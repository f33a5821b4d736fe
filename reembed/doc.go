// Package reembed warms the persistent embedding cache for a lab corpus.
//
// A Reembedder embeds every lab passage in batches on a worker pool, with
// retry and exponential backoff per batch and progress reporting, through a
// cache-through embedder. When it finishes, it stores a manifest recording
// the model and corpus digest, and it skips corpora that are already warm.
package reembed
