// Package embedcache memoizes embeddings by text content.
//
// Embedding the same lab passage or student answer twice is the most
// expensive thing a recommendation can do, so every embedder used by the
// engine is wrapped:
//
//	repo, _ := badger.NewEmbeddingRepository(backend, "multilingual-e5-large")
//	cached, _ := embedcache.New(embedder, embedcache.WithStore(repo))
//
// Keys come from core.KeyFromContent, so the store namespace must identify
// the model that produced the vectors.
package embedcache
