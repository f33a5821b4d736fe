package badger

import (
	"github.com/poiesic/labmatch/core"
	"github.com/poiesic/labmatch/storage"
)

// Key prefixes for different data types
const (
	embeddingPrefix = "emb:"
	manifestPrefix  = "mfst:"
)

// makeNamespacePrefix generates the prefix shared by all embeddings of a namespace.
// The namespace is hashed so prefixes have a fixed width and never nest.
// Format: emb:<8 byte namespace hash>
func makeNamespacePrefix(namespace string) []byte {
	buf := make([]byte, 0, len(embeddingPrefix)+8)
	buf = append(buf, embeddingPrefix...)
	return append(buf, storage.MarshalKey(core.KeyFromContent(namespace))...)
}

// makeEmbeddingKey generates a key for one embedding.
// Format: emb:<8 byte namespace hash><8 byte big-endian content key>
func makeEmbeddingKey(namespace string, key core.Key) []byte {
	prefix := makeNamespacePrefix(namespace)
	buf := make([]byte, 0, len(prefix)+8)
	buf = append(buf, prefix...)
	return append(buf, storage.MarshalKey(key)...)
}

// makeManifestKey generates a key for a namespace manifest.
func makeManifestKey(namespace string) []byte {
	return []byte(manifestPrefix + namespace)
}
