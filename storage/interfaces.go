package storage

import (
	"context"
	"time"

	"github.com/poiesic/labmatch/core"
)

// EmbeddingRepository persists embedding vectors keyed by the content they were
// computed from. Implementations must be thread-safe and support concurrent access.
type EmbeddingRepository interface {
	// GetEmbeddings retrieves the vectors stored for keys.
	// Missing keys are simply absent from the returned map.
	GetEmbeddings(ctx context.Context, keys ...core.Key) (map[core.Key][]float32, error)

	// PutEmbeddings stores or replaces vectors in a single transaction.
	PutEmbeddings(ctx context.Context, entries map[core.Key][]float32) error

	// DeleteEmbeddings removes vectors. Missing keys are ignored.
	DeleteEmbeddings(ctx context.Context, keys ...core.Key) error

	// CountEmbeddings returns the number of stored vectors.
	CountEmbeddings(ctx context.Context) (int, error)

	// ListKeys returns the keys of every stored vector.
	ListKeys(ctx context.Context) ([]core.Key, error)

	// Close releases resources held by the repository.
	Close() error
}

// Manifest records the corpus an embedding cache was last warmed for.
type Manifest struct {
	Model     string
	Labs      int
	Digest    core.Key
	UpdatedAt time.Time
}

// ManifestRepository stores one Manifest per embedding namespace.
type ManifestRepository interface {
	// SaveManifest persists the manifest, stamping UpdatedAt.
	SaveManifest(ctx context.Context, manifest *Manifest) error

	// LoadManifest returns nil, nil when no manifest exists.
	LoadManifest(ctx context.Context) (*Manifest, error)
}
