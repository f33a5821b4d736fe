package badger

import (
	"context"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/labmatch/core"
	"github.com/poiesic/labmatch/storage"
)

// maxBatchEntries bounds the number of writes per transaction so large cache
// warm-ups never hit badger.ErrTxnTooBig.
const maxBatchEntries = 1000

// EmbeddingRepository implements storage.EmbeddingRepository for BadgerDB.
// Vectors of different models live under different namespaces.
type EmbeddingRepository struct {
	backend   *Backend
	namespace string
}

var _ storage.EmbeddingRepository = (*EmbeddingRepository)(nil)

// NewEmbeddingRepository creates a repository scoped to namespace, typically
// the embedding model name plus any passage prefix.
func NewEmbeddingRepository(backend *Backend, namespace string) (storage.EmbeddingRepository, error) {
	if namespace == "" {
		return nil, storage.ErrEmptyNamespace
	}
	return &EmbeddingRepository{backend: backend, namespace: namespace}, nil
}

// GetEmbeddings retrieves the vectors stored for keys.
func (r *EmbeddingRepository) GetEmbeddings(ctx context.Context, keys ...core.Key) (map[core.Key][]float32, error) {
	found := make(map[core.Key][]float32, len(keys))
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, key := range keys {
			if err := ctx.Err(); err != nil {
				return err
			}
			item, err := tx.Get(makeEmbeddingKey(r.namespace, key))
			if err == badger.ErrKeyNotFound {
				continue
			}
			if err != nil {
				return err
			}
			err = item.Value(func(val []byte) error {
				vector, err := storage.UnmarshalVector(val)
				if err != nil {
					return err
				}
				found[key] = vector
				return nil
			})
			if err != nil {
				return fmt.Errorf("reading embedding %d: %w", key, err)
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return found, nil
}

// PutEmbeddings stores or replaces vectors.
// Entries are written in chunks of at most maxBatchEntries per transaction.
func (r *EmbeddingRepository) PutEmbeddings(ctx context.Context, entries map[core.Key][]float32) error {
	keys := make([]core.Key, 0, len(entries))
	for key := range entries {
		keys = append(keys, key)
	}

	for start := 0; start < len(keys); start += maxBatchEntries {
		end := min(start+maxBatchEntries, len(keys))
		err := r.backend.WithTx(func(tx *badger.Txn) error {
			for _, key := range keys[start:end] {
				if err := ctx.Err(); err != nil {
					return err
				}
				if err := tx.Set(makeEmbeddingKey(r.namespace, key), storage.MarshalVector(entries[key])); err != nil {
					return err
				}
			}
			return nil
		}, true)
		if err != nil {
			return err
		}
	}
	return nil
}

// DeleteEmbeddings removes vectors. Missing keys are ignored.
func (r *EmbeddingRepository) DeleteEmbeddings(ctx context.Context, keys ...core.Key) error {
	for start := 0; start < len(keys); start += maxBatchEntries {
		end := min(start+maxBatchEntries, len(keys))
		err := r.backend.WithTx(func(tx *badger.Txn) error {
			for _, key := range keys[start:end] {
				if err := ctx.Err(); err != nil {
					return err
				}
				if err := tx.Delete(makeEmbeddingKey(r.namespace, key)); err != nil {
					return err
				}
			}
			return nil
		}, true)
		if err != nil {
			return err
		}
	}
	return nil
}

// CountEmbeddings returns the number of vectors in this namespace.
func (r *EmbeddingRepository) CountEmbeddings(ctx context.Context) (int, error) {
	return r.backend.countPrefix(makeNamespacePrefix(r.namespace))
}

// ListKeys returns the keys of every vector in this namespace.
func (r *EmbeddingRepository) ListKeys(ctx context.Context) ([]core.Key, error) {
	prefix := makeNamespacePrefix(r.namespace)
	var keys []core.Key
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			key, err := storage.UnmarshalKey(iter.Item().Key()[len(prefix):])
			if err != nil {
				return err
			}
			keys = append(keys, key)
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return keys, nil
}

// Close is a no-op; the backend owns the database handle.
func (r *EmbeddingRepository) Close() error {
	return nil
}
