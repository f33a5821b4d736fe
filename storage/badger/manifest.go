// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package badger

import (
	"context"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/labmatch/storage"
)

// ManifestRepository implements storage.ManifestRepository for BadgerDB.
type ManifestRepository struct {
	backend   *Backend
	namespace string
}

var _ storage.ManifestRepository = (*ManifestRepository)(nil)

// NewManifestRepository creates a new ManifestRepository for a namespace.
func NewManifestRepository(backend *Backend, namespace string) (*ManifestRepository, error) {
	if namespace == "" {
		return nil, storage.ErrEmptyNamespace
	}
	return &ManifestRepository{
		backend:   backend,
		namespace: namespace,
	}, nil
}

// SaveManifest persists the manifest for the namespace.
func (r *ManifestRepository) SaveManifest(ctx context.Context, manifest *storage.Manifest) error {
	manifest.UpdatedAt = time.Now().UTC()
	value, err := storage.MarshalManifest(manifest)
	if err != nil {
		return err
	}
	return r.backend.WithTx(func(tx *badger.Txn) error {
		return tx.Set(makeManifestKey(r.namespace), value)
	}, true)
}

// LoadManifest retrieves the manifest for the namespace.
// Returns nil, nil if no manifest exists.
func (r *ManifestRepository) LoadManifest(ctx context.Context) (*storage.Manifest, error) {
	var manifest *storage.Manifest
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeManifestKey(r.namespace))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return nil
			}
			return err
		}

		return item.Value(func(val []byte) error {
			var unmarshalErr error
			manifest, unmarshalErr = storage.UnmarshalManifest(val)
			return unmarshalErr
		})
	}, false)

	return manifest, err
}
