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


// Package storage provides the persistence abstraction for embedding caches.
//
// The recommendation core never persists labs, profiles or results. The only
// state worth keeping across processes is the set of lab embeddings, which are
// expensive to compute and depend solely on the passage text and the model.
//
// # Architecture
//
//   - EmbeddingRepository: content-keyed vectors, namespaced per model
//   - ManifestRepository: what corpus a namespace was last warmed for
//
// # Usage
//
//	backend, err := badger.OpenBackend("/var/cache/labmatch", false)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer backend.Close()
//
//	repo, err := badger.NewEmbeddingRepository(backend, "intfloat/e5-small-v2")
//
// Use in tests with in-memory storage:
//
//	repo, backend, err := badger.NewMemoryEmbeddingRepository("test-model")
//
// # Thread Safety
//
// All repository implementations must be thread-safe and support
// concurrent access from multiple goroutines.
package storage
