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


// Package ai provides the embedding abstraction used by labmatch.
//
// The recommendation core treats the embedding model as an opaque function
// from text to a fixed-length vector. Everything that needs dense vectors
// (the corpus index, the candidate generator and the sentence similarity
// strategies) depends on the Embedder interface only.
//
// # Implementation Packages
//
//   - ai/openai: Production implementation using OpenAI-compatible APIs
//   - ai/mock: Deterministic test double
//
// Public constructors (openai.NewEmbedder) return the ai.Embedder INTERFACE.
// Test utility constructors (mock.NewMockEmbedder) return CONCRETE types to
// enable call-count assertions and behavior injection.
//
// # Usage Example
//
//	config := ai.NewConfig(ai.WithEmbeddingModel("intfloat/e5-small-v2"), ai.WithE5Prefixes())
//	embedder, err := openai.NewEmbedder(config)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	query := ai.Prefixed(embedder, config.QueryPrefix)
//	vec, err := query.EmbedText(ctx, "graph neural networks")
//
// Backend failures are wrapped with ErrEmbeddingBackend so callers can tell
// them apart from validation errors with errors.Is.
package ai
