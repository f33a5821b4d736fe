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


// Package labmatch recommends research labs to students.
//
// A request runs in two stages. Candidate generation shortlists labs by
// BM25 over lab text and by cosine similarity of embeddings against the
// student's research interests. Reranking then scores every shortlisted lab
// on three dimensions:
//
//   - sentence: the student's introductions and portfolio against lab text
//   - keyword: major, certifications, awards and technology stack
//   - numeric: language score, English proficiency and GPA
//
// Weights come from a scoring profile (see package scoring). Every result
// carries a per-field breakdown.
//
// Basic usage:
//
//	cfg := ai.NewConfig(ai.WithE5Prefixes())
//	embedder, _ := openai.NewEmbedder(cfg)
//	engine, err := labmatch.NewEngine(ctx, labs, embedder, nil, labmatch.WithAIConfig(cfg))
//	if err != nil {
//	    return err
//	}
//	rec, err := engine.Recommend(ctx, profile, labmatch.RecommendOptions{TopK: 5})
//
// Embeddings can be persisted across runs with OpenCache, and warmed ahead
// of time with Cache.NewReembedder.
package labmatch
