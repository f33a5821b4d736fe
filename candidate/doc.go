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


// Package candidate provides hybrid lexical and semantic candidate generation.
//
// The Generator runs two retrievals over the published corpus index:
//   - BM25 scoring of the research-interest terms
//   - Cosine similarity between the research-interest embedding and every
//     lab embedding
//
// Each list is cut to its own top-k and the two are unioned by lab ID. A
// lab found by both methods keeps both scores; a lab found by one has a nil
// score for the other, so absence stays distinguishable from zero.
package candidate
