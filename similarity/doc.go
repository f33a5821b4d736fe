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


// Package similarity provides the pairwise comparison strategies used to
// rerank labs against a student profile.
//
// Every strategy implements Strategy and returns a value in [0, 1]. There are
// three families:
//
//   - Sentence strategies compare free text through dense embeddings
//     (Cosine, Blend, MeanPooled).
//   - Keyword strategies compare labels and lists (Major, Certification,
//     Award, TechStack).
//   - Numeric strategies compare scalar and ordinal values (LanguageScore,
//     Proficiency, GPA).
//
// Unless a strategy documents otherwise, a blank value on either side yields
// Neutral. Strategies that need embeddings return backend failures to the
// caller; all other strategies never fail.
package similarity
