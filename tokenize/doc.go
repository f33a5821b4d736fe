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


// Package tokenize normalizes and splits lab and student text into terms.
//
// The same tokenizer feeds the BM25 lexical index, the Jaccard-based
// similarity strategies and the certification and technology list parsers,
// so lexical and keyword scores always agree on what a term is.
package tokenize
