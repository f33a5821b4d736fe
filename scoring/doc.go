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


// Package scoring reranks candidate labs with a weighted, explainable
// multi-criteria score.
//
// A Config carries three dimension weights (sentence, keyword, numeric) and
// the sub-weights of each dimension's fields. Every weight group must sum
// to 1; NewConfig rejects configurations that do not. Built-in profiles are
// available through Profile, and LoadFile layers a YAML file and LABMATCH_
// environment variables over a named profile.
//
// Each field is compared with the lab text it is routed to by a fixed
// similarity strategy. A field without data is recorded as absent in the
// breakdown: absent free-text fields are dropped from the sentence mean,
// every other absent field scores similarity.Neutral.
package scoring
