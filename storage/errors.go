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


package storage

import "errors"

var (
	// ErrStorageClosed is returned by operations on a closed backend.
	ErrStorageClosed = errors.New("storage is closed")

	// ErrEmptyNamespace is returned when a repository is opened without a
	// model namespace.
	ErrEmptyNamespace = errors.New("namespace cannot be empty")

	// ErrMalformedRecord is returned when a stored key or vector has an
	// impossible length.
	ErrMalformedRecord = errors.New("malformed stored record")

	// ErrSerializationFailed wraps manifest encoding and decoding failures.
	ErrSerializationFailed = errors.New("manifest serialization failed")
)
