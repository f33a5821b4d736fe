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


package core

import "errors"

// Domain validation errors
var (
	// ErrInvalidLab indicates a Lab failed validation.
	ErrInvalidLab = errors.New("invalid lab")

	// ErrInvalidProfile indicates a StudentProfile failed validation.
	ErrInvalidProfile = errors.New("invalid student profile")

	// ErrEmptyLabID indicates the lab ID field is empty.
	ErrEmptyLabID = errors.New("lab id cannot be empty")

	// ErrUnknownSection indicates a lab carries a section name outside Sections.
	ErrUnknownSection = errors.New("unknown lab section")

	// ErrGPAOutOfRange indicates a GPA outside [0, 4.5].
	ErrGPAOutOfRange = errors.New("gpa out of range")
)
