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

import (
	"fmt"
	"slices"
	"strings"
)

// MaxGPA is the top of the grade point scale.
const MaxGPA = 4.5

// ValidateLab validates a Lab according to domain rules.
//
// Validation rules:
//   - ID must not be blank
//   - every section key must be one of Sections
//   - ExpectedGPA, when set, must be within [0, MaxGPA]
//
// NOT validated:
//   - Name, Professor and Department (display only or optional)
//   - section contents (blank sections are treated as absent)
func ValidateLab(lab *Lab) error {
	if lab == nil {
		return fmt.Errorf("%w: lab is nil", ErrInvalidLab)
	}

	if strings.TrimSpace(lab.ID) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidLab, ErrEmptyLabID)
	}

	for section := range lab.Sections {
		if !slices.Contains(Sections, section) {
			return fmt.Errorf("%w: %w: %q", ErrInvalidLab, ErrUnknownSection, section)
		}
	}

	if lab.ExpectedGPA != nil && !IsValidGPA(*lab.ExpectedGPA) {
		return fmt.Errorf("%w: %w: expected %.2f", ErrInvalidLab, ErrGPAOutOfRange, *lab.ExpectedGPA)
	}

	return nil
}

// ValidateProfile validates a StudentProfile.
//
// A blank ResearchInterests is valid here: candidate generation reports it
// as an empty result rather than an error.
func ValidateProfile(profile *StudentProfile) error {
	if profile == nil {
		return fmt.Errorf("%w: profile is nil", ErrInvalidProfile)
	}

	if profile.GPA != nil && !IsValidGPA(*profile.GPA) {
		return fmt.Errorf("%w: %w: %.2f", ErrInvalidProfile, ErrGPAOutOfRange, *profile.GPA)
	}

	return nil
}

// IsValidGPA checks that a GPA lies within [0, MaxGPA].
func IsValidGPA(gpa float64) bool {
	return gpa >= 0 && gpa <= MaxGPA
}
