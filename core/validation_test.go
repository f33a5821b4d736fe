package core

import (
	"errors"
	"testing"
)

func gpa(v float64) *float64 { return &v }

func TestValidateLab(t *testing.T) {
	tests := []struct {
		name    string
		lab     *Lab
		wantErr error
	}{
		{
			name: "valid lab",
			lab: &Lab{
				ID:       "CV001",
				Name:     "컴퓨터비전 연구실",
				Sections: map[Section]string{SectionResearch: "vision"},
			},
			wantErr: nil,
		},
		{
			name:    "valid lab without sections",
			lab:     &Lab{ID: "EMPTY"},
			wantErr: nil,
		},
		{
			name:    "valid lab with expected gpa",
			lab:     &Lab{ID: "G1", ExpectedGPA: gpa(4.0)},
			wantErr: nil,
		},
		{
			name:    "nil lab",
			lab:     nil,
			wantErr: ErrInvalidLab,
		},
		{
			name:    "blank id",
			lab:     &Lab{ID: "   "},
			wantErr: ErrEmptyLabID,
		},
		{
			name:    "unknown section",
			lab:     &Lab{ID: "X", Sections: map[Section]string{"gossip": "text"}},
			wantErr: ErrUnknownSection,
		},
		{
			name:    "expected gpa above scale",
			lab:     &Lab{ID: "X", ExpectedGPA: gpa(5.0)},
			wantErr: ErrGPAOutOfRange,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateLab(tt.lab)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateLab() unexpected error = %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateLab() error = %v, want %v", err, tt.wantErr)
			}
			if !errors.Is(err, ErrInvalidLab) {
				t.Errorf("ValidateLab() error should wrap ErrInvalidLab, got %v", err)
			}
		})
	}
}

func TestValidateProfile(t *testing.T) {
	tests := []struct {
		name    string
		profile *StudentProfile
		wantErr error
	}{
		{
			name:    "minimal profile",
			profile: &StudentProfile{ResearchInterests: "robotics"},
		},
		{
			name:    "blank interests are still valid",
			profile: &StudentProfile{},
		},
		{
			name:    "gpa on the boundary",
			profile: &StudentProfile{GPA: gpa(4.5)},
		},
		{
			name:    "nil profile",
			profile: nil,
			wantErr: ErrInvalidProfile,
		},
		{
			name:    "negative gpa",
			profile: &StudentProfile{GPA: gpa(-0.1)},
			wantErr: ErrGPAOutOfRange,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateProfile(tt.profile)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateProfile() unexpected error = %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateProfile() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestIsValidGPA(t *testing.T) {
	for _, v := range []float64{0, 2.5, 4.5} {
		if !IsValidGPA(v) {
			t.Errorf("IsValidGPA(%v) = false", v)
		}
	}
	for _, v := range []float64{-1, 4.51} {
		if IsValidGPA(v) {
			t.Errorf("IsValidGPA(%v) = true", v)
		}
	}
}
