// Rocksky Relay - Device Relay and Now-Playing Enrichment Hub
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rocksky-relay

package validation

import (
	"strings"
	"testing"
)

type sampleFrame struct {
	Type   *string `json:"type" validate:"required,eq=register"`
	Name   *string `json:"clientName" validate:"required"`
	Target *string `json:"target,omitempty"`
}

func strPtr(s string) *string { return &s }

func TestGetValidator_Singleton(t *testing.T) {
	if GetValidator() != GetValidator() {
		t.Error("GetValidator() should return the same instance")
	}
}

func TestValidateStruct(t *testing.T) {
	tests := []struct {
		name       string
		frame      sampleFrame
		wantFields []string
	}{
		{
			name:  "valid",
			frame: sampleFrame{Type: strPtr("register"), Name: strPtr("desktop")},
		},
		{
			name:  "empty string is present",
			frame: sampleFrame{Type: strPtr("register"), Name: strPtr("")},
		},
		{
			name:       "missing name",
			frame:      sampleFrame{Type: strPtr("register")},
			wantFields: []string{"clientName"},
		},
		{
			name:       "wrong type value",
			frame:      sampleFrame{Type: strPtr("message"), Name: strPtr("x")},
			wantFields: []string{"type"},
		},
		{
			name:       "everything missing",
			frame:      sampleFrame{},
			wantFields: []string{"type", "clientName"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStruct(&tt.frame)
			if len(tt.wantFields) == 0 {
				if err != nil {
					t.Fatalf("ValidateStruct() error = %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("ValidateStruct() expected error")
			}
			got := err.Fields()
			if strings.Join(got, ",") != strings.Join(tt.wantFields, ",") {
				t.Errorf("Fields() = %v, want %v", got, tt.wantFields)
			}
		})
	}
}

func TestValidateStruct_Messages(t *testing.T) {
	err := ValidateStruct(&sampleFrame{Type: strPtr("ping")})
	if err == nil {
		t.Fatal("expected error")
	}
	msg := err.Error()
	if !strings.Contains(msg, `type must equal "register"`) {
		t.Errorf("Error() = %q, missing eq message", msg)
	}
	if !strings.Contains(msg, "clientName is required") {
		t.Errorf("Error() = %q, missing required message", msg)
	}
	for _, e := range err.Errors() {
		if e.Tag() == "eq" && e.Param() != "register" {
			t.Errorf("Param() = %q, want register", e.Param())
		}
	}
}
