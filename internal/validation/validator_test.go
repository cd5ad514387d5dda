// MovieBridge - Two-Seed Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviebridge

package validation

import (
	"strings"
	"testing"
)

type recommendParams struct {
	Seed1 int `query:"seed1" validate:"required,gt=0"`
	Seed2 int `query:"seed2" validate:"required,gt=0"`
	N     int `query:"n" validate:"omitempty,min=1,max=100"`
}

type searchParams struct {
	Query string `query:"q" validate:"notblank,max=200"`
	Limit int    `query:"limit" validate:"omitempty,min=1,max=50"`
}

type settings struct {
	Level string `koanf:"level" validate:"oneof=debug info warn error"`
}

func TestGetValidator_Singleton(t *testing.T) {
	if GetValidator() != GetValidator() {
		t.Error("GetValidator() returned different instances")
	}
}

func TestValidateStruct(t *testing.T) {
	tests := []struct {
		name      string
		input     any
		wantField string
		wantTag   string
		wantMsg   string
	}{
		{"valid recommend", &recommendParams{Seed1: 1, Seed2: 2, N: 6}, "", "", ""},
		{"n omitted", &recommendParams{Seed1: 1, Seed2: 2}, "", "", ""},
		{"missing seed", &recommendParams{Seed1: 1}, "seed2", "required", "seed2 is required"},
		{"negative seed", &recommendParams{Seed1: -4, Seed2: 2}, "seed1", "gt", "seed1 must be greater than 0"},
		{"n too large", &recommendParams{Seed1: 1, Seed2: 2, N: 101}, "n", "max", "n must be at most 100"},
		{"blank query", &searchParams{Query: "   "}, "q", "notblank", "q must not be blank"},
		{"long query", &searchParams{Query: strings.Repeat("a", 201)}, "q", "max", "q must be at most 200 characters"},
		{"valid search", &searchParams{Query: "heat", Limit: 10}, "", "", ""},
		{"koanf name", &settings{Level: "loud"}, "level", "oneof", "level must be one of: debug info warn error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verr := ValidateStruct(tt.input)
			if tt.wantField == "" {
				if verr != nil {
					t.Fatalf("ValidateStruct() = %v, want nil", verr)
				}
				return
			}
			if verr == nil {
				t.Fatal("ValidateStruct() = nil, want an error")
			}
			errs := verr.Errors()
			if len(errs) != 1 {
				t.Fatalf("got %d errors, want 1: %v", len(errs), verr)
			}
			if errs[0].Field() != tt.wantField || errs[0].Tag() != tt.wantTag {
				t.Errorf("error = %s/%s, want %s/%s", errs[0].Field(), errs[0].Tag(), tt.wantField, tt.wantTag)
			}
			if errs[0].Error() != tt.wantMsg {
				t.Errorf("message = %q, want %q", errs[0].Error(), tt.wantMsg)
			}
		})
	}
}

func TestToAPIError(t *testing.T) {
	single := ValidateStruct(&recommendParams{Seed1: 1})
	apiErr := single.ToAPIError()
	if apiErr.Code != CodeValidationError || apiErr.Message != "seed2 is required" {
		t.Errorf("single ToAPIError() = %+v", apiErr)
	}
	if apiErr.Details["field"] != "seed2" {
		t.Errorf("Details = %v", apiErr.Details)
	}

	multi := ValidateStruct(&recommendParams{N: 500})
	apiErr = multi.ToAPIError()
	if apiErr.Code != CodeValidationError {
		t.Errorf("Code = %q", apiErr.Code)
	}
	for _, want := range []string{"seed1 is required", "seed2 is required", "n must be at most 100"} {
		if !strings.Contains(apiErr.Message, want) {
			t.Errorf("Message %q does not mention %q", apiErr.Message, want)
		}
	}
	fields, ok := apiErr.Details["fields"].([]map[string]any)
	if !ok || len(fields) != 3 {
		t.Errorf("Details[fields] = %v", apiErr.Details["fields"])
	}
	if multi.Error() == "" {
		t.Error("Error() is empty")
	}

	if got := (&RequestValidationError{}).ToAPIError(); got.Message != "Validation failed" {
		t.Errorf("empty ToAPIError().Message = %q", got.Message)
	}
}
