package validate

import (
	"errors"
	"strings"
	"testing"
)

func TestSlug(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{name: "simple", input: "acme"},
		{name: "hyphenated", input: "intro-to-film"},
		{name: "digits", input: "lesson-101"},
		{name: "empty", input: "", wantErr: ErrEmpty},
		{name: "uppercase", input: "Acme", wantErr: ErrInvalidCharacters},
		{name: "leading hyphen", input: "-acme", wantErr: ErrInvalidCharacters},
		{name: "trailing hyphen", input: "acme-", wantErr: ErrInvalidCharacters},
		{name: "double hyphen", input: "a--b", wantErr: ErrInvalidCharacters},
		{name: "spaces", input: "my workspace", wantErr: ErrInvalidCharacters},
		{name: "path traversal", input: "../etc", wantErr: ErrInvalidCharacters},
		{name: "too long", input: strings.Repeat("a", MaxSlugLength+1), wantErr: ErrTooLong},
		{name: "max length ok", input: strings.Repeat("a", MaxSlugLength)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Slug(tt.input)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Slug(%q) error = %v, want %v", tt.input, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Slug(%q) error = %v", tt.input, err)
			}
			if got != tt.input {
				t.Errorf("Slug(%q) = %q", tt.input, got)
			}
		})
	}
}

func TestFilterToken(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{name: "empty passes", input: ""},
		{name: "engine", input: "browser"},
		{name: "language tag", input: "en-US"},
		{name: "sentinel", input: "all"},
		{name: "dotted", input: "v1.2"},
		{name: "underscored", input: "too_fast"},
		{name: "spaces", input: "too fast", wantErr: ErrInvalidCharacters},
		{name: "injection", input: "x;drop", wantErr: ErrInvalidCharacters},
		{name: "too long", input: strings.Repeat("x", MaxTokenLength+1), wantErr: ErrTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FilterToken(tt.input)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("FilterToken(%q) error = %v, want %v", tt.input, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("FilterToken(%q) error = %v", tt.input, err)
			}
			if got != tt.input {
				t.Errorf("FilterToken(%q) = %q", tt.input, got)
			}
		})
	}
}
