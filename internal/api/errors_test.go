package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestWriteError_BasicFields(t *testing.T) {
	w := httptest.NewRecorder()
	ctx := context.Background()

	WriteError(w, ctx, http.StatusNotFound, ErrCodeLessonNotFound, "Lesson not found")

	if w.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", w.Code)
	}

	contentType := w.Header().Get("Content-Type")
	if !strings.Contains(contentType, "application/json") {
		t.Errorf("expected Content-Type to contain application/json, got %s", contentType)
	}

	var resp ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response body: %v, body: %s", err, w.Body.String())
	}
	if resp.Error.Code != ErrCodeLessonNotFound {
		t.Errorf("expected error code %s, got %s", ErrCodeLessonNotFound, resp.Error.Code)
	}
	if resp.Error.Message != "Lesson not found" {
		t.Errorf("expected message 'Lesson not found', got %s", resp.Error.Message)
	}
}

func TestWriteError_AllErrorCodes(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		code       string
		message    string
	}{
		{name: "validation_error", status: http.StatusBadRequest, code: ErrCodeValidation, message: "Invalid input"},
		{name: "bad_request", status: http.StatusBadRequest, code: ErrCodeBadRequest, message: "Malformed request"},
		{name: "not_found", status: http.StatusNotFound, code: ErrCodeNotFound, message: "Resource not found"},
		{name: "workspace_not_found", status: http.StatusNotFound, code: ErrCodeWorkspaceNotFound, message: "Workspace not found"},
		{name: "lesson_not_found", status: http.StatusNotFound, code: ErrCodeLessonNotFound, message: "Lesson not found"},
		{name: "internal_error", status: http.StatusInternalServerError, code: ErrCodeInternal, message: "Something went wrong"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			WriteError(w, context.Background(), tt.status, tt.code, tt.message)

			if w.Code != tt.status {
				t.Errorf("expected status %d, got %d", tt.status, w.Code)
			}

			var resp ErrorResponse
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("failed to parse response body: %v", err)
			}
			if resp.Error.Code != tt.code {
				t.Errorf("expected code %s, got %s", tt.code, resp.Error.Code)
			}
			if resp.Error.Message != tt.message {
				t.Errorf("expected message %q, got %q", tt.message, resp.Error.Message)
			}
		})
	}
}

func TestStatusCodeMapping(t *testing.T) {
	tests := []struct {
		code string
		want int
	}{
		{code: ErrCodeValidation, want: http.StatusBadRequest},
		{code: ErrCodeBadRequest, want: http.StatusBadRequest},
		{code: ErrCodeNotFound, want: http.StatusNotFound},
		{code: ErrCodeWorkspaceNotFound, want: http.StatusNotFound},
		{code: ErrCodeLessonNotFound, want: http.StatusNotFound},
		{code: ErrCodeInternal, want: http.StatusInternalServerError},
		{code: "unknown_code", want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if got := StatusCodeMapping(tt.code); got != tt.want {
			t.Errorf("StatusCodeMapping(%q) = %d, want %d", tt.code, got, tt.want)
		}
	}
}
