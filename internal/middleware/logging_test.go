package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
)

// testLogger captures JSON log output for assertions.
func testLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func decodeLogLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to decode log entry %q: %v", buf.String(), err)
	}
	return entry
}

func TestLogging_BasicFields(t *testing.T) {
	var buf bytes.Buffer
	handler := Logging(testLogger(&buf))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/voice/analytics", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	entry := decodeLogLine(t, &buf)
	if entry["method"] != "GET" {
		t.Errorf("method = %v", entry["method"])
	}
	if entry["path"] != "/api/voice/analytics" {
		t.Errorf("path = %v", entry["path"])
	}
	if entry["status"] != float64(200) {
		t.Errorf("status = %v", entry["status"])
	}
	if entry["size"] != float64(2) {
		t.Errorf("size = %v", entry["size"])
	}
	if entry["level"] != "INFO" {
		t.Errorf("level = %v", entry["level"])
	}
}

func TestLogging_WorkspaceFromHandler(t *testing.T) {
	var buf bytes.Buffer
	handler := Logging(testLogger(&buf))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		SetWorkspace(r.Context(), "acme")
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/workspaces/acme/insights", nil)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	entry := decodeLogLine(t, &buf)
	if entry["workspace"] != "acme" {
		t.Errorf("workspace = %v, want acme", entry["workspace"])
	}
}

func TestLogging_ErrorCodeOnFailure(t *testing.T) {
	var buf bytes.Buffer
	handler := Logging(testLogger(&buf))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		SetErrorCode(r.Context(), "workspace_not_found")
		w.WriteHeader(http.StatusNotFound)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/workspaces/nope/insights", nil)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	entry := decodeLogLine(t, &buf)
	if entry["error_code"] != "workspace_not_found" {
		t.Errorf("error_code = %v", entry["error_code"])
	}
	if entry["level"] != "WARN" {
		t.Errorf("level = %v, want WARN for 4xx", entry["level"])
	}
}

func TestLogging_ServerErrorLevel(t *testing.T) {
	var buf bytes.Buffer
	handler := Logging(testLogger(&buf))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	entry := decodeLogLine(t, &buf)
	if entry["level"] != "ERROR" {
		t.Errorf("level = %v, want ERROR for 5xx", entry["level"])
	}
}

func TestLogging_NoErrorCodeFor2xx(t *testing.T) {
	var buf bytes.Buffer
	handler := Logging(testLogger(&buf))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		SetErrorCode(r.Context(), "should_not_appear")
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	entry := decodeLogLine(t, &buf)
	if _, ok := entry["error_code"]; ok {
		t.Error("error_code should be omitted for success responses")
	}
}

func TestLogging_DefaultStatus(t *testing.T) {
	var buf bytes.Buffer
	handler := Logging(testLogger(&buf))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("implicit 200"))
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	entry := decodeLogLine(t, &buf)
	if entry["status"] != float64(200) {
		t.Errorf("status = %v, want implicit 200", entry["status"])
	}
}

func TestSetGetWorkspace(t *testing.T) {
	ctx := context.Background()
	if GetWorkspace(ctx) != "" {
		t.Error("empty context should have no workspace")
	}
	ctx = SetWorkspace(ctx, "acme")
	if GetWorkspace(ctx) != "acme" {
		t.Errorf("GetWorkspace() = %q", GetWorkspace(ctx))
	}
}

func TestSetGetErrorCode(t *testing.T) {
	ctx := context.Background()
	if GetErrorCode(ctx) != "" {
		t.Error("empty context should have no error code")
	}
	ctx = SetErrorCode(ctx, "validation_error")
	if GetErrorCode(ctx) != "validation_error" {
		t.Errorf("GetErrorCode() = %q", GetErrorCode(ctx))
	}
}

func TestResponseWriter_WriteHeaderOnce(t *testing.T) {
	rr := httptest.NewRecorder()
	rw := newResponseWriter(rr)

	rw.WriteHeader(http.StatusNotFound)
	rw.WriteHeader(http.StatusOK) // ignored

	if rw.statusCode != http.StatusNotFound {
		t.Errorf("statusCode = %d, want first write to win", rw.statusCode)
	}
}

func TestNewLogger(t *testing.T) {
	if NewLogger("production") == nil {
		t.Error("NewLogger(production) returned nil")
	}
	if NewLogger("development") == nil {
		t.Error("NewLogger(development) returned nil")
	}
}
