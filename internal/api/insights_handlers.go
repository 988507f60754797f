// Package api provides HTTP handlers for the analytics API.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/kinolearn/insights/internal/export"
	"github.com/kinolearn/insights/internal/insights"
	"github.com/kinolearn/insights/internal/lesson"
	"github.com/kinolearn/insights/internal/middleware"
	"github.com/kinolearn/insights/internal/validate"
)

// Allowed window sizes for insight reports, in days.
var allowedWindows = map[int]bool{0: true, 7: true, 30: true}

// defaultWindowDays is used when the request carries no window parameter.
const defaultWindowDays = 7

// InsightsHandlers holds dependencies for insight report HTTP handlers.
type InsightsHandlers struct {
	service *insights.Service
}

// NewInsightsHandlers creates a new InsightsHandlers instance.
func NewInsightsHandlers(service *insights.Service) *InsightsHandlers {
	return &InsightsHandlers{service: service}
}

// parseWindowDays reads and validates the "window" query parameter.
func parseWindowDays(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("window")
	if raw == "" {
		return defaultWindowDays, nil
	}
	days, err := strconv.Atoi(raw)
	if err != nil || !allowedWindows[days] {
		return 0, fmt.Errorf("window must be one of 0, 7 or 30")
	}
	return days, nil
}

// writeJSON marshals v as the response body.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to write response", "error", err)
	}
}

// writeCSV sends a rendered CSV document as a file download.
func writeCSV(w http.ResponseWriter, filename, body string) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(body)); err != nil {
		slog.Error("failed to write csv response", "error", err)
	}
}

// workspaceReport resolves the request parameters and computes the
// workspace report, writing error responses itself. Returns nil when a
// response has already been written.
func (h *InsightsHandlers) workspaceReport(w http.ResponseWriter, r *http.Request) *insights.WorkspaceInsights {
	slug := r.PathValue("workspace")
	ctx := middleware.SetWorkspace(r.Context(), slug)

	if _, err := validate.Slug(slug); err != nil {
		ctx = middleware.SetErrorCode(ctx, ErrCodeValidation)
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeValidation, "workspace slug: "+err.Error())
		return nil
	}

	days, err := parseWindowDays(r)
	if err != nil {
		ctx = middleware.SetErrorCode(ctx, ErrCodeValidation)
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeValidation, err.Error())
		return nil
	}

	report, err := h.service.WorkspaceInsights(ctx, slug, days)
	if err != nil {
		if errors.Is(err, lesson.ErrWorkspaceNotFound) {
			ctx = middleware.SetErrorCode(ctx, ErrCodeWorkspaceNotFound)
			WriteError(w, ctx, http.StatusNotFound, ErrCodeWorkspaceNotFound, "Workspace not found")
			return nil
		}
		slog.ErrorContext(ctx, "failed to compute workspace insights", "workspace", slug, "error", err)
		ctx = middleware.SetErrorCode(ctx, ErrCodeInternal)
		WriteError(w, ctx, http.StatusInternalServerError, ErrCodeInternal, "Failed to compute insights")
		return nil
	}

	return report
}

// GetWorkspaceInsights handles GET /api/workspaces/{workspace}/insights.
func (h *InsightsHandlers) GetWorkspaceInsights(w http.ResponseWriter, r *http.Request) {
	report := h.workspaceReport(w, r)
	if report == nil {
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// ExportWorkspaceInsights handles GET /api/workspaces/{workspace}/insights/export.
func (h *InsightsHandlers) ExportWorkspaceInsights(w http.ResponseWriter, r *http.Request) {
	report := h.workspaceReport(w, r)
	if report == nil {
		return
	}
	filename := fmt.Sprintf("%s-insights-%dd.csv", report.WorkspaceSlug, report.WindowDays)
	writeCSV(w, filename, export.WorkspaceCSV(report))
}

// lessonReport resolves the request parameters and computes the lesson
// report, writing error responses itself. Returns nil when a response has
// already been written.
func (h *InsightsHandlers) lessonReport(w http.ResponseWriter, r *http.Request) *insights.LessonInsights {
	workspaceSlug := r.PathValue("workspace")
	lessonSlug := r.PathValue("lesson")
	ctx := middleware.SetWorkspace(r.Context(), workspaceSlug)

	if _, err := validate.Slug(workspaceSlug); err != nil {
		ctx = middleware.SetErrorCode(ctx, ErrCodeValidation)
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeValidation, "workspace slug: "+err.Error())
		return nil
	}
	if _, err := validate.Slug(lessonSlug); err != nil {
		ctx = middleware.SetErrorCode(ctx, ErrCodeValidation)
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeValidation, "lesson slug: "+err.Error())
		return nil
	}

	days, err := parseWindowDays(r)
	if err != nil {
		ctx = middleware.SetErrorCode(ctx, ErrCodeValidation)
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeValidation, err.Error())
		return nil
	}

	report, err := h.service.LessonInsights(ctx, workspaceSlug, lessonSlug, days)
	if err != nil {
		switch {
		case errors.Is(err, lesson.ErrWorkspaceNotFound):
			ctx = middleware.SetErrorCode(ctx, ErrCodeWorkspaceNotFound)
			WriteError(w, ctx, http.StatusNotFound, ErrCodeWorkspaceNotFound, "Workspace not found")
		case errors.Is(err, lesson.ErrLessonNotFound):
			ctx = middleware.SetErrorCode(ctx, ErrCodeLessonNotFound)
			WriteError(w, ctx, http.StatusNotFound, ErrCodeLessonNotFound, "Lesson not found")
		default:
			slog.ErrorContext(ctx, "failed to compute lesson insights",
				"workspace", workspaceSlug, "lesson", lessonSlug, "error", err)
			ctx = middleware.SetErrorCode(ctx, ErrCodeInternal)
			WriteError(w, ctx, http.StatusInternalServerError, ErrCodeInternal, "Failed to compute insights")
		}
		return nil
	}

	return report
}

// GetLessonInsights handles GET /api/workspaces/{workspace}/lessons/{lesson}/insights.
func (h *InsightsHandlers) GetLessonInsights(w http.ResponseWriter, r *http.Request) {
	report := h.lessonReport(w, r)
	if report == nil {
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// ExportLessonInsights handles GET /api/workspaces/{workspace}/lessons/{lesson}/insights/export.
func (h *InsightsHandlers) ExportLessonInsights(w http.ResponseWriter, r *http.Request) {
	report := h.lessonReport(w, r)
	if report == nil {
		return
	}
	filename := fmt.Sprintf("%s-%s-insights-%dd.csv", report.WorkspaceSlug, report.LessonSlug, report.WindowDays)
	writeCSV(w, filename, export.LessonCSV(report))
}
