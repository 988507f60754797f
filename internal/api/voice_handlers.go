// Package api provides HTTP handlers for the analytics API.
package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/kinolearn/insights/internal/export"
	"github.com/kinolearn/insights/internal/middleware"
	"github.com/kinolearn/insights/internal/validate"
	"github.com/kinolearn/insights/internal/voice"
)

// Allowed day counts for voice analytics.
var allowedVoiceDays = map[int]bool{1: true, 7: true, 14: true, 30: true}

// defaultVoiceDays is used when the request carries no days parameter.
const defaultVoiceDays = 7

// VoiceHandlers holds dependencies for voice telemetry HTTP handlers.
type VoiceHandlers struct {
	reader *voice.Reader
	now    func() time.Time // for testability
}

// NewVoiceHandlers creates a new VoiceHandlers instance.
func NewVoiceHandlers(reader *voice.Reader) *VoiceHandlers {
	return &VoiceHandlers{
		reader: reader,
		now:    time.Now,
	}
}

// VoiceAnalyticsResponse is the JSON body for voice analytics queries.
type VoiceAnalyticsResponse struct {
	Days        int           `json:"days"`
	ParseErrors int           `json:"parse_errors"`
	Result      *voice.Result `json:"result"`
}

// parseVoiceDays reads and validates the "days" query parameter.
func parseVoiceDays(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("days")
	if raw == "" {
		return defaultVoiceDays, nil
	}
	days, err := strconv.Atoi(raw)
	if err != nil || !allowedVoiceDays[days] {
		return 0, fmt.Errorf("days must be one of 1, 7, 14 or 30")
	}
	return days, nil
}

// voiceFilter builds the aggregation filter from query parameters.
// Empty and "all" values leave a dimension unfiltered.
func voiceFilter(r *http.Request) (voice.Filter, error) {
	q := r.URL.Query()

	var filter voice.Filter
	for _, dim := range []struct {
		param string
		dst   *string
	}{
		{"engine", &filter.Engine},
		{"language", &filter.Language},
		{"reason", &filter.Reason},
	} {
		val, err := validate.FilterToken(q.Get(dim.param))
		if err != nil {
			return voice.Filter{}, fmt.Errorf("%s: %w", dim.param, err)
		}
		*dim.dst = val
	}
	return filter, nil
}

// analytics reads the telemetry window and aggregates it, writing error
// responses itself. Returns nil when a response has already been written.
func (h *VoiceHandlers) analytics(w http.ResponseWriter, r *http.Request) (*VoiceAnalyticsResponse, bool) {
	ctx := r.Context()

	days, err := parseVoiceDays(r)
	if err != nil {
		ctx = middleware.SetErrorCode(ctx, ErrCodeValidation)
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeValidation, err.Error())
		return nil, false
	}

	filter, err := voiceFilter(r)
	if err != nil {
		ctx = middleware.SetErrorCode(ctx, ErrCodeValidation)
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeValidation, err.Error())
		return nil, false
	}

	readResult, err := h.reader.ReadWindow(ctx, days, h.now())
	if err != nil {
		slog.ErrorContext(ctx, "failed to read voice telemetry", "days", days, "error", err)
		ctx = middleware.SetErrorCode(ctx, ErrCodeInternal)
		WriteError(w, ctx, http.StatusInternalServerError, ErrCodeInternal, "Failed to read telemetry")
		return nil, false
	}

	result := voice.Aggregate(readResult.Events, filter)

	return &VoiceAnalyticsResponse{
		Days:        days,
		ParseErrors: readResult.ParseErrors,
		Result:      result,
	}, true
}

// GetVoiceAnalytics handles GET /api/voice/analytics.
func (h *VoiceHandlers) GetVoiceAnalytics(w http.ResponseWriter, r *http.Request) {
	resp, ok := h.analytics(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// ExportVoiceAnalytics handles GET /api/voice/analytics/export.
func (h *VoiceHandlers) ExportVoiceAnalytics(w http.ResponseWriter, r *http.Request) {
	resp, ok := h.analytics(w, r)
	if !ok {
		return
	}
	filename := fmt.Sprintf("voice-analytics-%dd.csv", resp.Days)
	writeCSV(w, filename, export.VoiceCSV(resp.Result, resp.ParseErrors))
}
