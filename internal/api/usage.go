package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/gridsense/gridsense-core/internal/audit"
	"github.com/gridsense/gridsense-core/internal/device"
	"github.com/gridsense/gridsense-core/internal/usage"
)

// recordUsageRequest is the request body for POST /usage.
type recordUsageRequest struct {
	DeviceID  string   `json:"device_id"`
	Usage     *float64 `json:"usage"`
	Timestamp string   `json:"timestamp"`
}

// totalUsageResponse is the response body for GET /usage/total.
type totalUsageResponse struct {
	Total float64 `json:"total_usage"`
	Start string  `json:"start"`
	End   string  `json:"end"`
}

// handleRecordUsage appends a usage reading for an owned device.
func (s *Server) handleRecordUsage(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	var req recordUsageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if req.DeviceID == "" {
		writeValidationError(w, "device_id is required")
		return
	}
	if req.Usage == nil {
		writeValidationError(w, "usage is required")
		return
	}

	// The reading time defaults to now when omitted
	ts := time.Now().UTC()
	if req.Timestamp != "" {
		parsed, err := time.Parse(time.RFC3339, req.Timestamp)
		if err != nil {
			writeValidationError(w, "timestamp must be RFC 3339")
			return
		}
		ts = parsed
	}

	rec, err := s.ledger.Record(r.Context(), user.ID, req.DeviceID, *req.Usage, ts)
	if err != nil {
		switch {
		case errors.Is(err, usage.ErrInvalidValue):
			writeValidationError(w, err.Error())
		case errors.Is(err, device.ErrDeviceNotFound):
			writeNotFound(w, "device not found")
		default:
			s.logger.Error("usage recording failed", "error", err)
			writeInternalError(w, "usage recording failed")
		}
		return
	}

	s.recordAudit(r.Context(), &audit.Entry{
		UserID:     user.ID,
		Action:     audit.ActionUsageRecord,
		EntityType: "usage_record",
		EntityID:   rec.ID,
		Details:    map[string]any{"device_id": rec.DeviceID, "usage": rec.Value},
	})

	writeJSON(w, http.StatusCreated, rec)
}

// handleQueryDeviceUsage returns readings for an owned device within an
// inclusive time range.
func (s *Server) handleQueryDeviceUsage(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())
	deviceID := chi.URLParam(r, "id")

	start, end, ok := parseRange(w, r)
	if !ok {
		return
	}

	records, err := s.ledger.Query(r.Context(), user.ID, deviceID, start, end)
	if err != nil {
		if errors.Is(err, device.ErrDeviceNotFound) {
			writeNotFound(w, "device not found")
			return
		}
		s.logger.Error("usage query failed", "error", err)
		writeInternalError(w, "usage query failed")
		return
	}

	writeJSON(w, http.StatusOK, records)
}

// handleTotalUsage returns the summed usage across all of the user's
// devices within an inclusive time range.
func (s *Server) handleTotalUsage(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	start, end, ok := parseRange(w, r)
	if !ok {
		return
	}

	total, err := s.ledger.TotalForUser(r.Context(), user.ID, start, end)
	if err != nil {
		s.logger.Error("usage total failed", "error", err)
		writeInternalError(w, "usage total failed")
		return
	}

	writeJSON(w, http.StatusOK, totalUsageResponse{
		Total: total,
		Start: start.Format(time.RFC3339),
		End:   end.Format(time.RFC3339),
	})
}

// parseRange reads the required start and end query parameters. On failure
// it writes a 400 response and returns ok=false.
func parseRange(w http.ResponseWriter, r *http.Request) (start, end time.Time, ok bool) {
	startParam := r.URL.Query().Get("start")
	endParam := r.URL.Query().Get("end")
	if startParam == "" || endParam == "" {
		writeValidationError(w, "start and end query parameters are required")
		return time.Time{}, time.Time{}, false
	}

	start, err := time.Parse(time.RFC3339, startParam)
	if err != nil {
		writeValidationError(w, "start must be RFC 3339")
		return time.Time{}, time.Time{}, false
	}
	end, err = time.Parse(time.RFC3339, endParam)
	if err != nil {
		writeValidationError(w, "end must be RFC 3339")
		return time.Time{}, time.Time{}, false
	}

	return start, end, true
}
