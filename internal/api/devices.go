package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/gridsense/gridsense-core/internal/audit"
	"github.com/gridsense/gridsense-core/internal/device"
)

// createDeviceRequest is the request body for POST /devices.
type createDeviceRequest struct {
	Name       string  `json:"name"`
	Type       string  `json:"type"`
	Status     bool    `json:"status"`
	PowerUsage float64 `json:"power_usage"`
}

// setStatusRequest is the request body for PUT /devices/{id}/status.
type setStatusRequest struct {
	Status bool `json:"status"`
}

// handleCreateDevice registers a new device owned by the authenticated user.
func (s *Server) handleCreateDevice(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	var req createDeviceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	dev := &device.Device{
		OwnerID:    user.ID,
		Name:       req.Name,
		Type:       req.Type,
		Status:     req.Status,
		PowerUsage: req.PowerUsage,
	}
	if err := s.devices.Create(r.Context(), dev); err != nil {
		switch {
		case errors.Is(err, device.ErrInvalidName), errors.Is(err, device.ErrInvalidPowerUsage):
			writeValidationError(w, err.Error())
		default:
			s.logger.Error("device creation failed", "error", err)
			writeInternalError(w, "device creation failed")
		}
		return
	}

	s.recordAudit(r.Context(), &audit.Entry{
		UserID:     user.ID,
		Action:     audit.ActionDeviceCreate,
		EntityType: "device",
		EntityID:   dev.ID,
		Details:    map[string]any{"name": dev.Name, "type": dev.Type},
	})

	writeJSON(w, http.StatusCreated, dev)
}

// handleListDevices returns all devices owned by the authenticated user.
func (s *Server) handleListDevices(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	devices, err := s.devices.ListByOwner(r.Context(), user.ID)
	if err != nil {
		s.logger.Error("device listing failed", "error", err)
		writeInternalError(w, "device listing failed")
		return
	}

	writeJSON(w, http.StatusOK, devices)
}

// handleSetDeviceStatus updates the on/off state of an owned device.
//
// A device owned by another user gets the same 404 as one that does not
// exist.
func (s *Server) handleSetDeviceStatus(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())
	deviceID := chi.URLParam(r, "id")

	var req setStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	dev, err := s.devices.SetStatus(r.Context(), deviceID, user.ID, req.Status)
	if err != nil {
		if errors.Is(err, device.ErrDeviceNotFound) {
			writeNotFound(w, "device not found")
			return
		}
		s.logger.Error("device status update failed", "error", err)
		writeInternalError(w, "device status update failed")
		return
	}

	s.recordAudit(r.Context(), &audit.Entry{
		UserID:     user.ID,
		Action:     audit.ActionDeviceStatus,
		EntityType: "device",
		EntityID:   dev.ID,
		Details:    map[string]any{"status": dev.Status},
	})

	writeJSON(w, http.StatusOK, dev)
}
