package api

import (
	"net/http"
	"strconv"

	"github.com/gridsense/gridsense-core/internal/audit"
)

// handleListAudit returns the authenticated user's activity trail, most
// recent first. Supports action and entity_id filters plus limit/offset
// pagination.
func (s *Server) handleListAudit(w http.ResponseWriter, r *http.Request) {
	if s.audit == nil {
		writeNotFound(w, "audit trail disabled")
		return
	}

	user := userFromContext(r.Context())
	q := r.URL.Query()

	filter := audit.Filter{
		UserID:   user.ID,
		Action:   q.Get("action"),
		EntityID: q.Get("entity_id"),
	}
	if v := q.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil {
			writeValidationError(w, "limit must be an integer")
			return
		}
		filter.Limit = limit
	}
	if v := q.Get("offset"); v != "" {
		offset, err := strconv.Atoi(v)
		if err != nil {
			writeValidationError(w, "offset must be an integer")
			return
		}
		filter.Offset = offset
	}

	result, err := s.audit.List(r.Context(), filter)
	if err != nil {
		s.logger.Error("audit listing failed", "error", err)
		writeInternalError(w, "audit listing failed")
		return
	}

	writeJSON(w, http.StatusOK, result)
}
