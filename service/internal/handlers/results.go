// internal/handlers/results.go
package handlers

import (
	"net/http"
	"strconv"

	"github.com/jason-s-yu/klondike/service/internal/database"
)

// ListResults returns the calling guest's most recent finished games, newest
// first. GET /api/results?limit=N with the guest token as a Bearer header.
func (h *Handler) ListResults(w http.ResponseWriter, r *http.Request) {
	if h.Results == nil {
		writeError(w, http.StatusServiceUnavailable, "results are not stored")
		return
	}
	token := tokenFromRequest(r)
	if token == "" {
		writeError(w, http.StatusUnauthorized, "missing guest token")
		return
	}
	userID, err := h.Issuer.Parse(token)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid guest token")
		return
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	results, err := h.Results.RecentResults(r.Context(), userID, limit)
	if err != nil {
		h.logger().WithField("user", userID).WithError(err).Error("failed listing results")
		writeError(w, http.StatusInternalServerError, "could not load results")
		return
	}
	if results == nil {
		results = []database.Result{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"results": results})
}
