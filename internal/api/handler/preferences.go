package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sharpline/sharpline-alerts/internal/api/respond"
	"github.com/sharpline/sharpline-alerts/internal/engine"
	"github.com/sharpline/sharpline-alerts/internal/store"
)

// GetPreferences returns a user's alert preferences, falling back to the
// product defaults for users who never saved any.
// @Summary Get alert preferences
// @Tags preferences
// @Produce json
// @Param userID path string true "User ID"
// @Success 200 {object} engine.AlertPreferences
// @Router /preferences/{userID} [get]
func (h *Handler) GetPreferences(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	prefs, err := store.GetPreferences(r.Context(), h.pool, userID)
	if err != nil {
		respond.WriteError(w, http.StatusInternalServerError, "DB_ERROR", "Failed to load preferences")
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, prefs)
}

// PutPreferences saves a user's alert preferences.
// @Summary Save alert preferences
// @Tags preferences
// @Accept json
// @Produce json
// @Param userID path string true "User ID"
// @Param preferences body engine.AlertPreferences true "Preferences"
// @Success 200 {object} engine.AlertPreferences
// @Failure 400 {object} respond.ErrorResponse
// @Router /preferences/{userID} [put]
func (h *Handler) PutPreferences(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	var prefs engine.AlertPreferences
	if err := json.NewDecoder(r.Body).Decode(&prefs); err != nil {
		respond.WriteErrorDetail(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid preferences", err.Error())
		return
	}
	prefs.UserID = userID

	if prefs.MinConfidence.Ordinal() < 0 {
		respond.WriteError(w, http.StatusBadRequest, "BAD_REQUEST", "min_confidence must be low, medium, or high")
		return
	}
	if prefs.MinEdgeThreshold < 0 {
		respond.WriteError(w, http.StatusBadRequest, "BAD_REQUEST", "min_edge_threshold must be non-negative")
		return
	}
	for _, s := range prefs.Sports {
		if s != engine.SportNBA && s != engine.SportNFL {
			respond.WriteError(w, http.StatusBadRequest, "BAD_REQUEST", "sports entries must be nba or nfl")
			return
		}
	}

	if err := store.SavePreferences(r.Context(), h.pool, prefs); err != nil {
		respond.WriteError(w, http.StatusInternalServerError, "DB_ERROR", "Failed to save preferences")
		return
	}
	h.cache.InvalidateUser(userID)
	respond.WriteJSONObject(w, http.StatusOK, prefs)
}
