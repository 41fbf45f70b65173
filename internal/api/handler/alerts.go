package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/sharpline/sharpline-alerts/internal/api/respond"
	"github.com/sharpline/sharpline-alerts/internal/cache"
	"github.com/sharpline/sharpline-alerts/internal/engine"
	"github.com/sharpline/sharpline-alerts/internal/store"
)

// generateRequest is the body of POST /alerts/{userID}/generate: a batch of
// games with predictions, as supplied by the prediction feed.
type generateRequest struct {
	Games []engine.GameWithPrediction `json:"games"`
}

// GetAlerts lists a user's alerts, newest and most urgent first.
// @Summary List alerts
// @Description Returns the user's alerts ordered by priority then recency. Filterable by unread, type, and sport.
// @Tags alerts
// @Produce json
// @Param userID path string true "User ID"
// @Param unread query bool false "Only unread alerts"
// @Param type query string false "Alert type filter" Enums(value_bet, high_confidence, line_movement, injury)
// @Param sport query string false "Sport filter" Enums(nba, nfl)
// @Param limit query int false "Max alerts returned" default(100)
// @Success 200 {array} engine.Alert
// @Router /alerts/{userID} [get]
func (h *Handler) GetAlerts(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	opts := listOptionsFromQuery(r)

	key := cache.UserKey(userID, fmt.Sprintf("alerts:%v:%s:%s:%d",
		opts.UnreadOnly, opts.Type, opts.Sport, opts.Limit))
	if data, etag, ok := h.cache.Get(key); ok {
		if cache.CheckETagMatch(r.Header.Get("If-None-Match"), etag) {
			respond.WriteNotModified(w, etag)
			return
		}
		respond.WriteJSON(w, data, etag, cache.TTLAlertList, true)
		return
	}

	alerts, err := store.List(r.Context(), h.pool, userID, opts)
	if err != nil {
		respond.WriteError(w, http.StatusInternalServerError, "DB_ERROR", "Failed to list alerts")
		return
	}
	if alerts == nil {
		alerts = []engine.Alert{}
	}

	data, err := json.Marshal(alerts)
	if err != nil {
		respond.WriteError(w, http.StatusInternalServerError, "ENCODE_ERROR", "Failed to encode alerts")
		return
	}
	etag := h.cache.Set(key, data, cache.TTLAlertList)
	respond.WriteJSON(w, data, etag, cache.TTLAlertList, false)
}

// GetAlertsGrouped lists a user's alerts partitioned by type.
// @Summary List alerts grouped by type
// @Description Returns the user's alerts partitioned by alert type, order preserved within each group.
// @Tags alerts
// @Produce json
// @Param userID path string true "User ID"
// @Success 200 {object} map[string][]engine.Alert
// @Router /alerts/{userID}/grouped [get]
func (h *Handler) GetAlertsGrouped(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	alerts, err := store.List(r.Context(), h.pool, userID, listOptionsFromQuery(r))
	if err != nil {
		respond.WriteError(w, http.StatusInternalServerError, "DB_ERROR", "Failed to list alerts")
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, engine.GroupByType(alerts))
}

// GetUnreadCount returns the user's unread alert count.
// @Summary Unread alert count
// @Tags alerts
// @Produce json
// @Param userID path string true "User ID"
// @Success 200 {object} map[string]int
// @Router /alerts/{userID}/unread-count [get]
func (h *Handler) GetUnreadCount(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	n, err := store.CountUnread(r.Context(), h.pool, userID)
	if err != nil {
		respond.WriteError(w, http.StatusInternalServerError, "DB_ERROR", "Failed to count unread alerts")
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, map[string]int{"unread": n})
}

// GenerateAlerts derives, persists, and broadcasts alerts for a batch of
// games using the user's stored preferences.
// @Summary Generate alerts from a game batch
// @Description Runs the derivation engine over the supplied games with the user's stored preferences, persists new alerts, and pushes them to connected WebSocket clients.
// @Tags alerts
// @Accept json
// @Produce json
// @Param userID path string true "User ID"
// @Param batch body generateRequest true "Games with predictions"
// @Success 200 {array} engine.Alert
// @Failure 400 {object} respond.ErrorResponse
// @Router /alerts/{userID}/generate [post]
func (h *Handler) GenerateAlerts(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteErrorDetail(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid game batch", err.Error())
		return
	}

	prefs, err := store.GetPreferences(r.Context(), h.pool, userID)
	if err != nil {
		respond.WriteError(w, http.StatusInternalServerError, "DB_ERROR", "Failed to load preferences")
		return
	}

	alerts := engine.Generate(req.Games, prefs, time.Now().UTC())

	inserted, err := store.UpsertBatch(r.Context(), h.pool, alerts)
	if err != nil {
		respond.WriteError(w, http.StatusInternalServerError, "DB_ERROR", "Failed to persist alerts")
		return
	}
	if inserted > 0 {
		h.hub.BroadcastAll(alerts)
		h.cache.InvalidateUser(userID)
	}

	if alerts == nil {
		alerts = []engine.Alert{}
	}
	respond.WriteJSONObject(w, http.StatusOK, alerts)
}

// MarkAlertRead flags one alert as read.
// @Summary Mark alert read
// @Tags alerts
// @Produce json
// @Param userID path string true "User ID"
// @Param alertID path string true "Alert ID"
// @Success 200 {object} map[string]bool
// @Failure 404 {object} respond.ErrorResponse
// @Router /alerts/{userID}/{alertID}/read [patch]
func (h *Handler) MarkAlertRead(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	alertID := chi.URLParam(r, "alertID")

	found, err := store.MarkRead(r.Context(), h.pool, userID, alertID)
	if err != nil {
		respond.WriteError(w, http.StatusInternalServerError, "DB_ERROR", "Failed to mark alert read")
		return
	}
	if !found {
		respond.WriteError(w, http.StatusNotFound, "NOT_FOUND", "Alert not found")
		return
	}
	h.cache.InvalidateUser(userID)
	respond.WriteJSONObject(w, http.StatusOK, map[string]bool{"read": true})
}

// MarkAllAlertsRead flags all of a user's unread alerts as read.
// @Summary Mark all alerts read
// @Tags alerts
// @Produce json
// @Param userID path string true "User ID"
// @Success 200 {object} map[string]int64
// @Router /alerts/{userID}/read-all [post]
func (h *Handler) MarkAllAlertsRead(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	n, err := store.MarkAllRead(r.Context(), h.pool, userID)
	if err != nil {
		respond.WriteError(w, http.StatusInternalServerError, "DB_ERROR", "Failed to mark alerts read")
		return
	}
	h.cache.InvalidateUser(userID)
	respond.WriteJSONObject(w, http.StatusOK, map[string]int64{"updated": n})
}

func listOptionsFromQuery(r *http.Request) store.ListOptions {
	q := r.URL.Query()
	opts := store.ListOptions{
		UnreadOnly: q.Get("unread") == "true",
		Type:       engine.AlertType(q.Get("type")),
		Sport:      engine.Sport(q.Get("sport")),
	}
	if limit, err := strconv.Atoi(q.Get("limit")); err == nil && limit > 0 {
		opts.Limit = limit
	}
	return opts
}
