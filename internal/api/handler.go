package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	trendssvc "hermes/internal/services/trends"
	"hermes/pkg/logger"
)

// Handler serves the trend endpoints. Responses keep the dashboard envelope:
// {success, count, data} on success, {success, message, error} on failure.
type Handler struct {
	service *trendssvc.Service
	log     *logger.Logger
}

// NewHandler creates the trends API handler
func NewHandler(service *trendssvc.Service) *Handler {
	return &Handler{
		service: service,
		log:     logger.Get().With("component", "api"),
	}
}

type listResponse struct {
	Success bool        `json:"success"`
	Count   int         `json:"count"`
	Data    interface{} `json:"data"`
}

type itemResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data"`
}

type errorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error"`
}

// HandleTrendingChannels serves GET /api/trends/channels
func (h *Handler) HandleTrendingChannels(w http.ResponseWriter, r *http.Request) {
	channels, err := h.service.GetTrendingChannels(r.Context())
	if err != nil {
		h.writeError(w, "Error fetching trending channels", err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse{Success: true, Count: len(channels), Data: channels})
}

// HandleTrendingCoins serves GET /api/trends/coins
func (h *Handler) HandleTrendingCoins(w http.ResponseWriter, r *http.Request) {
	coins, err := h.service.GetTrendingCoins(r.Context())
	if err != nil {
		h.writeError(w, "Error fetching trending coins", err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse{Success: true, Count: len(coins), Data: coins})
}

// HandleTrendingTopics serves GET /api/trends/topics
func (h *Handler) HandleTrendingTopics(w http.ResponseWriter, r *http.Request) {
	topics, err := h.service.GetTrendingTopics(r.Context())
	if err != nil {
		h.writeError(w, "Error fetching trending topics", err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse{Success: true, Count: len(topics), Data: topics})
}

// HandleChannelStats serves GET /api/channels/{username}/stats
func (h *Handler) HandleChannelStats(w http.ResponseWriter, r *http.Request) {
	username := r.PathValue("username")
	if username == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Message: "Channel username is required",
		})
		return
	}

	stats, err := h.service.GetChannelStats(r.Context(), username)
	if err != nil {
		h.writeError(w, "Error fetching channel statistics", err)
		return
	}
	writeJSON(w, http.StatusOK, itemResponse{Success: true, Data: stats})
}

// HandleSearch serves GET /api/search?q=...&limit=...
func (h *Handler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Message: "Search query is required",
		})
		return
	}

	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}

	results, err := h.service.SearchMessages(r.Context(), query, limit)
	if err != nil {
		h.writeError(w, "Error searching messages", err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse{Success: true, Count: len(results), Data: results})
}

type clearCacheRequest struct {
	CacheKey string `json:"cacheKey"`
}

// HandleClearCache serves POST /api/cache/clear with an optional body
// {"cacheKey": "channels"|"coins"|"topics"}; no key clears everything
func (h *Handler) HandleClearCache(w http.ResponseWriter, r *http.Request) {
	var req clearCacheRequest
	if r.Body != nil {
		// An empty or absent body means "clear all"
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	kind := trendssvc.CacheKind(req.CacheKey)
	switch kind {
	case "", trendssvc.CacheChannels, trendssvc.CacheCoins, trendssvc.CacheTopics:
	default:
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Message: "Unknown cache key: " + req.CacheKey,
		})
		return
	}

	h.service.ClearCache(kind)

	cleared := req.CacheKey
	if cleared == "" {
		cleared = "all"
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":      true,
		"clearedCache": cleared,
	})
}

func (h *Handler) writeError(w http.ResponseWriter, message string, err error) {
	h.log.Errorf("%s: %v", message, err)
	writeJSON(w, http.StatusInternalServerError, errorResponse{
		Message: message,
		Error:   err.Error(),
	})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
