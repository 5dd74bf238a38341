package health

import (
	"encoding/json"
	"net/http"
	"time"

	"hermes/internal/adapters/telegram"
	"hermes/pkg/logger"
)

// Handler provides health check endpoints
type Handler struct {
	log         *logger.Logger
	gateway     *telegram.Gateway
	startTime   time.Time
	serviceName string
	version     string
}

// New creates a new health check handler
func New(log *logger.Logger, gateway *telegram.Gateway, serviceName, version string) *Handler {
	return &Handler{
		log:         log,
		gateway:     gateway,
		startTime:   time.Now(),
		serviceName: serviceName,
		version:     version,
	}
}

// HealthStatus represents the overall health status
type HealthStatus struct {
	Status    string            `json:"status"` // "healthy" or "degraded"
	Service   string            `json:"service"`
	Version   string            `json:"version"`
	Uptime    string            `json:"uptime"`
	Timestamp string            `json:"timestamp"`
	Checks    map[string]string `json:"checks"`
}

// HandleLiveness returns 200 OK if service is running
func (h *Handler) HandleLiveness(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{
		"status": "alive",
	})
}

// HandleReadiness reports readiness; the Telegram session is lazy, so a not
// yet established session is degraded rather than failing
func (h *Handler) HandleReadiness(w http.ResponseWriter, r *http.Request) {
	h.writeStatus(w)
}

// HandleHealth returns the full health report
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	h.writeStatus(w)
}

func (h *Handler) writeStatus(w http.ResponseWriter) {
	checks := map[string]string{
		"telegram_session": "not_connected",
	}
	status := "degraded"
	if h.gateway.Connected() {
		checks["telegram_session"] = "connected"
		status = "healthy"
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(HealthStatus{
		Status:    status,
		Service:   h.serviceName,
		Version:   h.version,
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
	})
}
