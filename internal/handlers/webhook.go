package handlers

import (
	"net/http"
	"strings"
	"time"

	"webhook-guard/internal/common/logging"
	"webhook-guard/internal/middleware"
)

// WebhookReceipt is the body of an accepted delivery.
type WebhookReceipt struct {
	Received bool   `json:"received"`
	Bytes    int    `json:"bytes"`
	Name     string `json:"name"`
}

// AcceptWebhook is the end of the webhook chain. By the time it runs the
// signature has been verified, so it only acknowledges the delivery.
func (h *Handlers) AcceptWebhook() middleware.Handler {
	return middleware.HandlerFunc(func(req *middleware.Request) (*middleware.Response, error) {
		name := strings.TrimPrefix(req.URL.Path, h.pathPrefix)

		h.logger.WithContext(req.Context()).Info("Webhook accepted",
			logging.String("name", name),
			logging.Int("bytes", len(req.RawBody)),
		)

		return middleware.JSON(http.StatusAccepted, WebhookReceipt{
			Received: true,
			Bytes:    len(req.RawBody),
			Name:     name,
		}), nil
	})
}

// HealthCheck reports service health and the status of each dependency.
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	status := map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
	}
	code := http.StatusOK

	for name, check := range h.checks {
		if err := check(r.Context()); err != nil {
			status[name+"_status"] = "unhealthy"
			status[name+"_error"] = err.Error()
			status["status"] = "degraded"
			code = http.StatusServiceUnavailable
			continue
		}
		status[name+"_status"] = "healthy"
	}

	writeJSON(w, code, status)
}
