package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	httpx "github.com/dropDatabas3/gatekeeper/internal/http"
)

// Pinger reports storage liveness.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthController serves liveness and readiness probes.
type HealthController struct {
	store Pinger
}

func NewHealthController(store Pinger) *HealthController {
	return &HealthController{store: store}
}

func (c *HealthController) Register(r chi.Router) {
	r.Get("/healthz", c.healthz)
	r.Get("/readyz", c.readyz)
}

func (c *HealthController) healthz(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (c *HealthController) readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := c.store.Ping(ctx); err != nil {
		httpx.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded", "storage": err.Error()})
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
