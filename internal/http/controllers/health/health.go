// Package health exposes liveness and readiness probes.
package health

import (
	"context"
	"net/http"
	"time"

	"github.com/uslaccafrica/registration-mailer/internal/http/helpers"
	"github.com/uslaccafrica/registration-mailer/internal/observability/logger"
)

// Pinger checks reachability of a backing dependency.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Controller serves /healthz and /readyz.
type Controller struct {
	DB Pinger
}

// NewController builds the health controller. DB may be nil in tests.
func NewController(db Pinger) *Controller {
	return &Controller{DB: db}
}

// Healthz is a pure liveness probe: the process is up.
func (c *Controller) Healthz(w http.ResponseWriter, r *http.Request) {
	helpers.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Readyz verifies the registration store is reachable.
func (c *Controller) Readyz(w http.ResponseWriter, r *http.Request) {
	if c.DB != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := c.DB.Ping(ctx); err != nil {
			logger.From(r.Context()).Warn("readiness probe failed", logger.Err(err))
			helpers.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "unavailable",
				"db":     "down",
			})
			return
		}
	}
	helpers.WriteJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
