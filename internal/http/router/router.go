// Package router wires routes, middlewares and controllers into one handler.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	healthctrl "github.com/uslaccafrica/registration-mailer/internal/http/controllers/health"
	resendctrl "github.com/uslaccafrica/registration-mailer/internal/http/controllers/resend"
	mw "github.com/uslaccafrica/registration-mailer/internal/http/middlewares"
	"github.com/uslaccafrica/registration-mailer/internal/rate"
)

// Deps holds everything the router needs. The composition root in cmd
// builds these once at startup and hands them over.
type Deps struct {
	Resend *resendctrl.Controller
	Health *healthctrl.Controller

	// Metrics is the /metrics handler; nil disables the route.
	Metrics http.Handler
	// Instrument wraps the mux with request metrics; nil disables it.
	Instrument func(http.Handler) http.Handler

	CORSAllowedOrigins []string
	RateLimiter        rate.Limiter // nil disables per-IP limiting
}

// New assembles the full HTTP handler.
func New(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Post("/v1/registrations/resend-verification", deps.Resend.Resend)
	// Preflight for browser clients; CORS middleware answers it.
	r.Options("/v1/registrations/resend-verification", func(http.ResponseWriter, *http.Request) {})

	r.Get("/healthz", deps.Health.Healthz)
	r.Get("/readyz", deps.Health.Readyz)
	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.Metrics)
	}

	var h http.Handler = r
	if deps.Instrument != nil {
		h = deps.Instrument(h)
	}

	origins := deps.CORSAllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	return mw.Chain(h,
		mw.WithRequestID(),
		mw.WithRecover(),
		mw.WithLogging(),
		mw.WithCORS(origins),
		mw.WithRateLimit(mw.RateLimitConfig{
			Limiter:   deps.RateLimiter,
			Whitelist: []string{"/healthz", "/readyz", "/metrics"},
		}),
	)
}
