package middlewares

import (
	"net/http"

	"github.com/uslaccafrica/registration-mailer/internal/http/helpers"
	"github.com/uslaccafrica/registration-mailer/internal/observability/logger"
)

// WithRecover catches panics and returns a 500 instead of crashing.
func WithRecover() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					log := logger.From(r.Context())
					log.Error("panic recovered",
						logger.Op("recover"),
						logger.Any("panic", rec),
					)
					helpers.WriteErrorJSON(w, http.StatusInternalServerError, "Internal server error")
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
