package middlewares

import (
	"net/http"
	"strings"
)

// WithCORS handles CORS for the allowed origins. With "*" in the list the
// header is set to the wildcard on every response, even when the request
// carries no Origin, so browser-hosted registration forms always get it.
func WithCORS(allowed []string) Middleware {
	trim := func(s string) string { return strings.TrimRight(strings.TrimSpace(s), "/") }

	wildcard := false
	alist := make([]string, 0, len(allowed))
	for _, v := range allowed {
		v = trim(v)
		if v == "*" {
			wildcard = true
		}
		alist = append(alist, v)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			origin := trim(r.Header.Get("Origin"))

			allowedOrigin := ""
			if wildcard {
				allowedOrigin = "*"
			} else {
				h.Add("Vary", "Origin")
				for _, a := range alist {
					if origin != "" && strings.EqualFold(origin, a) {
						allowedOrigin = origin
						break
					}
				}
			}

			if allowedOrigin != "" {
				h.Set("Access-Control-Allow-Origin", allowedOrigin)
				h.Set("Access-Control-Allow-Methods", "POST,OPTIONS")
				h.Set("Access-Control-Allow-Headers", "Content-Type, X-Request-ID")
				h.Set("Access-Control-Expose-Headers", "X-Request-ID, Retry-After")
				h.Set("Access-Control-Max-Age", "600") // preflight cache 10 min
			}

			// Preflight request
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
