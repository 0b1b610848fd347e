package auth

import (
	"encoding/json"
	"net/http"
	"strings"
)

// Skipper reports whether a request may bypass token checks, for public
// routes like login and health.
type Skipper func(r *http.Request) bool

// Middleware rejects requests that do not carry a valid bearer token and
// attaches the token's claims to the request context for downstream
// ownership checks.
type Middleware struct {
	cfg     Config
	skipper Skipper
}

// NewMiddleware constructs a middleware with an optional skipper.
func NewMiddleware(cfg Config, skipper Skipper) Middleware {
	return Middleware{cfg: cfg, skipper: skipper}
}

// Wrap guards next with authentication. Failures are reported as a JSON
// error body in the same shape the API handlers use.
func (m Middleware) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.skipper != nil && m.skipper(r) {
			next.ServeHTTP(w, r)
			return
		}

		claims, err := Parse(bearerToken(r), m.cfg)
		if err != nil {
			unauthorized(w, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
	})
}

// bearerToken extracts the token from the Authorization header. Absent or
// non-bearer headers yield an empty token, which Parse reports as missing.
func bearerToken(r *http.Request) string {
	const prefix = "bearer "
	header := r.Header.Get("Authorization")
	if len(header) < len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}

func unauthorized(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
