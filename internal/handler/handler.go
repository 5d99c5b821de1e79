package handler

import (
	"encoding/json"
	"net/http"
	"strings"
)

// CORS returns middleware that reflects the request Origin when it is in the
// configured allow-list and answers preflight requests.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin != "" && originAllowed(origin, allowedOrigins) {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
				w.Header().Set("Access-Control-Allow-Credentials", "true")
				w.Header().Set("Vary", "Origin")
			}

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// originAllowed reports whether origin starts with any allowed entry, so a
// configured "https://example.com" also covers full referer URLs.
func originAllowed(origin string, allowed []string) bool {
	for _, o := range allowed {
		if o != "" && strings.HasPrefix(origin, o) {
			return true
		}
	}
	return false
}

// Healthz answers liveness probes for the gate, which has no local state.
func Healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
