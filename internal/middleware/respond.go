// Package middleware holds the HTTP middleware shared by every route:
// per-client rate limiting, role resolution and capability checks, and CORS.
package middleware

import (
	"encoding/json"
	"net/http"
)

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
