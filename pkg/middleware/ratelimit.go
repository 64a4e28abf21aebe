package middleware

import (
	"encoding/json"
	"net/http"

	"golang.org/x/time/rate"

	"github.com/burstline/core/pkg/models/api"
)

// RateLimit rejects requests above the limiter's budget with 429. Used on
// the submit endpoint so a burst of submissions cannot flood the external
// lookups.
func RateLimit(limiter *rate.Limiter, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !limiter.Allow() {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			_ = json.NewEncoder(w).Encode(api.MessageResponse{
				Status: http.StatusTooManyRequests,
				Error:  "too many submissions, slow down",
			})
			return
		}
		next(w, r)
	}
}
