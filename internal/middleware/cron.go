package middleware

import (
	"crypto/subtle"
	"net/http"
)

// CronSecret guards the scheduled-trigger endpoints. The whole Authorization
// header must equal "Bearer <secret>". An empty secret rejects every request.
func CronSecret(secret string) func(http.Handler) http.Handler {
	want := []byte("Bearer " + secret)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := []byte(r.Header.Get("Authorization"))
			if secret == "" || subtle.ConstantTimeCompare(got, want) != 1 {
				writeError(w, http.StatusUnauthorized, "unauthorized", "Unauthorized")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
