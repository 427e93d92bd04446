package server

import (
	"crypto/subtle"
	"net/http"

	"github.com/ridge/karst/thttp"
)

// RequireToken is a middleware that rejects requests not bearing the given
// token with 401.
func RequireToken(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got, err := thttp.BearerToken(r.Header)
			if err != nil || subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
