package chi

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// AdminAuthMiddleware returns a middleware that validates Bearer tokens on
// administrative routes. If keys is empty, the routes are disabled and
// answer 401 to everyone.
func AdminAuthMiddleware(keys []string) func(http.Handler) http.Handler {
	valid := make([][]byte, 0, len(keys))
	for _, k := range keys {
		if k != "" {
			valid = append(valid, []byte(k))
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(valid) == 0 {
				writeError(w, http.StatusUnauthorized, ErrorCodeUnauthorized, "admin api is disabled")
				return
			}

			auth := r.Header.Get("Authorization")
			if auth == "" {
				writeError(w, http.StatusUnauthorized, ErrorCodeUnauthorized, "missing authorization header")
				return
			}

			const bearerPrefix = "Bearer "
			if !strings.HasPrefix(auth, bearerPrefix) {
				writeError(w, http.StatusUnauthorized,
					ErrorCodeUnauthorized, "authorization header must use Bearer scheme")
				return
			}

			if !knownKey(valid, []byte(auth[len(bearerPrefix):])) {
				writeError(w, http.StatusUnauthorized, ErrorCodeUnauthorized, "invalid api key")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func knownKey(valid [][]byte, token []byte) bool {
	ok := 0
	for _, k := range valid {
		ok |= subtle.ConstantTimeCompare(k, token)
	}
	return ok == 1
}
