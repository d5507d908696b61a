package handler

import (
	"crypto/sha256"
	"crypto/subtle"
	"net/http"
)

// unauthorizedBody is the literal JSON string clients receive on a bad secret
const unauthorizedBody = "You are unauthorized"

// APIKeyHeader is accepted as an alternative to the pw query parameter
const APIKeyHeader = "X-API-Key"

// secret holds the digest of the shared secret; the plaintext is not kept.
type secret struct {
	digest [sha256.Size]byte
}

func newSecret(s string) *secret {
	return &secret{digest: sha256.Sum256([]byte(s))}
}

// matches compares digests in constant time so neither length nor content leaks
func (s *secret) matches(candidate string) bool {
	d := sha256.Sum256([]byte(candidate))
	return subtle.ConstantTimeCompare(d[:], s.digest[:]) == 1
}

func credential(r *http.Request) (string, bool) {
	if pw := r.URL.Query().Get("pw"); pw != "" {
		return pw, true
	}
	if key := r.Header.Get(APIKeyHeader); key != "" {
		return key, true
	}
	return "", false
}

// requireSecret rejects requests without the shared secret before any handler runs
func (h *Handler) requireSecret(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		pw, ok := credential(r)
		if !ok || !h.secret.matches(pw) {
			h.writeJSON(w, http.StatusUnauthorized, unauthorizedBody)
			return
		}
		next.ServeHTTP(w, r)
	})
}
