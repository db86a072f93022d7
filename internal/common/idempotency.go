package common

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"time"

	redis "github.com/redis/go-redis/v9"
)

const idemKeyPrefix = "ratematrix:idem:"

// Idem enforces Idempotency-Key semantics for matrix uploads: a replace is
// destructive, so replaying the same submission must not install the matrix
// twice. The key is claimed with SetNX; a second request carrying the same
// header inside the TTL gets a 409.
type Idem struct {
	R   *redis.Client
	TTL time.Duration
}

func idemKey(header string) string {
	sum := sha256.Sum256([]byte(header))
	return idemKeyPrefix + hex.EncodeToString(sum[:])
}

// Middleware claims the request's idempotency key before running the handler.
// Requests without the header, or with no Redis configured, pass through.
func (i Idem) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Idempotency-Key")
		if header == "" || i.R == nil {
			next.ServeHTTP(w, r)
			return
		}
		key := idemKey(header)
		claimed, err := i.R.SetNX(r.Context(), key, "locked", i.TTL).Result()
		if err != nil {
			JSONError(w, http.StatusInternalServerError, "INTERNAL", "idempotency store error", nil)
			return
		}
		if !claimed {
			JSONError(w, http.StatusConflict, "IDEMPOTENT_REPLAY", "duplicate request", nil)
			return
		}
		defer func() {
			// keep the claim alive for the full TTL even if the handler panics
			_ = i.R.Expire(context.Background(), key, i.TTL).Err()
		}()
		next.ServeHTTP(w, r)
	})
}
