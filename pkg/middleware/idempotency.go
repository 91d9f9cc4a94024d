package middleware

import (
	"bytes"
	"context"
	"net/http"
	"time"

	"ksrtc-reservation/pkg/cache"
	"ksrtc-reservation/pkg/utils"

	"go.uber.org/zap"
)

const (
	IdempotencyHeader         = "Idempotency-Key"
	IdempotencyReplayedHeader = "X-Idempotency-Replayed"

	idempotencyLockTTL = 30 * time.Second
)

type IdempotencyStore interface {
	Lookup(ctx context.Context, key string) (*cache.StoredResponse, error)
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Save(ctx context.Context, key string, resp cache.StoredResponse, ttl time.Duration) error
	Release(ctx context.Context, key string) error
}

// captureWriter tees the response so it can be stored for replay
type captureWriter struct {
	http.ResponseWriter
	status int
	body   bytes.Buffer
}

func (cw *captureWriter) WriteHeader(code int) {
	cw.status = code
	cw.ResponseWriter.WriteHeader(code)
}

func (cw *captureWriter) Write(b []byte) (int, error) {
	cw.body.Write(b)
	return cw.ResponseWriter.Write(b)
}

// Idempotency replays the first response seen for an Idempotency-Key.
// Keys are scoped to the authenticated customer, method and path. A nil store,
// a missing header or a store failure lets the request through untouched.
// 5xx responses are not stored so the client can retry.
func Idempotency(store IdempotencyStore, ttl time.Duration, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get(IdempotencyHeader)
			if store == nil || key == "" || r.Method == http.MethodGet {
				next.ServeHTTP(w, r)
				return
			}

			scope := "anonymous"
			if customerID, ok := utils.GetCustomerIDFromContext(r.Context()); ok {
				scope = customerID.String()
			}
			scopedKey := scope + ":" + r.Method + ":" + r.URL.Path + ":" + key
			ctx := r.Context()

			stored, err := store.Lookup(ctx, scopedKey)
			if err != nil {
				logger.Warn("Idempotency lookup failed", zap.Error(err))
				next.ServeHTTP(w, r)
				return
			}
			if stored != nil {
				replay(w, stored)
				return
			}

			acquired, err := store.Acquire(ctx, scopedKey, idempotencyLockTTL)
			if err != nil {
				logger.Warn("Idempotency lock failed", zap.Error(err))
				next.ServeHTTP(w, r)
				return
			}
			if !acquired {
				utils.ResponseConflict(w, "A request with this idempotency key is already in progress", nil)
				return
			}
			defer func() {
				if err := store.Release(context.WithoutCancel(ctx), scopedKey); err != nil {
					logger.Warn("Idempotency release failed", zap.Error(err))
				}
			}()

			// the previous holder may have saved its response between our lookup and acquire
			stored, err = store.Lookup(ctx, scopedKey)
			if err != nil {
				logger.Warn("Idempotency lookup failed", zap.Error(err))
			}
			if stored != nil {
				replay(w, stored)
				return
			}

			cw := &captureWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(cw, r)

			if cw.status >= http.StatusInternalServerError {
				return
			}

			resp := cache.StoredResponse{
				StatusCode:  cw.status,
				ContentType: cw.Header().Get("Content-Type"),
				Body:        cw.body.Bytes(),
			}
			if err := store.Save(context.WithoutCancel(ctx), scopedKey, resp, ttl); err != nil {
				logger.Warn("Idempotency save failed", zap.Error(err))
			}
		})
	}
}

func replay(w http.ResponseWriter, stored *cache.StoredResponse) {
	w.Header().Set(IdempotencyReplayedHeader, "true")
	if stored.ContentType != "" {
		w.Header().Set("Content-Type", stored.ContentType)
	}
	w.WriteHeader(stored.StatusCode)
	w.Write(stored.Body)
}
