package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	deviceHTTP "github.com/HusseinTALL/GARBAKING-POS-sub002/internal/device/http"
	apperrors "github.com/HusseinTALL/GARBAKING-POS-sub002/internal/errors"
	"github.com/HusseinTALL/GARBAKING-POS-sub002/internal/httputil"
)

// rateLimiterStore holds per-key rate limiters with automatic cleanup.
type rateLimiterStore struct {
	limiters sync.Map // map[string]*rateLimiterEntry
	rps      float64
	burst    int
}

// rateLimiterEntry holds a rate limiter and last access time for cleanup.
type rateLimiterEntry struct {
	limiter    *rate.Limiter
	lastAccess time.Time
	mu         sync.Mutex
}

// DeviceRateLimitMiddleware enforces per-device rate limiting on scan and
// confirm requests, throttling brute-force guessing of short codes from a
// compromised device.
//
// MUST be used after the device authentication middleware. Uses a token
// bucket per device ID via golang.org/x/time/rate.
//
// Returns 429 Too Many Requests with a Retry-After header when exceeded.
func DeviceRateLimitMiddleware(rps float64, burst int, logger *slog.Logger) gin.HandlerFunc {
	store := newRateLimiterStore(rps, burst)

	return func(c *gin.Context) {
		dc, ok := deviceHTTP.GetDeviceContext(c.Request.Context())
		if !ok || dc == nil {
			// Should never happen - authentication middleware should have caught this
			logger.Error("rate limit middleware: no authenticated device in context")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		if !allow(c, store, dc.DeviceID.String(), logger, "device_id") {
			return
		}

		c.Next()
	}
}

// IPRateLimitMiddleware enforces per-IP rate limiting. A second guard in
// front of the device limiter, catching floods that rotate device credentials.
func IPRateLimitMiddleware(rps float64, burst int, logger *slog.Logger) gin.HandlerFunc {
	store := newRateLimiterStore(rps, burst)

	return func(c *gin.Context) {
		if !allow(c, store, c.ClientIP(), logger, "ip") {
			return
		}

		c.Next()
	}
}

// allow checks the limiter for the key and writes the 429 response on rejection.
func allow(c *gin.Context, store *rateLimiterStore, key string, logger *slog.Logger, keyLabel string) bool {
	limiter := store.getLimiter(key)

	if limiter.Allow() {
		return true
	}

	reservation := limiter.Reserve()
	retryAfter := int(reservation.Delay().Seconds())
	reservation.Cancel()

	logger.Debug("rate limit exceeded",
		slog.String(keyLabel, key),
		slog.Int("retry_after", retryAfter))

	c.Header("Retry-After", fmt.Sprintf("%d", retryAfter))
	c.JSON(http.StatusTooManyRequests, httputil.ErrorResponse{
		Error:   "RATE_LIMITED",
		Message: "Too many requests. Please retry after the specified delay.",
	})
	c.Abort()
	return false
}

// newRateLimiterStore creates a store and starts its stale-entry cleanup loop.
func newRateLimiterStore(rps float64, burst int) *rateLimiterStore {
	store := &rateLimiterStore{
		rps:   rps,
		burst: burst,
	}

	go store.cleanupStale(context.Background(), 5*time.Minute)

	return store
}

// getLimiter retrieves or creates a rate limiter for a key.
func (s *rateLimiterStore) getLimiter(key string) *rate.Limiter {
	if val, ok := s.limiters.Load(key); ok {
		entry := val.(*rateLimiterEntry)
		entry.mu.Lock()
		entry.lastAccess = time.Now()
		entry.mu.Unlock()
		return entry.limiter
	}

	limiter := rate.NewLimiter(rate.Limit(s.rps), s.burst)
	entry := &rateLimiterEntry{
		limiter:    limiter,
		lastAccess: time.Now(),
	}

	s.limiters.Store(key, entry)
	return limiter
}

// cleanupStale removes rate limiters that haven't been accessed in the last
// hour. Runs periodically to prevent unbounded memory growth.
func (s *rateLimiterStore) cleanupStale(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			threshold := time.Now().Add(-1 * time.Hour)
			s.limiters.Range(func(key, value interface{}) bool {
				entry := value.(*rateLimiterEntry)
				entry.mu.Lock()
				shouldDelete := entry.lastAccess.Before(threshold)
				entry.mu.Unlock()

				if shouldDelete {
					s.limiters.Delete(key)
				}
				return true
			})
		}
	}
}
