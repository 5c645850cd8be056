package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/onerilhan/thankatech-ledger/internal/middleware/errors"
	"github.com/onerilhan/thankatech-ledger/internal/utils"
)

// RateLimitConfig istemci başına rate limiting ayarları.
// Bakiye değiştiren istekler (POST) ayrı ve daha dar bir kovadan düşer.
type RateLimitConfig struct {
	RequestsPerMinute      int
	Burst                  int
	WriteRequestsPerMinute int // 0 ise RequestsPerMinute
	WriteBurst             int // 0 ise Burst
	SkipPaths              []string
	IdleTTL                time.Duration
}

// DefaultRateLimitConfig varsayılan rate limit ayarları
func DefaultRateLimitConfig() *RateLimitConfig {
	return &RateLimitConfig{
		RequestsPerMinute:      60,
		Burst:                  10,
		WriteRequestsPerMinute: 20,
		WriteBurst:             5,
		// Stripe webhook'ları kendi retry politikasıyla gelir, limitlenmez
		SkipPaths: []string{
			"/health",
			"/metrics",
			"/api/v1/webhooks/stripe",
		},
		IdleTTL: 30 * time.Minute,
	}
}

type bucket string

const (
	bucketRead  bucket = "read"
	bucketWrite bucket = "write"
)

type limiterKey struct {
	ip     string
	bucket bucket
}

type clientLimiter struct {
	limiter  *rate.Limiter
	perMin   int
	lastSeen time.Time
}

// RateLimitMiddleware IP + kova başına token bucket
type RateLimitMiddleware struct {
	config   *RateLimitConfig
	limiters map[limiterKey]*clientLimiter
	mutex    sync.Mutex
	stop     chan struct{}
	once     sync.Once
}

// NewRateLimitMiddleware yeni rate limit middleware oluşturur ve temizlik goroutine'ini başlatır
func NewRateLimitMiddleware(config *RateLimitConfig) *RateLimitMiddleware {
	if config == nil {
		config = DefaultRateLimitConfig()
	}
	if config.IdleTTL <= 0 {
		config.IdleTTL = 30 * time.Minute
	}

	rlm := &RateLimitMiddleware{
		config:   config,
		limiters: make(map[limiterKey]*clientLimiter),
		stop:     make(chan struct{}),
	}
	go rlm.cleanupLimiters()

	return rlm
}

// Handler rate limiting middleware handler döner
func (rlm *RateLimitMiddleware) Handler() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if contains(rlm.config.SkipPaths, r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			key := limiterKey{ip: utils.GetClientIP(r), bucket: bucketFor(r)}
			cl := rlm.limiterFor(key, time.Now())

			allowed := cl.limiter.Allow()
			remaining := int(cl.limiter.Tokens())
			if remaining < 0 {
				remaining = 0
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(cl.perMin))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))

			if !allowed {
				retryAfter := retryAfterSeconds(cl.perMin)
				w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
				log.Warn().
					Str("client_ip", key.ip).
					Str("bucket", string(key.bucket)).
					Str("path", r.URL.Path).
					Msg("🚦 Rate limit aşıldı")
				WriteError(w, r, &errors.RateLimitError{
					Message:    "Too many requests. Please try again later.",
					RetryAfter: retryAfter,
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// bucketFor bakiye değiştiren istekler write kovasına düşer
func bucketFor(r *http.Request) bucket {
	switch r.Method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return bucketWrite
	default:
		return bucketRead
	}
}

func (rlm *RateLimitMiddleware) limiterFor(key limiterKey, now time.Time) *clientLimiter {
	rlm.mutex.Lock()
	defer rlm.mutex.Unlock()

	cl, ok := rlm.limiters[key]
	if !ok {
		perMin, burst := rlm.budget(key.bucket)
		cl = &clientLimiter{
			limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMin)), burst),
			perMin:  perMin,
		}
		rlm.limiters[key] = cl
	}
	cl.lastSeen = now
	return cl
}

func (rlm *RateLimitMiddleware) budget(b bucket) (perMin, burst int) {
	perMin, burst = rlm.config.RequestsPerMinute, rlm.config.Burst
	if b == bucketWrite {
		if rlm.config.WriteRequestsPerMinute > 0 {
			perMin = rlm.config.WriteRequestsPerMinute
		}
		if rlm.config.WriteBurst > 0 {
			burst = rlm.config.WriteBurst
		}
	}
	if perMin <= 0 {
		perMin = 1
	}
	if burst <= 0 {
		burst = 1
	}
	return perMin, burst
}

// retryAfterSeconds bir token'ın dolma süresi, en az 1 saniye
func retryAfterSeconds(perMin int) int {
	secs := 60 / perMin
	if secs < 1 {
		return 1
	}
	return secs
}

func (rlm *RateLimitMiddleware) cleanupLimiters() {
	ticker := time.NewTicker(rlm.config.IdleTTL / 3)
	defer ticker.Stop()

	for {
		select {
		case <-rlm.stop:
			return
		case now := <-ticker.C:
			rlm.evictIdle(now)
		}
	}
}

// evictIdle IdleTTL boyunca görülmeyen istemcileri siler
func (rlm *RateLimitMiddleware) evictIdle(now time.Time) {
	rlm.mutex.Lock()
	defer rlm.mutex.Unlock()

	for key, cl := range rlm.limiters {
		if now.Sub(cl.lastSeen) > rlm.config.IdleTTL {
			delete(rlm.limiters, key)
		}
	}
	log.Debug().Int("active_limiters", len(rlm.limiters)).Msg("Rate limiter cleanup completed")
}

// Stop temizlik goroutine'ini durdurur
func (rlm *RateLimitMiddleware) Stop() {
	rlm.once.Do(func() { close(rlm.stop) })
}
