package middlewarectx

import (
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/render"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/time/rate"

	"github.com/magabrotheeeer/pawlog/internal/http/response"
)

// RateLimiter ограничивает частоту запросов отдельно для каждого пользователя,
// а для анонимных запросов по IP.
type RateLimiter struct {
	rps   rate.Limit
	burst int
	log   *slog.Logger

	// лимитер, к которому не обращались limiterIdle, вытесняется
	mu       sync.Mutex
	limiters *expirable.LRU[string, *rate.Limiter]
}

const (
	maxLimiters = 100000
	limiterIdle = 10 * time.Minute
)

// LimiterOption настраивает RateLimiter.
type LimiterOption func(size *int, idle *time.Duration)

// WithLimiterCapacity задаёт максимальное число лимитеров и срок простоя до вытеснения.
func WithLimiterCapacity(size int, idle time.Duration) LimiterOption {
	return func(s *int, i *time.Duration) {
		*s, *i = size, idle
	}
}

// NewRateLimiter создает RateLimiter.
func NewRateLimiter(rps float64, burst int, log *slog.Logger, opts ...LimiterOption) *RateLimiter {
	size, idle := maxLimiters, limiterIdle
	for _, opt := range opts {
		opt(&size, &idle)
	}
	return &RateLimiter{
		rps:      rate.Limit(rps),
		burst:    burst,
		log:      log,
		limiters: expirable.NewLRU[string, *rate.Limiter](size, nil, idle),
	}
}

func (l *RateLimiter) limiter(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	lim, ok := l.limiters.Get(key)
	if !ok {
		lim = rate.NewLimiter(l.rps, l.burst)
	}
	// повторное добавление продлевает срок жизни
	l.limiters.Add(key, lim)
	return lim
}

// Len число хранимых лимитеров.
func (l *RateLimiter) Len() int {
	return l.limiters.Len()
}

// Middleware отвечает 429, когда лимит исчерпан.
func (l *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key, ok := UserIDFromContext(r.Context())
		if !ok {
			key = clientIP(r)
		}
		if !l.limiter(key).Allow() {
			l.log.Warn("too many requests", slog.String("key", key))
			render.Status(r, http.StatusTooManyRequests)
			render.JSON(w, r, response.Error("too many requests"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
