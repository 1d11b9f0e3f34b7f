package middleware

import (
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"github.com/gestaozabele/ouvidoria/internal/session"
)

const limiterIdle = 10 * time.Minute

// RateLimiter mantém um limiter por chave; chaves ociosas expiram sozinhas.
type RateLimiter struct {
	limit   rate.Limit
	burst   int
	entries *cache.Cache
}

// NewRateLimiter cria o limitador com taxa por segundo e rajada.
func NewRateLimiter(reqPerSec float64, burst int) *RateLimiter {
	return &RateLimiter{
		limit:   rate.Limit(reqPerSec),
		burst:   burst,
		entries: cache.New(limiterIdle, limiterIdle),
	}
}

// Allow consome um token da chave.
func (r *RateLimiter) Allow(key string) bool {
	if v, ok := r.entries.Get(key); ok {
		r.entries.Set(key, v, cache.DefaultExpiration)
		return v.(*rate.Limiter).Allow()
	}
	lim := rate.NewLimiter(r.limit, r.burst)
	if err := r.entries.Add(key, lim, cache.DefaultExpiration); err != nil {
		if v, ok := r.entries.Get(key); ok {
			lim = v.(*rate.Limiter)
		}
	}
	return lim.Allow()
}

// LimitByKey aplica o limite pela chave extraída da requisição.
func (r *RateLimiter) LimitByKey(next http.Handler, keyFunc func(*http.Request) (string, bool)) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		key, ok := keyFunc(req)
		if !ok || key == "" {
			next.ServeHTTP(w, req)
			return
		}
		if !r.Allow(key) {
			w.Header().Set("Retry-After", "1")
			http.Error(w, "Muitas requisições. Aguarde alguns instantes.", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, req)
	})
}

// IPRateLimit usa o IP do cliente como chave.
func IPRateLimit(limiter *RateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return limiter.LimitByKey(next, func(r *http.Request) (string, bool) {
			return clientIP(r), true
		})
	}
}

// SessionRateLimit usa a sessão logada como chave.
func SessionRateLimit(limiter *RateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return limiter.LimitByKey(next, func(r *http.Request) (string, bool) {
			ident, ok := session.FromContext(r.Context())
			if !ok {
				return "", false
			}
			return ident.SessionID, true
		})
	}
}

func clientIP(r *http.Request) string {
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Forwarded-For")); ip != "" {
		parts := strings.Split(ip, ",")
		return strings.TrimSpace(parts[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
