package httpapi

import (
	"net"
	"net/http"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/time/rate"

	"legalconnect-engine/internal/metrics"
)

const limiterClients = 4096

// IPLimiter rate-limits per client address. The least recently seen
// addresses are evicted once limiterClients is reached.
type IPLimiter struct {
	m *lru.Cache[string, *rate.Limiter]
	r rate.Limit
	b int
}

func NewIPLimiter(reqPerSec float64, burst int) *IPLimiter {
	if burst < 1 {
		burst = 1
	}
	m, _ := lru.New[string, *rate.Limiter](limiterClients)
	return &IPLimiter{
		m: m,
		r: rate.Limit(reqPerSec),
		b: burst,
	}
}

func (l *IPLimiter) limiterFor(ip string) *rate.Limiter {
	if lim, ok := l.m.Get(ip); ok {
		return lim
	}
	lim := rate.NewLimiter(l.r, l.b)
	// Another request may have raced us; keep whichever got there first.
	if prev, ok, _ := l.m.PeekOrAdd(ip, lim); ok {
		return prev
	}
	return lim
}

func (l *IPLimiter) Allow(ip string) bool {
	return l.limiterFor(ip).Allow()
}

// Wrap rejects requests over the limit with 429. A nil limiter passes
// everything through.
func (l *IPLimiter) Wrap(next http.HandlerFunc) http.HandlerFunc {
	if l == nil {
		return next
	}
	return func(w http.ResponseWriter, r *http.Request) {
		if !l.Allow(clientIP(r)) {
			metrics.RecordAuthFailure("rate_limited")
			w.Header().Set("Retry-After", "1")
			WriteError(w, r, http.StatusTooManyRequests, "rate_limited", "too many requests, try again shortly")
			return
		}
		next(w, r)
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return strings.TrimSpace(host)
}

func isLoopback(r *http.Request) bool {
	host := clientIP(r)
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
