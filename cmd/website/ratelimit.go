package main

import (
	"context"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/adampresley/adamgokit/httphelpers"
	"golang.org/x/time/rate"
)

type ipRateLimiter struct {
	mu                sync.Mutex
	limiters          map[string]*limiterInfo
	requestsPerMinute int
	burst             int
	idleTimeout       time.Duration
	now               func() time.Time
	trustProxyHeaders bool
}

type limiterInfo struct {
	limiter      *rate.Limiter
	lastAccessed time.Time
}

/*
newIPRateLimiter creates a per-address limiter. Proxy headers are only
read when trustProxyHeaders is set, since any client can send them.
*/
func newIPRateLimiter(requestsPerMinute, burst int, trustProxyHeaders bool) *ipRateLimiter {
	if requestsPerMinute <= 0 {
		requestsPerMinute = 10
	}

	if burst <= 0 {
		burst = 1
	}

	return &ipRateLimiter{
		limiters:          map[string]*limiterInfo{},
		requestsPerMinute: requestsPerMinute,
		burst:             burst,
		idleTimeout:       10 * time.Minute,
		now:               time.Now,
		trustProxyHeaders: trustProxyHeaders,
	}
}

func (l *ipRateLimiter) getLimiter(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	info, ok := l.limiters[ip]

	if !ok {
		info = &limiterInfo{
			limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(l.requestsPerMinute)), l.burst),
		}

		l.limiters[ip] = info
	}

	info.lastAccessed = l.now()
	return info.limiter
}

func (l *ipRateLimiter) cleanup() {
	l.mu.Lock()
	defer l.mu.Unlock()

	for ip, info := range l.limiters {
		if l.now().Sub(info.lastAccessed) > l.idleTimeout {
			delete(l.limiters, ip)
		}
	}
}

/*
startCleanup drops limiters of idle addresses until ctx is done.
*/
func (l *ipRateLimiter) startCleanup(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return

			case <-ticker.C:
				l.cleanup()
			}
		}
	}()
}

/*
middleware only limits form posts. Page views pass through.
*/
func (l *ipRateLimiter) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			next.ServeHTTP(w, r)
			return
		}

		if !l.getLimiter(clientIP(r, l.trustProxyHeaders)).Allow() {
			httphelpers.WriteText(w, http.StatusTooManyRequests, "Too many attempts. Please wait a minute and try again.")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func clientIP(r *http.Request, trustProxyHeaders bool) string {
	if trustProxyHeaders {
		if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
			return ip
		}

		if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
			first, _, _ := strings.Cut(forwarded, ",")
			return strings.TrimSpace(first)
		}
	}

	if ip, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return ip
	}

	return r.RemoteAddr
}
