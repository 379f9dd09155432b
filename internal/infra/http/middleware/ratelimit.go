package middleware

import (
	"encoding/json"
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// LimiterStore keeps one token bucket per client key and forgets idle ones.
type LimiterStore struct {
	mu      sync.Mutex
	limit   rate.Limit
	burst   int
	clients map[string]*clientEntry
	stopCh  chan struct{}
	once    sync.Once
}

type clientEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewLimiterStore allows perMinute requests per key with the given burst.
func NewLimiterStore(perMinute, burst int, cleanupInterval time.Duration) *LimiterStore {
	if perMinute <= 0 {
		perMinute = 60
	}
	if burst <= 0 {
		burst = perMinute
	}
	s := &LimiterStore{
		limit:   rate.Every(time.Minute / time.Duration(perMinute)),
		burst:   burst,
		clients: map[string]*clientEntry{},
		stopCh:  make(chan struct{}),
	}
	go s.cleanupLoop(cleanupInterval)
	return s
}

func (s *LimiterStore) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			cutoff := time.Now().Add(-10 * time.Minute)
			s.mu.Lock()
			for k, v := range s.clients {
				if v.lastSeen.Before(cutoff) {
					delete(s.clients, k)
				}
			}
			s.mu.Unlock()
		case <-s.stopCh:
			return
		}
	}
}

func (s *LimiterStore) Stop() {
	s.once.Do(func() { close(s.stopCh) })
}

func (s *LimiterStore) Allow(key string) bool {
	s.mu.Lock()
	e, ok := s.clients[key]
	if !ok {
		e = &clientEntry{limiter: rate.NewLimiter(s.limit, s.burst)}
		s.clients[key] = e
	}
	e.lastSeen = time.Now()
	s.mu.Unlock()
	return e.limiter.Allow()
}

// RateLimit rejects requests over the per-IP budget with 429.
func RateLimit(store *LimiterStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !store.Allow(clientIP(r)) {
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("Retry-After", "60")
				w.WriteHeader(http.StatusTooManyRequests)
				_ = json.NewEncoder(w).Encode(map[string]string{
					"error":   "RATE_LIMITED",
					"message": "too many requests, try again later",
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// clientIP relies on chi's RealIP having already rewritten RemoteAddr.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
