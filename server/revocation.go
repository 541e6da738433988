package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// revocationList tracks token ids the backend has accepted so they can all be revoked at
// once. Entries are dropped when the token would have expired anyway.
type revocationList struct {
	mu        sync.RWMutex
	seen      map[string]time.Time
	revoked   map[string]time.Time
	lastSweep time.Time
	nowFunc   func() time.Time
}

const sweepInterval = time.Minute

func newRevocationList() *revocationList {
	return &revocationList{
		seen:    make(map[string]time.Time),
		revoked: make(map[string]time.Time),
		nowFunc: time.Now,
	}
}

// Seen records an accepted token. Expired entries are swept at most once per sweepInterval.
func (l *revocationList) Seen(jti string, exp time.Time) {
	if jti == "" {
		return
	}
	l.mu.RLock()
	_, known := l.seen[jti]
	l.mu.RUnlock()
	if known {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.seen[jti] = exp
	if now := l.nowFunc(); now.Sub(l.lastSweep) >= sweepInterval {
		l.cleanupLocked()
	}
}

func (l *revocationList) IsRevoked(jti string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, exists := l.revoked[jti]
	return exists
}

// RevokeAll revokes every token seen so far and returns how many were revoked
func (l *revocationList) RevokeAll() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := len(l.seen)
	for jti, exp := range l.seen {
		l.revoked[jti] = exp
	}
	l.seen = make(map[string]time.Time)
	l.cleanupLocked()
	return n
}

func (l *revocationList) cleanupLocked() {
	now := l.nowFunc()
	l.lastSweep = now
	for _, entries := range []map[string]time.Time{l.seen, l.revoked} {
		for jti, exp := range entries {
			if now.After(exp) {
				delete(entries, jti)
			}
		}
	}
}

// RevokeTokensHandler invalidates every token the backend has accepted so far, forcing clients
// to refresh
func (s *Server) RevokeTokensHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n := s.revoked.RevokeAll()
		s.metrics.revoked.Add(float64(n))
		log.Info().Int("revoked", n).Msg("Revoked tokens")
		writeJSON(w, http.StatusOK, map[string]int{"revoked": n})
	}
}
