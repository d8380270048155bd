// Package session keeps per-visitor state: the last generated report and
// whether the visitor unlocked admin mode. Nothing is shared between
// sessions.
package session

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"kamai/internal/cache"
)

// CookieName is the session id cookie.
const CookieName = "kamai_session"

// State is what one session holds.
type State struct {
	LastReport []byte
	ReportName string
	IsAdmin    bool
}

// HasReport reports whether a report is ready for download.
func (s State) HasReport() bool {
	return len(s.LastReport) > 0
}

// Manager issues session cookies and stores State in a bounded TTL cache.
type Manager struct {
	store  cache.Cache[State]
	ttl    time.Duration
	secure bool
}

// NewManager keeps at most max sessions, each expiring ttl after its last
// use.
func NewManager(max int, ttl time.Duration, secure bool, opts ...cache.Option) (*Manager, *cache.LRUCache[State]) {
	opts = append([]cache.Option{cache.WithSlidingExpiry()}, opts...)
	lru := cache.NewLRUCache[State](max, ttl, opts...)
	return &Manager{store: lru, ttl: ttl, secure: secure}, lru
}

type ctxKey struct{}

// Middleware makes sure every request has a session id. Only ids this
// manager issued and still holds are honoured; anything else, including an
// expired id, gets a fresh cookie.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := ""
		if c, err := r.Cookie(CookieName); err == nil && m.known(c.Value) {
			id = c.Value
		}
		if id == "" {
			id = m.issue(w)
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, id)))
	})
}

func (m *Manager) known(id string) bool {
	if _, err := uuid.Parse(id); err != nil {
		return false
	}
	_, ok := m.store.Get(id)
	return ok
}

// issue registers a new empty session and sets its cookie.
func (m *Manager) issue(w http.ResponseWriter) string {
	id := uuid.NewString()
	m.store.Set(id, State{})
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

// Rotate moves the session's state to a freshly issued id, sets its cookie
// and returns ctx carrying the new id. The old id stops working.
func (m *Manager) Rotate(ctx context.Context, w http.ResponseWriter) context.Context {
	st := m.Get(ctx)
	old := ID(ctx)
	id := m.issue(w)
	m.store.Set(id, st)
	if old != "" {
		m.store.Delete(old)
	}
	return context.WithValue(ctx, ctxKey{}, id)
}

// ID returns the session id placed in ctx by Middleware.
func ID(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

// Get returns the state of the session in ctx; unknown sessions are empty.
func (m *Manager) Get(ctx context.Context) State {
	id := ID(ctx)
	if id == "" {
		return State{}
	}
	s, _ := m.store.Get(id)
	return s
}

// Update applies fn to the session's state atomically.
func (m *Manager) Update(ctx context.Context, fn func(*State)) State {
	id := ID(ctx)
	if id == "" {
		var s State
		fn(&s)
		return s
	}
	return m.store.Update(id, func(cur State, _ bool) State {
		fn(&cur)
		return cur
	})
}

// SetReport replaces the session's last report.
func (m *Manager) SetReport(ctx context.Context, name string, pdf []byte) {
	m.Update(ctx, func(s *State) {
		s.LastReport = pdf
		s.ReportName = name
	})
}

// SetAdmin turns admin mode on or off for the session.
func (m *Manager) SetAdmin(ctx context.Context, on bool) {
	m.Update(ctx, func(s *State) { s.IsAdmin = on })
}

// Destroy forgets the session entirely.
func (m *Manager) Destroy(ctx context.Context) {
	if id := ID(ctx); id != "" {
		m.store.Delete(id)
	}
}

// Count returns the number of live sessions.
func (m *Manager) Count() int {
	return m.store.Size()
}
