package session

import (
	"context"
	"net/http"
	"time"

	"flashq/internal/store"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const DefaultCookieName = "flashq_session"

type handleKey struct{}

// FromContext returns the session handle attached by Manager.Middleware.
func FromContext(ctx context.Context) (*Handle, bool) {
	h, ok := ctx.Value(handleKey{}).(*Handle)
	return h, ok
}

// WithHandle attaches h to ctx.
func WithHandle(ctx context.Context, h *Handle) context.Context {
	return context.WithValue(ctx, handleKey{}, h)
}

// Manager issues session cookies and binds them to a store.
type Manager struct {
	store      store.Store
	logger     *zap.Logger
	cookieName string
	ttl        time.Duration
}

func NewManager(st store.Store, cookieName string, ttl time.Duration, logger *zap.Logger) *Manager {
	if cookieName == "" {
		cookieName = DefaultCookieName
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		store:      st,
		logger:     logger,
		cookieName: cookieName,
		ttl:        ttl,
	}
}

// Middleware makes sure every request carries a session id and attaches a
// Handle for it to the request context.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := m.sessionID(r)
		if id == "" {
			id = uuid.NewString()
			m.setCookie(w, id)
		}

		h := NewHandle(r.Context(), m.store, id, m.logger)
		next.ServeHTTP(w, r.WithContext(WithHandle(r.Context(), h)))
	})
}

func (m *Manager) sessionID(r *http.Request) string {
	c, err := r.Cookie(m.cookieName)
	if err != nil {
		return ""
	}
	if _, err := uuid.Parse(c.Value); err != nil {
		m.logger.Debug("Ignoring malformed session cookie", zap.Error(err))
		return ""
	}
	return c.Value
}

func (m *Manager) setCookie(w http.ResponseWriter, id string) {
	c := &http.Cookie{
		Name:     m.cookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	if m.ttl > 0 {
		c.MaxAge = int(m.ttl.Seconds())
	}
	http.SetCookie(w, c)
}
