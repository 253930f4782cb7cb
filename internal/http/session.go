package httpapi

import (
	"context"
	"net/http"
	"time"

	"stroke-warning-system/internal/service"

	"go.uber.org/zap"
)

// SessionManager moves session tokens between the cookie and the
// SessionService, and guards routes by role.
type SessionManager struct {
	sessions     service.SessionService
	cookieName   string
	cookieSecure bool
	logger       *zap.Logger
}

func NewSessionManager(sessions service.SessionService, cookieName string, cookieSecure bool, logger *zap.Logger) *SessionManager {
	return &SessionManager{
		sessions:     sessions,
		cookieName:   cookieName,
		cookieSecure: cookieSecure,
		logger:       logger,
	}
}

func (m *SessionManager) setCookie(w http.ResponseWriter, token string, expiresAt time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   m.cookieSecure,
		Expires:  expiresAt,
	})
}

func (m *SessionManager) clearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   m.cookieSecure,
		MaxAge:   -1,
	})
}

func (m *SessionManager) token(r *http.Request) string {
	c, err := r.Cookie(m.cookieName)
	if err != nil {
		return ""
	}
	return c.Value
}

// current returns the verified session, or nil when there is none.
func (m *SessionManager) current(r *http.Request) *service.SessionClaims {
	tok := m.token(r)
	if tok == "" {
		return nil
	}
	claims, err := m.sessions.Verify(r.Context(), tok)
	if err != nil {
		m.logger.Debug("Session rejected",
			zap.String("path", r.URL.Path),
			zap.String("request_id", RequestIDFromContext(r.Context())),
			zap.Error(err),
		)
		return nil
	}
	return claims
}

// RequirePage redirects to the login page unless the session has role.
func (m *SessionManager) RequirePage(role string) func(http.Handler) http.Handler {
	return m.require(role, func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
	})
}

// RequireAPI answers 401 JSON unless the session has role.
func (m *SessionManager) RequireAPI(role string) func(http.Handler) http.Handler {
	return m.require(role, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, Unauthorized("Unauthorized"))
	})
}

func (m *SessionManager) require(role string, deny http.HandlerFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := m.current(r)
			if claims == nil || claims.Role != role {
				deny(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), claimsKey, claims)))
		})
	}
}

// ClaimsFromContext is set by RequirePage/RequireAPI.
func ClaimsFromContext(ctx context.Context) *service.SessionClaims {
	c, _ := ctx.Value(claimsKey).(*service.SessionClaims)
	return c
}

func usernameFrom(ctx context.Context) string {
	if c := ClaimsFromContext(ctx); c != nil {
		return c.Username
	}
	return ""
}
