package httpapi

import (
	"errors"
	"net/http"

	"stroke-warning-system/internal/service"

	"go.uber.org/zap"
)

// AuthHandler serves the login form and logout.
type AuthHandler struct {
	authService service.AuthService
	sessions    *SessionManager
	tokens      service.SessionService
	logger      *zap.Logger
}

func NewAuthHandler(authService service.AuthService, tokens service.SessionService, sessions *SessionManager, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		sessions:    sessions,
		tokens:      tokens,
		logger:      logger,
	}
}

type loginPage struct {
	Username string
	Error    string
}

// LoginPage sends a signed-in user straight to their dashboard.
func (h *AuthHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	if claims := h.sessions.current(r); claims != nil {
		http.Redirect(w, r, service.HomePath(claims.Role), http.StatusSeeOther)
		return
	}
	renderPage(w, h.logger, http.StatusOK, "login.html", loginPage{})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := r.ParseForm(); err != nil {
		renderPage(w, h.logger, http.StatusBadRequest, "login.html", loginPage{Error: "Invalid form submission"})
		return
	}

	req := service.LoginRequest{
		Username:  r.PostFormValue("username"),
		Password:  r.PostFormValue("password"),
		IPAddress: r.RemoteAddr,
	}
	resp, err := h.authService.Login(ctx, req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			renderPage(w, h.logger, http.StatusOK, "login.html", loginPage{Username: req.Username, Error: "Invalid credentials"})
			return
		}
		h.logger.Error("Login failed", zap.String("request_id", RequestIDFromContext(ctx)), zap.Error(err))
		renderPage(w, h.logger, http.StatusInternalServerError, "login.html", loginPage{Username: req.Username, Error: "Login failed, please try again"})
		return
	}

	token, expiresAt, err := h.tokens.Issue(ctx, resp)
	if err != nil {
		h.logger.Error("Failed to issue session", zap.String("username", resp.Username), zap.Error(err))
		renderPage(w, h.logger, http.StatusInternalServerError, "login.html", loginPage{Username: req.Username, Error: "Login failed, please try again"})
		return
	}
	h.sessions.setCookie(w, token, expiresAt)
	http.Redirect(w, r, resp.HomePath, http.StatusSeeOther)
}

// Logout always clears the cookie, even when revocation fails.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if tok := h.sessions.token(r); tok != "" {
		if err := h.tokens.Revoke(r.Context(), tok); err != nil {
			h.logger.Warn("Failed to revoke session", zap.Error(err))
		}
	}
	h.sessions.clearCookie(w)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
