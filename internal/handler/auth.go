package handler

import (
	"net/http"

	"github.com/safebox/gallery/internal/auth"
	"github.com/safebox/gallery/internal/service"
)

// AuthHandler handles admin login, logout and account endpoints.
type AuthHandler struct {
	authSvc  *service.AuthService
	sessions *auth.SessionManager
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authSvc *service.AuthService, sessions *auth.SessionManager) *AuthHandler {
	return &AuthHandler{authSvc: authSvc, sessions: sessions}
}

// Login handles POST /api/auth/login. On success the session token is set
// as an HTTP-only cookie.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input service.LoginInput
	if err := DecodeJSON(r, &input); err != nil {
		RespondJSON(w, http.StatusBadRequest, map[string]string{
			"code":    "VALIDATION_ERROR",
			"message": "invalid request body",
		})
		return
	}

	result, err := h.authSvc.Login(r.Context(), input)
	if err != nil {
		RespondError(w, err)
		return
	}

	auth.SetSessionCookie(w, result.Token, h.sessions.Expiry())
	RespondJSON(w, http.StatusOK, map[string]string{
		"message":  "login successful",
		"redirect": "/admin/dashboard",
	})
}

// Logout handles POST /api/auth/logout. Logout is advisory: it clears the
// cookie, the token itself stays valid until expiry.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	auth.ClearSessionCookie(w)
	RespondJSON(w, http.StatusOK, map[string]string{
		"message":  "logged out",
		"redirect": auth.LoginPath,
	})
}

// Me handles GET /api/auth/me.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	admin := auth.AdminFromContext(r.Context())
	if admin == nil {
		RespondJSON(w, http.StatusUnauthorized, map[string]string{
			"code":    "UNAUTHORIZED",
			"message": "not authenticated",
		})
		return
	}
	RespondJSON(w, http.StatusOK, admin)
}

// Check handles GET /api/auth/check. Unlike the authenticated routes it
// never errors; the login page uses it for redirect logic.
func (h *AuthHandler) Check(w http.ResponseWriter, r *http.Request) {
	token, ok := auth.TokenFromRequest(r)
	if !ok {
		RespondJSON(w, http.StatusOK, map[string]any{"authenticated": false})
		return
	}

	claims, err := h.sessions.VerifyToken(token)
	if err != nil {
		RespondJSON(w, http.StatusOK, map[string]any{"authenticated": false})
		return
	}

	admin, err := h.authSvc.ResolveIdentity(r.Context(), claims.Subject)
	if err != nil {
		RespondJSON(w, http.StatusOK, map[string]any{"authenticated": false})
		return
	}

	RespondJSON(w, http.StatusOK, map[string]any{
		"authenticated": true,
		"name":          admin.DisplayName,
	})
}

// UpdateProfile handles PUT /api/auth/profile.
func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	admin := auth.AdminFromContext(r.Context())

	var input service.ProfileUpdateInput
	if err := DecodeJSON(r, &input); err != nil {
		RespondJSON(w, http.StatusBadRequest, map[string]string{
			"code":    "VALIDATION_ERROR",
			"message": "invalid request body",
		})
		return
	}

	updated, err := h.authSvc.UpdateProfile(r.Context(), admin.ID, input)
	if err != nil {
		RespondError(w, err)
		return
	}

	RespondJSON(w, http.StatusOK, updated)
}

// ChangePassword handles PUT /api/auth/password.
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	admin := auth.AdminFromContext(r.Context())

	var input service.PasswordChangeInput
	if err := DecodeJSON(r, &input); err != nil {
		RespondJSON(w, http.StatusBadRequest, map[string]string{
			"code":    "VALIDATION_ERROR",
			"message": "invalid request body",
		})
		return
	}

	if err := h.authSvc.ChangePassword(r.Context(), admin.ID, input); err != nil {
		RespondError(w, err)
		return
	}

	RespondJSON(w, http.StatusOK, map[string]string{"message": "password updated"})
}
