package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/safebox/gallery/internal/domain"
)

type contextKey string

const adminKey contextKey = "auth_admin"

// LoginPath is where browser clients are sent when a page request lacks a
// valid session.
const LoginPath = "/admin/login"

// IdentityResolver resolves a verified token subject against the credential
// store. Implemented by service.AuthService.
type IdentityResolver interface {
	ResolveIdentity(ctx context.Context, email string) (*domain.Admin, error)
}

// AdminFromContext extracts the authenticated admin from request context.
func AdminFromContext(ctx context.Context) *domain.Admin {
	admin, _ := ctx.Value(adminKey).(*domain.Admin)
	return admin
}

// Authenticate returns middleware that validates the session token and
// resolves the admin identity once per request, threading it through the
// request context. Missing, malformed and expired tokens are all treated
// as not authenticated: browser page requests get a 303 redirect to the
// login page, programmatic callers a structured 401.
func Authenticate(mgr *SessionManager, resolver IdentityResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			admin, err := authenticate(r, mgr, resolver)
			if err != nil {
				unauthorized(w, r, err)
				return
			}

			ctx := context.WithValue(r.Context(), adminKey, admin)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func authenticate(r *http.Request, mgr *SessionManager, resolver IdentityResolver) (*domain.Admin, error) {
	token, ok := TokenFromRequest(r)
	if !ok {
		return nil, domain.ErrUnauthorized("not authenticated")
	}

	claims, err := mgr.VerifyToken(token)
	if err != nil {
		return nil, err
	}

	admin, err := resolver.ResolveIdentity(r.Context(), claims.Subject)
	if err != nil {
		return nil, err
	}
	return admin, nil
}

func unauthorized(w http.ResponseWriter, r *http.Request, err error) {
	if prefersHTML(r) {
		http.Redirect(w, r, LoginPath, http.StatusSeeOther)
		return
	}

	code := "UNAUTHORIZED"
	if appErr, ok := err.(*domain.AppError); ok {
		code = appErr.Code
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"code":"` + code + `","message":"not authenticated"}`))
}

func prefersHTML(r *http.Request) bool {
	accept := r.Header.Get("Accept")
	return strings.Contains(accept, "text/html")
}
