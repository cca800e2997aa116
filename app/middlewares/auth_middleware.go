package middlewares

import (
	"context"
	"net/http"

	"github.com/Rakhulsr/go-tours/app/apperrors"
	"github.com/Rakhulsr/go-tours/app/auth"
	"github.com/Rakhulsr/go-tours/app/helpers"
	"github.com/Rakhulsr/go-tours/app/models"
	"github.com/Rakhulsr/go-tours/app/utils/sessions"
	"github.com/rs/zerolog/log"
)

// Authenticator resolves the user behind a verified token.
type Authenticator interface {
	Authenticate(ctx context.Context, userID string, issuedAt int64) (*models.User, error)
}

// ErrorResponder writes an error response for a rejected request.
type ErrorResponder func(w http.ResponseWriter, r *http.Request, err error)

type AuthMiddleware struct {
	tokens   *auth.TokenService
	users    Authenticator
	sessions sessions.SessionStore
	respond  ErrorResponder
}

func NewAuthMiddleware(tokens *auth.TokenService, users Authenticator, store sessions.SessionStore, respond ErrorResponder) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, users: users, sessions: store, respond: respond}
}

// token prefers the Authorization header and falls back to the session cookie.
func (m *AuthMiddleware) token(r *http.Request) string {
	if t := auth.BearerToken(r.Header.Get("Authorization")); t != "" {
		return t
	}
	return m.sessions.GetToken(r)
}

func (m *AuthMiddleware) resolve(r *http.Request) (*models.User, error) {
	raw := m.token(r)
	if raw == "" {
		return nil, apperrors.ErrNotLoggedIn
	}

	claims, err := m.tokens.Parse(raw)
	if err != nil {
		return nil, &apperrors.AuthenticationError{Message: "invalid or expired token. please log in again"}
	}
	return m.users.Authenticate(r.Context(), claims.UserID, claims.IssuedAtUnix())
}

// RequireLogin rejects the request unless it carries a valid token of an active user whose
// password has not changed since the token was issued.
func (m *AuthMiddleware) RequireLogin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := m.resolve(r)
		if err != nil {
			m.respond(w, r, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(helpers.WithUser(r.Context(), user)))
	})
}

// IsLoggedIn attaches the user when the session is valid and never rejects the request.
func (m *AuthMiddleware) IsLoggedIn(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.sessions.GetToken(r) == "" {
			next.ServeHTTP(w, r)
			return
		}

		user, err := m.resolve(r)
		if err != nil {
			log.Debug().Err(err).Msg("ignoring invalid session")
			next.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r.WithContext(helpers.WithUser(r.Context(), user)))
	})
}

// RestrictTo must run after RequireLogin.
func (m *AuthMiddleware) RestrictTo(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := helpers.CurrentUser(r)
			if user == nil {
				m.respond(w, r, apperrors.ErrNotLoggedIn)
				return
			}
			if !user.HasRole(roles...) {
				log.Warn().Str("user_id", user.ID).Str("role", user.Role).Str("path", r.URL.Path).Msg("role not permitted")
				m.respond(w, r, apperrors.ErrPermissionDenied)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
