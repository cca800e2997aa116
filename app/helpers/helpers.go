package helpers

import (
	"context"
	"net/http"

	"github.com/Rakhulsr/go-tours/app/models"
)

type contextKey string

const (
	ContextKeyUser contextKey = "userObject"
)

// WithUser stores the authenticated user on the request context.
func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, ContextKeyUser, user)
}

// CurrentUser returns the user set by the auth middleware, or nil.
func CurrentUser(r *http.Request) *models.User {
	user, _ := r.Context().Value(ContextKeyUser).(*models.User)
	return user
}
