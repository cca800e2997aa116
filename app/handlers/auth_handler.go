package handlers

import (
	"context"
	"io"
	"net/http"

	"github.com/Rakhulsr/go-tours/app/apperrors"
	"github.com/Rakhulsr/go-tours/app/auth"
	"github.com/Rakhulsr/go-tours/app/helpers"
	"github.com/Rakhulsr/go-tours/app/models"
	"github.com/Rakhulsr/go-tours/app/utils/sessions"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
	"github.com/unrolled/render"
)

const maxPhotoBytes = 5 << 20

// UserService is everything the auth and user routes need from the user service.
type UserService interface {
	Creator[models.User, models.UserInput]
	Updater[models.User]
	Deleter
	Finder[models.User]
	Lister[models.User]
	Signup(ctx context.Context, in *models.UserInput) (*models.User, error)
	Login(ctx context.Context, email, password string) (*models.User, error)
	UpdateMe(ctx context.Context, id string, patch map[string]any) (*models.User, error)
	Deactivate(ctx context.Context, id string) error
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, password, confirm string) (*models.User, error)
	UpdatePassword(ctx context.Context, id, current, password, confirm string) (*models.User, error)
	UpdatePhoto(ctx context.Context, id string, photo io.Reader, size int64, contentType string) (*models.User, error)
	OpenPhoto(ctx context.Context, name string) (io.ReadCloser, string, error)
}

type AuthHandler struct {
	render       *render.Render
	users        UserService
	tokens       *auth.TokenService
	sessionStore sessions.SessionStore
}

func NewAuthHandler(r *render.Render, users UserService, tokens *auth.TokenService, sessionStore sessions.SessionStore) *AuthHandler {
	return &AuthHandler{
		render:       r,
		users:        users,
		tokens:       tokens,
		sessionStore: sessionStore,
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type passwordRequest struct {
	PasswordCurrent string `json:"passwordCurrent"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"passwordConfirm"`
}

// createSendToken issues a session token, stores it in the cookie and returns it with the user.
func (h *AuthHandler) createSendToken(w http.ResponseWriter, r *http.Request, user *models.User, status int) {
	token, err := h.tokens.Issue(user.ID)
	if err != nil {
		respondError(h.render, w, r, err)
		return
	}
	if err := h.sessionStore.SetToken(w, r, token, h.tokens.TTL()); err != nil {
		log.Error().Err(err).Str("user_id", user.ID).Msg("failed to save session")
	}

	_ = h.render.JSON(w, status, envelope{
		"status": statusSuccess,
		"token":  token,
		"data":   envelope{"user": user},
	})
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var in models.UserInput
	if err := decodeJSON(w, r, &in); err != nil {
		respondError(h.render, w, r, err)
		return
	}

	user, err := h.users.Signup(r.Context(), &in)
	if err != nil {
		respondError(h.render, w, r, err)
		return
	}
	h.createSendToken(w, r, user, http.StatusCreated)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(h.render, w, r, err)
		return
	}

	user, err := h.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		respondError(h.render, w, r, err)
		return
	}
	h.createSendToken(w, r, user, http.StatusOK)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessionStore.ClearSession(w, r); err != nil {
		log.Warn().Err(err).Msg("failed to clear session")
	}
	_ = h.render.JSON(w, http.StatusOK, envelope{"status": statusSuccess})
}

func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(h.render, w, r, err)
		return
	}

	if err := h.users.ForgotPassword(r.Context(), req.Email); err != nil {
		respondError(h.render, w, r, err)
		return
	}
	_ = h.render.JSON(w, http.StatusOK, envelope{
		"status":  statusSuccess,
		"message": "token sent to email",
	})
}

func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req passwordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(h.render, w, r, err)
		return
	}

	user, err := h.users.ResetPassword(r.Context(), mux.Vars(r)["token"], req.Password, req.PasswordConfirm)
	if err != nil {
		respondError(h.render, w, r, err)
		return
	}
	h.createSendToken(w, r, user, http.StatusOK)
}

func (h *AuthHandler) UpdateMyPassword(w http.ResponseWriter, r *http.Request) {
	var req passwordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(h.render, w, r, err)
		return
	}

	current := helpers.CurrentUser(r)
	if current == nil {
		respondError(h.render, w, r, apperrors.ErrNotLoggedIn)
		return
	}

	user, err := h.users.UpdatePassword(r.Context(), current.ID, req.PasswordCurrent, req.Password, req.PasswordConfirm)
	if err != nil {
		respondError(h.render, w, r, err)
		return
	}
	h.createSendToken(w, r, user, http.StatusOK)
}
