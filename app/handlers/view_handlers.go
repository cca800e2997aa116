package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/Rakhulsr/go-tours/app/apperrors"
	"github.com/Rakhulsr/go-tours/app/auth"
	"github.com/Rakhulsr/go-tours/app/helpers"
	"github.com/Rakhulsr/go-tours/app/models"
	"github.com/Rakhulsr/go-tours/app/repositories"
	"github.com/Rakhulsr/go-tours/app/utils/sessions"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
	"github.com/unrolled/render"
)

type TourViews interface {
	Lister[models.Tour]
	FindBySlug(ctx context.Context, slug string) (*models.Tour, error)
}

type ViewHandler struct {
	render       *render.Render
	tours        TourViews
	users        UserService
	bookings     BookingService
	tokens       *auth.TokenService
	sessionStore sessions.SessionStore
}

func NewViewHandler(
	r *render.Render,
	tours TourViews,
	users UserService,
	bookings BookingService,
	tokens *auth.TokenService,
	sessionStore sessions.SessionStore,
) *ViewHandler {
	return &ViewHandler{
		render:       r,
		tours:        tours,
		users:        users,
		bookings:     bookings,
		tokens:       tokens,
		sessionStore: sessionStore,
	}
}

func (h *ViewHandler) Overview(w http.ResponseWriter, r *http.Request) {
	tours, err := h.tours.FindAll(r.Context(), repositories.Query{Sort: []string{"createdAt"}})
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	data := helpers.GetBaseData(r, map[string]interface{}{
		"Title": "All Tours",
		"Tours": tours,
	})
	_ = h.render.HTML(w, http.StatusOK, "overview", data)
}

func (h *ViewHandler) Tour(w http.ResponseWriter, r *http.Request) {
	tour, err := h.tours.FindBySlug(r.Context(), mux.Vars(r)["slug"])
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	data := helpers.GetBaseData(r, map[string]interface{}{
		"Title": tour.Name + " Tour",
		"Tour":  tour,
	})
	_ = h.render.HTML(w, http.StatusOK, "tour", data)
}

func (h *ViewHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	if helpers.CurrentUser(r) != nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	data := helpers.GetBaseData(r, map[string]interface{}{
		"Title":      "Log into your account",
		"IsAuthPage": true,
	})
	_ = h.render.HTML(w, http.StatusOK, "auth/login", data)
}

func (h *ViewHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.redirectToLogin(w, r, "could not read the login form")
		return
	}

	user, err := h.users.Login(r.Context(), r.FormValue("email"), r.FormValue("password"))
	if err != nil {
		if apperrors.IsOperational(err) {
			h.redirectToLogin(w, r, err.Error())
			return
		}
		h.renderError(w, r, err)
		return
	}

	token, err := h.tokens.Issue(user.ID)
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	if err := h.sessionStore.SetToken(w, r, token, h.tokens.TTL()); err != nil {
		log.Error().Err(err).Str("user_id", user.ID).Msg("failed to save session")
		h.redirectToLogin(w, r, "could not create a login session")
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *ViewHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessionStore.ClearSession(w, r); err != nil {
		log.Warn().Err(err).Msg("failed to clear session")
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *ViewHandler) Account(w http.ResponseWriter, r *http.Request) {
	if helpers.CurrentUser(r) == nil {
		h.redirectToLogin(w, r, "please log in to see your account")
		return
	}
	_ = h.render.HTML(w, http.StatusOK, "account", helpers.GetBaseData(r, map[string]interface{}{
		"Title": "Your account",
	}))
}

func (h *ViewHandler) MyTours(w http.ResponseWriter, r *http.Request) {
	user := helpers.CurrentUser(r)
	if user == nil {
		h.redirectToLogin(w, r, "please log in to see your bookings")
		return
	}

	bookings, err := h.bookings.MyBookings(r.Context(), user.ID)
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	_ = h.render.HTML(w, http.StatusOK, "my_tours", helpers.GetBaseData(r, map[string]interface{}{
		"Title":    "My Tours",
		"Bookings": bookings,
	}))
}

func (h *ViewHandler) redirectToLogin(w http.ResponseWriter, r *http.Request, message string) {
	http.Redirect(w, r, "/auth/login?status=error&message="+url.QueryEscape(message), http.StatusSeeOther)
}

// renderError is the view counterpart of respondError.
func (h *ViewHandler) renderError(w http.ResponseWriter, r *http.Request, err error) {
	code := apperrors.StatusCode(err)
	message := err.Error()
	if code >= http.StatusInternalServerError {
		log.Error().Err(err).Str("path", r.URL.Path).Msg("page failed")
		message = "please try again later."
	}
	if nf := (*apperrors.NotFoundError)(nil); errors.As(err, &nf) && nf.Resource == "tour" {
		message = "there is no tour with that name."
	}

	_ = h.render.HTML(w, code, "error", helpers.GetBaseData(r, map[string]interface{}{
		"Title":        "Something went wrong!",
		"ErrorMessage": message,
	}))
}
