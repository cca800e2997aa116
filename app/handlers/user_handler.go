package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/Rakhulsr/go-tours/app/apperrors"
	"github.com/Rakhulsr/go-tours/app/helpers"
	"github.com/Rakhulsr/go-tours/app/models"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
	"github.com/unrolled/render"
)

type UserHandler struct {
	render *render.Render
	users  UserService
}

func NewUserHandler(r *render.Render, users UserService) *UserHandler {
	return &UserHandler{render: r, users: users}
}

func (h *UserHandler) GetAllUsers() http.HandlerFunc {
	return GetAll[models.User](h.render, h.users)
}

func (h *UserHandler) GetUser() http.HandlerFunc {
	return GetOne[models.User](h.render, h.users)
}

func (h *UserHandler) CreateUser() http.HandlerFunc {
	return CreateOne[models.User, models.UserInput](h.render, h.users)
}

func (h *UserHandler) UpdateUser() http.HandlerFunc {
	return UpdateOne[models.User](h.render, h.users)
}

func (h *UserHandler) DeleteUser() http.HandlerFunc {
	return DeleteOne(h.render, h.users)
}

// GetMe serves the current user through the regular get-one handler.
func (h *UserHandler) GetMe() http.HandlerFunc {
	getOne := h.GetUser()
	return func(w http.ResponseWriter, r *http.Request) {
		user := helpers.CurrentUser(r)
		if user == nil {
			respondError(h.render, w, r, apperrors.ErrNotLoggedIn)
			return
		}
		getOne(w, mux.SetURLVars(r, map[string]string{"id": user.ID}))
	}
}

func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	user := helpers.CurrentUser(r)
	if user == nil {
		respondError(h.render, w, r, apperrors.ErrNotLoggedIn)
		return
	}

	patch := map[string]any{}
	if err := decodeJSON(w, r, &patch); err != nil {
		respondError(h.render, w, r, err)
		return
	}

	updated, err := h.users.UpdateMe(r.Context(), user.ID, patch)
	if err != nil {
		respondError(h.render, w, r, err)
		return
	}
	_ = h.render.JSON(w, http.StatusOK, envelope{
		"status": statusSuccess,
		"data":   envelope{"user": updated},
	})
}

func (h *UserHandler) DeleteMe(w http.ResponseWriter, r *http.Request) {
	user := helpers.CurrentUser(r)
	if user == nil {
		respondError(h.render, w, r, apperrors.ErrNotLoggedIn)
		return
	}

	if err := h.users.Deactivate(r.Context(), user.ID); err != nil {
		respondError(h.render, w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UpdateMyPhoto accepts a multipart upload in the "photo" field.
func (h *UserHandler) UpdateMyPhoto(w http.ResponseWriter, r *http.Request) {
	user := helpers.CurrentUser(r)
	if user == nil {
		respondError(h.render, w, r, apperrors.ErrNotLoggedIn)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxPhotoBytes)
	if err := r.ParseMultipartForm(maxPhotoBytes); err != nil {
		respondError(h.render, w, r, &apperrors.BadRequestError{Message: "photo upload must be a multipart form under 5MB"})
		return
	}
	file, header, err := r.FormFile("photo")
	if err != nil {
		respondError(h.render, w, r, &apperrors.BadRequestError{Message: "please upload a photo"})
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	updated, err := h.users.UpdatePhoto(r.Context(), user.ID, file, header.Size, contentType)
	if err != nil {
		respondError(h.render, w, r, err)
		return
	}
	_ = h.render.JSON(w, http.StatusOK, envelope{
		"status": statusSuccess,
		"data":   envelope{"user": updated},
	})
}

// Photo streams a user photo from object storage.
func (h *UserHandler) Photo(w http.ResponseWriter, r *http.Request) {
	rc, contentType, err := h.users.OpenPhoto(r.Context(), mux.Vars(r)["name"])
	if err != nil {
		var nf *apperrors.NotFoundError
		if errors.As(err, &nf) {
			http.NotFound(w, r)
			return
		}
		log.Error().Err(err).Str("photo", mux.Vars(r)["name"]).Msg("failed to read photo")
		http.Error(w, internalMessage, http.StatusInternalServerError)
		return
	}
	defer rc.Close()

	if contentType != "" {
		w.Header().Set("Content-Type", contentType)
	}
	w.Header().Set("Cache-Control", "public, max-age=86400")
	if _, err := io.Copy(w, rc); err != nil {
		log.Warn().Err(err).Msg("photo stream interrupted")
	}
}
