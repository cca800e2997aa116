package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/Rakhulsr/go-tours/app/apperrors"
	"github.com/rs/zerolog/log"
	"github.com/unrolled/render"
)

const (
	statusSuccess   = "success"
	internalMessage = "something went wrong"
	maxBodyBytes    = 1 << 20
)

type envelope map[string]interface{}

func writeDocument(rnd *render.Render, w http.ResponseWriter, status int, doc interface{}) {
	_ = rnd.JSON(w, status, envelope{
		"status": statusSuccess,
		"data":   envelope{"document": doc},
	})
}

func writeDocuments(rnd *render.Render, w http.ResponseWriter, docs interface{}, count int) {
	_ = rnd.JSON(w, http.StatusOK, envelope{
		"status":  statusSuccess,
		"results": count,
		"data":    envelope{"documents": docs},
	})
}

// respondError is the single place API errors become responses. Client errors carry their
// own message; anything else is logged and hidden behind a generic one.
func respondError(rnd *render.Render, w http.ResponseWriter, r *http.Request, err error) {
	code := apperrors.StatusCode(err)
	if code >= http.StatusInternalServerError {
		log.Error().Err(err).Str("method", r.Method).Str("path", r.URL.Path).Msg("request failed")
		_ = rnd.JSON(w, code, envelope{"status": apperrors.Status(code), "message": internalMessage})
		return
	}

	body := envelope{"status": apperrors.Status(code), "message": err.Error()}
	var verr *apperrors.ValidationError
	if errors.As(err, &verr) {
		body["errors"] = verr.FieldMessages()
	}
	_ = rnd.JSON(w, code, body)
}

// ErrorResponder adapts respondError for the middlewares.
func ErrorResponder(rnd *render.Render) func(w http.ResponseWriter, r *http.Request, err error) {
	return func(w http.ResponseWriter, r *http.Request, err error) {
		respondError(rnd, w, r, err)
	}
}

// NotFound answers unmatched API routes.
func NotFound(rnd *render.Render) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_ = rnd.JSON(w, http.StatusNotFound, envelope{
			"status":  apperrors.Status(http.StatusNotFound),
			"message": fmt.Sprintf("can't find %s on this server", r.URL.Path),
		})
	}
}

// decodeJSON reads a JSON body into dst; malformed input is a client error.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return &apperrors.BadRequestError{Message: "request body must not be empty"}
		}
		var verr *apperrors.ValidationError
		if errors.As(err, &verr) {
			return verr
		}
		return &apperrors.BadRequestError{Message: "invalid JSON body: " + err.Error()}
	}
	return nil
}
