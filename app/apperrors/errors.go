package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

type FieldError struct {
	Field   string
	Message string
}

// ValidationError is returned when one or more field rules fail on a candidate record.
type ValidationError struct {
	Fields []FieldError
}

func NewValidationError(fields ...FieldError) *ValidationError {
	return &ValidationError{Fields: fields}
}

func (e *ValidationError) Add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Message)
	}
	return "invalid input data. " + strings.Join(msgs, ". ")
}

// FieldMessages flattens the field errors into a field -> message map.
func (e *ValidationError) FieldMessages() map[string]string {
	out := make(map[string]string, len(e.Fields))
	for _, f := range e.Fields {
		if _, exists := out[f.Field]; !exists {
			out[f.Field] = f.Message
		}
	}
	return out
}

type NotFoundError struct {
	Resource string
	ID       string
}

func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("document not found with id %s", e.ID)
}

type DuplicateKeyError struct {
	Field string
}

func (e *DuplicateKeyError) Error() string {
	if e.Field == "" {
		return "duplicate field value. please use another value"
	}
	return fmt.Sprintf("duplicate field value for %s. please use another value", e.Field)
}

// ReferenceError is returned when a write would break a reference between records.
type ReferenceError struct {
	Resource string
}

func (e *ReferenceError) Error() string {
	return fmt.Sprintf("this %s is referenced by other records or references one that does not exist", e.Resource)
}

type AuthenticationError struct {
	Message string
}

func (e *AuthenticationError) Error() string { return e.Message }

type AuthorizationError struct {
	Message string
}

func (e *AuthorizationError) Error() string { return e.Message }

type BadRequestError struct {
	Message string
}

func (e *BadRequestError) Error() string { return e.Message }

var (
	ErrNotLoggedIn          = &AuthenticationError{Message: "you are not logged in. please log in to get access"}
	ErrInvalidCredentials   = &AuthenticationError{Message: "incorrect email or password"}
	ErrUserGone             = &AuthenticationError{Message: "the user belonging to this token no longer exists"}
	ErrPasswordChanged      = &AuthenticationError{Message: "user recently changed password. please log in again"}
	ErrPermissionDenied     = &AuthorizationError{Message: "you do not have permission to perform this action"}
	ErrInvalidResetToken    = &BadRequestError{Message: "token is invalid or has expired"}
	ErrIncorrectOldPassword = &AuthenticationError{Message: "your current password is wrong"}
)

// StatusCode maps an error to the HTTP status the responder should use.
func StatusCode(err error) int {
	var (
		validationErr *ValidationError
		notFoundErr   *NotFoundError
		duplicateErr  *DuplicateKeyError
		referenceErr  *ReferenceError
		authnErr      *AuthenticationError
		authzErr      *AuthorizationError
		badReqErr     *BadRequestError
	)

	switch {
	case errors.As(err, &validationErr), errors.As(err, &badReqErr):
		return http.StatusBadRequest
	case errors.As(err, &notFoundErr):
		return http.StatusNotFound
	case errors.As(err, &duplicateErr), errors.As(err, &referenceErr):
		return http.StatusConflict
	case errors.As(err, &authnErr):
		return http.StatusUnauthorized
	case errors.As(err, &authzErr):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// IsOperational reports whether the error is safe to show to the client as-is.
func IsOperational(err error) bool {
	return StatusCode(err) < http.StatusInternalServerError
}

// Status returns the envelope discriminator for a status code.
func Status(code int) string {
	if code >= 400 && code < 500 {
		return "fail"
	}
	return "error"
}
