package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/Rakhulsr/go-tours/app/apperrors"
	"github.com/Rakhulsr/go-tours/app/models"
	"github.com/Rakhulsr/go-tours/app/repositories"
	"github.com/Rakhulsr/go-tours/app/storage"
	"github.com/Rakhulsr/go-tours/app/validation"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

var (
	ErrMissingCredentials = &apperrors.BadRequestError{Message: "please provide email and password"}
	ErrNotPasswordRoute   = &apperrors.BadRequestError{Message: "this route is not for password updates. please use /update-my-password"}
	ErrResetEmailFailed   = errors.New("there was an error sending the email. try again later")
)

var photoExtensions = map[string]string{
	"image/jpeg": ".jpeg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

type UserService struct {
	users     repositories.UserRepositoryImpl
	validator *validation.Validator
	mailer    EmailSender
	photos    storage.ObjectStorage
	baseURL   string
}

func NewUserService(
	users repositories.UserRepositoryImpl,
	v *validation.Validator,
	mailer EmailSender,
	photos storage.ObjectStorage,
	baseURL string,
) *UserService {
	return &UserService{
		users:     users,
		validator: v,
		mailer:    mailer,
		photos:    photos,
		baseURL:   strings.TrimRight(baseURL, "/"),
	}
}

// Create is the admin create: role and photo are taken from the input.
func (s *UserService) Create(ctx context.Context, in *models.UserInput) (*models.User, error) {
	user := in.ToUser()
	user.ID = uuid.NewString()
	user.Normalize()

	if err := s.validator.User(user); err != nil {
		return nil, err
	}
	if err := user.ApplyPasswordHooks(true); err != nil {
		return nil, err
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Signup creates a regular user; any requested role or photo is ignored.
func (s *UserService) Signup(ctx context.Context, in *models.UserInput) (*models.User, error) {
	signup := *in
	signup.Role = models.RoleUser
	signup.Photo = ""
	return s.Create(ctx, &signup)
}

func (s *UserService) Login(ctx context.Context, email, password string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, ErrMissingCredentials
	}

	user, err := s.users.FindByEmail(ctx, email, repositories.ReadOptions{})
	if err != nil {
		var nf *apperrors.NotFoundError
		if errors.As(err, &nf) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, err
	}
	if !user.ValidatePassword(password) {
		return nil, apperrors.ErrInvalidCredentials
	}
	return user, nil
}

// Authenticate resolves the user behind a session token issued at issuedAt (unix seconds).
func (s *UserService) Authenticate(ctx context.Context, userID string, issuedAt int64) (*models.User, error) {
	user, err := s.users.FindByID(ctx, userID, repositories.ReadOptions{})
	if err != nil {
		var nf *apperrors.NotFoundError
		if errors.As(err, &nf) {
			return nil, apperrors.ErrUserGone
		}
		return nil, err
	}
	if user.IsPasswordChangedAfter(issuedAt) {
		return nil, apperrors.ErrPasswordChanged
	}
	return user, nil
}

// Update applies an admin patch. Passwords cannot be changed here: the hash is not reachable
// through the JSON shape of a user, and the password change time is only set by password flows.
func (s *UserService) Update(ctx context.Context, id string, patch map[string]any) (*models.User, error) {
	user, err := s.users.FindByID(ctx, id, repositories.ReadOptions{})
	if err != nil {
		return nil, err
	}

	delete(patch, "passwordChangedAt")

	if err := mergePatch(user, patch); err != nil {
		return nil, err
	}
	user.ID = id
	user.Normalize()

	if err := s.validator.User(user); err != nil {
		return nil, err
	}
	if err := s.users.Save(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// UpdateMe lets a user change their own name and email.
func (s *UserService) UpdateMe(ctx context.Context, id string, patch map[string]any) (*models.User, error) {
	if _, ok := patch["password"]; ok {
		return nil, ErrNotPasswordRoute
	}
	if _, ok := patch["passwordConfirm"]; ok {
		return nil, ErrNotPasswordRoute
	}
	return s.Update(ctx, id, pick(patch, "name", "email"))
}

func (s *UserService) Delete(ctx context.Context, id string) error {
	return s.users.Delete(ctx, id)
}

// Deactivate soft-deletes the user; every default read stops returning it.
func (s *UserService) Deactivate(ctx context.Context, id string) error {
	if _, err := s.users.FindByID(ctx, id, repositories.ReadOptions{}); err != nil {
		return err
	}
	return s.users.UpdateColumns(ctx, id, map[string]interface{}{"active": false})
}

func (s *UserService) FindByID(ctx context.Context, id string) (*models.User, error) {
	return s.users.FindByID(ctx, id, repositories.ReadOptions{})
}

func (s *UserService) FindAll(ctx context.Context, q repositories.Query) ([]models.User, error) {
	return s.users.FindAll(ctx, q, repositories.ReadOptions{})
}

// ForgotPassword issues a reset token and mails its link. The token is withdrawn again
// when the email cannot be sent.
func (s *UserService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.users.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)), repositories.ReadOptions{})
	if err != nil {
		return err
	}

	token, err := user.CreateResetToken()
	if err != nil {
		return err
	}
	if err := s.users.UpdateColumns(ctx, user.ID, resetColumns(user)); err != nil {
		return err
	}

	resetURL := fmt.Sprintf("%s/api/v1/users/reset-password/%s", s.baseURL, token)
	body, err := BuildResetEmailBody(user.Name, resetURL, int(models.ResetTokenTTL/time.Minute))
	if err == nil {
		err = s.mailer.SendHTMLEmail(user.Email, "Your password reset token (valid for 10 min)", body)
	}
	if err != nil {
		log.Error().Err(err).Str("user_id", user.ID).Msg("password reset email failed")
		user.CancelPasswordReset()
		if cancelErr := s.users.UpdateColumns(ctx, user.ID, resetColumns(user)); cancelErr != nil {
			log.Error().Err(cancelErr).Str("user_id", user.ID).Msg("failed to withdraw reset token")
		}
		return ErrResetEmailFailed
	}
	return nil
}

func (s *UserService) ResetPassword(ctx context.Context, token, password, confirm string) (*models.User, error) {
	user, err := s.users.FindByPasswordResetToken(ctx, models.HashResetToken(token))
	if err != nil {
		var nf *apperrors.NotFoundError
		if errors.As(err, &nf) {
			return nil, apperrors.ErrInvalidResetToken
		}
		return nil, err
	}
	if user.IsExpiredResetToken() {
		return nil, apperrors.ErrInvalidResetToken
	}

	user.ResetPassword(password, confirm)
	return user, s.savePassword(ctx, user)
}

func (s *UserService) UpdatePassword(ctx context.Context, id, current, password, confirm string) (*models.User, error) {
	user, err := s.users.FindByID(ctx, id, repositories.ReadOptions{})
	if err != nil {
		return nil, err
	}
	if !user.ValidatePassword(current) {
		return nil, apperrors.ErrIncorrectOldPassword
	}

	user.UpdatePassword(password, confirm)
	return user, s.savePassword(ctx, user)
}

// savePassword runs validate, hash, stamp and save for a user with a staged password.
func (s *UserService) savePassword(ctx context.Context, user *models.User) error {
	user.Normalize()
	if err := s.validator.User(user); err != nil {
		return err
	}
	if err := user.ApplyPasswordHooks(false); err != nil {
		return err
	}
	return s.users.Save(ctx, user)
}

// UpdatePhoto stores the upload in object storage and points the user at it.
func (s *UserService) UpdatePhoto(ctx context.Context, id string, photo io.Reader, size int64, contentType string) (*models.User, error) {
	ext, ok := photoExtensions[contentType]
	if !ok {
		return nil, &apperrors.BadRequestError{Message: "not an image! please upload only images"}
	}

	user, err := s.users.FindByID(ctx, id, repositories.ReadOptions{})
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("user-%s-%d%s", user.ID, time.Now().UnixMilli(), ext)
	if err := s.photos.Put(ctx, key, photo, size, contentType); err != nil {
		return nil, fmt.Errorf("store photo: %w", err)
	}

	previous := user.Photo
	user.UpdatePhoto(key)
	if err := s.users.UpdateColumns(ctx, user.ID, map[string]interface{}{"photo": user.Photo}); err != nil {
		return nil, err
	}

	if previous != "" && previous != models.DefaultPhoto {
		if err := s.photos.Delete(ctx, previous); err != nil {
			log.Warn().Err(err).Str("key", previous).Msg("failed to remove previous photo")
		}
	}
	return user, nil
}

// OpenPhoto streams a stored user photo.
func (s *UserService) OpenPhoto(ctx context.Context, name string) (io.ReadCloser, string, error) {
	key := path.Base(name)
	rc, contentType, err := s.photos.Get(ctx, key)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, "", apperrors.NewNotFoundError("photo", key)
		}
		return nil, "", err
	}
	return rc, contentType, nil
}

func resetColumns(u *models.User) map[string]interface{} {
	return map[string]interface{}{
		"password_reset_token":      u.PasswordResetToken,
		"password_reset_expires_at": u.PasswordResetExpiresAt,
	}
}
