package models

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

const (
	RoleUser      = "user"
	RoleAdmin     = "admin"
	RoleGuide     = "guide"
	RoleLeadGuide = "lead-guide"

	DefaultPhoto = "default.jpg"

	PasswordHashCost  = 12
	ResetTokenTTL     = 10 * time.Minute
	passwordStampSkew = time.Second
)

var now = time.Now

type User struct {
	ID                     string     `gorm:"size:36;primaryKey" json:"id"`
	Name                   string     `gorm:"size:100;not null" json:"name" validate:"required"`
	Email                  string     `gorm:"size:100;not null;uniqueIndex" json:"email" validate:"required,email"`
	Role                   string     `gorm:"size:20;not null;default:'user'" json:"role" validate:"required,oneof=user admin guide lead-guide"`
	Photo                  string     `gorm:"size:255;not null;default:'default.jpg'" json:"photo"`
	Password               string     `gorm:"size:255;not null" json:"-"`
	PasswordConfirm        string     `gorm:"-" json:"-"`
	PasswordChangedAt      *time.Time `json:"passwordChangedAt,omitempty"`
	PasswordResetToken     *string    `gorm:"size:64;index" json:"-"`
	PasswordResetExpiresAt *time.Time `json:"-"`
	Active                 bool       `gorm:"not null;default:true;index" json:"-"`
	CreatedAt              time.Time  `json:"-"`
	UpdatedAt              time.Time  `json:"-"`

	passwordModified bool
}

// UserInput is the write-side shape of a user: it is the only place a plaintext
// password and its confirmation enter the system.
type UserInput struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Role            string `json:"role"`
	Photo           string `json:"photo"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"passwordConfirm"`
}

func (in *UserInput) ToUser() *User {
	u := &User{
		Name:   in.Name,
		Email:  in.Email,
		Role:   in.Role,
		Photo:  in.Photo,
		Active: true,
	}
	u.SetPassword(in.Password, in.PasswordConfirm)
	return u
}

// Normalize trims the name, lower-cases the email and fills role and photo defaults.
func (u *User) Normalize() {
	u.Name = strings.TrimSpace(u.Name)
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	if u.Role == "" {
		u.Role = RoleUser
	}
	if u.Photo == "" {
		u.Photo = DefaultPhoto
	}
}

// SetPassword stages a plaintext password and its confirmation for the next write.
func (u *User) SetPassword(password, confirm string) {
	u.Password = password
	u.PasswordConfirm = confirm
	u.passwordModified = true
}

func (u *User) PasswordModified() bool {
	return u.passwordModified
}

// HashPassword replaces a staged plaintext password with its bcrypt hash and drops the confirmation.
func (u *User) HashPassword() error {
	if !u.passwordModified {
		return nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(u.Password), PasswordHashCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	u.Password = string(hash)
	u.PasswordConfirm = ""
	return nil
}

// StampPasswordChange records the change time one second early so a token issued right
// after the save is never considered older than the change.
func (u *User) StampPasswordChange(isNew bool) {
	if !u.passwordModified || isNew {
		return
	}
	changedAt := now().Add(-passwordStampSkew)
	u.PasswordChangedAt = &changedAt
}

// ApplyPasswordHooks runs the hashing and change-stamp steps for a pending password change.
func (u *User) ApplyPasswordHooks(isNew bool) error {
	if !u.passwordModified {
		return nil
	}
	if err := u.HashPassword(); err != nil {
		return err
	}
	u.StampPasswordChange(isNew)
	u.passwordModified = false
	return nil
}

func (u *User) ValidatePassword(candidate string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(candidate)) == nil
}

// IsPasswordChangedAfter reports whether the password changed after a token issued at iat (unix seconds).
func (u *User) IsPasswordChangedAfter(iat int64) bool {
	if u.PasswordChangedAt == nil {
		return false
	}
	return iat < u.PasswordChangedAt.Unix()
}

// CreateResetToken keeps only the sha256 of a fresh random token and returns the plaintext.
func (u *User) CreateResetToken() (string, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("generate reset token: %w", err)
	}
	token := hex.EncodeToString(raw)

	hashed := HashResetToken(token)
	expiresAt := now().Add(ResetTokenTTL)
	u.PasswordResetToken = &hashed
	u.PasswordResetExpiresAt = &expiresAt
	return token, nil
}

func (u *User) CancelPasswordReset() {
	u.PasswordResetToken = nil
	u.PasswordResetExpiresAt = nil
}

func (u *User) IsExpiredResetToken() bool {
	if u.PasswordResetExpiresAt == nil {
		return true
	}
	return u.PasswordResetExpiresAt.Before(now())
}

func (u *User) ResetPassword(password, confirm string) {
	u.CancelPasswordReset()
	u.UpdatePassword(password, confirm)
}

func (u *User) UpdatePassword(password, confirm string) {
	u.SetPassword(password, confirm)
}

func (u *User) UpdatePhoto(photo string) {
	u.Photo = photo
}

func (u *User) HasRole(roles ...string) bool {
	for _, r := range roles {
		if u.Role == r {
			return true
		}
	}
	return false
}

func HashResetToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
