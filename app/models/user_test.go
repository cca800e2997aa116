package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func freezeTime(t *testing.T, at time.Time) {
	t.Helper()
	prev := now
	now = func() time.Time { return at }
	t.Cleanup(func() { now = prev })
}

func TestUserInputToUser(t *testing.T) {
	in := UserInput{Name: " Jonas ", Email: " Jonas@Example.COM ", Password: "pass1234", PasswordConfirm: "pass1234"}
	u := in.ToUser()
	u.Normalize()

	assert.Equal(t, "Jonas", u.Name)
	assert.Equal(t, "jonas@example.com", u.Email)
	assert.Equal(t, RoleUser, u.Role)
	assert.Equal(t, DefaultPhoto, u.Photo)
	assert.True(t, u.Active)
	assert.True(t, u.PasswordModified())
}

func TestApplyPasswordHooksOnCreate(t *testing.T) {
	u := &User{}
	u.SetPassword("pass1234", "pass1234")

	require.NoError(t, u.ApplyPasswordHooks(true))

	assert.NotEqual(t, "pass1234", u.Password)
	assert.Empty(t, u.PasswordConfirm)
	assert.Nil(t, u.PasswordChangedAt, "initial creation is not a password change")
	assert.False(t, u.PasswordModified())
	assert.True(t, u.ValidatePassword("pass1234"))
}

func TestApplyPasswordHooksOnExistingRecord(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	freezeTime(t, at)

	u := &User{}
	u.UpdatePassword("newpass", "newpass")
	require.NoError(t, u.ApplyPasswordHooks(false))

	require.NotNil(t, u.PasswordChangedAt)
	assert.Equal(t, at.Add(-time.Second), *u.PasswordChangedAt)
}

func TestApplyPasswordHooksWithoutChangeIsNoop(t *testing.T) {
	u := &User{Password: "$2a$12$existinghash"}
	require.NoError(t, u.ApplyPasswordHooks(false))

	assert.Equal(t, "$2a$12$existinghash", u.Password)
	assert.Nil(t, u.PasswordChangedAt)
}

func TestValidatePassword(t *testing.T) {
	u := &User{}
	u.SetPassword("correct horse", "correct horse")
	require.NoError(t, u.HashPassword())

	assert.True(t, u.ValidatePassword("correct horse"))
	assert.False(t, u.ValidatePassword("battery staple"))
	assert.False(t, u.ValidatePassword(""))
}

func TestIsPasswordChangedAfter(t *testing.T) {
	u := &User{}
	assert.False(t, u.IsPasswordChangedAfter(0))

	changed := time.Unix(1_700_000_000, 900_000_000)
	u.PasswordChangedAt = &changed

	assert.True(t, u.IsPasswordChangedAfter(1_699_999_999))
	assert.False(t, u.IsPasswordChangedAfter(1_700_000_000), "compared at second precision")
	assert.False(t, u.IsPasswordChangedAfter(1_700_000_001))
}

func TestCreateResetToken(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	freezeTime(t, at)

	u := &User{}
	token, err := u.CreateResetToken()
	require.NoError(t, err)

	assert.Len(t, token, 64)
	require.NotNil(t, u.PasswordResetToken)
	assert.NotEqual(t, token, *u.PasswordResetToken)
	assert.Equal(t, HashResetToken(token), *u.PasswordResetToken)
	assert.Equal(t, at.Add(ResetTokenTTL), *u.PasswordResetExpiresAt)
	assert.False(t, u.IsExpiredResetToken())

	freezeTime(t, at.Add(ResetTokenTTL+time.Second))
	assert.True(t, u.IsExpiredResetToken())
}

func TestCancelAndResetPassword(t *testing.T) {
	u := &User{}
	_, err := u.CreateResetToken()
	require.NoError(t, err)

	u.ResetPassword("fresh", "fresh")

	assert.Nil(t, u.PasswordResetToken)
	assert.Nil(t, u.PasswordResetExpiresAt)
	assert.True(t, u.IsExpiredResetToken())
	assert.True(t, u.PasswordModified())
	assert.Equal(t, "fresh", u.PasswordConfirm)
}

func TestUserMarshalHidesSecrets(t *testing.T) {
	token := "hashed"
	u := User{ID: "u1", Name: "Jonas", Email: "jonas@example.com", Password: "hash", PasswordConfirm: "plain", PasswordResetToken: &token, Active: true}

	b, err := json.Marshal(u)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(b, &out))
	for _, key := range []string{"password", "passwordConfirm", "passwordResetToken", "active", "Password"} {
		assert.NotContains(t, out, key)
	}
	assert.Equal(t, "u1", out["id"])
}

func TestHasRole(t *testing.T) {
	u := &User{Role: RoleLeadGuide}
	assert.True(t, u.HasRole(RoleAdmin, RoleLeadGuide))
	assert.False(t, u.HasRole(RoleAdmin))
}
