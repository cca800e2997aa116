package configs

import (
	"encoding/base64"
	"fmt"
	"io"
	"os"

	"github.com/gorilla/securecookie"
)

const newKeysFile = ".env.new_keys"

// SessionKeys sign and encrypt the session cookie; AuthKey also backs the csrf token.
type SessionKeys struct {
	AuthKey []byte
	EncKey  []byte
}

func LoadSessionKeys(env ENV) (*SessionKeys, error) {
	if env.AppAuthKey == "" {
		return nil, fmt.Errorf("APP_AUTH_KEY environment variable not set")
	}
	if env.AppEncKey == "" {
		return nil, fmt.Errorf("APP_ENC_KEY environment variable not set")
	}

	authKey, err := base64.URLEncoding.DecodeString(env.AppAuthKey)
	if err != nil {
		return nil, fmt.Errorf("decode APP_AUTH_KEY from base64: %w", err)
	}
	encKey, err := base64.URLEncoding.DecodeString(env.AppEncKey)
	if err != nil {
		return nil, fmt.Errorf("decode APP_ENC_KEY from base64: %w", err)
	}

	if len(authKey) < 32 {
		return nil, fmt.Errorf("APP_AUTH_KEY must decode to at least 32 bytes, got %d", len(authKey))
	}
	if len(encKey) != 16 && len(encKey) != 24 && len(encKey) != 32 {
		return nil, fmt.Errorf("APP_ENC_KEY has invalid length %d after decoding, must be 16, 24 or 32 bytes", len(encKey))
	}

	return &SessionKeys{AuthKey: authKey, EncKey: encKey}, nil
}

// GenerateSessionKeys returns a fresh base64 key pair suitable for APP_AUTH_KEY and APP_ENC_KEY.
func GenerateSessionKeys() (authKey, encKey string, err error) {
	rawAuth := securecookie.GenerateRandomKey(64)
	if rawAuth == nil {
		return "", "", fmt.Errorf("could not generate authentication key")
	}
	rawEnc := securecookie.GenerateRandomKey(32)
	if rawEnc == nil {
		return "", "", fmt.Errorf("could not generate encryption key")
	}
	return base64.URLEncoding.EncodeToString(rawAuth), base64.URLEncoding.EncodeToString(rawEnc), nil
}

// WriteSessionKeys prints a new key pair and writes it to .env.new_keys for copying into .env.
func WriteSessionKeys(out io.Writer) error {
	authKey, encKey, err := GenerateSessionKeys()
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "APP_AUTH_KEY=%s\nAPP_ENC_KEY=%s\n", authKey, encKey)

	if err := os.WriteFile(newKeysFile, []byte(fmt.Sprintf("APP_AUTH_KEY=%s\nAPP_ENC_KEY=%s\n", authKey, encKey)), 0o600); err != nil {
		return fmt.Errorf("write keys to %s: %w", newKeysFile, err)
	}

	fmt.Fprintf(out, "\nkeys written to %s. regenerating them invalidates every existing session.\n", newKeysFile)
	return nil
}
