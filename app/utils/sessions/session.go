package sessions

import (
	"net/http"
	"time"

	"github.com/gorilla/sessions"
	"github.com/rs/zerolog/log"
)

const (
	sessionCookieName = "natours-session"

	tokenSessionKey = "jwt"
)

// SessionStore keeps the signed session token in an encrypted cookie.
type SessionStore interface {
	GetToken(r *http.Request) string
	SetToken(w http.ResponseWriter, r *http.Request, token string, ttl time.Duration) error
	ClearSession(w http.ResponseWriter, r *http.Request) error
}

type CookieSessionStore struct {
	store *sessions.CookieStore
}

func NewCookieSessionStore(secure bool, keyPairs ...[]byte) *CookieSessionStore {
	store := sessions.NewCookieStore(keyPairs...)

	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(30 * 24 * time.Hour / time.Second),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return &CookieSessionStore{store: store}
}

// getSession always returns a usable session; an undecodable cookie is replaced by a fresh one.
func (c *CookieSessionStore) getSession(r *http.Request) *sessions.Session {
	session, err := c.store.Get(r, sessionCookieName)
	if err != nil {
		log.Debug().Err(err).Msg("discarding unreadable session cookie")
	}
	return session
}

func (c *CookieSessionStore) GetToken(r *http.Request) string {
	token, ok := c.getSession(r).Values[tokenSessionKey].(string)
	if !ok {
		return ""
	}
	return token
}

func (c *CookieSessionStore) SetToken(w http.ResponseWriter, r *http.Request, token string, ttl time.Duration) error {
	session := c.getSession(r)
	session.Values[tokenSessionKey] = token
	session.Options.MaxAge = int(ttl / time.Second)
	return session.Save(r, w)
}

func (c *CookieSessionStore) ClearSession(w http.ResponseWriter, r *http.Request) error {
	session := c.getSession(r)
	session.Values = make(map[interface{}]interface{})
	session.Options.MaxAge = -1
	return session.Save(r, w)
}
