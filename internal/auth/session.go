package auth

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/securecookie"
)

// SessionCookieName is the cookie that carries the session identity.
const SessionCookieName = "user_id"

// Sessions remembers which user a browser is logged in as.
type Sessions interface {
	// Issue binds userID to the response via the session cookie.
	Issue(ctx context.Context, w http.ResponseWriter, userID int64) error
	// Read returns the user bound to the request, if any.
	Read(r *http.Request) (int64, bool)
	// Revoke clears the cookie and any server-side state.
	Revoke(w http.ResponseWriter, r *http.Request) error
}

// CookieSessions stores the user id in the cookie itself, HMAC-signed so a
// client cannot forge another user's id.
type CookieSessions struct {
	codec  *securecookie.SecureCookie
	secure bool
}

var _ Sessions = (*CookieSessions)(nil)

// NewCookieSessions signs cookies with secret. Signatures older than ttl are
// rejected; a zero ttl disables the age check.
func NewCookieSessions(secret []byte, ttl time.Duration, secure bool) *CookieSessions {
	codec := securecookie.New(secret, nil)
	codec.MaxAge(int(ttl / time.Second))
	codec.SetSerializer(securecookie.JSONEncoder{})
	return &CookieSessions{codec: codec, secure: secure}
}

func (s *CookieSessions) Issue(_ context.Context, w http.ResponseWriter, userID int64) error {
	value, err := s.codec.Encode(SessionCookieName, userID)
	if err != nil {
		return err
	}
	http.SetCookie(w, sessionCookie(value, s.secure))
	return nil
}

func (s *CookieSessions) Read(r *http.Request) (int64, bool) {
	c, err := r.Cookie(SessionCookieName)
	if err != nil || c.Value == "" {
		return 0, false
	}
	var userID int64
	if err := s.codec.Decode(SessionCookieName, c.Value, &userID); err != nil || userID <= 0 {
		return 0, false
	}
	return userID, true
}

func (s *CookieSessions) Revoke(w http.ResponseWriter, _ *http.Request) error {
	http.SetCookie(w, expiredCookie(s.secure))
	return nil
}

// sessionCookie has no Expires/MaxAge so the browser drops it on exit.
func sessionCookie(value string, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookieName,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
	}
}

func expiredCookie(secure bool) *http.Cookie {
	c := sessionCookie("", secure)
	c.MaxAge = -1
	c.Expires = time.Unix(0, 0)
	return c
}
