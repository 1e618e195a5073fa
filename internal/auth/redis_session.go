package auth

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisSessions keeps a random session id in the cookie and the user id in
// Redis, so logout invalidates the session server-side.
type RedisSessions struct {
	client redis.Cmdable
	prefix string
	ttl    time.Duration
	secure bool
}

var _ Sessions = (*RedisSessions)(nil)

func NewRedisSessions(client redis.Cmdable, prefix string, ttl time.Duration, secure bool) *RedisSessions {
	if prefix == "" {
		prefix = "session"
	}
	return &RedisSessions{client: client, prefix: prefix, ttl: ttl, secure: secure}
}

func (s *RedisSessions) key(id string) string {
	return s.prefix + ":" + id
}

func (s *RedisSessions) Issue(ctx context.Context, w http.ResponseWriter, userID int64) error {
	id := uuid.NewString()
	if err := s.client.Set(ctx, s.key(id), strconv.FormatInt(userID, 10), s.ttl).Err(); err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	http.SetCookie(w, sessionCookie(id, s.secure))
	return nil
}

func (s *RedisSessions) Read(r *http.Request) (int64, bool) {
	id, ok := sessionID(r)
	if !ok {
		return 0, false
	}
	userID, err := s.client.Get(r.Context(), s.key(id)).Int64()
	if err != nil || userID <= 0 {
		return 0, false
	}
	return userID, true
}

func (s *RedisSessions) Revoke(w http.ResponseWriter, r *http.Request) error {
	http.SetCookie(w, expiredCookie(s.secure))
	id, ok := sessionID(r)
	if !ok {
		return nil
	}
	if err := s.client.Del(r.Context(), s.key(id)).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func sessionID(r *http.Request) (string, bool) {
	c, err := r.Cookie(SessionCookieName)
	if err != nil {
		return "", false
	}
	id, err := uuid.Parse(c.Value)
	if err != nil {
		return "", false
	}
	return id.String(), true
}
