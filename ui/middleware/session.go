package middleware

import (
	"net/http"
	"time"

	"trialdash/domain/core"
	"trialdash/internal"
	"trialdash/internal/session"

	"github.com/gin-gonic/gin"
)

// SessionCookie names the cookie carrying the session ID
const SessionCookie = "trialdash_session"

const sessionKey = "trialdash.session"

// ResolveSession attaches the stored session named by the caller's cookie.
// Absent, malformed or evicted cookies leave the request without a session.
func ResolveSession(store *session.Store, logger *internal.Logger) gin.HandlerFunc {
	logger = logger.With("ResolveSession")
	return func(c *gin.Context) {
		raw, err := c.Cookie(SessionCookie)
		if err != nil {
			c.Next()
			return
		}
		id, err := core.ParseSessionID(raw)
		if err != nil {
			logger.Debug("ignoring malformed session cookie: %v", err)
			c.Next()
			return
		}
		if sess, ok := store.Get(id); ok {
			c.Set(sessionKey, sess)
		}
		c.Next()
	}
}

// SetSessionCookie hands the caller the ID of a newly stored session
func SetSessionCookie(c *gin.Context, id core.SessionID, ttl time.Duration) {
	maxAge := 0
	if ttl > 0 {
		maxAge = int(ttl.Seconds())
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, id.String(), maxAge, "/", "", false, true)
}

// Session returns the session attached to the request, or nil
func Session(c *gin.Context) *session.Session {
	v, ok := c.Get(sessionKey)
	if !ok {
		return nil
	}
	sess, _ := v.(*session.Session)
	return sess
}
