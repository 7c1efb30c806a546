package middleware

import (
	"net/http"
	"regexp"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Session identifiers travel in this header or cookie
const (
	SessionHeader = "X-Session-ID"
	SessionCookie = "suraksha_session"
)

var sessionIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{8,128}$`)

// Session attaches a session id to every request, minting one when the
// client sent none or an unusable one
func Session(ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(SessionHeader)
		if id == "" {
			id, _ = c.Cookie(SessionCookie)
		}
		if !sessionIDPattern.MatchString(id) {
			id = uuid.NewString()
		}

		c.Set(SessionIDKey, id)
		c.Header(SessionHeader, id)
		http.SetCookie(c.Writer, &http.Cookie{
			Name:     SessionCookie,
			Value:    id,
			Path:     "/",
			MaxAge:   int(ttl.Seconds()),
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})

		c.Next()
	}
}

// SessionID returns the id attached by Session
func SessionID(c *gin.Context) string {
	return c.GetString(SessionIDKey)
}
