package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// SessionHeader is where the browser tab echoes its session token. The tab
// keeps the token in tab-scoped storage, so tokens are isolated across tabs
// and survive reloads within one.
const SessionHeader = "X-Session-ID"

const sessionPrefix = "session_"

// NewSessionID mints a fresh, prefixed session token.
func NewSessionID() string {
	return sessionPrefix + uuid.NewString()
}

// ValidSessionID checks the token shape without touching any state.
func ValidSessionID(token string) bool {
	rest, ok := strings.CutPrefix(token, sessionPrefix)
	if !ok {
		return false
	}
	_, err := uuid.Parse(rest)
	return err == nil
}

// SessionMiddleware resolves the request's session token, minting one when
// the tab arrives without it. The token is always echoed back in the
// response header so the tab can store it.
func SessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader(SessionHeader)
		if token == "" {
			token = NewSessionID()
		} else if !ValidSessionID(token) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid session ID"})
			return
		}

		c.Set("sessionID", token)
		c.Header(SessionHeader, token)
		c.Next()
	}
}

// SessionID extracts the resolved token from the request context.
func SessionID(c *gin.Context) string {
	return c.MustGet("sessionID").(string)
}
