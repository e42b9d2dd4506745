package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"partyhub/services"
)

// HeaderSessionToken carries the opaque session token on authenticated
// operations.
const HeaderSessionToken = "X-Session-Token"

const sessionContextKey = "session"

// RequireSession resolves the session token and stores the session on the
// request context. Missing or unknown tokens abort with 401.
func RequireSession(sessions services.SessionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader(HeaderSessionToken)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or missing session token"})
			return
		}
		sess, err := sessions.Resolve(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or missing session token"})
			return
		}
		c.Set(sessionContextKey, sess)
		c.Next()
	}
}

// SessionFrom returns the session placed on the context by RequireSession.
func SessionFrom(c *gin.Context) services.Session {
	sess, _ := c.Get(sessionContextKey)
	s, _ := sess.(services.Session)
	return s
}
