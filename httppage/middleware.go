package httppage

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	apperrors "github.com/kbukum/lazyseq/errors"
)

// Gin context keys set by the middlewares.
const (
	ContextKeyRequestID = "request_id"
	ContextKeySubject   = "subject"
)

// RequestID injects a unique X-Request-Id header into every request/response.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(ContextKeyRequestID, id)
		c.Header(HeaderRequestID, id)
		c.Next()
	}
}

// RequireBearer rejects requests without a valid HS256 token signed with
// secret. The token subject is stored under ContextKeySubject.
func RequireBearer(secret string) gin.HandlerFunc {
	key := []byte(secret)
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			writeError(c, apperrors.Unauthorized("authorization header required"))
			return
		}
		raw, ok := strings.CutPrefix(header, bearerPrefix)
		if !ok || raw == "" {
			writeError(c, apperrors.Unauthorized("invalid authorization header format"))
			return
		}

		claims, err := parseToken(key, raw)
		if err != nil {
			writeError(c, err)
			return
		}
		c.Set(ContextKeySubject, claims.Subject)
		c.Next()
	}
}
