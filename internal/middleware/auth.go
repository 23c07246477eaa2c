package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/tubeaccounts/backend/internal/utils"
	"github.com/tubeaccounts/backend/pkg/logger"
	"github.com/tubeaccounts/backend/pkg/response"
)

const (
	ContextUserID   = logger.ContextUserID
	ContextUsername = logger.ContextUsername

	AccessTokenCookie  = "accessToken"
	RefreshTokenCookie = "refreshToken"
)

// AccessVerifier checks an access token and returns its claims.
type AccessVerifier interface {
	VerifyAccess(token string) (*utils.Claims, error)
}

// AuthRequired accepts an access token from the accessToken cookie or an
// "Authorization: Bearer" header, in that order.
func AuthRequired(verifier AccessVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := accessToken(c)
		if token == "" {
			response.Error(c, response.NewAuth("Unauthorized request"))
			return
		}

		claims, err := verifier.VerifyAccess(token)
		if err != nil {
			response.Error(c, response.NewAuth("Invalid access token"))
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextUsername, claims.Username)

		c.Next()
	}
}

func accessToken(c *gin.Context) string {
	if cookie, err := c.Cookie(AccessTokenCookie); err == nil && cookie != "" {
		return cookie
	}

	parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// GetUserID gets the current user ID from context
func GetUserID(c *gin.Context) uint {
	if id, exists := c.Get(ContextUserID); exists {
		if uid, ok := id.(uint); ok {
			return uid
		}
	}
	return 0
}

// GetUsername gets the current username from context
func GetUsername(c *gin.Context) string {
	return c.GetString(ContextUsername)
}
