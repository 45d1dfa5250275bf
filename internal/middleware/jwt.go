package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/trainhub/assignment-api/internal/service"
	appErrors "github.com/trainhub/assignment-api/pkg/errors"
	"github.com/trainhub/assignment-api/pkg/response"
)

// ContextUserKey is the gin context key storing JWT claims.
const ContextUserKey = "currentUser"

// JWT protects routes by requiring a valid access token. Claims are stored
// on the gin context and on the request context so the assignment authorizer
// can evaluate the actor inside a placement.
func JWT(authService *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "invalid authorization header"))
			c.Abort()
			return
		}

		claims, err := authService.ValidateToken(parts[1])
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		c.Set(ContextUserKey, claims)
		c.Request = c.Request.WithContext(service.WithActor(c.Request.Context(), claims))
		c.Next()
	}
}
