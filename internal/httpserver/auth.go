package httpserver

import (
	"net/http"
	"strconv"
	"strings"

	"retail-backend/internal/domain"
	"github.com/gin-gonic/gin"
)

const actorKey = "actor"

// actorMiddleware resolves the caller identity injected by the upstream auth
// proxy into a domain.Actor. Requests without identity are rejected.
func actorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := strconv.ParseInt(c.GetHeader("X-User-ID"), 10, 64)
		if err != nil || userID <= 0 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{"kind": "unauthorized", "message": "missing or invalid identity"},
			})
			return
		}
		role := strings.ToUpper(strings.TrimSpace(c.GetHeader("X-User-Role")))
		if role == "" {
			role = domain.RoleCustomer
		}
		c.Set(actorKey, domain.Actor{UserID: userID, Role: role})
		c.Next()
	}
}

func actorFrom(c *gin.Context) domain.Actor {
	if v, ok := c.Get(actorKey); ok {
		if actor, ok := v.(domain.Actor); ok {
			return actor
		}
	}
	return domain.Actor{}
}
