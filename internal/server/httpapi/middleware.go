package httpapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/dkarlovs/tacpanel/internal/server/auth"
	"github.com/gin-gonic/gin"
)

const (
	ctxUserID   = "userID"
	ctxUsername = "username"
)

// requireAuth validates the Authorization bearer token and stores the
// caller's identity on the request context.
func (a *API) requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse{Detail: "Not authenticated"})
			return
		}

		claims, err := auth.ParseToken(token, a.secretKey)
		if err != nil {
			a.abortWithError(c, err)
			return
		}

		c.Set(ctxUserID, claims.UserID)
		c.Set(ctxUsername, claims.Username)
		c.Next()
	}
}

func (a *API) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		a.logger.Info(c.Request.Context(), "http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start).String(),
		)
	}
}

func currentUserID(c *gin.Context) string {
	return c.GetString(ctxUserID)
}
