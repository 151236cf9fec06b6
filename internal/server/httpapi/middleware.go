package httpapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hynorvixx/backend/internal/common"
	"github.com/hynorvixx/backend/internal/server/models"
)

const userContextKey = "user"

// RequireAuth resolves the bearer token to an active identity or aborts
// with 401.
func (s *Server) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader(common.AuthorizationHeaderName))
		if !ok {
			s.fail(c, common.ErrUnauthenticated)
			return
		}

		user, err := s.auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			s.fail(c, err)
			return
		}

		c.Set(userContextKey, user)
		c.Next()
	}
}

// OptionalAuth attaches the identity when the token checks out and never
// aborts.
func (s *Server) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, ok := bearerToken(c.GetHeader(common.AuthorizationHeaderName)); ok {
			if user, err := s.auth.Authenticate(c.Request.Context(), token); err == nil {
				c.Set(userContextKey, user)
			}
		}
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, common.BearerScheme) {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func currentUser(c *gin.Context) *models.User {
	v, ok := c.Get(userContextKey)
	if !ok {
		return nil
	}
	u, _ := v.(*models.User)
	return u
}

// requestLogger logs one line per request. Query strings are left out since
// presigned URLs and keys travel there.
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}

		args := []any{
			"method", c.Request.Method,
			"route", route,
			"status", status,
			"duration_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		}
		if u := currentUser(c); u != nil {
			args = append(args, "user_id", u.ID)
		}

		ctx := c.Request.Context()
		switch {
		case status >= http.StatusInternalServerError:
			s.logger.Error(ctx, "HTTP request", args...)
		case status >= http.StatusBadRequest:
			s.logger.Warn(ctx, "HTTP request", args...)
		default:
			s.logger.Info(ctx, "HTTP request", args...)
		}
	}
}

// recovery turns a handler panic into a JSON 500.
func (s *Server) recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		s.logger.Error(c.Request.Context(), "panic recovered",
			"method", c.Request.Method, "route", c.FullPath(), "panic", recovered)
		writeError(c, http.StatusInternalServerError, internalMessage)
	})
}
