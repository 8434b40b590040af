package middleware

import (
	"net/http"
	"strings"

	"blog-admin-svc/src/internal/metrics"
	"blog-admin-svc/src/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// AuthMiddleware guards admin routes with the device session.
type AuthMiddleware struct {
	sessions  session.Provider
	loginPath string
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(sessions session.Provider, loginPath string) *AuthMiddleware {
	return &AuthMiddleware{
		sessions:  sessions,
		loginPath: loginPath,
	}
}

// RequireSession lets the request through only while the device holds a valid
// session. It runs on every request to a protected route, so a session that
// expires while an admin page is open is caught on the next navigation.
func (m *AuthMiddleware) RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m.sessions.For(c).IsValid(c.Request.Context()) {
			metrics.GuardDecisionsTotal.WithLabelValues("allowed").Inc()
			c.Next()
			return
		}

		metrics.GuardDecisionsTotal.WithLabelValues("redirected").Inc()
		logrus.WithFields(logrus.Fields{
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
		}).Info("No valid admin session, redirecting to login")

		if wantsJSON(c) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":    "Admin session required - please login again",
				"redirect": m.loginPath,
			})
			return
		}

		c.Redirect(redirectStatus(c.Request.Method), m.loginPath)
		c.Abort()
	}
}

// redirectStatus picks a status that turns any method into a GET of the target.
func redirectStatus(method string) int {
	if method == http.MethodGet || method == http.MethodHead {
		return http.StatusFound
	}
	return http.StatusSeeOther
}

// wantsJSON reports whether the caller is an API client rather than a browser navigation.
func wantsJSON(c *gin.Context) bool {
	if strings.HasPrefix(c.Request.URL.Path, "/api/") {
		return true
	}
	accept := c.GetHeader("Accept")
	return strings.Contains(accept, "application/json") && !strings.Contains(accept, "text/html")
}
