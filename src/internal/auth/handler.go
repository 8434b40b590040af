// Package auth implements the admin login and logout pages.
package auth

import (
	"net/http"

	"blog-admin-svc/src/clients"
	"blog-admin-svc/src/internal/metrics"
	"blog-admin-svc/src/internal/models"
	"blog-admin-svc/src/internal/notify"
	"blog-admin-svc/src/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const (
	loginTemplate = "login.html"

	MsgLoginSuccess       = "Login successful"
	MsgInvalidCredentials = "Invalid email or password"
	MsgLoggedOut          = "Logged out"
)

type Handler interface {
	LoginPage(c *gin.Context)
	Login(c *gin.Context)
	Logout(c *gin.Context)
}

type handler struct {
	credentials Credentials
	sessions    session.Provider
	notifier    notify.Notifier
	publisher   clients.ActivityPublisher
	loginPath   string
	landingPath string
}

func NewHandler(
	credentials Credentials,
	sessions session.Provider,
	notifier notify.Notifier,
	publisher clients.ActivityPublisher,
	loginPath, landingPath string,
) Handler {
	return &handler{
		credentials: credentials,
		sessions:    sessions,
		notifier:    notifier,
		publisher:   publisher,
		loginPath:   loginPath,
		landingPath: landingPath,
	}
}

// LoginPage skips the form for a device that is already logged in.
func (h *handler) LoginPage(c *gin.Context) {
	if h.sessions.For(c).IsValid(c.Request.Context()) {
		c.Redirect(http.StatusFound, h.landingPath)
		return
	}

	h.renderForm(c, http.StatusOK, "")
}

func (h *handler) Login(c *gin.Context) {
	email := c.PostForm("email")
	password := c.PostForm("password")

	if !h.credentials.Matches(email, password) {
		metrics.LoginAttemptsTotal.WithLabelValues("rejected").Inc()
		logrus.WithField("ip", c.ClientIP()).Warn("Admin login rejected")
		h.publish(c, models.ActionLoginFailed)

		h.notifier.Error(c, MsgInvalidCredentials)
		h.renderForm(c, http.StatusUnauthorized, email)
		return
	}

	if err := h.sessions.For(c).Grant(c.Request.Context()); err != nil {
		metrics.LoginAttemptsTotal.WithLabelValues("error").Inc()
		logrus.WithError(err).Error("Failed to grant admin session")
		_ = c.Error(err)
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}

	metrics.LoginAttemptsTotal.WithLabelValues("accepted").Inc()
	logrus.WithField("ip", c.ClientIP()).Info("Admin logged in")
	h.publish(c, models.ActionLoginSucceeded)

	h.notifier.Success(c, MsgLoginSuccess)
	c.Redirect(http.StatusSeeOther, h.landingPath)
}

func (h *handler) Logout(c *gin.Context) {
	if err := h.sessions.For(c).Revoke(c.Request.Context()); err != nil {
		logrus.WithError(err).Error("Failed to revoke admin session")
		_ = c.Error(err)
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}

	logrus.WithField("ip", c.ClientIP()).Info("Admin logged out")
	h.publish(c, models.ActionLogout)

	h.notifier.Success(c, MsgLoggedOut)
	c.Redirect(http.StatusSeeOther, h.loginPath)
}

func (h *handler) renderForm(c *gin.Context, status int, email string) {
	c.HTML(status, loginTemplate, gin.H{
		"Title":     "Login",
		"Flash":     h.notifier.Pop(c),
		"Email":     email,
		"LoginPath": h.loginPath,
	})
}

func (h *handler) publish(c *gin.Context, action string) {
	h.publisher.Publish(models.ActivityMessage{
		Action:    action,
		Source:    models.SourceAuthHandler,
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	})
}
