package blog

import (
	"errors"
	"net/http"

	"blog-admin-svc/src/internal/config"
	"blog-admin-svc/src/internal/models"
	"blog-admin-svc/src/internal/notify"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const (
	adminListPath   = "/admin/blogs"
	adminLogoutPath = "/admin/logout"

	listTemplate = "admin_blogs.html"
	formTemplate = "admin_form.html"
)

// AdminHandler serves the guarded HTML pages of the blog admin.
type AdminHandler interface {
	List(c *gin.Context)
	New(c *gin.Context)
	Edit(c *gin.Context)
	Create(c *gin.Context)
	Update(c *gin.Context)
	Delete(c *gin.Context)
}

type adminHandler struct {
	handler
	notifier notify.Notifier
}

func NewAdminHandler(cfg *config.Configuration, service Service, notifier notify.Notifier) AdminHandler {
	return &adminHandler{
		handler:  handler{config: cfg, service: service},
		notifier: notifier,
	}
}

func (h *adminHandler) List(c *gin.Context) {
	ctx, cancel := h.timeout(c)
	defer cancel()

	blogs, err := h.service.GetAll(ctx)
	if err != nil {
		logrus.WithError(err).Error("Failed to load blogs for admin list")
		h.notifier.Error(c, "Failed to load blogs")
		blogs = []*Blog{}
	}

	stats, err := h.service.GetStats(ctx)
	if err != nil {
		stats = &models.Stats{}
	}

	c.HTML(http.StatusOK, listTemplate, gin.H{
		"Title":      "Blogs",
		"Flash":      h.notifier.Pop(c),
		"Blogs":      blogs,
		"Stats":      stats,
		"LogoutPath": adminLogoutPath,
	})
}

func (h *adminHandler) New(c *gin.Context) {
	h.renderForm(c, http.StatusOK, &Blog{}, adminListPath)
}

func (h *adminHandler) Edit(c *gin.Context) {
	ctx, cancel := h.timeout(c)
	defer cancel()

	id := c.Param("id")
	blog, err := h.service.GetByID(ctx, id)
	if err != nil {
		h.redirectWithError(c, err, "Blog not found")
		return
	}

	h.renderForm(c, http.StatusOK, blog, adminListPath+"/"+id)
}

func (h *adminHandler) Create(c *gin.Context) {
	ctx, cancel := h.timeout(c)
	defer cancel()

	in, err := ParseInput(c)
	if err != nil {
		h.notifier.Error(c, "Title and slug are required")
		h.renderForm(c, http.StatusBadRequest, inputPreview(in), adminListPath)
		return
	}

	if _, err := h.service.Create(ctx, in); err != nil {
		h.notifier.Error(c, failureMessage(err, "Failed to create blog"))
		h.renderForm(c, errorStatus(err), inputPreview(in), adminListPath)
		return
	}

	h.notifier.Success(c, "Blog created successfully")
	c.Redirect(http.StatusSeeOther, adminListPath)
}

func (h *adminHandler) Update(c *gin.Context) {
	ctx, cancel := h.timeout(c)
	defer cancel()

	id := c.Param("id")
	action := adminListPath + "/" + id

	in, err := ParseInput(c)
	if err != nil {
		h.notifier.Error(c, "Title and slug are required")
		h.renderForm(c, http.StatusBadRequest, inputPreview(in), action)
		return
	}

	if err := h.service.Update(ctx, id, in); err != nil {
		if errors.Is(err, models.ErrRecordNotFound) || errors.Is(err, models.ErrInvalidParams) {
			h.redirectWithError(c, err, "Blog not found")
			return
		}
		h.notifier.Error(c, failureMessage(err, "Failed to update blog"))
		h.renderForm(c, errorStatus(err), inputPreview(in), action)
		return
	}

	h.notifier.Success(c, "Blog updated successfully")
	c.Redirect(http.StatusSeeOther, adminListPath)
}

func (h *adminHandler) Delete(c *gin.Context) {
	ctx, cancel := h.timeout(c)
	defer cancel()

	if err := h.service.Delete(ctx, c.Param("id")); err != nil {
		h.redirectWithError(c, err, "Failed to delete blog")
		return
	}

	h.notifier.Success(c, "Blog deleted successfully")
	c.Redirect(http.StatusSeeOther, adminListPath)
}

func (h *adminHandler) renderForm(c *gin.Context, status int, blog *Blog, action string) {
	ctx, cancel := h.timeout(c)
	defer cancel()

	title := "Create Blog"
	if action != adminListPath {
		title = "Edit Blog"
	}

	c.HTML(status, formTemplate, gin.H{
		"Title":  title,
		"Flash":  h.notifier.Pop(c),
		"Blog":   blog,
		"Action": action,
		"Tags":   h.service.GetTags(ctx),
	})
}

func (h *adminHandler) redirectWithError(c *gin.Context, err error, message string) {
	logrus.WithError(err).WithField("blog_id", c.Param("id")).Warn(message)
	h.notifier.Error(c, message)
	c.Redirect(http.StatusSeeOther, adminListPath)
}

func failureMessage(err error, fallback string) string {
	if errors.Is(err, models.ErrDuplicateRecord) {
		return "A blog with this slug already exists"
	}
	return fallback
}

// inputPreview refills the form with the values the admin submitted.
func inputPreview(in *Input) *Blog {
	if in == nil {
		return &Blog{}
	}
	return &Blog{
		Title:                in.Title,
		Slug:                 in.Slug,
		Content:              in.Content,
		CategoryID:           in.CategoryID,
		Tags:                 in.Tags,
		IsFeatured:           in.IsFeatured,
		IsPublished:          in.IsPublished,
		MetaTitle:            in.MetaTitle,
		MetaDescription:      in.MetaDescription,
		Keywords:             in.Keywords,
		Robots:               in.Robots,
		CanonicalURL:         in.CanonicalURL,
		OGTitle:              in.OGTitle,
		OGDescription:        in.OGDescription,
		AuthorID:             authorRef(in.AuthorID),
		EnableStructuredData: in.EnableStructuredData,
	}
}
