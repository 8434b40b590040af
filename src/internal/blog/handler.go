package blog

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"blog-admin-svc/src/internal/config"
	"blog-admin-svc/src/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Handler serves the JSON API: public reads and guarded admin reads.
type Handler interface {
	ListBlogs(c *gin.Context)
	FeaturedBlogs(c *gin.Context)
	BlogBySlug(c *gin.Context)
	RelatedBlogs(c *gin.Context)
	Tags(c *gin.Context)
	AdminListBlogs(c *gin.Context)
	AdminStats(c *gin.Context)
}

type handler struct {
	config  *config.Configuration
	service Service
}

func NewHandler(cfg *config.Configuration, service Service) Handler {
	return &handler{
		config:  cfg,
		service: service,
	}
}

func (h *handler) ListBlogs(c *gin.Context) {
	ctx, cancel := h.timeout(c)
	defer cancel()

	req := &ListRequest{
		Page:         parseIntParam(c, "page", 1),
		ItemsPerPage: parseIntParam(c, "itemsPerPage", h.config.Search.DefaultPageSize),
		Search:       c.Query("search"),
		Tag:          c.Query("tag"),
		IsFeatured:   c.Query("featured") == "true",
	}

	response, err := h.service.GetBlogs(ctx, req)
	if err != nil {
		h.sendError(c, err, "Failed to retrieve blogs")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    response,
	})
}

func (h *handler) FeaturedBlogs(c *gin.Context) {
	ctx, cancel := h.timeout(c)
	defer cancel()

	blogs, err := h.service.GetFeatured(ctx)
	if err != nil {
		h.sendError(c, err, "Failed to retrieve featured blogs")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    blogs,
	})
}

func (h *handler) BlogBySlug(c *gin.Context) {
	ctx, cancel := h.timeout(c)
	defer cancel()

	blog, err := h.service.GetBySlug(ctx, c.Param("slug"))
	if err != nil {
		h.sendError(c, err, "Failed to retrieve blog")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    blog,
	})
}

func (h *handler) RelatedBlogs(c *gin.Context) {
	ctx, cancel := h.timeout(c)
	defer cancel()

	blog, err := h.service.GetBySlug(ctx, c.Param("slug"))
	if err != nil {
		h.sendError(c, err, "Failed to retrieve blog")
		return
	}

	related, err := h.service.GetRelated(ctx, blog.ID.Hex())
	if err != nil {
		h.sendError(c, err, "Failed to retrieve related blogs")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    related,
	})
}

func (h *handler) Tags(c *gin.Context) {
	ctx, cancel := h.timeout(c)
	defer cancel()

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    h.service.GetTags(ctx),
	})
}

func (h *handler) AdminListBlogs(c *gin.Context) {
	ctx, cancel := h.timeout(c)
	defer cancel()

	blogs, err := h.service.GetAll(ctx)
	if err != nil {
		h.sendError(c, err, "Failed to retrieve blogs")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    blogs,
	})
}

func (h *handler) AdminStats(c *gin.Context) {
	ctx, cancel := h.timeout(c)
	defer cancel()

	stats, err := h.service.GetStats(ctx)
	if err != nil {
		h.sendError(c, err, "Failed to retrieve blog statistics")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    stats,
	})
}

func (h *handler) timeout(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), time.Duration(h.config.App.Timeout)*time.Second)
}

func (h *handler) sendError(c *gin.Context, err error, message string) {
	status := errorStatus(err)
	if status == http.StatusInternalServerError {
		logrus.WithError(err).WithField("path", c.Request.URL.Path).Error(message)
	}

	c.JSON(status, gin.H{
		"success": false,
		"error":   message,
		"message": err.Error(),
	})
}

// errorStatus maps repository errors to HTTP status codes.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, models.ErrRecordNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrInvalidParams):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrDuplicateRecord):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func parseIntParam(c *gin.Context, param string, defaultValue int) int {
	value := c.Query(param)
	if value == "" {
		return defaultValue
	}

	parsed, err := strconv.Atoi(value)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"param": param,
			"value": value,
			"error": err,
		}).Warn("Invalid integer parameter, using default")

		return defaultValue
	}
	return parsed
}
