package blog

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"blog-admin-svc/src/internal/config"
	"blog-admin-svc/src/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newAPIRouter(f *serviceFixture) *gin.Engine {
	gin.SetMode(gin.TestMode)
	cfg := &config.Configuration{
		App:    config.Application{Timeout: 5},
		Search: config.SearchConfig{DefaultPageSize: 6, MaxPageSize: 100},
	}
	h := NewHandler(cfg, f.service)

	router := gin.New()
	api := router.Group("/api/v1")
	api.GET("/blogs", h.ListBlogs)
	api.GET("/blogs/:slug", h.BlogBySlug)
	api.GET("/blogs/:slug/related", h.RelatedBlogs)
	api.GET("/tags", h.Tags)
	return router
}

func TestListBlogs_QueryParameters(t *testing.T) {
	f := newServiceFixture()
	var got *ListRequest
	f.repo.ListFunc = func(ctx context.Context, req *ListRequest) ([]*Blog, int64, error) {
		got = req
		return []*Blog{}, 0, nil
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/blogs?page=2&itemsPerPage=bad&search=go&tag=Physics&featured=true", nil)
	newAPIRouter(f).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, got)
	assert.Equal(t, 2, got.Page)
	assert.Equal(t, 6, got.ItemsPerPage)
	assert.Equal(t, "go", got.Search)
	assert.Equal(t, "Physics", got.Tag)
	assert.True(t, got.IsFeatured)
}

func TestBlogBySlug_StatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{name: "found", status: http.StatusOK},
		{name: "missing", err: models.ErrRecordNotFound, status: http.StatusNotFound},
		{name: "database fault", err: models.ErrDatabaseQuery, status: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newServiceFixture()
			f.repo.BySlugFunc = func(ctx context.Context, slug string) (*Blog, error) {
				if tt.err != nil {
					return nil, tt.err
				}
				return &Blog{Slug: slug}, nil
			}

			w := httptest.NewRecorder()
			newAPIRouter(f).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/blogs/hello", nil))
			assert.Equal(t, tt.status, w.Code)
		})
	}
}

func TestRelatedBlogs_ExcludesCurrent(t *testing.T) {
	f := newServiceFixture()
	id := primitive.NewObjectID()
	f.repo.BySlugFunc = func(ctx context.Context, slug string) (*Blog, error) {
		return &Blog{ID: id, Slug: slug}, nil
	}
	var excluded string
	f.repo.RelatedFunc = func(ctx context.Context, excludeID string, limit int) ([]*Summary, error) {
		excluded = excludeID
		return []*Summary{{Slug: "other"}}, nil
	}

	w := httptest.NewRecorder()
	newAPIRouter(f).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/blogs/hello/related", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, id.Hex(), excluded)
}

func TestTags_NeverFails(t *testing.T) {
	f := newServiceFixture()
	f.repo.TagsFunc = func(ctx context.Context) ([]string, error) {
		return nil, models.ErrDatabaseQuery
	}

	w := httptest.NewRecorder()
	newAPIRouter(f).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/tags", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Data []string `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, DefaultTags, body.Data)
}
