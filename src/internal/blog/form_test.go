package blog

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"blog-admin-svc/src/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func formContext(t *testing.T, values url.Values) *gin.Context {
	t.Helper()
	gin.SetMode(gin.TestMode)

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodPost, "/admin/blogs", strings.NewReader(values.Encode()))
	c.Request.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c
}

func TestParseList(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  []string
	}{
		{name: "empty", value: "", want: []string{}},
		{name: "single", value: "go", want: []string{"go"}},
		{name: "trims and drops blanks", value: " go , ,web,  ", want: []string{"go", "web"}},
		{name: "only commas", value: ",,,", want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseList(tt.value))
		})
	}
}

func TestParseInput_Fields(t *testing.T) {
	c := formContext(t, url.Values{
		"title":                  {"  Hello  "},
		"slug":                   {"hello"},
		"content":                {"<p>body</p>"},
		"tags":                   {"Physics, Biology"},
		"keywords":               {"exam,board"},
		"is_featured":            {"on"},
		"is_published":           {"true"},
		"enable_structured_data": {"on"},
		"author_id":              {""},
	})

	in, err := ParseInput(c)
	require.NoError(t, err)

	assert.Equal(t, "Hello", in.Title)
	assert.Equal(t, "hello", in.Slug)
	assert.Equal(t, []string{"Physics", "Biology"}, in.Tags)
	assert.Equal(t, []string{"exam", "board"}, in.Keywords)
	assert.True(t, in.IsFeatured)
	assert.False(t, in.IsPublished, "only \"on\" marks a checkbox as checked")
	assert.True(t, in.EnableStructuredData)
	assert.Empty(t, in.AuthorID)
	assert.Nil(t, in.ImageFile)
	assert.Nil(t, in.OGImageFile)
}

func TestParseInput_RequiredFields(t *testing.T) {
	tests := []struct {
		name   string
		values url.Values
	}{
		{name: "missing title", values: url.Values{"slug": {"s"}}},
		{name: "blank slug", values: url.Values{"title": {"t"}, "slug": {"   "}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseInput(formContext(t, tt.values))
			assert.ErrorIs(t, err, models.ErrInvalidParams)
		})
	}
}

func TestParseInput_MultipartFile(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("title", "t"))
	require.NoError(t, mw.WriteField("slug", "s"))
	part, err := mw.CreateFormFile("image_file", "cover.png")
	require.NoError(t, err)
	_, err = part.Write([]byte("png-bytes"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodPost, "/admin/blogs", &body)
	c.Request.Header.Set("Content-Type", mw.FormDataContentType())

	in, err := ParseInput(c)
	require.NoError(t, err)
	require.NotNil(t, in.ImageFile)
	assert.Equal(t, "cover.png", in.ImageFile.Filename)
	assert.Nil(t, in.OGImageFile)
}
