package blog

import (
	"fmt"
	"mime/multipart"
	"strings"

	"blog-admin-svc/src/internal/models"

	"github.com/gin-gonic/gin"
)

// ParseInput reads the admin blog form. Checkboxes are true only when
// submitted as "on"; tags and keywords are comma-separated.
func ParseInput(c *gin.Context) (*Input, error) {
	in := &Input{
		Title:                strings.TrimSpace(c.PostForm("title")),
		Slug:                 strings.TrimSpace(c.PostForm("slug")),
		Content:              c.PostForm("content"),
		CategoryID:           c.PostForm("category_id"),
		Tags:                 ParseList(c.PostForm("tags")),
		IsFeatured:           c.PostForm("is_featured") == "on",
		IsPublished:          c.PostForm("is_published") == "on",
		MetaTitle:            c.PostForm("meta_title"),
		MetaDescription:      c.PostForm("meta_description"),
		Keywords:             ParseList(c.PostForm("keywords")),
		Robots:               c.PostForm("robots"),
		CanonicalURL:         c.PostForm("canonical_url"),
		OGTitle:              c.PostForm("og_title"),
		OGDescription:        c.PostForm("og_description"),
		AuthorID:             strings.TrimSpace(c.PostForm("author_id")),
		EnableStructuredData: c.PostForm("enable_structured_data") == "on",
		ImageFile:            formFile(c, "image_file"),
		OGImageFile:          formFile(c, "og_image_file"),
	}

	if in.Title == "" {
		return in, fmt.Errorf("%w: title is required", models.ErrInvalidParams)
	}
	if in.Slug == "" {
		return in, fmt.Errorf("%w: slug is required", models.ErrInvalidParams)
	}
	return in, nil
}

func formFile(c *gin.Context, name string) *multipart.FileHeader {
	file, err := c.FormFile(name)
	if err != nil || file.Size == 0 {
		return nil
	}
	return file
}
