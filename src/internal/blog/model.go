package blog

import (
	"mime/multipart"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PlaceholderImageURL is used when a blog is created without a cover image.
const PlaceholderImageURL = "https://images.unsplash.com/photo-1499750310159-5b5f226932b7?auto=format&fit=crop&w=800&q=80"

type Blog struct {
	ID                   primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Title                string             `json:"title" bson:"title"`
	Slug                 string             `json:"slug" bson:"slug"`
	Content              string             `json:"content" bson:"content"`
	CategoryID           string             `json:"category_id" bson:"category_id"`
	Tags                 []string           `json:"tags" bson:"tags"`
	IsFeatured           bool               `json:"is_featured" bson:"is_featured"`
	IsPublished          bool               `json:"is_published" bson:"is_published"`
	ImageURL             string             `json:"image_url" bson:"image_url"`
	MetaTitle            string             `json:"meta_title" bson:"meta_title"`
	MetaDescription      string             `json:"meta_description" bson:"meta_description"`
	Keywords             []string           `json:"keywords" bson:"keywords"`
	Robots               string             `json:"robots" bson:"robots"`
	CanonicalURL         string             `json:"canonical_url" bson:"canonical_url"`
	OGTitle              string             `json:"og_title" bson:"og_title"`
	OGDescription        string             `json:"og_description" bson:"og_description"`
	OGImageURL           string             `json:"og_image_url,omitempty" bson:"og_image_url,omitempty"`
	AuthorID             *string            `json:"author_id" bson:"author_id"`
	EnableStructuredData bool               `json:"enable_structured_data" bson:"enable_structured_data"`
	CreatedAt            time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt            time.Time          `json:"updated_at" bson:"updated_at"`
}

// Summary is the reduced shape used for related-post lists.
type Summary struct {
	ID        primitive.ObjectID `json:"id" bson:"_id"`
	Title     string             `json:"title" bson:"title"`
	Slug      string             `json:"slug" bson:"slug"`
	ImageURL  string             `json:"image_url" bson:"image_url"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
}

// ListRequest represents a paginated, filtered listing
type ListRequest struct {
	Page         int    `json:"page" form:"page"`
	ItemsPerPage int    `json:"itemsPerPage" form:"itemsPerPage"`
	Search       string `json:"search" form:"search"`
	Tag          string `json:"tag" form:"tag"`
	IsFeatured   bool   `json:"isFeatured" form:"featured"`
}

// ListResponse represents one page of blogs
type ListResponse struct {
	Blogs      []*Blog `json:"blogs"`
	Count      int64   `json:"count"`
	Page       int     `json:"page"`
	TotalPages int     `json:"totalPages"`
}

// Input carries the submitted admin form.
type Input struct {
	Title                string
	Slug                 string
	Content              string
	CategoryID           string
	Tags                 []string
	IsFeatured           bool
	IsPublished          bool
	MetaTitle            string
	MetaDescription      string
	Keywords             []string
	Robots               string
	CanonicalURL         string
	OGTitle              string
	OGDescription        string
	AuthorID             string
	EnableStructuredData bool

	ImageFile   *multipart.FileHeader
	OGImageFile *multipart.FileHeader
}

// Changes is the set of fields written by an update. Image URLs are only
// replaced when a new file was uploaded.
type Changes struct {
	Input      *Input
	ImageURL   *string
	OGImageURL *string
	UpdatedAt  time.Time
}

// authorRef maps an empty author to a null reference.
func authorRef(id string) *string {
	if id == "" {
		return nil
	}
	return &id
}
