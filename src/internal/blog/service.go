package blog

import (
	"context"
	"errors"
	"math"
	"mime/multipart"
	"time"

	"blog-admin-svc/src/clients"
	"blog-admin-svc/src/internal/cache"
	"blog-admin-svc/src/internal/config"
	"blog-admin-svc/src/internal/metrics"
	"blog-admin-svc/src/internal/models"
	"blog-admin-svc/src/internal/storage"

	"github.com/sirupsen/logrus"
)

type Service interface {
	GetBlogs(ctx context.Context, req *ListRequest) (*ListResponse, error)
	GetFeatured(ctx context.Context) ([]*Blog, error)
	GetAll(ctx context.Context) ([]*Blog, error)
	GetBySlug(ctx context.Context, slug string) (*Blog, error)
	GetByID(ctx context.Context, id string) (*Blog, error)
	GetRelated(ctx context.Context, excludeID string) ([]*Summary, error)
	GetTags(ctx context.Context) []string
	Create(ctx context.Context, in *Input) (*Blog, error)
	Update(ctx context.Context, id string, in *Input) error
	Delete(ctx context.Context, id string) error
	GetStats(ctx context.Context) (*models.Stats, error)
}

type blogService struct {
	repository   Repository
	cacheService cache.Service
	uploader     storage.Uploader
	publisher    clients.ActivityPublisher
	cfg          *config.SearchConfig
	now          func() time.Time
}

func NewBlogService(
	repository Repository,
	cacheService cache.Service,
	uploader storage.Uploader,
	publisher clients.ActivityPublisher,
	cfg *config.Configuration,
) Service {
	return &blogService{
		repository:   repository,
		cacheService: cacheService,
		uploader:     uploader,
		publisher:    publisher,
		cfg:          &cfg.Search,
		now:          time.Now,
	}
}

func (s *blogService) GetBlogs(ctx context.Context, req *ListRequest) (*ListResponse, error) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.ItemsPerPage <= 0 {
		req.ItemsPerPage = s.cfg.DefaultPageSize
	}
	if req.ItemsPerPage > s.cfg.MaxPageSize {
		req.ItemsPerPage = s.cfg.MaxPageSize
	}

	logrus.WithFields(logrus.Fields{
		"page":     req.Page,
		"limit":    req.ItemsPerPage,
		"search":   req.Search,
		"tag":      req.Tag,
		"featured": req.IsFeatured,
	}).Debug("Getting blogs")

	blogs, count, err := s.repository.List(ctx, req)
	if err != nil {
		logrus.WithError(err).Error("Failed to get blogs from repository")
		return nil, err
	}

	return &ListResponse{
		Blogs:      blogs,
		Count:      count,
		Page:       req.Page,
		TotalPages: int(math.Ceil(float64(count) / float64(req.ItemsPerPage))),
	}, nil
}

func (s *blogService) GetFeatured(ctx context.Context) ([]*Blog, error) {
	return s.repository.Featured(ctx, s.cfg.FeaturedLimit)
}

func (s *blogService) GetAll(ctx context.Context) ([]*Blog, error) {
	return s.repository.All(ctx)
}

func (s *blogService) GetBySlug(ctx context.Context, slug string) (*Blog, error) {
	return s.repository.BySlug(ctx, slug)
}

func (s *blogService) GetByID(ctx context.Context, id string) (*Blog, error) {
	return s.repository.ByID(ctx, id)
}

func (s *blogService) GetRelated(ctx context.Context, excludeID string) ([]*Summary, error) {
	return s.repository.Related(ctx, excludeID, s.cfg.RelatedLimit)
}

// GetTags never fails: a repository error yields DefaultTags.
func (s *blogService) GetTags(ctx context.Context) []string {
	if tags, err := s.cacheService.GetTags(ctx); err == nil && tags != nil {
		return tags
	}

	tags, err := s.repository.Tags(ctx)
	if err != nil {
		logrus.WithError(err).Warn("Failed to load tags, serving defaults")
		return DefaultTags
	}

	if err := s.cacheService.SaveTags(ctx, tags); err != nil {
		logrus.WithError(err).Warn("Failed to cache tags")
	}
	return tags
}

func (s *blogService) Create(ctx context.Context, in *Input) (*Blog, error) {
	now := s.now()

	imageURL := s.upload(ctx, in.ImageFile)
	if imageURL == "" {
		imageURL = PlaceholderImageURL
	}

	blog := &Blog{
		Title:                in.Title,
		Slug:                 in.Slug,
		Content:              in.Content,
		CategoryID:           in.CategoryID,
		Tags:                 in.Tags,
		IsFeatured:           in.IsFeatured,
		IsPublished:          in.IsPublished,
		ImageURL:             imageURL,
		MetaTitle:            in.MetaTitle,
		MetaDescription:      in.MetaDescription,
		Keywords:             in.Keywords,
		Robots:               in.Robots,
		CanonicalURL:         in.CanonicalURL,
		OGTitle:              in.OGTitle,
		OGDescription:        in.OGDescription,
		OGImageURL:           s.upload(ctx, in.OGImageFile),
		AuthorID:             authorRef(in.AuthorID),
		EnableStructuredData: in.EnableStructuredData,
		CreatedAt:            now,
		UpdatedAt:            now,
	}

	if err := s.repository.Insert(ctx, blog); err != nil {
		metrics.BlogWritesTotal.WithLabelValues("create", "error").Inc()
		logrus.WithError(err).WithField("slug", in.Slug).Error("Failed to create blog")
		return nil, err
	}

	metrics.BlogWritesTotal.WithLabelValues("create", "success").Inc()
	s.afterWrite(ctx, models.ActionBlogCreated, blog.ID.Hex(), blog.Slug)

	logrus.WithFields(logrus.Fields{
		"blog_id": blog.ID.Hex(),
		"slug":    blog.Slug,
	}).Info("Blog created successfully")

	return blog, nil
}

func (s *blogService) Update(ctx context.Context, id string, in *Input) error {
	changes := &Changes{
		Input:     in,
		UpdatedAt: s.now(),
	}
	if url := s.upload(ctx, in.ImageFile); url != "" {
		changes.ImageURL = &url
	}
	if url := s.upload(ctx, in.OGImageFile); url != "" {
		changes.OGImageURL = &url
	}

	if err := s.repository.Update(ctx, id, changes); err != nil {
		metrics.BlogWritesTotal.WithLabelValues("update", "error").Inc()
		logrus.WithError(err).WithField("blog_id", id).Error("Failed to update blog")
		return err
	}

	metrics.BlogWritesTotal.WithLabelValues("update", "success").Inc()
	s.afterWrite(ctx, models.ActionBlogUpdated, id, in.Slug)

	logrus.WithField("blog_id", id).Info("Blog updated successfully")
	return nil
}

func (s *blogService) Delete(ctx context.Context, id string) error {
	if err := s.repository.Delete(ctx, id); err != nil {
		metrics.BlogWritesTotal.WithLabelValues("delete", "error").Inc()
		logrus.WithError(err).WithField("blog_id", id).Error("Failed to delete blog")
		return err
	}

	metrics.BlogWritesTotal.WithLabelValues("delete", "success").Inc()
	s.afterWrite(ctx, models.ActionBlogDeleted, id, "")

	logrus.WithField("blog_id", id).Info("Blog deleted successfully")
	return nil
}

func (s *blogService) GetStats(ctx context.Context) (*models.Stats, error) {
	if stats, err := s.cacheService.GetStats(ctx); err == nil && stats != nil {
		return stats, nil
	}

	stats, err := s.repository.Stats(ctx)
	if err != nil {
		logrus.WithError(err).Error("Failed to get blog stats from repository")
		return nil, err
	}

	if err := s.cacheService.SaveStats(ctx, stats); err != nil {
		logrus.WithError(err).Warn("Failed to cache blog stats")
	}

	logrus.WithFields(logrus.Fields{
		"total":     stats.Total,
		"published": stats.Published,
		"drafts":    stats.Drafts,
		"featured":  stats.Featured,
	}).Debug("Blog statistics computed")

	return stats, nil
}

// upload returns "" when no file was submitted or the upload failed.
func (s *blogService) upload(ctx context.Context, file *multipart.FileHeader) string {
	if file == nil {
		return ""
	}

	url, err := s.uploader.Upload(ctx, file)
	if err != nil {
		if errors.Is(err, storage.ErrEmptyFile) {
			return ""
		}
		metrics.UploadsTotal.WithLabelValues("error").Inc()
		logrus.WithError(err).WithField("filename", file.Filename).Error("Image upload failed")
		return ""
	}

	metrics.UploadsTotal.WithLabelValues("success").Inc()
	return url
}

func (s *blogService) afterWrite(ctx context.Context, action, id, slug string) {
	if err := s.cacheService.InvalidateStats(ctx); err != nil {
		logrus.WithError(err).Warn("Failed to invalidate blog stats")
	}

	message := models.ActivityMessage{
		Action:    action,
		Source:    models.SourceBlogService,
		SubjectID: id,
		Timestamp: s.now(),
	}
	if slug != "" {
		message.Metadata = map[string]string{"slug": slug}
	}
	s.publisher.Publish(message)
}
