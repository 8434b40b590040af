package blog

import (
	"context"
	"errors"
	"regexp"

	"blog-admin-svc/src/clients"
	"blog-admin-svc/src/internal/models"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	regexKey   = "$regex"
	optionsKey = "$options"
)

type Repository interface {
	List(ctx context.Context, req *ListRequest) ([]*Blog, int64, error)
	Featured(ctx context.Context, limit int) ([]*Blog, error)
	All(ctx context.Context) ([]*Blog, error)
	BySlug(ctx context.Context, slug string) (*Blog, error)
	ByID(ctx context.Context, id string) (*Blog, error)
	Related(ctx context.Context, excludeID string, limit int) ([]*Summary, error)
	Tags(ctx context.Context) ([]string, error)
	Insert(ctx context.Context, blog *Blog) error
	Update(ctx context.Context, id string, changes *Changes) error
	Delete(ctx context.Context, id string) error
	Stats(ctx context.Context) (*models.Stats, error)
	EnsureIndexes(ctx context.Context) error
}

type blogRepository struct {
	blogs *mongo.Collection
	tags  *mongo.Collection
}

func NewBlogRepository(mongoClient *clients.MongoDB, blogCollection, tagCollection string) Repository {
	return &blogRepository{
		blogs: mongoClient.Database.Collection(blogCollection),
		tags:  mongoClient.Database.Collection(tagCollection),
	}
}

var newestFirst = bson.D{{Key: "created_at", Value: -1}}

func (r *blogRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.blogs.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "slug", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "is_featured", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "tags", Value: 1}}},
	})
	if err != nil {
		logrus.WithError(err).Error("Failed to create blog indexes")
		return models.ErrDatabaseQuery
	}
	return nil
}

func (r *blogRepository) List(ctx context.Context, req *ListRequest) ([]*Blog, int64, error) {
	filter := bson.M{"is_featured": req.IsFeatured}

	if req.Search != "" {
		filter["title"] = bson.M{regexKey: regexp.QuoteMeta(req.Search), optionsKey: "i"}
	}

	if req.Tag != "" {
		filter["tags"] = req.Tag
	}

	totalCount, err := r.blogs.CountDocuments(ctx, filter)
	if err != nil {
		logrus.WithError(err).Error("Failed to count blogs")
		return nil, 0, models.ErrDatabaseQuery
	}

	skip := (req.Page - 1) * req.ItemsPerPage

	opts := options.Find().
		SetLimit(int64(req.ItemsPerPage)).
		SetSkip(int64(skip)).
		SetSort(newestFirst)

	blogs, err := r.find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}

	logrus.WithFields(logrus.Fields{
		"count": len(blogs),
		"total": totalCount,
		"page":  req.Page,
		"limit": req.ItemsPerPage,
	}).Debug("Retrieved blogs successfully")

	return blogs, totalCount, nil
}

func (r *blogRepository) Featured(ctx context.Context, limit int) ([]*Blog, error) {
	opts := options.Find().SetLimit(int64(limit)).SetSort(newestFirst)
	return r.find(ctx, bson.M{"is_featured": true}, opts)
}

func (r *blogRepository) All(ctx context.Context) ([]*Blog, error) {
	return r.find(ctx, bson.M{}, options.Find().SetSort(newestFirst))
}

func (r *blogRepository) BySlug(ctx context.Context, slug string) (*Blog, error) {
	return r.findOne(ctx, bson.M{"slug": slug})
}

func (r *blogRepository) ByID(ctx context.Context, id string) (*Blog, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, models.ErrInvalidParams
	}
	return r.findOne(ctx, bson.M{"_id": objectID})
}

func (r *blogRepository) Related(ctx context.Context, excludeID string, limit int) ([]*Summary, error) {
	objectID, err := primitive.ObjectIDFromHex(excludeID)
	if err != nil {
		return nil, models.ErrInvalidParams
	}

	opts := options.Find().
		SetLimit(int64(limit)).
		SetSort(newestFirst).
		SetProjection(bson.M{"title": 1, "slug": 1, "image_url": 1, "created_at": 1})

	cursor, err := r.blogs.Find(ctx, bson.M{"_id": bson.M{"$ne": objectID}}, opts)
	if err != nil {
		logrus.WithError(err).Error("Failed to find related blogs")
		return nil, models.ErrDatabaseQuery
	}
	defer cursor.Close(ctx)

	summaries := []*Summary{}
	if err := cursor.All(ctx, &summaries); err != nil {
		logrus.WithError(err).Error("Failed to decode related blogs")
		return nil, models.ErrDatabaseQuery
	}
	return summaries, nil
}

func (r *blogRepository) Tags(ctx context.Context) ([]string, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}}).SetProjection(bson.M{"name": 1})

	cursor, err := r.tags.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, models.ErrDatabaseQuery
	}
	defer cursor.Close(ctx)

	var docs []struct {
		Name string `bson:"name"`
	}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, models.ErrDatabaseQuery
	}

	tags := make([]string, 0, len(docs))
	for _, doc := range docs {
		tags = append(tags, doc.Name)
	}
	return tags, nil
}

func (r *blogRepository) Insert(ctx context.Context, blog *Blog) error {
	result, err := r.blogs.InsertOne(ctx, blog)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return models.ErrDuplicateRecord
		}
		logrus.WithError(err).WithField("slug", blog.Slug).Error("Failed to insert blog")
		return models.ErrDatabaseInsert
	}

	if id, ok := result.InsertedID.(primitive.ObjectID); ok {
		blog.ID = id
	}
	return nil
}

func (r *blogRepository) Update(ctx context.Context, id string, changes *Changes) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return models.ErrInvalidParams
	}

	in := changes.Input
	set := bson.M{
		"title":                  in.Title,
		"slug":                   in.Slug,
		"content":                in.Content,
		"category_id":            in.CategoryID,
		"tags":                   in.Tags,
		"is_featured":            in.IsFeatured,
		"is_published":           in.IsPublished,
		"meta_title":             in.MetaTitle,
		"meta_description":       in.MetaDescription,
		"keywords":               in.Keywords,
		"robots":                 in.Robots,
		"canonical_url":          in.CanonicalURL,
		"og_title":               in.OGTitle,
		"og_description":         in.OGDescription,
		"author_id":              authorRef(in.AuthorID),
		"enable_structured_data": in.EnableStructuredData,
		"updated_at":             changes.UpdatedAt,
	}
	if changes.ImageURL != nil {
		set["image_url"] = *changes.ImageURL
	}
	if changes.OGImageURL != nil {
		set["og_image_url"] = *changes.OGImageURL
	}

	result, err := r.blogs.UpdateOne(ctx, bson.M{"_id": objectID}, bson.M{"$set": set})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return models.ErrDuplicateRecord
		}
		logrus.WithError(err).WithField("blog_id", id).Error("Failed to update blog")
		return models.ErrDatabaseUpdate
	}

	if result.MatchedCount == 0 {
		return models.ErrRecordNotFound
	}
	return nil
}

func (r *blogRepository) Delete(ctx context.Context, id string) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return models.ErrInvalidParams
	}

	result, err := r.blogs.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		logrus.WithError(err).WithField("blog_id", id).Error("Failed to delete blog")
		return models.ErrDatabaseDelete
	}

	if result.DeletedCount == 0 {
		return models.ErrRecordNotFound
	}
	return nil
}

func (r *blogRepository) Stats(ctx context.Context) (*models.Stats, error) {
	total, err := r.count(ctx, bson.M{})
	if err != nil {
		return nil, err
	}

	published, err := r.count(ctx, bson.M{"is_published": true})
	if err != nil {
		return nil, err
	}

	featured, err := r.count(ctx, bson.M{"is_featured": true})
	if err != nil {
		return nil, err
	}

	return &models.Stats{
		Total:     total,
		Published: published,
		Drafts:    total - published,
		Featured:  featured,
	}, nil
}

func (r *blogRepository) count(ctx context.Context, filter bson.M) (int64, error) {
	count, err := r.blogs.CountDocuments(ctx, filter)
	if err != nil {
		logrus.WithError(err).Error("Failed to count blogs")
		return 0, models.ErrDatabaseQuery
	}
	return count, nil
}

func (r *blogRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*Blog, error) {
	cursor, err := r.blogs.Find(ctx, filter, opts)
	if err != nil {
		logrus.WithError(err).Error("Failed to find blogs")
		return nil, models.ErrDatabaseQuery
	}
	defer cursor.Close(ctx)

	blogs := []*Blog{}
	for cursor.Next(ctx) {
		var blog Blog
		if err := cursor.Decode(&blog); err != nil {
			logrus.WithError(err).Error("Failed to decode blog")
			continue
		}
		blogs = append(blogs, &blog)
	}

	if err := cursor.Err(); err != nil {
		logrus.WithError(err).Error("Cursor error")
		return nil, models.ErrDatabaseQuery
	}

	return blogs, nil
}

func (r *blogRepository) findOne(ctx context.Context, filter bson.M) (*Blog, error) {
	var blog Blog
	err := r.blogs.FindOne(ctx, filter).Decode(&blog)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.ErrRecordNotFound
		}
		logrus.WithError(err).Error("Failed to get blog")
		return nil, models.ErrDatabaseQuery
	}
	return &blog, nil
}
