package storage

import (
	"context"
	"fmt"
	"mime/multipart"
	"strings"
	"time"

	"blog-admin-svc/src/internal/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/sirupsen/logrus"
)

// S3Uploader stores files in an S3-compatible bucket with a public-read ACL.
type S3Uploader struct {
	client    *s3.Client
	bucket    string
	publicURL string
	maxSize   int64
	now       func() time.Time
}

func NewS3Uploader(cfg *config.S3Storage, maxSize int64) *S3Uploader {
	region := cfg.Region
	if region == "" {
		region = "auto"
	}

	awsCfg := aws.Config{
		Region:      region,
		Credentials: credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	publicURL := strings.TrimSuffix(cfg.PublicURL, "/")
	if publicURL == "" {
		publicURL = defaultPublicURL(cfg.Endpoint, cfg.Bucket, region)
	}

	logrus.WithFields(logrus.Fields{
		"bucket":     cfg.Bucket,
		"endpoint":   cfg.Endpoint,
		"public_url": publicURL,
	}).Info("Initialized S3 storage")

	return &S3Uploader{
		client:    client,
		bucket:    cfg.Bucket,
		publicURL: publicURL,
		maxSize:   maxSize,
		now:       time.Now,
	}
}

func defaultPublicURL(endpoint, bucket, region string) string {
	if endpoint != "" {
		return fmt.Sprintf("%s/%s", strings.TrimSuffix(endpoint, "/"), bucket)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com", bucket, region)
}

func (u *S3Uploader) Upload(ctx context.Context, file *multipart.FileHeader) (string, error) {
	src, ct, err := open(file, u.maxSize)
	if err != nil {
		return "", &UploadError{Op: "Upload", Err: err}
	}
	defer src.Close()

	key := objectKey(ct, u.now())

	result, err := u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(u.bucket),
		Key:           aws.String(key),
		Body:          src,
		ContentType:   aws.String(ct),
		ContentLength: aws.Int64(file.Size),
		ACL:           types.ObjectCannedACLPublicRead,
	})
	if err != nil {
		return "", &UploadError{Op: "Upload", Key: key, Err: err}
	}

	logrus.WithFields(logrus.Fields{
		"key":          key,
		"etag":         aws.ToString(result.ETag),
		"content_type": ct,
	}).Debug("Stored upload in S3")

	return u.publicURL + "/" + key, nil
}
