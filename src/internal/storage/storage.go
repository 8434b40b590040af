// Package storage uploads blog images and returns their public URLs.
//
// Implementations:
//   - LocalUploader: files on the local filesystem, served by the HTTP server
//   - S3Uploader: any S3-compatible bucket (AWS S3, Cloudflare R2, MinIO)
package storage

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrEmptyFile is returned when no file content was submitted.
	ErrEmptyFile = errors.New("empty file")

	// ErrTooLarge is returned when a file exceeds the configured limit.
	ErrTooLarge = errors.New("file exceeds maximum size")

	// ErrUnsupportedType is returned for files that are not images.
	ErrUnsupportedType = errors.New("unsupported content type")
)

// UploadError wraps upload failures with the operation and key involved.
type UploadError struct {
	Op  string
	Key string
	Err error
}

func (e *UploadError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("storage %s %q: %v", e.Op, e.Key, e.Err)
	}
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *UploadError) Unwrap() error {
	return e.Err
}

// Uploader stores a file and returns the URL it is publicly reachable at.
type Uploader interface {
	Upload(ctx context.Context, file *multipart.FileHeader) (string, error)
}

// objectKey builds "<unix-millis>-<random>.<ext>" with the extension of the
// detected content type, never the one from the client's file name.
func objectKey(contentType string, now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("%d-%s%s", now.UnixMilli(), suffix, extensionForContentType(contentType))
}

// open validates the file and returns it with its sniffed content type.
func open(file *multipart.FileHeader, maxSize int64) (multipart.File, string, error) {
	if file == nil || file.Size == 0 {
		return nil, "", ErrEmptyFile
	}
	if maxSize > 0 && file.Size > maxSize {
		return nil, "", ErrTooLarge
	}

	f, err := file.Open()
	if err != nil {
		return nil, "", fmt.Errorf("failed to open upload: %w", err)
	}

	ct, err := sniffContentType(f)
	if err != nil {
		_ = f.Close()
		return nil, "", err
	}
	return f, ct, nil
}
