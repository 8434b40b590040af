package storage

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// LocalUploader writes files to a directory served under BaseURL.
type LocalUploader struct {
	basePath string
	baseURL  string
	maxSize  int64
	now      func() time.Time
}

func NewLocalUploader(basePath, baseURL string, maxSize int64) (*LocalUploader, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}

	return &LocalUploader{
		basePath: basePath,
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		maxSize:  maxSize,
		now:      time.Now,
	}, nil
}

func (u *LocalUploader) Upload(_ context.Context, file *multipart.FileHeader) (string, error) {
	src, ct, err := open(file, u.maxSize)
	if err != nil {
		return "", &UploadError{Op: "Upload", Err: err}
	}
	defer src.Close()

	key := objectKey(ct, u.now())
	dst, err := os.Create(filepath.Join(u.basePath, key))
	if err != nil {
		return "", &UploadError{Op: "Upload", Key: key, Err: err}
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		_ = os.Remove(dst.Name())
		return "", &UploadError{Op: "Upload", Key: key, Err: err}
	}

	logrus.WithFields(logrus.Fields{
		"key":          key,
		"size":         file.Size,
		"content_type": ct,
	}).Debug("Stored upload on local disk")

	return u.baseURL + "/" + key, nil
}
