package storage

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strings"
)

// sniffLen is the number of bytes http.DetectContentType considers.
const sniffLen = 512

// AllowedImageTypes are the formats accepted for blog images. SVG is not
// allowed since it can carry script.
var AllowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// IsAllowedImageType checks a content type against AllowedImageTypes,
// ignoring parameters and case.
func IsAllowedImageType(contentType string) bool {
	return AllowedImageTypes[baseType(contentType)]
}

// sniffContentType reads the head of the file and returns its detected type.
// The declared part header and the file name are not trusted. The file is
// rewound before returning.
func sniffContentType(f multipart.File) (string, error) {
	head := make([]byte, sniffLen)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return "", fmt.Errorf("failed to read upload: %w", err)
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("failed to rewind upload: %w", err)
	}

	ct := baseType(http.DetectContentType(head[:n]))
	if !IsAllowedImageType(ct) {
		return "", ErrUnsupportedType
	}
	return ct, nil
}

// extensionForContentType returns the file extension stored objects get for
// a validated type.
func extensionForContentType(contentType string) string {
	extensions := map[string]string{
		"image/jpeg": ".jpg",
		"image/png":  ".png",
		"image/gif":  ".gif",
		"image/webp": ".webp",
	}
	if ext, ok := extensions[baseType(contentType)]; ok {
		return ext
	}

	exts, err := mime.ExtensionsByType(contentType)
	if err == nil && len(exts) > 0 {
		return exts[0]
	}
	return ".bin"
}

func baseType(contentType string) string {
	return strings.TrimSpace(strings.ToLower(strings.Split(contentType, ";")[0]))
}
