// Package storage lists, reads and uploads the objects a generation run
// works with. Folders are addressed as s3://bucket/prefix regardless of the
// backend.
package storage

import (
	"context"
	"errors"
	"fmt"
	"image"
	"path"
	"strings"

	"reelgen/internal/assets"
)

// Store is the asset store a generation run talks to.
type Store interface {
	// List returns the image object keys under folder, filtered by
	// extension and naturally sorted.
	List(ctx context.Context, folder string) ([]string, error)
	// Read fetches and decodes one object. Decode failures wrap ErrDecode.
	Read(ctx context.Context, bucket, key string) (*image.RGBA, error)
	// Upload stores a local file and returns its public address.
	Upload(ctx context.Context, localPath, bucket, key string) (string, error)
}

var (
	// ErrDecode marks an object that exists but is not a readable image.
	ErrDecode = errors.New("decode failure")
	// ErrNotFound marks a missing object.
	ErrNotFound = errors.New("object not found")
)

// ImageExtensions are the object suffixes List keeps.
var ImageExtensions = []string{".jpg", ".jpeg", ".png", ".bmp", ".webp"}

// ParseFolder splits "s3://bucket/prefix" into bucket and a prefix that
// always ends in "/" (or is empty).
func ParseFolder(folder string) (bucket, prefix string, err error) {
	trimmed := strings.TrimPrefix(strings.TrimSpace(folder), "s3://")
	bucket, prefix, _ = strings.Cut(trimmed, "/")
	if bucket == "" {
		return "", "", fmt.Errorf("folder %q has no bucket", folder)
	}
	prefix = strings.TrimRight(prefix, "/")
	if prefix != "" {
		prefix += "/"
	}
	return bucket, prefix, nil
}

// PublicURL is the virtual-hosted address of an uploaded object.
func PublicURL(bucket, key string) string {
	return fmt.Sprintf("https://%s.s3.amazonaws.com/%s", bucket, key)
}

// IsImageKey reports whether key carries one of ImageExtensions.
func IsImageKey(key string) bool {
	ext := strings.ToLower(path.Ext(key))
	for _, allowed := range ImageExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}

func filterImages(keys []string) []string {
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if IsImageKey(k) {
			out = append(out, k)
		}
	}
	assets.SortNatural(out)
	return out
}
