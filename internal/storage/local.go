package storage

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"

	"reelgen/internal/logx"
	"reelgen/internal/raster"
)

// Local is a Store over a directory tree laid out as <root>/<bucket>/<key>.
// It lets a workspace run without network access.
type Local struct {
	root   string
	logger *log.Logger
}

// NewLocal returns a directory-backed store rooted at root.
func NewLocal(root string, logger *log.Logger) *Local {
	return &Local{root: root, logger: logx.OrDiscard(logger)}
}

func (l *Local) objectPath(bucket, key string) string {
	return filepath.Join(l.root, bucket, filepath.FromSlash(key))
}

// List implements Store.
func (l *Local) List(_ context.Context, folder string) ([]string, error) {
	bucket, prefix, err := ParseFolder(folder)
	if err != nil {
		return nil, err
	}
	base := filepath.Join(l.root, bucket)

	var keys []string
	err = filepath.WalkDir(base, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return fs.SkipAll
			}
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(base, p)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", folder, err)
	}

	images := filterImages(keys)
	l.logger.Printf("listed %d images under %s", len(images), folder)
	return images, nil
}

// Read implements Store.
func (l *Local) Read(_ context.Context, bucket, key string) (*image.RGBA, error) {
	file, err := os.Open(l.objectPath(bucket, key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s/%s: %w", bucket, key, ErrNotFound)
		}
		return nil, err
	}
	defer file.Close()

	img, err := raster.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("%s/%s: %w: %v", bucket, key, ErrDecode, err)
	}
	return img, nil
}

// Upload implements Store. The returned address is a file:// URL.
func (l *Local) Upload(_ context.Context, localPath, bucket, key string) (string, error) {
	dest := l.objectPath(bucket, key)
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}
	if err := copyFile(localPath, dest); err != nil {
		return "", fmt.Errorf("copy upload: %w", err)
	}
	l.logger.Printf("copied %s to %s", localPath, dest)
	return "file://" + filepath.ToSlash(dest), nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	tmp := dst + ".tmp"
	out, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(tmp)
		return err
	}
	if err := out.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, dst)
}
