package storage

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"strings"
	"sync"

	"reelgen/internal/raster"
)

// Memory is an in-process Store. Objects are kept encoded so Read exercises
// the same decode path as the remote stores. It counts reads and uploads so
// callers can assert on access patterns.
type Memory struct {
	mu      sync.Mutex
	objects map[string][]byte
	uploads map[string][]byte
	reads   int
	lists   int
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{objects: map[string][]byte{}, uploads: map[string][]byte{}}
}

func memoryKey(bucket, key string) string { return bucket + "/" + key }

// PutImage PNG-encodes img and stores it under bucket/key.
func (m *Memory) PutImage(bucket, key string, img image.Image) error {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return err
	}
	m.PutBytes(bucket, key, buf.Bytes())
	return nil
}

// PutBytes stores raw object contents.
func (m *Memory) PutBytes(bucket, key string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[memoryKey(bucket, key)] = data
}

// List implements Store.
func (m *Memory) List(_ context.Context, folder string) ([]string, error) {
	bucket, prefix, err := ParseFolder(folder)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lists++

	var keys []string
	for k := range m.objects {
		b, key, _ := strings.Cut(k, "/")
		if b == bucket && strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	return filterImages(keys), nil
}

// Read implements Store.
func (m *Memory) Read(_ context.Context, bucket, key string) (*image.RGBA, error) {
	m.mu.Lock()
	m.reads++
	data, ok := m.objects[memoryKey(bucket, key)]
	m.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("%s/%s: %w", bucket, key, ErrNotFound)
	}
	img, err := raster.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s/%s: %w: %v", bucket, key, ErrDecode, err)
	}
	return img, nil
}

// Upload implements Store.
func (m *Memory) Upload(_ context.Context, localPath, bucket, key string) (string, error) {
	data, err := os.ReadFile(localPath)
	if err != nil {
		return "", fmt.Errorf("read upload source: %w", err)
	}
	m.mu.Lock()
	m.uploads[memoryKey(bucket, key)] = data
	m.mu.Unlock()
	return PublicURL(bucket, key), nil
}

// Reads returns how many Read calls have been made.
func (m *Memory) Reads() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reads
}

// Lists returns how many List calls have been made.
func (m *Memory) Lists() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lists
}

// Uploaded returns the bytes uploaded to bucket/key, if any.
func (m *Memory) Uploaded(bucket, key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.uploads[memoryKey(bucket, key)]
	return data, ok
}

// UploadCount returns the number of distinct uploaded objects.
func (m *Memory) UploadCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.uploads)
}
