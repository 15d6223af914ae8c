package storage

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"reelgen/internal/config"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.SetRGBA(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestParseFolder(t *testing.T) {
	tests := []struct {
		in, bucket, prefix string
	}{
		{"s3://lily-images/pages", "lily-images", "pages/"},
		{"s3://lily-images/reels/cartoon_images/", "lily-images", "reels/cartoon_images/"},
		{"s3://bucket", "bucket", ""},
		{"bucket/p", "bucket", "p/"},
	}
	for _, tt := range tests {
		bucket, prefix, err := ParseFolder(tt.in)
		if err != nil {
			t.Fatalf("ParseFolder(%q): %v", tt.in, err)
		}
		if bucket != tt.bucket || prefix != tt.prefix {
			t.Errorf("ParseFolder(%q) = %q, %q", tt.in, bucket, prefix)
		}
	}
	if _, _, err := ParseFolder("s3:///nobucket"); err == nil {
		t.Error("expected error for empty bucket")
	}
}

func TestPublicURL(t *testing.T) {
	got := PublicURL("lily-images", "videos/production_video.mp4")
	if got != "https://lily-images.s3.amazonaws.com/videos/production_video.mp4" {
		t.Fatalf("unexpected URL %s", got)
	}
}

func TestFilterImages(t *testing.T) {
	got := filterImages([]string{"p/img_10.JPG", "p/notes.txt", "p/img_2.png", "p/", "p/img_1.bmp"})
	want := []string{"p/img_1.bmp", "p/img_2.png", "p/img_10.JPG"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}
}

type fakeS3 struct {
	pages   [][]string
	objects map[string][]byte
	puts    map[string][]byte
	err     error
}

func (f *fakeS3) ListObjectsV2(_ context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	idx := 0
	if in.ContinuationToken != nil {
		for i := range f.pages {
			if aws.ToString(in.ContinuationToken) == string(rune('a'+i)) {
				idx = i
			}
		}
	}
	out := &s3.ListObjectsV2Output{}
	for _, k := range f.pages[idx] {
		out.Contents = append(out.Contents, s3types.Object{Key: aws.String(aws.ToString(in.Prefix) + k)})
	}
	if idx+1 < len(f.pages) {
		out.IsTruncated = aws.Bool(true)
		out.NextContinuationToken = aws.String(string(rune('a' + idx + 1)))
	}
	return out, nil
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	data, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, &smithy.GenericAPIError{Code: "NoSuchKey", Message: "missing"}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	if f.puts == nil {
		f.puts = map[string][]byte{}
	}
	f.puts[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)] = data
	return &s3.PutObjectOutput{}, nil
}

func TestS3ListPaginatesAndFilters(t *testing.T) {
	fake := &fakeS3{pages: [][]string{{"img_10.jpg", "readme.md"}, {"img_2.jpeg", "img_1.png"}}}
	store := newS3WithClient(fake, nil)

	keys, err := store.List(context.Background(), "s3://lily-images/pages")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	want := []string{"pages/img_1.png", "pages/img_2.jpeg", "pages/img_10.jpg"}
	if !reflect.DeepEqual(keys, want) {
		t.Fatalf("got %v want %v", keys, want)
	}
}

func TestS3ReadClassifiesErrors(t *testing.T) {
	fake := &fakeS3{objects: map[string][]byte{
		"ok.png":  pngBytes(t, 3, 2),
		"bad.png": []byte("garbage"),
	}}
	store := newS3WithClient(fake, nil)
	ctx := context.Background()

	img, err := store.Read(ctx, "b", "ok.png")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if img.Bounds().Dx() != 3 || img.Bounds().Dy() != 2 {
		t.Fatalf("unexpected bounds %v", img.Bounds())
	}
	if _, err := store.Read(ctx, "b", "bad.png"); !errors.Is(err, ErrDecode) {
		t.Fatalf("expected ErrDecode, got %v", err)
	}
	if _, err := store.Read(ctx, "b", "missing.png"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestS3UploadReturnsPublicURL(t *testing.T) {
	fake := &fakeS3{}
	store := newS3WithClient(fake, nil)
	local := filepath.Join(t.TempDir(), "reel.mp4")
	if err := os.WriteFile(local, []byte("video"), 0o644); err != nil {
		t.Fatal(err)
	}

	url, err := store.Upload(context.Background(), local, "lily-images", "videos/production_video.mp4")
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if url != PublicURL("lily-images", "videos/production_video.mp4") {
		t.Fatalf("unexpected URL %s", url)
	}
	if string(fake.puts["lily-images/videos/production_video.mp4"]) != "video" {
		t.Fatalf("object body not uploaded: %v", fake.puts)
	}
}

func TestLocalStore(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "bucket", "pages")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"img_2.png", "img_10.png", "img_1.png"} {
		if err := os.WriteFile(filepath.Join(dir, name), pngBytes(t, 2, 2), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.WriteFile(filepath.Join(dir, "broken.jpg"), []byte("nope"), 0o644); err != nil {
		t.Fatal(err)
	}

	store := NewLocal(root, nil)
	ctx := context.Background()

	keys, err := store.List(ctx, "s3://bucket/pages")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	want := []string{"pages/broken.jpg", "pages/img_1.png", "pages/img_2.png", "pages/img_10.png"}
	if !reflect.DeepEqual(keys, want) {
		t.Fatalf("got %v want %v", keys, want)
	}

	if _, err := store.Read(ctx, "bucket", "pages/img_1.png"); err != nil {
		t.Fatalf("Read: %v", err)
	}
	if _, err := store.Read(ctx, "bucket", "pages/broken.jpg"); !errors.Is(err, ErrDecode) {
		t.Fatalf("expected ErrDecode, got %v", err)
	}

	missing, err := store.List(ctx, "s3://nobucket/pages")
	if err != nil || len(missing) != 0 {
		t.Fatalf("missing bucket should list empty, got %v %v", missing, err)
	}

	src := filepath.Join(t.TempDir(), "reel.mp4")
	if err := os.WriteFile(src, []byte("video"), 0o644); err != nil {
		t.Fatal(err)
	}
	url, err := store.Upload(ctx, src, "out", "videos/reel.mp4")
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if !strings.HasPrefix(url, "file://") {
		t.Fatalf("unexpected url %s", url)
	}
	data, err := os.ReadFile(filepath.Join(root, "out", "videos", "reel.mp4"))
	if err != nil || string(data) != "video" {
		t.Fatalf("uploaded copy missing: %v", err)
	}
}

func TestMemoryStoreCounts(t *testing.T) {
	mem := NewMemory()
	mem.PutBytes("b", "p/img_1.png", pngBytes(t, 1, 1))
	mem.PutBytes("b", "q/img_1.png", pngBytes(t, 1, 1))
	ctx := context.Background()

	keys, err := mem.List(ctx, "s3://b/p")
	if err != nil || len(keys) != 1 {
		t.Fatalf("List: %v %v", keys, err)
	}
	if _, err := mem.Read(ctx, "b", keys[0]); err != nil {
		t.Fatalf("Read: %v", err)
	}
	if mem.Reads() != 1 || mem.Lists() != 1 {
		t.Fatalf("unexpected counters reads=%d lists=%d", mem.Reads(), mem.Lists())
	}
}

func TestOpenLocalBackend(t *testing.T) {
	root := t.TempDir()
	store, err := Open(context.Background(), config.StorageConfig{Backend: config.BackendLocal, LocalRoot: "assets"}, root, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	local, ok := store.(*Local)
	if !ok {
		t.Fatalf("expected *Local, got %T", store)
	}
	if local.root != filepath.Join(root, "assets") {
		t.Fatalf("unexpected root %s", local.root)
	}
	if _, err := Open(context.Background(), config.StorageConfig{Backend: "ftp"}, root, nil); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}
