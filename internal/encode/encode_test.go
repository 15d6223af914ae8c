package encode

import (
	"bytes"
	"image"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
)

func frame(w, h int, shade uint8) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = shade, shade/2, 255-shade, 255
	}
	return img
}

func TestOpenRejectsBadOptions(t *testing.T) {
	dir := t.TempDir()
	if _, err := Open(Options{Path: filepath.Join(dir, "a.avi"), Width: 0, Height: 10, FPS: 10}); err == nil {
		t.Error("expected error for zero width")
	}
	if _, err := Open(Options{Path: filepath.Join(dir, "a.avi"), Width: 10, Height: 10, FPS: 0}); err == nil {
		t.Error("expected error for zero fps")
	}
	if _, err := Open(Options{Path: filepath.Join(dir, "a.avi"), Width: 10, Height: 10, FPS: 10, Backend: "gif"}); err == nil {
		t.Error("expected error for unknown backend")
	}
}

func TestMJPEGWritesAVI(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "reel.avi")
	sink, err := Open(Options{Path: path, Width: 32, Height: 48, FPS: 10, Quality: 80, Backend: "mjpeg"})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	for i := 0; i < 5; i++ {
		if err := sink.Write(frame(32, 48, uint8(i*40))); err != nil {
			t.Fatalf("Write %d: %v", i, err)
		}
	}
	if err := sink.Write(frame(16, 16, 0)); err == nil {
		t.Fatal("expected size mismatch error")
	}
	if err := sink.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := sink.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
	if got := sink.(*MJPEG).Frames(); got != 5 {
		t.Fatalf("expected 5 frames, got %d", got)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(data, []byte("RIFF")) || !bytes.Contains(data[:16], []byte("AVI ")) {
		t.Fatalf("output is not an AVI container: % x", data[:16])
	}
	if err := sink.Write(frame(32, 48, 0)); err == nil {
		t.Fatal("expected write after close to fail")
	}
}

func TestQualityToCRF(t *testing.T) {
	tests := map[int]int{100: 11, 75: 21, 1: 51, 0: 21, 500: 21}
	for q, want := range tests {
		if got := qualityToCRF(q); got != want {
			t.Errorf("qualityToCRF(%d) = %d, want %d", q, got, want)
		}
	}
}

func TestFFmpegSinkProducesFile(t *testing.T) {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		t.Skip("ffmpeg not installed")
	}
	path := filepath.Join(t.TempDir(), "reel.mp4")
	sink, err := Open(Options{Path: path, Width: 64, Height: 64, FPS: 10, Quality: 60, Backend: "ffmpeg"})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	for i := 0; i < 10; i++ {
		if err := sink.Write(frame(64, 64, uint8(i*20))); err != nil {
			t.Fatalf("Write %d: %v", i, err)
		}
	}
	if err := sink.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil || info.Size() == 0 {
		t.Fatalf("expected non-empty output, err=%v", err)
	}
}
