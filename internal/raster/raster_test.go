package raster

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"
)

func solid(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	Fill(img, c)
	return img
}

func TestDecodePNG(t *testing.T) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, solid(4, 3, color.RGBA{R: 200, A: 255})); err != nil {
		t.Fatal(err)
	}
	img, err := Decode(&buf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if img.Bounds() != image.Rect(0, 0, 4, 3) {
		t.Fatalf("unexpected bounds %v", img.Bounds())
	}
	if got := img.RGBAAt(1, 1); got.R != 200 {
		t.Fatalf("unexpected pixel %v", got)
	}
}

func TestDecodeGarbage(t *testing.T) {
	if _, err := Decode(bytes.NewReader([]byte("not an image"))); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestToRGBAFlattensAndRebases(t *testing.T) {
	src := image.NewNRGBA(image.Rect(10, 10, 12, 12))
	src.Set(10, 10, color.NRGBA{G: 255, A: 255})
	out := ToRGBA(src)
	if out.Bounds().Min != (image.Point{}) {
		t.Fatalf("expected origin bounds, got %v", out.Bounds())
	}
	if got := out.RGBAAt(0, 0); got.G != 255 || got.A != 255 {
		t.Fatalf("unexpected pixel %v", got)
	}
	if got := out.RGBAAt(1, 1); got != (color.RGBA{A: 255}) {
		t.Fatalf("transparent pixel should flatten to black, got %v", got)
	}
}

func TestResizeHelpers(t *testing.T) {
	src := solid(200, 100, color.RGBA{B: 255, A: 255})

	if b := ResizeToWidth(src, 50).Bounds(); b.Dx() != 50 || b.Dy() != 25 {
		t.Errorf("ResizeToWidth: got %v", b)
	}
	if b := ResizeToHeight(src, 50).Bounds(); b.Dx() != 100 || b.Dy() != 50 {
		t.Errorf("ResizeToHeight: got %v", b)
	}
	if b := Resize(src, 30, 30).Bounds(); b.Dx() != 30 || b.Dy() != 30 {
		t.Errorf("Resize: got %v", b)
	}
}

func TestFitIntoLetterboxes(t *testing.T) {
	src := solid(100, 50, color.RGBA{R: 255, A: 255})
	out := FitInto(src, 100, 100)
	if out.Bounds().Dx() != 100 || out.Bounds().Dy() != 100 {
		t.Fatalf("unexpected bounds %v", out.Bounds())
	}
	if got := out.RGBAAt(50, 5); got != (color.RGBA{A: 255}) {
		t.Errorf("expected black bar at top, got %v", got)
	}
	if got := out.RGBAAt(50, 50); got.R < 250 {
		t.Errorf("expected image content in centre, got %v", got)
	}
}

func TestCopyRegionClipsToCanvas(t *testing.T) {
	dst := New(10, 10)
	src := solid(20, 20, color.RGBA{R: 255, A: 255})

	CopyRegion(dst, image.Rect(5, 5, 15, 15), src, image.Point{})
	if got := dst.RGBAAt(9, 9); got.R != 255 {
		t.Errorf("expected copied pixel, got %v", got)
	}
	if got := dst.RGBAAt(4, 4); got.R != 0 {
		t.Errorf("pixel outside region should be untouched, got %v", got)
	}
}

func TestCopyRegionShiftsSourceWhenClippedLeft(t *testing.T) {
	dst := New(4, 1)
	src := image.NewRGBA(image.Rect(0, 0, 4, 1))
	for x := 0; x < 4; x++ {
		src.SetRGBA(x, 0, color.RGBA{R: uint8(10 * (x + 1)), A: 255})
	}
	CopyRegion(dst, image.Rect(-2, 0, 2, 1), src, image.Point{})
	if got := dst.RGBAAt(0, 0).R; got != 30 {
		t.Fatalf("expected source column 2 at dst x=0, got R=%d", got)
	}
}

func TestCopyRegionStopsAtSourceEdge(t *testing.T) {
	dst := New(10, 1)
	src := solid(3, 1, color.RGBA{G: 255, A: 255})
	CopyRegion(dst, dst.Bounds(), src, image.Pt(1, 0))
	if dst.RGBAAt(1, 0).G != 255 || dst.RGBAAt(2, 0).G != 0 {
		t.Fatalf("expected exactly two copied pixels, row=%v", dst.Pix[:12])
	}
}

func TestBlend(t *testing.T) {
	a := solid(2, 2, color.RGBA{R: 0, A: 255})
	b := solid(2, 2, color.RGBA{R: 200, A: 255})
	dst := New(2, 2)

	Blend(dst, a, b, 0.25)
	if got := dst.RGBAAt(0, 0).R; got != 50 {
		t.Errorf("alpha 0.25: expected 50, got %d", got)
	}
	Blend(dst, a, b, 2)
	if got := dst.RGBAAt(0, 0).R; got != 200 {
		t.Errorf("alpha clamps to 1: expected 200, got %d", got)
	}
	if got := dst.RGBAAt(1, 1).A; got != 255 {
		t.Errorf("alpha channel should stay opaque, got %d", got)
	}
}
