// Package raster holds the pixel-level helpers shared by strip building,
// compositing and the foreground slideshow. Every raster handled by the
// engine is an opaque *image.RGBA anchored at the origin.
package raster

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"io"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// Decode reads any registered image format into an RGBA raster.
func Decode(r io.Reader) (*image.RGBA, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return ToRGBA(img), nil
}

// ToRGBA copies img into a fresh RGBA raster whose bounds start at (0,0).
// Transparent sources are flattened onto black.
func ToRGBA(img image.Image) *image.RGBA {
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), image.Black, image.Point{}, draw.Src)
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Over)
	return dst
}

// New allocates an opaque black raster of the given size.
func New(w, h int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	Fill(dst, color.RGBA{A: 0xff})
	return dst
}

// Fill paints the whole raster with c.
func Fill(dst *image.RGBA, c color.RGBA) {
	draw.Draw(dst, dst.Bounds(), &image.Uniform{C: c}, image.Point{}, draw.Src)
}

// Resize scales src to exactly w x h, ignoring aspect ratio.
func Resize(src image.Image, w, h int) *image.RGBA {
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst
}

// ResizeToWidth scales src to width w preserving aspect ratio.
func ResizeToWidth(src image.Image, w int) *image.RGBA {
	b := src.Bounds()
	if b.Dx() == 0 {
		return Resize(src, w, 1)
	}
	h := int(float64(b.Dy()) * float64(w) / float64(b.Dx()))
	return Resize(src, w, h)
}

// ResizeToHeight scales src to height h preserving aspect ratio.
func ResizeToHeight(src image.Image, h int) *image.RGBA {
	b := src.Bounds()
	if b.Dy() == 0 {
		return Resize(src, 1, h)
	}
	w := int(float64(b.Dx()) * float64(h) / float64(b.Dy()))
	return Resize(src, w, h)
}

// FitInto scales src to the largest size that fits inside w x h and centres
// it on a black w x h raster.
func FitInto(src image.Image, w, h int) *image.RGBA {
	dst := New(w, h)
	b := src.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return dst
	}
	scale := float64(w) / float64(b.Dx())
	if s := float64(h) / float64(b.Dy()); s < scale {
		scale = s
	}
	fw := max(1, int(float64(b.Dx())*scale))
	fh := max(1, int(float64(b.Dy())*scale))
	x := (w - fw) / 2
	y := (h - fh) / 2
	xdraw.CatmullRom.Scale(dst, image.Rect(x, y, x+fw, y+fh), src, b, draw.Src, nil)
	return dst
}

// CopyRegion copies the area of src starting at offset into region of dst.
// The region is clipped to dst's bounds and to what src can supply, so a
// caller never writes outside the canvas.
func CopyRegion(dst *image.RGBA, region image.Rectangle, src *image.RGBA, offset image.Point) {
	avail := src.Bounds().Sub(offset).Add(region.Min)
	clipped := region.Intersect(dst.Bounds()).Intersect(avail)
	if clipped.Empty() {
		return
	}
	sp := offset.Add(clipped.Min.Sub(region.Min))
	draw.Draw(dst, clipped, src, sp, draw.Src)
}

// Blend writes (1-alpha)*a + alpha*b into dst. All three rasters must share
// the same bounds; alpha is clamped to [0,1].
func Blend(dst, a, b *image.RGBA, alpha float64) {
	if alpha < 0 {
		alpha = 0
	}
	if alpha > 1 {
		alpha = 1
	}
	inv := 1 - alpha
	n := min(len(dst.Pix), len(a.Pix), len(b.Pix))
	for i := 0; i < n; i++ {
		dst.Pix[i] = uint8(inv*float64(a.Pix[i]) + alpha*float64(b.Pix[i]) + 0.5)
	}
}
