package layout

import (
	"image"
	"math"

	"reelgen/internal/raster"
	"reelgen/internal/strip"
)

// cellRect returns cell i of n equal cells laid along split across a w x h
// canvas. The last cell absorbs the remainder.
func cellRect(split strip.Axis, n, i, w, h int) image.Rectangle {
	total := h
	if split == strip.Horizontal {
		total = w
	}
	size := total / n
	start := i * size
	end := start + size
	if i == n-1 {
		end = total
	}
	if split == strip.Horizontal {
		return image.Rect(start, 0, end, h)
	}
	return image.Rect(0, start, w, end)
}

// enlargedRect places the k-th of n enlarged tracks centred across the
// canvas. Each is scale times the base cell, shrunk so all n fit.
func enlargedRect(m ModeSpec, scale float64, k, n, w, h int) image.Rectangle {
	base := cellRect(m.Split, m.Cells, 0, w, h)
	total := h
	if m.Split == strip.Horizontal {
		total = w
	}
	size := int(math.Round(float64(m.Split.Extent(base)) * scale))
	if size*n > total {
		size = total / n
	}
	start := (total-size*n)/2 + k*size
	if m.Split == strip.Horizontal {
		return image.Rect(start, 0, start+size, h)
	}
	return image.Rect(0, start, w, start+size)
}

// trackRect is the canvas region a track draws into.
func trackRect(m ModeSpec, t TrackSpec, w, h int) image.Rectangle {
	if t.Foreground() {
		n := 0
		for _, other := range m.Tracks {
			if other.Foreground() {
				n++
			}
		}
		return enlargedRect(m, t.Enlarge, t.Cell, n, w, h)
	}
	return cellRect(m.Split, m.Cells, t.Cell, w, h)
}

// shapeTile resizes src into a tile for a track scrolling along axis inside
// region.
func shapeTile(src *image.RGBA, shape Shape, axis strip.Axis, region image.Rectangle) *image.RGBA {
	switch shape {
	case WidthFit:
		return raster.ResizeToWidth(src, region.Dx())
	case HeightFit:
		return raster.ResizeToHeight(src, region.Dy())
	default:
		side := axis.Cross(region)
		return raster.Resize(src, side, side)
	}
}
