// Package strip builds the long composite rasters that tracks scroll across
// and computes the per-frame viewport offset into them.
package strip

import (
	"image"
	"image/draw"
	"math"
)

// Axis is the direction tiles are concatenated and scrolled along.
type Axis int

const (
	Vertical Axis = iota
	Horizontal
)

func (a Axis) String() string {
	if a == Horizontal {
		return "horizontal"
	}
	return "vertical"
}

// Extent returns the size of r along the axis.
func (a Axis) Extent(r image.Rectangle) int {
	if a == Horizontal {
		return r.Dx()
	}
	return r.Dy()
}

// Cross returns the size of r across the axis.
func (a Axis) Cross(r image.Rectangle) int {
	if a == Horizontal {
		return r.Dy()
	}
	return r.Dx()
}

// Build concatenates tiles cyclically along axis, starting with tiles[0],
// until the composite extent reaches required. The cross-axis size is taken
// from the first tile; callers resize tiles uniformly beforehand. Build
// returns false when tiles is empty.
func Build(tiles []*image.RGBA, axis Axis, required int) (*image.RGBA, bool) {
	if len(tiles) == 0 {
		return nil, false
	}

	cross := axis.Cross(tiles[0].Bounds())
	extent := 0
	count := 0
	for {
		extent += axis.Extent(tiles[count%len(tiles)].Bounds())
		count++
		if extent >= required {
			break
		}
		// A zero-extent tile set would never terminate.
		if count >= len(tiles) && extent == 0 {
			break
		}
	}

	var composite *image.RGBA
	if axis == Horizontal {
		composite = image.NewRGBA(image.Rect(0, 0, extent, cross))
	} else {
		composite = image.NewRGBA(image.Rect(0, 0, cross, extent))
	}

	pos := 0
	for i := 0; i < count; i++ {
		tile := tiles[i%len(tiles)]
		n := axis.Extent(tile.Bounds())
		var dst image.Rectangle
		if axis == Horizontal {
			dst = image.Rect(pos, 0, pos+n, cross)
		} else {
			dst = image.Rect(0, pos, cross, pos+n)
		}
		draw.Draw(composite, dst, tile, tile.Bounds().Min, draw.Src)
		pos += n
	}
	return composite, true
}

// Speed returns the per-frame scroll speed that moves one tile of size unit
// every transitionFrames frames.
func Speed(unit, transitionFrames int) float64 {
	if transitionFrames <= 0 {
		return 0
	}
	return float64(unit) / float64(transitionFrames)
}

// RequiredExtent is the composite length needed to scroll at speed for
// totalFrames frames without running out under a viewport of the given size.
func RequiredExtent(viewport int, speed float64, totalFrames int) int {
	return viewport + int(speed*float64(totalFrames))
}

// Offset maps a frame index to the viewport position inside a composite.
// Reversed scrolling starts at the tail and moves toward zero. The result is
// clamped to [0, composite-viewport]; once the composite is exhausted the
// offset stalls rather than wrapping.
func Offset(frame int, speed float64, composite, viewport int, reversed bool) int {
	limit := composite - viewport
	if limit <= 0 {
		return 0
	}
	raw := int(math.Floor(float64(frame) * speed))
	candidate := raw
	if reversed {
		candidate = limit - raw
	}
	if candidate < 0 {
		return 0
	}
	if candidate > limit {
		return limit
	}
	return candidate
}
