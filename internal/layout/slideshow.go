package layout

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log"
	"math"
	"strings"

	"reelgen/internal/assets"
	"reelgen/internal/config"
	"reelgen/internal/raster"
	"reelgen/internal/storage"
)

// tileReader fetches source images once per render. Undecodable objects
// are logged and remembered as nil.
type tileReader struct {
	store   storage.Store
	logger  *log.Logger
	cache   map[string]*image.RGBA
	skipped int
}

func newTileReader(store storage.Store, logger *log.Logger) *tileReader {
	return &tileReader{store: store, logger: logger, cache: map[string]*image.RGBA{}}
}

// read returns (nil, nil) for an object that exists but cannot be decoded.
func (r *tileReader) read(ctx context.Context, bucket, key string) (*image.RGBA, error) {
	id := bucket + "/" + key
	if img, ok := r.cache[id]; ok {
		return img, nil
	}
	img, err := r.store.Read(ctx, bucket, key)
	if err != nil {
		if errors.Is(err, storage.ErrDecode) || errors.Is(err, storage.ErrNotFound) {
			r.logger.Printf("skip %s: %v", id, err)
			r.cache[id] = nil
			r.skipped++
			return nil, nil
		}
		return nil, fmt.Errorf("read %s: %w", id, err)
	}
	r.cache[id] = img
	return img, nil
}

type transition int

const (
	crossfade transition = iota
	slide
)

func (t transition) String() string {
	if t == slide {
		return config.TransitionSlide
	}
	return config.TransitionCrossfade
}

// slideshow is the single-image foreground panel. Slide k holds frames
// [k*period, (k+1)*period); the last window frames of each slot blend into
// slide k+1.
type slideshow struct {
	slides      []*image.RGBA
	transitions []transition
	period      int
	window      int
	origin      image.Point
	panel       *image.RGBA
}

func slidesNeeded(totalFrames, period int) int {
	if totalFrames <= 0 {
		return 1
	}
	return (totalFrames-1)/period + 2
}

func (e *Engine) buildSlideshow(ctx context.Context, reader *tileReader, job Job, keys []string, period int) (*slideshow, error) {
	bucket, _, err := storage.ParseFolder(job.Sources.SingleFolder)
	if err != nil {
		return nil, err
	}
	w := job.Width
	h := int(math.Round(float64(job.Width) * job.Foreground.Aspect))
	if h <= 0 || h > job.Height {
		h = job.Height
	}

	show := &slideshow{
		period: period,
		window: fadeWindow(job.Timing.FPS, job.Foreground.FadeSec, period),
		origin: image.Pt(0, (job.Height-h)/2),
		panel:  raster.New(w, h),
	}
	for _, key := range keys {
		img, err := reader.read(ctx, bucket, key)
		if err != nil {
			return nil, err
		}
		if img == nil {
			continue
		}
		show.slides = append(show.slides, raster.FitInto(img, w, h))
	}
	if len(show.slides) == 0 {
		return nil, fmt.Errorf("foreground: %w: no readable slides", assets.ErrInsufficientAssets)
	}

	show.transitions = make([]transition, len(keys))
	for i := range show.transitions {
		show.transitions[i] = pickTransition(job.Foreground.Transition, e.Rand)
	}
	return show, nil
}

func fadeWindow(fps int, fadeSec float64, period int) int {
	n := int(math.Round(float64(fps) * fadeSec))
	if n < 1 {
		n = 1
	}
	if n > period {
		n = period
	}
	return n
}

func pickTransition(kind string, rng assets.Rand) transition {
	switch strings.ToLower(kind) {
	case config.TransitionCrossfade:
		return crossfade
	case config.TransitionSlide:
		return slide
	default:
		if rng != nil && rng.IntN(2) == 1 {
			return slide
		}
		return crossfade
	}
}

// progress returns the slot index at frame and the blend progress into the
// next slide, or 0 outside the fade window.
func (s *slideshow) progress(frame int) (int, float64) {
	k := frame / s.period
	start := s.period - s.window
	pos := frame % s.period
	if pos < start {
		return k, 0
	}
	return k, float64(pos-start+1) / float64(s.window)
}

func (s *slideshow) draw(canvas *image.RGBA, frame int) {
	k, p := s.progress(frame)
	cur := s.slides[k%len(s.slides)]
	region := image.Rectangle{Min: s.origin, Max: s.origin.Add(cur.Bounds().Size())}
	if p == 0 {
		raster.CopyRegion(canvas, region, cur, image.Point{})
		return
	}

	next := s.slides[(k+1)%len(s.slides)]
	w := s.panel.Bounds().Dx()
	h := s.panel.Bounds().Dy()
	switch s.transitions[k%len(s.transitions)] {
	case slide:
		x := int(math.Round((1 - p) * float64(w)))
		raster.CopyRegion(s.panel, image.Rect(0, 0, x, h), cur, image.Pt(w-x, 0))
		raster.CopyRegion(s.panel, image.Rect(x, 0, w, h), next, image.Point{})
	default:
		raster.Blend(s.panel, cur, next, p)
	}
	raster.CopyRegion(canvas, region, s.panel, image.Point{})
}
