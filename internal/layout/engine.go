// Package layout turns a mode description into frames. Every mode goes
// through the same path: pair the two source collections, select tiles,
// build one scrolling strip per track and composite the strips frame by
// frame into a reused canvas.
package layout

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"log"
	"slices"

	"reelgen/internal/assets"
	"reelgen/internal/config"
	"reelgen/internal/encode"
	"reelgen/internal/logx"
	"reelgen/internal/overlay"
	"reelgen/internal/raster"
	"reelgen/internal/storage"
	"reelgen/internal/strip"
)

// Engine renders modes against an asset store.
type Engine struct {
	Store  storage.Store
	Rand   assets.Rand
	Logger *log.Logger
}

// Job is one render request.
type Job struct {
	Mode       string
	Width      int
	Height     int
	Timing     assets.Timing
	Policy     assets.Policy
	Opposite   bool
	Sources    config.SourcesConfig
	Foreground config.ForegroundConfig
	Overlays   []*overlay.Prepared
	// Progress, when set, is called after every written frame.
	Progress func(done, total int)
}

// Stats summarises a finished render.
type Stats struct {
	Frames    int
	Tracks    int
	Pairs     int
	Unmatched int
	Skipped   int
	Slides    int
}

// OpenSink creates the frame sink. Render calls it only after every tile
// has been read, so an aborted run never leaves a file behind.
type OpenSink func() (encode.Sink, error)

type track struct {
	spec      TrackSpec
	region    image.Rectangle
	composite *image.RGBA
	speed     float64
	reversed  bool
}

// Render produces Timing.TotalFrames() frames of the requested mode and
// writes them to the sink returned by open. The sink is closed before
// Render returns.
func (e *Engine) Render(ctx context.Context, job Job, open OpenSink) (Stats, error) {
	spec, err := Lookup(job.Mode)
	if err != nil {
		return Stats{}, err
	}
	if job.Width <= 0 || job.Height <= 0 {
		return Stats{}, fmt.Errorf("invalid canvas %dx%d", job.Width, job.Height)
	}
	if job.Policy.Sample && e.Rand == nil {
		return Stats{}, fmt.Errorf("mode %s: %w", spec.Name, assets.ErrNoRand)
	}
	logger := logx.OrDiscard(e.Logger)
	stats := Stats{Tracks: len(spec.Tracks)}

	total := job.Timing.TotalFrames()
	period := job.Timing.TransitionFrames()
	perGroup := job.Timing.NeededTiles()

	first, err := e.Store.List(ctx, job.Sources.Folder1)
	if err != nil {
		return stats, fmt.Errorf("list %s: %w", job.Sources.Folder1, err)
	}
	second, err := e.Store.List(ctx, job.Sources.Folder2)
	if err != nil {
		return stats, fmt.Errorf("list %s: %w", job.Sources.Folder2, err)
	}
	pairs, unmatched := assets.PairUp(first, second, spec.Keying)
	stats.Pairs = len(pairs)
	stats.Unmatched = len(unmatched)
	for _, key := range unmatched {
		logger.Printf("mode %s: %s has no partner, skipped", spec.Name, key)
	}

	chosen, err := assets.Select(job.Policy, e.Rand, pairs, perGroup*spec.Groups)
	if err != nil {
		return stats, fmt.Errorf("mode %s: %w", spec.Name, err)
	}

	var slideKeys []string
	if spec.Slideshow {
		singles, err := e.Store.List(ctx, job.Sources.SingleFolder)
		if err != nil {
			return stats, fmt.Errorf("list %s: %w", job.Sources.SingleFolder, err)
		}
		need := slidesNeeded(total, period)
		slideKeys, err = assets.Select(job.Policy, e.Rand, singles, need)
		if err != nil {
			return stats, fmt.Errorf("mode %s foreground: %w", spec.Name, err)
		}
	}

	reader := newTileReader(e.Store, logger)
	firstBucket, _, err := storage.ParseFolder(job.Sources.Folder1)
	if err != nil {
		return stats, err
	}
	secondBucket, _, err := storage.ParseFolder(job.Sources.Folder2)
	if err != nil {
		return stats, err
	}

	tracks := make([]*track, 0, len(spec.Tracks))
	for i, ts := range spec.Tracks {
		region := trackRect(spec, ts, job.Width, job.Height)
		group := chosen[ts.Group*perGroup : (ts.Group+1)*perGroup]

		var tiles []*image.RGBA
		for _, p := range group {
			bucket, key := firstBucket, p.First
			if ts.Side == Second {
				bucket, key = secondBucket, p.Second
			}
			img, err := reader.read(ctx, bucket, key)
			if err != nil {
				return stats, err
			}
			if img == nil {
				continue
			}
			tiles = append(tiles, shapeTile(img, spec.Shape, spec.Scroll, region))
		}
		if len(tiles) == 0 {
			return stats, fmt.Errorf("mode %s track %d: %w: no readable tiles", spec.Name, i, assets.ErrInsufficientAssets)
		}

		reversed := ts.reversed(job.Opposite)
		stagger := ts.Stagger
		if job.Opposite {
			stagger += ts.OppositeStagger
		}
		tiles = rotate(tiles, stagger)
		if reversed {
			slices.Reverse(tiles)
		}

		viewport := spec.Scroll.Extent(region)
		speed := strip.Speed(spec.Scroll.Extent(tiles[0].Bounds()), period)
		composite, _ := strip.Build(tiles, spec.Scroll, strip.RequiredExtent(viewport, speed, total))
		tracks = append(tracks, &track{
			spec:      ts,
			region:    region,
			composite: composite,
			speed:     speed,
			reversed:  reversed,
		})
	}

	var show *slideshow
	if spec.Slideshow {
		show, err = e.buildSlideshow(ctx, reader, job, slideKeys, period)
		if err != nil {
			return stats, err
		}
		stats.Slides = len(show.slides)
	}
	stats.Skipped = reader.skipped

	sink, err := open()
	if err != nil {
		return stats, fmt.Errorf("open sink: %w", err)
	}

	canvas := raster.New(job.Width, job.Height)
	black := color.RGBA{A: 0xff}
	for f := 0; f < total; f++ {
		if err := ctx.Err(); err != nil {
			_ = sink.Close()
			return stats, err
		}
		raster.Fill(canvas, black)
		for _, pass := range []bool{false, true} {
			for _, t := range tracks {
				if t.spec.Foreground() != pass {
					continue
				}
				t.draw(canvas, spec.Scroll, f)
			}
		}
		if show != nil {
			show.draw(canvas, f)
		}
		overlay.Apply(canvas, job.Overlays)

		if err := sink.Write(canvas); err != nil {
			_ = sink.Close()
			return stats, fmt.Errorf("write frame %d: %w", f, err)
		}
		stats.Frames++
		if job.Progress != nil {
			job.Progress(stats.Frames, total)
		}
	}

	if err := sink.Close(); err != nil {
		return stats, fmt.Errorf("close sink: %w", err)
	}
	logger.Printf("mode %s: %d frames, %d tracks, %d pairs (%d unmatched, %d unreadable)",
		spec.Name, stats.Frames, stats.Tracks, stats.Pairs, stats.Unmatched, stats.Skipped)
	return stats, nil
}

func (t TrackSpec) reversed(opposite bool) bool {
	if t.Foreground() {
		return false
	}
	switch t.Dir {
	case Backward:
		return true
	case Flip:
		return opposite
	default:
		return false
	}
}

func (t *track) draw(canvas *image.RGBA, axis strip.Axis, frame int) {
	viewport := axis.Extent(t.region)
	off := strip.Offset(frame, t.speed, axis.Extent(t.composite.Bounds()), viewport, t.reversed)
	at := image.Pt(0, off)
	if axis == strip.Horizontal {
		at = image.Pt(off, 0)
	}
	raster.CopyRegion(canvas, t.region, t.composite, at)
}

// rotate moves the first n tiles to the end.
func rotate(tiles []*image.RGBA, n int) []*image.RGBA {
	if len(tiles) < 2 || n%len(tiles) == 0 {
		return tiles
	}
	n %= len(tiles)
	out := make([]*image.RGBA, 0, len(tiles))
	out = append(out, tiles[n:]...)
	return append(out, tiles[:n]...)
}
