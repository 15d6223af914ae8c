// Package encode turns a stream of RGBA frames into a video container.
package encode

import (
	"fmt"
	"image"
	"log"
	"strings"

	"reelgen/internal/config"
)

// Sink consumes frames in increasing order. Write must not retain the frame
// after it returns; callers reuse the buffer.
type Sink interface {
	Write(frame *image.RGBA) error
	Close() error
}

// Options configures a sink.
type Options struct {
	Path    string
	Width   int
	Height  int
	FPS     int
	Quality int // 1..100
	Codec   string
	Backend string
	Logger  *log.Logger
}

// Open creates the sink for opts.Backend.
func Open(opts Options) (Sink, error) {
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, fmt.Errorf("invalid frame size %dx%d", opts.Width, opts.Height)
	}
	if opts.FPS <= 0 {
		return nil, fmt.Errorf("invalid fps %d", opts.FPS)
	}
	switch strings.ToLower(opts.Backend) {
	case config.EncoderMJPEG:
		return NewMJPEG(opts)
	case config.EncoderFFmpeg, "":
		return NewFFmpeg(opts)
	default:
		return nil, fmt.Errorf("unknown encoder %q", opts.Backend)
	}
}

// checkFrame verifies a frame matches the configured size.
func checkFrame(frame *image.RGBA, w, h int) error {
	b := frame.Bounds()
	if b.Dx() != w || b.Dy() != h {
		return fmt.Errorf("frame is %dx%d, sink expects %dx%d", b.Dx(), b.Dy(), w, h)
	}
	return nil
}
