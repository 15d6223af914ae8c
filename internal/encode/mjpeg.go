package encode

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"os"
	"path/filepath"

	"github.com/icza/mjpeg"
)

// MJPEG writes Motion-JPEG frames into an AVI container without any
// external tools.
type MJPEG struct {
	writer mjpeg.AviWriter
	opts   Options
	buf    bytes.Buffer
	frames int
	closed bool
}

// NewMJPEG opens an AVI writer at opts.Path.
func NewMJPEG(opts Options) (*MJPEG, error) {
	if err := os.MkdirAll(filepath.Dir(opts.Path), 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	w, err := mjpeg.New(opts.Path, int32(opts.Width), int32(opts.Height), int32(opts.FPS))
	if err != nil {
		return nil, fmt.Errorf("create avi writer: %w", err)
	}
	if opts.Quality <= 0 || opts.Quality > 100 {
		opts.Quality = jpeg.DefaultQuality
	}
	return &MJPEG{writer: w, opts: opts}, nil
}

// Write implements Sink.
func (m *MJPEG) Write(frame *image.RGBA) error {
	if m.closed {
		return fmt.Errorf("write after close")
	}
	if err := checkFrame(frame, m.opts.Width, m.opts.Height); err != nil {
		return err
	}
	m.buf.Reset()
	if err := jpeg.Encode(&m.buf, frame, &jpeg.Options{Quality: m.opts.Quality}); err != nil {
		return fmt.Errorf("encode frame %d as jpeg: %w", m.frames, err)
	}
	if err := m.writer.AddFrame(m.buf.Bytes()); err != nil {
		return fmt.Errorf("add frame %d: %w", m.frames, err)
	}
	m.frames++
	return nil
}

// Close finalizes the AVI index. It is safe to call more than once.
func (m *MJPEG) Close() error {
	if m.closed {
		return nil
	}
	m.closed = true
	if err := m.writer.Close(); err != nil {
		return fmt.Errorf("finalize avi: %w", err)
	}
	return nil
}

// Frames returns how many frames have been written.
func (m *MJPEG) Frames() int { return m.frames }
