package encode

import (
	"bytes"
	"fmt"
	"image"
	"io"
	"log"
	"math"
	"os"
	"path/filepath"
	"strings"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	"reelgen/internal/logx"
)

// FFmpeg pipes raw RGBA frames into an ffmpeg child process.
type FFmpeg struct {
	opts   Options
	pipe   *io.PipeWriter
	done   chan error
	stderr *bytes.Buffer
	logger *log.Logger
	frames int
	closed bool
	err    error
}

// NewFFmpeg starts ffmpeg reading rawvideo from a pipe and writing opts.Path.
func NewFFmpeg(opts Options) (*FFmpeg, error) {
	if err := os.MkdirAll(filepath.Dir(opts.Path), 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	codec := opts.Codec
	if codec == "" {
		codec = "libx264"
	}

	pr, pw := io.Pipe()
	stderr := &bytes.Buffer{}
	stream := ffmpeg.Input("pipe:", ffmpeg.KwArgs{
		"format":  "rawvideo",
		"pix_fmt": "rgba",
		"s":       fmt.Sprintf("%dx%d", opts.Width, opts.Height),
		"r":       opts.FPS,
	}).Output(opts.Path, ffmpeg.KwArgs{
		"c:v":     codec,
		"pix_fmt": "yuv420p",
		"crf":     qualityToCRF(opts.Quality),
		"r":       opts.FPS,
	}).OverWriteOutput().WithInput(pr).WithErrorOutput(stderr)

	f := &FFmpeg{
		opts:   opts,
		pipe:   pw,
		done:   make(chan error, 1),
		stderr: stderr,
		logger: logx.OrDiscard(opts.Logger),
	}
	go func() {
		err := stream.Run()
		// Unblock a writer stuck on a dead process.
		pr.CloseWithError(fmt.Errorf("ffmpeg exited: %v", err))
		f.done <- err
	}()
	f.logger.Printf("ffmpeg encoder started: %s %dx%d@%d codec=%s", opts.Path, opts.Width, opts.Height, opts.FPS, codec)
	return f, nil
}

// Write implements Sink.
func (f *FFmpeg) Write(frame *image.RGBA) error {
	if f.closed {
		return fmt.Errorf("write after close")
	}
	if f.err != nil {
		return f.err
	}
	if err := checkFrame(frame, f.opts.Width, f.opts.Height); err != nil {
		return err
	}

	rowBytes := frame.Bounds().Dx() * 4
	if frame.Stride == rowBytes {
		_, f.err = f.pipe.Write(frame.Pix[:rowBytes*frame.Bounds().Dy()])
	} else {
		for y := 0; y < frame.Bounds().Dy() && f.err == nil; y++ {
			start := y * frame.Stride
			_, f.err = f.pipe.Write(frame.Pix[start : start+rowBytes])
		}
	}
	if f.err != nil {
		f.err = fmt.Errorf("write frame %d: %w", f.frames, f.err)
		return f.err
	}
	f.frames++
	return nil
}

// Close flushes the pipe and waits for ffmpeg to finish the container.
func (f *FFmpeg) Close() error {
	if f.closed {
		return nil
	}
	f.closed = true
	f.pipe.Close()
	if err := <-f.done; err != nil {
		return fmt.Errorf("ffmpeg: %w: %s", err, lastLines(f.stderr.String(), 5))
	}
	f.logger.Printf("ffmpeg encoder finished: %d frames", f.frames)
	return nil
}

// qualityToCRF maps a 1..100 quality onto x264's 51..11 CRF range.
func qualityToCRF(quality int) int {
	if quality <= 0 || quality > 100 {
		quality = 75
	}
	return int(math.Round(51 - 0.4*float64(quality)))
}

func lastLines(s string, n int) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, " | ")
}
