package audio

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// FFmpegMuxer implements Muxer with ffprobe and ffmpeg.
type FFmpegMuxer struct{}

type probeOutput struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// Duration implements Muxer. ffprobe is killed when ctx is cancelled.
func (FFmpegMuxer) Duration(ctx context.Context, path string) (float64, error) {
	args := ffmpeg.ConvertKwargsToCmdLineArgs(ffmpeg.KwArgs{
		"show_format": "",
		"of":          "json",
	})
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, "ffprobe", append(args, path)...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return 0, ctxErr
		}
		return 0, fmt.Errorf("ffprobe %s: %w: %s", path, err, strings.TrimSpace(stderr.String()))
	}
	return parseProbeDuration(stdout.String())
}

func parseProbeDuration(out string) (float64, error) {
	var parsed probeOutput
	if err := json.Unmarshal([]byte(out), &parsed); err != nil {
		return 0, fmt.Errorf("parse ffprobe output: %w", err)
	}
	if strings.TrimSpace(parsed.Format.Duration) == "" {
		return 0, fmt.Errorf("ffprobe reported no duration")
	}
	d, err := strconv.ParseFloat(parsed.Format.Duration, 64)
	if err != nil {
		return 0, fmt.Errorf("parse duration %q: %w", parsed.Format.Duration, err)
	}
	return d, nil
}

// Mux implements Muxer. The audio input loops indefinitely and the output
// is cut at seconds, which covers both the shorter and the longer case.
func (FFmpegMuxer) Mux(ctx context.Context, video, audio, out string, seconds float64) error {
	var stderr bytes.Buffer
	v := ffmpeg.Input(video)
	a := ffmpeg.Input(audio, ffmpeg.KwArgs{"stream_loop": -1})
	stream := ffmpeg.Output([]*ffmpeg.Stream{v.Video(), a.Audio()}, out, ffmpeg.KwArgs{
		"c:v": "copy",
		"c:a": "aac",
		"b:a": "192k",
		"t":   fmt.Sprintf("%.3f", seconds),
	})
	// Compile runs the process under Stream.Context; the options below
	// derive from it, so ctx must be set first.
	stream.Context = ctx
	err := stream.OverWriteOutput().WithErrorOutput(&stderr).Run()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		msg := strings.TrimSpace(stderr.String())
		if i := strings.LastIndexByte(msg, '\n'); i >= 0 {
			msg = msg[i+1:]
		}
		return fmt.Errorf("ffmpeg: %w: %s", err, msg)
	}
	return nil
}
