// Package audio replaces the silent track of an encoded video with a music
// bed looped or trimmed to the video's exact length.
package audio

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"reelgen/internal/logx"
)

// ErrNoAudio means the configured path held nothing playable.
var ErrNoAudio = errors.New("no audio available")

// Extensions lists the audio file suffixes picked from a directory.
var Extensions = []string{".mp3", ".wav", ".aac", ".flac", ".ogg"}

// Rand picks the track when the audio path is a directory.
type Rand interface {
	IntN(n int) int
}

// Muxer probes durations and rewrites containers.
type Muxer interface {
	Duration(ctx context.Context, path string) (float64, error)
	// Mux writes out with the video stream of video and the audio of
	// audio, looped as needed and cut at seconds.
	Mux(ctx context.Context, video, audio, out string, seconds float64) error
}

// Attacher swaps in background audio.
type Attacher struct {
	muxer  Muxer
	rng    Rand
	logger *log.Logger
}

// New returns an Attacher. A nil muxer selects the ffmpeg implementation.
func New(muxer Muxer, rng Rand, logger *log.Logger) *Attacher {
	if muxer == nil {
		muxer = FFmpegMuxer{}
	}
	return &Attacher{muxer: muxer, rng: rng, logger: logx.OrDiscard(logger)}
}

// Attach resolves audioPath to a track and remuxes videoPath in place. The
// new file is written next to the original and renamed over it, so a
// failure leaves the original video untouched.
func (a *Attacher) Attach(ctx context.Context, videoPath, audioPath string) (string, error) {
	track, err := Pick(a.rng, audioPath)
	if err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	videoDur, err := a.muxer.Duration(ctx, videoPath)
	if err != nil {
		return "", fmt.Errorf("probe video: %w", err)
	}
	audioDur, err := a.muxer.Duration(ctx, track)
	if err != nil {
		return "", fmt.Errorf("probe audio: %w", err)
	}
	if audioDur <= 0 {
		return "", fmt.Errorf("%w: %s has zero duration", ErrNoAudio, filepath.Base(track))
	}
	if videoDur <= 0 {
		return "", fmt.Errorf("video %s has zero duration", filepath.Base(videoPath))
	}

	if err := ctx.Err(); err != nil {
		return "", err
	}
	tmp := TempPath(videoPath)
	if err := a.muxer.Mux(ctx, videoPath, track, tmp, videoDur); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("mux audio: %w", err)
	}
	if err := os.Rename(tmp, videoPath); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("replace video: %w", err)
	}

	mode := "trimmed"
	if audioDur < videoDur {
		mode = "looped"
	}
	a.logger.Printf("attached %s (%.2fs, %s) to %s (%.2fs)", filepath.Base(track), audioDur, mode, videoPath, videoDur)
	return track, nil
}

// TempPath is the sibling file the remux writes before the atomic replace.
func TempPath(videoPath string) string {
	ext := filepath.Ext(videoPath)
	return strings.TrimSuffix(videoPath, ext) + "_temp" + ext
}

// Pick returns path itself when it is a file, or a uniformly random audio
// file from it when it is a directory.
func Pick(rng Rand, path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", fmt.Errorf("%w: no audio path configured", ErrNoAudio)
	}
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%w: %s does not exist", ErrNoAudio, path)
		}
		return "", err
	}
	if !info.IsDir() {
		return path, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return "", fmt.Errorf("read audio dir: %w", err)
	}
	var candidates []string
	for _, e := range entries {
		if e.IsDir() || !isAudio(e.Name()) {
			continue
		}
		candidates = append(candidates, filepath.Join(path, e.Name()))
	}
	if len(candidates) == 0 {
		return "", fmt.Errorf("%w: no audio files in %s", ErrNoAudio, path)
	}
	sort.Strings(candidates)
	if rng == nil || len(candidates) == 1 {
		return candidates[0], nil
	}
	return candidates[rng.IntN(len(candidates))], nil
}

func isAudio(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, allowed := range Extensions {
		if ext == allowed {
			return true
		}
	}
	return false
}
