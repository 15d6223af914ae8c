package config

import (
	"fmt"
	"path/filepath"
	"strings"
)

// ValidationResult captures a single validation finding.
type ValidationResult struct {
	Level   string `json:"level"` // "error" or "warning"
	Message string `json:"message"`
}

// Validate checks the config for values a generation run cannot work with.
func (c Config) Validate() []ValidationResult {
	var results []ValidationResult
	results = append(results, c.validateVideo()...)
	results = append(results, c.validateTiming()...)
	results = append(results, c.validateSources()...)
	results = append(results, c.validateTextBoxes()...)
	results = append(results, c.validateOutput()...)
	return results
}

// HasErrors reports whether any result is at error level.
func HasErrors(results []ValidationResult) bool {
	for _, r := range results {
		if r.Level == "error" {
			return true
		}
	}
	return false
}

func errorf(format string, args ...any) ValidationResult {
	return ValidationResult{Level: "error", Message: fmt.Sprintf(format, args...)}
}

func warnf(format string, args ...any) ValidationResult {
	return ValidationResult{Level: "warning", Message: fmt.Sprintf(format, args...)}
}

func (c Config) validateVideo() []ValidationResult {
	var results []ValidationResult
	if c.Video.Width <= 0 || c.Video.Height <= 0 {
		results = append(results, errorf("video size %dx%d must be positive", c.Video.Width, c.Video.Height))
	}
	if c.Video.Width%2 != 0 || c.Video.Height%2 != 0 {
		results = append(results, warnf("video size %dx%d is odd; yuv420p encoders may reject it", c.Video.Width, c.Video.Height))
	}
	if c.Video.FPS <= 0 {
		results = append(results, errorf("video fps must be > 0"))
	}
	if c.Video.Quality < 1 || c.Video.Quality > 100 {
		results = append(results, errorf("video quality %d must be within 1..100", c.Video.Quality))
	}
	switch c.Video.Encoder {
	case EncoderFFmpeg:
	case EncoderMJPEG:
		// The pure Go encoder only writes AVI, whatever the file is called.
		if ext := strings.ToLower(filepath.Ext(strings.TrimSpace(c.Output.File))); ext != ".avi" {
			results = append(results, warnf("video encoder %q writes an AVI container; rename output file %q to .avi", EncoderMJPEG, c.Output.File))
		}
	default:
		results = append(results, errorf("video encoder %q must be %q or %q", c.Video.Encoder, EncoderFFmpeg, EncoderMJPEG))
	}
	return results
}

func (c Config) validateTiming() []ValidationResult {
	var results []ValidationResult
	if c.Timing.DurationSec <= 0 && c.Timing.MaxLengthSec <= 0 {
		results = append(results, errorf("timing needs duration_s or max_length_s > 0"))
	}
	if c.Timing.MaxLengthSec < 0 {
		results = append(results, errorf("timing max_length_s must be >= 0"))
	}
	if c.Timing.TransitionSec <= 0 {
		results = append(results, errorf("timing transition_s must be > 0"))
	}
	if c.Foreground.FadeSec > c.Timing.TransitionSec {
		results = append(results, warnf("foreground fade_s %.2f exceeds transition_s %.2f and will be clamped", c.Foreground.FadeSec, c.Timing.TransitionSec))
	}
	switch c.Foreground.Transition {
	case TransitionRandom, TransitionCrossfade, TransitionSlide:
	default:
		results = append(results, errorf("foreground transition %q is not recognised", c.Foreground.Transition))
	}
	if c.Foreground.Aspect <= 0 {
		results = append(results, errorf("foreground aspect must be > 0"))
	}
	return results
}

func (c Config) validateSources() []ValidationResult {
	var results []ValidationResult
	if strings.TrimSpace(c.Sources.Folder1) == "" {
		results = append(results, errorf("sources folder1 is required"))
	}
	if strings.TrimSpace(c.Sources.Folder2) == "" {
		results = append(results, errorf("sources folder2 is required"))
	}
	if strings.TrimSpace(c.Sources.SingleFolder) == "" {
		results = append(results, warnf("sources single_folder is empty; mode h will fail"))
	}
	switch c.Storage.Backend {
	case BackendS3:
	case BackendLocal:
		if strings.TrimSpace(c.Storage.LocalRoot) == "" {
			results = append(results, errorf("storage local_root is required for the local backend"))
		}
	default:
		results = append(results, errorf("storage backend %q must be %q or %q", c.Storage.Backend, BackendS3, BackendLocal))
	}
	return results
}

func (c Config) validateTextBoxes() []ValidationResult {
	var results []ValidationResult
	for i, box := range c.TextBoxes {
		if strings.TrimSpace(box.Text) == "" {
			results = append(results, warnf("text_boxes[%d]: empty text is skipped", i))
		}
		if box.BoxWidth <= 0 {
			results = append(results, errorf("text_boxes[%d]: box_width must be > 0", i))
		}
		if box.Size <= 0 {
			results = append(results, errorf("text_boxes[%d]: size must be > 0", i))
		}
		if box.Y < 0 || box.Y > c.Video.Height {
			results = append(results, warnf("text_boxes[%d]: y=%d lies outside the canvas", i, box.Y))
		}
	}
	return results
}

func (c Config) validateOutput() []ValidationResult {
	var results []ValidationResult
	if strings.TrimSpace(c.Output.File) == "" {
		results = append(results, errorf("output file is required"))
	}
	if strings.TrimSpace(c.Output.Bucket) == "" || strings.TrimSpace(c.Output.Key) == "" {
		results = append(results, warnf("output bucket/key not set; upload will be skipped"))
	}
	return results
}
