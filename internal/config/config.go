package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config captures everything a generation run needs: canvas and encoder
// settings, timing, asset sources, overlays and the output destination.
type Config struct {
	Version    int              `yaml:"version"`
	Video      VideoConfig      `yaml:"video"`
	Timing     TimingConfig     `yaml:"timing"`
	Selection  SelectionConfig  `yaml:"selection"`
	Sources    SourcesConfig    `yaml:"sources"`
	TextBoxes  []TextBox        `yaml:"text_boxes"`
	Foreground ForegroundConfig `yaml:"foreground"`
	Audio      AudioConfig      `yaml:"audio"`
	Output     OutputConfig     `yaml:"output"`
	Storage    StorageConfig    `yaml:"storage"`
}

// VideoConfig contains canvas sizing, framerate and encoder information.
type VideoConfig struct {
	Width   int    `yaml:"width"`
	Height  int    `yaml:"height"`
	FPS     int    `yaml:"fps"`
	Quality int    `yaml:"quality"`
	Encoder string `yaml:"encoder"` // "ffmpeg" or "mjpeg"
	Codec   string `yaml:"codec"`
}

// TimingConfig controls clip length and how quickly strips advance.
type TimingConfig struct {
	DurationSec   float64 `yaml:"duration_s"`
	MaxLengthSec  float64 `yaml:"max_length_s"`
	TransitionSec float64 `yaml:"transition_s"`
}

// SelectionConfig toggles between random sampling and cyclic selection and
// sets the global direction flag.
type SelectionConfig struct {
	RandomChoice *bool `yaml:"random_choice,omitempty"`
	Opposite     bool  `yaml:"opposite"`
	Seed         int64 `yaml:"seed,omitempty"`
}

// SourcesConfig names the blob-store folders images are drawn from. Folder1
// and Folder2 feed the paired strip modes; SingleFolder feeds the foreground
// slideshow.
type SourcesConfig struct {
	Folder1      string `yaml:"folder1"`
	Folder2      string `yaml:"folder2"`
	SingleFolder string `yaml:"single_folder"`
}

// TextBox is a declarative text overlay. Y is the baseline of the first line.
type TextBox struct {
	Text         string  `yaml:"text"`
	FontPath     string  `yaml:"font_path,omitempty"`
	Size         float64 `yaml:"size"`
	Color        string  `yaml:"color"`
	Background   string  `yaml:"background,omitempty"`
	Y            int     `yaml:"y"`
	BoxWidth     int     `yaml:"box_width"`
	Padding      int     `yaml:"padding"`
	CornerRadius int     `yaml:"corner_radius"`
}

// ForegroundConfig shapes the single-image slideshow of the combined mode.
type ForegroundConfig struct {
	Aspect     float64 `yaml:"aspect"` // panel height / canvas width
	FadeSec    float64 `yaml:"fade_s"`
	Transition string  `yaml:"transition"` // "random", "crossfade" or "slide"
}

// AudioConfig points at a single audio file or a directory of candidates.
type AudioConfig struct {
	Path string `yaml:"path"`
}

// OutputConfig describes where the encoded video lands locally and remotely.
type OutputConfig struct {
	Dir       string `yaml:"dir"`
	File      string `yaml:"file"`
	Bucket    string `yaml:"bucket"`
	Key       string `yaml:"key"`
	KeepLocal *bool  `yaml:"keep_local,omitempty"`
	Overwrite *bool  `yaml:"overwrite,omitempty"`
}

// StorageConfig selects and configures the asset store backend.
type StorageConfig struct {
	Backend   string `yaml:"backend"` // "s3" or "local"
	Region    string `yaml:"region,omitempty"`
	Profile   string `yaml:"profile,omitempty"`
	PathStyle bool   `yaml:"path_style,omitempty"`
	LocalRoot string `yaml:"local_root,omitempty"`
}

// RandomChoiceValue returns the effective sampling flag applying defaults.
func (s SelectionConfig) RandomChoiceValue() bool {
	if s.RandomChoice == nil {
		return true
	}
	return *s.RandomChoice
}

// OverwriteValue reports whether a run may upload to a key an earlier run
// already used. Key may contain {id}, {mode} and {date} placeholders.
func (o OutputConfig) OverwriteValue() bool {
	if o.Overwrite == nil {
		return true
	}
	return *o.Overwrite
}

// KeepLocalValue reports whether the local video survives a successful upload.
func (o OutputConfig) KeepLocalValue() bool {
	if o.KeepLocal == nil {
		return true
	}
	return *o.KeepLocal
}

const (
	EncoderFFmpeg = "ffmpeg"
	EncoderMJPEG  = "mjpeg"

	BackendS3    = "s3"
	BackendLocal = "local"

	TransitionRandom    = "random"
	TransitionCrossfade = "crossfade"
	TransitionSlide     = "slide"
)

// Default returns the baseline configuration.
func Default() Config {
	return Config{
		Version: 1,
		Video: VideoConfig{
			Width:   720,
			Height:  1280,
			FPS:     40,
			Quality: 75,
			Encoder: EncoderFFmpeg,
			Codec:   "libx264",
		},
		Timing: TimingConfig{
			DurationSec:   40,
			MaxLengthSec:  20,
			TransitionSec: 2,
		},
		Selection: SelectionConfig{
			RandomChoice: boolPtr(true),
		},
		Sources: SourcesConfig{
			Folder1:      "s3://lily-images/reels/cartoon_images",
			Folder2:      "s3://lily-images/reels/outline_images",
			SingleFolder: "s3://lily-images/pages",
		},
		TextBoxes: []TextBox{
			{
				Text:         "Happy Coloring! Link in Bio!",
				Size:         60,
				Color:        "#fffbed",
				Background:   "#5a006b",
				Y:            170,
				BoxWidth:     520,
				Padding:      5,
				CornerRadius: 25,
			},
			{
				Text:         "Check Our Website. lily10coloringbooks.fun",
				Size:         55,
				Color:        "#fffbed",
				Background:   "#5a006b",
				Y:            1150,
				BoxWidth:     680,
				Padding:      5,
				CornerRadius: 25,
			},
		},
		Foreground: ForegroundConfig{
			Aspect:     0.75,
			FadeSec:    0.5,
			Transition: TransitionRandom,
		},
		Audio: AudioConfig{
			Path: "sounds",
		},
		Output: OutputConfig{
			Dir:       "output",
			File:      "reel.mp4",
			Bucket:    "lily-images",
			Key:       "videos/production_video.mp4",
			KeepLocal: boolPtr(true),
			Overwrite: boolPtr(true),
		},
		Storage: StorageConfig{
			Backend: BackendS3,
		},
	}
}

// Load reads the YAML configuration from disk if it exists, otherwise returns
// the default configuration.
func Load(path string) (Config, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg := Default()
			cfg.ApplyDefaults()
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.ApplyDefaults()
	return cfg, nil
}

// ApplyDefaults ensures nested fields fall back to sensible defaults when the
// YAML omits them.
func (c *Config) ApplyDefaults() {
	defaults := Default()

	if c.Version == 0 {
		c.Version = defaults.Version
	}
	if c.Video.Width == 0 {
		c.Video.Width = defaults.Video.Width
	}
	if c.Video.Height == 0 {
		c.Video.Height = defaults.Video.Height
	}
	if c.Video.FPS == 0 {
		c.Video.FPS = defaults.Video.FPS
	}
	if c.Video.Quality == 0 {
		c.Video.Quality = defaults.Video.Quality
	}
	if c.Video.Encoder == "" {
		c.Video.Encoder = defaults.Video.Encoder
	}
	if c.Video.Codec == "" {
		c.Video.Codec = defaults.Video.Codec
	}
	if c.Timing.DurationSec == 0 {
		c.Timing.DurationSec = defaults.Timing.DurationSec
	}
	if c.Timing.TransitionSec == 0 {
		c.Timing.TransitionSec = defaults.Timing.TransitionSec
	}
	if c.Selection.RandomChoice == nil {
		c.Selection.RandomChoice = boolPtr(true)
	}
	for i := range c.TextBoxes {
		box := &c.TextBoxes[i]
		if box.Size == 0 {
			box.Size = 12
		}
		if box.Color == "" {
			box.Color = "#FFFFFF"
		}
		if box.BoxWidth == 0 {
			box.BoxWidth = c.Video.Width
		}
	}
	if c.Foreground.Aspect == 0 {
		c.Foreground.Aspect = defaults.Foreground.Aspect
	}
	if c.Foreground.FadeSec == 0 {
		c.Foreground.FadeSec = defaults.Foreground.FadeSec
	}
	if c.Foreground.Transition == "" {
		c.Foreground.Transition = defaults.Foreground.Transition
	}
	if c.Output.Dir == "" {
		c.Output.Dir = defaults.Output.Dir
	}
	if c.Output.File == "" {
		c.Output.File = defaults.Output.File
	}
	if c.Output.KeepLocal == nil {
		c.Output.KeepLocal = boolPtr(true)
	}
	if c.Storage.Backend == "" {
		c.Storage.Backend = defaults.Storage.Backend
	}
}

// Marshal returns the YAML encoding of the configuration.
func (c Config) Marshal() ([]byte, error) {
	buf, err := yaml.Marshal(&c)
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	return buf, nil
}

func boolPtr(v bool) *bool {
	return &v
}
