// Package slideshow drives one generation run end to end: render the mode
// to a local video, attach audio, upload the result and record the run.
package slideshow

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"reelgen/internal/assets"
	"reelgen/internal/audio"
	"reelgen/internal/config"
	"reelgen/internal/encode"
	"reelgen/internal/history"
	"reelgen/internal/layout"
	"reelgen/internal/logx"
	"reelgen/internal/overlay"
	"reelgen/internal/paths"
	"reelgen/internal/storage"
)

// ErrInvalidMode is returned for a mode outside a..h.
var ErrInvalidMode = layout.ErrInvalidMode

// ErrKeyReused is returned when output.overwrite is false and an earlier
// run already uploaded to the same bucket and key.
var ErrKeyReused = errors.New("output key already used by an earlier run")

// State is the lifecycle position of a run.
type State int

const (
	Configured State = iota
	GeneratingFrames
	Encoded
	AudioAttached
	Uploaded
	Aborted
)

func (s State) String() string {
	switch s {
	case Configured:
		return "configured"
	case GeneratingFrames:
		return "generating"
	case Encoded:
		return "encoded"
	case AudioAttached:
		return "audio"
	case Uploaded:
		return "uploaded"
	case Aborted:
		return "aborted"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// ProgressReporter receives notifications as a run moves through its
// states and frames.
type ProgressReporter interface {
	Phase(state State, detail string)
	Frame(done, total int)
}

// Options tunes a single Generate call.
type Options struct {
	SkipUpload bool
	SkipAudio  bool
	Reporter   ProgressReporter
}

// Result captures the outcome of a run.
type Result struct {
	ID         string
	Mode       string
	Opposite   bool
	State      State
	Output     string
	URL        string
	Key        string
	Replaces   string
	Track      string
	AudioError error
	Stats      layout.Stats
	Elapsed    time.Duration
}

// SinkOpener creates the encoder for a run.
type SinkOpener func(encode.Options) (encode.Sink, error)

// Generator binds a configuration to the collaborators a run needs.
type Generator struct {
	Config   config.Config
	Paths    paths.WorkspacePaths
	Store    storage.Store
	Rand     assets.Rand
	Seed     int64
	Logger   *log.Logger
	Attacher *audio.Attacher
	Sinks    SinkOpener
	Now      func() time.Time

	state State
}

// New prepares a generator. Attacher and Sinks default to the ffmpeg
// implementations.
func New(cfg config.Config, wp paths.WorkspacePaths, store storage.Store, rng assets.Rand, logger *log.Logger) *Generator {
	logger = logx.OrDiscard(logger)
	return &Generator{
		Config:   cfg,
		Paths:    paths.ApplyConfig(wp, cfg),
		Store:    store,
		Rand:     rng,
		Logger:   logger,
		Attacher: audio.New(nil, rng, logger),
		Sinks:    encode.Open,
		Now:      time.Now,
	}
}

// State returns the state the last run reached.
func (g *Generator) State() State { return g.state }

func (g *Generator) enter(s State, opts Options, detail string) {
	g.state = s
	g.Logger.Printf("run: %s %s", s, detail)
	if opts.Reporter != nil {
		opts.Reporter.Phase(s, detail)
	}
}

// Generate renders mode and carries the video through audio, upload and
// history. Errors from the audio step are logged and reported in the
// result without failing the run.
func (g *Generator) Generate(ctx context.Context, mode string, opts Options) (Result, error) {
	started := g.Now()
	cfg := g.Config
	res := Result{
		ID:       history.NewID(),
		Mode:     strings.ToLower(strings.TrimSpace(mode)),
		Opposite: cfg.Selection.Opposite,
		Output:   g.Paths.OutputFile(cfg),
	}
	g.state = Configured

	if _, err := layout.Lookup(res.Mode); err != nil {
		res.State = Aborted
		g.state = Aborted
		return res, err
	}

	if err := g.Paths.EnsureMetaDirs(); err != nil {
		res.State = Aborted
		g.state = Aborted
		return res, err
	}

	engine := &layout.Engine{Store: g.Store, Rand: g.Rand, Logger: g.Logger}
	job := layout.Job{
		Mode:   res.Mode,
		Width:  cfg.Video.Width,
		Height: cfg.Video.Height,
		Timing: assets.Timing{
			FPS:           cfg.Video.FPS,
			DurationSec:   cfg.Timing.DurationSec,
			MaxLengthSec:  cfg.Timing.MaxLengthSec,
			TransitionSec: cfg.Timing.TransitionSec,
		},
		Policy:     assets.Policy{Sample: cfg.Selection.RandomChoiceValue()},
		Opposite:   cfg.Selection.Opposite,
		Sources:    cfg.Sources,
		Foreground: cfg.Foreground,
		Overlays:   overlay.Prepare(cfg.TextBoxes, cfg.Video.Width, g.Logger),
	}
	if opts.Reporter != nil {
		job.Progress = opts.Reporter.Frame
	}

	g.enter(GeneratingFrames, opts, "mode "+res.Mode)
	opened := false
	stats, err := engine.Render(ctx, job, func() (encode.Sink, error) {
		opened = true
		return g.Sinks(encode.Options{
			Path:    res.Output,
			Width:   cfg.Video.Width,
			Height:  cfg.Video.Height,
			FPS:     cfg.Video.FPS,
			Quality: cfg.Video.Quality,
			Codec:   cfg.Video.Codec,
			Backend: cfg.Video.Encoder,
			Logger:  g.Logger,
		})
	})
	res.Stats = stats
	if err != nil {
		if opened {
			if rmErr := os.Remove(res.Output); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
				g.Logger.Printf("remove partial output %s: %v", res.Output, rmErr)
			}
		}
		res.Output = ""
		res.State = Aborted
		g.enter(Aborted, opts, err.Error())
		return res, err
	}
	g.enter(Encoded, opts, fmt.Sprintf("%d frames", stats.Frames))

	if !opts.SkipAudio {
		track, err := g.Attacher.Attach(ctx, res.Output, g.Paths.AudioPath(cfg))
		if err != nil {
			res.AudioError = err
			g.Logger.Printf("audio skipped: %v", err)
		} else {
			res.Track = track
			g.enter(AudioAttached, opts, track)
		}
	}

	if !opts.SkipUpload {
		url, err := g.upload(ctx, &res, started)
		if err != nil {
			res.State = g.state
			res.Elapsed = g.Now().Sub(started)
			return res, err
		}
		if url != "" {
			res.URL = url
			g.enter(Uploaded, opts, url)
			if !cfg.Output.KeepLocalValue() {
				if err := os.Remove(res.Output); err != nil {
					g.Logger.Printf("remove local output: %v", err)
				} else {
					res.Output = ""
				}
			}
		}
	}

	res.State = g.state
	res.Elapsed = g.Now().Sub(started)
	if err := history.Record(g.Paths.HistoryFile, history.Entry{
		ID:         res.ID,
		Mode:       res.Mode,
		Opposite:   res.Opposite,
		Seed:       g.Seed,
		Frames:     stats.Frames,
		Output:     res.Output,
		URL:        res.URL,
		Bucket:     strings.TrimSpace(cfg.Output.Bucket),
		Key:        res.Key,
		Track:      res.Track,
		ConfigHash: history.ConfigHash(cfg),
		CreatedAt:  started.UTC(),
		DurationS:  res.Elapsed.Seconds(),
	}); err != nil {
		g.Logger.Printf("record history: %v", err)
	}
	return res, nil
}

// upload pushes the video to the configured destination. A missing bucket
// or key skips the upload and returns an empty URL. The key is expanded
// for the run and checked against earlier uploads in the history log.
func (g *Generator) upload(ctx context.Context, res *Result, started time.Time) (string, error) {
	bucket := strings.TrimSpace(g.Config.Output.Bucket)
	key := ExpandKey(g.Config.Output.Key, res.ID, res.Mode, started)
	if bucket == "" || key == "" {
		g.Logger.Printf("upload skipped: output bucket or key not set")
		return "", nil
	}
	res.Key = key

	overwrite := g.Config.Output.OverwriteValue()
	runs, err := history.Load(g.Paths.HistoryFile)
	switch {
	case err != nil && !overwrite:
		return "", fmt.Errorf("check output key %s: %w", key, err)
	case err != nil:
		g.Logger.Printf("history unreadable, cannot check key reuse: %v", err)
	default:
		if prev, ok := runs.FindKey(bucket, key); ok {
			if !overwrite {
				return "", fmt.Errorf("%s/%s (run %s): %w", bucket, key, prev.ID, ErrKeyReused)
			}
			g.Logger.Printf("warning: %s/%s replaces the upload from run %s", bucket, key, prev.ID)
			res.Replaces = prev.ID
		}
	}

	url, err := g.Store.Upload(ctx, res.Output, bucket, key)
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", res.Output, err)
	}
	return url, nil
}

// ExpandKey fills the {id}, {mode} and {date} placeholders of an output
// key. Keys without placeholders come back trimmed but otherwise unchanged.
func ExpandKey(key, id, mode string, at time.Time) string {
	key = strings.TrimSpace(key)
	if !strings.Contains(key, "{") {
		return key
	}
	return strings.NewReplacer(
		"{id}", id,
		"{mode}", mode,
		"{date}", at.UTC().Format("20060102"),
	).Replace(key)
}

// RandomMode picks one of the registered modes uniformly.
func RandomMode(rng assets.Rand) string {
	names := layout.Names()
	return names[rng.IntN(len(names))]
}

// RandomOpposite flips a coin for the direction flag.
func RandomOpposite(rng assets.Rand) bool {
	return rng.IntN(2) == 1
}
