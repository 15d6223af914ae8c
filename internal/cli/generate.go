package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"reelgen/internal/config"
	"reelgen/internal/logx"
	"reelgen/internal/slideshow"
	"reelgen/internal/storage"
	"reelgen/internal/tui"
)

var (
	generateMode       string
	generateOpposite   string
	generateSeed       int64
	generateNoAudio    bool
	generateNoUpload   bool
	generateNoProgress bool
)

func newGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Render a reel, attach audio and upload it",
		RunE:  runGenerate,
	}

	cmd.Flags().StringVar(&generateMode, "mode", "random", "Layout mode a..h, or random")
	cmd.Flags().StringVar(&generateOpposite, "opposite", "", "Direction flag: true, false or random (default from config)")
	cmd.Flags().Int64Var(&generateSeed, "seed", 0, "Random seed (0 uses the config seed or the clock)")
	cmd.Flags().BoolVar(&generateNoAudio, "no-audio", false, "Skip attaching background audio")
	cmd.Flags().BoolVar(&generateNoUpload, "no-upload", false, "Keep the video local")
	cmd.Flags().BoolVar(&generateNoProgress, "no-progress", false, "Disable interactive progress output")
	return cmd
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	wp, cfg, err := loadWorkspace()
	if err != nil {
		return err
	}

	results := cfg.Validate()
	for _, r := range results {
		if r.Level == "warning" {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", r.Message)
		}
	}
	if config.HasErrors(results) {
		return fmt.Errorf("invalid configuration:\n%s", joinValidationErrors(results))
	}

	seed := resolveSeed(generateSeed, cfg.Selection.Seed, time.Now)
	rng := newRand(seed)

	mode, err := resolveMode(generateMode, rng)
	if err != nil {
		return err
	}
	opposite, err := resolveOpposite(generateOpposite, cfg.Selection.Opposite, rng)
	if err != nil {
		return err
	}
	cfg.Selection.Opposite = opposite

	if err := wp.EnsureMetaDirs(); err != nil {
		return err
	}
	logger, closer, err := logx.New(wp)
	if err != nil {
		return err
	}
	defer closer.Close()
	logger.Printf("generate: mode=%s opposite=%v seed=%d", mode, opposite, seed)

	out := cmd.OutOrStdout()
	outMode := tui.DetectMode(out, generateNoProgress, outputJSON)

	var spin *tui.Spinner
	if outMode == tui.ModeTUI {
		spin = tui.StartSpinner(out, "Connecting to "+cfg.Storage.Backend+" storage")
	}
	store, err := storage.Open(ctx, cfg.Storage, wp.Root, logger)
	if spin != nil {
		spin.Stop()
	}
	if err != nil {
		return err
	}

	gen := slideshow.New(cfg, wp, store, rng, logger)
	gen.Seed = seed
	opts := slideshow.Options{SkipAudio: generateNoAudio, SkipUpload: generateNoUpload}

	var res slideshow.Result
	var genErr error

	switch outMode {
	case tui.ModeTUI:
		fmt.Fprintf(out, "Workspace: %s\n", wp.Root)
		runCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		done := make(chan struct{})
		model := tui.NewGenerationModel(fmt.Sprintf("reelgen mode %s", mode))
		err := tui.RunWithWork(out, model, func(send func(tea.Msg)) {
			defer close(done)
			opts.Reporter = tui.NewGenerationReporter(send)
			res, genErr = gen.Generate(runCtx, mode, opts)
			if genErr != nil {
				send(tui.ErrorMsg{Err: genErr})
			}
		})
		if errors.Is(err, tui.ErrInterrupted) {
			cancel()
		}
		<-done
		if genErr != nil {
			return genErr
		}
		if err != nil {
			return err
		}
		writeGenerateSummary(out, res)
	case tui.ModeJSON:
		res, genErr = gen.Generate(ctx, mode, opts)
		if err := writeGenerateJSON(out, res, seed, genErr); err != nil {
			return err
		}
		return genErr
	default:
		opts.Reporter = newPlainReporter(out)
		res, genErr = gen.Generate(ctx, mode, opts)
		if genErr != nil {
			return genErr
		}
		writeGenerateSummary(out, res)
	}
	return nil
}

// resolveSeed prefers the flag, then the config, then the clock.
func resolveSeed(flag, configured int64, now func() time.Time) int64 {
	if flag != 0 {
		return flag
	}
	if configured != 0 {
		return configured
	}
	return now().UnixNano()
}

func newRand(seed int64) *rand.Rand {
	return rand.New(rand.NewPCG(uint64(seed), uint64(seed)^0x9e3779b97f4a7c15))
}

func resolveMode(value string, rng *rand.Rand) (string, error) {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" || value == "random" {
		return slideshow.RandomMode(rng), nil
	}
	return value, nil
}

func resolveOpposite(value string, configured bool, rng *rand.Rand) (bool, error) {
	value = strings.ToLower(strings.TrimSpace(value))
	switch value {
	case "":
		return configured, nil
	case "random":
		return slideshow.RandomOpposite(rng), nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("invalid --opposite value %q (want true, false or random)", value)
	}
	return b, nil
}

func joinValidationErrors(results []config.ValidationResult) string {
	var lines []string
	for _, r := range results {
		if r.Level == "error" {
			lines = append(lines, "  - "+r.Message)
		}
	}
	return strings.Join(lines, "\n")
}

func writeGenerateSummary(out io.Writer, res slideshow.Result) {
	fmt.Fprintf(out, "mode %s (opposite=%v): %d frames in %s\n", res.Mode, res.Opposite, res.Stats.Frames, res.Elapsed.Round(time.Millisecond))
	if res.Output != "" {
		fmt.Fprintf(out, "video: %s\n", res.Output)
	}
	if res.Track != "" {
		fmt.Fprintf(out, "audio: %s\n", res.Track)
	}
	if res.AudioError != nil {
		fmt.Fprintf(out, "audio skipped: %v\n", res.AudioError)
	}
	if res.URL != "" {
		fmt.Fprintf(out, "url: %s\n", res.URL)
	}
	if res.Replaces != "" {
		fmt.Fprintf(out, "replaced upload from run %s\n", res.Replaces)
	}
}

type generateJSON struct {
	ID         string  `json:"id"`
	Mode       string  `json:"mode"`
	Opposite   bool    `json:"opposite"`
	Seed       int64   `json:"seed"`
	State      string  `json:"state"`
	Frames     int     `json:"frames"`
	Pairs      int     `json:"pairs"`
	Unmatched  int     `json:"unmatched"`
	Skipped    int     `json:"skipped"`
	Output     string  `json:"output,omitempty"`
	Track      string  `json:"audio_track,omitempty"`
	AudioError string  `json:"audio_error,omitempty"`
	URL        string  `json:"url,omitempty"`
	Key        string  `json:"key,omitempty"`
	Replaces   string  `json:"replaces,omitempty"`
	ElapsedS   float64 `json:"elapsed_s"`
	Error      string  `json:"error,omitempty"`
}

func writeGenerateJSON(out io.Writer, res slideshow.Result, seed int64, genErr error) error {
	payload := generateJSON{
		ID:         res.ID,
		Mode:       res.Mode,
		Opposite:   res.Opposite,
		Seed:       seed,
		State:      res.State.String(),
		Frames:     res.Stats.Frames,
		Pairs:      res.Stats.Pairs,
		Unmatched:  res.Stats.Unmatched,
		Skipped:    res.Stats.Skipped,
		Output:     res.Output,
		Track:      res.Track,
		AudioError: errorString(res.AudioError),
		URL:        res.URL,
		Key:        res.Key,
		Replaces:   res.Replaces,
		ElapsedS:   res.Elapsed.Seconds(),
		Error:      errorString(genErr),
	}
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(out, string(data))
	return nil
}

func errorString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
