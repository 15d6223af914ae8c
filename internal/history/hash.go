package history

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"

	"reelgen/internal/config"
)

// configInput is the canonical structure hashed to fingerprint a run's
// visual inputs. Output and storage settings are left out so moving the
// upload target does not change the fingerprint.
type configInput struct {
	Video      config.VideoConfig      `json:"video"`
	Timing     config.TimingConfig     `json:"timing"`
	Sources    config.SourcesConfig    `json:"sources"`
	TextBoxes  []config.TextBox        `json:"text_boxes"`
	Foreground config.ForegroundConfig `json:"foreground"`
}

// ConfigHash returns a deterministic hash of the settings that shape the
// rendered frames.
func ConfigHash(cfg config.Config) string {
	return hashJSON(configInput{
		Video:      cfg.Video,
		Timing:     cfg.Timing,
		Sources:    cfg.Sources,
		TextBoxes:  cfg.TextBoxes,
		Foreground: cfg.Foreground,
	})
}

func hashJSON(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("sha256:error-%v", err)
	}
	sum := sha256.Sum256(data)
	return fmt.Sprintf("sha256:%x", sum)
}
