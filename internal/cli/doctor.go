package cli

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"reelgen/internal/audio"
	"reelgen/internal/config"
	"reelgen/internal/paths"
	"reelgen/internal/tools"
)

func newDoctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check workspace health and external tools",
		RunE:  runDoctor,
	}
}

type healthCheck struct {
	Name    string `json:"name"`
	Status  string `json:"status"` // "ok", "warning", "error"
	Summary string `json:"summary"`
}

func runDoctor(cmd *cobra.Command, _ []string) error {
	wp, cfg, cfgErr := loadWorkspace()
	if cfgErr != nil && wp.Root == "" {
		return cfgErr
	}

	var checks []healthCheck

	statuses := tools.Detect(cmd.Context())
	checks = append(checks, checkTools(statuses, cfg.Video.Encoder))
	checks = append(checks, checkEncoders(cmd, statuses, cfg))
	checks = append(checks, checkConfig(cfg, cfgErr))

	if cfgErr != nil {
		// Can't proceed with further checks without config
		return writeDoctorResult(cmd, wp.Root, checks)
	}

	checks = append(checks, checkAudio(wp, cfg))
	checks = append(checks, checkStorage(wp, cfg))

	return writeDoctorResult(cmd, wp.Root, checks)
}

func checkTools(statuses []tools.Status, encoder string) healthCheck {
	var satisfied, total int
	var toolInfo []string
	var missing []string
	for _, st := range statuses {
		total++
		if st.Satisfied {
			satisfied++
			label := st.Tool
			if st.Version != "" {
				label += " " + st.Version
			}
			toolInfo = append(toolInfo, label)
		} else {
			missing = append(missing, st.Tool)
		}
	}

	if satisfied == total {
		return healthCheck{Name: "Tools", Status: "ok", Summary: joinComma(toolInfo)}
	}
	// Without ffmpeg only the mjpeg encoder works and audio is skipped.
	status := "error"
	if encoder == config.EncoderMJPEG {
		status = "warning"
	}
	return healthCheck{
		Name:    "Tools",
		Status:  status,
		Summary: fmt.Sprintf("%d of %d tools satisfied; missing %s", satisfied, total, joinComma(missing)),
	}
}

func checkEncoders(cmd *cobra.Command, statuses []tools.Status, cfg config.Config) healthCheck {
	if cfg.Video.Encoder == config.EncoderMJPEG {
		return healthCheck{Name: "Encoder", Status: "ok", Summary: "mjpeg (built in)"}
	}
	var ffmpegPath string
	for _, st := range statuses {
		if st.Tool == "ffmpeg" && st.Satisfied {
			ffmpegPath = st.Path
		}
	}
	if ffmpegPath == "" {
		return healthCheck{Name: "Encoder", Status: "error", Summary: "ffmpeg unavailable; set video.encoder: mjpeg"}
	}
	available := tools.ProbeEncoders(cmd.Context(), ffmpegPath, tools.H264Encoders, nil)
	return summarizeEncoders(cfg.Video.Codec, available)
}

func summarizeEncoders(codec string, available []string) healthCheck {
	if len(available) == 0 {
		return healthCheck{Name: "Encoder", Status: "error", Summary: "no H.264 encoder available"}
	}
	for _, c := range available {
		if c == codec {
			return healthCheck{Name: "Encoder", Status: "ok", Summary: joinComma(available)}
		}
	}
	return healthCheck{
		Name:    "Encoder",
		Status:  "warning",
		Summary: fmt.Sprintf("%s not available; have %s", codec, joinComma(available)),
	}
}

func checkConfig(cfg config.Config, cfgErr error) healthCheck {
	if cfgErr != nil {
		return healthCheck{Name: "Config", Status: "error", Summary: cfgErr.Error()}
	}

	summary := summarizeValidation(cfg.Validate())
	text := fmt.Sprintf("%dx%d @ %d fps, %d text boxes", cfg.Video.Width, cfg.Video.Height, cfg.Video.FPS, len(cfg.TextBoxes))

	if summary.Errors > 0 {
		return healthCheck{Name: "Config", Status: "error", Summary: fmt.Sprintf("%s; %d errors", text, summary.Errors)}
	}
	if summary.Warnings > 0 {
		return healthCheck{Name: "Config", Status: "warning", Summary: fmt.Sprintf("%s; %d warnings", text, summary.Warnings)}
	}
	return healthCheck{Name: "Config", Status: "ok", Summary: text}
}

func checkAudio(wp paths.WorkspacePaths, cfg config.Config) healthCheck {
	track, err := audio.Pick(fixedPick{}, wp.AudioPath(cfg))
	if err != nil {
		return healthCheck{Name: "Audio", Status: "warning", Summary: err.Error()}
	}
	return healthCheck{Name: "Audio", Status: "ok", Summary: track}
}

// fixedPick always picks the first candidate so doctor output is stable.
type fixedPick struct{}

func (fixedPick) IntN(int) int { return 0 }

func checkStorage(wp paths.WorkspacePaths, cfg config.Config) healthCheck {
	switch cfg.Storage.Backend {
	case config.BackendLocal:
		root := cfg.Storage.LocalRoot
		if !filepath.IsAbs(root) {
			root = filepath.Join(wp.Root, root)
		}
		exists, err := paths.DirExists(root)
		if err != nil || !exists {
			return healthCheck{Name: "Storage", Status: "error", Summary: fmt.Sprintf("local root %s not found", root)}
		}
		return healthCheck{Name: "Storage", Status: "ok", Summary: "local " + root}
	default:
		summary := "s3"
		if cfg.Storage.Region != "" {
			summary += " " + cfg.Storage.Region
		}
		if cfg.Output.Bucket == "" || cfg.Output.Key == "" {
			return healthCheck{Name: "Storage", Status: "warning", Summary: summary + "; upload disabled (no output bucket/key)"}
		}
		return healthCheck{Name: "Storage", Status: "ok", Summary: fmt.Sprintf("%s; upload to s3://%s/%s", summary, cfg.Output.Bucket, cfg.Output.Key)}
	}
}

func writeDoctorResult(cmd *cobra.Command, root string, checks []healthCheck) error {
	if outputJSON {
		data, err := json.MarshalIndent(checks, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	}

	bold := lipgloss.NewStyle().Bold(true).Inline(true)
	green := lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Inline(true)
	yellow := lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Inline(true)
	red := lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Inline(true)

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, bold.Render("WORKSPACE HEALTH:")+" "+root)

	for _, c := range checks {
		var statusStr string
		switch c.Status {
		case "ok":
			statusStr = green.Render("OK")
		case "warning":
			statusStr = yellow.Render("WARN")
		case "error":
			statusStr = red.Render("ERROR")
		}
		fmt.Fprintf(out, "  %-12s %s    %s\n", c.Name+":", statusStr, c.Summary)
	}

	return nil
}

func joinComma(items []string) string {
	return strings.Join(items, ", ")
}
