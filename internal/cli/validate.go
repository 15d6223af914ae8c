package cli

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"reelgen/internal/config"
)

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the workspace configuration",
		RunE:  runValidate,
	}
}

type validationSummary struct {
	Errors   int `json:"errors"`
	Warnings int `json:"warnings"`
}

func summarizeValidation(results []config.ValidationResult) validationSummary {
	var s validationSummary
	for _, r := range results {
		switch r.Level {
		case "error":
			s.Errors++
		case "warning":
			s.Warnings++
		}
	}
	return s
}

func runValidate(cmd *cobra.Command, _ []string) error {
	wp, cfg, err := loadWorkspace()
	if err != nil {
		return err
	}
	results := cfg.Validate()
	summary := summarizeValidation(results)

	if outputJSON {
		payload := struct {
			Workspace string                    `json:"workspace"`
			Results   []config.ValidationResult `json:"results"`
			Summary   validationSummary         `json:"summary"`
		}{wp.Root, results, summary}
		if payload.Results == nil {
			payload.Results = []config.ValidationResult{}
		}
		data, err := json.MarshalIndent(payload, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
	} else {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Workspace: %s\n", wp.Root)
		if len(results) > 0 {
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "LEVEL\tMESSAGE")
			for _, r := range results {
				fmt.Fprintf(tw, "%s\t%s\n", r.Level, r.Message)
			}
			if err := tw.Flush(); err != nil {
				return err
			}
		}
		fmt.Fprintf(out, "%d error(s), %d warning(s)\n", summary.Errors, summary.Warnings)
	}

	if summary.Errors > 0 {
		return fmt.Errorf("configuration has %d error(s)", summary.Errors)
	}
	return nil
}
