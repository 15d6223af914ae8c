package cli

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"reelgen/internal/layout"
)

func newModesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "modes",
		Short: "List the available layout modes",
		RunE:  runModes,
	}
}

type modeJSON struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Tracks      int    `json:"tracks"`
	Scroll      string `json:"scroll"`
	Tile        string `json:"tile"`
	Pairing     string `json:"pairing"`
	Slideshow   bool   `json:"slideshow"`
}

func runModes(cmd *cobra.Command, _ []string) error {
	modes := layout.Modes()
	rows := make([]modeJSON, 0, len(modes))
	for _, m := range modes {
		rows = append(rows, modeJSON{
			Name:        m.Name,
			Description: m.Description,
			Tracks:      m.TrackCount(),
			Scroll:      m.Scroll.String(),
			Tile:        m.Shape.String(),
			Pairing:     m.Keying.String(),
			Slideshow:   m.Slideshow,
		})
	}

	if outputJSON {
		data, err := json.MarshalIndent(rows, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "MODE\tTRACKS\tSCROLL\tTILE\tPAIRING\tDESCRIPTION")
	for _, r := range rows {
		tracks := fmt.Sprintf("%d", r.Tracks)
		if r.Slideshow {
			tracks += "+fg"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", r.Name, tracks, r.Scroll, r.Tile, r.Pairing, r.Description)
	}
	return tw.Flush()
}
