package cli

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"reelgen/internal/history"
	"reelgen/internal/tui"
)

var historyLimit int

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded generation runs, newest first",
		RunE:  runHistory,
	}
	cmd.Flags().IntVar(&historyLimit, "limit", 20, "Maximum number of runs to show (0 for all)")
	return cmd
}

func runHistory(cmd *cobra.Command, _ []string) error {
	wp, _, err := loadWorkspace()
	if err != nil {
		return err
	}
	log, err := history.Load(wp.HistoryFile)
	if err != nil {
		return err
	}
	runs := log.Latest(historyLimit)

	if outputJSON {
		data, err := json.MarshalIndent(runs, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	}

	if len(runs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no runs recorded")
		return nil
	}
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "WHEN\tMODE\tOPPOSITE\tFRAMES\tURL")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%v\t%d\t%s\n",
			r.CreatedAt.Local().Format(time.DateTime), r.Mode, r.Opposite, r.Frames, tui.NonEmptyOrDash(r.URL))
	}
	return tw.Flush()
}
