package commands

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/bankpdf/internal/runlog"
)

func newHistoryCommand() *cobra.Command {
	var last int

	cmd := &cobra.Command{
		Use:   "history run-log",
		Short: "Show conversions recorded in a run log",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(cmd, args[0], last)
		},
	}

	cmd.Flags().IntVar(&last, "last", 0, "only show the most recent N entries")

	return cmd
}

func runHistory(cmd *cobra.Command, path string, last int) error {
	entries, err := runlog.Read(path)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no runs recorded")
		return nil
	}
	if last > 0 && last < len(entries) {
		entries = entries[len(entries)-last:]
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tFILE\tBANK\tSOURCE\tROWS\tOUTPUT")
	for _, e := range entries {
		output := e.Output
		if output == "" {
			output = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\n",
			e.Timestamp.Local().Format(time.DateTime), e.File, e.Bank, e.Source, e.Rows, output)
	}
	return tw.Flush()
}
