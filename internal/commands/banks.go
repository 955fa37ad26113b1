package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/bankpdf/internal/classify"
	"github.com/cleared-dev/bankpdf/internal/model"
)

func newBanksCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "banks",
		Short: "List supported banks in detection order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for _, b := range classify.Default().Markers() {
				fmt.Fprintln(out, b)
			}
			fmt.Fprintf(out, "%s (fallback)\n", model.BankUnknown)
			return nil
		},
	}
}
