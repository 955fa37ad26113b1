package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newDetectCommand(root *rootOptions) *cobra.Command {
	var forceOCR bool

	cmd := &cobra.Command{
		Use:   "detect files...",
		Short: "Print the bank each statement belongs to",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDetect(cmd, root, args, forceOCR)
		},
	}

	cmd.Flags().BoolVar(&forceOCR, "ocr", false, "force OCR even when a text layer exists")

	return cmd
}

func runDetect(cmd *cobra.Command, root *rootOptions, files []string, forceOCR bool) error {
	cfg, logger, err := root.settings(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	docs, err := readDocuments(files)
	if err != nil {
		return err
	}
	p, err := newPipeline(cfg, forceOCR, "", logger)
	if err != nil {
		return err
	}

	for _, res := range p.ProcessAll(cmd.Context(), docs) {
		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", res.Name, res.Bank)
	}
	return nil
}
