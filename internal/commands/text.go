package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/bankpdf/internal/extract"
	"github.com/cleared-dev/bankpdf/internal/pipeline"
)

func newTextCommand(root *rootOptions) *cobra.Command {
	var forceOCR bool

	cmd := &cobra.Command{
		Use:   "text file",
		Short: "Print the text acquired from a statement",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runText(cmd, root, args[0], forceOCR)
		},
	}

	cmd.Flags().BoolVar(&forceOCR, "ocr", false, "force OCR even when a text layer exists")

	return cmd
}

func runText(cmd *cobra.Command, root *rootOptions, path string, forceOCR bool) error {
	cfg, logger, err := root.settings(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	p, err := newPipeline(cfg, forceOCR, "", logger)
	if err != nil {
		return err
	}

	ex := p.Acquire(cmd.Context(), pipeline.Document{Name: filepath.Base(path), Data: data})
	if ex.Outcome == extract.OutcomeFailed {
		return fmt.Errorf("extracting %s: %w", path, ex.Err)
	}
	logger.Debug("acquired text", "source", ex.Source, "outcome", ex.Outcome)

	_, err = fmt.Fprint(cmd.OutOrStdout(), ex.Text)
	return err
}
