package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/cleared-dev/bankpdf/internal/export"
	"github.com/cleared-dev/bankpdf/internal/importer"
	"github.com/cleared-dev/bankpdf/internal/model"
	"github.com/cleared-dev/bankpdf/internal/pipeline"
	"github.com/cleared-dev/bankpdf/internal/runlog"
)

type convertOptions struct {
	forceOCR      bool
	outDir        string
	format        string
	workers       int
	inbox         string
	moveProcessed bool
	runLog        string
	preview       int
	bank          string
}

func newConvertCommand(root *rootOptions) *cobra.Command {
	opts := &convertOptions{}

	cmd := &cobra.Command{
		Use:   "convert [files...]",
		Short: "Extract transactions from statements and export them",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 && opts.inbox == "" {
				return errors.New("no input files (pass files or --inbox)")
			}
			return runConvert(cmd, root, opts, args)
		},
	}

	cmd.Flags().BoolVar(&opts.forceOCR, "ocr", false, "force OCR even when a text layer exists")
	cmd.Flags().StringVar(&opts.outDir, "out", "", "output directory (default: next to each input)")
	cmd.Flags().StringVar(&opts.format, "format", "", "export format: csv or xlsx")
	cmd.Flags().IntVar(&opts.workers, "workers", 0, "documents processed at once")
	cmd.Flags().StringVar(&opts.inbox, "inbox", "", "also convert every statement in this directory")
	cmd.Flags().BoolVar(&opts.moveProcessed, "move-processed", false, "move converted inbox files into processed/")
	cmd.Flags().StringVar(&opts.runLog, "run-log", "", "append a row per document to this CSV")
	cmd.Flags().IntVar(&opts.preview, "preview", 10, "rows to preview per document (0 disables)")
	cmd.Flags().StringVar(&opts.bank, "bank", "", "skip detection and parse every file as this bank")

	return cmd
}

func runConvert(cmd *cobra.Command, root *rootOptions, opts *convertOptions, files []string) error {
	cfg, logger, err := root.settings(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	if opts.workers > 0 {
		cfg.Workers = opts.workers
	}
	if opts.outDir != "" {
		cfg.Output.Dir = opts.outDir
	}
	if opts.format != "" {
		cfg.Output.Format = opts.format
	}
	format, err := export.ParseFormat(cfg.Output.Format)
	if err != nil {
		return err
	}
	bank, err := parseBankFlag(opts.bank)
	if err != nil {
		return err
	}

	paths := append([]string(nil), files...)
	inboxFiles := map[string]bool{}
	if opts.inbox != "" {
		found, err := importer.Scan(opts.inbox)
		if err != nil {
			return err
		}
		for _, f := range found {
			paths = append(paths, f.Path)
			inboxFiles[f.Path] = true
		}
	}
	if len(paths) == 0 {
		logger.Info("nothing to convert")
		return nil
	}

	docs, err := readDocuments(paths)
	if err != nil {
		return err
	}
	p, err := newPipeline(cfg, opts.forceOCR, bank, logger)
	if err != nil {
		return err
	}

	results := p.ProcessAll(cmd.Context(), docs)

	out := cmd.OutOrStdout()
	var entries []runlog.Entry
	var failed int
	for i, res := range results {
		src := paths[i]
		output, err := writeResult(out, res, src, cfg.Output.Dir, format, opts.preview, logger)
		if err != nil {
			logger.Error("export failed", "file", res.Name, "err", err)
			failed++
		}

		entries = append(entries, runlog.Entry{
			Timestamp: time.Now().UTC(),
			File:      res.Name,
			Bank:      res.Bank.String(),
			Source:    string(res.Extraction.Source),
			Outcome:   string(res.Extraction.Outcome),
			Rows:      len(res.Transactions),
			Output:    output,
		})

		if err == nil && opts.moveProcessed && inboxFiles[src] {
			if err := importer.MarkProcessed(filepath.Dir(src), filepath.Base(src)); err != nil {
				logger.Warn("could not move to processed", "file", res.Name, "err", err)
			}
		}
	}

	if opts.runLog != "" {
		if err := runlog.Append(opts.runLog, entries); err != nil {
			logger.Warn("failed to write run log", "err", err)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d documents failed to export", failed, len(results))
	}
	return nil
}

// writeResult reports one result and writes its export. It returns the
// written path, or "" when there was nothing to write.
func writeResult(out io.Writer, res pipeline.Result, src, outDir string, format export.Format, preview int, logger *log.Logger) (string, error) {
	fmt.Fprintf(out, "%s: %s (%s, %d transactions, net %s)\n", res.Name, res.Bank, res.Extraction.Source,
		len(res.Transactions), export.FormatMoney(res.Transactions.Total()))

	if len(res.Transactions) == 0 {
		logger.Warn(export.ErrNoTransactions.Error(), "file", res.Name, "outcome", res.Extraction.Outcome)
		return "", nil
	}
	if res.Skipped > 0 {
		logger.Warn("rows skipped", "file", res.Name, "skipped", res.Skipped)
	}
	if n := undated(res.Transactions); n > 0 {
		logger.Warn("rows without a usable date", "file", res.Name, "rows", n, "date", model.DateUnparsed)
	}
	if preview > 0 {
		if err := export.Preview(out, res.Transactions, preview); err != nil {
			return "", err
		}
	}

	dir := outDir
	if dir == "" {
		dir = filepath.Dir(src)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating output dir: %w", err)
	}
	path := filepath.Join(dir, export.FileName(res.Name, format))

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating %s: %w", path, err)
	}
	if err := export.Write(f, res.Transactions, format); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("closing %s: %w", path, err)
	}

	fmt.Fprintf(out, "wrote %s\n", path)
	return path, nil
}

func undated(table model.Table) int {
	n := 0
	for _, txn := range table {
		if !txn.HasDate() {
			n++
		}
	}
	return n
}

// parseBankFlag resolves a --bank value; empty means detect per file.
func parseBankFlag(s string) (model.Bank, error) {
	if s == "" {
		return "", nil
	}
	bank, ok := model.ParseBank(s)
	if !ok {
		names := make([]string, len(model.Banks))
		for i, b := range model.Banks {
			names[i] = b.String()
		}
		return "", fmt.Errorf("unknown bank %q (want one of: %s)", s, strings.Join(names, ", "))
	}
	return bank, nil
}
