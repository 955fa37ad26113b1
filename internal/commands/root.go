package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/cleared-dev/bankpdf/internal/buildinfo"
	"github.com/cleared-dev/bankpdf/internal/classify"
	"github.com/cleared-dev/bankpdf/internal/config"
	"github.com/cleared-dev/bankpdf/internal/extract"
	"github.com/cleared-dev/bankpdf/internal/importer"
	"github.com/cleared-dev/bankpdf/internal/model"
	"github.com/cleared-dev/bankpdf/internal/pipeline"
)

type rootOptions struct {
	configPath string
	logLevel   string
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:     "bankpdf",
		Short:   "Convert bank statement PDFs into transaction tables",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", buildinfo.Version, buildinfo.Commit, buildinfo.Date),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to bankpdf.yaml")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "debug, info, warn or error")

	rootCmd.AddCommand(newConvertCommand(opts))
	rootCmd.AddCommand(newDetectCommand(opts))
	rootCmd.AddCommand(newTextCommand(opts))
	rootCmd.AddCommand(newInitConfigCommand())
	rootCmd.AddCommand(newBanksCommand())
	rootCmd.AddCommand(newHistoryCommand())

	return rootCmd
}

// settings loads config, applies env and flag overrides, and builds a logger.
func (o *rootOptions) settings(stderr io.Writer) (*config.Config, *log.Logger, error) {
	cfg, err := config.LoadOrDefault(o.configPath)
	if err != nil {
		return nil, nil, err
	}
	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		return nil, nil, err
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}

	level, err := log.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, nil, fmt.Errorf("log level: %w", err)
	}
	logger := log.NewWithOptions(stderr, log.Options{
		Level:           level,
		ReportTimestamp: true,
	})
	return cfg, logger, nil
}

func newAcquirer(cfg *config.Config, logger *log.Logger) (*extract.Acquirer, error) {
	var cache *extract.Cache
	if cfg.Cache.Size > 0 {
		c, err := extract.NewCache(cfg.Cache.Size)
		if err != nil {
			return nil, err
		}
		cache = c
	}

	ocr := extract.NewOCR(
		extract.Poppler{Binary: cfg.OCR.Pdftoppm, DPI: cfg.OCR.DPI},
		extract.Tesseract{Binary: cfg.OCR.Tesseract, Language: cfg.OCR.Language},
		cfg.OCR.Enhance,
		logger,
	)
	return extract.NewAcquirer(extract.PDFText{}, ocr, extract.Options{
		OCRTimeout: cfg.OCR.Timeout,
		Cache:      cache,
		Logger:     logger,
	}), nil
}

func newPipeline(cfg *config.Config, forceOCR bool, bank model.Bank, logger *log.Logger) (*pipeline.Pipeline, error) {
	acq, err := newAcquirer(cfg, logger)
	if err != nil {
		return nil, err
	}
	return pipeline.New(acq, classify.Default(), importer.DefaultRegistry(), pipeline.Config{
		MinNativeChars: cfg.Extraction.MinNativeChars,
		ForceOCR:       forceOCR,
		Workers:        cfg.Workers,
		Bank:           bank,
	}, logger), nil
}

// readDocuments loads each path as a pipeline document named by its base name.
func readDocuments(paths []string) ([]pipeline.Document, error) {
	docs := make([]pipeline.Document, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", p, err)
		}
		docs = append(docs, pipeline.Document{Name: filepath.Base(p), Data: data})
	}
	return docs, nil
}
