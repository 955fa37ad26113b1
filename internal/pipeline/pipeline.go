// Package pipeline runs text acquisition, bank classification and
// transaction parsing for each statement document.
package pipeline

import (
	"context"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/cleared-dev/bankpdf/internal/classify"
	"github.com/cleared-dev/bankpdf/internal/extract"
	"github.com/cleared-dev/bankpdf/internal/importer"
	"github.com/cleared-dev/bankpdf/internal/model"
)

// DefaultMinNativeChars is the text length below which a document is
// treated as scanned and sent through OCR.
const DefaultMinNativeChars = 100

// Document is one input file. Data is never modified.
type Document struct {
	Name string
	Data []byte
}

// IsText reports whether the document holds already-extracted text.
func (d Document) IsText() bool {
	return strings.EqualFold(filepath.Ext(d.Name), ".txt")
}

// Result is everything produced for one document.
type Result struct {
	Name         string
	Bank         model.Bank
	Transactions model.Table
	Extraction   extract.Extraction
	UsedOCR      bool
	Matched      int
	Skipped      int
}

// Extractor is the text acquisition step.
type Extractor interface {
	Extract(ctx context.Context, data []byte, forceOCR bool) extract.Extraction
}

// Config tunes the pipeline.
type Config struct {
	MinNativeChars int        // zero uses DefaultMinNativeChars
	ForceOCR       bool       // skip native extraction entirely
	Workers        int        // documents processed at once; <= 1 is sequential
	Bank           model.Bank // when set, used instead of classification
}

// Pipeline wires the acquisition, classification and parsing steps.
type Pipeline struct {
	extractor  Extractor
	classifier *classify.Classifier
	parsers    *importer.Registry
	cfg        Config
	logger     *log.Logger
}

// New creates a Pipeline.
func New(extractor Extractor, classifier *classify.Classifier, parsers *importer.Registry, cfg Config, logger *log.Logger) *Pipeline {
	if cfg.MinNativeChars <= 0 {
		cfg.MinNativeChars = DefaultMinNativeChars
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Pipeline{
		extractor:  extractor,
		classifier: classifier,
		parsers:    parsers,
		cfg:        cfg,
		logger:     logger,
	}
}

// NeedsOCR reports whether native text is too short to be a real text layer.
func NeedsOCR(text string, minChars int) bool {
	return utf8.RuneCountInString(text) < minChars
}

// Process runs one document through the pipeline. It never fails; problems
// show up as an Unknown bank or a short or empty table.
func (p *Pipeline) Process(ctx context.Context, doc Document) Result {
	logger := p.logger.With("file", doc.Name)

	ex := p.acquire(ctx, doc, logger)
	bank := p.cfg.Bank
	if bank == "" {
		bank = p.classifier.Classify(ex.Text)
	}
	parsed := p.parsers.Parse(ex.Text, bank)

	logger.Info("processed", "bank", bank, "source", ex.Source,
		"transactions", len(parsed.Transactions), "skipped", parsed.Skipped)

	return Result{
		Name:         doc.Name,
		Bank:         bank,
		Transactions: parsed.Transactions,
		Extraction:   ex,
		UsedOCR:      ex.Source == extract.SourceOCR,
		Matched:      parsed.Matched,
		Skipped:      parsed.Skipped,
	}
}

// Acquire returns the text of doc. Text documents are used as-is. Otherwise
// native extraction runs first and OCR is used when the text layer is
// shorter than MinNativeChars; a failed OCR run keeps the native result.
func (p *Pipeline) Acquire(ctx context.Context, doc Document) extract.Extraction {
	return p.acquire(ctx, doc, p.logger.With("file", doc.Name))
}

func (p *Pipeline) acquire(ctx context.Context, doc Document, logger *log.Logger) extract.Extraction {
	if doc.IsText() {
		text := string(doc.Data)
		outcome := extract.OutcomeText
		if strings.TrimSpace(text) == "" {
			outcome = extract.OutcomeEmpty
		}
		return extract.Extraction{Text: text, Source: extract.SourceNative, Outcome: outcome}
	}

	if p.cfg.ForceOCR {
		return p.extractor.Extract(ctx, doc.Data, true)
	}

	native := p.extractor.Extract(ctx, doc.Data, false)
	if !NeedsOCR(native.Text, p.cfg.MinNativeChars) {
		return native
	}

	logger.Info("text layer too short, running OCR", "chars", utf8.RuneCountInString(native.Text), "outcome", native.Outcome)
	ocr := p.extractor.Extract(ctx, doc.Data, true)
	if ocr.Outcome == extract.OutcomeFailed {
		logger.Warn("OCR failed, keeping native text", "err", ocr.Err)
		return native
	}
	return ocr
}

// ProcessAll processes docs on up to cfg.Workers goroutines. Results are
// returned in the order of docs.
func (p *Pipeline) ProcessAll(ctx context.Context, docs []Document) []Result {
	results := make([]Result, len(docs))

	g, ctx := errgroup.WithContext(ctx)
	workers := p.cfg.Workers
	if workers < 1 {
		workers = 1
	}
	g.SetLimit(workers)

	for i, doc := range docs {
		i, doc := i, doc
		g.Go(func() error {
			results[i] = p.Process(ctx, doc)
			return nil
		})
	}
	_ = g.Wait()
	return results
}
