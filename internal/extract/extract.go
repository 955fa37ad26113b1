// Package extract acquires plain text from statement PDFs, either from the
// embedded text layer or by rasterizing pages and running OCR.
package extract

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// Source says which mechanism produced an Extraction.
type Source string

const (
	SourceNative Source = "native"
	SourceOCR    Source = "ocr"
)

// Outcome classifies an extraction attempt.
type Outcome string

const (
	// OutcomeText means the mechanism worked and produced visible text.
	OutcomeText Outcome = "text"
	// OutcomeEmpty means the mechanism worked but produced only whitespace.
	OutcomeEmpty Outcome = "empty"
	// OutcomeFailed means the mechanism broke: corrupt or encrypted file,
	// missing tool, timeout. Text is always empty.
	OutcomeFailed Outcome = "failed"
)

// ErrNoOCR is recorded when OCR is requested but no OCR source is configured.
var ErrNoOCR = errors.New("ocr not configured")

// Extraction is the result of one acquisition attempt. Failures are carried
// in Err for diagnostics only; callers treat them as empty text.
type Extraction struct {
	Text    string
	Source  Source
	Outcome Outcome
	Err     error
}

// TextSource turns PDF bytes into text.
type TextSource interface {
	Text(ctx context.Context, data []byte) (string, error)
}

// Options configures an Acquirer.
type Options struct {
	OCRTimeout time.Duration // zero disables the timeout
	Cache      *Cache        // nil disables caching
	Logger     *log.Logger
}

// Acquirer runs native extraction or OCR and never fails outright.
type Acquirer struct {
	native     TextSource
	ocr        TextSource
	cache      *Cache
	ocrTimeout time.Duration
	logger     *log.Logger
}

// NewAcquirer creates an Acquirer. ocr may be nil when no OCR engine is available.
func NewAcquirer(native, ocr TextSource, opts Options) *Acquirer {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Acquirer{
		native:     native,
		ocr:        ocr,
		cache:      opts.Cache,
		ocrTimeout: opts.OCRTimeout,
		logger:     logger,
	}
}

// Extract returns the text of data. With forceOCR false only the text layer
// is read; with forceOCR true pages are rasterized and recognized. Identical
// (data, forceOCR) pairs are served from the cache when one is configured.
func (a *Acquirer) Extract(ctx context.Context, data []byte, forceOCR bool) Extraction {
	if a.cache == nil {
		return a.extract(ctx, data, forceOCR)
	}
	key := NewKey(data, forceOCR)
	ex := a.cache.Do(ctx, key, func() Extraction {
		return a.extract(ctx, data, forceOCR)
	})
	a.logger.Debug("extraction cache", "key", key, "entries", a.cache.Len())
	return ex
}

func (a *Acquirer) extract(ctx context.Context, data []byte, forceOCR bool) Extraction {
	if !forceOCR {
		return a.run(ctx, SourceNative, a.native, data)
	}
	if a.ocr == nil {
		return Extraction{Source: SourceOCR, Outcome: OutcomeFailed, Err: ErrNoOCR}
	}
	if a.ocrTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.ocrTimeout)
		defer cancel()
	}
	return a.run(ctx, SourceOCR, a.ocr, data)
}

func (a *Acquirer) run(ctx context.Context, src Source, ts TextSource, data []byte) (ex Extraction) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			ex = Extraction{Source: src, Outcome: OutcomeFailed, Err: fmt.Errorf("%s extraction panicked: %v", src, r)}
		}
		if ex.Err != nil {
			a.logger.Debug("extraction failed", "source", src, "err", ex.Err)
			return
		}
		a.logger.Debug("extraction finished", "source", src, "outcome", ex.Outcome,
			"chars", len(ex.Text), "took", time.Since(start))
	}()

	if ts == nil {
		return Extraction{Source: src, Outcome: OutcomeFailed, Err: fmt.Errorf("%s source not configured", src)}
	}

	text, err := ts.Text(ctx, data)
	if err != nil {
		return Extraction{Source: src, Outcome: OutcomeFailed, Err: err}
	}
	if strings.TrimSpace(text) == "" {
		return Extraction{Text: text, Source: src, Outcome: OutcomeEmpty}
	}
	return Extraction{Text: text, Source: src, Outcome: OutcomeText}
}
