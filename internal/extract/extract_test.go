package extract

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubSource returns fixed text or an error and counts calls.
type stubSource struct {
	text  string
	err   error
	calls atomic.Int32
}

func (s *stubSource) Text(ctx context.Context, data []byte) (string, error) {
	s.calls.Add(1)
	return s.text, s.err
}

type panicSource struct{}

func (panicSource) Text(ctx context.Context, data []byte) (string, error) {
	panic("malformed xref")
}

// blockingSource waits for the context to end.
type blockingSource struct{}

func (blockingSource) Text(ctx context.Context, data []byte) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

var doc = []byte("%PDF-1.4 statement")

func TestExtract_NativeText(t *testing.T) {
	native := &stubSource{text: "Absa statement\n"}
	a := NewAcquirer(native, nil, Options{})

	ex := a.Extract(context.Background(), doc, false)
	assert.Equal(t, "Absa statement\n", ex.Text)
	assert.Equal(t, SourceNative, ex.Source)
	assert.Equal(t, OutcomeText, ex.Outcome)
	assert.NoError(t, ex.Err)
}

func TestExtract_NativeEmpty(t *testing.T) {
	a := NewAcquirer(&stubSource{text: "\n \n"}, nil, Options{})

	ex := a.Extract(context.Background(), doc, false)
	assert.Equal(t, OutcomeEmpty, ex.Outcome)
	assert.NoError(t, ex.Err)
}

func TestExtract_NativeFailureIsSwallowed(t *testing.T) {
	a := NewAcquirer(&stubSource{text: "partial", err: errors.New("encrypted")}, nil, Options{})

	ex := a.Extract(context.Background(), doc, false)
	assert.Equal(t, OutcomeFailed, ex.Outcome)
	assert.Empty(t, ex.Text)
	assert.EqualError(t, ex.Err, "encrypted")
}

func TestExtract_PanicIsSwallowed(t *testing.T) {
	a := NewAcquirer(panicSource{}, nil, Options{})

	ex := a.Extract(context.Background(), doc, false)
	assert.Equal(t, OutcomeFailed, ex.Outcome)
	assert.Empty(t, ex.Text)
	require.Error(t, ex.Err)
	assert.Contains(t, ex.Err.Error(), "malformed xref")
}

func TestExtract_ForceOCR(t *testing.T) {
	native := &stubSource{text: "native"}
	ocr := &stubSource{text: "scanned text"}
	a := NewAcquirer(native, ocr, Options{})

	ex := a.Extract(context.Background(), doc, true)
	assert.Equal(t, "scanned text", ex.Text)
	assert.Equal(t, SourceOCR, ex.Source)
	assert.Equal(t, int32(0), native.calls.Load())
	assert.Equal(t, int32(1), ocr.calls.Load())
}

func TestExtract_OCRNotConfigured(t *testing.T) {
	a := NewAcquirer(&stubSource{text: "x"}, nil, Options{})

	ex := a.Extract(context.Background(), doc, true)
	assert.Equal(t, OutcomeFailed, ex.Outcome)
	assert.ErrorIs(t, ex.Err, ErrNoOCR)
}

func TestExtract_OCRTimeout(t *testing.T) {
	a := NewAcquirer(nil, blockingSource{}, Options{OCRTimeout: 20 * time.Millisecond})

	start := time.Now()
	ex := a.Extract(context.Background(), doc, true)
	assert.Less(t, time.Since(start), 5*time.Second)
	assert.Equal(t, OutcomeFailed, ex.Outcome)
	assert.ErrorIs(t, ex.Err, context.DeadlineExceeded)
}

func TestExtract_CachedByContentAndFlag(t *testing.T) {
	cache, err := NewCache(8)
	require.NoError(t, err)

	native := &stubSource{text: "native text"}
	ocr := &stubSource{text: "ocr text"}
	a := NewAcquirer(native, ocr, Options{Cache: cache})

	for i := 0; i < 3; i++ {
		assert.Equal(t, "native text", a.Extract(context.Background(), doc, false).Text)
		assert.Equal(t, "ocr text", a.Extract(context.Background(), doc, true).Text)
	}
	// Same bytes in a different slice hit the same entry.
	assert.Equal(t, "native text", a.Extract(context.Background(), append([]byte(nil), doc...), false).Text)

	assert.Equal(t, int32(1), native.calls.Load())
	assert.Equal(t, int32(1), ocr.calls.Load())
	assert.Equal(t, 2, cache.Len())

	a.Extract(context.Background(), []byte("other document"), false)
	assert.Equal(t, int32(2), native.calls.Load())
}

func TestExtract_TimeoutNotCached(t *testing.T) {
	cache, err := NewCache(8)
	require.NoError(t, err)

	a := NewAcquirer(nil, blockingSource{}, Options{Cache: cache, OCRTimeout: 10 * time.Millisecond})
	ex := a.Extract(context.Background(), doc, true)
	assert.Equal(t, OutcomeFailed, ex.Outcome)
	assert.Zero(t, cache.Len())
}

func TestPDFText_RejectsGarbage(t *testing.T) {
	a := NewAcquirer(PDFText{}, nil, Options{})

	for _, data := range [][]byte{nil, []byte("not a pdf at all"), []byte("%PDF-1.4\n%%EOF")} {
		ex := a.Extract(context.Background(), data, false)
		assert.Equal(t, OutcomeFailed, ex.Outcome, "input %q", data)
		assert.Empty(t, ex.Text)
	}
}

func TestPDFText_DirectError(t *testing.T) {
	_, err := PDFText{}.Text(context.Background(), []byte(strings.Repeat("x", 64)))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "opening pdf")
}
