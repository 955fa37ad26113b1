package extract

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/disintegration/imaging"
)

// Rasterizer renders every page of a PDF to an image, in page order.
type Rasterizer interface {
	Rasterize(ctx context.Context, data []byte) ([]image.Image, error)
}

// Recognizer runs character recognition on one page image.
type Recognizer interface {
	Recognize(ctx context.Context, img image.Image) (string, error)
}

// OCR is a TextSource that rasterizes pages and recognizes each image.
type OCR struct {
	rasterizer Rasterizer
	recognizer Recognizer
	enhance    bool
	logger     *log.Logger
}

// NewOCR creates an OCR text source. With enhance set, page images are
// converted to high-contrast grayscale before recognition.
func NewOCR(r Rasterizer, rec Recognizer, enhance bool, logger *log.Logger) *OCR {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &OCR{rasterizer: r, recognizer: rec, enhance: enhance, logger: logger}
}

// Text returns the recognized text of each page followed by a newline.
func (o *OCR) Text(ctx context.Context, data []byte) (string, error) {
	pages, err := o.rasterizer.Rasterize(ctx, data)
	if err != nil {
		return "", fmt.Errorf("rasterizing: %w", err)
	}
	o.logger.Debug("rasterized", "pages", len(pages))

	var b strings.Builder
	for i, img := range pages {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		if o.enhance {
			img = Enhance(img)
		}
		text, err := o.recognizer.Recognize(ctx, img)
		if err != nil {
			return "", fmt.Errorf("recognizing page %d: %w", i+1, err)
		}
		b.WriteString(text)
		b.WriteString("\n")
	}
	return b.String(), nil
}

// Enhance prepares a scanned page for recognition.
func Enhance(img image.Image) image.Image {
	out := imaging.Grayscale(img)
	out = imaging.AdjustContrast(out, 20)
	return imaging.Sharpen(out, 1.0)
}

// Poppler rasterizes PDFs with the pdftoppm tool.
type Poppler struct {
	Binary string // empty means search PATH
	DPI    int    // zero keeps pdftoppm's default resolution
}

const pagePrefix = "page"

// Rasterize implements Rasterizer.
func (p Poppler) Rasterize(ctx context.Context, data []byte) ([]image.Image, error) {
	bin, err := resolveBinary(p.Binary, "pdftoppm")
	if err != nil {
		return nil, err
	}

	dir, err := os.MkdirTemp("", "bankpdf-raster-*")
	if err != nil {
		return nil, fmt.Errorf("creating temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	input := filepath.Join(dir, "input.pdf")
	if err := os.WriteFile(input, data, 0o600); err != nil {
		return nil, fmt.Errorf("writing temp pdf: %w", err)
	}

	args := []string{"-png"}
	if p.DPI > 0 {
		args = append(args, "-r", strconv.Itoa(p.DPI))
	}
	args = append(args, input, filepath.Join(dir, pagePrefix))

	cmd := exec.CommandContext(ctx, bin, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("pdftoppm: %w", ctxErr)
		}
		return nil, fmt.Errorf("pdftoppm: %w (%s)", err, strings.TrimSpace(stderr.String()))
	}

	paths, err := pagePaths(dir, pagePrefix)
	if err != nil {
		return nil, err
	}

	images := make([]image.Image, 0, len(paths))
	for _, path := range paths {
		img, err := imaging.Open(path)
		if err != nil {
			return nil, fmt.Errorf("decoding %s: %w", filepath.Base(path), err)
		}
		images = append(images, img)
	}
	return images, nil
}

// pagePaths returns <prefix>-N.png files in dir ordered by page number.
// pdftoppm zero-pads N to the width of the page count.
func pagePaths(dir, prefix string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, prefix+"-*.png"))
	if err != nil {
		return nil, fmt.Errorf("listing pages: %w", err)
	}

	type page struct {
		num  int
		path string
	}
	pages := make([]page, 0, len(matches))
	for _, m := range matches {
		base := strings.TrimSuffix(filepath.Base(m), ".png")
		n, err := strconv.Atoi(strings.TrimPrefix(base, prefix+"-"))
		if err != nil {
			continue
		}
		pages = append(pages, page{num: n, path: m})
	}
	sort.Slice(pages, func(i, j int) bool { return pages[i].num < pages[j].num })

	paths := make([]string, len(pages))
	for i, p := range pages {
		paths[i] = p.path
	}
	return paths, nil
}

// Tesseract recognizes text with the tesseract command-line tool.
// Language data is located by tesseract itself (TESSDATA_PREFIX).
type Tesseract struct {
	Binary   string // empty means search PATH
	Language string // e.g. "eng"; empty uses tesseract's default
}

// Recognize implements Recognizer.
func (t Tesseract) Recognize(ctx context.Context, img image.Image) (string, error) {
	bin, err := resolveBinary(t.Binary, "tesseract")
	if err != nil {
		return "", err
	}

	f, err := os.CreateTemp("", "bankpdf-ocr-*.png")
	if err != nil {
		return "", fmt.Errorf("creating temp image: %w", err)
	}
	path := f.Name()
	f.Close()
	defer os.Remove(path)

	if err := imaging.Save(img, path); err != nil {
		return "", fmt.Errorf("writing temp image: %w", err)
	}

	args := []string{path, "stdout"}
	if t.Language != "" {
		args = append(args, "-l", t.Language)
	}

	cmd := exec.CommandContext(ctx, bin, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", fmt.Errorf("tesseract: %w", ctxErr)
		}
		return "", fmt.Errorf("tesseract: %w (%s)", err, strings.TrimSpace(stderr.String()))
	}
	return stdout.String(), nil
}
