package extract

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/ledongthuc/pdf"
)

// PDFText reads the embedded text layer of a PDF.
type PDFText struct{}

// Text returns each page's plain text followed by a newline, in page order.
// Glyphs sharing a baseline form one line, so rows positioned with text
// moves (Td, TD, Tm) inside a single text object stay separate.
func (PDFText) Text(ctx context.Context, data []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("opening pdf: %w", err)
	}

	var b strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}

		glyphs, err := pageGlyphs(page)
		if err != nil {
			return "", fmt.Errorf("reading page %d: %w", i, err)
		}
		b.WriteString(layoutText(glyphs))
		b.WriteString("\n")
	}
	return b.String(), nil
}

// pageGlyphs returns the positioned glyphs of a page. The content
// interpreter panics on malformed operators.
func pageGlyphs(page pdf.Page) (glyphs []pdf.Text, err error) {
	defer func() {
		if r := recover(); r != nil {
			glyphs, err = nil, fmt.Errorf("%v", r)
		}
	}()
	if page.V.Key("Contents").IsNull() {
		return nil, nil
	}
	return page.Content().Text, nil
}

type textLine struct {
	y      float64
	glyphs []pdf.Text
}

// layoutText groups glyphs into lines by baseline, orders lines top to
// bottom and glyphs left to right, and separates runs with a single space
// where the source has a space glyph or a horizontal gap.
func layoutText(glyphs []pdf.Text) string {
	var lines []*textLine
	for _, g := range glyphs {
		if g.S == "\n" || g.S == "\r" || g.S == "" {
			continue
		}
		line := findLine(lines, g)
		if line == nil {
			line = &textLine{y: g.Y}
			lines = append(lines, line)
		}
		line.glyphs = append(line.glyphs, g)
	}

	sort.SliceStable(lines, func(i, j int) bool { return lines[i].y > lines[j].y })

	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if s := line.String(); s != "" {
			out = append(out, s)
		}
	}
	return strings.Join(out, "\n")
}

func findLine(lines []*textLine, g pdf.Text) *textLine {
	tol := math.Max(fontSize(g)/2, 1)
	for _, line := range lines {
		if math.Abs(line.y-g.Y) <= tol {
			return line
		}
	}
	return nil
}

func (l *textLine) String() string {
	// Stable: glyphs without width information share an X within a run.
	sort.SliceStable(l.glyphs, func(i, j int) bool { return l.glyphs[i].X < l.glyphs[j].X })

	var b strings.Builder
	var prev *pdf.Text
	space := false
	for i := range l.glyphs {
		g := &l.glyphs[i]
		if strings.TrimFunc(g.S, unicode.IsSpace) == "" {
			space = true
			continue
		}
		if prev != nil && g.X-(prev.X+prev.W) > fontSize(*g)/5 {
			space = true
		}
		if space && b.Len() > 0 {
			b.WriteByte(' ')
		}
		space = false
		b.WriteString(g.S)
		prev = g
	}
	return b.String()
}

func fontSize(g pdf.Text) float64 {
	if g.FontSize <= 0 {
		return 1
	}
	return g.FontSize
}
