// Package importer turns statement text into normalized transactions using
// per-bank line patterns, and manages the PDF inbox directory.
package importer

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cleared-dev/bankpdf/internal/model"
)

// Parser converts extracted statement text into transactions.
type Parser interface {
	Parse(text string) ParseResult
	Bank() model.Bank
}

// ParseResult is the outcome of parsing one document's text.
type ParseResult struct {
	Transactions model.Table
	Matched      int // lines that matched the bank's pattern
	Skipped      int // matched lines dropped because the amount did not parse
}

// Registry holds one parser per bank.
type Registry struct {
	parsers map[model.Bank]Parser
}

// FileInfo describes a statement file in the inbox directory.
type FileInfo struct {
	Name string
	Path string
	Size int64
}

// NewRegistry creates an empty parser registry.
func NewRegistry() *Registry {
	return &Registry{parsers: make(map[model.Bank]Parser)}
}

// Register adds a parser. Panics on duplicate bank.
func (r *Registry) Register(p Parser) {
	if _, ok := r.parsers[p.Bank()]; ok {
		panic("duplicate parser for bank: " + p.Bank().String())
	}
	r.parsers[p.Bank()] = p
}

// Get returns the parser for bank, or nil.
func (r *Registry) Get(bank model.Bank) Parser {
	return r.parsers[bank]
}

// Lookup returns the parser for bank, falling back to the Unknown parser.
func (r *Registry) Lookup(bank model.Bank) Parser {
	if p := r.Get(bank); p != nil {
		return p
	}
	return r.Get(model.BankUnknown)
}

// Parse runs the parser selected for bank over text. An empty table is
// returned when no parser is registered at all.
func (r *Registry) Parse(text string, bank model.Bank) ParseResult {
	p := r.Lookup(bank)
	if p == nil {
		return ParseResult{}
	}
	return p.Parse(text)
}

// DefaultRegistry returns a registry with all built-in bank parsers.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	for _, p := range DefaultParsers() {
		r.Register(p)
	}
	return r
}

// processedDir is the subdirectory for handled statements.
const processedDir = "processed"

// Scan returns statement files (.pdf, .txt) directly inside dir.
func Scan(dir string) ([]FileInfo, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading inbox dir: %w", err)
	}

	var files []FileInfo
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if !IsStatementFile(e.Name()) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", e.Name(), err)
		}
		files = append(files, FileInfo{
			Name: e.Name(),
			Path: filepath.Join(dir, e.Name()),
			Size: info.Size(),
		})
	}
	return files, nil
}

// IsStatementFile reports whether name looks like a PDF statement or a
// saved text extraction.
func IsStatementFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".pdf" || ext == ".txt"
}

// MarkProcessed moves a file from dir to dir/processed/.
func MarkProcessed(dir, fileName string) error {
	src := filepath.Join(dir, fileName)
	dstDir := filepath.Join(dir, processedDir)

	if err := os.MkdirAll(dstDir, 0o755); err != nil {
		return fmt.Errorf("creating processed dir: %w", err)
	}

	dst := filepath.Join(dstDir, fileName)
	if err := os.Rename(src, dst); err != nil {
		return fmt.Errorf("moving %s to processed: %w", fileName, err)
	}
	return nil
}
