// Package classify detects which bank issued a statement from its text.
package classify

import (
	"fmt"
	"regexp"

	"github.com/cleared-dev/bankpdf/internal/model"
)

// Marker pairs a bank with the pattern that identifies its statements.
type Marker struct {
	Bank    model.Bank
	Pattern *regexp.Regexp
}

// Classifier matches statement text against an ordered marker list.
// The first matching marker wins, so order is the tie-break when a
// statement mentions more than one bank.
type Classifier struct {
	markers []Marker
}

// New creates a Classifier over a copy of markers.
func New(markers []Marker) *Classifier {
	return &Classifier{markers: append([]Marker(nil), markers...)}
}

// Default returns a Classifier with the built-in South African marker table.
func Default() *Classifier {
	return New(DefaultMarkers())
}

// DefaultMarkers returns the built-in marker table in match order.
func DefaultMarkers() []Marker {
	return []Marker{
		mustMarker(model.BankABSA, `ABSA|Absa`),
		mustMarker(model.BankNedbank, `Nedbank`),
		mustMarker(model.BankFNB, `FNB|First National`),
		mustMarker(model.BankHBZ, `HBZ`),
		mustMarker(model.BankCapitec, `Capitec`),
		mustMarker(model.BankStandardBank, `Standard Bank|Stanlib`),
	}
}

// NewMarker compiles a case-insensitive marker pattern.
func NewMarker(bank model.Bank, pattern string) (Marker, error) {
	re, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		return Marker{}, fmt.Errorf("compiling marker for %s: %w", bank, err)
	}
	return Marker{Bank: bank, Pattern: re}, nil
}

func mustMarker(bank model.Bank, pattern string) Marker {
	m, err := NewMarker(bank, pattern)
	if err != nil {
		panic(err)
	}
	return m
}

// Classify returns the first bank whose marker appears anywhere in text,
// or model.BankUnknown.
func (c *Classifier) Classify(text string) model.Bank {
	for _, m := range c.markers {
		if m.Pattern.MatchString(text) {
			return m.Bank
		}
	}
	return model.BankUnknown
}

// Markers returns the marker order used by the classifier.
func (c *Classifier) Markers() []model.Bank {
	banks := make([]model.Bank, len(c.markers))
	for i, m := range c.markers {
		banks[i] = m.Bank
	}
	return banks
}
