package importer

import (
	"fmt"
	"regexp"

	"github.com/cleared-dev/bankpdf/internal/model"
)

// Shared pieces of the per-bank line patterns. Fields are separated by
// spaces or tabs only, so a match never crosses a line break. datePrefix
// keeps a short date token from matching the tail of a longer one.
const (
	datePrefix  = `(?:^|[^\d/\-])`
	fieldGap    = `[ \t]+`
	descField   = `([^\n]+?)`
	amountField = `([-\d,]+\.\d{2})`

	dateSlashDMY  = `(\d{2}/\d{2}/\d{2}(?:\d{2})?)`
	dateHyphenDMY = `(\d{2}-\d{2}-\d{2}(?:\d{2})?)`
	dateISO       = `(\d{4}-\d{2}-\d{2})`
	dateMonthYear = `((?:\d{2}/)?\d{2}/\d{4})`
	dateEitherDMY = `(\d{2}[/-]\d{2}[/-]\d{2}(?:\d{2})?)`
)

// LineParser extracts transactions from lines shaped "<date> <description> <amount>".
type LineParser struct {
	bank    model.Bank
	pattern *regexp.Regexp
}

// NewLineParser compiles a line pattern with three capture groups:
// date, description, amount.
func NewLineParser(bank model.Bank, pattern string) (*LineParser, error) {
	re, err := regexp.Compile("(?m)" + pattern)
	if err != nil {
		return nil, fmt.Errorf("compiling line pattern for %s: %w", bank, err)
	}
	if re.NumSubexp() != 3 {
		return nil, fmt.Errorf("line pattern for %s: want 3 capture groups, got %d", bank, re.NumSubexp())
	}
	return &LineParser{bank: bank, pattern: re}, nil
}

func mustLineParser(bank model.Bank, date string) *LineParser {
	p, err := NewLineParser(bank, datePrefix+date+fieldGap+descField+fieldGap+amountField)
	if err != nil {
		panic(err)
	}
	return p
}

// DefaultParsers returns the built-in parsers, one per bank plus the
// Unknown fallback.
func DefaultParsers() []*LineParser {
	return []*LineParser{
		mustLineParser(model.BankABSA, dateSlashDMY),
		mustLineParser(model.BankNedbank, dateHyphenDMY),
		mustLineParser(model.BankFNB, dateISO),
		mustLineParser(model.BankHBZ, dateSlashDMY),
		mustLineParser(model.BankCapitec, dateHyphenDMY),
		mustLineParser(model.BankStandardBank, dateMonthYear),
		mustLineParser(model.BankUnknown, dateEitherDMY),
	}
}

// Bank returns the bank this parser is tuned for.
func (p *LineParser) Bank() model.Bank { return p.bank }

// Parse collects every non-overlapping pattern match in text, in order.
// Lines that do not match are ignored. A matched line whose amount does not
// parse is skipped; a bad date only degrades to model.DateUnparsed.
func (p *LineParser) Parse(text string) ParseResult {
	var res ParseResult
	for _, m := range p.pattern.FindAllStringSubmatch(text, -1) {
		res.Matched++
		txn, err := buildTransaction(m[1], m[2], m[3])
		if err != nil {
			res.Skipped++
			continue
		}
		res.Transactions = append(res.Transactions, txn)
	}
	return res
}

func buildTransaction(dateTok, descTok, amountTok string) (model.Transaction, error) {
	amount, err := NormalizeAmount(amountTok, descTok)
	if err != nil {
		return model.Transaction{}, err
	}
	return model.Transaction{
		Date:        NormalizeDate(dateTok),
		Description: NormalizeDescription(descTok),
		Amount:      amount,
	}, nil
}
