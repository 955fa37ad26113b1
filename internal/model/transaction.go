package model

import (
	"github.com/shopspring/decimal"
)

// DateUnparsed is the Date value of a transaction whose date token could not
// be normalized.
const DateUnparsed = "N/A"

// Transaction is one normalized statement line.
type Transaction struct {
	Date        string          // "YYYY-MM-DD" or DateUnparsed
	Description string          // whitespace-normalized, at most 100 runes
	Amount      decimal.Decimal // negative = debit, positive = credit
}

// HasDate reports whether the transaction carries a canonical date.
func (t Transaction) HasDate() bool {
	return t.Date != DateUnparsed && t.Date != ""
}

// Table is the ordered list of transactions found in one document.
// Order matches the order of appearance in the source text.
type Table []Transaction

// Total returns the sum of all amounts in the table.
func (t Table) Total() decimal.Decimal {
	sum := decimal.Zero
	for _, txn := range t {
		sum = sum.Add(txn.Amount)
	}
	return sum
}
