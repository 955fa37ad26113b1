package importer

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/bankpdf/internal/model"
)

func TestLineParser_EachBank(t *testing.T) {
	tests := []struct {
		bank   model.Bank
		line   string
		date   string
		desc   string
		amount string
	}{
		{model.BankABSA, "15/03/2024 Woolworths Food 123.45", "2024-03-15", "Woolworths Food", "123.45"},
		{model.BankNedbank, "15-03-2024 Eskom Prepaid -300.00", "2024-03-15", "Eskom Prepaid", "-300.00"},
		{model.BankFNB, "2024-03-15 Interest Earned 12.34", "2024-03-15", "Interest Earned", "12.34"},
		{model.BankHBZ, "15/03/2024 Cash Withdrawal -1,000.00", "2024-03-15", "Cash Withdrawal", "-1000.00"},
		{model.BankCapitec, "15-03-2024 Send Cash 250.00", "2024-03-15", "Send Cash", "250.00"},
		{model.BankStandardBank, "03/2024 Service Fee -65.00", "2024-03-01", "Service Fee", "-65.00"},
		{model.BankUnknown, "15/03/2024 Transfer 10.00", "2024-03-15", "Transfer", "10.00"},
		{model.BankUnknown, "15-03-2024 Transfer 10.00", "2024-03-15", "Transfer", "10.00"},
	}

	r := DefaultRegistry()
	for _, tt := range tests {
		t.Run(tt.bank.String(), func(t *testing.T) {
			res := r.Parse(tt.line+"\n", tt.bank)
			require.Len(t, res.Transactions, 1)
			txn := res.Transactions[0]
			assert.Equal(t, tt.date, txn.Date)
			assert.Equal(t, tt.desc, txn.Description)
			assert.Equal(t, tt.amount, txn.Amount.StringFixed(2))
		})
	}
}

func TestLineParser_EndToEndABSA(t *testing.T) {
	text := "15/03/2024 Grocery Store Debit 450.00\n16/03/2024 Salary 25000.00\n"

	res := DefaultRegistry().Parse(text, model.BankABSA)
	require.Len(t, res.Transactions, 2)

	assert.Equal(t, "2024-03-15", res.Transactions[0].Date)
	assert.Equal(t, "Grocery Store Debit", res.Transactions[0].Description)
	assert.Equal(t, "-450.00", res.Transactions[0].Amount.StringFixed(2))

	// No "debit" in the description, so the sign is left alone.
	assert.Equal(t, "2024-03-16", res.Transactions[1].Date)
	assert.Equal(t, "Salary", res.Transactions[1].Description)
	assert.Equal(t, "25000.00", res.Transactions[1].Amount.StringFixed(2))
}

func TestLineParser_DebitHeuristicNeedsLiteralWord(t *testing.T) {
	// A withdrawal without the word "debit" stays positive.
	res := DefaultRegistry().Parse("15/03/2024 ATM Withdrawal 250.00\n", model.BankABSA)
	require.Len(t, res.Transactions, 1)
	assert.Equal(t, "250.00", res.Transactions[0].Amount.StringFixed(2))

	res = DefaultRegistry().Parse("15/03/2024 ATM debit 250.00\n", model.BankABSA)
	require.Len(t, res.Transactions, 1)
	assert.Equal(t, "-250.00", res.Transactions[0].Amount.StringFixed(2))
}

func TestLineParser_BadAmountSkipsOnlyThatRow(t *testing.T) {
	text := strings.Join([]string{
		"15/03/2024 Good Row 10.00",
		"16/03/2024 Broken Row 12-34.00",
		"17/03/2024 Letters Row abc.de",
		"18/03/2024 Another Good Row 20.00",
	}, "\n")

	res := DefaultRegistry().Parse(text, model.BankABSA)
	require.Len(t, res.Transactions, 2)
	assert.Equal(t, "Good Row", res.Transactions[0].Description)
	assert.Equal(t, "Another Good Row", res.Transactions[1].Description)
	assert.Equal(t, 3, res.Matched)
	assert.Equal(t, 1, res.Skipped)
}

func TestLineParser_BadDateKeepsRow(t *testing.T) {
	res := DefaultRegistry().Parse("31/02/2024 Leap Confusion 5.00\n", model.BankABSA)
	require.Len(t, res.Transactions, 1)
	assert.Equal(t, model.DateUnparsed, res.Transactions[0].Date)
	assert.Equal(t, "5.00", res.Transactions[0].Amount.StringFixed(2))
}

func TestLineParser_TwoDigitYear(t *testing.T) {
	res := DefaultRegistry().Parse("15/03/24 Coffee 35.00\n", model.BankABSA)
	require.Len(t, res.Transactions, 1)
	assert.Equal(t, "2024-03-15", res.Transactions[0].Date)

	res = DefaultRegistry().Parse("15-03-24 Coffee 35.00\n", model.BankNedbank)
	require.Len(t, res.Transactions, 1)
	assert.Equal(t, "2024-03-15", res.Transactions[0].Date)
}

func TestLineParser_NoCrossLineMatch(t *testing.T) {
	res := DefaultRegistry().Parse("15/03/2024\nHeader Only\n99.00\n", model.BankABSA)
	assert.Empty(t, res.Transactions)
	assert.Zero(t, res.Matched)
}

func TestLineParser_LongDescriptionCapped(t *testing.T) {
	desc := strings.Repeat("x", 150)
	res := DefaultRegistry().Parse("15/03/2024 "+desc+" 1.00\n", model.BankABSA)
	require.Len(t, res.Transactions, 1)
	assert.Len(t, res.Transactions[0].Description, 100)
}

func TestLineParser_ABSAFixture(t *testing.T) {
	data, err := os.ReadFile("../../testdata/absa_statement.txt")
	require.NoError(t, err)

	res := DefaultRegistry().Parse(string(data), model.BankABSA)
	require.Len(t, res.Transactions, 4)

	assert.Equal(t, "Grocery Store Debit", res.Transactions[0].Description)
	assert.Equal(t, "-450.00", res.Transactions[0].Amount.StringFixed(2))

	assert.Equal(t, "25000.00", res.Transactions[1].Amount.StringFixed(2))

	assert.Equal(t, "2024-03-18", res.Transactions[2].Date)
	assert.Equal(t, "Payment to Municipality", res.Transactions[2].Description)
	assert.Equal(t, "-1234.56", res.Transactions[2].Amount.StringFixed(2))

	assert.Equal(t, "Monthly Account Fee", res.Transactions[3].Description)
}

func TestLineParser_FNBFixture(t *testing.T) {
	data, err := os.ReadFile("../../testdata/fnb_statement.txt")
	require.NoError(t, err)

	res := DefaultRegistry().Parse(string(data), model.BankFNB)
	require.Len(t, res.Transactions, 4)
	assert.Equal(t, "2024-03-01", res.Transactions[0].Date)
	assert.Equal(t, "POS Purchase Woolworths", res.Transactions[1].Description)
	assert.Equal(t, "-312.45", res.Transactions[1].Amount.StringFixed(2))
	assert.Equal(t, "8900.00", res.Transactions[2].Amount.StringFixed(2))
	assert.Equal(t, "-650.00", res.Transactions[3].Amount.StringFixed(2))
}

func TestNewLineParser_Validation(t *testing.T) {
	_, err := NewLineParser(model.BankFNB, `(`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "compiling line pattern")

	_, err = NewLineParser(model.BankFNB, `(\d+) (\w+)`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "want 3 capture groups")
}

func TestLineParser_DateTokensMatchWhole(t *testing.T) {
	r := DefaultRegistry()

	res := r.Parse("2024-03-15 Transfer 10.00\n", model.BankUnknown)
	assert.Empty(t, res.Transactions)

	res = r.Parse("15/03/2024 Service Fee 10.00\n", model.BankStandardBank)
	require.Len(t, res.Transactions, 1)
	assert.Equal(t, "2024-03-15", res.Transactions[0].Date)
	assert.Equal(t, "Service Fee", res.Transactions[0].Description)
}

func TestLineParser_StandardBankFullDates(t *testing.T) {
	text := "Standard Bank\n15/03/2024 Service Fee -65.00\n16/03/2024 Salary 9000.00\n04/2024 Interest 12.50\n"
	res := DefaultRegistry().Parse(text, model.BankStandardBank)

	require.Len(t, res.Transactions, 3)
	assert.Equal(t, 3, res.Matched)
	assert.Equal(t, "2024-03-15", res.Transactions[0].Date)
	assert.Equal(t, "-65.00", res.Transactions[0].Amount.StringFixed(2))
	assert.Equal(t, "2024-03-16", res.Transactions[1].Date)
	assert.Equal(t, "Salary", res.Transactions[1].Description)
	assert.Equal(t, "2024-04-01", res.Transactions[2].Date)
}

func TestLineParser_PrefixBeforeDate(t *testing.T) {
	res := DefaultRegistry().Parse("* 15/03/2024 Flagged Row 10.00\n", model.BankABSA)
	require.Len(t, res.Transactions, 1)
	assert.Equal(t, "Flagged Row", res.Transactions[0].Description)
}
