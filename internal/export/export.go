// Package export writes transaction tables in accounting-import formats.
package export

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/Rhymond/go-money"
	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/cleared-dev/bankpdf/internal/model"
)

// ErrNoTransactions is returned instead of writing an empty export.
var ErrNoTransactions = errors.New("no transactions found")

// Format names an export file type.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatCSV, FormatXLSX:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported export format %q (want csv or xlsx)", s)
	}
}

// Currency is the ISO-4217 code used for previews.
const Currency = "ZAR"

// SheetName is the worksheet written by WriteXLSX.
const SheetName = "Transactions"

// Header lists the export columns in order.
var Header = []string{"Date", "Description", "Amount"}

// Row is the CSV shape of a transaction.
type Row struct {
	Date        string `csv:"Date"`
	Description string `csv:"Description"`
	Amount      string `csv:"Amount"`
}

// FileName derives the export name for format f from an input name.
func FileName(input string, f Format) string {
	if f == FormatXLSX {
		return XLSXFileName(input)
	}
	return CSVFileName(input)
}

// CSVFileName maps "march.pdf" to "march_transactions.csv".
func CSVFileName(input string) string { return exportBase(input) + "_transactions.csv" }

// XLSXFileName maps "march.pdf" to "march_transactions.xlsx".
func XLSXFileName(input string) string { return exportBase(input) + "_transactions.xlsx" }

func exportBase(input string) string {
	return strings.TrimSuffix(strings.ReplaceAll(input, ".pdf", ""), ".txt")
}

// Rows converts a table to CSV rows with two-decimal amounts.
func Rows(table model.Table) []Row {
	rows := make([]Row, len(table))
	for i, txn := range table {
		rows[i] = Row{
			Date:        txn.Date,
			Description: txn.Description,
			Amount:      txn.Amount.StringFixed(2),
		}
	}
	return rows
}

// Write writes table in format f.
func Write(w io.Writer, table model.Table, f Format) error {
	switch f {
	case FormatCSV:
		return WriteCSV(w, table)
	case FormatXLSX:
		return WriteXLSX(w, table)
	default:
		return fmt.Errorf("unsupported export format %q", f)
	}
}

// WriteCSV writes a UTF-8 CSV with a Date,Description,Amount header.
func WriteCSV(w io.Writer, table model.Table) error {
	if len(table) == 0 {
		return ErrNoTransactions
	}
	rows := Rows(table)
	if err := gocsv.Marshal(&rows, w); err != nil {
		return fmt.Errorf("writing csv: %w", err)
	}
	return nil
}

// WriteXLSX writes a workbook with one Transactions sheet. Amounts are
// stored as numbers so spreadsheets can sum them.
func WriteXLSX(w io.Writer, table model.Table) error {
	if len(table) == 0 {
		return ErrNoTransactions
	}

	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(SheetName)
	if err != nil {
		return fmt.Errorf("creating sheet: %w", err)
	}
	f.SetActiveSheet(idx)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("removing default sheet: %w", err)
	}

	header := make([]any, len(Header))
	for i, h := range Header {
		header[i] = h
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, txn := range table {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []any{txn.Date, txn.Description, txn.Amount.InexactFloat64()}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing xlsx: %w", err)
	}
	return nil
}

// Preview renders up to n rows as an aligned table with amounts in rand.
func Preview(w io.Writer, table model.Table, n int) error {
	if n <= 0 || n > len(table) {
		n = len(table)
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\t%s\t%s\t\n", Header[0], Header[1], Header[2])
	for _, txn := range table[:n] {
		fmt.Fprintf(tw, "%s\t%s\t%s\t\n", txn.Date, txn.Description, FormatAmount(txn))
	}
	if n < len(table) {
		fmt.Fprintf(tw, "…\t%d more\t\t\n", len(table)-n)
	}
	return tw.Flush()
}

// FormatAmount renders a transaction amount as currency, e.g. "R1 234.56".
func FormatAmount(txn model.Transaction) string {
	return FormatMoney(txn.Amount)
}

// FormatMoney renders an amount in rand.
func FormatMoney(amount decimal.Decimal) string {
	cents := amount.Shift(2).Round(0).IntPart()
	return money.New(cents, Currency).Display()
}
