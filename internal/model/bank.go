package model

import "strings"

// Bank identifies the issuer of a statement.
type Bank string

const (
	BankABSA         Bank = "ABSA"
	BankNedbank      Bank = "Nedbank"
	BankFNB          Bank = "FNB"
	BankHBZ          Bank = "HBZ"
	BankCapitec      Bank = "Capitec"
	BankStandardBank Bank = "Standard Bank"
	BankUnknown      Bank = "Unknown"
)

// Banks lists every label in classifier order, Unknown last.
var Banks = []Bank{
	BankABSA,
	BankNedbank,
	BankFNB,
	BankHBZ,
	BankCapitec,
	BankStandardBank,
	BankUnknown,
}

// String returns the display label.
func (b Bank) String() string { return string(b) }

// ParseBank resolves a label like "Standard Bank", "standardbank" or "fnb".
// Unrecognized input yields BankUnknown and false.
func ParseBank(s string) (Bank, bool) {
	key := bankKey(s)
	for _, b := range Banks {
		if bankKey(string(b)) == key {
			return b, true
		}
	}
	return BankUnknown, false
}

func bankKey(s string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), " ", ""))
}
