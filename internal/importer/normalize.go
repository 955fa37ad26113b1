package importer

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/bankpdf/internal/model"
)

// MaxDescriptionLen caps descriptions for accounting imports.
const MaxDescriptionLen = 100

const canonicalDate = "2006-01-02"

var (
	spaceRun   = regexp.MustCompile(`\s+`)
	refNumber  = regexp.MustCompile(`REF[[:punct:]\s]*\d+`)
	amountJunk = regexp.MustCompile(`[,\s]`)
)

// errEmptyAmount is returned for amount tokens with no digits left.
var errEmptyAmount = errors.New("empty amount")

// NormalizeDate converts a statement date token to YYYY-MM-DD.
//
//	DD/MM/YYYY, DD/MM/YY  -> slash form, day first
//	YYYY-MM-DD            -> already canonical
//	DD-MM-YYYY, DD-MM-YY  -> hyphen form, day first
//	MM/YYYY               -> day defaults to the 1st
//
// Anything else, including impossible dates, returns model.DateUnparsed.
func NormalizeDate(token string) string {
	token = strings.TrimSpace(token)

	var day, month, year string
	switch {
	case strings.Contains(token, "/"):
		parts := strings.Split(token, "/")
		switch len(parts) {
		case 3:
			day, month, year = parts[0], parts[1], parts[2]
		case 2:
			day, month, year = "01", parts[0], parts[1]
		default:
			return model.DateUnparsed
		}
	case strings.Contains(token, "-"):
		parts := strings.Split(token, "-")
		if len(parts) != 3 {
			return model.DateUnparsed
		}
		if len(parts[0]) == 4 {
			year, month, day = parts[0], parts[1], parts[2]
		} else {
			day, month, year = parts[0], parts[1], parts[2]
		}
	default:
		return model.DateUnparsed
	}

	if len(year) == 2 {
		year = "20" + year
	}
	if len(year) != 4 || len(month) > 2 || len(day) > 2 {
		return model.DateUnparsed
	}

	s := fmt.Sprintf("%s-%s-%s", year, zeroPad(month), zeroPad(day))
	if _, err := time.Parse(canonicalDate, s); err != nil {
		return model.DateUnparsed
	}
	return s
}

func zeroPad(s string) string {
	if len(s) == 1 {
		return "0" + s
	}
	return s
}

// NormalizeAmount parses an amount token, dropping thousands separators and
// whitespace. A positive amount whose description mentions "debit" is negated;
// an explicit sign in the token is kept as is.
func NormalizeAmount(token, description string) (decimal.Decimal, error) {
	cleaned := amountJunk.ReplaceAllString(token, "")
	if cleaned == "" {
		return decimal.Decimal{}, errEmptyAmount
	}

	amount, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("parsing amount %q: %w", token, err)
	}

	if amount.IsPositive() && strings.Contains(strings.ToLower(description), "debit") {
		amount = amount.Neg()
	}
	return amount, nil
}

// NormalizeDescription collapses whitespace, removes REF numbers and caps the
// result at MaxDescriptionLen runes.
func NormalizeDescription(desc string) string {
	desc = collapseSpace(desc)
	desc = refNumber.ReplaceAllString(desc, "")
	desc = collapseSpace(desc)
	return truncateRunes(desc, MaxDescriptionLen)
}

func collapseSpace(s string) string {
	return strings.TrimSpace(spaceRun.ReplaceAllString(s, " "))
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}
