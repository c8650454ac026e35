package extractor

import (
	"strings"
	"unicode"

	"github.com/insightdelivered/statement-desk/internal/models"
)

// textQuality is the share of plain ASCII letters, digits, whitespace and
// common punctuation in pages. unicode.IsLetter is too broad: identity-encoded
// fonts decode to accented garbage.
func textQuality(pages []string) float64 {
	total, readable := 0, 0
	for _, page := range pages {
		for _, r := range page {
			total++
			if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') ||
				unicode.IsSpace(r) || strings.ContainsRune(".,-/:;()'\"£$€%&@#!?+=*", r) {
				readable++
			}
		}
	}
	if total == 0 {
		return 0
	}
	return float64(readable) / float64(total)
}

// commonWords appear in virtually every bank statement.
var commonWords = []string{
	"bank", "account", "balance", "date", "payment", "statement",
	"total", "amount", "credit", "debit", "transaction", "sort code",
	"money", "paid", "opening", "closing", "transfer", "direct",
	"number", "page", "period",
}

func containsCommonWords(pages []string) bool {
	combined := strings.ToLower(strings.Join(pages, " "))
	for _, w := range commonWords {
		if strings.Contains(combined, w) {
			return true
		}
	}
	return false
}

// IsReadableText requires more than 50 characters, over 60% plain text and at
// least one word expected on a statement.
func IsReadableText(pages []string) bool {
	return totalTextLen(pages) > 50 && textQuality(pages) > 0.6 && containsCommonWords(pages)
}

func totalTextLen(pages []string) int {
	n := 0
	for _, p := range pages {
		n += len(strings.TrimSpace(p))
	}
	return n
}

var bankMarkers = []struct {
	bank    models.BankType
	needles []string
}{
	{models.BankMetro, []string{"metro bank", "metrobankonline"}},
	{models.BankHSBC, []string{"hsbc", "hsbc.co.uk"}},
	{models.BankBarclays, []string{"barclays", "barclays.co.uk"}},
}

// DetectBank guesses the issuer from statement text. The first matching bank
// in marker order wins.
func DetectBank(pages []string) (models.BankType, bool) {
	combined := strings.ToLower(strings.Join(pages, "\n"))
	for _, m := range bankMarkers {
		for _, n := range m.needles {
			if strings.Contains(combined, n) {
				return m.bank, true
			}
		}
	}
	return "", false
}
