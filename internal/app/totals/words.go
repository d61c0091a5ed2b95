package totals

import (
	"math"
	"strings"
)

// ─── Amount In Words ────────────────────────────────────────────────────────
// English rendering of a monetary amount for the invoice footer.
// Whole dirhams use a recursive hundreds decomposition with Thousand and
// Million scale words; fractional hundredths are appended as a Fils clause
// joined with "and". Scale words are joined with single spaces.

const (
	currencyUnit   = "Dirhams"
	fractionalUnit = "Fils"
)

var (
	ones  = []string{"", "One", "Two", "Three", "Four", "Five", "Six", "Seven", "Eight", "Nine"}
	teens = []string{"Ten", "Eleven", "Twelve", "Thirteen", "Fourteen", "Fifteen", "Sixteen", "Seventeen", "Eighteen", "Nineteen"}
	tens  = []string{"", "", "Twenty", "Thirty", "Forty", "Fifty", "Sixty", "Seventy", "Eighty", "Ninety"}
)

// AmountInWords converts a non-negative amount to its English words
// rendering, e.g. 1234.50 → "One Thousand Two Hundred Thirty Four and
// Fifty Fils Dirhams Only". Zero renders as a fixed literal.
func AmountInWords(amount float64) string {
	if amount == 0 {
		return "Zero " + currencyUnit + " Only"
	}

	whole := int64(math.Floor(amount))
	fils := int64(math.Round((amount - math.Floor(amount)) * 100))
	if fils == 100 {
		// Fractions like .999 round up to a full dirham.
		whole++
		fils = 0
	}

	var parts []string
	if whole >= 1_000_000 {
		parts = append(parts, underThousand(whole/1_000_000), "Million")
		whole %= 1_000_000
	}
	if whole >= 1000 {
		parts = append(parts, underThousand(whole/1000), "Thousand")
		whole %= 1000
	}
	if whole > 0 {
		parts = append(parts, underThousand(whole))
	}
	if len(parts) == 0 {
		// Pure fractional amount, e.g. 0.50.
		parts = append(parts, "Zero")
	}

	words := strings.Join(parts, " ")
	if fils > 0 {
		words += " and " + underThousand(fils) + " " + fractionalUnit
	}
	return words + " " + currencyUnit + " Only"
}

// underThousand renders 0 < n < 1000 recursively; 0 renders as "".
func underThousand(n int64) string {
	switch {
	case n == 0:
		return ""
	case n < 10:
		return ones[n]
	case n < 20:
		return teens[n-10]
	case n < 100:
		s := tens[n/10]
		if n%10 != 0 {
			s += " " + ones[n%10]
		}
		return s
	default:
		s := ones[n/100] + " Hundred"
		if rest := underThousand(n % 100); rest != "" {
			s += " " + rest
		}
		return s
	}
}
