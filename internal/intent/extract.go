package intent

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"

	"gastos/internal/core"
)

// amountPattern matches a number with an optional dot fraction, optionally
// followed by a thousands unit. The unit must end on a word boundary so
// "3 milanesas" reads as 3, not 3000. A comma is not a decimal separator
// here: "12,50" reads as 12.
var amountPattern = regexp.MustCompile(`(?i)(-?\d+(?:\.\d*)?)(?:\s*(mil|thousand|k)\b)?`)

var thousand = decimal.NewFromInt(1000)

// fillerWords are dropped from descriptions, compared case-insensitively.
var fillerWords = []string{"gasté", "pagué", "compré", "en"}

// categoryKeyword maps a keyword to its category. A keyword matches only
// where a word starts, so "bus" finds "buses" but not "combustible".
type categoryKeyword struct {
	keyword  string
	category core.CategoryID
	pattern  *regexp.Regexp
}

func keyword(kw string, cat core.CategoryID) categoryKeyword {
	return categoryKeyword{
		keyword:  kw,
		category: cat,
		pattern:  regexp.MustCompile(`(?:^|[^\p{L}\p{N}])` + regexp.QuoteMeta(kw)),
	}
}

// categoryKeywords is scanned in order; every keyword is checked.
var categoryKeywords = []categoryKeyword{
	keyword("comida", core.CategoryFood),
	keyword("almuerzo", core.CategoryFood),
	keyword("cena", core.CategoryFood),
	keyword("comí", core.CategoryFood),
	keyword("gasolina", core.CategoryTransport),
	keyword("taxi", core.CategoryTransport),
	keyword("bus", core.CategoryTransport),
	keyword("arriendo", core.CategoryHousing),
	keyword("luz", core.CategoryHousing),
	keyword("agua", core.CategoryHousing),
	keyword("médico", core.CategoryHealth),
	keyword("medicina", core.CategoryHealth),
	keyword("doctor", core.CategoryHealth),
}

// extractAmount returns the first amount in text. Zero, negative and
// unparsable amounts report false.
func extractAmount(text string) (decimal.Decimal, bool) {
	m := amountPattern.FindStringSubmatch(text)
	if m == nil {
		return decimal.Zero, false
	}
	amount, err := decimal.NewFromString(strings.TrimSuffix(m[1], "."))
	if err != nil {
		return decimal.Zero, false
	}
	if m[2] != "" {
		amount = amount.Mul(thousand)
	}
	if !amount.IsPositive() {
		return decimal.Zero, false
	}
	return amount, true
}

func inferCategory(lower string) core.CategoryID {
	for _, kw := range categoryKeywords {
		if kw.pattern.MatchString(lower) {
			return kw.category
		}
	}
	return core.CategoryOther
}

func extractDescription(text string) string {
	words := strings.Fields(amountPattern.ReplaceAllString(text, " "))
	kept := words[:0]
	for _, w := range words {
		if isFiller(w) || isPunctuation(w) {
			continue
		}
		kept = append(kept, w)
	}
	if len(kept) == 0 {
		return DefaultDescription
	}
	return strings.Join(kept, " ")
}

func isFiller(word string) bool {
	for _, f := range fillerWords {
		if strings.EqualFold(word, f) {
			return true
		}
	}
	return false
}

// isPunctuation reports whether word is only punctuation or currency signs,
// such as what is left of "$5000" or "12,50" once the amount is removed.
func isPunctuation(word string) bool {
	for _, r := range word {
		if !unicode.IsPunct(r) && !unicode.Is(unicode.Sc, r) {
			return false
		}
	}
	return true
}
