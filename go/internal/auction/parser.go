package auction

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

const bidKeyword = "bid"

// ParsedBid is the amount extracted from a bid message
type ParsedBid struct {
	Amount decimal.Decimal
}

// ParseBid extracts a bid amount from free-form chat text.
//
// The text must start with "bid" (case-insensitive). The first "bid" that is
// followed by at least one whitespace character and a number is used; the
// number is a run of digits with an optional single fractional part
// ("10", "5.5"). Anything after the number is ignored. Text that does not
// match is ordinary chat and yields false.
func ParseBid(text string) (ParsedBid, bool) {
	lower := strings.ToLower(text)
	if !strings.HasPrefix(lower, bidKeyword) {
		return ParsedBid{}, false
	}

	for offset := 0; offset < len(lower); {
		idx := strings.Index(lower[offset:], bidKeyword)
		if idx < 0 {
			break
		}
		start := offset + idx + len(bidKeyword)
		if literal, ok := scanAmount(lower[start:]); ok {
			amount, err := decimal.NewFromString(literal)
			if err == nil {
				return ParsedBid{Amount: amount}, true
			}
		}
		offset = start
	}
	return ParsedBid{}, false
}

// scanAmount consumes leading whitespace (at least one rune) followed by a
// decimal literal and returns the literal.
func scanAmount(s string) (string, bool) {
	i := 0
	for i < len(s) {
		r, size := utf8.DecodeRuneInString(s[i:])
		if !unicode.IsSpace(r) {
			break
		}
		i += size
	}
	if i == 0 {
		return "", false
	}

	intEnd := scanDigits(s, i)
	if intEnd == i {
		return "", false
	}
	end := intEnd
	if intEnd < len(s) && s[intEnd] == '.' {
		if fracEnd := scanDigits(s, intEnd+1); fracEnd > intEnd+1 {
			end = fracEnd
		}
	}
	return s[i:end], true
}

func scanDigits(s string, from int) int {
	i := from
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	return i
}
