package match

import (
	"strings"
	"unicode"
)

// NormalizeIdent lower-cases an identifier and drops separators, so that
// "OrderID", "order_id" and "orderId" compare equal.
func NormalizeIdent(s string) string {
	var b strings.Builder

	b.Grow(len(s))

	for _, r := range s {
		if !isSeparator(r) {
			b.WriteRune(unicode.ToLower(r))
		}
	}

	return b.String()
}

// TokenizeIdent splits an identifier into lower-case words on separators,
// case changes and acronym boundaries:
//   - "OrderID" -> [order id]
//   - "XMLParser" -> [xml parser]
//   - "total_cents" -> [total cents]
func TokenizeIdent(s string) []string {
	var (
		tokens []string
		cur    []rune
	)

	flush := func() {
		if len(cur) > 0 {
			tokens = append(tokens, strings.ToLower(string(cur)))
			cur = cur[:0]
		}
	}

	runes := []rune(s)
	for i, r := range runes {
		if isSeparator(r) {
			flush()
			continue
		}

		if i > 0 && unicode.IsUpper(r) {
			prev := runes[i-1]
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])

			// "orderID" splits before I, "XMLParser" splits before P
			if !unicode.IsUpper(prev) && !isSeparator(prev) || unicode.IsUpper(prev) && nextLower {
				flush()
			}
		}

		cur = append(cur, r)
	}

	flush()

	return tokens
}

func isSeparator(r rune) bool {
	return r == '_' || r == '-' || r == ' ' || r == '.'
}
