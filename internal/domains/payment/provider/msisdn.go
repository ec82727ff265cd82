package provider

import (
	"fmt"
	"strings"
	"unicode"
)

const nationalLength = 9

// NormalizeMSISDN canonicalizes a mobile number to its country-prefixed form.
// Accepted inputs are the national number (780123456), the trunk-prefixed form (0780123456)
// and the full form (250780123456). Separators are ignored.
func NormalizeMSISDN(input, countryCode string) (string, error) {
	digits := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}

		return -1
	}, input)

	switch {
	case len(digits) == nationalLength && digits[0] == '7':
		return countryCode + digits, nil
	case len(digits) == nationalLength+1 && strings.HasPrefix(digits, "07"):
		return countryCode + digits[1:], nil
	case len(digits) == len(countryCode)+nationalLength && strings.HasPrefix(digits, countryCode+"7"):
		return digits, nil
	}

	return "", &InvalidInputError{
		Field:   "phone_number",
		Message: fmt.Sprintf("invalid mobile number format, use 780123456, 0780123456 or %s780123456", countryCode),
	}
}
