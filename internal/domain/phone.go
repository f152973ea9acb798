// Package domain encodes the payment session entity and its value objects.
package domain

import "strings"

// countryCode is the Kenyan numbering plan prefix Daraja expects on PartyA.
const countryCode = "254"

// PhoneNumber is a canonical 12-digit, country-code-prefixed subscriber
// number. Construct it through NormalizePhoneNumber only.
type PhoneNumber string

func (p PhoneNumber) String() string { return string(p) }

// NormalizePhoneNumber strips non-digit characters and converts the three
// accepted input shapes to canonical form:
//
//	254712345678 -> 254712345678
//	0712345678   -> 254712345678
//	712345678    -> 254712345678
func NormalizePhoneNumber(raw string) (PhoneNumber, error) {
	if strings.TrimSpace(raw) == "" {
		return "", ErrMissingPhoneNumber
	}

	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()

	switch {
	case strings.HasPrefix(digits, countryCode):
		if len(digits) != 12 {
			return "", ErrInvalidPhoneFormat
		}
		return PhoneNumber(digits), nil

	case strings.HasPrefix(digits, "0"):
		if len(digits) != 10 {
			return "", ErrInvalidPhoneFormat
		}
		return PhoneNumber(countryCode + digits[1:]), nil

	case strings.HasPrefix(digits, "7"), strings.HasPrefix(digits, "1"):
		if len(digits) != 9 {
			return "", ErrInvalidPhoneFormat
		}
		return PhoneNumber(countryCode + digits), nil

	default:
		return "", ErrInvalidPhoneFormat
	}
}
