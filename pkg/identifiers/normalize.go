package identifiers

import "strings"

// NormalizeEmail trims and lower-cases an email address.
func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// NormalizePhone trims a phone number. Formatting is kept as entered.
func NormalizePhone(s string) string {
	return strings.TrimSpace(s)
}
