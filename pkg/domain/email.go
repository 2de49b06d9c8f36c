package domain

import (
	"net/mail"
	"strings"
)

// NormalizeEmail trims and lower-cases an address so it can be compared and hashed.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidEmail reports whether email is a bare RFC 5322 address.
func ValidEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	if err != nil {
		return false
	}

	return addr.Address == email && strings.Contains(email, ".")
}
