package utils

import (
	"net/mail"
	"strings"
)

// ValidEmail reports whether s, once trimmed, is a bare address such as
// "meera@example.com". Display-name forms are rejected.
func ValidEmail(s string) bool {
	s = strings.TrimSpace(s)
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s
}
