// Package email normalizes addresses and derives handles from them.
package email

import (
	"errors"
	"net/mail"
	"strings"
	"unicode"
)

var ErrInvalid = errors.New("invalid email address")

// Normalize trims and lowercases a bare address. Display names are rejected.
func Normalize(addr string) (string, error) {
	addr = strings.TrimSpace(addr)
	parsed, err := mail.ParseAddress(addr)
	if err != nil || parsed.Address != addr || parsed.Name != "" {
		return "", ErrInvalid
	}
	return strings.ToLower(parsed.Address), nil
}

// DeriveUsername turns the local part of addr into a handle: lowercase,
// "+tag" suffix dropped, and characters other than letters, digits, '.', '_'
// and '-' removed. Returns "" when nothing usable remains.
func DeriveUsername(addr string) string {
	local := addr
	if at := strings.LastIndexByte(addr, '@'); at >= 0 {
		local = addr[:at]
	}
	if plus := strings.IndexByte(local, '+'); plus >= 0 {
		local = local[:plus]
	}

	var b strings.Builder
	for _, r := range strings.ToLower(local) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '.' || r == '_' || r == '-' {
			b.WriteRune(r)
		}
	}
	return strings.Trim(b.String(), ".-_")
}
