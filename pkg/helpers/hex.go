// Package helpers provides small string-shape checks shared by the codec
// and the daemon.
package helpers

import (
	"unicode"
	"unicode/utf8"
)

// Has0xPrefix reports whether s starts with a lower-case "0x".
func Has0xPrefix(s string) bool {
	return len(s) >= 2 && s[0] == '0' && s[1] == 'x'
}

// IsHexDigits reports whether s is non-empty and made only of hex digits.
func IsHexDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isHexChar(s[i]) {
			return false
		}
	}
	return true
}

// IsDecimalDigits reports whether s is non-empty and made only of 0-9.
func IsDecimalDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// IsLowerAlnumDash reports whether s has length within [min, max] and uses
// only a-z, 0-9 and '-'.
func IsLowerAlnumDash(s string, min, max int) bool {
	if len(s) < min || len(s) > max {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !(c >= 'a' && c <= 'z') && !(c >= '0' && c <= '9') && c != '-' {
			return false
		}
	}
	return true
}

// IsAlnumDash is IsLowerAlnumDash with upper-case letters allowed.
func IsAlnumDash(s string, min, max int) bool {
	if len(s) < min || len(s) > max {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !(c >= 'a' && c <= 'z') && !(c >= 'A' && c <= 'Z') && !(c >= '0' && c <= '9') && c != '-' {
			return false
		}
	}
	return true
}

// IsPrintableToken reports whether s is valid UTF-8 without control or
// whitespace characters. An empty string is a valid token.
func IsPrintableToken(s string) bool {
	if !utf8.ValidString(s) {
		return false
	}
	for _, r := range s {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return false
		}
	}
	return true
}

func isHexChar(c byte) bool {
	return ('0' <= c && c <= '9') || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')
}
