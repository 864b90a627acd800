package phone

import (
	"regexp"
	"strings"
)

var (
	nonAddressChars = regexp.MustCompile(`[^\d+]`)
	emailPattern    = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
)

// Normalize turns a raw phone string into the canonical chat-channel
// address: digits only, country code included. Numbers entered without a
// leading + get their leading zeros stripped and the default country code
// prepended. Returns false when nothing usable remains.
func Normalize(raw, defaultCountryCode string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}

	clean := nonAddressChars.ReplaceAllString(raw, "")
	if !strings.HasPrefix(clean, "+") {
		clean = strings.TrimLeft(clean, "0")
		if clean == "" {
			return "", false
		}
		clean = defaultCountryCode + clean
	}

	// The gateway expects the address without the plus sign.
	clean = strings.ReplaceAll(clean, "+", "")
	if clean == "" {
		return "", false
	}
	return clean, true
}

// ValidEmail reports whether s looks like local@domain.tld with an ASCII
// local part and a 2+ letter TLD.
func ValidEmail(s string) bool {
	if s == "" {
		return false
	}
	return emailPattern.MatchString(s)
}
