package models

import "strings"

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// FormatPhoneNumber renders Indian numbers as "+91 XXXXXXXXXX". Anything that
// is not a 10-digit local or 12-digit 91-prefixed number is returned as is.
func FormatPhoneNumber(phone string) string {
	digits := digitsOnly(phone)
	switch {
	case len(digits) == 10:
		return "+91 " + digits
	case len(digits) == 12 && strings.HasPrefix(digits, "91"):
		return "+91 " + digits[2:]
	}
	return phone
}

// E164 returns the number in E.164 form for SMS delivery, or "" when it
// cannot be normalized.
func E164(phone string) string {
	digits := digitsOnly(phone)
	switch {
	case len(digits) == 10:
		return "+91" + digits
	case len(digits) == 12 && strings.HasPrefix(digits, "91"):
		return "+" + digits
	case strings.HasPrefix(strings.TrimSpace(phone), "+") && len(digits) >= 8 && len(digits) <= 15:
		return "+" + digits
	}
	return ""
}
