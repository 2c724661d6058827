package whatsapp

import (
	"net/url"
	"strings"
)

// CountryCode is prefixed to every local number.
const CountryCode = "213"

// NormalizePhone turns a typed phone number into the international digit
// form WhatsApp expects: digits only, without a leading 00 or trunk 0,
// prefixed with the country code once.
func NormalizePhone(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if digits == "" {
		return ""
	}

	digits = strings.TrimPrefix(digits, "00")
	digits = strings.TrimPrefix(digits, "0")
	if !strings.HasPrefix(digits, CountryCode) {
		digits = CountryCode + digits
	}
	return digits
}

// DeepLink builds a wa.me link that opens a chat with phone and text
// prefilled.
func DeepLink(phone, text string) string {
	link := "https://wa.me/" + NormalizePhone(phone)
	if text == "" {
		return link
	}
	return link + "?text=" + encodeText(text)
}

// encodeText escapes like encodeURIComponent so spaces become %20.
func encodeText(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
