package finance

import (
	"regexp"
	"strings"
)

// Overflow holds values that have no column of their own and travel as
// labelled suffix lines of the description.
type Overflow struct {
	RelatedOrderNumber string `json:"related_order_number"`
	CustomerIDCard     string `json:"customer_id_card"`
	CustomerAddress    string `json:"customer_address"`
	Notes              string `json:"notes"`
}

// Labels are part of the stored format; changing them breaks existing rows.
const (
	labelRelatedOrder = "Related Order"
	labelIDCard       = "ID Card"
	labelAddress      = "Address"
	labelNotes        = "Notes"
)

var overflowPatterns = []struct {
	label string
	re    *regexp.Regexp
	field func(*Overflow) *string
}{
	{labelRelatedOrder, regexp.MustCompile(`\nRelated Order: ([^\n]*)`), func(o *Overflow) *string { return &o.RelatedOrderNumber }},
	{labelIDCard, regexp.MustCompile(`\nID Card: ([^\n]*)`), func(o *Overflow) *string { return &o.CustomerIDCard }},
	{labelAddress, regexp.MustCompile(`\nAddress: ([^\n]*)`), func(o *Overflow) *string { return &o.CustomerAddress }},
	{labelNotes, regexp.MustCompile(`\nNotes: ([^\n]*)`), func(o *Overflow) *string { return &o.Notes }},
}

// EncodeDescription appends the non-empty overflow values to base.
func EncodeDescription(base string, o Overflow) string {
	var b strings.Builder
	b.WriteString(base)
	for _, p := range overflowPatterns {
		v := strings.TrimSpace(*p.field(&o))
		if v == "" {
			continue
		}
		b.WriteString("\n" + p.label + ": " + v)
	}
	return b.String()
}

// DecodeDescription splits a stored description back into its base text and
// overflow values. Patterns are applied in encoding order and each match
// removes only its own substring.
func DecodeDescription(desc string) (string, Overflow) {
	var o Overflow
	for _, p := range overflowPatterns {
		loc := p.re.FindStringSubmatchIndex(desc)
		if loc == nil {
			continue
		}
		*p.field(&o) = strings.TrimSpace(desc[loc[2]:loc[3]])
		desc = desc[:loc[0]] + desc[loc[1]:]
	}
	return strings.TrimSpace(desc), o
}
