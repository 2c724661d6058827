// Package currency converts amounts between DZD, USDT and KRW through the
// two dealership exchange rates.
package currency

import (
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	DZD  = "DZD"
	USDT = "USDT"
	KRW  = "KRW"
)

// Mode selects one of the fixed conversion chains.
type Mode string

const (
	USDTToDZD Mode = "usdt_to_dzd"
	DZDToUSDT Mode = "dzd_to_usdt"
	KRWToUSDT Mode = "krw_to_usdt"
	KRWToDZD  Mode = "krw_to_dzd"
)

var Modes = []Mode{USDTToDZD, DZDToUSDT, KRWToUSDT, KRWToDZD}

// Rates are the two multipliers the converter works with.
type Rates struct {
	USDTToDZD float64 `json:"usdt_to_dzd"` // DZD per 1 USDT
	KRWToUSDT float64 `json:"krw_to_usdt"` // USDT per 1 KRW
}

// RatesFromExchange builds converter rates from the stored exchange rates,
// which are expressed as DZD per USDT and KRW per USDT.
func RatesFromExchange(dzdPerUSDT, krwPerUSDT float64) Rates {
	r := Rates{USDTToDZD: dzdPerUSDT}
	if krwPerUSDT > 0 {
		r.KRWToUSDT = 1 / krwPerUSDT
	}
	return r
}

// ParseMode reports whether s names a known mode.
func ParseMode(s string) (Mode, bool) {
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Modes {
		if m == known {
			return m, true
		}
	}
	return "", false
}

// Convert parses amount and converts it. ok is false when the amount is not
// a number, the mode is unknown or the chain would divide by zero.
func Convert(amount string, mode Mode, rates Rates) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(amount), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return ConvertValue(v, mode, rates)
}

func ConvertValue(v float64, mode Mode, rates Rates) (float64, bool) {
	switch mode {
	case USDTToDZD:
		return v * rates.USDTToDZD, true
	case DZDToUSDT:
		if rates.USDTToDZD == 0 {
			return 0, false
		}
		return v / rates.USDTToDZD, true
	case KRWToUSDT:
		return v * rates.KRWToUSDT, true
	case KRWToDZD:
		return v * rates.KRWToUSDT * rates.USDTToDZD, true
	}
	return 0, false
}

// Format renders v for display: two decimals, comma thousands separators.
func Format(v float64) string {
	s := decimal.NewFromFloat(v).StringFixed(2)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	intPart, frac, _ := strings.Cut(s, ".")
	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	out := b.String() + "." + frac
	if neg && out != "0.00" {
		out = "-" + out
	}
	return out
}

// FormatAmount renders v followed by its currency code.
func FormatAmount(v float64, code string) string {
	if code == "" {
		return Format(v)
	}
	return Format(v) + " " + code
}
