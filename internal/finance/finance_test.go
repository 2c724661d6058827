package finance

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"testing"
)

func TestRemaining(t *testing.T) {
	tests := []struct {
		amount, paid, want float64
	}{
		{1000, 400, 600},
		{1000, 1000, 0},
		{1000, 1500, 0},
		{0, 0, 0},
		{250.5, 0, 250.5},
	}
	for _, tt := range tests {
		if got := Remaining(tt.amount, tt.paid); got != tt.want {
			t.Errorf("Remaining(%v, %v) = %v, want %v", tt.amount, tt.paid, got, tt.want)
		}
	}
}

func TestRemainingNeverNegative(t *testing.T) {
	for amount := 0.0; amount <= 100; amount += 12.5 {
		for paid := 0.0; paid <= 150; paid += 7.5 {
			r := Remaining(amount, paid)
			if r < 0 {
				t.Fatalf("Remaining(%v, %v) = %v", amount, paid, r)
			}
			if paid >= amount && r != 0 {
				t.Fatalf("Remaining(%v, %v) = %v, want 0", amount, paid, r)
			}
		}
	}
}

func TestTotalCommissionsTreatsBlankAsZero(t *testing.T) {
	tests := []struct {
		seller, buyer, bureau Field
		want                  float64
	}{
		{"100", "200", "50", 350},
		{"", "200", "", 200},
		{"abc", "", "12.5", 12.5},
		{"", "", "", 0},
	}
	for _, tt := range tests {
		if got := TotalCommissions(tt.seller, tt.buyer, tt.bureau); got != tt.want {
			t.Errorf("TotalCommissions(%q, %q, %q) = %v, want %v", tt.seller, tt.buyer, tt.bureau, got, tt.want)
		}
	}
}

func TestDerive(t *testing.T) {
	f := Form{
		Category:         CategoryCarSale,
		Amount:           "5000000",
		PaidAmount:       "2000000",
		CarBuyingPrice:   "4200000",
		SellerCommission: "50000",
		BuyerCommission:  "",
		BureauCommission: "30000",
	}
	d := f.Derive()
	if d.Remaining != 3000000 {
		t.Errorf("Remaining = %v", d.Remaining)
	}
	if d.TotalCommissions != 80000 {
		t.Errorf("TotalCommissions = %v", d.TotalCommissions)
	}
	if d.NetProfit != 720000 {
		t.Errorf("NetProfit = %v", d.NetProfit)
	}
	if !d.ShowProfit {
		t.Error("profit should be shown for car sales")
	}

	f.CarBuyingPrice = "6000000"
	if d := f.Derive(); d.NetProfit >= 0 {
		t.Errorf("NetProfit = %v, want negative when costs exceed price", d.NetProfit)
	}

	f.Category = CategoryRent
	if f.Derive().ShowProfit {
		t.Error("profit should be hidden outside car categories")
	}
}

func TestCarBuyingPrice(t *testing.T) {
	tests := []struct {
		name               string
		currency           string
		original, dzd, krw float64
		want               float64
		wantOK             bool
	}{
		{"dzd is taken as is", "DZD", 2500000, 135, 1350, 2500000, true},
		{"usdt uses dzd rate", "USDT", 100, 135, 1350, 13500, true},
		{"krw chains through usdt", "KRW", 1_000_000, 135, 1350, 99999.99999999999, true},
		{"krw without rate", "KRW", 1_000_000, 135, 0, 0, false},
		{"unknown currency", "EUR", 100, 135, 1350, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := CarBuyingPrice(tt.currency, tt.original, tt.dzd, tt.krw)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if math.Abs(got-tt.want) > 0.01 {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRecomputeCarBuyingPriceKeepsCurrentOnNonPositive(t *testing.T) {
	if got := RecomputeCarBuyingPrice(4200000, "USDT", 0, 135, 1350); got != 4200000 {
		t.Errorf("zero original overwrote price: %v", got)
	}
	if got := RecomputeCarBuyingPrice(4200000, "KRW", 1_000_000, 135, 0); got != 4200000 {
		t.Errorf("missing KRW rate overwrote price: %v", got)
	}
	if got := RecomputeCarBuyingPrice(0, "USDT", 100, 135, 0); got != 13500 {
		t.Errorf("got %v, want 13500", got)
	}
}

func TestFormRecomputeBuyingPrice(t *testing.T) {
	f := Form{
		BuyingCurrency:      "KRW",
		OriginalBuyingPrice: "1000000",
		RateDzdUsdt:         "135",
		RateUsdtKrw:         "1350",
		CarBuyingPrice:      "123",
	}

	f.RecomputeBuyingPrice(true)
	if f.CarBuyingPrice != "123" {
		t.Fatalf("price changed while loading: %q", f.CarBuyingPrice)
	}

	f.RecomputeBuyingPrice(false)
	if math.Abs(f.CarBuyingPrice.Float()-99999.9) > 0.2 {
		t.Errorf("CarBuyingPrice = %q", f.CarBuyingPrice)
	}
}

func TestFieldUnmarshal(t *testing.T) {
	var payload struct {
		A Field `json:"a"`
		B Field `json:"b"`
		C Field `json:"c"`
		D Field `json:"d"`
	}
	if err := json.Unmarshal([]byte(`{"a":"12.5","b":300,"c":null,"d":"x"}`), &payload); err != nil {
		t.Fatal(err)
	}
	if payload.A.Float() != 12.5 || payload.B.Float() != 300 {
		t.Errorf("numeric fields = %q, %q", payload.A, payload.B)
	}
	if !payload.C.Blank() {
		t.Errorf("null should decode blank, got %q", payload.C)
	}
	if _, ok := payload.D.Parse(); ok {
		t.Error("non-numeric text parsed as number")
	}
}

func TestValidate(t *testing.T) {
	base := Form{
		Type:          TypeIncome,
		Category:      CategoryCarSale,
		Amount:        "1000",
		Currency:      "DZD",
		PaymentStatus: StatusPaid,
	}

	tests := []struct {
		name    string
		mutate  func(*Form)
		field   string
		wantErr error
	}{
		{"valid", func(*Form) {}, "", nil},
		{"zero amount", func(f *Form) { f.Amount = "0" }, "amount", ErrInvalidAmount},
		{"blank amount", func(f *Form) { f.Amount = "" }, "amount", ErrInvalidAmount},
		{"text amount", func(f *Form) { f.Amount = "lots" }, "amount", ErrInvalidAmount},
		{"NaN amount", func(f *Form) { f.Amount = "NaN" }, "amount", ErrInvalidAmount},
		{"infinite amount", func(f *Form) { f.Amount = "Inf" }, "amount", ErrInvalidAmount},
		{"spelled infinity amount", func(f *Form) { f.Amount = "+Infinity" }, "amount", ErrInvalidAmount},
		{"partial NaN", func(f *Form) { f.PaymentStatus = StatusPartial; f.PaidAmount = "NaN" }, "paid_amount", ErrInvalidPaidAmount},
		{"partial within range", func(f *Form) { f.PaymentStatus = StatusPartial; f.PaidAmount = "1000" }, "", nil},
		{"partial above amount", func(f *Form) { f.PaymentStatus = StatusPartial; f.PaidAmount = "1000.01" }, "paid_amount", ErrInvalidPaidAmount},
		{"partial negative", func(f *Form) { f.PaymentStatus = StatusPartial; f.PaidAmount = "-1" }, "paid_amount", ErrInvalidPaidAmount},
		{"partial blank", func(f *Form) { f.PaymentStatus = StatusPartial; f.PaidAmount = "" }, "paid_amount", ErrInvalidPaidAmount},
		{"paid ignores paid amount", func(f *Form) { f.PaidAmount = "99999" }, "", nil},
		{"unknown type", func(f *Form) { f.Type = "Refund" }, "type", nil},
		{"unknown currency", func(f *Form) { f.Currency = "EUR" }, "currency", nil},
		{"unknown buying currency", func(f *Form) { f.BuyingCurrency = "EUR" }, "buying_currency", nil},
		{"empty description allowed", func(f *Form) { f.Description = "" }, "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := base
			tt.mutate(&f)
			err := f.Validate()
			if tt.field == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			var fe *FieldError
			if !errors.As(err, &fe) {
				t.Fatalf("expected FieldError, got %v", err)
			}
			if fe.Field != tt.field {
				t.Errorf("field = %q, want %q", fe.Field, tt.field)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestDescriptionRoundTrip(t *testing.T) {
	want := Overflow{
		RelatedOrderNumber: "WA-2025-000012",
		CustomerIDCard:     "ID123",
		CustomerAddress:    "Algiers",
		Notes:              "call first",
	}
	encoded := EncodeDescription("Sold sedan", want)

	if encoded != "Sold sedan\nRelated Order: WA-2025-000012\nID Card: ID123\nAddress: Algiers\nNotes: call first" {
		t.Fatalf("encoded = %q", encoded)
	}

	base, got := DecodeDescription(encoded)
	if base != "Sold sedan" {
		t.Errorf("base = %q", base)
	}
	if got != want {
		t.Errorf("overflow = %+v, want %+v", got, want)
	}
}

func TestDescriptionPartialOverflow(t *testing.T) {
	encoded := EncodeDescription("Deposit", Overflow{Notes: "cash"})
	if encoded != "Deposit\nNotes: cash" {
		t.Fatalf("encoded = %q", encoded)
	}
	base, o := DecodeDescription(encoded)
	if base != "Deposit" || o.Notes != "cash" || o.RelatedOrderNumber != "" {
		t.Errorf("decoded %q %+v", base, o)
	}

	base, o = DecodeDescription("plain text only")
	if base != "plain text only" || o != (Overflow{}) {
		t.Errorf("decoded %q %+v", base, o)
	}
}

func TestDecodeDescriptionOutOfOrderLines(t *testing.T) {
	base, o := DecodeDescription("Car\nNotes: late\nRelated Order: WA-2024-000003")
	if base != "Car" {
		t.Errorf("base = %q", base)
	}
	if o.Notes != "late" || o.RelatedOrderNumber != "WA-2024-000003" {
		t.Errorf("overflow = %+v", o)
	}
}

func ExampleEncodeDescription() {
	desc := EncodeDescription("Hyundai Tucson 2021", Overflow{
		RelatedOrderNumber: "WA-2025-000007",
		CustomerAddress:    "Oran",
	})
	fmt.Println(desc)

	base, o := DecodeDescription(desc)
	fmt.Println(base, "|", o.RelatedOrderNumber, "|", o.CustomerAddress)
	// Output:
	// Hyundai Tucson 2021
	// Related Order: WA-2025-000007
	// Address: Oran
	// Hyundai Tucson 2021 | WA-2025-000007 | Oran
}
