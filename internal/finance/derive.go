// Package finance holds the derivation rules behind the transaction forms:
// commissions, remaining balance, net profit and the DZD buying price.
package finance

import "dealership/internal/currency"

const (
	TypeIncome  = "Income"
	TypeExpense = "Expense"

	CategoryCarSale    = "Car Sale"
	CategoryBuyingCar  = "Buying Car"
	CategoryShipping   = "Shipping"
	CategoryCustoms    = "Customs"
	CategorySalary     = "Salary"
	CategoryRent       = "Rent"
	CategoryCommission = "Commission"
	CategoryOther      = "Other"

	StatusPaid    = "Paid"
	StatusPartial = "Partial"
	StatusPending = "Pending"
)

var (
	Types      = []string{TypeIncome, TypeExpense}
	Categories = []string{
		CategoryCarSale, CategoryBuyingCar, CategoryShipping, CategoryCustoms,
		CategorySalary, CategoryRent, CategoryCommission, CategoryOther,
	}
	PaymentStatuses = []string{StatusPaid, StatusPartial, StatusPending}
	Currencies      = []string{currency.DZD, currency.USDT, currency.KRW}
)

// IsCarCategory reports whether the category unlocks the car-specific
// fields and the profit figure.
func IsCarCategory(category string) bool {
	return category == CategoryCarSale || category == CategoryBuyingCar
}

func TotalCommissions(seller, buyer, bureau Field) float64 {
	return seller.Float() + buyer.Float() + bureau.Float()
}

func Remaining(amount, paid float64) float64 {
	if r := amount - paid; r > 0 {
		return r
	}
	return 0
}

func NetProfit(amount, carBuyingPrice, totalCommissions float64) float64 {
	return amount - carBuyingPrice - totalCommissions
}

// CarBuyingPrice converts the original purchase price into DZD. ok is false
// when the inputs do not determine a price (unknown currency or a KRW
// purchase without a KRW rate).
func CarBuyingPrice(buyingCurrency string, original, rateDzdUsdt, rateUsdtKrw float64) (float64, bool) {
	switch buyingCurrency {
	case currency.DZD:
		return original, true
	case currency.USDT:
		return original * rateDzdUsdt, true
	case currency.KRW:
		if rateUsdtKrw > 0 {
			return (original / rateUsdtKrw) * rateDzdUsdt, true
		}
	}
	return 0, false
}

// RecomputeCarBuyingPrice returns the price to store. A computed value only
// replaces current when it is positive, so a half-typed input never clobbers
// an entered or persisted price.
func RecomputeCarBuyingPrice(current float64, buyingCurrency string, original, rateDzdUsdt, rateUsdtKrw float64) float64 {
	if v, ok := CarBuyingPrice(buyingCurrency, original, rateDzdUsdt, rateUsdtKrw); ok && v > 0 {
		return v
	}
	return current
}

// Form is the mutable state of a transaction form.
type Form struct {
	Type                string `json:"type"`
	Category            string `json:"category"`
	Amount              Field  `json:"amount"`
	Currency            string `json:"currency"`
	PaidAmount          Field  `json:"paid_amount"`
	PaymentStatus       string `json:"payment_status"`
	Description         string `json:"description"`
	CarBuyingPrice      Field  `json:"car_buying_price"`
	BuyingCurrency      string `json:"buying_currency"`
	OriginalBuyingPrice Field  `json:"original_buying_price"`
	RateDzdUsdt         Field  `json:"exchange_rate_dzd_usdt"`
	RateUsdtKrw         Field  `json:"exchange_rate_usdt_krw"`
	SellerCommission    Field  `json:"seller_commission"`
	BuyerCommission     Field  `json:"buyer_commission"`
	BureauCommission    Field  `json:"bureau_commission"`
}

// Derived are the display values computed from a Form.
type Derived struct {
	Remaining        float64 `json:"remaining_amount"`
	TotalCommissions float64 `json:"total_commissions"`
	NetProfit        float64 `json:"net_profit"`
	ShowProfit       bool    `json:"show_profit"`
}

func (f Form) Derive() Derived {
	amount := f.Amount.Float()
	commissions := TotalCommissions(f.SellerCommission, f.BuyerCommission, f.BureauCommission)
	return Derived{
		Remaining:        Remaining(amount, f.PaidAmount.Float()),
		TotalCommissions: commissions,
		NetProfit:        NetProfit(amount, f.CarBuyingPrice.Float(), commissions),
		ShowProfit:       IsCarCategory(f.Category),
	}
}

// RecomputeBuyingPrice refreshes CarBuyingPrice from the buying currency,
// original price and rates. It does nothing while the record is loading.
func (f *Form) RecomputeBuyingPrice(loading bool) {
	if loading {
		return
	}
	current := f.CarBuyingPrice.Float()
	next := RecomputeCarBuyingPrice(current, f.BuyingCurrency,
		f.OriginalBuyingPrice.Float(), f.RateDzdUsdt.Float(), f.RateUsdtKrw.Float())
	if next != current {
		f.CarBuyingPrice = FieldOf(next)
	}
}
