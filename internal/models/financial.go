package models

import "time"

type FinancialTransaction struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	Type          string    `json:"type" gorm:"index;not null"` // Income, Expense
	Category      string    `json:"category" gorm:"index;not null"`
	Amount        float64   `json:"amount" gorm:"not null"`
	Currency      string    `json:"currency" gorm:"default:'DZD'"`
	PaidAmount    float64   `json:"paid_amount"`
	PaymentStatus string    `json:"payment_status" gorm:"default:'Pending'"` // Paid, Partial, Pending
	Description   string    `json:"description" gorm:"type:text"`
	Date          time.Time `json:"date" gorm:"index"`

	// Car Sale / Buying Car only. CarBuyingPrice is always DZD.
	CarBuyingPrice      float64 `json:"car_buying_price"`
	BuyingCurrency      string  `json:"buying_currency"`
	OriginalBuyingPrice float64 `json:"original_buying_price"`
	ExchangeRateDZDUSDT float64 `json:"exchange_rate_dzd_usdt" gorm:"column:exchange_rate_dzd_usdt"`
	ExchangeRateUSDTKRW float64 `json:"exchange_rate_usdt_krw" gorm:"column:exchange_rate_usdt_krw"`
	SellerCommission    float64 `json:"seller_commission"`
	BuyerCommission     float64 `json:"buyer_commission"`
	BureauCommission    float64 `json:"bureau_commission"`
	SellerName          string  `json:"seller_name"`
	CustomerName        string  `json:"customer_name"`
	CustomerPhone       string  `json:"customer_phone"`
	CarModel            string  `json:"car_model"`
	CarVIN              string  `json:"car_vin" gorm:"column:car_vin;index"`

	RelatedCarID   *uint     `json:"related_car_id" gorm:"index"`
	RelatedOrderID *uint     `json:"related_order_id" gorm:"index"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (FinancialTransaction) TableName() string {
	return "financial_transactions"
}

// Setting is a key/value pair of the settings collection.
type Setting struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Key       string    `json:"key" gorm:"uniqueIndex;not null"`
	Value     string    `json:"value" gorm:"not null"`
	UpdatedBy string    `json:"updated_by"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Setting) TableName() string {
	return "settings"
}

const (
	SettingRateDZDUSDT = "exchange_rate_dzd_usdt"
	SettingRateUSDTKRW = "exchange_rate_usdt_krw"
)

// All lists every table owned by the service, in creation order.
func All() []any {
	return []any{
		&Profile{},
		&Setting{},
		&Car{},
		&Order{},
		&FinancialTransaction{},
		&ShippingForm{},
	}
}
