package finance

import (
	"errors"
	"fmt"
	"slices"
)

var (
	ErrInvalidAmount     = errors.New("amount must be a number greater than 0")
	ErrInvalidPaidAmount = errors.New("paid amount must be a number between 0 and the amount")
)

// FieldError names the form field a validation failure belongs to.
type FieldError struct {
	Field string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// Validate checks a form before anything is written.
func (f Form) Validate() error {
	amount, ok := f.Amount.Parse()
	if !ok || amount <= 0 {
		return &FieldError{Field: "amount", Err: ErrInvalidAmount}
	}

	if f.PaymentStatus == StatusPartial {
		paid, ok := f.PaidAmount.Parse()
		if !ok || paid < 0 || paid > amount {
			return &FieldError{Field: "paid_amount", Err: ErrInvalidPaidAmount}
		}
	}

	checks := []struct {
		field   string
		value   string
		allowed []string
	}{
		{"type", f.Type, Types},
		{"category", f.Category, Categories},
		{"currency", f.Currency, Currencies},
		{"payment_status", f.PaymentStatus, PaymentStatuses},
	}
	for _, c := range checks {
		if !slices.Contains(c.allowed, c.value) {
			return &FieldError{Field: c.field, Err: fmt.Errorf("must be one of %v", c.allowed)}
		}
	}

	if IsCarCategory(f.Category) && f.BuyingCurrency != "" && !slices.Contains(Currencies, f.BuyingCurrency) {
		return &FieldError{Field: "buying_currency", Err: fmt.Errorf("must be one of %v", Currencies)}
	}
	return nil
}
