package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"dealership/internal/finance"
	"dealership/internal/logger"
	"dealership/internal/models"
	"dealership/internal/repository"
	"dealership/internal/validation"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// TransactionInput is the new/edit transaction form. Overflow values are
// folded into the stored description.
type TransactionInput struct {
	finance.Form
	finance.Overflow

	Date           string `json:"date"`
	SellerName     string `json:"seller_name"`
	CustomerName   string `json:"customer_name"`
	CustomerPhone  string `json:"customer_phone"`
	CarModel       string `json:"car_model"`
	CarVIN         string `json:"car_vin"`
	RelatedCarID   *uint  `json:"related_car_id"`
	RelatedOrderID *uint  `json:"related_order_id"`
}

// TransactionView is a stored transaction with its description split back
// into the base text and overflow fields, plus the derived figures.
type TransactionView struct {
	models.FinancialTransaction
	Description string `json:"description"`
	finance.Overflow
	finance.Derived
	ShippingFormID *uint `json:"shipping_form_id,omitempty"`
}

type Summary struct {
	Count       int     `json:"count"`
	Income      float64 `json:"income"`
	Expense     float64 `json:"expense"`
	Balance     float64 `json:"balance"`
	Outstanding float64 `json:"outstanding"`
	NetProfit   float64 `json:"net_profit"`
}

type TransactionService interface {
	CreateTransaction(ctx context.Context, in TransactionInput) (*TransactionView, error)
	GetTransaction(ctx context.Context, id uint) (*TransactionView, error)
	ListTransactions(ctx context.Context, filter repository.TransactionFilter) ([]TransactionView, error)
	UpdateTransaction(ctx context.Context, id uint, in TransactionInput) (*TransactionView, error)
	DeleteTransaction(ctx context.Context, id uint) error
	Summary(ctx context.Context, filter repository.TransactionFilter) (*Summary, error)
	Export(ctx context.Context, filter repository.TransactionFilter, w io.Writer) error
}

type transactionService struct {
	repos    *repository.Repositories
	settings SettingsService
	forms    ShippingFormService
	log      zerolog.Logger
}

// NewTransactionService wires the transaction use cases. forms may be nil,
// which disables the automatic shipping form.
func NewTransactionService(repos *repository.Repositories, settings SettingsService, forms ShippingFormService) TransactionService {
	return &transactionService{
		repos:    repos,
		settings: settings,
		forms:    forms,
		log:      logger.WithComponent("transactions"),
	}
}

var dateLayouts = []string{time.RFC3339, "2006-01-02", "02/01/2006"}

func parseDate(s string, fallback time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return fallback, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, validation.New("date", "must be a date (YYYY-MM-DD)")
}

// prepare validates the form and fills in the derived buying price. Missing
// rates on a car transaction are taken from the saved settings.
func (s *transactionService) prepare(ctx context.Context, in *TransactionInput) error {
	if in.Currency == "" {
		in.Currency = "DZD"
	}
	if in.PaymentStatus == "" {
		in.PaymentStatus = finance.StatusPending
	}
	if err := in.Form.Validate(); err != nil {
		return err
	}
	if !finance.IsCarCategory(in.Category) {
		return nil
	}
	if in.RateDzdUsdt.Blank() || in.RateUsdtKrw.Blank() {
		rates, err := s.settings.LoadRates(ctx)
		if err != nil {
			return err
		}
		if in.RateDzdUsdt.Blank() {
			in.RateDzdUsdt = finance.FieldOf(rates.DZDPerUSDT)
		}
		if in.RateUsdtKrw.Blank() {
			in.RateUsdtKrw = finance.FieldOf(rates.KRWPerUSDT)
		}
	}
	in.Form.RecomputeBuyingPrice(false)
	return nil
}

func (in TransactionInput) apply(tx *models.FinancialTransaction) {
	f := in.Form
	tx.Type = f.Type
	tx.Category = f.Category
	tx.Amount = f.Amount.Float()
	tx.Currency = f.Currency
	tx.PaidAmount = f.PaidAmount.Float()
	tx.PaymentStatus = f.PaymentStatus
	tx.Description = finance.EncodeDescription(strings.TrimSpace(f.Description), in.Overflow)
	tx.SellerName = in.SellerName
	tx.CustomerName = strings.TrimSpace(in.CustomerName)
	tx.CustomerPhone = strings.TrimSpace(in.CustomerPhone)
	tx.CarModel = in.CarModel
	tx.CarVIN = strings.ToUpper(strings.TrimSpace(in.CarVIN))
	tx.RelatedCarID = in.RelatedCarID
	tx.RelatedOrderID = in.RelatedOrderID

	if finance.IsCarCategory(f.Category) {
		tx.CarBuyingPrice = f.CarBuyingPrice.Float()
		tx.BuyingCurrency = f.BuyingCurrency
		tx.OriginalBuyingPrice = f.OriginalBuyingPrice.Float()
		tx.ExchangeRateDZDUSDT = f.RateDzdUsdt.Float()
		tx.ExchangeRateUSDTKRW = f.RateUsdtKrw.Float()
		tx.SellerCommission = f.SellerCommission.Float()
		tx.BuyerCommission = f.BuyerCommission.Float()
		tx.BureauCommission = f.BureauCommission.Float()
	} else {
		tx.CarBuyingPrice, tx.BuyingCurrency, tx.OriginalBuyingPrice = 0, "", 0
		tx.ExchangeRateDZDUSDT, tx.ExchangeRateUSDTKRW = 0, 0
		tx.SellerCommission, tx.BuyerCommission, tx.BureauCommission = 0, 0, 0
	}
}

// FormOf rebuilds the form state of a stored transaction.
func FormOf(tx *models.FinancialTransaction) finance.Form {
	return finance.Form{
		Type:                tx.Type,
		Category:            tx.Category,
		Amount:              finance.FieldOf(tx.Amount),
		Currency:            tx.Currency,
		PaidAmount:          finance.FieldOf(tx.PaidAmount),
		PaymentStatus:       tx.PaymentStatus,
		Description:         tx.Description,
		CarBuyingPrice:      finance.FieldOf(tx.CarBuyingPrice),
		BuyingCurrency:      tx.BuyingCurrency,
		OriginalBuyingPrice: finance.FieldOf(tx.OriginalBuyingPrice),
		RateDzdUsdt:         finance.FieldOf(tx.ExchangeRateDZDUSDT),
		RateUsdtKrw:         finance.FieldOf(tx.ExchangeRateUSDTKRW),
		SellerCommission:    finance.FieldOf(tx.SellerCommission),
		BuyerCommission:     finance.FieldOf(tx.BuyerCommission),
		BureauCommission:    finance.FieldOf(tx.BureauCommission),
	}
}

func viewOf(tx *models.FinancialTransaction) TransactionView {
	base, overflow := finance.DecodeDescription(tx.Description)
	return TransactionView{
		FinancialTransaction: *tx,
		Description:          base,
		Overflow:             overflow,
		Derived:              FormOf(tx).Derive(),
	}
}

func (s *transactionService) CreateTransaction(ctx context.Context, in TransactionInput) (*TransactionView, error) {
	if err := s.prepare(ctx, &in); err != nil {
		return nil, err
	}
	date, err := parseDate(in.Date, timeNow())
	if err != nil {
		return nil, err
	}

	tx := &models.FinancialTransaction{Date: date}
	in.apply(tx)
	if err := s.repos.Transactions.Create(ctx, tx); err != nil {
		return nil, err
	}
	s.log.Info().Uint("transaction_id", tx.ID).Str("category", tx.Category).Float64("amount", tx.Amount).Msg("Transaction created")

	view := viewOf(tx)
	view.ShippingFormID = s.spawnShippingForm(ctx, tx, in.Overflow)
	return &view, nil
}

// spawnShippingForm creates the linked shipping form for a transaction that
// names a customer, unless a form already exists for the car's VIN. It is
// best effort: failures are logged and the transaction stands.
func (s *transactionService) spawnShippingForm(ctx context.Context, tx *models.FinancialTransaction, overflow finance.Overflow) *uint {
	if s.forms == nil || tx.CustomerName == "" || tx.CustomerPhone == "" {
		return nil
	}
	if tx.CarVIN != "" {
		_, err := s.repos.ShippingForms.FindByVIN(ctx, tx.CarVIN)
		if err == nil {
			return nil
		}
		if !errors.Is(err, repository.ErrNotFound) {
			s.log.Warn().Err(err).Uint("transaction_id", tx.ID).Msg("Shipping form lookup failed")
			return nil
		}
	}

	form, err := s.forms.CreateForm(ctx, ShippingFormInput{
		CustomerName:    tx.CustomerName,
		CustomerPhone:   tx.CustomerPhone,
		CustomerAddress: overflow.CustomerAddress,
		IDCardNumber:    overflow.CustomerIDCard,
		VehicleModel:    tx.CarModel,
		VIN:             tx.CarVIN,
		Notes:           overflow.Notes,
		TransactionID:   &tx.ID,
		OrderID:         tx.RelatedOrderID,
	})
	if err != nil {
		s.log.Warn().Err(err).Uint("transaction_id", tx.ID).Msg("Automatic shipping form failed")
		return nil
	}
	s.log.Info().Uint("transaction_id", tx.ID).Uint("form_id", form.ID).Msg("Shipping form created from transaction")
	return &form.ID
}

func (s *transactionService) GetTransaction(ctx context.Context, id uint) (*TransactionView, error) {
	tx, err := s.repos.Transactions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	view := viewOf(tx)
	return &view, nil
}

func (s *transactionService) ListTransactions(ctx context.Context, filter repository.TransactionFilter) ([]TransactionView, error) {
	txs, err := s.repos.Transactions.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	views := make([]TransactionView, len(txs))
	for i := range txs {
		views[i] = viewOf(&txs[i])
	}
	return views, nil
}

// UpdateTransaction applies the edit form. A blank buying price keeps the
// stored one unless the inputs produce a positive value.
func (s *transactionService) UpdateTransaction(ctx context.Context, id uint, in TransactionInput) (*TransactionView, error) {
	tx, err := s.repos.Transactions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.CarBuyingPrice.Blank() {
		in.CarBuyingPrice = finance.FieldOf(tx.CarBuyingPrice)
	}
	if err := s.prepare(ctx, &in); err != nil {
		return nil, err
	}
	date, err := parseDate(in.Date, tx.Date)
	if err != nil {
		return nil, err
	}

	tx.Date = date
	in.apply(tx)
	if err := s.repos.Transactions.Update(ctx, tx); err != nil {
		return nil, err
	}
	view := viewOf(tx)
	return &view, nil
}

func (s *transactionService) DeleteTransaction(ctx context.Context, id uint) error {
	return s.repos.Transactions.Delete(ctx, id)
}

// Summary totals the matching transactions with exact decimal sums.
func (s *transactionService) Summary(ctx context.Context, filter repository.TransactionFilter) (*Summary, error) {
	filter.Page = repository.Page{}
	txs, err := s.repos.Transactions.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return summarize(txs), nil
}

func summarize(txs []models.FinancialTransaction) *Summary {
	var income, expense, outstanding, profit decimal.Decimal
	for i := range txs {
		tx := &txs[i]
		amount := finiteDecimal(tx.Amount)
		switch tx.Type {
		case finance.TypeIncome:
			income = income.Add(amount)
			outstanding = outstanding.Add(finiteDecimal(finance.Remaining(tx.Amount, tx.PaidAmount)))
		case finance.TypeExpense:
			expense = expense.Add(amount)
		}
		if finance.IsCarCategory(tx.Category) {
			profit = profit.Add(finiteDecimal(FormOf(tx).Derive().NetProfit))
		}
	}
	return &Summary{
		Count:       len(txs),
		Income:      income.Round(2).InexactFloat64(),
		Expense:     expense.Round(2).InexactFloat64(),
		Balance:     income.Sub(expense).Round(2).InexactFloat64(),
		Outstanding: outstanding.Round(2).InexactFloat64(),
		NetProfit:   profit.Round(2).InexactFloat64(),
	}
}

// finiteDecimal counts NaN and infinities written before amounts were
// validated as zero.
func finiteDecimal(v float64) decimal.Decimal {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(v)
}

// describe is the one-line label used in exports and logs.
func describe(tx *models.FinancialTransaction) string {
	base, _ := finance.DecodeDescription(tx.Description)
	if base == "" {
		return fmt.Sprintf("%s #%d", tx.Category, tx.ID)
	}
	return base
}
