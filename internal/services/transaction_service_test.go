package services

import (
	"bytes"
	"context"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"dealership/internal/finance"
	"dealership/internal/models"
	"dealership/internal/repository"

	"github.com/xuri/excelize/v2"
)

func carSale(amount string) TransactionInput {
	return TransactionInput{
		Form: finance.Form{
			Type:                finance.TypeIncome,
			Category:            finance.CategoryCarSale,
			Amount:              finance.Field(amount),
			PaymentStatus:       finance.StatusPaid,
			PaidAmount:          finance.Field(amount),
			Description:         "Sale of Sportage",
			BuyingCurrency:      "KRW",
			OriginalBuyingPrice: "13500000",
			SellerCommission:    "20000",
			BuyerCommission:     "10000",
		},
		CustomerName:  "Amine",
		CustomerPhone: "0555123456",
		CarModel:      "Kia Sportage",
		CarVIN:        "knapm81abc123456",
	}
}

func TestCreateCarSaleDerivesPrice(t *testing.T) {
	env := newTestEnv(t)
	in := carSale("1600000")
	in.Overflow = finance.Overflow{RelatedOrderNumber: "WA-2025-000001", CustomerAddress: "Oran", Notes: "Keys x2"}

	view, err := env.txs.CreateTransaction(context.Background(), in)
	if err != nil {
		t.Fatal(err)
	}
	if view.ExchangeRateDZDUSDT != 135 || view.ExchangeRateUSDTKRW != 1350 {
		t.Fatalf("rates = %v / %v", view.ExchangeRateDZDUSDT, view.ExchangeRateUSDTKRW)
	}
	if math.Abs(view.CarBuyingPrice-1350000) > 0.01 {
		t.Fatalf("buying price = %v", view.CarBuyingPrice)
	}
	if math.Abs(view.NetProfit-220000) > 0.01 || view.TotalCommissions != 30000 || !view.ShowProfit {
		t.Fatalf("derived = %+v", view.Derived)
	}
	if view.Description != "Sale of Sportage" || view.Notes != "Keys x2" || view.RelatedOrderNumber != "WA-2025-000001" {
		t.Fatalf("decoded = %q %+v", view.Description, view.Overflow)
	}
	if !strings.Contains(view.FinancialTransaction.Description, "\nNotes: Keys x2") {
		t.Fatalf("stored description = %q", view.FinancialTransaction.Description)
	}
	if view.Currency != "DZD" || view.CarVIN != "KNAPM81ABC123456" {
		t.Fatalf("view = %+v", view.FinancialTransaction)
	}
}

func TestCreateTransactionSpawnsShippingForm(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	in := carSale("1600000")
	in.Overflow = finance.Overflow{CustomerAddress: "Oran", Notes: "Keys x2"}

	first, err := env.txs.CreateTransaction(ctx, in)
	if err != nil {
		t.Fatal(err)
	}
	if first.ShippingFormID == nil {
		t.Fatal("no shipping form created")
	}
	form, err := env.forms.GetForm(ctx, *first.ShippingFormID)
	if err != nil {
		t.Fatal(err)
	}
	if form.VIN != "KNAPM81ABC123456" || form.CustomerAddress != "Oran" || form.TransactionID == nil || *form.TransactionID != first.ID {
		t.Fatalf("form = %+v", form)
	}

	second, err := env.txs.CreateTransaction(ctx, in)
	if err != nil {
		t.Fatal(err)
	}
	if second.ShippingFormID != nil {
		t.Fatal("duplicate form for the same VIN")
	}

	in.CarVIN = "OTHERVIN"
	in.CustomerPhone = ""
	third, err := env.txs.CreateTransaction(ctx, in)
	if err != nil {
		t.Fatal(err)
	}
	if third.ShippingFormID != nil {
		t.Fatal("form created without a phone")
	}
}

func TestNonCarCategoryDropsCarFields(t *testing.T) {
	env := newTestEnv(t)
	view, err := env.txs.CreateTransaction(context.Background(), TransactionInput{
		Form: finance.Form{
			Type:           finance.TypeExpense,
			Category:       finance.CategorySalary,
			Amount:         "45000",
			CarBuyingPrice: "900",
			RateDzdUsdt:    "140",
		},
		Date: "15/03/2025",
	})
	if err != nil {
		t.Fatal(err)
	}
	if view.CarBuyingPrice != 0 || view.ExchangeRateDZDUSDT != 0 || view.ShowProfit {
		t.Fatalf("car fields kept: %+v", view)
	}
	if view.PaymentStatus != finance.StatusPending || !view.Date.Equal(time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("defaults = %s %v", view.PaymentStatus, view.Date)
	}
}

func TestCreateTransactionValidation(t *testing.T) {
	env := newTestEnv(t)
	tests := []struct {
		name  string
		form  finance.Form
		field string
	}{
		{"bad amount", finance.Form{Type: "Income", Category: "Other", Amount: "abc"}, "amount"},
		{"partial overpaid", finance.Form{Type: "Income", Category: "Other", Amount: "100", PaymentStatus: "Partial", PaidAmount: "150"}, "paid_amount"},
		{"bad category", finance.Form{Type: "Income", Category: "Lottery", Amount: "100"}, "category"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.txs.CreateTransaction(context.Background(), TransactionInput{Form: tt.form})
			var ferr *finance.FieldError
			if !errors.As(err, &ferr) || ferr.Field != tt.field {
				t.Fatalf("err = %v, want field %s", err, tt.field)
			}
		})
	}

	_, err := env.txs.CreateTransaction(context.Background(), TransactionInput{
		Form: finance.Form{Type: "Income", Category: "Other", Amount: "100"},
		Date: "next tuesday",
	})
	if err == nil {
		t.Fatal("bad date accepted")
	}
}

func TestUpdateTransactionKeepsBuyingPrice(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	in := carSale("800000")
	in.BuyingCurrency = ""
	in.OriginalBuyingPrice = ""
	in.CarBuyingPrice = "500000"
	in.CustomerName = ""

	created, err := env.txs.CreateTransaction(ctx, in)
	if err != nil {
		t.Fatal(err)
	}
	in.CarBuyingPrice = ""
	in.Amount = "900000"
	in.PaidAmount = "900000"
	updated, err := env.txs.UpdateTransaction(ctx, created.ID, in)
	if err != nil {
		t.Fatal(err)
	}
	if updated.CarBuyingPrice != 500000 || updated.Amount != 900000 {
		t.Fatalf("updated = %+v", updated.FinancialTransaction)
	}
}

func seedLedger(t *testing.T, env *testEnv) {
	t.Helper()
	inputs := []TransactionInput{
		{Form: finance.Form{Type: "Income", Category: "Other", Amount: "1000", PaymentStatus: "Partial", PaidAmount: "400"}},
		{Form: finance.Form{Type: "Expense", Category: "Rent", Amount: "300.10", PaymentStatus: "Paid", PaidAmount: "300.10"}},
		{Form: finance.Form{Type: "Expense", Category: "Shipping", Amount: "0.20", PaymentStatus: "Paid", PaidAmount: "0.20"}},
	}
	for _, in := range inputs {
		if _, err := env.txs.CreateTransaction(context.Background(), in); err != nil {
			t.Fatal(err)
		}
	}
}

func TestSummary(t *testing.T) {
	env := newTestEnv(t)
	seedLedger(t, env)

	sum, err := env.txs.Summary(context.Background(), repository.TransactionFilter{Page: repository.Page{Limit: 1}})
	if err != nil {
		t.Fatal(err)
	}
	want := Summary{Count: 3, Income: 1000, Expense: 300.3, Balance: 699.7, Outstanding: 600}
	if *sum != want {
		t.Fatalf("summary = %+v, want %+v", *sum, want)
	}

	expenses, _ := env.txs.Summary(context.Background(), repository.TransactionFilter{Type: "Expense"})
	if expenses.Count != 2 || expenses.Income != 0 {
		t.Fatalf("expenses = %+v", expenses)
	}
}

func TestSummaryIgnoresNonFiniteRows(t *testing.T) {
	txs := []models.FinancialTransaction{
		{Type: finance.TypeIncome, Category: finance.CategoryOther, Amount: 500, PaidAmount: 200},
		{Type: finance.TypeIncome, Category: finance.CategoryCarSale, Amount: math.Inf(1)},
		{Type: finance.TypeExpense, Category: finance.CategoryRent, Amount: math.NaN()},
	}
	sum := summarize(txs)
	want := Summary{Count: 3, Income: 500, Balance: 500, Outstanding: 300}
	if *sum != want {
		t.Fatalf("summary = %+v, want %+v", *sum, want)
	}
}

func TestCreateTransactionRejectsNonFiniteAmount(t *testing.T) {
	env := newTestEnv(t)
	for _, amount := range []string{"NaN", "Inf", "+Infinity"} {
		in := carSale(amount)
		_, err := env.txs.CreateTransaction(context.Background(), in)
		var fe *finance.FieldError
		if !errors.As(err, &fe) || fe.Field != "amount" {
			t.Errorf("amount %q: err = %v", amount, err)
		}
	}
}

func TestExport(t *testing.T) {
	env := newTestEnv(t)
	seedLedger(t, env)

	var buf bytes.Buffer
	if err := env.txs.Export(context.Background(), repository.TransactionFilter{}, &buf); err != nil {
		t.Fatal(err)
	}
	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	rows, err := f.GetRows(exportSheet)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 6 || rows[0][0] != "ID" || rows[0][len(exportHeaders)-1] != "Related Order" {
		t.Fatalf("rows = %v", rows)
	}
	if last := rows[len(rows)-1]; last[0] != "Income" || last[1] != "1000" {
		t.Fatalf("totals = %v", last)
	}
}

func TestExportFilename(t *testing.T) {
	fixClock(t, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC))
	tests := []struct {
		filter repository.TransactionFilter
		want   string
	}{
		{repository.TransactionFilter{}, "transactions-20250301.xlsx"},
		{repository.TransactionFilter{Category: "Car Sale", Type: "Income"}, "transactions-car-sale-income-20250301.xlsx"},
	}
	for _, tt := range tests {
		if got := ExportFilename(tt.filter); got != tt.want {
			t.Errorf("ExportFilename(%+v) = %s, want %s", tt.filter, got, tt.want)
		}
	}
}
