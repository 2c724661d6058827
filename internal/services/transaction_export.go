package services

import (
	"context"
	"fmt"
	"io"

	"dealership/internal/finance"
	"dealership/internal/repository"

	"github.com/xuri/excelize/v2"
)

const exportSheet = "Transactions"

var exportHeaders = []string{
	"ID", "Date", "Type", "Category", "Description", "Amount", "Currency",
	"Paid", "Remaining", "Payment Status", "Car Buying Price (DZD)",
	"Commissions", "Net Profit", "Customer", "Phone", "Car", "VIN", "Related Order",
}

// Export writes the matching transactions as an xlsx workbook followed by
// a totals row.
func (s *transactionService) Export(ctx context.Context, filter repository.TransactionFilter, w io.Writer) error {
	filter.Page = repository.Page{}
	txs, err := s.repos.Transactions.List(ctx, filter)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(exportSheet)
	if err != nil {
		return fmt.Errorf("error creating sheet: %w", err)
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	for i, header := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(exportSheet, cell, header)
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6E6FA"}, Pattern: 1},
	})
	if err == nil {
		f.SetRowStyle(exportSheet, 1, 1, headerStyle)
	}

	for i := range txs {
		tx := &txs[i]
		view := viewOf(tx)
		profit := any("")
		if view.ShowProfit {
			profit = view.NetProfit
		}
		values := []any{
			tx.ID,
			tx.Date.Format("2006-01-02"),
			tx.Type,
			tx.Category,
			describe(tx),
			tx.Amount,
			tx.Currency,
			tx.PaidAmount,
			view.Remaining,
			tx.PaymentStatus,
			tx.CarBuyingPrice,
			view.TotalCommissions,
			profit,
			tx.CustomerName,
			tx.CustomerPhone,
			tx.CarModel,
			tx.CarVIN,
			view.RelatedOrderNumber,
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(exportSheet, cell, &values); err != nil {
			return fmt.Errorf("error writing row %d: %w", i+2, err)
		}
	}

	sum := summarize(txs)
	totalRow := len(txs) + 3
	totals := []any{"Income", sum.Income, "Expense", sum.Expense, "Balance", sum.Balance, "Outstanding", sum.Outstanding, "Net Profit", sum.NetProfit}
	cell, _ := excelize.CoordinatesToCellName(1, totalRow)
	if err := f.SetSheetRow(exportSheet, cell, &totals); err != nil {
		return fmt.Errorf("error writing totals: %w", err)
	}

	last, _ := excelize.ColumnNumberToName(len(exportHeaders))
	f.SetColWidth(exportSheet, "A", last, 16)

	_, err = f.WriteTo(w)
	return err
}

// ExportFilename names the download for a filter.
func ExportFilename(filter repository.TransactionFilter) string {
	name := "transactions"
	if filter.Category != "" {
		name += "-" + slug(filter.Category)
	}
	if filter.Type == finance.TypeIncome || filter.Type == finance.TypeExpense {
		name += "-" + slug(filter.Type)
	}
	return name + "-" + timeNow().Format("20060102") + ".xlsx"
}

func slug(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			out = append(out, r)
		case r >= 'A' && r <= 'Z':
			out = append(out, r+('a'-'A'))
		case len(out) > 0 && out[len(out)-1] != '-':
			out = append(out, '-')
		}
	}
	return string(out)
}
