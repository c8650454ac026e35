package writer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/insightdelivered/statement-desk/internal/models"
)

// CSVWriter writes a statement draft to CSV.
type CSVWriter struct {
	IncludeHeader bool
}

// Write writes the account header rows (when enabled), the column row and one
// row per transaction, in collection order.
func (w *CSVWriter) Write(out io.Writer, s models.Statement) error {
	writer := csv.NewWriter(out)

	if w.IncludeHeader {
		info := s.AccountInfo
		meta := [][2]string{
			{"# Bank", info.BankName},
			{"# Account Holder", info.AccountHolder},
			{"# Account Number", info.AccountNumber},
			{"# Month Reference", info.MonthReference},
		}
		if info.StatementPeriod.From != "" || info.StatementPeriod.To != "" {
			meta = append(meta, [2]string{"# Statement Period", info.StatementPeriod.From + " to " + info.StatementPeriod.To})
		}
		for _, m := range meta {
			if m[1] == "" {
				continue
			}
			if err := writer.Write(m[:]); err != nil {
				return fmt.Errorf("failed to write CSV metadata: %w", err)
			}
		}
		balances := [][]string{
			{"# Beginning Balance", formatAmount(info.Balances.Beginning)},
			{"# Ending Balance", formatAmount(info.Balances.Ending)},
		}
		if err := writer.WriteAll(balances); err != nil {
			return fmt.Errorf("failed to write CSV metadata: %w", err)
		}
	}

	if err := writer.Write([]string{"ID", "Date", "Description", "Type", "Amount"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, txn := range s.Transactions {
		row := []string{
			txn.ID.String(),
			txn.Date,
			txn.Description,
			txn.Type,
			formatAmount(txn.Amount),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

func formatAmount(amount float64) string {
	return strconv.FormatFloat(amount, 'f', 2, 64)
}
