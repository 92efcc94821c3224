// Package export renders validated transaction lists to deterministic tabular
// byte streams (CSV for the pipeline contract, XLSX for spreadsheet
// consumers) and parses them back.
package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"
	"github.com/tatarana/ocr-engine/internal/entity"
)

// CSVHeader is the exact header line of every generated CSV.
const CSVHeader = "date,description,amount,balance,category,installments"

// csvRow is the wire form of one transaction. Field order defines the column
// order; amounts are pre-formatted to two decimals so the output is
// byte-stable for identical input.
type csvRow struct {
	Date         string `csv:"date"`
	Description  string `csv:"description"`
	Amount       string `csv:"amount"`
	Balance      string `csv:"balance"`
	Category     string `csv:"category"`
	Installments string `csv:"installments"`
}

// MarshalCSV renders transactions as UTF-8 CSV. Same input list, same bytes.
func MarshalCSV(txs []entity.Transaction) ([]byte, error) {
	rows := make([]csvRow, 0, len(txs))
	for _, t := range txs {
		row := csvRow{
			Date:         t.Date.Format(entity.DateLayout),
			Description:  t.Description,
			Amount:       t.Amount.StringFixed(2),
			Category:     t.Category,
			Installments: t.Installments,
		}
		if t.Balance != nil {
			row.Balance = t.Balance.StringFixed(2)
		}
		rows = append(rows, row)
	}
	b, err := gocsv.MarshalBytes(&rows)
	if err != nil {
		return nil, fmt.Errorf("marshal csv: %w", err)
	}
	return b, nil
}

// ParseCSV reads a generated CSV back into transactions. It is the round-trip
// counterpart of MarshalCSV and is strict about the canonical formats.
func ParseCSV(data []byte) ([]entity.Transaction, error) {
	var rows []csvRow
	if err := gocsv.UnmarshalBytes(data, &rows); err != nil {
		return nil, fmt.Errorf("unmarshal csv: %w", err)
	}
	out := make([]entity.Transaction, 0, len(rows))
	for i, r := range rows {
		date, err := parseCanonicalDate(r.Date)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		amount, err := decimal.NewFromString(r.Amount)
		if err != nil {
			return nil, fmt.Errorf("row %d: amount %q: %w", i+1, r.Amount, err)
		}
		tx := entity.Transaction{
			Date:         date,
			Description:  r.Description,
			Amount:       amount,
			Category:     r.Category,
			Installments: r.Installments,
		}
		if strings.TrimSpace(r.Balance) != "" {
			bal, err := decimal.NewFromString(r.Balance)
			if err != nil {
				return nil, fmt.Errorf("row %d: balance %q: %w", i+1, r.Balance, err)
			}
			tx.Balance = &bal
		}
		out = append(out, tx)
	}
	return out, nil
}

func parseCanonicalDate(s string) (time.Time, error) {
	return time.Parse(entity.DateLayout, s)
}

// CountRows returns the number of data rows in a generated CSV, i.e. lines
// minus the header.
func CountRows(data []byte) int {
	s := strings.TrimRight(string(data), "\r\n")
	if s == "" {
		return 0
	}
	lines := strings.Count(s, "\n") + 1
	if lines <= 1 {
		return 0
	}
	return lines - 1
}
