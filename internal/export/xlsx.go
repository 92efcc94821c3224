package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/tatarana/ocr-engine/internal/entity"
)

// MarshalXLSX returns an XLSX workbook (as bytes) with one sheet of
// transactions, for consumers who prefer a spreadsheet over the CSV contract.
func MarshalXLSX(txs []entity.Transaction) ([]byte, error) {
	f := excelize.NewFile()
	const sheet = "Transactions"
	// rename the default sheet instead of adding one next to it
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}

	headers := []string{"Date", "Description", "Amount", "Balance", "Category", "Installments"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	row := 2
	for _, t := range txs {
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}
		write(1, t.Date.Format(entity.DateLayout))
		write(2, t.Description)
		write(3, t.Amount.StringFixed(2))
		if t.Balance != nil {
			write(4, t.Balance.StringFixed(2))
		} else {
			write(4, "")
		}
		write(5, t.Category)
		write(6, t.Installments)
		row++
	}

	_ = f.SetColWidth(sheet, "A", "A", 12) // date
	_ = f.SetColWidth(sheet, "B", "B", 48) // description
	_ = f.SetColWidth(sheet, "C", "D", 14) // amounts
	_ = f.SetColWidth(sheet, "E", "F", 18)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}
