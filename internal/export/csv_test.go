package export

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/tatarana/ocr-engine/constants"
	"github.com/tatarana/ocr-engine/internal/entity"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func sampleTransactions() []entity.Transaction {
	day := func(d int) time.Time { return time.Date(2024, 3, d, 0, 0, 0, 0, time.UTC) }
	return []entity.Transaction{
		{Date: day(5), Description: "Pix recebido de Maria", Amount: dec("150.00"), Balance: decPtr("1150.00")},
		{Date: day(6), Description: "Pagamento de boleto", Amount: dec("-89.90"), Balance: decPtr("1060.10")},
		{Date: day(7), Description: "Compra parcelada", Amount: dec("-250.00"), Category: "eletrônicos", Installments: "3/10"},
	}
}

func TestMarshalCSVHeaderAndRowCount(t *testing.T) {
	out, err := MarshalCSV(sampleTransactions())
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(string(out), "\r\n"), "\n")
	require.Len(t, lines, 4, "header plus one line per transaction")
	assert.Equal(t, CSVHeader, strings.TrimRight(lines[0], "\r"))
	assert.Equal(t, 3, CountRows(out))
}

func TestMarshalCSVRowContents(t *testing.T) {
	out, err := MarshalCSV(sampleTransactions())
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(string(out), "\r\n"), "\n")
	assert.Equal(t, "2024-03-05,Pix recebido de Maria,150.00,1150.00,,", strings.TrimRight(lines[1], "\r"))
	assert.Equal(t, "2024-03-06,Pagamento de boleto,-89.90,1060.10,,", strings.TrimRight(lines[2], "\r"))
	assert.Equal(t, "2024-03-07,Compra parcelada,-250.00,,eletrônicos,3/10", strings.TrimRight(lines[3], "\r"))
}

func TestMarshalCSVDeterministic(t *testing.T) {
	txs := sampleTransactions()
	first, err := MarshalCSV(txs)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := MarshalCSV(txs)
		require.NoError(t, err)
		assert.True(t, bytes.Equal(first, again), "identical input must produce identical bytes")
	}
}

func TestMarshalCSVEmptyList(t *testing.T) {
	out, err := MarshalCSV(nil)
	require.NoError(t, err)
	assert.Equal(t, CSVHeader, strings.TrimRight(string(out), "\r\n"))
	assert.Equal(t, 0, CountRows(out))
}

func TestCSVRoundTrip(t *testing.T) {
	txs := sampleTransactions()
	out, err := MarshalCSV(txs)
	require.NoError(t, err)

	back, err := ParseCSV(out)
	require.NoError(t, err)
	require.Len(t, back, len(txs))
	for i := range txs {
		assert.True(t, txs[i].Date.Equal(back[i].Date))
		assert.Equal(t, txs[i].Description, back[i].Description)
		assert.True(t, txs[i].Amount.Equal(back[i].Amount))
		assert.Equal(t, txs[i].Category, back[i].Category)
		assert.Equal(t, txs[i].Installments, back[i].Installments)
		if txs[i].Balance == nil {
			assert.Nil(t, back[i].Balance)
		} else {
			require.NotNil(t, back[i].Balance)
			assert.True(t, txs[i].Balance.Equal(*back[i].Balance))
		}
	}
}

func TestParseCSVRejectsNonCanonicalRows(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"bad date", "05/03/2024,desc,1.00,,,"},
		{"bad amount", "2024-03-05,desc,um real,,,"},
		{"bad balance", "2024-03-05,desc,1.00,abc,,"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCSV([]byte(CSVHeader + "\n" + tt.body + "\n"))
			assert.Error(t, err)
		})
	}
}

func TestFilename(t *testing.T) {
	now := time.Date(2024, 3, 5, 14, 30, 45, 0, time.UTC)

	got := Filename(constants.BankPicpay, constants.BankStatement, "extrato março.pdf", now, FormatCSV)
	assert.Equal(t, "extrato março_extracted_20240305_143045.csv", got)

	got = Filename(constants.BankXP, constants.CreditCardStatement, "", now, FormatCSV)
	assert.Equal(t, "xp_credit_card_statement_extracted_20240305_143045.csv", got)

	// a name with no extension keeps its full base
	got = Filename(constants.BankItau, constants.BankStatement, "fatura", now, FormatCSV)
	assert.Equal(t, "fatura_extracted_20240305_143045.csv", got)

	got = Filename(constants.BankItau, constants.BankStatement, "extrato.pdf", now, FormatXLSX)
	assert.Equal(t, "extrato_extracted_20240305_143045.xlsx", got)
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
		ok   bool
	}{
		{"", FormatCSV, true},
		{"csv", FormatCSV, true},
		{"XLSX", FormatXLSX, true},
		{" xlsx ", FormatXLSX, true},
		{"pdf", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseFormat(tt.in)
		assert.Equal(t, tt.ok, ok, "%q", tt.in)
		assert.Equal(t, tt.want, got, "%q", tt.in)
	}
}

func TestMarshalFormats(t *testing.T) {
	txs := sampleTransactions()

	data, mediaType, err := Marshal(FormatCSV, txs)
	require.NoError(t, err)
	assert.Equal(t, constants.MediaTypeCSV, mediaType)
	assert.True(t, bytes.HasPrefix(data, []byte(CSVHeader)))

	data, mediaType, err = Marshal(FormatXLSX, txs)
	require.NoError(t, err)
	assert.Equal(t, MediaTypeXLSX, mediaType)
	assert.True(t, bytes.HasPrefix(data, []byte("PK")))

	_, _, err = Marshal(Format("pdf"), txs)
	assert.Error(t, err)
}

func TestMarshalXLSXProducesWorkbook(t *testing.T) {
	out, err := MarshalXLSX(sampleTransactions())
	require.NoError(t, err)
	require.NotEmpty(t, out)
	// xlsx files are zip archives
	assert.True(t, bytes.HasPrefix(out, []byte("PK")))

	f, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	// exactly one sheet, no leftover default
	assert.Equal(t, []string{"Transactions"}, f.GetSheetList())

	cell, err := f.GetCellValue("Transactions", "A1")
	require.NoError(t, err)
	assert.Equal(t, "Date", cell)
	cell, err = f.GetCellValue("Transactions", "B2")
	require.NoError(t, err)
	assert.Equal(t, "Pix recebido de Maria", cell)
	cell, err = f.GetCellValue("Transactions", "C3")
	require.NoError(t, err)
	assert.Equal(t, "-89.90", cell)
}
