package normalize

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tatarana/ocr-engine/constants"
	"github.com/tatarana/ocr-engine/internal/entity"
	"github.com/tatarana/ocr-engine/internal/registry"
)

func entryFor(t *testing.T, bank constants.Bank, dt constants.DocumentType) registry.Entry {
	t.Helper()
	job, err := registry.New().Resolve(entity.Classification{Bank: bank, DocumentType: dt}, entity.Document{Data: []byte("x")})
	require.NoError(t, err)
	return job.Entry
}

func TestNormalizeSignInvariant(t *testing.T) {
	entry := entryFor(t, constants.BankPicpay, constants.BankStatement)
	n := New(nil)

	cands := []entity.RawTransactionCandidate{
		// explicit direction field
		{Date: "05/03/2024", Description: "Qualquer coisa", Amount: "100,00", Direction: "credit"},
		{Date: "05/03/2024", Description: "Qualquer coisa", Amount: "100,00", Direction: "debit"},
		// explicit sign on the amount, no direction
		{Date: "06/03/2024", Description: "Sem rótulo", Amount: "-55,10"},
		{Date: "06/03/2024", Description: "Sem rótulo", Amount: "+55,10"},
		// sign already negative AND direction debit: stays a single negation
		{Date: "07/03/2024", Description: "Pagamento", Amount: "-20,00", Direction: "debit"},
		// description heuristic decides
		{Date: "08/03/2024", Description: "Pix recebido de Ana", Amount: "77,70"},
		{Date: "08/03/2024", Description: "Saque 24h", Amount: "30,00"},
	}

	txs, skipped := n.Normalize(entry, cands)
	require.Len(t, txs, 7)
	assert.Zero(t, skipped)

	wantSigns := []int{1, -1, -1, 1, -1, 1, -1}
	for i, tx := range txs {
		assert.Equal(t, wantSigns[i], tx.Amount.Sign(), "candidate %d (%s)", i, cands[i].Description)
	}

	// credits positive, debits negative, magnitudes preserved
	assert.True(t, txs[0].Amount.Equal(decimal.RequireFromString("100.00")))
	assert.True(t, txs[1].Amount.Equal(decimal.RequireFromString("-100.00")))
	assert.True(t, txs[4].Amount.Equal(decimal.RequireFromString("-20.00")))
}

func TestNormalizeExplicitSignWinsOverDirectionField(t *testing.T) {
	entry := entryFor(t, constants.BankPicpay, constants.BankStatement)
	n := New(nil)

	// the model says credit but the document printed a negative amount;
	// the explicit sign is authoritative
	txs, skipped := n.Normalize(entry, []entity.RawTransactionCandidate{
		{Date: "05/03/2024", Description: "Conflito", Amount: "-10,00", Direction: "credit"},
	})
	require.Len(t, txs, 1)
	assert.Zero(t, skipped)
	assert.Equal(t, -1, txs[0].Amount.Sign())
}

func TestNormalizeCreditCardDefaultsToDebit(t *testing.T) {
	entry := entryFor(t, constants.BankXP, constants.CreditCardStatement)
	n := New(nil)

	txs, _ := n.Normalize(entry, []entity.RawTransactionCandidate{
		{Date: "10/02/2024", Description: "RESTAURANTE FOO", Amount: "45,00"},
		{Date: "11/02/2024", Description: "PAGAMENTO RECEBIDO", Amount: "500,00"},
	})
	require.Len(t, txs, 2)
	assert.Equal(t, -1, txs[0].Amount.Sign())
	assert.Equal(t, 1, txs[1].Amount.Sign())
}

func TestNormalizeDates(t *testing.T) {
	entry := entryFor(t, constants.BankItau, constants.BankStatement)
	n := New(nil)

	txs, skipped := n.Normalize(entry, []entity.RawTransactionCandidate{
		{Date: "05/03/2024", Description: "a", Amount: "1,00"},
		{Date: "05/03/24", Description: "b", Amount: "1,00"},
		{Date: "2024-03-05", Description: "c", Amount: "1,00"},
	})
	require.Len(t, txs, 3)
	assert.Zero(t, skipped)
	for _, tx := range txs {
		assert.Equal(t, "2024-03-05", tx.Date.Format(entity.DateLayout))
	}
}

func TestNormalizeSkipsBadRecords(t *testing.T) {
	entry := entryFor(t, constants.BankItau, constants.BankStatement)
	n := New(nil)

	txs, skipped := n.Normalize(entry, []entity.RawTransactionCandidate{
		{Date: "not a date", Description: "bad date", Amount: "1,00"},
		{Date: "05/03/2024", Description: "bad amount", Amount: "many reais"},
		{Date: "05/03/2024", Description: "good", Amount: "1,00", Direction: "credit"},
	})
	require.Len(t, txs, 1)
	assert.Equal(t, 2, skipped)
	assert.Equal(t, "good", txs[0].Description)
}

func TestNormalizeOptionalFields(t *testing.T) {
	entry := entryFor(t, constants.BankItau, constants.CreditCardStatement)
	n := New(nil)

	txs, _ := n.Normalize(entry, []entity.RawTransactionCandidate{
		{Date: "05/03/2024", Description: "compra parcelada", Amount: "250,00",
			Balance: "1.234,56", Category: "eletrônicos", Installments: "3/10"},
		{Date: "06/03/2024", Description: "sem opcionais", Amount: "10,00"},
		{Date: "07/03/2024", Description: "saldo ilegível", Amount: "10,00", Balance: "??"},
	})
	require.Len(t, txs, 3)

	require.NotNil(t, txs[0].Balance)
	assert.True(t, txs[0].Balance.Equal(decimal.RequireFromString("1234.56")))
	assert.Equal(t, "eletrônicos", txs[0].Category)
	assert.Equal(t, "3/10", txs[0].Installments)

	assert.Nil(t, txs[1].Balance)
	assert.Empty(t, txs[1].Category)

	// malformed balance is dropped, not fatal
	assert.Nil(t, txs[2].Balance)
}

func TestParseAmountFormats(t *testing.T) {
	tests := []struct {
		in           string
		decimalComma bool
		want         string
		explicit     bool
	}{
		{"1.234,56", true, "1234.56", false},
		{"-45,90", true, "-45.9", true},
		{"+45,90", true, "45.9", true},
		{"R$ 12,00", true, "12", false},
		{"(99,00)", true, "-99", true},
		{"1234.56", false, "1234.56", false},
		{"150,00", true, "150", false},
		{"1.234", true, "1234", false},
		{"-1.234.567", true, "-1234567", true},
		{"12.34", true, "12.34", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, explicit, err := parseAmount(tt.in, tt.decimalComma)
			require.NoError(t, err)
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)), "got %s", got)
			assert.Equal(t, tt.explicit, explicit)
		})
	}

	_, _, err := parseAmount("abc", true)
	assert.Error(t, err)
}
