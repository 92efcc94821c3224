package llm

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStripFences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", `{"a": 1}`, `{"a": 1}`},
		{"json fence", "```json\n{\"a\": 1}\n```", `{"a": 1}`},
		{"bare fence", "```\n{\"a\": 1}\n```", `{"a": 1}`},
		{"surrounding whitespace", "  \n```json\n{\"a\": 1}\n```\n  ", `{"a": 1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripFences(tt.in))
		})
	}
}

func TestSanitizeTransactionsJSON(t *testing.T) {
	raw := []byte(`{"transactions": [
		{"date": "05/03/2024", "description": "Compra", "amount": -42.5,
		 "balance": null, "category": "  ", "merchant": "should be dropped"},
		{"date": "06/03/2024", "amount": "10,00"}
	]}`)

	cleaned, dropped, err := SanitizeTransactionsJSON(raw)
	require.NoError(t, err)
	assert.NotEmpty(t, dropped)

	var doc struct {
		Transactions []map[string]string `json:"transactions"`
	}
	require.NoError(t, json.Unmarshal(cleaned, &doc))
	require.Len(t, doc.Transactions, 2)

	first := doc.Transactions[0]
	assert.Equal(t, "-42.5", first["amount"], "numeric amounts become strings")
	assert.NotContains(t, first, "balance", "null optionals are dropped")
	assert.NotContains(t, first, "category", "blank optionals are dropped")
	assert.NotContains(t, first, "merchant", "unknown keys are dropped")

	// description is materialized so schema validation can run
	assert.Contains(t, doc.Transactions[1], "description")
}

func TestSanitizeRejectsMissingTransactions(t *testing.T) {
	_, _, err := SanitizeTransactionsJSON([]byte(`{"rows": []}`))
	assert.Error(t, err)

	_, _, err = SanitizeTransactionsJSON([]byte(`{"transactions": {"a": 1}}`))
	assert.Error(t, err)

	_, _, err = SanitizeTransactionsJSON([]byte(`not json`))
	assert.Error(t, err)
}

func TestValidateSchemas(t *testing.T) {
	good := []byte(`{"bank": "picpay", "document_type": "bank_statement", "confidence": 0.9}`)
	assert.NoError(t, ValidateJSON(ClassificationSchema, good))

	bad := []byte(`{"bank": "picpay"}`)
	assert.Error(t, ValidateJSON(ClassificationSchema, bad))

	rows := []byte(`{"transactions": [{"date": "x", "description": "y", "amount": "1,00"}]}`)
	assert.NoError(t, ValidateJSON(TransactionsSchema, rows))

	missingAmount := []byte(`{"transactions": [{"date": "x", "description": "y"}]}`)
	assert.Error(t, ValidateJSON(TransactionsSchema, missingAmount))
}
