package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Direction is the semantic money flow of a transaction.
type Direction string

const (
	DirectionCredit  Direction = "credit"
	DirectionDebit   Direction = "debit"
	DirectionUnknown Direction = ""
)

// ParseDirection maps a model-reported label to a Direction; anything outside
// the enum comes back as DirectionUnknown.
func ParseDirection(s string) Direction {
	switch s {
	case "credit", "in", "entrada":
		return DirectionCredit
	case "debit", "out", "saida", "saída":
		return DirectionDebit
	}
	return DirectionUnknown
}

// RawTransactionCandidate is an unvalidated fragment as returned by the model.
// Every field is textual; the normalizer owns parsing and canonicalization.
type RawTransactionCandidate struct {
	Date         string `json:"date"`
	Description  string `json:"description"`
	Amount       string `json:"amount"`
	Direction    string `json:"direction,omitempty"`
	Balance      string `json:"balance,omitempty"`
	Category     string `json:"category,omitempty"`
	Installments string `json:"installments,omitempty"`
}

// Transaction is the canonical validated record. Credits are positive, debits
// negative, regardless of how the source document expressed sign.
type Transaction struct {
	Date         time.Time        `json:"date"`
	Description  string           `json:"description"`
	Amount       decimal.Decimal  `json:"amount"`
	Balance      *decimal.Decimal `json:"balance,omitempty"`
	Category     string           `json:"category,omitempty"`
	Installments string           `json:"installments,omitempty"`
}

// DateLayout is the canonical textual form for transaction dates.
const DateLayout = "2006-01-02"
