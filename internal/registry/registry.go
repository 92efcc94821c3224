// Package registry holds the immutable table mapping classified document kinds
// to their extraction prompt and normalization rules. The table is built once
// at startup and is read-only afterwards, so concurrent pipelines share it
// without locking.
package registry

import (
	"fmt"
	"strings"

	"github.com/tatarana/ocr-engine/constants"
	"github.com/tatarana/ocr-engine/internal/common"
	"github.com/tatarana/ocr-engine/internal/entity"
)

// Key is the tagged pair the dispatcher resolves on.
type Key struct {
	Bank         constants.Bank
	DocumentType constants.DocumentType
}

func (k Key) String() string {
	return fmt.Sprintf("%s/%s", k.Bank, k.DocumentType)
}

// Entry carries everything the extractor and normalizer need for one supported
// (bank, document type) pair.
type Entry struct {
	Key            Key
	PromptTemplate string
	// DateLayouts are tried in order when parsing candidate dates.
	DateLayouts []string
	// DecimalComma marks Brazilian number formatting ("1.234,56").
	DecimalComma bool
	// Direction resolves the money flow from a description when the candidate
	// itself is ambiguous. Bank-specific on purpose: a generic heuristic
	// silently flips signs on unfamiliar wording.
	Direction func(description string) entity.Direction
}

// ExtractionJob is the resolved unit of work handed to the extractor.
type ExtractionJob struct {
	Classification entity.Classification
	Entry          Entry
	Document       entity.Document
}

// Registry is the immutable lookup table.
type Registry struct {
	entries map[Key]Entry
}

// New builds the registry with every supported combination. Unsupported pairs
// (e.g. xp bank statements) are deliberately absent, never defaulted.
func New() *Registry {
	brLayouts := []string{"02/01/2006", "02/01/06", "2006-01-02"}

	entries := []Entry{
		{
			Key:            Key{constants.BankPicpay, constants.BankStatement},
			PromptTemplate: bankStatementPrompt("PicPay"),
			DateLayouts:    brLayouts,
			DecimalComma:   true,
			Direction:      statementDirection,
		},
		{
			Key:            Key{constants.BankItau, constants.BankStatement},
			PromptTemplate: bankStatementPrompt("Itaú"),
			DateLayouts:    brLayouts,
			DecimalComma:   true,
			Direction:      statementDirection,
		},
		{
			Key:            Key{constants.BankPicpay, constants.CreditCardStatement},
			PromptTemplate: creditCardPrompt("PicPay"),
			DateLayouts:    brLayouts,
			DecimalComma:   true,
			Direction:      creditCardDirection,
		},
		{
			Key:            Key{constants.BankItau, constants.CreditCardStatement},
			PromptTemplate: creditCardPrompt("Itaú"),
			DateLayouts:    brLayouts,
			DecimalComma:   true,
			Direction:      creditCardDirection,
		},
		{
			Key:            Key{constants.BankXP, constants.CreditCardStatement},
			PromptTemplate: creditCardPrompt("XP"),
			DateLayouts:    brLayouts,
			DecimalComma:   true,
			Direction:      creditCardDirection,
		},
	}

	m := make(map[Key]Entry, len(entries))
	for _, e := range entries {
		m[e.Key] = e
	}
	return &Registry{entries: m}
}

// Resolve looks up the extraction procedure for a classification. It is a pure
// lookup: unknown combinations are a hard stop, because a mismatched prompt
// corrupts downstream amounts and dates instead of failing loudly.
func (r *Registry) Resolve(c entity.Classification, doc entity.Document) (ExtractionJob, error) {
	key := Key{Bank: c.Bank, DocumentType: c.DocumentType}
	entry, ok := r.entries[key]
	if !ok {
		return ExtractionJob{}, fmt.Errorf("resolve %s: %w", key, common.ErrUnsupportedCombination)
	}
	return ExtractionJob{Classification: c, Entry: entry, Document: doc}, nil
}

// Supported reports whether a (bank, document type) pair has a registered
// extraction procedure.
func (r *Registry) Supported(bank constants.Bank, dt constants.DocumentType) bool {
	_, ok := r.entries[Key{Bank: bank, DocumentType: dt}]
	return ok
}

// Keys returns the declared domain of the registry.
func (r *Registry) Keys() []Key {
	keys := make([]Key, 0, len(r.entries))
	for k := range r.entries {
		keys = append(keys, k)
	}
	return keys
}

var statementCreditHints = []string{
	"recebid", "deposito", "depósito", "rendimento", "estorno",
	"reembolso", "cashback", "resgate",
}

var creditCardCreditHints = []string{
	"pagamento recebido", "pagamento efetuado", "pagamento de fatura",
	"estorno", "credito de", "crédito de", "ajuste a credito", "ajuste a crédito",
}

// statementDirection classifies a bank statement row by its wording. Bank
// statements mix inflows and outflows, so the default for unmatched wording is
// unknown rather than debit.
func statementDirection(description string) entity.Direction {
	d := strings.ToLower(description)
	for _, h := range statementCreditHints {
		if strings.Contains(d, h) {
			return entity.DirectionCredit
		}
	}
	switch {
	case strings.Contains(d, "pagamento"),
		strings.Contains(d, "compra"),
		strings.Contains(d, "enviad"),
		strings.Contains(d, "saque"),
		strings.Contains(d, "tarifa"),
		strings.Contains(d, "transferencia"),
		strings.Contains(d, "transferência"),
		strings.Contains(d, "debito"),
		strings.Contains(d, "débito"):
		return entity.DirectionDebit
	}
	return entity.DirectionUnknown
}

// creditCardDirection classifies a credit card invoice row. On an invoice
// nearly everything is a charge, so unmatched wording defaults to debit.
func creditCardDirection(description string) entity.Direction {
	d := strings.ToLower(description)
	for _, h := range creditCardCreditHints {
		if strings.Contains(d, h) {
			return entity.DirectionCredit
		}
	}
	return entity.DirectionDebit
}
