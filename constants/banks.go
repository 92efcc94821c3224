package constants

import "strings"

// Bank identifies the issuing institution of a statement.
type Bank string

const (
	BankPicpay Bank = "picpay"
	BankItau   Bank = "itau"
	BankXP     Bank = "xp"
)

// Banks holds every recognized bank value.
var Banks = []Bank{BankPicpay, BankItau, BankXP}

// DocumentType identifies the kind of financial document.
type DocumentType string

const (
	BankStatement       DocumentType = "bank_statement"
	CreditCardStatement DocumentType = "credit_card_statement"
)

// DocumentTypes holds every recognized document type value.
var DocumentTypes = []DocumentType{BankStatement, CreditCardStatement}

// ParseBank maps a model-reported label to a Bank. The boolean is false for
// labels outside the enum; callers must not coerce those to a default.
func ParseBank(s string) (Bank, bool) {
	switch Bank(strings.ToLower(strings.TrimSpace(s))) {
	case BankPicpay:
		return BankPicpay, true
	case BankItau:
		return BankItau, true
	case BankXP:
		return BankXP, true
	}
	return "", false
}

// ParseDocumentType maps a model-reported label to a DocumentType.
// "credit_card" is accepted as a legacy spelling of credit_card_statement.
func ParseDocumentType(s string) (DocumentType, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(BankStatement):
		return BankStatement, true
	case string(CreditCardStatement), "credit_card":
		return CreditCardStatement, true
	}
	return "", false
}
