package registry

import "fmt"

// ClassificationPrompt asks the model for the (bank, document_type, confidence)
// triple. The response MIME type is forced to JSON at the model layer; the shape
// is still validated locally before use.
const ClassificationPrompt = `You are a financial document classifier for Brazilian bank and credit card statements.

Look at the attached document and identify:
1. "bank": the issuing institution. One of: "picpay", "itau", "xp".
2. "document_type": one of: "bank_statement", "credit_card_statement".
3. "confidence": a number between 0 and 1 for how certain you are.

Return ONLY a JSON object with exactly those three keys. Do not guess a bank
outside the list; if the document does not match any of them, still answer with
your best label so the caller can reject it.`

// extractionPreamble is shared by every extraction prompt. Bank-specific text
// is appended per registry entry.
const extractionPreamble = `You are a transaction extractor for financial statements.

Read the attached document and enumerate every transaction row. Return ONLY a
JSON object of the form {"transactions": [...]} where each element has:
- "date": transaction date exactly as printed (e.g. "05/03/2024")
- "description": the transaction description, verbatim
- "amount": the monetary amount as printed (e.g. "1.234,56" or "-45,90")
- "direction": "credit" if money came in, "debit" if money went out, omit if unclear
- "balance": running balance if the row shows one, else omit
- "category": category label if the document shows one, else omit
- "installments": installment info like "3/10" if shown, else omit

If the document contains no transactions, return {"transactions": []}.
Do not invent rows, do not summarize, and do not add keys.`

// CorrectionSuffix is appended when a first extraction attempt returned
// malformed JSON, to give the model one chance to self-correct.
const CorrectionSuffix = `

Your previous answer was not valid JSON matching the required shape. Respond
again with ONLY the JSON object described above, with no surrounding text,
markdown fences, or commentary.`

func bankStatementPrompt(bankLabel string) string {
	return extractionPreamble + fmt.Sprintf(`

The document is a %s bank account statement (extrato). Dates are in Brazilian
DD/MM/YYYY format and amounts use comma as the decimal separator. Deposits,
received transfers and refunds are credits; payments, purchases, sent transfers,
withdrawals and fees are debits.`, bankLabel)
}

func creditCardPrompt(bankLabel string) string {
	return extractionPreamble + fmt.Sprintf(`

The document is a %s credit card statement (fatura). Dates are in Brazilian
DD/MM/YYYY format and amounts use comma as the decimal separator. Purchases and
fees are debits; received payments, refunds (estorno) and credits on the invoice
are credits. Installment purchases show the installment counter (e.g. "3/10").`, bankLabel)
}
