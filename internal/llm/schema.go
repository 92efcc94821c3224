package llm

// BuildClassificationJSONSchema returns a JSON-Schema (draft 2020-12 subset) as
// a generic map. It constrains the shape of a classification response, not the
// enum membership: unknown banks must surface as unsupported-bank errors, not
// schema violations, so the caller can tell the two failure modes apart.
func BuildClassificationJSONSchema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"bank":          map[string]any{"type": "string", "minLength": 1},
			"document_type": map[string]any{"type": "string", "minLength": 1},
			"confidence":    map[string]any{"type": "number"},
		},
		"required": []string{"bank", "document_type", "confidence"},
	}
}

// BuildTransactionsJSONSchema constrains an extraction response: an object with
// a "transactions" array of candidate rows. All row fields are strings; parsing
// into dates and decimals belongs to the normalizer.
func BuildTransactionsJSONSchema() map[string]any {
	row := map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"date":         map[string]any{"type": "string", "minLength": 1},
			"description":  map[string]any{"type": "string"},
			"amount":       map[string]any{"type": "string", "minLength": 1},
			"direction":    map[string]any{"type": "string"},
			"balance":      map[string]any{"type": "string"},
			"category":     map[string]any{"type": "string"},
			"installments": map[string]any{"type": "string"},
		},
		"required": []string{"date", "description", "amount"},
	}
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"transactions": map[string]any{
				"type":  "array",
				"items": row,
			},
		},
		"required": []string{"transactions"},
	}
}
