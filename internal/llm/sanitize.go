package llm

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// StripFences removes a surrounding markdown code fence from a model response.
// Providers occasionally wrap JSON in ```json ... ``` even when asked not to.
func StripFences(s string) string {
	t := strings.TrimSpace(s)
	if !strings.HasPrefix(t, "```") {
		return t
	}
	t = strings.TrimPrefix(t, "```json")
	t = strings.TrimPrefix(t, "```")
	t = strings.TrimSuffix(strings.TrimSpace(t), "```")
	return strings.TrimSpace(t)
}

var candidateStringFields = []string{
	"date", "description", "amount", "direction", "balance", "category", "installments",
}

// SanitizeTransactionsJSON normalizes a transactions payload before schema
// validation:
//   - coerces numeric amount/balance values to strings
//   - drops null or empty optional fields
//   - removes unknown keys (the schema sets additionalProperties=false)
//
// It returns the cleaned document and the names of dropped keys.
func SanitizeTransactionsJSON(raw []byte) ([]byte, []string, error) {
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, nil, fmt.Errorf("sanitize: decode: %w", err)
	}

	rows, ok := doc["transactions"].([]any)
	if !ok {
		return nil, nil, fmt.Errorf("sanitize: missing transactions array")
	}
	var dropped []string

	cleaned := make([]any, 0, len(rows))
	for _, r := range rows {
		m, ok := r.(map[string]any)
		if !ok {
			dropped = append(dropped, "transactions[]")
			continue
		}
		out := make(map[string]any, len(candidateStringFields))
		for _, k := range candidateStringFields {
			v, present := m[k]
			if !present {
				continue
			}
			switch t := v.(type) {
			case nil:
				dropped = append(dropped, k)
			case string:
				s := strings.TrimSpace(t)
				if s == "" || strings.EqualFold(s, "null") {
					dropped = append(dropped, k)
					continue
				}
				out[k] = s
			case float64:
				out[k] = strconv.FormatFloat(t, 'f', -1, 64)
			case bool:
				dropped = append(dropped, k)
			default:
				dropped = append(dropped, k)
			}
		}
		// description may legitimately be empty but must exist for the schema
		if _, ok := out["description"]; !ok {
			out["description"] = ""
		}
		cleaned = append(cleaned, out)
	}

	b, err := json.Marshal(map[string]any{"transactions": cleaned})
	if err != nil {
		return nil, nil, err
	}
	return b, dropped, nil
}
