// Package normalize validates raw extraction candidates and canonicalizes them
// into Transaction records. It never fails a file over a single bad record:
// unparseable candidates are dropped and counted.
package normalize

import (
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tatarana/ocr-engine/internal/entity"
	"github.com/tatarana/ocr-engine/internal/registry"
)

type Normalizer struct {
	log *slog.Logger
}

func New(logger *slog.Logger) *Normalizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Normalizer{log: logger}
}

// Normalize applies the per-candidate rules in order: date, amount+sign, then
// optional passthrough fields. The returned count is how many candidates were
// skipped; it is surfaced for observability and is not part of the
// success/failure contract.
func (n *Normalizer) Normalize(entry registry.Entry, cands []entity.RawTransactionCandidate) ([]entity.Transaction, int) {
	out := make([]entity.Transaction, 0, len(cands))
	skipped := 0

	for i, c := range cands {
		date, err := parseDate(c.Date, entry.DateLayouts)
		if err != nil {
			n.log.Warn("normalize.skip_record",
				"index", i, "reason", "bad_date", "date", c.Date)
			skipped++
			continue
		}

		amount, explicitSign, err := parseAmount(c.Amount, entry.DecimalComma)
		if err != nil {
			n.log.Warn("normalize.skip_record",
				"index", i, "reason", "bad_amount", "amount", c.Amount)
			skipped++
			continue
		}

		dir := resolveDirection(c, explicitSign, amount, entry)
		if explicitSign {
			if fromField := entity.ParseDirection(c.Direction); fromField != entity.DirectionUnknown && fromField != dir {
				n.log.Warn("normalize.direction_conflict",
					"index", i, "amount", c.Amount, "direction", c.Direction,
					"resolved", string(dir))
			}
		}
		amount = amount.Abs()
		if dir == entity.DirectionDebit {
			amount = amount.Neg()
		}

		tx := entity.Transaction{
			Date:         date,
			Description:  strings.TrimSpace(c.Description),
			Amount:       amount,
			Category:     strings.TrimSpace(c.Category),
			Installments: strings.TrimSpace(c.Installments),
		}
		if b := strings.TrimSpace(c.Balance); b != "" {
			if bal, _, err := parseAmount(b, entry.DecimalComma); err == nil {
				tx.Balance = &bal
			}
		}
		out = append(out, tx)
	}

	if skipped > 0 {
		n.log.Info("normalize.skipped_records", "skipped", skipped, "kept", len(out))
	}
	return out, skipped
}

// resolveDirection fixes the semantic money flow for a candidate. An explicit
// sign on the amount wins over the model's direction field; when both are
// absent the bank-specific heuristic from the registry entry decides.
func resolveDirection(c entity.RawTransactionCandidate, explicitSign bool, amount decimal.Decimal, entry registry.Entry) entity.Direction {
	fromSign := entity.DirectionUnknown
	if explicitSign {
		if amount.IsNegative() {
			fromSign = entity.DirectionDebit
		} else {
			fromSign = entity.DirectionCredit
		}
	}
	fromField := entity.ParseDirection(c.Direction)

	if fromSign != entity.DirectionUnknown {
		return fromSign
	}
	if fromField != entity.DirectionUnknown {
		return fromField
	}
	if d := entry.Direction(c.Description); d != entity.DirectionUnknown {
		return d
	}
	// Nothing decided the flow; treat as an outflow, the common case for
	// statement rows whose wording the heuristic has not seen.
	return entity.DirectionDebit
}

func parseDate(s string, layouts []string) (time.Time, error) {
	s = strings.TrimSpace(s)
	var lastErr error
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		} else {
			lastErr = err
		}
	}
	return time.Time{}, lastErr
}

// thousandsOnly matches dot-grouped integers like "1.234" or "1.234.567".
var thousandsOnly = regexp.MustCompile(`^\d{1,3}(\.\d{3})+$`)

// parseAmount parses a monetary string, handling Brazilian decimal-comma
// formatting, currency symbols and parenthesized negatives. The boolean
// reports whether the source carried an explicit sign.
func parseAmount(s string, decimalComma bool) (decimal.Decimal, bool, error) {
	t := strings.TrimSpace(s)
	t = strings.ReplaceAll(t, "R$", "")
	t = strings.ReplaceAll(t, " ", "")
	t = strings.ReplaceAll(t, " ", "")

	neg := false
	explicit := false
	if strings.HasPrefix(t, "(") && strings.HasSuffix(t, ")") {
		t = strings.TrimSuffix(strings.TrimPrefix(t, "("), ")")
		neg = true
		explicit = true
	}
	if strings.HasPrefix(t, "-") {
		t = strings.TrimPrefix(t, "-")
		neg = true
		explicit = true
	} else if strings.HasPrefix(t, "+") {
		t = strings.TrimPrefix(t, "+")
		explicit = true
	}

	if decimalComma {
		if strings.Contains(t, ",") {
			t = strings.ReplaceAll(t, ".", "")
			t = strings.ReplaceAll(t, ",", ".")
		} else if thousandsOnly.MatchString(t) {
			// "1.234" with no decimal comma is a grouped integer, not 1.234
			t = strings.ReplaceAll(t, ".", "")
		}
	}

	d, err := decimal.NewFromString(t)
	if err != nil {
		return decimal.Zero, false, err
	}
	if neg {
		d = d.Neg()
	}
	return d, explicit, nil
}
