package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/tatarana/ocr-engine/constants"
)

// Filename generates the output name for a processed statement. When the
// original filename is known its base is kept so outputs are easy to match
// back to inputs.
func Filename(bank constants.Bank, docType constants.DocumentType, original string, now time.Time, format Format) string {
	base := fmt.Sprintf("%s_%s", bank, docType)
	if original != "" {
		if i := strings.LastIndex(original, "."); i > 0 {
			base = original[:i]
		} else {
			base = original
		}
	}
	return fmt.Sprintf("%s_extracted_%s.%s", base, now.Format("20060102_150405"), format)
}
