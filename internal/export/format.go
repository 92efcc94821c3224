package export

import (
	"fmt"
	"strings"

	"github.com/tatarana/ocr-engine/constants"
	"github.com/tatarana/ocr-engine/internal/entity"
)

// Format selects the tabular output encoding.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// MediaTypeXLSX is the media type of generated workbooks.
const MediaTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ParseFormat maps a caller-supplied label to a Format. The empty string means
// the CSV default; anything else outside the enum is rejected.
func ParseFormat(s string) (Format, bool) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatCSV:
		return FormatCSV, true
	case FormatXLSX:
		return FormatXLSX, true
	}
	return "", false
}

// Marshal renders transactions in the requested format and reports the media
// type of the produced bytes.
func Marshal(format Format, txs []entity.Transaction) ([]byte, string, error) {
	switch format {
	case FormatXLSX:
		b, err := MarshalXLSX(txs)
		return b, MediaTypeXLSX, err
	case FormatCSV:
		b, err := MarshalCSV(txs)
		return b, constants.MediaTypeCSV, err
	}
	return nil, "", fmt.Errorf("unknown export format %q", format)
}
