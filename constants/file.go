package constants

import "strings"

// Supported document media types. Anything else is rejected before the first
// model call.
const (
	MediaTypePDF  = "application/pdf"
	MediaTypeJPEG = "image/jpeg"
	MediaTypePNG  = "image/png"
	MediaTypeCSV  = "text/csv"
)

// MaxFileSizeMBDefault caps document payloads handed to the model.
const MaxFileSizeMBDefault = 50

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// MapExtToMediaType resolves a file extension to its declared media type,
// returning "" for unsupported extensions.
func MapExtToMediaType(ext string) string {
	switch NormalizeExt(ext) {
	case "pdf":
		return MediaTypePDF
	case "jpg", "jpeg":
		return MediaTypeJPEG
	case "png":
		return MediaTypePNG
	}
	return ""
}

// IsSupportedMediaType reports whether the pipeline accepts the media type.
func IsSupportedMediaType(mt string) bool {
	switch strings.ToLower(strings.TrimSpace(mt)) {
	case MediaTypePDF, MediaTypeJPEG, MediaTypePNG:
		return true
	}
	return false
}
