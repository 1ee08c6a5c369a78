package constants

import "strings"

// AllowedExtensions holds the file extensions accepted by batch ingestion.
// The batch CLI consumes OCR text dumps, not images.
var AllowedExtensions = map[string]struct{}{
	"txt": {},
	"ocr": {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}
