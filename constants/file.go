package constants

import "strings"

// Format is the coarse document kind derived from a file extension.
type Format string

const (
	PDF     Format = "PDF"
	IMAGE   Format = "IMAGE"
	UNKNOWN Format = "UNKNOWN"
)

// MaxUploadBytes caps accepted input files at 10 MiB.
const MaxUploadBytes = 10 << 20

// AllowedExtensions holds the file extensions accepted for extraction.
var AllowedExtensions = map[string]struct{}{
	"pdf":  {},
	"jpg":  {},
	"jpeg": {},
	"png":  {},
	"webp": {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// MapExtToFormat maps a normalized extension to its document format.
func MapExtToFormat(ext string) Format {
	switch NormalizeExt(ext) {
	case "pdf":
		return PDF
	case "jpg", "jpeg", "png", "webp":
		return IMAGE
	default:
		return UNKNOWN
	}
}
