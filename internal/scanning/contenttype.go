package scanning

import (
	"path/filepath"
	"strings"
)

// ContentTypeFor guesses the MIME type of an uploaded file from its extension.
func ContentTypeFor(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".pdf":
		return "application/pdf"
	case ".heic":
		return "image/heic"
	case ".heif":
		return "image/heif"
	default:
		return "application/octet-stream"
	}
}

// IsSupported reports whether the scanners can read files of this MIME type.
func IsSupported(contentType string) bool {
	switch normalizeMIMEType(contentType) {
	case "image/jpeg", "image/jpg", "image/png", "image/gif", "application/pdf":
		return true
	}
	return isHEICMimeType(contentType)
}

func normalizeMIMEType(contentType string) string {
	mimeType := strings.ToLower(strings.TrimSpace(contentType))
	if i := strings.Index(mimeType, ";"); i >= 0 {
		mimeType = strings.TrimSpace(mimeType[:i])
	}
	return mimeType
}
