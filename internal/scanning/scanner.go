package scanning

// Document is the text recognized in one image. Line breaks in FullText
// follow the printed lines of the document.
type Document struct {
	FullText string `json:"full_text"`
}

// Scanner defines the interface for OCR providers
type Scanner interface {
	// ScanText recognizes the text of an image or PDF
	ScanText(imageData []byte, contentType string) (*Document, error)
	// Close closes the scanner and releases resources
	Close() error
}
