package extraction

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/zombor/invoice-extractor/internal/scanning"
)

// Pipeline runs OCR on an invoice image and extracts its fields.
// It holds no per-call state and may be shared between goroutines as long as
// the scanner can.
type Pipeline struct {
	scanner scanning.Scanner
}

// NewPipeline creates a Pipeline backed by the given OCR scanner.
func NewPipeline(scanner scanning.Scanner) *Pipeline {
	return &Pipeline{scanner: scanner}
}

// Extract reads the image at imagePath and extracts its fields. It never
// fails: any error is logged and reported through a StatusFailed result.
func (p *Pipeline) Extract(imagePath string) Result {
	data, err := os.ReadFile(imagePath)
	if err != nil {
		slog.Error("Failed to read invoice image", "path", imagePath, "error", err)
		return FailedResult(fmt.Errorf("reading image: %w", err))
	}
	return p.ExtractBytes(data, scanning.ContentTypeFor(imagePath))
}

// ExtractBytes runs OCR on image data and extracts its fields. Like Extract,
// it always returns a result.
func (p *Pipeline) ExtractBytes(data []byte, contentType string) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("unexpected panic: %v", r)
			slog.Error("Failed to process invoice image", "error", err)
			res = FailedResult(err)
		}
	}()

	doc, err := p.scanner.ScanText(data, contentType)
	if err == nil && doc == nil {
		err = errors.New("scanner returned no document")
	}
	if err != nil {
		slog.Error("Failed to process invoice image",
			"content_type", contentType,
			"file_size", len(data),
			"error", err,
		)
		return FailedResult(err)
	}

	slog.Info("OCR text recognized", "length", len(doc.FullText))
	slog.Debug("OCR full text", "text", doc.FullText)

	return ExtractText(doc.FullText)
}

// ExtractText extracts invoice fields from already recognized text.
func ExtractText(fullText string) Result {
	text := NormalizeText(fullText)
	lines := strings.Split(text, "\n")

	invoiceNumber, invoiceFound := ExtractInvoiceNumber(text, lines)
	totalAmount, totalFound := ExtractTotalAmount(text, lines)
	dateInfo, _ := ExtractDate(text, lines)

	return Result{
		InvoiceNumber: invoiceNumber,
		TotalAmount:   totalAmount,
		DateInfo:      dateInfo,
		FullText:      fullText,
		Status:        statusOf(invoiceFound, totalFound),
	}
}
