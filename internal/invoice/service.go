package invoice

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/zombor/invoice-extractor/internal/extraction"
	"github.com/zombor/invoice-extractor/internal/scanning"
)

// ErrUnsupportedType is returned for uploads the scanners cannot read.
var ErrUnsupportedType = errors.New("unsupported file type")

// Extractor runs OCR and field extraction on an image.
type Extractor interface {
	ExtractBytes(data []byte, contentType string) extraction.Result
}

// IDGenerator generates unique record IDs
type IDGenerator interface {
	Generate() string
}

// TimeSource provides the current time
type TimeSource interface {
	Now() time.Time
}

type uuidGenerator struct{}

func (uuidGenerator) Generate() string {
	return uuid.NewString()
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now()
}

// Service handles invoice processing and history
type Service struct {
	db          DB
	extractor   Extractor
	storage     Storage
	idGenerator IDGenerator
	timeSource  TimeSource
}

// NewService creates a Service with UUID record IDs and the system clock
func NewService(db DB, extractor Extractor, storage Storage) *Service {
	return NewServiceWithDeps(db, extractor, storage, uuidGenerator{}, systemClock{})
}

// NewServiceWithDeps creates a Service with custom dependencies for testing
func NewServiceWithDeps(db DB, extractor Extractor, storage Storage, idGen IDGenerator, timeSrc TimeSource) *Service {
	return &Service{
		db:          db,
		extractor:   extractor,
		storage:     storage,
		idGenerator: idGen,
		timeSource:  timeSrc,
	}
}

var (
	unsafeFilenameChars = regexp.MustCompile(`[^\p{L}\p{N}\s\-_]`)
	repeatedSpaces      = regexp.MustCompile(`\s+`)
)

const maxFilenameBase = 50

// sanitizeFilename strips characters that are awkward on disk and shortens
// long phone-generated names. Vietnamese letters are kept.
func sanitizeFilename(filename string) string {
	filename = filepath.Base(filename)
	ext := strings.ToLower(filepath.Ext(filename))
	base := strings.TrimSuffix(filename, filepath.Ext(filename))

	base = unsafeFilenameChars.ReplaceAllString(base, "")
	base = repeatedSpaces.ReplaceAllString(base, " ")
	base = strings.TrimSpace(base)

	if runes := []rune(base); len(runes) > maxFilenameBase {
		base = string(runes[:maxFilenameBase])
	}
	if base == "" {
		base = "invoice"
	}
	return base + ext
}

// resolveContentType falls back to the file extension when the client sent
// no usable content type.
func resolveContentType(filename, contentType string) string {
	contentType = strings.ToLower(strings.TrimSpace(contentType))
	if contentType == "" || contentType == "application/octet-stream" {
		return scanning.ContentTypeFor(filename)
	}
	return contentType
}

// ProcessInvoice stores an uploaded image, extracts its fields and records
// the outcome. Extraction failures are recorded with StatusFailed, not
// returned as errors.
func (s *Service) ProcessInvoice(filename string, data []byte, contentType string) (*Record, error) {
	if len(data) == 0 {
		return nil, errors.New("empty file")
	}
	contentType = resolveContentType(filename, contentType)
	if !scanning.IsSupported(contentType) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, contentType)
	}

	id := s.idGenerator.Generate()
	now := s.timeSource.Now()

	savedName, err := s.storage.Save(fmt.Sprintf("%s_%s", id, sanitizeFilename(filename)), data)
	if err != nil {
		return nil, fmt.Errorf("saving file: %w", err)
	}

	res := s.extractor.ExtractBytes(data, contentType)
	slog.Info("Invoice processed",
		"id", id,
		"filename", filename,
		"status", res.Status,
		"invoice_number", res.InvoiceNumber,
		"total_amount", res.TotalAmount,
	)

	record := &Record{
		ID:               id,
		OriginalFilename: filename,
		Filename:         savedName,
		ContentType:      contentType,
		InvoiceNumber:    res.InvoiceNumber,
		TotalAmount:      res.TotalAmount,
		DateInfo:         res.DateInfo,
		FullText:         res.FullText,
		Status:           res.Status,
		CreatedAt:        now,
	}

	if err := s.db.SaveRecord(record); err != nil {
		if delErr := s.storage.Delete(savedName); delErr != nil {
			slog.Warn("Failed to delete file", "filename", savedName, "error", delErr)
		}
		return nil, fmt.Errorf("saving record to database: %w", err)
	}

	return record, nil
}

// GetRecord retrieves a record by ID
func (s *Service) GetRecord(id string) (*Record, error) {
	record, err := s.db.GetRecord(id)
	if err != nil {
		return nil, fmt.Errorf("getting record: %w", err)
	}
	return record, nil
}

// ListRecords returns the history, newest first
func (s *Service) ListRecords() ([]*Record, error) {
	records, err := s.db.ListRecords()
	if err != nil {
		return nil, fmt.Errorf("listing records: %w", err)
	}
	return records, nil
}

// DeleteRecord removes a record and its stored image
func (s *Service) DeleteRecord(id string) error {
	record, err := s.db.GetRecord(id)
	if err != nil {
		return fmt.Errorf("getting record for deletion: %w", err)
	}

	if err := s.storage.Delete(record.Filename); err != nil {
		slog.Warn("Failed to delete file", "filename", record.Filename, "error", err)
	}

	if err := s.db.DeleteRecord(id); err != nil {
		return fmt.Errorf("deleting record from database: %w", err)
	}
	return nil
}

// ClearHistory removes every record and stored image. It returns the number
// of records removed.
func (s *Service) ClearHistory() (int, error) {
	records, err := s.db.ListRecords()
	if err != nil {
		return 0, fmt.Errorf("listing records: %w", err)
	}

	for _, record := range records {
		if err := s.storage.Delete(record.Filename); err != nil {
			slog.Warn("Failed to delete file", "filename", record.Filename, "error", err)
		}
	}

	if err := s.db.ClearRecords(); err != nil {
		return 0, fmt.Errorf("clearing records: %w", err)
	}
	return len(records), nil
}

// GetRecordFile returns the stored image and its content type
func (s *Service) GetRecordFile(id string) ([]byte, string, error) {
	record, err := s.db.GetRecord(id)
	if err != nil {
		return nil, "", fmt.Errorf("getting record: %w", err)
	}

	data, err := s.storage.Get(record.Filename)
	if err != nil {
		return nil, "", fmt.Errorf("getting record file: %w", err)
	}
	return data, record.ContentType, nil
}

// Stats counts the history by status
func (s *Service) Stats() (Stats, error) {
	records, err := s.db.ListRecords()
	if err != nil {
		return Stats{}, fmt.Errorf("listing records: %w", err)
	}

	var stats Stats
	for _, record := range records {
		stats.Total++
		switch record.Status {
		case extraction.StatusSuccess:
			stats.Success++
		case extraction.StatusPartial:
			stats.Partial++
		default:
			stats.Failed++
		}
	}
	return stats, nil
}
