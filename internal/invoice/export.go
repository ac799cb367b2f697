package invoice

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/zombor/invoice-extractor/internal/extraction"
)

const historySheet = "Invoices"

var historyHeaders = []string{
	"id", "filename", "invoice_number", "total_amount", "date_info", "status", "created_at",
}

// WriteResultCSV writes the invoice number and total of a single result as
// field,value rows.
func WriteResultCSV(w io.Writer, res extraction.Result) error {
	cw := csv.NewWriter(w)
	rows := [][]string{
		{"field", "value"},
		{"invoice_number", res.InvoiceNumber},
		{"total_amount", res.TotalAmount},
	}
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("writing csv: %w", err)
	}
	return nil
}

func historyRow(r *Record) []string {
	return []string{
		r.ID,
		r.OriginalFilename,
		r.InvoiceNumber,
		r.TotalAmount,
		r.DateInfo,
		string(r.Status),
		r.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// historyColWidths sizes the columns of the history sheet.
var historyColWidths = []struct {
	start, end string
	width      float64
}{
	{"A", "A", 38},
	{"B", "B", 30},
	{"C", "F", 20},
	{"G", "G", 22},
}

// ResultCSV returns the single-result CSV of a stored record.
func (s *Service) ResultCSV(id string) ([]byte, error) {
	record, err := s.GetRecord(id)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := WriteResultCSV(&buf, record.Result()); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// HistoryCSV returns the whole history as CSV, newest first.
func (s *Service) HistoryCSV() ([]byte, error) {
	records, err := s.ListRecords()
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)
	if err := cw.Write(historyHeaders); err != nil {
		return nil, fmt.Errorf("writing csv header: %w", err)
	}
	for _, r := range records {
		if err := cw.Write(historyRow(r)); err != nil {
			return nil, fmt.Errorf("writing csv row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return nil, fmt.Errorf("flushing csv: %w", err)
	}
	return buf.Bytes(), nil
}

// HistoryXLSX returns the whole history as an XLSX workbook, newest first.
func (s *Service) HistoryXLSX() ([]byte, error) {
	records, err := s.ListRecords()
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", historySheet); err != nil {
		return nil, fmt.Errorf("naming sheet: %w", err)
	}

	write := func(col, row int, v any) error {
		cell, err := excelize.CoordinatesToCellName(col, row)
		if err != nil {
			return err
		}
		return f.SetCellValue(historySheet, cell, v)
	}

	for i, h := range historyHeaders {
		if err := write(i+1, 1, h); err != nil {
			return nil, fmt.Errorf("writing header: %w", err)
		}
	}
	for i, r := range records {
		for j, v := range historyRow(r) {
			if err := write(j+1, i+2, v); err != nil {
				return nil, fmt.Errorf("writing row %d: %w", i+2, err)
			}
		}
	}

	for _, w := range historyColWidths {
		if err := f.SetColWidth(historySheet, w.start, w.end, w.width); err != nil {
			return nil, fmt.Errorf("setting width of columns %s:%s: %w", w.start, w.end, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	slog.Info("History exported", "format", "xlsx", "rows", len(records))
	return buf.Bytes(), nil
}
