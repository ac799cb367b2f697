package invoice

import (
	"time"

	"github.com/zombor/invoice-extractor/internal/extraction"
)

// Record is one processed invoice image kept in the history.
type Record struct {
	ID               string            `json:"id"`
	OriginalFilename string            `json:"original_filename"`
	Filename         string            `json:"filename"`
	ContentType      string            `json:"content_type"`
	InvoiceNumber    string            `json:"invoice_number"`
	TotalAmount      string            `json:"total_amount"`
	DateInfo         string            `json:"date_info"`
	FullText         string            `json:"full_text"`
	Status           extraction.Status `json:"status"`
	CreatedAt        time.Time         `json:"created_at"`
}

// Result returns the extraction fields of the record.
func (r *Record) Result() extraction.Result {
	return extraction.Result{
		InvoiceNumber: r.InvoiceNumber,
		TotalAmount:   r.TotalAmount,
		DateInfo:      r.DateInfo,
		FullText:      r.FullText,
		Status:        r.Status,
	}
}

// Stats counts history records by extraction status.
type Stats struct {
	Total   int `json:"total"`
	Success int `json:"success"`
	Partial int `json:"partial"`
	Failed  int `json:"failed"`
}
