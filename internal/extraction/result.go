package extraction

import "fmt"

// Sentinel values stored in a field when it could not be found in the text.
const (
	NotFoundInvoiceNumber = "Không tìm thấy số hóa đơn"
	NotFoundTotalAmount   = "Không tìm thấy tổng tiền"
	NotFoundDate          = "Không tìm thấy thông tin thời gian"
)

// Sentinel values stored in every field when the extraction itself failed.
const (
	FailedInvoiceNumber = "Không thể trích xuất số hóa đơn"
	FailedTotalAmount   = "Không thể trích xuất tổng tiền"
	FailedDate          = "Không thể trích xuất thông tin thời gian"
)

// Status summarizes how much of an invoice was recognized.
type Status string

const (
	// StatusSuccess means both the invoice number and the total were found.
	StatusSuccess Status = "success"
	// StatusPartial means exactly one of them was found.
	StatusPartial Status = "partial"
	// StatusFailed means neither was found or the OCR call failed.
	StatusFailed Status = "failed"
)

// Result holds the fields extracted from one invoice image. Fields that could
// not be extracted carry one of the sentinel strings above; Status is the
// reliable way to tell outcomes apart.
type Result struct {
	InvoiceNumber string `json:"invoice_number"`
	TotalAmount   string `json:"total_amount"`
	DateInfo      string `json:"date_info"`
	FullText      string `json:"full_text"`
	Status        Status `json:"status"`
}

// FailedResult builds the result returned when OCR or extraction fails.
func FailedResult(err error) Result {
	return Result{
		InvoiceNumber: FailedInvoiceNumber,
		TotalAmount:   FailedTotalAmount,
		DateInfo:      FailedDate,
		FullText:      fmt.Sprintf("Lỗi: %v", err),
		Status:        StatusFailed,
	}
}

func statusOf(invoiceFound, totalFound bool) Status {
	switch {
	case invoiceFound && totalFound:
		return StatusSuccess
	case invoiceFound || totalFound:
		return StatusPartial
	default:
		return StatusFailed
	}
}
