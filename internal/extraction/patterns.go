package extraction

import "regexp"

// token is the character class shared by invoice identifiers.
const token = `[A-Za-z0-9/-]+`

// invoiceNumberPatterns is tried in order; each pattern captures the candidate
// in group 1.
var invoiceNumberPatterns = []*regexp.Regexp{
	// Label followed by a long numeric identifier.
	regexp.MustCompile(`(?i)(?:Số|Số\s*HĐ|Số\s*HD|Số\s*hóa\s*đơn|Số\s*hoá\s*đơn|Mã\s*HĐ|Mã\s*HD)\s*[:#=.]?\s*(\d{6,})`),
	// Same labels (without a bare "Số") followed by any identifier.
	regexp.MustCompile(`(?i)(?:Số\s*HĐ|Số\s*HD|Số\s*hóa\s*đơn|Số\s*hoá\s*đơn|Mã\s*HĐ|Mã\s*HD)\s*[:#=.]?\s*(` + token + `)`),
	// Payment invoice heading with the number up to two lines below.
	regexp.MustCompile(`(?i)HÓA\s*ĐƠN\s*THANH\s*TOÁN\s*(?:.*\n){0,2}.*?(?:Số|No|Mã)\s*[:#=.]?\s*(` + token + `)`),
	regexp.MustCompile(`(?i)(?:HD|HĐ|H\.Đ|H\.D)[:#=.\s]*(` + token + `)`),
	regexp.MustCompile(`(?i)(?:Invoice\s*(?:Number|No\.?|ID)|Bill\s*No\.?)\s*[:#=]?\s*(` + token + `)`),
}

var (
	invoiceLabelLine = regexp.MustCompile(`(?i)(Số\s*HĐ|Số\s*HD|Số\s*hoá\s*đơn|Số\s*hóa\s*đơn)`)
	longDigitRun     = regexp.MustCompile(`\d{6,}`)
)

// addressKeywords mark text around a street address; numbers found next to
// them are house numbers, not invoice numbers.
var addressKeywords = []string{"đường", "phố", "quận", "huyện", "thành phố"}

// invoiceKeywords must appear close to a token for the advanced heuristic to
// accept it.
var invoiceKeywords = []string{"hd", "hđ", "số", "hoá đơn", "hóa đơn", "thanh toán", "bill"}

// amount captures digits with dots, commas and spaces between them.
const amount = `([\d., ]+)`

// totalAmountPatterns is scanned with find-all semantics, in order.
var totalAmountPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:Tổng\s*(?:cộng|tiền|thanh\s*toán)|T\.\s*CỘNG|Thành\s*tiền)\s*[:=]?\s*` + amount),
	regexp.MustCompile(`(?i)(?:TIỀN\s*MẶT|TIEN\s*MAT)\s*[:=]?\s*` + amount),
	regexp.MustCompile(`(?i)(?:TỔNG\s*TIỀN|TONG\s*TIEN)\s*[:=]?\s*` + amount),
	regexp.MustCompile(`(?i)(?:Total|Grand\s*Total|Amount|Sum|Total\s*Amount)\s*[:=]?\s*(?:VND|VNĐ|₫|đ)?\s*` + amount),
	regexp.MustCompile(`(?i)` + amount + `\s*(?:VND|VNĐ|₫|đ|đồng)`),
	regexp.MustCompile(`(?i)(?:SỐ\s*TIỀN|THANH\s*TOÁN)\s*[:=]?\s*` + amount),
}

var (
	totalColonLabel = regexp.MustCompile(`Tổng:\s*([\d.,]+)`)
	numericRun      = regexp.MustCompile(`[\d., ]+`)
)

// amountKeywords flag lines that likely carry the invoice total.
var amountKeywords = []string{
	"tổng cộng", "tổng tiền", "tiền mặt", "thanh toán", "tổng",
	"t.cong", "t.tiền", "thành tiền", "total",
}

// datePatterns return the whole match, not a capture group.
var datePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\d{1,2}[/.-]\d{1,2}[/.-]\d{2,4}`),
	regexp.MustCompile(`(?i)Ngày\s*\d{1,2}\s*tháng\s*\d{1,2}\s*năm\s*\d{2,4}`),
	regexp.MustCompile(`(?i)Ngày\s*:?\s*\d{1,2}[/.-]\d{1,2}[/.-]\d{2,4}`),
}

var anyDigits = regexp.MustCompile(`\d{1,2}`)
