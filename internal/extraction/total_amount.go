package extraction

import (
	"strings"

	"github.com/shopspring/decimal"
)

const trailingLineCount = 5

var (
	minDongAmount     = decimal.NewFromInt(1000)
	minTrailingAmount = decimal.NewFromInt(10000)
)

// ExtractTotalAmount finds the invoice total and returns it normalized by
// NormalizeAmount. The second return value is false when nothing was found,
// in which case the string is NotFoundTotalAmount.
func ExtractTotalAmount(fullText string, lines []string) (string, bool) {
	for _, re := range totalAmountPatterns {
		for _, m := range re.FindAllStringSubmatch(fullText, -1) {
			amt := NormalizeAmount(strings.TrimSpace(m[1]))
			if IsValidAmount(amt) {
				return amt, true
			}
		}
	}

	// "Tổng:" is trusted without validation.
	if m := totalColonLabel.FindStringSubmatch(fullText); m != nil {
		if amt := NormalizeAmount(m[1]); amt != "" {
			return amt, true
		}
	}

	return findTotalByKeywords(lines)
}

// findTotalByKeywords scores numbers by where they appear: on a line with a
// total keyword, right above a line mentioning "đồng", or near the bottom.
func findTotalByKeywords(lines []string) (string, bool) {
	var scorer CandidateScorer

	for _, line := range lines {
		if !containsAny(strings.ToLower(line), amountKeywords) {
			continue
		}
		if largest, ok := largestAmount(line); ok {
			scorer.Add(largest, weightKeywordLine)
		}
	}

	for i := 0; i < len(lines)-1; i++ {
		if !strings.Contains(strings.ToLower(lines[i+1]), "đồng") {
			continue
		}
		for _, amt := range validAmountsAbove(lines[i], minDongAmount) {
			scorer.Add(amt, weightBeforeDong)
		}
	}

	trailing := lines
	if len(lines) > trailingLineCount {
		trailing = lines[len(lines)-trailingLineCount:]
	}
	for _, line := range trailing {
		for _, amt := range validAmountsAbove(line, minTrailingAmount) {
			scorer.Add(amt, weightTrailing)
		}
	}

	best, ok := scorer.Best()
	if !ok {
		return NotFoundTotalAmount, false
	}
	return best.Value, true
}

// largestAmount returns the numerically largest number on the line. Ties keep
// the leftmost.
func largestAmount(line string) (string, bool) {
	var (
		best      string
		bestValue decimal.Decimal
		found     bool
	)
	for _, raw := range numericRun.FindAllString(line, -1) {
		amt := NormalizeAmount(raw)
		value, ok := amountValue(amt)
		if !ok {
			continue
		}
		if !found || value.GreaterThan(bestValue) {
			best, bestValue, found = amt, value, true
		}
	}
	return best, found
}

// validAmountsAbove returns every valid amount on the line strictly greater
// than floor, in order of appearance.
func validAmountsAbove(line string, floor decimal.Decimal) []string {
	var out []string
	for _, raw := range numericRun.FindAllString(line, -1) {
		amt := NormalizeAmount(raw)
		if !IsValidAmount(amt) {
			continue
		}
		if value, ok := amountValue(amt); ok && value.GreaterThan(floor) {
			out = append(out, amt)
		}
	}
	return out
}

func amountValue(amt string) (decimal.Decimal, bool) {
	if amt == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(amt)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}
