package extraction

import "strings"

// ExtractDate returns the raw date text found in the invoice, or
// NotFoundDate and false.
func ExtractDate(fullText string, lines []string) (string, bool) {
	for _, re := range datePatterns {
		if m := re.FindString(fullText); m != "" {
			return m, true
		}
	}

	for _, line := range lines {
		if strings.Contains(strings.ToLower(line), "ngày") && anyDigits.MatchString(line) {
			return line, true
		}
	}

	return NotFoundDate, false
}
