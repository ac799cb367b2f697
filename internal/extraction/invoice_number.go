package extraction

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	addressWindow = 50
	keywordWindow = 20
	topLineCount  = 10
)

// ExtractInvoiceNumber finds the invoice number in OCR text. The second return
// value is false when nothing was found, in which case the string is
// NotFoundInvoiceNumber.
func ExtractInvoiceNumber(fullText string, lines []string) (string, bool) {
	for _, re := range invoiceNumberPatterns {
		m := re.FindStringSubmatch(fullText)
		if m == nil {
			continue
		}
		candidate := strings.TrimSpace(m[1])
		nearby := strings.ToLower(textAround(fullText, candidate, addressWindow))
		if containsAny(nearby, addressKeywords) {
			continue
		}
		return candidate, true
	}

	for _, line := range lines {
		if !invoiceLabelLine.MatchString(line) {
			continue
		}
		if run := longDigitRun.FindString(line); run != "" {
			return run, true
		}
	}

	return findInvoiceNumberNearKeywords(fullText, lines)
}

// findInvoiceNumberNearKeywords accepts the first short token from the top of
// the invoice that sits close to an invoice-related word.
func findInvoiceNumberNearKeywords(fullText string, lines []string) (string, bool) {
	top := strings.Join(topLines(lines), "\n")
	for _, tok := range shortTokens(fullText) {
		if !strings.Contains(top, tok) {
			continue
		}
		nearby := strings.ToLower(textAround(top, tok, keywordWindow))
		if containsAny(nearby, invoiceKeywords) {
			return tok, true
		}
	}
	return NotFoundInvoiceNumber, false
}

// shortTokens returns identifier-like tokens of 3 to 10 characters made of
// ASCII letters, digits, "/" and "-". Token edges must be word boundaries in
// the Unicode sense, so "phi" is not a token of "phiếu".
func shortTokens(text string) []string {
	const minLen, maxLen = 3, 10
	runes := []rune(text)
	var tokens []string
	for i := 0; i < len(runes); {
		if !wordBoundary(runes, i) {
			i++
			continue
		}
		run := 0
		for i+run < len(runes) && run < maxLen && isTokenRune(runes[i+run]) {
			run++
		}
		matched := 0
		for l := run; l >= minLen; l-- {
			if wordBoundary(runes, i+l) {
				matched = l
				break
			}
		}
		if matched == 0 {
			i++
			continue
		}
		tokens = append(tokens, string(runes[i:i+matched]))
		i += matched
	}
	return tokens
}

func isTokenRune(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '/' || r == '-'
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// wordBoundary reports whether position i sits between a word rune and a
// non-word rune. Text edges count as non-word.
func wordBoundary(runes []rune, i int) bool {
	before := i > 0 && isWordRune(runes[i-1])
	after := i < len(runes) && isWordRune(runes[i])
	return before != after
}

func topLines(lines []string) []string {
	if len(lines) > topLineCount {
		return lines[:topLineCount]
	}
	return lines
}

// textAround returns up to window runes on each side of the first occurrence
// of target in text, or "" when target does not occur.
func textAround(text, target string, window int) string {
	pos := strings.Index(text, target)
	if pos < 0 {
		return ""
	}
	runes := []rune(text)
	start := utf8.RuneCountInString(text[:pos])
	end := start + utf8.RuneCountInString(target)
	return string(runes[max(0, start-window):min(len(runes), end+window)])
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
