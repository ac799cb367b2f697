package extraction

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// NormalizeText prepares OCR output for pattern matching: line endings become
// "\n" and Vietnamese diacritics are composed (NFC) so that "ố" typed as
// "o" + combining marks matches the same patterns as the precomposed rune.
func NormalizeText(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	return norm.NFC.String(s)
}

// NormalizeAmount canonicalizes a numeric substring into digits with at most
// one "." as decimal point. Thousands separators are removed.
//
// When both "." and "," occur, whichever appears last is the decimal separator.
// A lone separator kind is a decimal point only if it occurs once with at most
// two digits after it; otherwise every occurrence is a thousands separator.
func NormalizeAmount(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if (r >= '0' && r <= '9') || r == '.' || r == ',' {
			b.WriteRune(r)
		}
	}
	s := strings.TrimRight(b.String(), ".,")
	// A lone leading separator is a decimal point (",50" is .50). Leading
	// separators in front of a grouped number are noise.
	if rest := strings.TrimLeft(s, ".,"); strings.ContainsAny(rest, ".,") {
		s = rest
	}

	dot := strings.LastIndex(s, ".")
	comma := strings.LastIndex(s, ",")

	switch {
	case dot >= 0 && comma >= 0:
		if dot > comma {
			s = strings.ReplaceAll(s, ",", "")
		} else {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.ReplaceAll(s, ",", ".")
		}
		s = keepLastDot(s)
	case comma >= 0:
		s = resolveSeparator(s, ",")
	case dot >= 0:
		s = resolveSeparator(s, ".")
	}
	return s
}

// resolveSeparator handles strings that contain a single kind of separator.
func resolveSeparator(s, sep string) string {
	if strings.Count(s, sep) == 1 && len(s)-strings.Index(s, sep)-1 <= 2 {
		return strings.Replace(s, sep, ".", 1)
	}
	return strings.ReplaceAll(s, sep, "")
}

// keepLastDot drops every "." except the rightmost one.
func keepLastDot(s string) string {
	last := strings.LastIndex(s, ".")
	if last < 0 {
		return s
	}
	return strings.ReplaceAll(s[:last], ".", "") + s[last:]
}

// IsValidAmount reports whether s looks like a plausible invoice total: after
// removing separators it must be 2 to 10 ASCII digits.
func IsValidAmount(s string) bool {
	digits := strings.NewReplacer(".", "", ",", "").Replace(s)
	if len(digits) < 2 || len(digits) > 10 {
		return false
	}
	for i := 0; i < len(digits); i++ {
		if digits[i] < '0' || digits[i] > '9' {
			return false
		}
	}
	return true
}
