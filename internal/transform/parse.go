package transform

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

var (
	whitespace = regexp.MustCompile(`\s+`)
	nonNumeric = regexp.MustCompile(`[^0-9.,\-]`)
)

// ParseMoney reads a feed price such as "15.00 USD", "$20" or "R$ 10,00".
// When both separators appear the last one is the decimal separator. A lone
// separator followed by exactly three digits groups thousands when it repeats
// ("1.234.567") or is a comma ("1,234"); otherwise it is the decimal mark.
func ParseMoney(s string) (float64, bool) {
	s = nonNumeric.ReplaceAllString(s, "")
	if s == "" {
		return 0, false
	}
	lastComma := strings.LastIndex(s, ",")
	lastDot := strings.LastIndex(s, ".")
	switch {
	case lastComma >= 0 && lastDot >= 0 && lastComma > lastDot:
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	case lastComma >= 0 && lastDot >= 0:
		s = strings.ReplaceAll(s, ",", "")
	case lastComma >= 0:
		s = singleSeparator(s, ",", true)
	case lastDot >= 0:
		s = singleSeparator(s, ".", false)
	}
	return finite(s)
}

// singleSeparator normalizes a number using one separator kind. An empty
// result marks it ambiguous.
func singleSeparator(s, sep string, groupsOnce bool) string {
	parts := strings.Split(s, sep)
	if thousandGroups(parts) && (len(parts) > 2 || groupsOnce) {
		return strings.Join(parts, "")
	}
	if len(parts) > 2 {
		return ""
	}
	return strings.Join(parts, ".")
}

func thousandGroups(parts []string) bool {
	lead := strings.TrimPrefix(parts[0], "-")
	if len(parts) < 2 || lead == "" || len(lead) > 3 || lead[0] == '0' {
		return false
	}
	for _, group := range parts[1:] {
		if len(group) != 3 {
			return false
		}
	}
	return true
}

// ParseDecimal reads a plain number that may use a decimal comma.
func ParseDecimal(s string) (float64, bool) {
	return finite(strings.Replace(strings.TrimSpace(s), ",", ".", 1))
}

// finite parses s and rejects NaN and infinities, which JSON cannot carry.
func finite(s string) (float64, bool) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05Z0700",
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04Z0700",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseDate reads one side of a feed date range.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ISOInstant formats t the way the platform stores instants.
func ISOInstant(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z")
}

// Truncate cuts s to at most n runes.
func Truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}

// NormalizeSKU replaces each whitespace run with an underscore.
func NormalizeSKU(s string) string {
	return whitespace.ReplaceAllString(s, "_")
}
