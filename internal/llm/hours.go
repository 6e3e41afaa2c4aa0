package llm

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"unicode"
)

// FormatHours renders a loosely typed hours value as "{n}h".
//
// Positive numbers are formatted as an integer or with one decimal. Strings
// containing letters ("2 hours") pass through trimmed; numeric strings are
// formatted like numbers. Anything else is empty.
func FormatHours(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case float64:
		return formatHoursNumber(val)
	case float32:
		return formatHoursNumber(float64(val))
	case int:
		return formatHoursNumber(float64(val))
	case int64:
		return formatHoursNumber(float64(val))
	case json.Number:
		f, err := val.Float64()
		if err != nil {
			return ""
		}
		return formatHoursNumber(f)
	case string:
		return formatHoursString(val)
	default:
		return ""
	}
}

func formatHoursNumber(f float64) string {
	if math.IsNaN(f) || math.IsInf(f, 0) || f <= 0 {
		return ""
	}
	return formatDecimal(f) + "h"
}

func formatHoursString(s string) string {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return ""
	}

	digits := strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '.' {
			return r
		}
		return -1
	}, trimmed)
	n, err := strconv.ParseFloat(digits, 64)
	if err != nil || n <= 0 {
		return trimmed
	}
	if strings.IndexFunc(trimmed, isASCIILetter) >= 0 {
		return trimmed
	}
	return formatDecimal(n) + "h"
}

func formatDecimal(f float64) string {
	if f == math.Trunc(f) {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return strconv.FormatFloat(math.Round(f*10)/10, 'f', 1, 64)
}

func isASCIILetter(r rune) bool {
	return r < unicode.MaxASCII && unicode.IsLetter(r)
}
