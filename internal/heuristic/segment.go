// Package heuristic turns free-form notes into tasks without any remote
// model. Everything here is pure and deterministic; it is the fallback the
// organizer relies on when a provider fails.
package heuristic

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

var bulletReplacer = strings.NewReplacer(
	"\u2022", "\n",
	"\u2023", "\n",
	"\u25CF", "\n",
)

// Segment splits raw notes into candidate task strings.
//
// Lines are split further at commas and semicolons that introduce a new
// clause. Leading list markers ("-", "*", "1.", "2)", "a)") are stripped and
// whitespace is collapsed. Segmenting the newline-joined output again yields
// the same slice.
func Segment(raw string) []string {
	text := strings.ReplaceAll(raw, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = bulletReplacer.Replace(text)

	var out []string
	for _, line := range strings.Split(text, "\n") {
		for _, clause := range splitClauses(line) {
			if cleaned := cleanCandidate(clause); cleaned != "" {
				out = append(out, cleaned)
			}
		}
	}
	return out
}

// splitClauses cuts a single line at every comma or semicolon followed
// (after optional whitespace) by a letter or digit. A separator with a digit
// directly on both sides is part of a number and stays.
func splitClauses(line string) []string {
	runes := []rune(line)
	var clauses []string
	start := 0
	for i, r := range runes {
		if r != ',' && r != ';' {
			continue
		}
		if i > 0 && i+1 < len(runes) && unicode.IsDigit(runes[i-1]) && unicode.IsDigit(runes[i+1]) {
			continue
		}
		j := i + 1
		for j < len(runes) && unicode.IsSpace(runes[j]) {
			j++
		}
		if j < len(runes) && (unicode.IsLetter(runes[j]) || unicode.IsDigit(runes[j])) {
			clauses = append(clauses, string(runes[start:i]))
			start = i + 1
		}
	}
	return append(clauses, string(runes[start:]))
}

func cleanCandidate(s string) string {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	for {
		n := markerLen(s)
		if n == 0 {
			break
		}
		s = strings.TrimLeftFunc(s[n:], unicode.IsSpace)
	}
	return strings.Join(strings.Fields(s), " ")
}

// markerLen returns the byte length of a list marker at the start of s, or 0.
// A marker only counts when whitespace follows it.
func markerLen(s string) int {
	n := 0
	switch {
	case s == "":
		return 0
	case s[0] == '-' || s[0] == '*':
		for n < len(s) && (s[n] == '-' || s[n] == '*') {
			n++
		}
	case isASCIIDigit(s[0]):
		for n < len(s) && isASCIIDigit(s[n]) {
			n++
		}
		if n >= len(s) || (s[n] != '.' && s[n] != ')') {
			return 0
		}
		n++
	case s[0] >= 'a' && s[0] <= 'z':
		if len(s) < 2 || s[1] != ')' {
			return 0
		}
		n = 2
	default:
		return 0
	}

	if n >= len(s) {
		return 0
	}
	if r, _ := utf8.DecodeRuneInString(s[n:]); !unicode.IsSpace(r) {
		return 0
	}
	return n
}

func isASCIIDigit(b byte) bool {
	return b >= '0' && b <= '9'
}
