package heuristic

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"taskpilot/internal/task"
)

var (
	highSignalWords = []string{
		"urgent", "asap", "today", "eod", "finish", "submit", "deadline", "send",
		"present", "presentation", "deploy", "release", "fix", "bug", "issue",
		"client", "review", "call", "payment",
	}
	mediumSignalWords = []string{
		"tomorrow", "soon", "prepare", "draft", "plan", "update", "check",
		"follow up", "remind", "email", "schedule", "organize",
	}
	lowSignalWords = []string{
		"someday", "later", "idea", "optional", "research", "read", "explore", "brainstorm",
	}
)

type categoryRule struct {
	name     string
	keywords []string
}

// categoryRules are evaluated in order; the first rule with a matching
// keyword wins.
var categoryRules = []categoryRule{
	{"Meetings", []string{"meeting", "meet", "call", "sync", "standup", "catch up", "1:1", "one on one", "zoom", "webex"}},
	{"Follow-up", []string{"follow up", "email", "reply", "respond", "response", "ping", "check in"}},
	{"Admin", []string{"invoice", "expense", "timesheet", "payroll", "policy", "form", "contract", "document", "report", "travel", "booking", "book flight"}},
	{"Planning", []string{"plan", "strategy", "roadmap", "outline", "draft", "proposal", "budget"}},
	{"Development", []string{"code", "deploy", "fix", "bug", "issue", "feature", "review pr", "merge", "test", "qa", "build"}},
	{"Personal", []string{"lunch", "dinner", "doctor", "gym", "pick up", "family", "personal"}},
	{"Learning", []string{"learn", "course", "training", "tutorial", "research", "read", "study"}},
}

var (
	urgentPattern   = regexp.MustCompile(`\b(today|asap|urgent|eod)\b`)
	deferredPattern = regexp.MustCompile(`\b(next week|next month|later)\b`)
)

type signalRule struct {
	tag     string
	pattern *regexp.Regexp
}

var signalRules = []signalRule{
	{"Time-sensitive", regexp.MustCompile(`\b(today|asap|eod|urgent)\b`)},
	{"Has a due window", regexp.MustCompile(`\b(tomorrow|next week|next month|by (monday|tuesday|wednesday|thursday|friday))\b`)},
	{"Requires communication", regexp.MustCompile(`\b(call|email|follow up|reply|reach out)\b`)},
	{"Administrative task", regexp.MustCompile(`\b(invoice|expense|report|timesheet|contract)\b`)},
	{"Technical work", regexp.MustCompile(`\b(deploy|release|bug|issue|fix)\b`)},
}

// ToTitle trims and collapses whitespace and upper-cases the first rune.
func ToTitle(text string) string {
	collapsed := strings.Join(strings.Fields(text), " ")
	if collapsed == "" {
		return task.DefaultTitle
	}
	r, size := utf8.DecodeRuneInString(collapsed)
	return strings.ToUpper(string(r)) + collapsed[size:]
}

// InferPriority scores a lower-cased candidate.
//
// Keywords match as substrings, so "today" also fires the word-boundary
// urgency bonus and "presentation" scores for both "present" and
// "presentation". Scores of 4 and above are High, 1 and below Low.
func InferPriority(text string) task.Priority {
	score := 1
	for _, w := range highSignalWords {
		if strings.Contains(text, w) {
			score += 2
		}
	}
	for _, w := range mediumSignalWords {
		if strings.Contains(text, w) {
			score++
		}
	}
	for _, w := range lowSignalWords {
		if strings.Contains(text, w) {
			score -= 2
		}
	}
	if urgentPattern.MatchString(text) {
		score++
	}
	if deferredPattern.MatchString(text) {
		score--
	}

	switch {
	case score >= 4:
		return task.PriorityHigh
	case score <= 1:
		return task.PriorityLow
	default:
		return task.PriorityMedium
	}
}

// InferCategory returns the first category whose keywords appear in the
// lower-cased candidate, or the default category.
func InferCategory(text string) string {
	for _, rule := range categoryRules {
		for _, kw := range rule.keywords {
			if strings.Contains(text, kw) {
				return rule.name
			}
		}
	}
	return task.DefaultCategory
}

// ExtractSignals returns the annotation tags that apply to the lower-cased
// candidate, in a fixed order and without duplicates.
func ExtractSignals(text string) []string {
	signals := make([]string, 0, len(signalRules))
	for _, rule := range signalRules {
		if rule.pattern.MatchString(text) {
			signals = append(signals, rule.tag)
		}
	}
	return signals
}

// Classify builds a To Do task from one candidate string.
func Classify(candidate string) task.Task {
	normalized := strings.ToLower(candidate)
	return task.Task{
		Title:    ToTitle(candidate),
		Priority: InferPriority(normalized),
		Category: InferCategory(normalized),
		Status:   task.StatusToDo,
		Notes:    ExtractSignals(normalized),
	}
}
