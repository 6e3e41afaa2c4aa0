package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"taskpilot/internal/apperror"
	"taskpilot/internal/task"
)

var numberPrefix = regexp.MustCompile(`^\d+[.)-]?\s*`)

// ExtractJSONObject decodes the first balanced {...} span in text. Models
// occasionally wrap JSON in prose or code fences; anything outside the span
// is ignored.
func ExtractJSONObject(text string) (map[string]any, error) {
	span, ok := firstObjectSpan(text)
	if !ok {
		return nil, fmt.Errorf("no JSON object in response")
	}
	var out map[string]any
	if err := json.Unmarshal([]byte(span), &out); err != nil {
		return nil, fmt.Errorf("invalid JSON object in response: %w", err)
	}
	return out, nil
}

// firstObjectSpan returns the text from the first '{' to its matching '}'.
// Braces inside JSON strings do not count.
func firstObjectSpan(text string) (string, bool) {
	start := strings.IndexByte(text, '{')
	if start == -1 {
		return "", false
	}
	depth := 0
	inString, escaped := false, false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1], true
			}
		}
	}
	return "", false
}

// ApplyNumbering strips any leading number from a status line and prefixes
// the 1-based position. Blank lines become a placeholder.
func ApplyNumbering(text string, index int) string {
	cleaned := strings.TrimSpace(text)
	if cleaned == "" {
		return fmt.Sprintf("%d. Status pending.", index+1)
	}
	cleaned = strings.TrimSpace(numberPrefix.ReplaceAllString(cleaned, ""))
	return fmt.Sprintf("%d. %s", index+1, cleaned)
}

func organizeNotes(ctx context.Context, c completer, notes string, groupByCategory bool) ([]task.Task, error) {
	raw, err := c.complete(ctx, organizeSystemPrompt, buildOrganizePrompt(notes, groupByCategory), organizeTemperature)
	if err != nil {
		return nil, err
	}
	data, err := ExtractJSONObject(raw)
	if err != nil {
		return nil, apperror.Provider("organize", fmt.Errorf("%s returned an unexpected response: %w", c.name(), err))
	}
	entries, ok := data["tasks"].([]any)
	if !ok {
		return nil, apperror.ProviderMessage("organize", "%s returned an unexpected response.", c.name())
	}

	tasks := make([]task.Task, 0, len(entries))
	for _, entry := range entries {
		fields, ok := entry.(map[string]any)
		if !ok {
			fields = map[string]any{}
		}
		tasks = append(tasks, task.FromFields(fields))
	}
	return tasks, nil
}

func suggestTitle(ctx context.Context, c completer, title, details string) (string, error) {
	raw, err := c.complete(ctx, titleSystemPrompt, buildTitlePrompt(title, details), titleTemperature)
	if err != nil {
		return "", err
	}
	data, err := ExtractJSONObject(raw)
	if err != nil {
		return "", apperror.Provider("title", fmt.Errorf("%s did not return a title: %w", c.name(), err))
	}
	generated, _ := data["title"].(string)
	if strings.TrimSpace(generated) == "" {
		return "", apperror.ProviderMessage("title", "%s did not return a title.", c.name())
	}
	return strings.TrimSpace(generated), nil
}

func statusReport(ctx context.Context, c completer, completed, inProgress string) (StatusSummary, error) {
	raw, err := c.complete(ctx, statusSystemPrompt, buildStatusPrompt(completed, inProgress), statusTemperature)
	if err != nil {
		return StatusSummary{}, err
	}
	data, err := ExtractJSONObject(raw)
	if err != nil {
		return StatusSummary{}, apperror.Provider("status_report", fmt.Errorf("%s did not return a status report: %w", c.name(), err))
	}
	return StatusSummary{
		Completed:  joinSection(data["completed"]),
		InProgress: joinSection(data["inProgress"]),
	}, nil
}

func taskStatuses(ctx context.Context, c completer, items []task.StatusItem) ([]string, error) {
	if len(items) == 0 {
		return nil, apperror.ProviderMessage("task_status", "No tasks provided for status generation.")
	}
	raw, err := c.complete(ctx, taskStatusSystemPrompt, buildTaskStatusPrompt(items), statusTemperature)
	if err != nil {
		return nil, err
	}
	data, err := ExtractJSONObject(raw)
	if err != nil {
		return nil, apperror.Provider("task_status", fmt.Errorf("%s did not return task updates: %w", c.name(), err))
	}
	entries, ok := data["updates"].([]any)
	if !ok {
		return nil, apperror.ProviderMessage("task_status", "%s did not return task updates.", c.name())
	}
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		lines = append(lines, stringify(e))
	}
	return lines, nil
}

// joinSection accepts either a list of lines or a single string.
func joinSection(v any) string {
	switch section := v.(type) {
	case []any:
		lines := make([]string, 0, len(section))
		for _, line := range section {
			lines = append(lines, stringify(line))
		}
		return strings.Join(lines, "\n")
	default:
		return stringify(section)
	}
}

func stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	default:
		return fmt.Sprint(val)
	}
}
