package organizer

import (
	"context"
	"strings"

	"taskpilot/internal/apperror"
	"taskpilot/internal/config"
	"taskpilot/internal/heuristic"
	"taskpilot/internal/llm"
	"taskpilot/internal/logging"
	"taskpilot/internal/task"
)

// TitleRequest asks for a short title for a task.
type TitleRequest struct {
	Title   string `json:"title"`
	Details string `json:"details"`
}

// TitleResult is a suggested title.
type TitleResult struct {
	Title    string `json:"title"`
	Provider string `json:"provider"`
	Warning  string `json:"warning,omitempty"`
}

// StatusReportRequest lists the tasks a team status report covers.
type StatusReportRequest struct {
	Completed  []task.ReportItem `json:"completed"`
	InProgress []task.ReportItem `json:"inProgress"`
}

// StatusReport is a two-section team status report.
type StatusReport struct {
	Completed  string `json:"completed"`
	InProgress string `json:"inProgress"`
	Provider   string `json:"provider"`
	Warning    string `json:"warning,omitempty"`
}

// TaskStatusRequest carries loosely typed task records, as received from a
// client: hours may be numbers or strings, and the description may arrive
// as "details".
type TaskStatusRequest struct {
	Tasks []map[string]any `json:"tasks"`
}

// TaskStatusResult holds one numbered status line per task.
type TaskStatusResult struct {
	Updates  []string `json:"updates"`
	Provider string   `json:"provider"`
	Model    string   `json:"model,omitempty"`
	Warning  string   `json:"warning,omitempty"`
}

// SuggestTitle proposes a short title from the existing title and details.
func (o *Orchestrator) SuggestTitle(ctx context.Context, req TitleRequest) (*TitleResult, error) {
	provider := o.Provider()
	if provider == config.ProviderMock {
		return &TitleResult{
			Title:    heuristic.SuggestTitle(req.Title, req.Details),
			Provider: heuristic.ProviderLabel,
		}, nil
	}

	backend, err := o.backend(ctx, provider)
	if isConfiguration(err) {
		return nil, err
	}
	var title string
	if err == nil {
		title, err = backend.SuggestTitle(ctx, req.Title, req.Details)
	}
	if err != nil {
		logging.OrganizerWarn("Title generation via %s failed: %v", provider, err)
		return &TitleResult{
			Title:    heuristic.SuggestTitle(req.Title, req.Details),
			Provider: heuristic.ProviderLabel,
			Warning:  err.Error(),
		}, nil
	}
	return &TitleResult{Title: title, Provider: llm.Label(provider)}, nil
}

// StatusReport summarizes completed and in-progress work.
func (o *Orchestrator) StatusReport(ctx context.Context, req StatusReportRequest) (*StatusReport, error) {
	completed := sanitizeReportItems(req.Completed)
	inProgress := sanitizeReportItems(req.InProgress)

	heuristicReport := func(warning string) *StatusReport {
		done, active := heuristic.StatusReport(completed, inProgress)
		return &StatusReport{
			Completed:  done,
			InProgress: active,
			Provider:   heuristic.ProviderLabel,
			Warning:    warning,
		}
	}

	provider := o.Provider()
	if provider == config.ProviderMock {
		return heuristicReport(""), nil
	}

	backend, err := o.backend(ctx, provider)
	if isConfiguration(err) {
		return nil, err
	}
	var summary llm.StatusSummary
	if err == nil {
		summary, err = backend.StatusReport(ctx, llm.ReportLines(completed), llm.ReportLines(inProgress))
	}
	if err != nil {
		logging.OrganizerWarn("Status generation via %s failed: %v", provider, err)
		return heuristicReport(err.Error()), nil
	}
	return &StatusReport{
		Completed:  summary.Completed,
		InProgress: summary.InProgress,
		Provider:   llm.Label(provider),
	}, nil
}

// TaskStatuses writes one status line per task. At most the configured
// number of tasks (default 50) are considered.
func (o *Orchestrator) TaskStatuses(ctx context.Context, req TaskStatusRequest) (*TaskStatusResult, error) {
	items := SanitizeStatusItems(req.Tasks, o.maxStatusTasks())
	if len(items) == 0 {
		return nil, apperror.Validation("task_status", "Provide at least one task to generate a status update.")
	}

	provider := o.Provider()
	if provider == config.ProviderMock {
		return &TaskStatusResult{
			Updates:  heuristic.TaskStatuses(items),
			Provider: heuristic.ProviderLabel,
		}, nil
	}

	backend, err := o.backend(ctx, provider)
	if isConfiguration(err) {
		return nil, err
	}
	var lines []string
	if err == nil {
		lines, err = backend.TaskStatuses(ctx, items)
		if err == nil && len(lines) == 0 {
			err = apperror.ProviderMessage("task_status", "Provider did not return any status updates.")
		}
	}
	if err != nil {
		logging.OrganizerWarn("Task status generation via %s failed: %v", provider, err)
		return &TaskStatusResult{
			Updates:  heuristic.TaskStatuses(items),
			Provider: heuristic.ProviderLabel,
			Warning:  err.Error(),
		}, nil
	}

	updates := make([]string, len(lines))
	for i, line := range lines {
		updates[i] = llm.ApplyNumbering(line, i)
	}
	return &TaskStatusResult{
		Updates:  updates,
		Provider: llm.Label(provider),
		Model:    backend.Model(),
	}, nil
}

func sanitizeReportItems(items []task.ReportItem) []task.ReportItem {
	out := make([]task.ReportItem, 0, len(items))
	for _, it := range items {
		out = append(out, task.ReportItem{
			Title:    task.SanitizeTitle(it.Title),
			Details:  task.SanitizeText(it.Details),
			Comments: task.SanitizeText(it.Comments),
		})
	}
	return out
}

// SanitizeStatusItems converts loose task records into status items,
// keeping at most limit of them. The description comes from "description"
// or else "details"; hours from "hoursSpent", "timeLog" or "hours", in
// that order.
func SanitizeStatusItems(records []map[string]any, limit int) []task.StatusItem {
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	items := make([]task.StatusItem, 0, len(records))
	for _, rec := range records {
		title, _ := rec["title"].(string)
		description, _ := firstPresent(rec, "description", "details").(string)
		items = append(items, task.StatusItem{
			Title:       task.SanitizeTitle(title),
			Description: strings.TrimSpace(description),
			HoursSpent:  llm.FormatHours(firstPresent(rec, "hoursSpent", "timeLog", "hours")),
		})
	}
	return items
}

// firstPresent returns the first non-nil value among keys.
func firstPresent(rec map[string]any, keys ...string) any {
	for _, k := range keys {
		if v, ok := rec[k]; ok && v != nil {
			return v
		}
	}
	return nil
}
