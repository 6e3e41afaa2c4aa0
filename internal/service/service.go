// Package service wires the organizer, the planner and a task repository
// into the operations a client calls: fetch, organize and manual edits.
package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"taskpilot/internal/apperror"
	"taskpilot/internal/llm"
	"taskpilot/internal/organizer"
	"taskpilot/internal/planner"
	"taskpilot/internal/task"
)

const (
	databaseProvider = "database"
	databaseLabel    = "Database"
)

// Repository stores each owner's tasks and grouping preference.
type Repository interface {
	List(ctx context.Context, owner string) ([]task.Task, error)
	// ReplaceAll atomically swaps the owner's tasks for tasks.
	ReplaceAll(ctx context.Context, owner string, tasks []task.Task) ([]task.Task, error)
	Create(ctx context.Context, owner string, t task.Task) (task.Task, error)
	Update(ctx context.Context, owner, id string, p task.Patch) (task.Task, error)
	Delete(ctx context.Context, owner, id string) error
	DeleteAll(ctx context.Context, owner string) error
	GroupPreference(ctx context.Context, owner string) (bool, error)
	SetGroupPreference(ctx context.Context, owner string, grouped bool) error
}

// Organizer turns notes into tasks.
type Organizer interface {
	Organize(ctx context.Context, notes string, groupByCategory bool) (*task.Organization, error)
}

// OrganizeRequest is the body of an organize call. Notes is nil when the
// field was absent; GroupByCategory accepts anything ParseGroupFlag does.
type OrganizeRequest struct {
	Notes           *string `json:"notes"`
	GroupByCategory any     `json:"groupByCategory,omitempty"`
}

// Response is what every task listing operation returns.
type Response struct {
	Tasks         []task.Task      `json:"tasks"`
	Grouped       bool             `json:"grouped"`
	Provider      string           `json:"provider"`
	ProviderLabel string           `json:"providerLabel"`
	Model         string           `json:"model,omitempty"`
	Warning       string           `json:"warning,omitempty"`
	Stats         planner.Stats    `json:"stats"`
	Schedule      planner.Schedule `json:"schedule"`
	Timestamp     string           `json:"timestamp"`
}

// Service implements the task operations for one repository.
type Service struct {
	repo      Repository
	organizer Organizer
	now       func() time.Time
}

// New creates a Service.
func New(repo Repository, org Organizer) *Service {
	return &Service{repo: repo, organizer: org, now: time.Now}
}

// Fetch returns the owner's stored tasks.
func (s *Service) Fetch(ctx context.Context, owner string) (*Response, error) {
	tasks, err := s.repo.List(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("fetch tasks: %w", err)
	}
	grouped, err := s.repo.GroupPreference(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("fetch tasks: %w", err)
	}
	return BuildResponse(task.Organization{
		Grouped:       grouped,
		Provider:      databaseProvider,
		ProviderLabel: databaseLabel,
	}, tasks, s.now()), nil
}

// Organize converts notes into tasks, replaces the owner's stored tasks
// with them and remembers the grouping choice.
func (s *Service) Organize(ctx context.Context, owner string, req OrganizeRequest) (*Response, error) {
	if req.Notes == nil {
		return nil, apperror.Validation("organize", `The "notes" field is required.`)
	}

	stored, err := s.repo.GroupPreference(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("organize: %w", err)
	}
	grouped := ParseGroupFlag(req.GroupByCategory, stored)

	org, err := s.organizer.Organize(ctx, *req.Notes, grouped)
	if err != nil {
		return nil, err
	}

	persisted, err := s.repo.ReplaceAll(ctx, owner, org.Tasks)
	if err != nil {
		return nil, fmt.Errorf("organize: %w", err)
	}
	if err := s.repo.SetGroupPreference(ctx, owner, grouped); err != nil {
		return nil, fmt.Errorf("organize: %w", err)
	}
	return BuildResponse(*org, persisted, s.now()), nil
}

// CreateTask stores one manually entered task.
func (s *Service) CreateTask(ctx context.Context, owner string, t task.Task) (task.Task, error) {
	return s.repo.Create(ctx, owner, task.Sanitize(t))
}

// UpdateTask applies a manual edit.
func (s *Service) UpdateTask(ctx context.Context, owner, id string, p task.Patch) (task.Task, error) {
	clean, err := task.SanitizePatch(p)
	if err != nil {
		return task.Task{}, err
	}
	return s.repo.Update(ctx, owner, id, clean)
}

// DeleteTask removes one task.
func (s *Service) DeleteTask(ctx context.Context, owner, id string) error {
	return s.repo.Delete(ctx, owner, id)
}

// ClearTasks removes all of the owner's tasks.
func (s *Service) ClearTasks(ctx context.Context, owner string) error {
	return s.repo.DeleteAll(ctx, owner)
}

// BuildResponse combines an organization's metadata with the stored tasks,
// their statistics and their schedule.
func BuildResponse(org task.Organization, tasks []task.Task, now time.Time) *Response {
	if tasks == nil {
		tasks = []task.Task{}
	}
	label := org.ProviderLabel
	if label == "" {
		label = llm.Label(org.Provider)
	}
	return &Response{
		Tasks:         tasks,
		Grouped:       org.Grouped,
		Provider:      org.Provider,
		ProviderLabel: label,
		Model:         org.Model,
		Warning:       org.Warning,
		Stats:         planner.BuildStats(tasks),
		Schedule:      planner.BuildSchedule(tasks),
		Timestamp:     now.UTC().Format(time.RFC3339Nano),
	}
}

// ParseGroupFlag interprets a loosely typed grouping flag. Booleans pass
// through, strings accept true/1/yes/on and false/0/no/off, numbers are true
// only when 1. Anything else yields fallback.
func ParseGroupFlag(value any, fallback bool) bool {
	switch v := value.(type) {
	case bool:
		return v
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true", "1", "yes", "on":
			return true
		case "false", "0", "no", "off":
			return false
		}
	case float64:
		return v == 1
	case int:
		return v == 1
	case int64:
		return v == 1
	}
	return fallback
}

var _ Organizer = (*organizer.Orchestrator)(nil)
