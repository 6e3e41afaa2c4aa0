// Package store persists tasks and per-owner preferences in SQLite.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"taskpilot/internal/apperror"
	"taskpilot/internal/logging"
	"taskpilot/internal/task"
)

// timeLayout is fixed width so that text ordering matches time ordering.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const taskColumns = `id, title, details, category, priority, status, notes,
	time_log, hours_spent, status_summary, created_at, updated_at`

// TaskStore implements the task repository on SQLite.
type TaskStore struct {
	db     *sql.DB
	mu     sync.RWMutex
	dbPath string
	now    func() time.Time
}

// NewTaskStore opens (or creates) the database at path and migrates it.
// ":memory:" opens a private in-memory database.
func NewTaskStore(path string, busyTimeout time.Duration) (*TaskStore, error) {
	timer := logging.StartTimer(logging.CategoryStore, "NewTaskStore")
	defer timer.Stop()

	logging.Store("Initializing TaskStore at path: %s", path)

	if path != ":memory:" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if busyTimeout <= 0 {
		busyTimeout = 5 * time.Second
	}
	if _, err := db.Exec(fmt.Sprintf("PRAGMA busy_timeout = %d", busyTimeout.Milliseconds())); err != nil {
		logging.StoreDebug("Failed to set sqlite busy_timeout: %v", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		logging.StoreDebug("Failed to set sqlite journal_mode=WAL: %v", err)
	}
	if _, err := db.Exec("PRAGMA synchronous = NORMAL"); err != nil {
		logging.StoreDebug("Failed to set sqlite synchronous=NORMAL: %v", err)
	}

	s := &TaskStore{db: db, dbPath: path, now: time.Now}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}
	if err := RunMigrations(db); err != nil {
		db.Close()
		return nil, err
	}

	logging.Store("TaskStore ready (schema v%d)", GetSchemaVersion(db))
	return s, nil
}

// initialize creates the v1 tables.
func (s *TaskStore) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS owners (
		id TEXT PRIMARY KEY,
		group_by_category INTEGER NOT NULL DEFAULT 1,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS tasks (
		id TEXT PRIMARY KEY,
		owner_id TEXT NOT NULL,
		title TEXT NOT NULL,
		details TEXT NOT NULL DEFAULT '',
		category TEXT NOT NULL DEFAULT 'Work',
		priority TEXT NOT NULL DEFAULT 'Medium',
		status TEXT NOT NULL DEFAULT 'ToDo',
		notes TEXT NOT NULL DEFAULT '[]',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_tasks_owner ON tasks(owner_id, created_at);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Close closes the database.
func (s *TaskStore) Close() error {
	return s.db.Close()
}

// Path returns the database path.
func (s *TaskStore) Path() string {
	return s.dbPath
}

// List returns the owner's tasks in creation order.
func (s *TaskStore) List(ctx context.Context, owner string) ([]task.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT "+taskColumns+" FROM tasks WHERE owner_id = ? ORDER BY created_at, rowid", owner)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	tasks := []task.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

// ReplaceAll deletes the owner's tasks and inserts tasks in one
// transaction, returning the stored records.
func (s *TaskStore) ReplaceAll(ctx context.Context, owner string, tasks []task.Task) ([]task.Task, error) {
	timer := logging.StartTimer(logging.CategoryStore, "ReplaceAll")
	defer timer.Stop()

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := s.now()
	if err := ensureOwner(ctx, tx, owner, now); err != nil {
		return nil, err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM tasks WHERE owner_id = ?", owner); err != nil {
		return nil, fmt.Errorf("failed to clear tasks: %w", err)
	}

	stored := make([]task.Task, 0, len(tasks))
	for _, t := range tasks {
		created, err := insertTask(ctx, tx, owner, t, now)
		if err != nil {
			return nil, err
		}
		stored = append(stored, created)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit tasks: %w", err)
	}
	logging.Store("Replaced tasks for owner %s: %d stored", owner, len(stored))
	return stored, nil
}

// Create inserts one task with a new id.
func (s *TaskStore) Create(ctx context.Context, owner string, t task.Task) (task.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return task.Task{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := s.now()
	if err := ensureOwner(ctx, tx, owner, now); err != nil {
		return task.Task{}, err
	}
	created, err := insertTask(ctx, tx, owner, t, now)
	if err != nil {
		return task.Task{}, err
	}
	if err := tx.Commit(); err != nil {
		return task.Task{}, fmt.Errorf("failed to commit task: %w", err)
	}
	return created, nil
}

// Update applies p to the owner's task id. An unknown id, or one owned by
// someone else, is a not-found error.
func (s *TaskStore) Update(ctx context.Context, owner, id string, p task.Patch) (task.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return task.Task{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx,
		"SELECT "+taskColumns+" FROM tasks WHERE id = ? AND owner_id = ?", id, owner)
	current, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return task.Task{}, apperror.NotFound("update", "Task not found.")
	}
	if err != nil {
		return task.Task{}, err
	}

	updated := task.Sanitize(p.Apply(current))
	updated.UpdatedAt = s.now().UTC()
	notes, err := json.Marshal(updated.Notes)
	if err != nil {
		return task.Task{}, fmt.Errorf("failed to encode notes: %w", err)
	}

	_, err = tx.ExecContext(ctx, `UPDATE tasks SET
		title = ?, details = ?, category = ?, priority = ?, status = ?, notes = ?,
		time_log = ?, hours_spent = ?, status_summary = ?, updated_at = ?
		WHERE id = ? AND owner_id = ?`,
		updated.Title, updated.Details, updated.Category, string(updated.Priority),
		task.StatusToDB(updated.Status), string(notes),
		nullable(updated.TimeLog), nullable(updated.HoursSpent), nullable(updated.StatusSummary),
		updated.UpdatedAt.Format(timeLayout), id, owner)
	if err != nil {
		return task.Task{}, fmt.Errorf("failed to update task: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return task.Task{}, fmt.Errorf("failed to commit update: %w", err)
	}
	return updated, nil
}

// Delete removes the owner's task id.
func (s *TaskStore) Delete(ctx context.Context, owner, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM tasks WHERE id = ? AND owner_id = ?", id, owner)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	if n == 0 {
		return apperror.NotFound("delete", "Task not found.")
	}
	return nil
}

// DeleteAll removes every task the owner has.
func (s *TaskStore) DeleteAll(ctx context.Context, owner string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM tasks WHERE owner_id = ?", owner)
	if err != nil {
		return fmt.Errorf("failed to clear tasks: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil {
		logging.StoreDebug("Cleared %d tasks for owner %s", n, owner)
	}
	return nil
}

// GroupPreference returns the owner's stored grouping preference, true
// when none is stored.
func (s *TaskStore) GroupPreference(ctx context.Context, owner string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var grouped bool
	err := s.db.QueryRowContext(ctx, "SELECT group_by_category FROM owners WHERE id = ?", owner).Scan(&grouped)
	if errors.Is(err, sql.ErrNoRows) {
		return true, nil
	}
	if err != nil {
		return true, fmt.Errorf("failed to read group preference: %w", err)
	}
	return grouped, nil
}

// SetGroupPreference stores the owner's grouping preference.
func (s *TaskStore) SetGroupPreference(ctx context.Context, owner string, grouped bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC().Format(timeLayout)
	_, err := s.db.ExecContext(ctx, `INSERT INTO owners (id, group_by_category, created_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET group_by_category = excluded.group_by_category, updated_at = excluded.updated_at`,
		owner, grouped, now, now)
	if err != nil {
		return fmt.Errorf("failed to store group preference: %w", err)
	}
	return nil
}

// Owners lists every owner that has stored tasks or preferences.
func (s *TaskStore) Owners(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, "SELECT id FROM owners ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to list owners: %w", err)
	}
	defer rows.Close()

	var owners []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan owner: %w", err)
		}
		owners = append(owners, id)
	}
	return owners, rows.Err()
}

func ensureOwner(ctx context.Context, tx *sql.Tx, owner string, now time.Time) error {
	ts := now.UTC().Format(timeLayout)
	_, err := tx.ExecContext(ctx,
		"INSERT OR IGNORE INTO owners (id, group_by_category, created_at, updated_at) VALUES (?, 1, ?, ?)",
		owner, ts, ts)
	if err != nil {
		return fmt.Errorf("failed to register owner: %w", err)
	}
	return nil
}

func insertTask(ctx context.Context, tx *sql.Tx, owner string, t task.Task, now time.Time) (task.Task, error) {
	t = task.Sanitize(t)
	t.ID = uuid.NewString()
	t.CreatedAt = now.UTC()
	t.UpdatedAt = t.CreatedAt

	notes, err := json.Marshal(t.Notes)
	if err != nil {
		return task.Task{}, fmt.Errorf("failed to encode notes: %w", err)
	}

	ts := t.CreatedAt.Format(timeLayout)
	_, err = tx.ExecContext(ctx, `INSERT INTO tasks
		(id, owner_id, title, details, category, priority, status, notes,
		 time_log, hours_spent, status_summary, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, owner, t.Title, t.Details, t.Category, string(t.Priority), task.StatusToDB(t.Status), string(notes),
		nullable(t.TimeLog), nullable(t.HoursSpent), nullable(t.StatusSummary), ts, ts)
	if err != nil {
		return task.Task{}, fmt.Errorf("failed to insert task: %w", err)
	}
	return t, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTask(row scanner) (task.Task, error) {
	var (
		t                               task.Task
		priority, status, notes         string
		timeLog, hoursSpent, statusSumm sql.NullString
		createdAt, updatedAt            string
	)
	err := row.Scan(&t.ID, &t.Title, &t.Details, &t.Category, &priority, &status, &notes,
		&timeLog, &hoursSpent, &statusSumm, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return task.Task{}, err
	}
	if err != nil {
		return task.Task{}, fmt.Errorf("failed to scan task: %w", err)
	}

	t.Priority = task.NormalizePriority(priority)
	t.Status = task.StatusFromDB(status)
	if err := json.Unmarshal([]byte(notes), &t.Notes); err != nil {
		logging.StoreWarn("Task %s has unreadable notes: %v", t.ID, err)
	}
	t.Notes = task.SanitizeNotes(t.Notes)
	t.TimeLog = timeLog.String
	t.HoursSpent = hoursSpent.String
	t.StatusSummary = statusSumm.String
	t.CreatedAt = parseTime(createdAt)
	t.UpdatedAt = parseTime(updatedAt)
	return t, nil
}

func parseTime(s string) time.Time {
	ts, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}
	}
	return ts
}

// nullable stores empty optional text as NULL.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
