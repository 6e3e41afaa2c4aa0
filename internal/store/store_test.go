package store

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskpilot/internal/apperror"
	"taskpilot/internal/task"
)

func newTestStore(t *testing.T) *TaskStore {
	t.Helper()
	s, err := NewTaskStore(filepath.Join(t.TempDir(), "tasks.db"), time.Second)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func strPtr(s string) *string { return &s }

func TestNewTaskStore_Schema(t *testing.T) {
	s := newTestStore(t)

	assert.Equal(t, CurrentSchemaVersion, GetSchemaVersion(s.db))
	for _, m := range pendingMigrations {
		assert.True(t, columnExists(s.db, m.Table, m.Column), "%s.%s", m.Table, m.Column)
	}
	assert.True(t, tableExists(s.db, "owners"))
	assert.False(t, tableExists(s.db, "missing"))
}

func TestNewTaskStore_MigratesV1Database(t *testing.T) {
	path := filepath.Join(t.TempDir(), "old.db")

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	_, err = db.Exec(`
		CREATE TABLE owners (id TEXT PRIMARY KEY, group_by_category INTEGER NOT NULL DEFAULT 1,
			created_at TEXT NOT NULL, updated_at TEXT NOT NULL);
		CREATE TABLE tasks (id TEXT PRIMARY KEY, owner_id TEXT NOT NULL, title TEXT NOT NULL,
			details TEXT NOT NULL DEFAULT '', category TEXT NOT NULL DEFAULT 'Work',
			priority TEXT NOT NULL DEFAULT 'Medium', status TEXT NOT NULL DEFAULT 'ToDo',
			notes TEXT NOT NULL DEFAULT '[]', created_at TEXT NOT NULL, updated_at TEXT NOT NULL);
		INSERT INTO tasks (id, owner_id, title, status, notes, created_at, updated_at)
			VALUES ('t1', 'alice', 'Legacy', 'InProgress', '["kept"]',
				'2024-01-01T00:00:00.000000000Z', '2024-01-01T00:00:00.000000000Z');
	`)
	require.NoError(t, err)
	require.Equal(t, 0, GetSchemaVersion(db))
	require.NoError(t, db.Close())

	s, err := NewTaskStore(path, time.Second)
	require.NoError(t, err)
	defer s.Close()

	assert.Equal(t, CurrentSchemaVersion, GetSchemaVersion(s.db))
	tasks, err := s.List(context.Background(), "alice")
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "Legacy", tasks[0].Title)
	assert.Equal(t, task.StatusInProgress, tasks[0].Status)
	assert.Equal(t, []string{"kept"}, tasks[0].Notes)
	assert.Empty(t, tasks[0].HoursSpent)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), tasks[0].CreatedAt)
}

func TestReplaceAll(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	stored, err := s.ReplaceAll(ctx, "alice", []task.Task{
		{Title: "First", Priority: task.PriorityHigh, Status: task.StatusCompleted, Notes: []string{"a", "b"}, HoursSpent: "2h"},
		{Title: "Second", Status: "doing"},
		{Title: "Third"},
	})
	require.NoError(t, err)
	require.Len(t, stored, 3)
	for _, st := range stored {
		_, err := uuid.Parse(st.ID)
		assert.NoError(t, err)
		assert.False(t, st.CreatedAt.IsZero())
	}

	listed, err := s.List(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, listed, 3)
	assert.Equal(t, []string{"First", "Second", "Third"}, []string{listed[0].Title, listed[1].Title, listed[2].Title})
	assert.Equal(t, stored[0].ID, listed[0].ID)
	assert.Equal(t, task.StatusCompleted, listed[0].Status)
	assert.Equal(t, task.PriorityHigh, listed[0].Priority)
	assert.Equal(t, []string{"a", "b"}, listed[0].Notes)
	assert.Equal(t, "2h", listed[0].HoursSpent)
	assert.Equal(t, task.StatusInProgress, listed[1].Status)
	assert.Equal(t, task.PriorityMedium, listed[2].Priority)
	assert.Equal(t, task.DefaultCategory, listed[2].Category)
	assert.Equal(t, []string{}, listed[2].Notes)

	// A second organize replaces everything.
	_, err = s.ReplaceAll(ctx, "alice", []task.Task{{Title: "Only"}})
	require.NoError(t, err)
	listed, err = s.List(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, "Only", listed[0].Title)

	_, err = s.ReplaceAll(ctx, "alice", nil)
	require.NoError(t, err)
	listed, err = s.List(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, listed)
	assert.NotNil(t, listed)
}

func TestReplaceAll_OwnersAreIsolated(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.ReplaceAll(ctx, "alice", []task.Task{{Title: "A"}})
	require.NoError(t, err)
	_, err = s.ReplaceAll(ctx, "bob", []task.Task{{Title: "B1"}, {Title: "B2"}})
	require.NoError(t, err)

	alice, err := s.List(ctx, "alice")
	require.NoError(t, err)
	assert.Len(t, alice, 1)

	owners, err := s.Owners(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"alice", "bob"}, owners)
}

func TestReplaceAll_CanceledContextLeavesTasks(t *testing.T) {
	s := newTestStore(t)
	_, err := s.ReplaceAll(context.Background(), "alice", []task.Task{{Title: "Keep"}})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = s.ReplaceAll(ctx, "alice", []task.Task{{Title: "Lost"}})
	require.Error(t, err)

	listed, err := s.List(context.Background(), "alice")
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, "Keep", listed[0].Title)
}

func TestCreate(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	created, err := s.Create(ctx, "alice", task.Task{Title: "  Manual  ", Priority: "low"})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "Manual", created.Title)
	assert.Equal(t, task.PriorityLow, created.Priority)
	assert.Equal(t, task.StatusToDo, created.Status)

	listed, err := s.List(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, created.ID, listed[0].ID)
}

func TestUpdate(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return base }
	created, err := s.Create(ctx, "alice", task.Task{Title: "Draft", TimeLog: "1h"})
	require.NoError(t, err)

	s.now = func() time.Time { return base.Add(time.Hour) }
	updated, err := s.Update(ctx, "alice", created.ID, task.Patch{
		Status:  strPtr("Completed"),
		TimeLog: strPtr(""),
		Notes:   &[]string{" done "},
	})
	require.NoError(t, err)
	assert.Equal(t, task.StatusCompleted, updated.Status)
	assert.Equal(t, "Draft", updated.Title)
	assert.Equal(t, []string{"done"}, updated.Notes)
	assert.Equal(t, base.Add(time.Hour), updated.UpdatedAt)

	listed, err := s.List(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, task.StatusCompleted, listed[0].Status)
	assert.Empty(t, listed[0].TimeLog)
	assert.Equal(t, base, listed[0].CreatedAt)
	assert.Equal(t, base.Add(time.Hour), listed[0].UpdatedAt)
}

func TestUpdate_NotFound(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	created, err := s.Create(ctx, "alice", task.Task{Title: "Mine"})
	require.NoError(t, err)

	_, err = s.Update(ctx, "bob", created.ID, task.Patch{Title: strPtr("Stolen")})
	assert.ErrorIs(t, err, apperror.ErrNotFound)
	assert.EqualError(t, err, "Task not found.")

	_, err = s.Update(ctx, "alice", "nope", task.Patch{Title: strPtr("x")})
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestDelete(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	created, err := s.Create(ctx, "alice", task.Task{Title: "Gone"})
	require.NoError(t, err)

	assert.ErrorIs(t, s.Delete(ctx, "bob", created.ID), apperror.ErrNotFound)
	require.NoError(t, s.Delete(ctx, "alice", created.ID))
	assert.ErrorIs(t, s.Delete(ctx, "alice", created.ID), apperror.ErrNotFound)
}

func TestDeleteAll(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.ReplaceAll(ctx, "alice", []task.Task{{Title: "a"}, {Title: "b"}})
	require.NoError(t, err)
	_, err = s.ReplaceAll(ctx, "bob", []task.Task{{Title: "c"}})
	require.NoError(t, err)

	require.NoError(t, s.DeleteAll(ctx, "alice"))
	alice, err := s.List(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, alice)
	bob, err := s.List(ctx, "bob")
	require.NoError(t, err)
	assert.Len(t, bob, 1)
}

func TestGroupPreference(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	grouped, err := s.GroupPreference(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, grouped, "default is grouped")

	require.NoError(t, s.SetGroupPreference(ctx, "alice", false))
	grouped, err = s.GroupPreference(ctx, "alice")
	require.NoError(t, err)
	assert.False(t, grouped)

	// Replacing tasks keeps the stored preference.
	_, err = s.ReplaceAll(ctx, "alice", []task.Task{{Title: "x"}})
	require.NoError(t, err)
	grouped, err = s.GroupPreference(ctx, "alice")
	require.NoError(t, err)
	assert.False(t, grouped)

	require.NoError(t, s.SetGroupPreference(ctx, "alice", true))
	grouped, err = s.GroupPreference(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, grouped)
}

func TestTaskStore_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "tasks.db")

	s, err := NewTaskStore(path, 0)
	require.NoError(t, err)
	_, err = s.ReplaceAll(context.Background(), "alice", []task.Task{{Title: "Durable"}})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	reopened, err := NewTaskStore(path, 0)
	require.NoError(t, err)
	defer reopened.Close()

	listed, err := reopened.List(context.Background(), "alice")
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, "Durable", listed[0].Title)
	assert.Equal(t, path, reopened.Path())
}
