package logging

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func observe(t *testing.T, level zapcore.Level) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(level)
	restore := Replace(zap.New(core))
	t.Cleanup(restore)
	return logs
}

func TestGet_NamedAfterCategory(t *testing.T) {
	logs := observe(t, zapcore.DebugLevel)

	Get(CategoryStore).Infow("opened", "path", "tasks.db")

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "store", entries[0].LoggerName)
	assert.Equal(t, "opened", entries[0].Message)
	assert.Equal(t, "tasks.db", entries[0].ContextMap()["path"])
}

func TestConvenienceFunctions(t *testing.T) {
	logs := observe(t, zapcore.DebugLevel)

	Boot("starting %s", "taskpilot")
	OrganizerWarn("fallback for %s", "openai")
	ProviderError("status %d", 500)
	StoreDebug("rows=%d", 3)
	Watch("watching %s", "notes.md")

	entries := logs.All()
	require.Len(t, entries, 5)
	assert.Equal(t, "starting taskpilot", entries[0].Message)
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Equal(t, "organizer", entries[1].LoggerName)
	assert.Equal(t, zapcore.ErrorLevel, entries[2].Level)
	assert.Equal(t, zapcore.DebugLevel, entries[3].Level)
	assert.Equal(t, "watch", entries[4].LoggerName)
}

func TestLevelFiltering(t *testing.T) {
	logs := observe(t, zapcore.WarnLevel)

	StoreDebug("hidden")
	Store("hidden")
	StoreWarn("shown")

	assert.Equal(t, 1, logs.Len())
	assert.Equal(t, 1, logs.FilterMessage("shown").Len())
}

func TestCategoryToggles(t *testing.T) {
	logs := observe(t, zapcore.DebugLevel)

	mu.Lock()
	categories = map[string]bool{"store": false}
	loggers = make(map[Category]*zap.SugaredLogger)
	mu.Unlock()

	assert.False(t, IsCategoryEnabled(CategoryStore))
	assert.True(t, IsCategoryEnabled(CategoryOrganizer))

	Store("dropped")
	Organizer("kept")

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "kept", entries[0].Message)
}

func TestReplace_Restores(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	restore := Replace(zap.New(core))
	Boot("during")
	restore()
	Boot("after")

	assert.Equal(t, 1, logs.Len())
}

func TestInitialize_RejectsBadOptions(t *testing.T) {
	assert.Error(t, Initialize(Options{Level: "loud"}))
	assert.Error(t, Initialize(Options{Format: "xml"}))
}

func TestTimer(t *testing.T) {
	logs := observe(t, zapcore.DebugLevel)

	elapsed := StartTimer(CategoryProvider, "openai.organize").Stop()
	assert.GreaterOrEqual(t, elapsed, time.Duration(0))

	StartTimer(CategoryProvider, "gemini.title").StopWithThreshold(-time.Second)

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "openai.organize completed", entries[0].Message)
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Equal(t, "gemini.title exceeded threshold", entries[1].Message)
}
