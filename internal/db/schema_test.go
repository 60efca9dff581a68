package db

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tgienger/tasknest/internal/models"
	"go.uber.org/zap"
)

func TestOpen_CreatesTablesAndSeedsSettings(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	defer db.Close()

	for _, table := range []string{"tasks", "settings", "categories", "tags", "task_tags", "projects"} {
		var n int
		err := db.GetContext(ctx, &n, "SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?", table)
		require.NoError(t, err)
		assert.Equal(t, 1, n, table)
	}

	settings, err := NewSettingsRepo(db).Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.ThemeSystem, settings.Theme)
	assert.True(t, settings.NotificationsEnabled)
	assert.Equal(t, models.LanguageVi, settings.Language)
	assert.NotEmpty(t, settings.LastUpdated)
}

func TestInitialize_IsIdempotent(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), FileName)

	db, err := Open(ctx, path, zap.NewNop())
	require.NoError(t, err)
	_, err = NewTaskRepo(db).Insert(ctx, models.NewTask{Title: "keep me", Priority: models.PriorityLow, Status: models.StatusPending})
	require.NoError(t, err)
	require.NoError(t, db.Initialize(ctx))
	require.NoError(t, db.Close())

	// Reopening after close initializes again without touching existing rows.
	db, err = Open(ctx, path, zap.NewNop())
	require.NoError(t, err)
	defer db.Close()

	var settingsRows, taskRows int
	require.NoError(t, db.GetContext(ctx, &settingsRows, "SELECT COUNT(*) FROM settings"))
	require.NoError(t, db.GetContext(ctx, &taskRows, "SELECT COUNT(*) FROM tasks"))
	assert.Equal(t, 1, settingsRows)
	assert.Equal(t, 1, taskRows)
}

func TestInitialize_MigratesOlderFiles(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), FileName)

	raw, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	_, err = raw.Exec(`
		CREATE TABLE settings (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			theme TEXT NOT NULL,
			notifications_enabled INTEGER NOT NULL,
			last_updated TEXT NOT NULL
		);
		INSERT INTO settings (theme, notifications_enabled, last_updated) VALUES ('dark', 0, '2024-01-01T00:00:00.000Z');
		CREATE TABLE tasks (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			title TEXT NOT NULL,
			description TEXT,
			due_date TEXT,
			priority TEXT NOT NULL,
			status TEXT NOT NULL,
			created_at TEXT NOT NULL,
			category_id INTEGER
		);
		INSERT INTO tasks (title, priority, status, created_at) VALUES ('old task', 'high', 'pending', '2024-01-01T00:00:00.000Z');
	`)
	require.NoError(t, err)
	require.NoError(t, raw.Close())

	db, err := Open(ctx, path, zap.NewNop())
	require.NoError(t, err)
	defer db.Close()

	for _, col := range []struct{ table, name string }{
		{"settings", "language"},
		{"tasks", "project_id"},
		{"tasks", "parent_task_id"},
		{"tasks", "completion_percentage"},
	} {
		ok, err := hasColumn(ctx, db.DB, col.table, col.name)
		require.NoError(t, err)
		assert.True(t, ok, "%s.%s", col.table, col.name)
	}

	settings, err := NewSettingsRepo(db).Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.ThemeDark, settings.Theme)
	assert.False(t, settings.NotificationsEnabled)
	assert.Equal(t, models.LanguageVi, settings.Language)

	tasks, err := NewTaskRepo(db).GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, 0, tasks[0].CompletionPercentage)
}

func TestOpen_SchemaFailureIsFatal(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), FileName)

	// A tasks table without created_at cannot be indexed.
	raw, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	_, err = raw.Exec("CREATE TABLE tasks (id INTEGER PRIMARY KEY, title TEXT)")
	require.NoError(t, err)
	require.NoError(t, raw.Close())

	db, err := Open(ctx, path, zap.NewNop())
	assert.Nil(t, db)
	require.ErrorIs(t, err, models.ErrSchema)
}
