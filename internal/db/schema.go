package db

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/tgienger/tasknest/internal/models"
	"go.uber.org/zap"
)

type column struct {
	name string
	def  string
}

// Columns added after the first schema version. Older files get them through
// ALTER TABLE on startup.
var migrations = map[string][]column{
	"tasks": {
		{"project_id", "INTEGER"},
		{"parent_task_id", "INTEGER"},
		{"completion_percentage", "INTEGER DEFAULT 0"},
	},
	"settings": {
		{"language", "TEXT DEFAULT 'vi'"},
	},
}

var indexes = []string{
	"CREATE INDEX IF NOT EXISTS idx_tasks_created ON tasks(created_at)",
	"CREATE INDEX IF NOT EXISTS idx_tasks_category ON tasks(category_id)",
	"CREATE INDEX IF NOT EXISTS idx_tasks_project ON tasks(project_id)",
	"CREATE INDEX IF NOT EXISTS idx_tasks_parent ON tasks(parent_task_id)",
	"CREATE INDEX IF NOT EXISTS idx_task_tags_tag ON task_tags(tag_id)",
}

// Initialize creates the tables if they are missing, migrates older files and
// makes sure exactly one settings row exists. It is safe to call on every start.
func (db *DB) Initialize(ctx context.Context) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return db.schemaErr("create tables", err)
	}

	for table, cols := range migrations {
		for _, c := range cols {
			if err := db.ensureColumn(ctx, table, c); err != nil {
				return err
			}
		}
	}

	for _, idx := range indexes {
		if _, err := db.ExecContext(ctx, idx); err != nil {
			return db.schemaErr("create index", err)
		}
	}

	return db.seedSettings(ctx)
}

func (db *DB) seedSettings(ctx context.Context) error {
	var count int
	if err := db.GetContext(ctx, &count, "SELECT COUNT(*) FROM settings"); err != nil {
		return db.schemaErr("count settings", err)
	}

	if count == 0 {
		_, err := db.ExecContext(ctx, `
			INSERT INTO settings (theme, notifications_enabled, language, last_updated)
			VALUES (?, ?, ?, ?)
		`, models.ThemeSystem, true, models.LanguageVi, db.timestamp())
		if err != nil {
			return db.schemaErr("seed settings", err)
		}
		db.log.Info("settings initialized with defaults")
	}
	return nil
}

func (db *DB) ensureColumn(ctx context.Context, table string, c column) error {
	exists, err := hasColumn(ctx, db.DB, table, c.name)
	if err != nil {
		return db.schemaErr("inspect "+table, err)
	}
	if exists {
		return nil
	}

	if _, err := db.ExecContext(ctx, fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", table, c.name, c.def)); err != nil {
		return db.schemaErr("migrate "+table, err)
	}
	db.log.Info("column added", zap.String("table", table), zap.String("column", c.name))
	return nil
}

func hasColumn(ctx context.Context, q sqlx.QueryerContext, table, name string) (bool, error) {
	var names []string
	if err := sqlx.SelectContext(ctx, q, &names, "SELECT name FROM pragma_table_info(?)", table); err != nil {
		return false, err
	}
	for _, n := range names {
		if n == name {
			return true, nil
		}
	}
	return false, nil
}

func (db *DB) schemaErr(step string, err error) error {
	db.log.Error("schema initialization failed", zap.String("step", step), zap.Error(err))
	return fmt.Errorf("%w: %s: %w", models.ErrSchema, step, err)
}
