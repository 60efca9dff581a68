package db

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/jmoiron/sqlx"
	"github.com/tgienger/tasknest/internal/models"
	"go.uber.org/zap"
)

// BackupVersion is written into every exported document
const BackupVersion = "1.0.0"

// Backup is the interchange document for manual backup and restore
type Backup struct {
	Tasks      []models.Task     `json:"tasks"`
	Categories []models.Category `json:"categories"`
	Tags       []models.Tag      `json:"tags"`
	TaskTags   []models.TaskTag  `json:"task_tags"`
	Projects   []models.Project  `json:"projects"`
	Settings   models.Settings   `json:"settings"`
	Version    string            `json:"version"`
	ExportDate string            `json:"export_date"`
}

// Encode writes b as indented JSON
func (b *Backup) Encode(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(b)
}

// required document keys and the JSON value each must hold
var backupShape = []struct {
	key   string
	token byte
}{
	{"tasks", '['},
	{"categories", '['},
	{"tags", '['},
	{"task_tags", '['},
	{"projects", '['},
	{"settings", '{'},
	{"version", '"'},
	{"export_date", '"'},
}

// DecodeBackup parses and shape-checks a backup document. Errors wrap
// models.ErrInvalidBackup.
func DecodeBackup(data []byte) (*Backup, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %w", models.ErrInvalidBackup, err)
	}

	for _, field := range backupShape {
		value, ok := raw[field.key]
		if !ok {
			return nil, fmt.Errorf("%w: missing %q", models.ErrInvalidBackup, field.key)
		}
		value = bytes.TrimSpace(value)
		if len(value) == 0 || value[0] != field.token {
			return nil, fmt.Errorf("%w: %q has the wrong type", models.ErrInvalidBackup, field.key)
		}
	}

	b := &Backup{}
	if err := json.Unmarshal(data, b); err != nil {
		return nil, fmt.Errorf("%w: %w", models.ErrInvalidBackup, err)
	}
	return b, nil
}

// BackupCodec exports and restores the whole store
type BackupCodec struct {
	executor
}

func NewBackupCodec(db *DB) *BackupCodec {
	return &BackupCodec{executor{db: db}}
}

// Export reads every table into a Backup. All reads share one transaction so
// the document is a consistent snapshot.
func (c *BackupCodec) Export(ctx context.Context) (*Backup, error) {
	b := &Backup{
		Tasks:      []models.Task{},
		Categories: []models.Category{},
		Tags:       []models.Tag{},
		TaskTags:   []models.TaskTag{},
		Projects:   []models.Project{},
		Version:    BackupVersion,
		ExportDate: c.db.timestamp(),
	}

	err := c.atomic(ctx, func(q sqlx.ExtContext) error {
		reads := []struct {
			table string
			dest  any
			query string
		}{
			{"tasks", &b.Tasks, "SELECT " + taskColumns + " FROM tasks ORDER BY id"},
			{"categories", &b.Categories, "SELECT " + categoryColumns + " FROM categories ORDER BY id"},
			{"tags", &b.Tags, "SELECT " + tagColumns + " FROM tags ORDER BY id"},
			{"task_tags", &b.TaskTags, "SELECT task_id, tag_id FROM task_tags ORDER BY task_id, tag_id"},
			{"projects", &b.Projects, "SELECT " + projectColumns + " FROM projects ORDER BY id"},
		}
		for _, read := range reads {
			if err := sqlx.SelectContext(ctx, q, read.dest, read.query); err != nil {
				return c.db.fail("export", read.table, err)
			}
		}

		if err := sqlx.GetContext(ctx, q, &b.Settings,
			"SELECT "+settingsColumns+" FROM settings ORDER BY id LIMIT 1"); err != nil {
			return c.db.fail("export", "settings", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return b, nil
}

// Import validates data and replaces the contents of every table with it.
// A malformed document is rejected before anything is written; a failure
// while writing rolls the whole import back.
func (c *BackupCodec) Import(ctx context.Context, data []byte) error {
	b, err := DecodeBackup(data)
	if err != nil {
		return err
	}
	return c.Restore(ctx, b)
}

// Restore replaces the contents of every table with b in one unit of work
func (c *BackupCodec) Restore(ctx context.Context, b *Backup) error {
	if b.Settings.Theme == "" {
		b.Settings.Theme = models.ThemeSystem
	}
	if b.Settings.Language == "" {
		b.Settings.Language = models.LanguageVi
	}
	if b.Settings.LastUpdated == "" {
		b.Settings.LastUpdated = c.db.timestamp()
	}
	settingsInsert := `
		INSERT INTO settings (id, theme, notifications_enabled, language, last_updated)
		VALUES (:id, :theme, :notifications_enabled, :language, :last_updated)
	`
	if b.Settings.ID == 0 {
		settingsInsert = `
			INSERT INTO settings (theme, notifications_enabled, language, last_updated)
			VALUES (:theme, :notifications_enabled, :language, :last_updated)
		`
	}

	err := c.atomic(ctx, func(q sqlx.ExtContext) error {
		for _, table := range []string{"task_tags", "tasks", "tags", "categories", "projects", "settings"} {
			if _, err := q.ExecContext(ctx, "DELETE FROM "+table); err != nil {
				return c.db.fail("clear", table, err)
			}
		}

		for _, t := range b.Tasks {
			if _, err := sqlx.NamedExecContext(ctx, q, `
				INSERT INTO tasks (id, title, description, due_date, priority, status, created_at,
					category_id, project_id, parent_task_id, completion_percentage)
				VALUES (:id, :title, :description, :due_date, :priority, :status, :created_at,
					:category_id, :project_id, :parent_task_id, :completion_percentage)
			`, t); err != nil {
				return c.db.fail("import", "task", err, zap.Int64("id", t.ID))
			}
		}

		for _, cat := range b.Categories {
			if _, err := sqlx.NamedExecContext(ctx, q, `
				INSERT INTO categories (id, name, color, icon, created_at)
				VALUES (:id, :name, :color, :icon, :created_at)
			`, cat); err != nil {
				return c.db.fail("import", "category", err, zap.Int64("id", cat.ID))
			}
		}

		for _, tag := range b.Tags {
			if _, err := sqlx.NamedExecContext(ctx, q, `
				INSERT INTO tags (id, name, color, usage_count)
				VALUES (:id, :name, :color, :usage_count)
			`, tag); err != nil {
				return c.db.fail("import", "tag", err, zap.Int64("id", tag.ID))
			}
		}

		for _, tt := range b.TaskTags {
			if _, err := sqlx.NamedExecContext(ctx, q, `
				INSERT INTO task_tags (task_id, tag_id) VALUES (:task_id, :tag_id)
			`, tt); err != nil {
				return c.db.fail("import", "task tag", err,
					zap.Int64("task_id", tt.TaskID), zap.Int64("tag_id", tt.TagID))
			}
		}

		for _, p := range b.Projects {
			if _, err := sqlx.NamedExecContext(ctx, q, `
				INSERT INTO projects (id, name, description, start_date, end_date, status, color, created_at)
				VALUES (:id, :name, :description, :start_date, :end_date, :status, :color, :created_at)
			`, p); err != nil {
				return c.db.fail("import", "project", err, zap.Int64("id", p.ID))
			}
		}

		if _, err := sqlx.NamedExecContext(ctx, q, settingsInsert, b.Settings); err != nil {
			return c.db.fail("import", "settings", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	c.db.log.Info("backup restored",
		zap.String("version", b.Version),
		zap.String("export_date", b.ExportDate),
		zap.Int("tasks", len(b.Tasks)))
	return nil
}
