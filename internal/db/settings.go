package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/tgienger/tasknest/internal/models"
)

const settingsColumns = "id, theme, notifications_enabled, language, last_updated"

// SettingsRepo reads and writes the single settings row
type SettingsRepo struct {
	executor
}

func NewSettingsRepo(db *DB) *SettingsRepo {
	return &SettingsRepo{executor{db: db}}
}

func (r *SettingsRepo) WithTx(tx *sqlx.Tx) *SettingsRepo {
	return &SettingsRepo{executor{db: r.db, tx: tx}}
}

// Get returns the settings row
func (r *SettingsRepo) Get(ctx context.Context) (*models.Settings, error) {
	s := &models.Settings{}
	err := sqlx.GetContext(ctx, r.q(), s,
		"SELECT "+settingsColumns+" FROM settings ORDER BY id LIMIT 1")
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("settings: %w", models.ErrNotFound)
	}
	if err != nil {
		return nil, r.db.fail("get", "settings", err)
	}
	return s, nil
}

// Update writes the fields set in patch to the settings row and refreshes
// last_updated, even when the patch is empty.
func (r *SettingsRepo) Update(ctx context.Context, patch models.SettingsPatch) (int64, error) {
	if err := patch.Validate(); err != nil {
		return 0, err
	}

	var a assignments
	set(&a, "theme", patch.Theme)
	set(&a, "notifications_enabled", patch.NotificationsEnabled)
	set(&a, "language", patch.Language)
	a.add("last_updated", r.db.timestamp())

	current, err := r.Get(ctx)
	if err != nil {
		return 0, err
	}

	query, args := a.statement("settings", current.ID)
	res, err := r.q().ExecContext(ctx, query, args...)
	if err != nil {
		return 0, r.db.fail("update", "settings", err)
	}
	return res.RowsAffected()
}
