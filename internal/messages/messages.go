// Package messages turns core errors into localized, user-facing text.
package messages

import (
	"embed"
	"errors"
	"fmt"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/pelletier/go-toml/v2"
	"github.com/tgienger/tasknest/internal/models"
	"go.uber.org/zap"
	"golang.org/x/text/language"
)

//go:embed catalog/*.toml
var catalog embed.FS

const (
	MsgNotFound         = "notFound"
	MsgNoFieldsToUpdate = "noFieldsToUpdate"
	MsgValidationFailed = "validationFailed"
	MsgInvalidBackup    = "invalidBackup"
	MsgSchemaFailed     = "schemaFailed"
	MsgReminderFailed   = "reminderFailed"
	MsgStorageFailed    = "storageFailed"
	MsgBackupExported   = "backupExported"
	MsgBackupImported   = "backupImported"
)

// Checked in order; the first match wins.
var errorMessages = []struct {
	target error
	id     string
}{
	{models.ErrReminder, MsgReminderFailed},
	{models.ErrNoFieldsToUpdate, MsgNoFieldsToUpdate},
	{models.ErrValidation, MsgValidationFailed},
	{models.ErrNotFound, MsgNotFound},
	{models.ErrInvalidBackup, MsgInvalidBackup},
	{models.ErrSchema, MsgSchemaFailed},
}

// Catalog holds the en and vi translations
type Catalog struct {
	bundle *i18n.Bundle
}

// New loads the embedded catalogs
func New() (*Catalog, error) {
	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	for _, name := range []string{"catalog/en.toml", "catalog/vi.toml"} {
		if _, err := bundle.LoadMessageFileFS(catalog, name); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", name, err)
		}
	}
	return &Catalog{bundle: bundle}, nil
}

// MessageID returns the catalog key describing err
func MessageID(err error) string {
	for _, m := range errorMessages {
		if errors.Is(err, m.target) {
			return m.id
		}
	}
	return MsgStorageFailed
}

// Localize returns the message for err in lang, falling back to English
func (c *Catalog) Localize(err error, lang string) string {
	return c.Message(MessageID(err), lang, nil)
}

// Message returns the message id in lang, falling back to English and then to
// the id itself.
func (c *Catalog) Message(id, lang string, data map[string]any) string {
	l := i18n.NewLocalizer(c.bundle, lang, "en")
	msg, err := l.Localize(&i18n.LocalizeConfig{
		MessageID:    id,
		TemplateData: data,
	})
	if err != nil {
		zap.L().Warn("translation not found", zap.String("lang", lang), zap.String("message_id", id), zap.Error(err))
		return id
	}
	return msg
}
