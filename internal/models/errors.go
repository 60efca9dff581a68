package models

import "errors"

var (
	ErrNotFound         = errors.New("not found")
	ErrNoFieldsToUpdate = errors.New("no fields to update")
	ErrValidation       = errors.New("validation failed")
	ErrInvalidBackup    = errors.New("invalid backup format")
	ErrSchema           = errors.New("schema initialization failed")
	ErrReminder         = errors.New("reminder update failed")
)
