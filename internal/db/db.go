package db

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

//go:embed schema.sql
var schema string

// FileName is the logical name of the database file
const FileName = "tasknest.db"

// timeLayout formats stored timestamps; UTC times render with a Z suffix
const timeLayout = "2006-01-02T15:04:05.000Z07:00"

// DB wraps the database connection. Exactly one DB should be open per
// database file; the composition root owns it and hands it to the repositories.
type DB struct {
	*sqlx.DB
	log *zap.Logger
	now func() time.Time
}

// Open opens the database at path and initializes the schema.
// Schema failures close the connection and are returned wrapped in models.ErrSchema.
func Open(ctx context.Context, path string, log *zap.Logger) (*DB, error) {
	if log == nil {
		log = zap.NewNop()
	}

	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	conn, err := sqlx.Open("sqlite3", path+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// Single writer; this also keeps ":memory:" databases on one connection.
	conn.SetMaxOpenConns(1)

	db := &DB{DB: conn, log: log.Named("db"), now: time.Now}
	if err := db.Initialize(ctx); err != nil {
		conn.Close()
		return nil, err
	}

	db.log.Debug("database opened", zap.String("path", path))
	return db, nil
}

// DefaultPath returns the path to the database file
func DefaultPath() (string, error) {
	// Use XDG data directory or fallback to home directory
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dataDir = filepath.Join(home, ".local", "share")
	}

	return filepath.Join(dataDir, "tasknest", FileName), nil
}

// Logger returns the logger used for storage errors
func (db *DB) Logger() *zap.Logger {
	return db.log
}

func (db *DB) timestamp() string {
	return db.now().UTC().Format(timeLayout)
}

// InTx runs fn as one unit of work. The transaction commits when fn returns
// nil and rolls back otherwise, including when fn panics.
func (db *DB) InTx(ctx context.Context, fn func(tx *sqlx.Tx) error) (err error) {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return db.fail("begin", "transaction", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				db.log.Warn("rollback failed", zap.Error(rbErr))
			}
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return db.fail("commit", "transaction", err)
	}
	return nil
}

// fail logs a storage error with its context and returns it wrapped
func (db *DB) fail(op, entity string, err error, fields ...zap.Field) error {
	fields = append([]zap.Field{
		zap.String("op", op),
		zap.String("entity", entity),
		zap.Error(err),
	}, fields...)
	db.log.Error("storage operation failed", fields...)
	return fmt.Errorf("failed to %s %s: %w", op, entity, err)
}

// executor runs statements on the shared connection, or on a transaction when
// a repository has been bound to one with WithTx.
type executor struct {
	db *DB
	tx *sqlx.Tx
}

func (e executor) q() sqlx.ExtContext {
	if e.tx != nil {
		return e.tx
	}
	return e.db.DB
}

// atomic runs fn in a unit of work, joining the bound transaction if there is one
func (e executor) atomic(ctx context.Context, fn func(q sqlx.ExtContext) error) error {
	if e.tx != nil {
		return fn(e.tx)
	}
	return e.db.InTx(ctx, func(tx *sqlx.Tx) error {
		return fn(tx)
	})
}

// Result reports the outcome of a write
type Result struct {
	ID           int64
	RowsAffected int64
}

func insertResult(res sql.Result) (Result, error) {
	id, err := res.LastInsertId()
	if err != nil {
		return Result{}, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return Result{}, err
	}
	return Result{ID: id, RowsAffected: n}, nil
}
