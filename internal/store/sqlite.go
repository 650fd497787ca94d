package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const sqlitePragmas = "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"

// SQLiteOpener keeps one database file per event under Dir.
type SQLiteOpener struct {
	Dir string
}

func NewSQLiteOpener(dir string) (*SQLiteOpener, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &SQLiteOpener{Dir: dir}, nil
}

func (o *SQLiteOpener) path(code string) string {
	return filepath.Join(o.Dir, "event_"+code+".db")
}

func (o *SQLiteOpener) Exists(_ context.Context, code string) (bool, error) {
	_, err := os.Stat(o.path(code))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, err
	}
}

func (o *SQLiteOpener) Open(ctx context.Context, code string, create bool) (*gorm.DB, func() error, error) {
	exists, err := o.Exists(ctx, code)
	if err != nil {
		return nil, nil, err
	}
	if create && exists {
		return nil, nil, ErrEventExists
	}
	if !create && !exists {
		return nil, nil, ErrEventNotFound
	}

	db, err := gorm.Open(sqlite.Open(o.path(code)+sqlitePragmas), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("open sqlite %s: %w", code, err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	return db, sqlDB.Close, nil
}

func (o *SQLiteOpener) Drop(_ context.Context, code string) error {
	var errs []error
	for _, suffix := range []string{"", "-wal", "-shm"} {
		if err := os.Remove(o.path(code) + suffix); err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (o *SQLiteOpener) Close() error { return nil }
