package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

// PostgresOpener keeps every event in its own schema of one database, all
// sharing a single connection pool.
type PostgresOpener struct {
	root  *gorm.DB
	sqlDB *sql.DB
}

func NewPostgresOpener(ctx context.Context, dsn string) (*PostgresOpener, error) {
	root, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	sqlDB, err := root.DB()
	if err != nil {
		return nil, err
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &PostgresOpener{root: root, sqlDB: sqlDB}, nil
}

// SchemaName is the schema holding the tables of code.
func SchemaName(code string) string {
	return "event_" + strings.ToLower(code)
}

func (o *PostgresOpener) Exists(ctx context.Context, code string) (bool, error) {
	var n int64
	err := o.root.WithContext(ctx).
		Raw("SELECT COUNT(*) FROM information_schema.schemata WHERE schema_name = ?", SchemaName(code)).
		Scan(&n).Error
	if err != nil {
		return false, fmt.Errorf("lookup schema %s: %w", code, err)
	}
	return n > 0, nil
}

func (o *PostgresOpener) Open(ctx context.Context, code string, create bool) (*gorm.DB, func() error, error) {
	name := SchemaName(code)
	if create {
		// codes are validated alphanumeric, so the identifier needs no escaping
		err := o.root.WithContext(ctx).Exec(`CREATE SCHEMA "` + name + `"`).Error
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.DuplicateSchema {
			return nil, nil, ErrEventExists
		}
		if err != nil {
			return nil, nil, fmt.Errorf("create schema %s: %w", name, err)
		}
	} else {
		ok, err := o.Exists(ctx, code)
		if err != nil {
			return nil, nil, err
		}
		if !ok {
			return nil, nil, ErrEventNotFound
		}
	}

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: o.sqlDB}), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
		NamingStrategy: schema.NamingStrategy{TablePrefix: name + "."},
	})
	if err != nil {
		return nil, nil, fmt.Errorf("open schema %s: %w", name, err)
	}
	// the pool is shared and closed by Close
	return db, func() error { return nil }, nil
}

func (o *PostgresOpener) Drop(ctx context.Context, code string) error {
	return o.root.WithContext(ctx).Exec(`DROP SCHEMA IF EXISTS "` + SchemaName(code) + `" CASCADE`).Error
}

func (o *PostgresOpener) Close() error {
	return o.sqlDB.Close()
}
