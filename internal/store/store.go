package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/DoyleJ11/lane-scoring-backend/internal/domain"
	"golang.org/x/sync/semaphore"
	"gorm.io/gorm"
)

var (
	ErrEventNotFound       = fmt.Errorf("event %w", domain.ErrNotFound)
	ErrDistanceNotFound    = fmt.Errorf("distance %w", domain.ErrNotFound)
	ErrParticipantNotFound = fmt.Errorf("participant %w", domain.ErrNotFound)
	ErrSessionNotFound     = fmt.Errorf("session %w", domain.ErrNotFound)
	ErrEventExists         = errors.New("event already exists")
	ErrConflict            = fmt.Errorf("%w: conflicting write", domain.ErrInvalidTransition)
)

// Store is the isolated persistence unit of one event. Reads go straight to
// the database; writes are serialized per event and run in one transaction.
type Store struct {
	code  string
	db    *gorm.DB
	write *semaphore.Weighted
	close func() error
}

func newStore(code string, db *gorm.DB, closeFn func() error) *Store {
	return &Store{
		code:  code,
		db:    db,
		write: semaphore.NewWeighted(1),
		close: closeFn,
	}
}

func (s *Store) Code() string { return s.code }

// View runs fn against the current committed state without taking the write lock.
func (s *Store) View(ctx context.Context, fn func(tx *Tx) error) error {
	return fn(&Tx{db: s.db.WithContext(ctx)})
}

// Snapshot runs fn in a read transaction so that every read inside it sees
// the same committed state. It does not take the write lock.
func (s *Store) Snapshot(ctx context.Context, fn func(tx *Tx) error) error {
	var opts []*sql.TxOptions
	if s.db.Dialector.Name() == "postgres" {
		opts = append(opts, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
	}
	return s.db.WithContext(ctx).Transaction(func(db *gorm.DB) error {
		return fn(&Tx{db: db})
	}, opts...)
}

// Update runs fn as one atomic unit. Any error from fn, or a cancelled ctx
// before commit, rolls back every write fn made.
func (s *Store) Update(ctx context.Context, fn func(tx *Tx) error) error {
	if err := s.write.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("acquire write lock %s: %w", s.code, err)
	}
	defer s.write.Release(1)

	return s.db.WithContext(ctx).Transaction(func(db *gorm.DB) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(&Tx{db: db}); err != nil {
			return err
		}
		return ctx.Err()
	})
}

func (s *Store) Close() error {
	if s.close == nil {
		return nil
	}
	return s.close()
}

// Tx is the read/write surface of a store, bound to one context and, inside
// Update, to one transaction.
type Tx struct {
	db *gorm.DB
}

func translate(err error, notFound error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return notFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %w", ErrConflict, err)
	default:
		return err
	}
}
