package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/DoyleJ11/lane-scoring-backend/internal/domain"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Opener knows where event stores live for one storage backend.
type Opener interface {
	Exists(ctx context.Context, code string) (bool, error)
	// Open connects to the store of code, creating its storage first when
	// create is set. It returns ErrEventNotFound for a missing store when
	// create is unset and ErrEventExists for an existing one when it is set.
	Open(ctx context.Context, code string, create bool) (*gorm.DB, func() error, error)
	// Drop removes the storage of code. Used to undo a failed Create.
	Drop(ctx context.Context, code string) error
	Close() error
}

// Manager hands out one Store per event code and keeps them open.
type Manager struct {
	opener Opener
	log    *zap.Logger

	mu     sync.Mutex
	stores map[string]*Store
}

func NewManager(opener Opener, log *zap.Logger) *Manager {
	return &Manager{
		opener: opener,
		log:    log,
		stores: make(map[string]*Store),
	}
}

// Create initialises the store of a new event with its event row and the
// default pending distance.
func (m *Manager) Create(ctx context.Context, code string, shots int) (*Store, domain.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.stores[code]; ok {
		return nil, domain.Event{}, ErrEventExists
	}

	db, closeFn, err := m.opener.Open(ctx, code, true)
	if err != nil {
		return nil, domain.Event{}, err
	}
	if err := migrate(ctx, db); err != nil {
		_ = closeFn()
		m.drop(code)
		return nil, domain.Event{}, err
	}

	s := newStore(code, db, closeFn)
	ev := domain.Event{
		Code:       code,
		ShotsCount: shots,
		Status:     domain.EventCreated,
		CreatedAt:  time.Now().UTC(),
	}
	err = s.Update(ctx, func(tx *Tx) error {
		if err := tx.CreateEvent(&ev); err != nil {
			return err
		}
		return tx.CreateDistance(&domain.Distance{
			Title:      domain.DefaultDistanceName,
			ShotsCount: shots,
			Status:     domain.DistancePending,
		})
	})
	if err != nil {
		_ = s.Close()
		m.drop(code)
		return nil, domain.Event{}, fmt.Errorf("seed event %s -> %w", code, err)
	}

	m.stores[code] = s
	m.log.Info("event store created", zap.String("code", code), zap.Int("shots_count", shots))
	return s, ev, nil
}

// Open returns the store of an existing event.
func (m *Manager) Open(ctx context.Context, code string) (*Store, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.stores[code]; ok {
		return s, nil
	}

	db, closeFn, err := m.opener.Open(ctx, code, false)
	if err != nil {
		return nil, err
	}
	if err := migrate(ctx, db); err != nil {
		_ = closeFn()
		return nil, err
	}

	s := newStore(code, db, closeFn)
	m.stores[code] = s
	m.log.Debug("event store opened", zap.String("code", code))
	return s, nil
}

func (m *Manager) Exists(ctx context.Context, code string) (bool, error) {
	m.mu.Lock()
	_, ok := m.stores[code]
	m.mu.Unlock()
	if ok {
		return true, nil
	}
	return m.opener.Exists(ctx, code)
}

// Close closes every open store and then the backend.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var errs []error
	for code, s := range m.stores {
		if err := s.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", code, err))
		}
		delete(m.stores, code)
	}
	if err := m.opener.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (m *Manager) drop(code string) {
	if err := m.opener.Drop(context.Background(), code); err != nil {
		m.log.Error("drop half-created event store", zap.String("code", code), zap.Error(err))
	}
}

func migrate(ctx context.Context, db *gorm.DB) error {
	if err := db.WithContext(ctx).AutoMigrate(domain.Models()...); err != nil {
		return fmt.Errorf("migrate -> %w", err)
	}
	return nil
}
