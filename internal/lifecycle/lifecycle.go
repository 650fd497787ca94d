package lifecycle

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/DoyleJ11/lane-scoring-backend/internal/domain"
	"github.com/DoyleJ11/lane-scoring-backend/internal/engine"
	"github.com/DoyleJ11/lane-scoring-backend/internal/store"
	"go.uber.org/zap"
)

var ErrInvalidShots = fmt.Errorf("%w: shots_count must be at least 1", domain.ErrValidation)
var ErrEmptyTitle = fmt.Errorf("%w: title is required", domain.ErrValidation)

type Stores interface {
	Create(ctx context.Context, code string, shots int) (*store.Store, domain.Event, error)
	Open(ctx context.Context, code string) (*store.Store, error)
}

type Controller struct {
	stores     Stores
	log        *zap.Logger
	now        func() time.Time
	codeMaxLen int
}

func NewController(stores Stores, log *zap.Logger, codeMaxLen int) *Controller {
	return &Controller{
		stores:     stores,
		log:        log,
		now:        func() time.Time { return time.Now().UTC() },
		codeMaxLen: codeMaxLen,
	}
}

type EventPatch struct {
	Status     *domain.EventStatus
	ShotsCount *int
}

type NewDistance struct {
	Title      string
	ShotsCount int // zero takes the event default
}

type DistancePatch struct {
	Title      *string
	ShotsCount *int
	Status     *domain.DistanceStatus
}

// CreateEvent creates the event's store with its default distance.
func (c *Controller) CreateEvent(ctx context.Context, code string, shots int) (domain.Event, error) {
	code, err := domain.NormalizeCode(code, c.codeMaxLen)
	if err != nil {
		return domain.Event{}, err
	}
	if shots == 0 {
		shots = domain.DefaultShotsCount
	}
	if shots < 1 {
		return domain.Event{}, ErrInvalidShots
	}
	_, ev, err := c.stores.Create(ctx, code, shots)
	return ev, err
}

func (c *Controller) Event(ctx context.Context, code string) (domain.Event, error) {
	s, err := c.stores.Open(ctx, code)
	if err != nil {
		return domain.Event{}, err
	}
	var ev domain.Event
	err = s.View(ctx, func(tx *store.Tx) error {
		ev, err = tx.Event()
		return err
	})
	return ev, err
}

func (c *Controller) StartEvent(ctx context.Context, code string) (domain.Event, error) {
	st := domain.EventStarted
	return c.UpdateEvent(ctx, code, EventPatch{Status: &st})
}

// FinishEvent finishes the active distance, if any, and the event in one unit.
func (c *Controller) FinishEvent(ctx context.Context, code string) (domain.Event, error) {
	st := domain.EventFinished
	return c.UpdateEvent(ctx, code, EventPatch{Status: &st})
}

func (c *Controller) UpdateEvent(ctx context.Context, code string, p EventPatch) (domain.Event, error) {
	if p.ShotsCount != nil && *p.ShotsCount < 1 {
		return domain.Event{}, ErrInvalidShots
	}
	s, err := c.stores.Open(ctx, code)
	if err != nil {
		return domain.Event{}, err
	}

	var ev domain.Event
	err = s.Update(ctx, func(tx *store.Tx) error {
		var err error
		if ev, err = tx.Event(); err != nil {
			return err
		}
		if p.ShotsCount != nil {
			ev.ShotsCount = *p.ShotsCount
		}
		if p.Status != nil {
			if err := c.transitionEvent(tx, &ev, *p.Status); err != nil {
				return err
			}
		}
		return tx.SaveEvent(&ev)
	})
	if err != nil {
		return domain.Event{}, err
	}
	if p.Status != nil {
		c.log.Info("event status changed", zap.String("code", code), zap.String("status", string(ev.Status)))
	}
	return ev, nil
}

func (c *Controller) transitionEvent(tx *store.Tx, ev *domain.Event, to domain.EventStatus) error {
	var t engine.EventTransition
	switch to {
	case domain.EventStarted:
		t = engine.EventStart
	case domain.EventFinished:
		t = engine.EventFinish
	default:
		return engine.ErrUnsupportedTransition
	}

	next, err := engine.Event(ev.Status, t)
	if err != nil {
		return err
	}
	now := c.now()
	switch next {
	case domain.EventStarted:
		ev.StartedAt = &now
	case domain.EventFinished:
		ds, err := tx.Distances()
		if err != nil {
			return err
		}
		guard := engine.Guard{Event: ev.Status, Others: len(ds) - 1}
		for i := range ds {
			if ds[i].Status != domain.DistanceActive {
				continue
			}
			if ds[i].Status, err = engine.Distance(ds[i].Status, engine.DistanceFinish, guard); err != nil {
				return err
			}
			if err := tx.SaveDistance(&ds[i]); err != nil {
				return err
			}
		}
		ev.FinishedAt = &now
	}
	ev.Status = next
	return nil
}

func (c *Controller) Distances(ctx context.Context, code string) ([]domain.Distance, error) {
	s, err := c.stores.Open(ctx, code)
	if err != nil {
		return nil, err
	}
	var ds []domain.Distance
	err = s.View(ctx, func(tx *store.Tx) error {
		ds, err = tx.Distances()
		return err
	})
	return ds, err
}

func (c *Controller) AddDistance(ctx context.Context, code string, nd NewDistance) (domain.Distance, error) {
	nd.Title = strings.TrimSpace(nd.Title)
	if nd.Title == "" {
		return domain.Distance{}, ErrEmptyTitle
	}
	if nd.ShotsCount < 0 {
		return domain.Distance{}, ErrInvalidShots
	}
	s, err := c.stores.Open(ctx, code)
	if err != nil {
		return domain.Distance{}, err
	}

	d := domain.Distance{Title: nd.Title, ShotsCount: nd.ShotsCount, Status: domain.DistancePending}
	err = s.Update(ctx, func(tx *store.Tx) error {
		ev, err := tx.Event()
		if err != nil {
			return err
		}
		if err := engine.CanAddDistance(ev.Status); err != nil {
			return err
		}
		if d.ShotsCount == 0 {
			d.ShotsCount = ev.ShotsCount
		}
		return tx.CreateDistance(&d)
	})
	return d, err
}

func (c *Controller) ActivateDistance(ctx context.Context, code string, id uint) (domain.Distance, error) {
	st := domain.DistanceActive
	return c.UpdateDistance(ctx, code, id, DistancePatch{Status: &st})
}

func (c *Controller) DeactivateDistance(ctx context.Context, code string, id uint) (domain.Distance, error) {
	st := domain.DistancePending
	return c.UpdateDistance(ctx, code, id, DistancePatch{Status: &st})
}

func (c *Controller) FinishDistance(ctx context.Context, code string, id uint) (domain.Distance, error) {
	st := domain.DistanceFinished
	return c.UpdateDistance(ctx, code, id, DistancePatch{Status: &st})
}

// UpdateDistance applies title and shot edits first, then the status change,
// all in one unit.
func (c *Controller) UpdateDistance(ctx context.Context, code string, id uint, p DistancePatch) (domain.Distance, error) {
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return domain.Distance{}, ErrEmptyTitle
	}
	if p.ShotsCount != nil && *p.ShotsCount < 1 {
		return domain.Distance{}, ErrInvalidShots
	}
	s, err := c.stores.Open(ctx, code)
	if err != nil {
		return domain.Distance{}, err
	}

	var d domain.Distance
	err = s.Update(ctx, func(tx *store.Tx) error {
		ev, err := tx.Event()
		if err != nil {
			return err
		}
		if d, err = tx.Distance(id); err != nil {
			return err
		}
		ds, err := tx.Distances()
		if err != nil {
			return err
		}
		guard := engine.Guard{Event: ev.Status, Others: len(ds) - 1}

		if p.Title != nil || p.ShotsCount != nil {
			if _, err := engine.Distance(d.Status, engine.DistanceEdit, guard); err != nil {
				return err
			}
			if p.Title != nil {
				d.Title = strings.TrimSpace(*p.Title)
			}
			if p.ShotsCount != nil {
				d.ShotsCount = *p.ShotsCount
			}
		}
		if p.Status != nil {
			if err := transitionDistance(tx, &d, ds, *p.Status, guard); err != nil {
				return err
			}
		}
		return tx.SaveDistance(&d)
	})
	if err != nil {
		return domain.Distance{}, err
	}
	if p.Status != nil {
		c.log.Info("distance status changed",
			zap.String("code", code), zap.Uint("distance_id", id), zap.String("status", string(d.Status)))
	}
	return d, nil
}

func transitionDistance(tx *store.Tx, d *domain.Distance, all []domain.Distance, to domain.DistanceStatus, g engine.Guard) error {
	var t engine.DistanceTransition
	switch to {
	case domain.DistanceActive:
		t = engine.DistanceActivate
	case domain.DistancePending:
		t = engine.DistanceDeactivate
	case domain.DistanceFinished:
		t = engine.DistanceFinish
	default:
		return engine.ErrUnsupportedTransition
	}

	next, err := engine.Distance(d.Status, t, g)
	if err != nil {
		return err
	}
	if t == engine.DistanceActivate {
		// the previously active distance is finished before d takes over
		for i := range all {
			o := all[i]
			if o.ID == d.ID || o.Status != domain.DistanceActive {
				continue
			}
			if o.Status, err = engine.Distance(o.Status, engine.DistanceFinish, g); err != nil {
				return err
			}
			if err := tx.SaveDistance(&o); err != nil {
				return err
			}
		}
	}
	d.Status = next
	return nil
}

func (c *Controller) DeleteDistance(ctx context.Context, code string, id uint) error {
	s, err := c.stores.Open(ctx, code)
	if err != nil {
		return err
	}
	return s.Update(ctx, func(tx *store.Tx) error {
		ev, err := tx.Event()
		if err != nil {
			return err
		}
		d, err := tx.Distance(id)
		if err != nil {
			return err
		}
		n, err := tx.CountDistances()
		if err != nil {
			return err
		}
		if _, err := engine.Distance(d.Status, engine.DistanceDelete, engine.Guard{Event: ev.Status, Others: n - 1}); err != nil {
			return err
		}
		return tx.DeleteDistance(id)
	})
}
