package roster

import (
	"context"
	"fmt"
	"strings"

	"github.com/DoyleJ11/lane-scoring-backend/internal/domain"
	"github.com/DoyleJ11/lane-scoring-backend/internal/engine"
	"github.com/DoyleJ11/lane-scoring-backend/internal/store"
	validation "github.com/go-ozzo/ozzo-validation"
	"go.uber.org/zap"
)

var ErrSelfRegistrationDisabled = fmt.Errorf("%w: lanes may not manage participants for this event", domain.ErrForbidden)
var ErrOtherLane = fmt.Errorf("%w: participant belongs to another lane", domain.ErrForbidden)
var ErrActor = fmt.Errorf("%w: only the host or a lane may manage participants", domain.ErrForbidden)

type Input struct {
	Name           string  `json:"name"`
	LaneNumber     int     `json:"lane_number"`
	Shift          string  `json:"shift"`
	Gender         string  `json:"gender"`
	AgeCategory    string  `json:"age_category"`
	ShootingType   string  `json:"shooting_type"`
	GroupType      string  `json:"group_type"`
	PersonalNumber *string `json:"personal_number"`
}

func (in *Input) normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Shift = strings.ToUpper(strings.TrimSpace(in.Shift))
	in.Gender = strings.TrimSpace(in.Gender)
	in.AgeCategory = strings.TrimSpace(in.AgeCategory)
	in.ShootingType = strings.TrimSpace(in.ShootingType)
	in.GroupType = strings.TrimSpace(in.GroupType)
	if in.PersonalNumber != nil {
		pn := strings.TrimSpace(*in.PersonalNumber)
		if pn == "" {
			in.PersonalNumber = nil
		} else {
			in.PersonalNumber = &pn
		}
	}
}

func (in Input) Validate() error {
	err := validation.ValidateStruct(&in,
		validation.Field(&in.Name, validation.Required, validation.Length(1, 120)),
		validation.Field(&in.LaneNumber, validation.Required, validation.Min(1)),
		validation.Field(&in.Shift, validation.Required, validation.Length(1, 8)),
	)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrValidation, err)
	}
	return nil
}

func (in Input) apply(p *domain.Participant) {
	p.Name = in.Name
	p.LaneNumber = in.LaneNumber
	p.Shift = in.Shift
	p.Gender = in.Gender
	p.AgeCategory = in.AgeCategory
	p.ShootingType = in.ShootingType
	p.GroupType = in.GroupType
	p.PersonalNumber = in.PersonalNumber
}

type Stores interface {
	Open(ctx context.Context, code string) (*store.Store, error)
}

type Roster struct {
	stores Stores
	log    *zap.Logger
}

func New(stores Stores, log *zap.Logger) *Roster {
	return &Roster{stores: stores, log: log}
}

// Add registers a participant. A lane may only add to itself and only while
// the event allows self-registration.
func (r *Roster) Add(ctx context.Context, code string, actor domain.Identity, in Input) (domain.Participant, error) {
	in.normalize()
	if err := in.Validate(); err != nil {
		return domain.Participant{}, err
	}
	s, err := r.stores.Open(ctx, code)
	if err != nil {
		return domain.Participant{}, err
	}

	var p domain.Participant
	err = s.Update(ctx, func(tx *store.Tx) error {
		if err := writable(tx); err != nil {
			return err
		}
		if err := permitted(tx, actor, in.LaneNumber); err != nil {
			return err
		}
		in.apply(&p)
		return tx.CreateParticipant(&p)
	})
	if err != nil {
		return domain.Participant{}, err
	}
	r.log.Info("participant added", zap.String("code", code), zap.Stringer("actor", actor), zap.Uint("participant_id", p.ID))
	return p, nil
}

// Update replaces a participant's details. A lane may only edit its own
// participants and may not move them to another lane.
func (r *Roster) Update(ctx context.Context, code string, actor domain.Identity, id uint, in Input) (domain.Participant, error) {
	in.normalize()
	if err := in.Validate(); err != nil {
		return domain.Participant{}, err
	}
	s, err := r.stores.Open(ctx, code)
	if err != nil {
		return domain.Participant{}, err
	}

	var p domain.Participant
	err = s.Update(ctx, func(tx *store.Tx) error {
		if err := writable(tx); err != nil {
			return err
		}
		var err error
		if p, err = tx.Participant(id); err != nil {
			return err
		}
		if err := permitted(tx, actor, p.LaneNumber); err != nil {
			return err
		}
		if err := permitted(tx, actor, in.LaneNumber); err != nil {
			return err
		}
		in.apply(&p)
		return tx.SaveParticipant(&p)
	})
	return p, err
}

// Delete removes a participant along with their results.
func (r *Roster) Delete(ctx context.Context, code string, id uint) error {
	s, err := r.stores.Open(ctx, code)
	if err != nil {
		return err
	}
	err = s.Update(ctx, func(tx *store.Tx) error {
		if err := writable(tx); err != nil {
			return err
		}
		return tx.DeleteParticipant(id)
	})
	if err == nil {
		r.log.Info("participant deleted", zap.String("code", code), zap.Uint("participant_id", id))
	}
	return err
}

// List returns participants ordered by lane and shift, optionally for one lane.
func (r *Roster) List(ctx context.Context, code string, lane *int) ([]domain.Participant, error) {
	s, err := r.stores.Open(ctx, code)
	if err != nil {
		return nil, err
	}
	var ps []domain.Participant
	err = s.View(ctx, func(tx *store.Tx) error {
		ps, err = tx.Participants(lane)
		return err
	})
	return ps, err
}

// SelfRegistration reports whether lanes may add participants.
func (r *Roster) SelfRegistration(ctx context.Context, code string) (bool, error) {
	s, err := r.stores.Open(ctx, code)
	if err != nil {
		return false, err
	}
	var allowed bool
	err = s.View(ctx, func(tx *store.Tx) error {
		v, ok, err := tx.Property(domain.PropAllowAddParticipant)
		allowed = domain.AllowsSelfRegistration(v, ok)
		return err
	})
	return allowed, err
}

func writable(tx *store.Tx) error {
	ev, err := tx.Event()
	if err != nil {
		return err
	}
	if ev.Status == domain.EventFinished {
		return engine.ErrEventFinished
	}
	return nil
}

func permitted(tx *store.Tx, actor domain.Identity, lane int) error {
	if actor.IsHost() {
		return nil
	}
	own, ok := actor.LaneNumber()
	if !ok {
		return ErrActor
	}
	v, set, err := tx.Property(domain.PropAllowAddParticipant)
	if err != nil {
		return err
	}
	if !domain.AllowsSelfRegistration(v, set) {
		return ErrSelfRegistrationDisabled
	}
	if own != lane {
		return ErrOtherLane
	}
	return nil
}
