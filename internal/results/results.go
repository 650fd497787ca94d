package results

import (
	"context"
	"fmt"

	"github.com/DoyleJ11/lane-scoring-backend/internal/domain"
	"github.com/DoyleJ11/lane-scoring-backend/internal/engine"
	"github.com/DoyleJ11/lane-scoring-backend/internal/store"
	"github.com/DoyleJ11/lane-scoring-backend/pkg/types"
	"go.uber.org/zap"
)

var ErrScoreRange = fmt.Errorf("%w: score must be between 0 and 10", domain.ErrValidation)
var ErrShotNumber = fmt.Errorf("%w: shot_number must be at least 1", domain.ErrValidation)
var ErrMissingID = fmt.Errorf("%w: participant_id and distance_id are required", domain.ErrValidation)
var ErrNotRunning = fmt.Errorf("%w: distance is not active", domain.ErrInvalidTransition)
var ErrWrongLane = fmt.Errorf("%w: participant is not on this lane", domain.ErrForbidden)
var ErrActor = fmt.Errorf("%w: only the host or a lane may record results", domain.ErrForbidden)

const (
	MinScore = 0
	MaxScore = 10
)

type Shot struct {
	ParticipantID uint `json:"participant_id"`
	DistanceID    uint `json:"distance_id"`
	ShotNumber    int  `json:"shot_number"`
	Score         int  `json:"score"`
	IsX           bool `json:"is_x"`
}

type Stores interface {
	Open(ctx context.Context, code string) (*store.Store, error)
}

type Recorder struct {
	stores Stores
	log    *zap.Logger
}

func NewRecorder(stores Stores, log *zap.Logger) *Recorder {
	return &Recorder{stores: stores, log: log}
}

// Validate checks the batch shape. It never touches storage.
func Validate(shots []Shot) error {
	for i, s := range shots {
		if s.ParticipantID == 0 || s.DistanceID == 0 {
			return fmt.Errorf("shot %d: %w", i, ErrMissingID)
		}
		if s.ShotNumber < 1 {
			return fmt.Errorf("shot %d: %w", i, ErrShotNumber)
		}
		if s.Score < MinScore || s.Score > MaxScore {
			return fmt.Errorf("shot %d: %w", i, ErrScoreRange)
		}
	}
	return nil
}

// Save records a batch of shots for actor. The batch is written entirely or
// not at all; it returns the number of shots written.
func (r *Recorder) Save(ctx context.Context, code string, actor domain.Identity, shots []Shot) (int, error) {
	lane, isLane := actor.LaneNumber()
	if !actor.IsHost() && !isLane {
		return 0, ErrActor
	}
	if err := Validate(shots); err != nil {
		return 0, err
	}
	if len(shots) == 0 {
		return 0, nil
	}

	s, err := r.stores.Open(ctx, code)
	if err != nil {
		return 0, err
	}

	err = s.Update(ctx, func(tx *store.Tx) error {
		ev, err := tx.Event()
		if err != nil {
			return err
		}
		if err := engine.AcceptsResults(ev.Status); err != nil {
			return err
		}

		distances := map[uint]bool{}
		var pids []uint
		seen := map[uint]bool{}
		for _, sh := range shots {
			if !distances[sh.DistanceID] {
				d, err := tx.Distance(sh.DistanceID)
				if err != nil {
					return err
				}
				if d.Status != domain.DistanceActive {
					return fmt.Errorf("distance %d: %w", d.ID, ErrNotRunning)
				}
				distances[sh.DistanceID] = true
			}
			if !seen[sh.ParticipantID] {
				seen[sh.ParticipantID] = true
				pids = append(pids, sh.ParticipantID)
			}
		}

		ps, err := tx.ParticipantsByID(pids)
		if err != nil {
			return err
		}
		for _, id := range pids {
			p, ok := ps[id]
			if !ok {
				return fmt.Errorf("participant %d: %w", id, store.ErrParticipantNotFound)
			}
			if isLane && p.LaneNumber != lane {
				return fmt.Errorf("participant %d: %w", id, ErrWrongLane)
			}
		}

		rows := make([]domain.Result, len(shots))
		for i, sh := range shots {
			rows[i] = domain.Result{
				ParticipantID: sh.ParticipantID,
				DistanceID:    sh.DistanceID,
				ShotNumber:    sh.ShotNumber,
				Score:         sh.Score,
				IsX:           sh.IsX,
			}
		}
		return tx.UpsertResults(rows)
	})
	if err != nil {
		return 0, err
	}
	r.log.Debug("results saved", zap.String("code", code), zap.Stringer("actor", actor), zap.Int("count", len(shots)))
	return len(shots), nil
}

// ParticipantState reports the participant's standing per distance. Shot
// detail is only exposed for the active distance.
func (r *Recorder) ParticipantState(ctx context.Context, code string, participantID uint) ([]types.DistanceResult, error) {
	s, err := r.stores.Open(ctx, code)
	if err != nil {
		return nil, err
	}

	var out []types.DistanceResult
	err = s.View(ctx, func(tx *store.Tx) error {
		if _, err := tx.Participant(participantID); err != nil {
			return err
		}
		ds, err := tx.Distances()
		if err != nil {
			return err
		}
		aggs, err := tx.Aggregates(store.ResultFilter{ParticipantID: participantID})
		if err != nil {
			return err
		}
		rs, err := tx.Results(store.ResultFilter{ParticipantID: participantID})
		if err != nil {
			return err
		}

		byDistance := make(map[uint]store.Aggregate, len(aggs))
		for _, a := range aggs {
			byDistance[a.DistanceID] = a
		}
		shots := map[uint][]types.Shot{}
		for _, res := range rs {
			shots[res.DistanceID] = append(shots[res.DistanceID], toShot(res))
		}

		out = make([]types.DistanceResult, 0, len(ds))
		for _, d := range ds {
			dr := types.DistanceResult{
				DistanceID: d.ID,
				Title:      d.Title,
				ShotsCount: d.ShotsCount,
				Status:     string(d.Status),
				Shots:      []types.Shot{},
			}
			if engine.Counts(d.Status) {
				a := byDistance[d.ID]
				total := a.TotalScore
				dr.TotalScore = &total
				dr.XCount = a.XCount
			}
			if d.Status == domain.DistanceActive && shots[d.ID] != nil {
				dr.Shots = shots[d.ID]
			}
			out = append(out, dr)
		}
		return nil
	})
	return out, err
}

// ParticipantTotal sums the participant's shots over active and finished
// distances.
func (r *Recorder) ParticipantTotal(ctx context.Context, code string, participantID uint) (int, error) {
	s, err := r.stores.Open(ctx, code)
	if err != nil {
		return 0, err
	}
	total := 0
	err = s.View(ctx, func(tx *store.Tx) error {
		ds, err := tx.Distances()
		if err != nil {
			return err
		}
		counts := map[uint]bool{}
		for _, d := range ds {
			counts[d.ID] = engine.Counts(d.Status)
		}
		aggs, err := tx.Aggregates(store.ResultFilter{ParticipantID: participantID})
		if err != nil {
			return err
		}
		for _, a := range aggs {
			if counts[a.DistanceID] {
				total += a.TotalScore
			}
		}
		return nil
	})
	return total, err
}

// Reset deletes every result of a participant.
func (r *Recorder) Reset(ctx context.Context, code string, participantID uint) (int64, error) {
	s, err := r.stores.Open(ctx, code)
	if err != nil {
		return 0, err
	}
	var n int64
	err = s.Update(ctx, func(tx *store.Tx) error {
		ev, err := tx.Event()
		if err != nil {
			return err
		}
		if ev.Status == domain.EventFinished {
			return engine.ErrEventFinished
		}
		if _, err := tx.Participant(participantID); err != nil {
			return err
		}
		n, err = tx.DeleteResults(participantID)
		return err
	})
	if err == nil {
		r.log.Info("participant results reset", zap.String("code", code), zap.Uint("participant_id", participantID), zap.Int64("deleted", n))
	}
	return n, err
}

func toShot(r domain.Result) types.Shot {
	return types.Shot{ShotNumber: r.ShotNumber, Score: r.Score, IsX: r.IsX}
}
