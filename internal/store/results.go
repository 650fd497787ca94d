package store

import (
	"fmt"
	"time"

	"github.com/DoyleJ11/lane-scoring-backend/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ResultFilter narrows result queries. Zero fields match everything.
type ResultFilter struct {
	ParticipantID uint
	DistanceID    uint
}

func (f ResultFilter) apply(db *gorm.DB) *gorm.DB {
	if f.ParticipantID != 0 {
		db = db.Where("participant_id = ?", f.ParticipantID)
	}
	if f.DistanceID != 0 {
		db = db.Where("distance_id = ?", f.DistanceID)
	}
	return db
}

// Aggregate is the per (participant, distance) summary of recorded shots.
type Aggregate struct {
	ParticipantID uint
	DistanceID    uint
	TotalScore    int
	Shots         int
	XCount        int
	TenCount      int
	MissCount     int
}

// UpsertResults writes rs keyed on (participant, distance, shot_number).
// A later entry for the same key in rs wins.
func (t *Tx) UpsertResults(rs []domain.Result) error {
	if len(rs) == 0 {
		return nil
	}
	type key struct {
		p, d uint
		n    int
	}
	now := time.Now().UTC()
	idx := make(map[key]int, len(rs))
	rows := make([]domain.Result, 0, len(rs))
	for _, r := range rs {
		r.ID = 0
		r.CreatedAt = now
		k := key{r.ParticipantID, r.DistanceID, r.ShotNumber}
		if i, ok := idx[k]; ok {
			rows[i] = r
			continue
		}
		idx[k] = len(rows)
		rows = append(rows, r)
	}

	err := t.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "participant_id"}, {Name: "distance_id"}, {Name: "shot_number"}},
		DoUpdates: clause.AssignmentColumns([]string{"score", "is_x", "created_at"}),
	}).Create(&rows).Error
	if err != nil {
		return fmt.Errorf("upsert results -> %w", translate(err, ErrParticipantNotFound))
	}
	return nil
}

func (t *Tx) Results(f ResultFilter) ([]domain.Result, error) {
	var rs []domain.Result
	if err := f.apply(t.db).Order("distance_id").Order("participant_id").Order("shot_number").Find(&rs).Error; err != nil {
		return nil, err
	}
	return rs, nil
}

func (t *Tx) Aggregates(f ResultFilter) ([]Aggregate, error) {
	var out []Aggregate
	err := f.apply(t.db.Model(&domain.Result{})).
		Select(`participant_id, distance_id,
			COALESCE(SUM(score), 0) AS total_score,
			COUNT(*) AS shots,
			SUM(CASE WHEN is_x THEN 1 ELSE 0 END) AS x_count,
			SUM(CASE WHEN score = 10 THEN 1 ELSE 0 END) AS ten_count,
			SUM(CASE WHEN score = 0 THEN 1 ELSE 0 END) AS miss_count`).
		Group("participant_id, distance_id").
		Order("participant_id").Order("distance_id").
		Scan(&out).Error
	if err != nil {
		return nil, fmt.Errorf("aggregate results -> %w", err)
	}
	return out, nil
}

func (t *Tx) DeleteResults(participantID uint) (int64, error) {
	res := t.db.Where("participant_id = ?", participantID).Delete(&domain.Result{})
	if res.Error != nil {
		return 0, fmt.Errorf("delete results of %d -> %w", participantID, res.Error)
	}
	return res.RowsAffected, nil
}
