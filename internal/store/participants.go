package store

import (
	"fmt"

	"github.com/DoyleJ11/lane-scoring-backend/internal/domain"
)

// Participants lists participants ordered by lane and shift, optionally
// restricted to one lane.
func (t *Tx) Participants(lane *int) ([]domain.Participant, error) {
	q := t.db.Order("lane_number").Order("shift").Order("id")
	if lane != nil {
		q = q.Where("lane_number = ?", *lane)
	}
	var ps []domain.Participant
	if err := q.Find(&ps).Error; err != nil {
		return nil, err
	}
	return ps, nil
}

func (t *Tx) Participant(id uint) (domain.Participant, error) {
	var p domain.Participant
	if err := t.db.First(&p, id).Error; err != nil {
		return domain.Participant{}, translate(err, ErrParticipantNotFound)
	}
	return p, nil
}

// ParticipantsByID loads the given participants. Missing ids are absent from
// the returned map.
func (t *Tx) ParticipantsByID(ids []uint) (map[uint]domain.Participant, error) {
	out := make(map[uint]domain.Participant, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var ps []domain.Participant
	if err := t.db.Where("id IN ?", ids).Find(&ps).Error; err != nil {
		return nil, err
	}
	for _, p := range ps {
		out[p.ID] = p
	}
	return out, nil
}

func (t *Tx) CreateParticipant(p *domain.Participant) error {
	if err := t.db.Create(p).Error; err != nil {
		return fmt.Errorf("insert participant -> %w", translate(err, ErrParticipantNotFound))
	}
	return nil
}

func (t *Tx) SaveParticipant(p *domain.Participant) error {
	if err := t.db.Save(p).Error; err != nil {
		return fmt.Errorf("save participant %d -> %w", p.ID, translate(err, ErrParticipantNotFound))
	}
	return nil
}

// DeleteParticipant removes the participant and all of their results.
func (t *Tx) DeleteParticipant(id uint) error {
	if _, err := t.DeleteResults(id); err != nil {
		return err
	}
	res := t.db.Delete(&domain.Participant{}, id)
	if res.Error != nil {
		return fmt.Errorf("delete participant %d -> %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrParticipantNotFound
	}
	return nil
}
