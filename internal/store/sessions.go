package store

import (
	"fmt"

	"github.com/DoyleJ11/lane-scoring-backend/internal/domain"
	"gorm.io/gorm/clause"
)

func (t *Tx) Session(role domain.Role, identifier string) (domain.Session, error) {
	var s domain.Session
	err := t.db.Where("role = ? AND identifier = ?", role, identifier).First(&s).Error
	if err != nil {
		return domain.Session{}, translate(err, ErrSessionNotFound)
	}
	return s, nil
}

// SaveSession inserts or replaces the session for (role, identifier).
func (t *Tx) SaveSession(s *domain.Session) error {
	err := t.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "role"}, {Name: "identifier"}},
		DoUpdates: clause.AssignmentColumns([]string{"token_hash", "password"}),
	}).Create(s).Error
	if err != nil {
		return fmt.Errorf("save session %s/%s -> %w", s.Role, s.Identifier, err)
	}
	return nil
}

func (t *Tx) DeleteSession(role domain.Role, identifier string) (bool, error) {
	res := t.db.Where("role = ? AND identifier = ?", role, identifier).Delete(&domain.Session{})
	if res.Error != nil {
		return false, fmt.Errorf("delete session %s/%s -> %w", role, identifier, res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (t *Tx) Sessions(role domain.Role) ([]domain.Session, error) {
	var ss []domain.Session
	if err := t.db.Where("role = ?", role).Find(&ss).Error; err != nil {
		return nil, err
	}
	return ss, nil
}
