package store

import (
	"fmt"

	"github.com/DoyleJ11/lane-scoring-backend/internal/domain"
	"gorm.io/gorm/clause"
)

func (t *Tx) Event() (domain.Event, error) {
	var ev domain.Event
	if err := t.db.First(&ev).Error; err != nil {
		return domain.Event{}, translate(err, ErrEventNotFound)
	}
	return ev, nil
}

func (t *Tx) CreateEvent(ev *domain.Event) error {
	if err := t.db.Create(ev).Error; err != nil {
		return fmt.Errorf("insert event -> %w", translate(err, ErrEventNotFound))
	}
	return nil
}

func (t *Tx) SaveEvent(ev *domain.Event) error {
	if err := t.db.Save(ev).Error; err != nil {
		return fmt.Errorf("save event -> %w", translate(err, ErrEventNotFound))
	}
	return nil
}

func (t *Tx) Property(key string) (string, bool, error) {
	var props []domain.Property
	if err := t.db.Where("key = ?", key).Limit(1).Find(&props).Error; err != nil {
		return "", false, err
	}
	if len(props) == 0 {
		return "", false, nil
	}
	return props[0].Value, true, nil
}

func (t *Tx) Properties() (map[string]string, error) {
	var props []domain.Property
	if err := t.db.Order("key").Find(&props).Error; err != nil {
		return nil, err
	}
	out := make(map[string]string, len(props))
	for _, p := range props {
		out[p.Key] = p.Value
	}
	return out, nil
}

func (t *Tx) SetProperty(key, value string) error {
	err := t.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value"}),
	}).Create(&domain.Property{Key: key, Value: value}).Error
	if err != nil {
		return fmt.Errorf("set property %s -> %w", key, err)
	}
	return nil
}
