package store

import (
	"fmt"

	"github.com/DoyleJ11/lane-scoring-backend/internal/domain"
)

func (t *Tx) Distances() ([]domain.Distance, error) {
	var ds []domain.Distance
	if err := t.db.Order("sort_order").Order("id").Find(&ds).Error; err != nil {
		return nil, err
	}
	return ds, nil
}

func (t *Tx) Distance(id uint) (domain.Distance, error) {
	var d domain.Distance
	if err := t.db.First(&d, id).Error; err != nil {
		return domain.Distance{}, translate(err, ErrDistanceNotFound)
	}
	return d, nil
}

// CreateDistance appends d after the current last distance.
func (t *Tx) CreateDistance(d *domain.Distance) error {
	var next int
	err := t.db.Model(&domain.Distance{}).
		Select("COALESCE(MAX(sort_order) + 1, 0)").
		Scan(&next).Error
	if err != nil {
		return fmt.Errorf("next sort order -> %w", err)
	}
	d.SortOrder = next
	if d.Status == "" {
		d.Status = domain.DistancePending
	}
	if err := t.db.Create(d).Error; err != nil {
		return fmt.Errorf("insert distance -> %w", translate(err, ErrDistanceNotFound))
	}
	return nil
}

func (t *Tx) SaveDistance(d *domain.Distance) error {
	if err := t.db.Save(d).Error; err != nil {
		return fmt.Errorf("save distance %d -> %w", d.ID, translate(err, ErrDistanceNotFound))
	}
	return nil
}

// DeleteDistance removes the distance together with any shots recorded while
// it was active.
func (t *Tx) DeleteDistance(id uint) error {
	if err := t.db.Where("distance_id = ?", id).Delete(&domain.Result{}).Error; err != nil {
		return fmt.Errorf("delete distance %d results -> %w", id, err)
	}
	res := t.db.Delete(&domain.Distance{}, id)
	if res.Error != nil {
		return fmt.Errorf("delete distance %d -> %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrDistanceNotFound
	}
	return nil
}

func (t *Tx) CountDistances() (int, error) {
	var n int64
	if err := t.db.Model(&domain.Distance{}).Count(&n).Error; err != nil {
		return 0, err
	}
	return int(n), nil
}
