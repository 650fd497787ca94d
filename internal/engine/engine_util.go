package engine

import "github.com/DoyleJ11/lane-scoring-backend/internal/domain"

// ActiveDistance returns the single active distance, if any.
func ActiveDistance(ds []domain.Distance) (domain.Distance, bool) {
	for _, d := range ds {
		if d.Status == domain.DistanceActive {
			return d, true
		}
	}
	return domain.Distance{}, false
}

// Counts reports whether a distance's shots contribute to totals.
func Counts(s domain.DistanceStatus) bool {
	return s == domain.DistanceActive || s == domain.DistanceFinished
}
