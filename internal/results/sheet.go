package results

import (
	"context"
	"sort"

	"github.com/DoyleJ11/lane-scoring-backend/internal/domain"
	"github.com/DoyleJ11/lane-scoring-backend/internal/store"
	"github.com/DoyleJ11/lane-scoring-backend/pkg/types"
)

const SeriesSize = 3

// GroupSeries splits shots into series of SeriesSize consecutive shot numbers.
// It yields every series needed to cover shotsCount plus any later series
// that holds a shot; a trailing series may hold fewer shots.
func GroupSeries(shots []types.Shot, shotsCount int) []types.Series {
	nominal := (shotsCount + SeriesSize - 1) / SeriesSize
	byIndex := make(map[int]*types.Series, nominal)
	for i := 0; i < nominal; i++ {
		byIndex[i] = &types.Series{Number: i + 1, Shots: []types.Shot{}}
	}
	for _, s := range shots {
		if s.ShotNumber < 1 {
			continue
		}
		i := (s.ShotNumber - 1) / SeriesSize
		se := byIndex[i]
		if se == nil {
			se = &types.Series{Number: i + 1, Shots: []types.Shot{}}
			byIndex[i] = se
		}
		se.Shots = append(se.Shots, s)
		se.Sum += s.Score
	}

	out := make([]types.Series, 0, len(byIndex))
	for _, se := range byIndex {
		if len(se.Shots) > 0 {
			se.Average = float64(se.Sum) / float64(len(se.Shots))
		}
		out = append(out, *se)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out
}

// DistanceSheet lists every participant with shots in the distance. Series
// are left out once the distance is finished.
func (r *Recorder) DistanceSheet(ctx context.Context, code string, distanceID uint) (types.Sheet, error) {
	s, err := r.stores.Open(ctx, code)
	if err != nil {
		return types.Sheet{}, err
	}

	var sheet types.Sheet
	err = s.View(ctx, func(tx *store.Tx) error {
		d, err := tx.Distance(distanceID)
		if err != nil {
			return err
		}
		sheet = types.Sheet{
			DistanceID: d.ID,
			Title:      d.Title,
			ShotsCount: d.ShotsCount,
			Status:     string(d.Status),
			Rows:       []types.SheetRow{},
		}

		rs, err := tx.Results(store.ResultFilter{DistanceID: distanceID})
		if err != nil {
			return err
		}
		if len(rs) == 0 {
			return nil
		}
		ps, err := tx.Participants(nil)
		if err != nil {
			return err
		}

		byParticipant := map[uint][]domain.Result{}
		for _, res := range rs {
			byParticipant[res.ParticipantID] = append(byParticipant[res.ParticipantID], res)
		}
		for _, p := range ps {
			mine := byParticipant[p.ID]
			if len(mine) == 0 {
				continue
			}
			row := types.SheetRow{ParticipantID: p.ID, Name: p.Name, LaneShift: p.LaneShift()}
			shots := make([]types.Shot, 0, len(mine))
			for _, res := range mine {
				row.TotalScore += res.Score
				if res.IsX {
					row.XCount++
				}
				if res.Score == MaxScore {
					row.TenCount++
				}
				shots = append(shots, toShot(res))
			}
			if d.Status != domain.DistanceFinished {
				row.Series = GroupSeries(shots, d.ShotsCount)
			}
			sheet.Rows = append(sheet.Rows, row)
		}
		return nil
	})
	return sheet, err
}
