package results

import (
	"context"
	"math"
	"testing"

	"github.com/DoyleJ11/lane-scoring-backend/internal/domain"
	"github.com/DoyleJ11/lane-scoring-backend/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroupSeries(t *testing.T) {
	shots := []types.Shot{
		{ShotNumber: 1, Score: 10},
		{ShotNumber: 2, Score: 9},
		{ShotNumber: 3, Score: 8},
		{ShotNumber: 4, Score: 7},
		{ShotNumber: 7, Score: 6},
	}

	got := GroupSeries(shots, 8)
	require.Len(t, got, 3)

	assert.Equal(t, 1, got[0].Number)
	assert.Equal(t, 27, got[0].Sum)
	assert.InDelta(t, 9.0, got[0].Average, 1e-9)

	assert.Equal(t, 7, got[1].Sum)
	assert.Len(t, got[1].Shots, 1)
	assert.InDelta(t, 7.0, got[1].Average, 1e-9)

	assert.Equal(t, 6, got[2].Sum)

	// shots past the nominal count still land in a series
	got = GroupSeries([]types.Shot{{ShotNumber: 10, Score: 5}}, 6)
	require.Len(t, got, 3)
	assert.Empty(t, got[1].Shots)
	assert.Zero(t, got[1].Average)
	assert.Equal(t, 4, got[2].Number)
	assert.Equal(t, 5, got[2].Sum)
}

func TestGroupSeriesFarShotNumbers(t *testing.T) {
	tests := []struct {
		name       string
		shotNumber int
		wantNumber int
	}{
		{"three million", 3_000_000, 1_000_000},
		{"max int", math.MaxInt64, (math.MaxInt64-1)/SeriesSize + 1},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := GroupSeries([]types.Shot{{ShotNumber: 1, Score: 9}, {ShotNumber: tc.shotNumber, Score: 7}}, 30)
			if len(got) != 11 {
				t.Fatalf("got %d series, want 11", len(got))
			}
			if got[0].Sum != 9 {
				t.Fatalf("first series sum = %d, want 9", got[0].Sum)
			}
			last := got[len(got)-1]
			if last.Number != tc.wantNumber || last.Sum != 7 || len(last.Shots) != 1 {
				t.Fatalf("last series = %+v, want number %d holding the shot", last, tc.wantNumber)
			}
		})
	}
}

func TestDistanceSheet(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.start(t)

	_, err := f.rec.Save(ctx, "ABCD", domain.Host(), []Shot{
		{ParticipantID: f.anna.ID, DistanceID: f.distance.ID, ShotNumber: 1, Score: 10, IsX: true},
		{ParticipantID: f.anna.ID, DistanceID: f.distance.ID, ShotNumber: 2, Score: 9},
		{ParticipantID: f.anna.ID, DistanceID: f.distance.ID, ShotNumber: 4, Score: 8},
	})
	require.NoError(t, err)

	sheet, err := f.rec.DistanceSheet(ctx, "ABCD", f.distance.ID)
	require.NoError(t, err)
	assert.Equal(t, "active", sheet.Status)
	require.Len(t, sheet.Rows, 1, "participants without shots are left out")

	row := sheet.Rows[0]
	assert.Equal(t, "1A", row.LaneShift)
	assert.Equal(t, 27, row.TotalScore)
	assert.Equal(t, 1, row.XCount)
	assert.Equal(t, 1, row.TenCount)
	require.Len(t, row.Series, 4)
	assert.Equal(t, 19, row.Series[0].Sum)
	assert.Equal(t, 8, row.Series[1].Sum)

	_, err = f.life.FinishDistance(ctx, "ABCD", f.distance.ID)
	require.NoError(t, err)
	sheet, err = f.rec.DistanceSheet(ctx, "ABCD", f.distance.ID)
	require.NoError(t, err)
	require.Len(t, sheet.Rows, 1)
	assert.Equal(t, 27, sheet.Rows[0].TotalScore)
	assert.Nil(t, sheet.Rows[0].Series)

	_, err = f.rec.DistanceSheet(ctx, "ABCD", 999)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDistanceSheetWithFarShotNumber(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.start(t)

	_, err := f.rec.Save(ctx, "ABCD", domain.Host(), []Shot{
		{ParticipantID: f.anna.ID, DistanceID: f.distance.ID, ShotNumber: 3_000_000, Score: 6},
	})
	require.NoError(t, err)

	sheet, err := f.rec.DistanceSheet(ctx, "ABCD", f.distance.ID)
	require.NoError(t, err)
	require.Len(t, sheet.Rows, 1)
	assert.Equal(t, 6, sheet.Rows[0].TotalScore)

	series := sheet.Rows[0].Series
	require.Len(t, series, (f.distance.ShotsCount+SeriesSize-1)/SeriesSize+1)
	assert.Equal(t, 1_000_000, series[len(series)-1].Number)
	assert.Equal(t, 6, series[len(series)-1].Sum)
}
