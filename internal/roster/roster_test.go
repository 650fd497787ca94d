package roster

import (
	"context"
	"testing"

	"github.com/DoyleJ11/lane-scoring-backend/internal/domain"
	"github.com/DoyleJ11/lane-scoring-backend/internal/engine"
	"github.com/DoyleJ11/lane-scoring-backend/internal/lifecycle"
	"github.com/DoyleJ11/lane-scoring-backend/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newRoster(t *testing.T) (*Roster, *store.Manager) {
	t.Helper()
	opener, err := store.NewSQLiteOpener(t.TempDir())
	require.NoError(t, err)
	m := store.NewManager(opener, zaptest.NewLogger(t))
	t.Cleanup(func() { _ = m.Close() })
	_, _, err = m.Create(context.Background(), "ABCD", 10)
	require.NoError(t, err)
	return New(m, zaptest.NewLogger(t)), m
}

func disableSelfRegistration(t *testing.T, m *store.Manager) {
	t.Helper()
	ctx := context.Background()
	s, err := m.Open(ctx, "ABCD")
	require.NoError(t, err)
	require.NoError(t, s.Update(ctx, func(tx *store.Tx) error {
		return tx.SetProperty(domain.PropAllowAddParticipant, "false")
	}))
}

func TestAddNormalizesAndValidates(t *testing.T) {
	ctx := context.Background()
	r, _ := newRoster(t)

	blank := "  "
	p, err := r.Add(ctx, "ABCD", domain.Host(), Input{Name: " Anna ", LaneNumber: 3, Shift: "b", PersonalNumber: &blank})
	require.NoError(t, err)
	assert.Equal(t, "Anna", p.Name)
	assert.Equal(t, "B", p.Shift)
	assert.Nil(t, p.PersonalNumber)
	assert.NotZero(t, p.ID)

	_, err = r.Add(ctx, "ABCD", domain.Host(), Input{Name: "", LaneNumber: 3, Shift: "A"})
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = r.Add(ctx, "ABCD", domain.Host(), Input{Name: "X", LaneNumber: 0, Shift: "A"})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestLaneSelfRegistration(t *testing.T) {
	ctx := context.Background()
	r, m := newRoster(t)

	enabled, err := r.SelfRegistration(ctx, "ABCD")
	require.NoError(t, err)
	assert.True(t, enabled)

	p, err := r.Add(ctx, "ABCD", domain.Lane(4), Input{Name: "Lane four", LaneNumber: 4, Shift: "A"})
	require.NoError(t, err)

	_, err = r.Add(ctx, "ABCD", domain.Lane(4), Input{Name: "Elsewhere", LaneNumber: 5, Shift: "A"})
	assert.ErrorIs(t, err, ErrOtherLane)

	_, err = r.Update(ctx, "ABCD", domain.Lane(4), p.ID, Input{Name: "Moved", LaneNumber: 5, Shift: "A"})
	assert.ErrorIs(t, err, ErrOtherLane)

	_, err = r.Update(ctx, "ABCD", domain.Lane(5), p.ID, Input{Name: "Stolen", LaneNumber: 5, Shift: "A"})
	assert.ErrorIs(t, err, ErrOtherLane)

	updated, err := r.Update(ctx, "ABCD", domain.Lane(4), p.ID, Input{Name: "Renamed", LaneNumber: 4, Shift: "B"})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)

	_, err = r.Add(ctx, "ABCD", domain.Viewer(), Input{Name: "V", LaneNumber: 4, Shift: "A"})
	assert.ErrorIs(t, err, ErrActor)

	disableSelfRegistration(t, m)
	enabled, err = r.SelfRegistration(ctx, "ABCD")
	require.NoError(t, err)
	assert.False(t, enabled)

	_, err = r.Add(ctx, "ABCD", domain.Lane(4), Input{Name: "Late", LaneNumber: 4, Shift: "C"})
	assert.ErrorIs(t, err, ErrSelfRegistrationDisabled)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = r.Add(ctx, "ABCD", domain.Host(), Input{Name: "Host add", LaneNumber: 4, Shift: "C"})
	require.NoError(t, err)
}

func TestListOrderAndFilter(t *testing.T) {
	ctx := context.Background()
	r, _ := newRoster(t)

	for _, in := range []Input{
		{Name: "c", LaneNumber: 2, Shift: "B"},
		{Name: "a", LaneNumber: 1, Shift: "A"},
		{Name: "b", LaneNumber: 2, Shift: "A"},
	} {
		_, err := r.Add(ctx, "ABCD", domain.Host(), in)
		require.NoError(t, err)
	}

	ps, err := r.List(ctx, "ABCD", nil)
	require.NoError(t, err)
	var names []string
	for _, p := range ps {
		names = append(names, p.Name)
	}
	assert.Equal(t, []string{"a", "b", "c"}, names)

	lane := 2
	ps, err = r.List(ctx, "ABCD", &lane)
	require.NoError(t, err)
	assert.Len(t, ps, 2)
}

func TestDeleteAndFinishedEvent(t *testing.T) {
	ctx := context.Background()
	r, m := newRoster(t)

	p, err := r.Add(ctx, "ABCD", domain.Host(), Input{Name: "Anna", LaneNumber: 1, Shift: "A"})
	require.NoError(t, err)
	require.NoError(t, r.Delete(ctx, "ABCD", p.ID))
	assert.ErrorIs(t, r.Delete(ctx, "ABCD", p.ID), store.ErrParticipantNotFound)

	life := lifecycle.NewController(m, zaptest.NewLogger(t), domain.MaxCodeLen)
	_, err = life.StartEvent(ctx, "ABCD")
	require.NoError(t, err)
	_, err = life.FinishEvent(ctx, "ABCD")
	require.NoError(t, err)

	_, err = r.Add(ctx, "ABCD", domain.Host(), Input{Name: "Late", LaneNumber: 1, Shift: "A"})
	assert.ErrorIs(t, err, engine.ErrEventFinished)
}
