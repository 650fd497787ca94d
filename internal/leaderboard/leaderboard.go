package leaderboard

import (
	"context"
	"sort"
	"strings"

	"github.com/DoyleJ11/lane-scoring-backend/internal/domain"
	"github.com/DoyleJ11/lane-scoring-backend/internal/engine"
	"github.com/DoyleJ11/lane-scoring-backend/internal/store"
	"github.com/DoyleJ11/lane-scoring-backend/pkg/types"
)

const Unknown = "unknown"

type Stores interface {
	Open(ctx context.Context, code string) (*store.Store, error)
}

type Aggregator struct {
	stores Stores
}

func NewAggregator(stores Stores) *Aggregator {
	return &Aggregator{stores: stores}
}

// GroupKey is the demographic bucket of a participant.
type GroupKey struct {
	AgeCategory  string
	GroupType    string
	Gender       string
	ShootingType string
}

func KeyOf(p domain.Participant) GroupKey {
	return GroupKey{
		AgeCategory:  orUnknown(p.AgeCategory),
		GroupType:    orUnknown(p.GroupType),
		Gender:       orUnknown(p.Gender),
		ShootingType: orUnknown(p.ShootingType),
	}
}

func (k GroupKey) String() string {
	return strings.Join([]string{k.AgeCategory, k.GroupType, k.Gender, k.ShootingType}, "_")
}

func orUnknown(s string) string {
	if s = strings.TrimSpace(s); s == "" {
		return Unknown
	}
	return s
}

// Compute builds the grouped ranking of an event from its current results.
func (a *Aggregator) Compute(ctx context.Context, code string) (types.Leaderboard, error) {
	s, err := a.stores.Open(ctx, code)
	if err != nil {
		return types.Leaderboard{}, err
	}

	var (
		distances    []domain.Distance
		participants []domain.Participant
		aggregates   []store.Aggregate
	)
	err = s.Snapshot(ctx, func(tx *store.Tx) error {
		var err error
		if distances, err = tx.Distances(); err != nil {
			return err
		}
		if participants, err = tx.Participants(nil); err != nil {
			return err
		}
		aggregates, err = tx.Aggregates(store.ResultFilter{})
		return err
	})
	if err != nil {
		return types.Leaderboard{}, err
	}

	return Build(distances, participants, aggregates), nil
}

// Build ranks participants within their groups. Participants without any
// recorded shot are left out.
func Build(distances []domain.Distance, participants []domain.Participant, aggregates []store.Aggregate) types.Leaderboard {
	type pd struct{ p, d uint }
	byKey := make(map[pd]store.Aggregate, len(aggregates))
	shots := map[uint]int{}
	for _, a := range aggregates {
		byKey[pd{a.ParticipantID, a.DistanceID}] = a
		shots[a.ParticipantID] += a.Shots
	}

	groups := map[GroupKey]*types.LeaderboardGroup{}
	for _, p := range participants {
		if shots[p.ID] == 0 {
			continue
		}
		e := types.LeaderboardEntry{
			ParticipantID:  p.ID,
			Name:           p.Name,
			LaneShift:      p.LaneShift(),
			PersonalNumber: p.PersonalNumber,
			DistanceScores: make([]types.DistanceScore, 0, len(distances)),
		}
		for _, d := range distances {
			ds := types.DistanceScore{DistanceID: d.ID, Title: d.Title, Status: string(d.Status)}
			if engine.Counts(d.Status) {
				agg := byKey[pd{p.ID, d.ID}]
				score := agg.TotalScore
				ds.Score = &score
				ds.XCount = agg.XCount
				e.TotalScore += agg.TotalScore
				e.XCount += agg.XCount
				e.TenCount += agg.TenCount
				e.MissCount += agg.MissCount
				e.Shots += agg.Shots
			}
			e.DistanceScores = append(e.DistanceScores, ds)
		}

		key := KeyOf(p)
		grp, ok := groups[key]
		if !ok {
			grp = &types.LeaderboardGroup{
				Key:          key.String(),
				AgeCategory:  key.AgeCategory,
				GroupType:    key.GroupType,
				Gender:       key.Gender,
				ShootingType: key.ShootingType,
			}
			groups[key] = grp
		}
		grp.Entries = append(grp.Entries, e)
	}

	out := types.Leaderboard{Groups: make([]types.LeaderboardGroup, 0, len(groups))}
	for _, grp := range groups {
		Rank(grp.Entries)
		out.Groups = append(out.Groups, *grp)
	}
	sort.Slice(out.Groups, func(i, j int) bool { return out.Groups[i].Key < out.Groups[j].Key })
	return out
}

// Rank orders entries by total, then x count, then ten count, all descending.
// Equal entries keep their order.
func Rank(entries []types.LeaderboardEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.TotalScore != b.TotalScore {
			return a.TotalScore > b.TotalScore
		}
		if a.XCount != b.XCount {
			return a.XCount > b.XCount
		}
		return a.TenCount > b.TenCount
	})
}
