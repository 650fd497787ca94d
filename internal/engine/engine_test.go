package engine

import (
	"errors"
	"testing"

	"github.com/DoyleJ11/lane-scoring-backend/internal/domain"
)

func TestEventTransitions(t *testing.T) {
	cases := []struct {
		name    string
		from    domain.EventStatus
		t       EventTransition
		want    domain.EventStatus
		wantErr error
	}{
		{name: "start from created", from: domain.EventCreated, t: EventStart, want: domain.EventStarted},
		{name: "start twice", from: domain.EventStarted, t: EventStart, wantErr: ErrEventAlreadyStarted},
		{name: "restart finished", from: domain.EventFinished, t: EventStart, wantErr: ErrEventFinished},
		{name: "finish started", from: domain.EventStarted, t: EventFinish, want: domain.EventFinished},
		{name: "finish without start", from: domain.EventCreated, t: EventFinish, wantErr: ErrEventNotStarted},
		{name: "finish twice", from: domain.EventFinished, t: EventFinish, wantErr: ErrEventFinished},
		{name: "unknown transition", from: domain.EventCreated, t: EventTransition("pause"), wantErr: ErrUnsupportedTransition},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Event(tc.from, tc.t)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("expected %v, got %v", tc.wantErr, err)
				}
				if !errors.Is(err, domain.ErrInvalidTransition) {
					t.Fatalf("expected invalid transition class, got %v", err)
				}
				if got != tc.from {
					t.Fatalf("status changed on error: %s", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected err: %v", err)
			}
			if got != tc.want {
				t.Fatalf("expected %s, got %s", tc.want, got)
			}
		})
	}
}

func TestDistanceTransitions(t *testing.T) {
	started := Guard{Event: domain.EventStarted, Others: 1}

	cases := []struct {
		name    string
		from    domain.DistanceStatus
		t       DistanceTransition
		guard   Guard
		want    domain.DistanceStatus
		wantErr error
	}{
		{name: "activate pending", from: domain.DistancePending, t: DistanceActivate, guard: started, want: domain.DistanceActive},
		{name: "activate active is a no-op", from: domain.DistanceActive, t: DistanceActivate, guard: started, want: domain.DistanceActive},
		{name: "activate before start", from: domain.DistancePending, t: DistanceActivate, guard: Guard{Event: domain.EventCreated}, wantErr: ErrEventNotStarted},
		{name: "activate after finish", from: domain.DistancePending, t: DistanceActivate, guard: Guard{Event: domain.EventFinished}, wantErr: ErrEventFinished},
		{name: "reactivate finished", from: domain.DistanceFinished, t: DistanceActivate, guard: started, wantErr: ErrDistanceFinished},

		{name: "deactivate active", from: domain.DistanceActive, t: DistanceDeactivate, guard: started, want: domain.DistancePending},
		{name: "deactivate finished", from: domain.DistanceFinished, t: DistanceDeactivate, guard: started, wantErr: ErrDistanceFinishedPending},

		{name: "finish active", from: domain.DistanceActive, t: DistanceFinish, guard: started, want: domain.DistanceFinished},
		{name: "finish pending", from: domain.DistancePending, t: DistanceFinish, guard: started, wantErr: ErrDistanceNotActive},
		{name: "finish finished", from: domain.DistanceFinished, t: DistanceFinish, guard: started, wantErr: ErrDistanceNotActive},

		{name: "edit pending", from: domain.DistancePending, t: DistanceEdit, guard: started, want: domain.DistancePending},
		{name: "edit active", from: domain.DistanceActive, t: DistanceEdit, guard: started, wantErr: ErrDistanceNotPending},
		{name: "edit finished", from: domain.DistanceFinished, t: DistanceEdit, guard: started, wantErr: ErrDistanceNotPending},
		{name: "edit after event finish", from: domain.DistancePending, t: DistanceEdit, guard: Guard{Event: domain.EventFinished, Others: 1}, wantErr: ErrEventFinished},

		{name: "delete pending", from: domain.DistancePending, t: DistanceDelete, guard: started, want: domain.DistancePending},
		{name: "delete last", from: domain.DistancePending, t: DistanceDelete, guard: Guard{Event: domain.EventCreated}, wantErr: ErrLastDistance},
		{name: "delete active", from: domain.DistanceActive, t: DistanceDelete, guard: started, wantErr: ErrDistanceInUse},
		{name: "delete finished", from: domain.DistanceFinished, t: DistanceDelete, guard: started, wantErr: ErrDistanceInUse},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Distance(tc.from, tc.t, tc.guard)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("expected %v, got %v", tc.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected err: %v", err)
			}
			if got != tc.want {
				t.Fatalf("expected %s, got %s", tc.want, got)
			}
		})
	}
}

// A finished distance must not leave the finished state through any transition.
func TestFinishedDistanceIsTerminal(t *testing.T) {
	all := []DistanceTransition{DistanceActivate, DistanceDeactivate, DistanceFinish, DistanceEdit, DistanceDelete}
	for _, tr := range all {
		got, err := Distance(domain.DistanceFinished, tr, Guard{Event: domain.EventStarted, Others: 3})
		if err == nil {
			t.Fatalf("%s: expected rejection", tr)
		}
		if got != domain.DistanceFinished {
			t.Fatalf("%s: status moved to %s", tr, got)
		}
	}
}

func TestPendingNeverReachesFinished(t *testing.T) {
	for _, ev := range []domain.EventStatus{domain.EventCreated, domain.EventStarted, domain.EventFinished} {
		got, _ := Distance(domain.DistancePending, DistanceFinish, Guard{Event: ev, Others: 1})
		if got == domain.DistanceFinished {
			t.Fatalf("pending reached finished with event %s", ev)
		}
	}
}

func TestAcceptsResults(t *testing.T) {
	if err := AcceptsResults(domain.EventStarted); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if err := AcceptsResults(domain.EventCreated); !errors.Is(err, ErrEventNotStarted) {
		t.Fatalf("expected not started, got %v", err)
	}
	if err := AcceptsResults(domain.EventFinished); !errors.Is(err, ErrEventFinished) {
		t.Fatalf("expected finished, got %v", err)
	}
	if err := CanAddDistance(domain.EventFinished); !errors.Is(err, ErrEventFinished) {
		t.Fatalf("expected finished, got %v", err)
	}
}

func TestActiveDistance(t *testing.T) {
	ds := []domain.Distance{
		{ID: 1, Status: domain.DistanceFinished},
		{ID: 2, Status: domain.DistanceActive},
		{ID: 3, Status: domain.DistancePending},
	}
	d, ok := ActiveDistance(ds)
	if !ok || d.ID != 2 {
		t.Fatalf("expected distance 2, got %+v", d)
	}
	if _, ok := ActiveDistance(ds[2:]); ok {
		t.Fatalf("expected no active distance")
	}
	if Counts(domain.DistancePending) || !Counts(domain.DistanceActive) || !Counts(domain.DistanceFinished) {
		t.Fatalf("unexpected Counts result")
	}
}
