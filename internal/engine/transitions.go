package engine

import "github.com/DoyleJ11/lane-scoring-backend/internal/domain"

type eventKey struct {
	from domain.EventStatus
	t    EventTransition
}

type eventRule struct {
	next domain.EventStatus
	err  error
}

// Event lifecycle: created -> started -> finished, each step taken once.
var eventTable = map[eventKey]eventRule{
	{domain.EventCreated, EventStart}:   {next: domain.EventStarted},
	{domain.EventStarted, EventStart}:   {err: ErrEventAlreadyStarted},
	{domain.EventFinished, EventStart}:  {err: ErrEventFinished},
	{domain.EventCreated, EventFinish}:  {err: ErrEventNotStarted},
	{domain.EventStarted, EventFinish}:  {next: domain.EventFinished},
	{domain.EventFinished, EventFinish}: {err: ErrEventFinished},
}

type distanceKey struct {
	from domain.DistanceStatus
	t    DistanceTransition
}

type distanceRule struct {
	next   domain.DistanceStatus
	err    error
	guards []func(Guard) error
}

var distanceTable = map[distanceKey]distanceRule{
	// activate
	{domain.DistancePending, DistanceActivate}:  {next: domain.DistanceActive, guards: []func(Guard) error{eventRunning}},
	{domain.DistanceActive, DistanceActivate}:   {next: domain.DistanceActive, guards: []func(Guard) error{eventRunning}},
	{domain.DistanceFinished, DistanceActivate}: {err: ErrDistanceFinished},

	// deactivate
	{domain.DistancePending, DistanceDeactivate}:  {next: domain.DistancePending, guards: []func(Guard) error{eventOpen}},
	{domain.DistanceActive, DistanceDeactivate}:   {next: domain.DistancePending, guards: []func(Guard) error{eventOpen}},
	{domain.DistanceFinished, DistanceDeactivate}: {err: ErrDistanceFinishedPending},

	// finish; a pending distance cannot be finished directly
	{domain.DistancePending, DistanceFinish}:  {err: ErrDistanceNotActive},
	{domain.DistanceActive, DistanceFinish}:   {next: domain.DistanceFinished},
	{domain.DistanceFinished, DistanceFinish}: {err: ErrDistanceNotActive},

	// edit title / shots
	{domain.DistancePending, DistanceEdit}:  {next: domain.DistancePending, guards: []func(Guard) error{eventOpen}},
	{domain.DistanceActive, DistanceEdit}:   {err: ErrDistanceNotPending},
	{domain.DistanceFinished, DistanceEdit}: {err: ErrDistanceNotPending},

	// delete
	{domain.DistancePending, DistanceDelete}:  {next: domain.DistancePending, guards: []func(Guard) error{eventOpen, notLast}},
	{domain.DistanceActive, DistanceDelete}:   {err: ErrDistanceInUse},
	{domain.DistanceFinished, DistanceDelete}: {err: ErrDistanceInUse},
}

func eventRunning(g Guard) error {
	switch g.Event {
	case domain.EventStarted:
		return nil
	case domain.EventFinished:
		return ErrEventFinished
	default:
		return ErrEventNotStarted
	}
}

func eventOpen(g Guard) error {
	if g.Event == domain.EventFinished {
		return ErrEventFinished
	}
	return nil
}

func notLast(g Guard) error {
	if g.Others < 1 {
		return ErrLastDistance
	}
	return nil
}
