package engine

import (
	"fmt"

	"github.com/DoyleJ11/lane-scoring-backend/internal/domain"
)

var ErrUnsupportedTransition = fmt.Errorf("%w: unsupported transition", domain.ErrInvalidTransition)
var ErrEventNotStarted = fmt.Errorf("%w: start the event first", domain.ErrInvalidTransition)
var ErrEventFinished = fmt.Errorf("%w: event is finished", domain.ErrInvalidTransition)
var ErrEventAlreadyStarted = fmt.Errorf("%w: event already started", domain.ErrInvalidTransition)
var ErrDistanceFinished = fmt.Errorf("%w: finished distance cannot be reactivated", domain.ErrInvalidTransition)
var ErrDistanceFinishedPending = fmt.Errorf("%w: finished distance cannot go back to pending", domain.ErrInvalidTransition)
var ErrDistanceNotActive = fmt.Errorf("%w: only active distance can be finished", domain.ErrInvalidTransition)
var ErrDistanceNotPending = fmt.Errorf("%w: only pending distance can be edited", domain.ErrInvalidTransition)
var ErrDistanceInUse = fmt.Errorf("%w: cannot delete active or finished distance", domain.ErrInvalidTransition)
var ErrLastDistance = fmt.Errorf("%w: cannot delete the last distance", domain.ErrInvalidTransition)

type EventTransition string

const (
	EventStart  EventTransition = "start"
	EventFinish EventTransition = "finish"
)

type DistanceTransition string

const (
	DistanceActivate   DistanceTransition = "activate"
	DistanceDeactivate DistanceTransition = "deactivate"
	DistanceFinish     DistanceTransition = "finish"
	DistanceEdit       DistanceTransition = "edit"
	DistanceDelete     DistanceTransition = "delete"
)

// Guard carries the facts a distance rule may depend on.
type Guard struct {
	Event  domain.EventStatus
	Others int // distances in the event besides this one
}

// Event returns the status reached by applying t to an event in status cur.
func Event(cur domain.EventStatus, t EventTransition) (domain.EventStatus, error) {
	rule, ok := eventTable[eventKey{cur, t}]
	if !ok {
		return cur, ErrUnsupportedTransition
	}
	if rule.err != nil {
		return cur, rule.err
	}
	return rule.next, nil
}

// Distance returns the status reached by applying t to a distance in status cur.
// Edit and delete keep the status; callers use the error only.
func Distance(cur domain.DistanceStatus, t DistanceTransition, g Guard) (domain.DistanceStatus, error) {
	rule, ok := distanceTable[distanceKey{cur, t}]
	if !ok {
		return cur, ErrUnsupportedTransition
	}
	if rule.err != nil {
		return cur, rule.err
	}
	for _, check := range rule.guards {
		if err := check(g); err != nil {
			return cur, err
		}
	}
	return rule.next, nil
}

// CanAddDistance reports whether a new distance may join an event in status s.
func CanAddDistance(s domain.EventStatus) error {
	if s == domain.EventFinished {
		return ErrEventFinished
	}
	return nil
}

// AcceptsResults reports whether shots may be recorded for an event in status s.
func AcceptsResults(s domain.EventStatus) error {
	switch s {
	case domain.EventStarted:
		return nil
	case domain.EventFinished:
		return ErrEventFinished
	default:
		return ErrEventNotStarted
	}
}
