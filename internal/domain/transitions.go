package domain

import (
	"fmt"
	"time"
)

// Transition операция жизненного цикла над существующей записью
type Transition string

const (
	TransitionConfirm  Transition = "confirm"
	TransitionStart    Transition = "start"
	TransitionComplete Transition = "complete"
	TransitionCancel   Transition = "cancel"
)

// transitionTable допустимые переходы: операция -> (исходный статус -> целевой статус)
var transitionTable = map[Transition]map[AppointmentStatus]AppointmentStatus{
	TransitionConfirm: {
		StatusRequested: StatusConfirmed,
	},
	TransitionStart: {
		StatusConfirmed: StatusInProgress,
	},
	TransitionComplete: {
		StatusInProgress: StatusCompleted,
	},
	TransitionCancel: {
		StatusRequested: StatusCancelled,
		StatusConfirmed: StatusCancelled,
	},
}

// NextStatus returns the status reached by applying t to from,
// or ErrInvalidTransition if the state machine has no such edge
func NextStatus(from AppointmentStatus, t Transition) (AppointmentStatus, error) {
	edges, ok := transitionTable[t]
	if !ok {
		return "", fmt.Errorf("%w: unknown operation %q", ErrInvalidTransition, t)
	}
	to, ok := edges[from]
	if !ok {
		return "", fmt.Errorf("%w: cannot %s appointment in status %s", ErrInvalidTransition, t, from)
	}
	return to, nil
}

// CanApply reports whether t is legal from the current status
func (a *Appointment) CanApply(t Transition) bool {
	_, err := NextStatus(a.Status, t)
	return err == nil
}

// Apply moves the appointment along the state machine and stamps the matching timestamp.
// The record is left untouched when the transition is illegal.
func (a *Appointment) Apply(t Transition, at time.Time) error {
	to, err := NextStatus(a.Status, t)
	if err != nil {
		return err
	}

	stamp := at
	switch to {
	case StatusConfirmed:
		a.ConfirmedAt = &stamp
	case StatusInProgress:
		a.StartedAt = &stamp
	case StatusCompleted:
		a.CompletedAt = &stamp
	case StatusCancelled:
		a.CancelledAt = &stamp
	}

	a.Status = to
	a.UpdatedAt = at
	return nil
}
