package service

import (
	"errors"
	"fmt"

	"hapipet/internal/db"
)

var ErrInvalidTransition = errors.New("invalid booking status transition")

var transitions = map[db.BookingStatus][]db.BookingStatus{
	db.StatusPending:   {db.StatusConfirmed, db.StatusCancelled},
	db.StatusConfirmed: {db.StatusCompleted, db.StatusCancelled},
}

// CanTransition reports whether a booking may move from one status to another.
// completed and cancelled are terminal.
func CanTransition(from, to db.BookingStatus) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

func checkTransition(from, to db.BookingStatus) error {
	if !CanTransition(from, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	return nil
}
