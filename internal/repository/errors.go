package repository

import "errors"

var (
	// ErrNotFound is returned when the requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when a compare-and-set status update finds the
	// entity in a state the caller did not expect, or when a booking request
	// loses the race for a slot.
	ErrConflict = errors.New("conflict")

	// ErrSlotTaken is returned when a booking overlaps a confirmed or pending
	// booking for the same amenity and date.
	ErrSlotTaken = errors.New("slot already taken")

	// ErrDailyLimitReached is returned when a resident already holds the
	// maximum number of rentals for the requested day.
	ErrDailyLimitReached = errors.New("daily rental limit reached")
)
