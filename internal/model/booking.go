package model

import (
	"fmt"
	"time"
)

type CleaningType string

const (
	CleaningIncluded  CleaningType = "included"
	CleaningExtraCost CleaningType = "extra_cost"
	CleaningSelfClean CleaningType = "self_clean"
)

type CleaningPolicy struct {
	Type         CleaningType `json:"type"`
	ExtraCost    float64      `json:"extra_cost,omitempty"`
	Instructions string       `json:"instructions,omitempty"`
}

// Cost is the cleaning charge the policy adds to a booking. Only the
// extra_cost policy charges anything; included and self_clean are free.
func (c CleaningPolicy) Cost() float64 {
	if c.Type == CleaningExtraCost {
		return c.ExtraCost
	}
	return 0
}

type Amenity struct {
	ID                string         `json:"id"`
	Name              string         `json:"name"`
	Description       string         `json:"description,omitempty"`
	ImageURL          string         `json:"image_url,omitempty"`
	Cost              float64        `json:"cost"`
	BookingBlockHours int            `json:"booking_block_hours"`
	MaxRentalsPerDay  int            `json:"max_rentals_per_day"`
	Capacity          int            `json:"capacity"`
	Cleaning          CleaningPolicy `json:"cleaning"`
}

// TotalBookingCost is the charge a booking of this amenity incurs. The
// booking flow branches on this: a positive total routes the resident
// through payment collection.
func (a Amenity) TotalBookingCost() float64 {
	return a.Cost + a.Cleaning.Cost()
}

type BookingStatus string

const (
	BookingPending         BookingStatus = "pending"
	BookingPendingPayment  BookingStatus = "pending_payment"
	BookingPendingApproval BookingStatus = "pending_approval"
	BookingConfirmed       BookingStatus = "confirmed"
	BookingCancelled       BookingStatus = "cancelled"
)

type BookingEvent string

const (
	BookingEventAttachReceipt BookingEvent = "attach_receipt"
	BookingEventConfirm       BookingEvent = "confirm"
	BookingEventCancel        BookingEvent = "cancel"
)

// TransitionBooking is the single transition function for the booking state
// machine. Receipts attach only while payment is pending; the admin confirms
// from pending or pending_approval; anything not yet terminal can be
// cancelled.
func TransitionBooking(current BookingStatus, event BookingEvent) (BookingStatus, error) {
	switch event {
	case BookingEventAttachReceipt:
		if current == BookingPendingPayment {
			return BookingPendingApproval, nil
		}
	case BookingEventConfirm:
		if current == BookingPending || current == BookingPendingApproval {
			return BookingConfirmed, nil
		}
	case BookingEventCancel:
		if current != BookingConfirmed && current != BookingCancelled {
			return BookingCancelled, nil
		}
	}
	return current, fmt.Errorf("%w: booking %s on %s", ErrIllegalTransition, event, current)
}

type Booking struct {
	ID           string        `json:"id"`
	AmenityID    string        `json:"amenity_id"`
	AmenityName  string        `json:"amenity_name"`
	ResidentID   string        `json:"resident_id"`
	ResidentName string        `json:"resident_name"`
	Property     string        `json:"property"`
	Date         string        `json:"date"`       // YYYY-MM-DD
	StartTime    string        `json:"start_time"` // HH:mm
	EndTime      string        `json:"end_time"`   // HH:mm
	Status       BookingStatus `json:"status"`
	Cost         float64       `json:"cost"`
	CleaningCost float64       `json:"cleaning_cost"`
	ReceiptRef   string        `json:"receipt_ref,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
}

// Slot is a bookable time window on a given day.
type Slot struct {
	Start string `json:"start"` // HH:mm
	End   string `json:"end"`   // HH:mm
}

func (s Slot) String() string { return s.Start + " - " + s.End }

// Overlaps reports whether two HH:mm windows on the same day intersect.
// Touching endpoints do not overlap.
func (s Slot) Overlaps(start, end string) bool {
	return s.Start < end && s.End > start
}
