package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// Routing keys for domain events. Mutations publish these on the message bus;
// the notification worker turns them into stored notifications. The delivery
// path is fully decoupled from the originating transition.
const (
	TopicPaymentSubmitted  = "payment.submitted"
	TopicPaymentApproved   = "payment.approved"
	TopicPaymentReconciled = "payment.reconciled"

	TopicBookingCreated = "booking.created"
	TopicBookingDecided = "booking.decided"

	TopicVisitRequested = "visit.requested"
	TopicVisitDecided   = "visit.decided"

	TopicProviderVisitScheduled = "provider.visit_scheduled"
)

type PaymentSubmittedEvent struct {
	PaymentID    string    `json:"payment_id"`
	ResidentName string    `json:"resident_name"`
	Amount       float64   `json:"amount"`
	At           time.Time `json:"at"`
}

type PaymentApprovedEvent struct {
	PaymentID  string  `json:"payment_id"`
	ResidentID string  `json:"resident_id"`
	Amount     float64 `json:"amount"`
}

type PaymentReconciledEvent struct {
	PaymentID     string `json:"payment_id"`
	TransactionID string `json:"transaction_id"`
	ResidentID    string `json:"resident_id"`
}

type BookingCreatedEvent struct {
	BookingID    string `json:"booking_id"`
	AmenityName  string `json:"amenity_name"`
	ResidentName string `json:"resident_name"`
}

type BookingDecidedEvent struct {
	BookingID   string        `json:"booking_id"`
	AmenityName string        `json:"amenity_name"`
	ResidentID  string        `json:"resident_id"`
	Status      BookingStatus `json:"status"`
}

type VisitRequestedEvent struct {
	RequestID   string `json:"request_id"`
	VisitorName string `json:"visitor_name"`
	ResidentID  string `json:"resident_id"`
}

type VisitDecidedEvent struct {
	RequestID   string            `json:"request_id"`
	VisitorName string            `json:"visitor_name"`
	Property    string            `json:"property"`
	Status      AuthRequestStatus `json:"status"`
}

type ProviderVisitScheduledEvent struct {
	ProviderName string `json:"provider_name"`
	Date         string `json:"date"`
	Time         string `json:"time"`
}

// DecodeEvent unmarshals an event payload into its typed form.
func DecodeEvent[T any](data []byte) (T, error) {
	var t T
	if err := json.Unmarshal(data, &t); err != nil {
		var zero T
		return zero, fmt.Errorf("decode event payload: %w", err)
	}
	return t, nil
}
