package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Xhuk/Habitat-prime/internal/model"
	"github.com/Xhuk/Habitat-prime/internal/repository"
)

// Bookable hours: slots are generated on block boundaries between opening
// and closing.
const (
	openingHour = 8
	closingHour = 22
)

// BookingService drives the amenity booking lifecycle from slot discovery
// through the admin decision.
type BookingService interface {
	ListAmenities(ctx context.Context) ([]model.Amenity, error)
	UpdateAmenity(ctx context.Context, a model.Amenity) (model.Amenity, error)
	AvailableSlots(ctx context.Context, amenityID, date string) ([]model.Slot, error)
	Create(ctx context.Context, req CreateBookingRequest) (model.Booking, error)
	AttachReceipt(ctx context.Context, bookingID, receiptRef string) error
	Confirm(ctx context.Context, bookingID string) error
	Cancel(ctx context.Context, bookingID string) error
	Get(ctx context.Context, bookingID string) (model.Booking, error)
	List(ctx context.Context) ([]model.Booking, error)
	ListForResident(ctx context.Context, residentID string) ([]model.Booking, error)
}

type CreateBookingRequest struct {
	ResidentID     string
	AmenityID      string
	Date           string // YYYY-MM-DD
	StartTime      string // HH:mm, must be a generated slot boundary
	IdempotencyKey string
}

type bookingService struct {
	store    repository.Store
	settings repository.SettingsStore
	bus      repository.MessageBus
	logger   *slog.Logger
	now      func() time.Time
}

func NewBookingService(store repository.Store, settings repository.SettingsStore, bus repository.MessageBus, logger *slog.Logger) BookingService {
	return &bookingService{
		store:    store,
		settings: settings,
		bus:      bus,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *bookingService) ListAmenities(ctx context.Context) ([]model.Amenity, error) {
	return s.store.ListAmenities(ctx)
}

// UpdateAmenity replaces an amenity's schedule and pricing. Existing
// bookings keep the cost they were created with.
func (s *bookingService) UpdateAmenity(ctx context.Context, a model.Amenity) (model.Amenity, error) {
	if a.Name == "" {
		return model.Amenity{}, fmt.Errorf("%w: missing amenity name", ErrInvalidInput)
	}
	if a.Cost < 0 || a.Cleaning.ExtraCost < 0 {
		return model.Amenity{}, fmt.Errorf("%w: cost must not be negative", ErrInvalidInput)
	}
	if a.BookingBlockHours < 1 || a.BookingBlockHours > closingHour-openingHour {
		return model.Amenity{}, fmt.Errorf("%w: booking block must be between 1 and %d hours", ErrInvalidInput, closingHour-openingHour)
	}
	if a.MaxRentalsPerDay < 1 {
		return model.Amenity{}, fmt.Errorf("%w: max rentals per day must be at least 1", ErrInvalidInput)
	}
	if err := s.store.UpdateAmenity(ctx, a); err != nil {
		return model.Amenity{}, err
	}
	s.logger.Info("amenity updated", "amenity_id", a.ID, "cost", a.Cost, "block_hours", a.BookingBlockHours)
	return a, nil
}

// AvailableSlots generates the bookable windows for a day: block-sized slots
// between opening and closing, minus anything that overlaps a non-cancelled
// booking.
func (s *bookingService) AvailableSlots(ctx context.Context, amenityID, date string) ([]model.Slot, error) {
	amenity, err := s.store.GetAmenity(ctx, amenityID)
	if err != nil {
		return nil, err
	}
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return nil, fmt.Errorf("%w: bad date %q", ErrInvalidInput, date)
	}

	existing, err := s.store.ListBookingsForDay(ctx, amenityID, date)
	if err != nil {
		return nil, err
	}

	var out []model.Slot
	for _, slot := range generateSlots(amenity.BookingBlockHours) {
		free := true
		for _, b := range existing {
			if b.Status == model.BookingCancelled {
				continue
			}
			if slot.Overlaps(b.StartTime, b.EndTime) {
				free = false
				break
			}
		}
		if free {
			out = append(out, slot)
		}
	}
	return out, nil
}

func generateSlots(blockHours int) []model.Slot {
	if blockHours <= 0 {
		blockHours = 1
	}
	var out []model.Slot
	for h := openingHour; h+blockHours <= closingHour; h += blockHours {
		out = append(out, model.Slot{
			Start: fmt.Sprintf("%02d:00", h),
			End:   fmt.Sprintf("%02d:00", h+blockHours),
		})
	}
	return out
}

// Create books a slot. The initial status depends on money: a booking with
// any cost starts at pending_payment, a free one goes straight to pending.
// The store serializes concurrent requests for the same amenity and day, so
// double booking resolves to one winner and one ErrSlotTaken.
func (s *bookingService) Create(ctx context.Context, req CreateBookingRequest) (model.Booking, error) {
	if req.IdempotencyKey != "" {
		if b, ok, err := s.replayedBooking(ctx, req.IdempotencyKey); err != nil {
			return model.Booking{}, err
		} else if ok {
			return b, nil
		}
	}

	amenity, err := s.store.GetAmenity(ctx, req.AmenityID)
	if err != nil {
		return model.Booking{}, err
	}
	resident, err := s.store.GetUser(ctx, req.ResidentID)
	if err != nil {
		return model.Booking{}, fmt.Errorf("lookup resident: %w", err)
	}

	slot, ok := slotStartingAt(generateSlots(amenity.BookingBlockHours), req.StartTime)
	if !ok {
		return model.Booking{}, fmt.Errorf("%w: %q is not a bookable slot", ErrInvalidInput, req.StartTime)
	}
	if _, err := time.Parse("2006-01-02", req.Date); err != nil {
		return model.Booking{}, fmt.Errorf("%w: bad date %q", ErrInvalidInput, req.Date)
	}

	cleaningCost := amenity.Cleaning.Cost()
	status := model.BookingPending
	if amenity.Cost+cleaningCost > 0 {
		status = model.BookingPendingPayment
	}

	b := model.Booking{
		ID:           "book-" + uuid.NewString(),
		AmenityID:    amenity.ID,
		AmenityName:  amenity.Name,
		ResidentID:   resident.ID,
		ResidentName: resident.Name,
		Property:     resident.Property,
		Date:         req.Date,
		StartTime:    slot.Start,
		EndTime:      slot.End,
		Status:       status,
		Cost:         amenity.Cost,
		CleaningCost: cleaningCost,
		CreatedAt:    s.now(),
	}

	if err := s.store.CreateBooking(ctx, b, amenity.MaxRentalsPerDay); err != nil {
		return model.Booking{}, err
	}

	if req.IdempotencyKey != "" {
		s.rememberBooking(ctx, req.IdempotencyKey, b.ID)
	}

	s.publish(model.TopicBookingCreated, model.BookingCreatedEvent{
		BookingID:    b.ID,
		AmenityName:  b.AmenityName,
		ResidentName: b.ResidentName,
	})
	s.logger.Info("booking created",
		"booking_id", b.ID, "amenity_id", b.AmenityID, "date", b.Date,
		"slot", slot.String(), "status", b.Status)
	return b, nil
}

func slotStartingAt(slots []model.Slot, start string) (model.Slot, bool) {
	for _, s := range slots {
		if s.Start == start {
			return s, true
		}
	}
	return model.Slot{}, false
}

// AttachReceipt moves a paid booking from pending_payment to
// pending_approval once the resident uploads proof of payment.
func (s *bookingService) AttachReceipt(ctx context.Context, bookingID, receiptRef string) error {
	if receiptRef == "" {
		return fmt.Errorf("%w: missing receipt", ErrInvalidInput)
	}
	b, err := s.store.GetBooking(ctx, bookingID)
	if err != nil {
		return err
	}
	if _, err := model.TransitionBooking(b.Status, model.BookingEventAttachReceipt); err != nil {
		return err
	}
	if err := s.store.AttachBookingReceipt(ctx, bookingID, receiptRef); err != nil {
		return err
	}
	return s.store.UpdateBookingStatus(ctx, bookingID, model.BookingPendingApproval, model.BookingPendingPayment)
}

func (s *bookingService) Confirm(ctx context.Context, bookingID string) error {
	return s.decide(ctx, bookingID, model.BookingEventConfirm, model.BookingConfirmed,
		model.BookingPending, model.BookingPendingApproval)
}

func (s *bookingService) Cancel(ctx context.Context, bookingID string) error {
	return s.decide(ctx, bookingID, model.BookingEventCancel, model.BookingCancelled,
		model.BookingPending, model.BookingPendingPayment, model.BookingPendingApproval)
}

func (s *bookingService) decide(ctx context.Context, bookingID string, event model.BookingEvent, to model.BookingStatus, from ...model.BookingStatus) error {
	b, err := s.store.GetBooking(ctx, bookingID)
	if err != nil {
		return err
	}
	if _, err := model.TransitionBooking(b.Status, event); err != nil {
		return err
	}
	if err := s.store.UpdateBookingStatus(ctx, bookingID, to, from...); err != nil {
		return err
	}

	s.publish(model.TopicBookingDecided, model.BookingDecidedEvent{
		BookingID:   b.ID,
		AmenityName: b.AmenityName,
		ResidentID:  b.ResidentID,
		Status:      to,
	})
	s.logger.Info("booking decided", "booking_id", bookingID, "status", to)
	return nil
}

func (s *bookingService) Get(ctx context.Context, bookingID string) (model.Booking, error) {
	return s.store.GetBooking(ctx, bookingID)
}

func (s *bookingService) List(ctx context.Context) ([]model.Booking, error) {
	return s.store.ListBookings(ctx)
}

func (s *bookingService) ListForResident(ctx context.Context, residentID string) ([]model.Booking, error) {
	return s.store.ListBookingsByResident(ctx, residentID)
}

func (s *bookingService) replayedBooking(ctx context.Context, key string) (model.Booking, bool, error) {
	data, err := s.settings.Get(ctx, "idem:booking:"+key)
	if err != nil {
		return model.Booking{}, false, nil
	}
	var bookingID string
	if err := json.Unmarshal(data, &bookingID); err != nil {
		return model.Booking{}, false, nil
	}
	b, err := s.store.GetBooking(ctx, bookingID)
	if err != nil {
		return model.Booking{}, false, nil
	}
	return b, true, nil
}

func (s *bookingService) rememberBooking(ctx context.Context, key, bookingID string) {
	data, _ := json.Marshal(bookingID)
	if _, err := s.settings.SetNX(ctx, "idem:booking:"+key, data, 24*time.Hour); err != nil {
		s.logger.Warn("idempotency marker not stored", "key", key, "error", err)
	}
}

func (s *bookingService) publish(topic string, event any) {
	data, err := json.Marshal(event)
	if err != nil {
		s.logger.Error("encode event", "topic", topic, "error", err)
		return
	}
	if err := s.bus.Publish(topic, data); err != nil {
		s.logger.Error("publish event", "topic", topic, "error", err)
	}
}
