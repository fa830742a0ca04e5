package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Xhuk/Habitat-prime/internal/model"
)

func TestUpdatePaymentStatusCAS(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.CreatePayment(ctx, model.Payment{ID: "pay-1", Status: model.PaymentPending}))

	err := s.UpdatePaymentStatus(ctx, "pay-1", model.PaymentApproved, model.PaymentPending)
	require.NoError(t, err)

	// second approve finds approved, not pending
	err = s.UpdatePaymentStatus(ctx, "pay-1", model.PaymentApproved, model.PaymentPending)
	require.ErrorIs(t, err, ErrConflict)

	// reconcile is allowed from approved
	err = s.UpdatePaymentStatus(ctx, "pay-1", model.PaymentReconciled, model.PaymentPending, model.PaymentApproved)
	require.NoError(t, err)

	got, err := s.GetPayment(ctx, "pay-1")
	require.NoError(t, err)
	assert.Equal(t, model.PaymentReconciled, got.Status)
}

func TestUpdatePaymentStatusMissing(t *testing.T) {
	s := NewMemoryStore()
	err := s.UpdatePaymentStatus(context.Background(), "nope", model.PaymentApproved, model.PaymentPending)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestInsertTransactionsDedup(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	day := time.Date(2025, 5, 10, 9, 30, 0, 0, time.UTC)

	inserted, err := s.InsertTransactions(ctx, []model.BankTransaction{
		{ID: "bt-1", Date: day, Amount: 1500, Reference: "REF1"},
		{ID: "bt-2", Date: day, Amount: 250, Reference: "REF2"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, inserted)

	// same day, amount and reference is a duplicate even at another hour
	inserted, err = s.InsertTransactions(ctx, []model.BankTransaction{
		{ID: "bt-3", Date: day.Add(5 * time.Hour), Amount: 1500, Reference: "REF1"},
		{ID: "bt-4", Date: day, Amount: 1500, Reference: "OTHER"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, inserted)

	txs, err := s.ListTransactions(ctx)
	require.NoError(t, err)
	assert.Len(t, txs, 3)
}

func TestCreateBookingSlotTaken(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	first := model.Booking{
		ID: "book-1", AmenityID: "amen-1", Date: "2025-05-10",
		StartTime: "10:00", EndTime: "14:00", Status: model.BookingConfirmed,
	}
	require.NoError(t, s.CreateBooking(ctx, first, 2))

	overlap := model.Booking{
		ID: "book-2", AmenityID: "amen-1", Date: "2025-05-10",
		StartTime: "12:00", EndTime: "16:00", Status: model.BookingPending,
	}
	require.ErrorIs(t, s.CreateBooking(ctx, overlap, 2), ErrSlotTaken)

	// adjacent slot is fine
	adjacent := model.Booking{
		ID: "book-3", AmenityID: "amen-1", Date: "2025-05-10",
		StartTime: "14:00", EndTime: "18:00", Status: model.BookingPending,
	}
	require.NoError(t, s.CreateBooking(ctx, adjacent, 2))

	// daily cap counts non-cancelled bookings
	third := model.Booking{
		ID: "book-4", AmenityID: "amen-1", Date: "2025-05-10",
		StartTime: "18:00", EndTime: "22:00", Status: model.BookingPending,
	}
	require.ErrorIs(t, s.CreateBooking(ctx, third, 2), ErrDailyLimitReached)
}

func TestCreateBookingCancelledFreesSlot(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	first := model.Booking{
		ID: "book-1", AmenityID: "amen-1", Date: "2025-05-10",
		StartTime: "10:00", EndTime: "14:00", Status: model.BookingPending,
	}
	require.NoError(t, s.CreateBooking(ctx, first, 2))
	require.NoError(t, s.UpdateBookingStatus(ctx, "book-1", model.BookingCancelled))

	again := model.Booking{
		ID: "book-2", AmenityID: "amen-1", Date: "2025-05-10",
		StartTime: "10:00", EndTime: "14:00", Status: model.BookingPending,
	}
	require.NoError(t, s.CreateBooking(ctx, again, 2))
}

func TestMemorySettingsSetNX(t *testing.T) {
	ctx := context.Background()
	s := NewMemorySettings()

	ok, err := s.SetNX(ctx, "idem:payment:k1", []byte("pay-1"), time.Hour)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.SetNX(ctx, "idem:payment:k1", []byte("pay-2"), time.Hour)
	require.NoError(t, err)
	assert.False(t, ok)

	val, err := s.Get(ctx, "idem:payment:k1")
	require.NoError(t, err)
	assert.Equal(t, []byte("pay-1"), val)
}

func TestMemorySettingsExpiry(t *testing.T) {
	ctx := context.Background()
	s := NewMemorySettings()

	require.NoError(t, s.Set(ctx, "license", []byte("blob"), time.Nanosecond))
	time.Sleep(5 * time.Millisecond)

	_, err := s.Get(ctx, "license")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestSeedLoadsDemoData(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	require.NoError(t, Seed(ctx, s, time.Now()))

	user, err := s.GetUserByEmail(ctx, "resident@comunidad.com")
	require.NoError(t, err)
	assert.Equal(t, model.RoleResident, user.Role)

	guard, err := s.GetGuardByCode(ctx, "123456")
	require.NoError(t, err)
	assert.NotEmpty(t, guard.Name)

	amenities, err := s.ListAmenities(ctx)
	require.NoError(t, err)
	assert.Len(t, amenities, 2)

	payments, err := s.ListPayments(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, payments)
}

func TestUpdateQRPassStatusPersists(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.CreateQRPass(ctx, model.QRPass{ID: "qr-1", Status: model.QRActive}))
	require.NoError(t, s.UpdateQRPassStatus(ctx, "qr-1", model.QRUsed))

	p, err := s.GetQRPass(ctx, "qr-1")
	require.NoError(t, err)
	assert.Equal(t, model.QRUsed, p.Status)

	err = s.UpdateQRPassStatus(ctx, "qr-missing", model.QRUsed)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestAccessLogSameTimestampNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	at := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)

	require.NoError(t, s.AppendAccessLog(ctx, model.AccessLogEntry{ID: "log-1", Result: model.AccessGranted, Timestamp: at}))
	require.NoError(t, s.AppendAccessLog(ctx, model.AccessLogEntry{ID: "log-2", Result: model.AccessDenied, Timestamp: at}))

	entries, err := s.ListAccessLog(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "log-2", entries[0].ID)
	assert.Equal(t, "log-1", entries[1].ID)
}
