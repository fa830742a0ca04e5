package repository

import (
	"context"

	"github.com/Xhuk/Habitat-prime/internal/model"
)

// PaymentStore persists resident payments. Status changes are
// compare-and-set: the update only applies when the current status is one of
// the expected ones, otherwise ErrConflict is returned.
type PaymentStore interface {
	CreatePayment(ctx context.Context, p model.Payment) error
	GetPayment(ctx context.Context, id string) (model.Payment, error)
	ListPayments(ctx context.Context) ([]model.Payment, error)
	ListPaymentsByResident(ctx context.Context, residentID string) ([]model.Payment, error)
	UpdatePaymentStatus(ctx context.Context, id string, to model.PaymentStatus, expectedFrom ...model.PaymentStatus) error
	SetExtractedAmount(ctx context.Context, id string, amount float64) error
}

// TransactionStore persists bank statement lines. InsertTransactions skips
// lines that duplicate an existing one (same day, amount and reference) and
// reports how many were actually inserted. AddTransactions stores rows
// unconditionally; hand-entered rows are an explicit admin action and bypass
// the dedup.
type TransactionStore interface {
	InsertTransactions(ctx context.Context, txs []model.BankTransaction) (inserted int, err error)
	AddTransactions(ctx context.Context, txs []model.BankTransaction) error
	GetTransaction(ctx context.Context, id string) (model.BankTransaction, error)
	ListTransactions(ctx context.Context) ([]model.BankTransaction, error)
	MarkTransactionReconciled(ctx context.Context, id, paymentID string) error
}

// ReconciliationStore is the append-only reconciliation history.
type ReconciliationStore interface {
	AppendReconciliation(ctx context.Context, rec model.ReconciliationRecord) error
	ListReconciliations(ctx context.Context) ([]model.ReconciliationRecord, error)
}

// BookingStore persists amenity bookings. CreateBooking performs the overlap
// and daily-cap checks atomically with the insert: two concurrent requests
// for the same amenity and date are serialized, and the loser gets
// ErrSlotTaken or ErrDailyLimitReached.
type BookingStore interface {
	CreateBooking(ctx context.Context, b model.Booking, maxPerDay int) error
	GetBooking(ctx context.Context, id string) (model.Booking, error)
	ListBookings(ctx context.Context) ([]model.Booking, error)
	ListBookingsByResident(ctx context.Context, residentID string) ([]model.Booking, error)
	ListBookingsForDay(ctx context.Context, amenityID, date string) ([]model.Booking, error)
	UpdateBookingStatus(ctx context.Context, id string, to model.BookingStatus, expectedFrom ...model.BookingStatus) error
	AttachBookingReceipt(ctx context.Context, id, receiptURL string) error
}

type AmenityStore interface {
	GetAmenity(ctx context.Context, id string) (model.Amenity, error)
	ListAmenities(ctx context.Context) ([]model.Amenity, error)
	UpdateAmenity(ctx context.Context, a model.Amenity) error
}

type UserStore interface {
	GetUser(ctx context.Context, id string) (model.User, error)
	GetUserByEmail(ctx context.Context, email string) (model.User, error)
	ListUsers(ctx context.Context) ([]model.User, error)
	ListUsersByRole(ctx context.Context, role model.Role) ([]model.User, error)
	UpdateNotificationSettings(ctx context.Context, userID string, s model.NotificationSettings) error
}

type NotificationStore interface {
	CreateNotification(ctx context.Context, n model.Notification) error
	ListNotificationsFor(ctx context.Context, u model.User) ([]model.Notification, error)
	MarkNotificationRead(ctx context.Context, id string) error
	MarkAllNotificationsRead(ctx context.Context, u model.User) error
}

type ProviderStore interface {
	GetProvider(ctx context.Context, id string) (model.Provider, error)
	ListProviders(ctx context.Context) ([]model.Provider, error)
	SaveProvider(ctx context.Context, p model.Provider) error
	CreateProviderVisit(ctx context.Context, v model.ProviderVisit) error
	ListProviderVisits(ctx context.Context) ([]model.ProviderVisit, error)
}

// AccessStore persists gate security state: visitor authorization requests,
// QR passes and the scan log. ListAccessLog returns entries newest first.
type AccessStore interface {
	CreateAuthRequest(ctx context.Context, r model.VisitorAuthorizationRequest) error
	GetAuthRequest(ctx context.Context, id string) (model.VisitorAuthorizationRequest, error)
	ListAuthRequests(ctx context.Context) ([]model.VisitorAuthorizationRequest, error)
	UpdateAuthRequestStatus(ctx context.Context, id string, to model.AuthRequestStatus, expectedFrom ...model.AuthRequestStatus) error

	CreateQRPass(ctx context.Context, p model.QRPass) error
	GetQRPass(ctx context.Context, id string) (model.QRPass, error)
	ListQRPassesByResident(ctx context.Context, residentID string) ([]model.QRPass, error)
	UpdateQRPassStatus(ctx context.Context, id string, to model.QRPassStatus) error

	AppendAccessLog(ctx context.Context, e model.AccessLogEntry) error
	ListAccessLog(ctx context.Context) ([]model.AccessLogEntry, error)

	GetGuardByCode(ctx context.Context, code string) (model.Guard, error)
	ListGuards(ctx context.Context) ([]model.Guard, error)
}

// CommunityStore covers surveys, announcements, the service directory and
// the community chat.
type CommunityStore interface {
	ListSurveys(ctx context.Context) ([]model.Survey, error)
	GetSurvey(ctx context.Context, id string) (model.Survey, error)
	SaveSurvey(ctx context.Context, s model.Survey) error
	DeleteSurvey(ctx context.Context, id string) error

	ListAnnouncements(ctx context.Context) ([]model.Announcement, error)
	CreateAnnouncement(ctx context.Context, a model.Announcement) error
	DeleteAnnouncement(ctx context.Context, id string) error

	ListDirectoryContacts(ctx context.Context) ([]model.DirectoryContact, error)

	ListChatMessages(ctx context.Context) ([]model.ChatMessage, error)
	AppendChatMessage(ctx context.Context, m model.ChatMessage) error
}

// Store aggregates the per-entity stores a fully wired application needs.
type Store interface {
	PaymentStore
	TransactionStore
	ReconciliationStore
	BookingStore
	AmenityStore
	UserStore
	NotificationStore
	ProviderStore
	AccessStore
	CommunityStore
}
