package repository

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/Xhuk/Habitat-prime/internal/model"
)

// MemoryStore is a thread-safe in-memory Store implementation used for local
// development and tests. A single mutex guards every collection, which makes
// the booking overlap check and the status compare-and-set trivially atomic.
type MemoryStore struct {
	mu sync.RWMutex

	users           map[string]model.User
	emailIndex      map[string]string
	guards          map[string]model.Guard
	payments        map[string]model.Payment
	transactions    map[string]model.BankTransaction
	reconciliations []model.ReconciliationRecord
	amenities       map[string]model.Amenity
	bookings        map[string]model.Booking
	notifications   map[string]model.Notification
	providers       map[string]model.Provider
	providerVisits  []model.ProviderVisit
	authRequests    map[string]model.VisitorAuthorizationRequest
	qrPasses        map[string]model.QRPass
	accessLog       []model.AccessLogEntry
	surveys         map[string]model.Survey
	announcements   []model.Announcement
	directory       []model.DirectoryContact
	chat            []model.ChatMessage
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:         make(map[string]model.User),
		emailIndex:    make(map[string]string),
		guards:        make(map[string]model.Guard),
		payments:      make(map[string]model.Payment),
		transactions:  make(map[string]model.BankTransaction),
		amenities:     make(map[string]model.Amenity),
		bookings:      make(map[string]model.Booking),
		notifications: make(map[string]model.Notification),
		providers:     make(map[string]model.Provider),
		authRequests:  make(map[string]model.VisitorAuthorizationRequest),
		qrPasses:      make(map[string]model.QRPass),
		surveys:       make(map[string]model.Survey),
	}
}

// --- payments ---

func (s *MemoryStore) CreatePayment(_ context.Context, p model.Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.payments[p.ID] = p
	return nil
}

func (s *MemoryStore) GetPayment(_ context.Context, id string) (model.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.payments[id]
	if !ok {
		return model.Payment{}, ErrNotFound
	}
	return p, nil
}

func (s *MemoryStore) ListPayments(_ context.Context) ([]model.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Payment, 0, len(s.payments))
	for _, p := range s.payments {
		out = append(out, p)
	}
	sortByDateDesc(out, func(p model.Payment) time.Time { return p.Date })
	return out, nil
}

func (s *MemoryStore) ListPaymentsByResident(_ context.Context, residentID string) ([]model.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Payment
	for _, p := range s.payments {
		if p.ResidentID == residentID {
			out = append(out, p)
		}
	}
	sortByDateDesc(out, func(p model.Payment) time.Time { return p.Date })
	return out, nil
}

func (s *MemoryStore) UpdatePaymentStatus(_ context.Context, id string, to model.PaymentStatus, expectedFrom ...model.PaymentStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.payments[id]
	if !ok {
		return ErrNotFound
	}
	if !statusExpected(p.Status, expectedFrom) {
		return ErrConflict
	}
	p.Status = to
	s.payments[id] = p
	return nil
}

func (s *MemoryStore) SetExtractedAmount(_ context.Context, id string, amount float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.payments[id]
	if !ok {
		return ErrNotFound
	}
	p.ExtractedAmount = &amount
	s.payments[id] = p
	return nil
}

// --- bank transactions ---

func (s *MemoryStore) InsertTransactions(_ context.Context, txs []model.BankTransaction) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	seen := make(map[string]bool, len(s.transactions))
	for _, existing := range s.transactions {
		seen[txDedupKey(existing)] = true
	}
	inserted := 0
	for _, tx := range txs {
		key := txDedupKey(tx)
		if seen[key] {
			continue
		}
		seen[key] = true
		s.transactions[tx.ID] = tx
		inserted++
	}
	return inserted, nil
}

func (s *MemoryStore) AddTransactions(_ context.Context, txs []model.BankTransaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, tx := range txs {
		s.transactions[tx.ID] = tx
	}
	return nil
}

func (s *MemoryStore) GetTransaction(_ context.Context, id string) (model.BankTransaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tx, ok := s.transactions[id]
	if !ok {
		return model.BankTransaction{}, ErrNotFound
	}
	return tx, nil
}

func (s *MemoryStore) ListTransactions(_ context.Context) ([]model.BankTransaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.BankTransaction, 0, len(s.transactions))
	for _, tx := range s.transactions {
		out = append(out, tx)
	}
	sortByDateDesc(out, func(tx model.BankTransaction) time.Time { return tx.Date })
	return out, nil
}

func (s *MemoryStore) MarkTransactionReconciled(_ context.Context, id, paymentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx, ok := s.transactions[id]
	if !ok {
		return ErrNotFound
	}
	tx.Reconciled = true
	tx.PaymentID = paymentID
	s.transactions[id] = tx
	return nil
}

// --- reconciliation history ---

func (s *MemoryStore) AppendReconciliation(_ context.Context, rec model.ReconciliationRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reconciliations = append(s.reconciliations, rec)
	return nil
}

func (s *MemoryStore) ListReconciliations(_ context.Context) ([]model.ReconciliationRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.ReconciliationRecord, len(s.reconciliations))
	copy(out, s.reconciliations)
	sortByDateDesc(out, func(r model.ReconciliationRecord) time.Time { return r.ReconciledDate })
	return out, nil
}

// --- bookings ---

func (s *MemoryStore) CreateBooking(_ context.Context, b model.Booking, maxPerDay int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	taken := 0
	for _, existing := range s.bookings {
		if existing.AmenityID != b.AmenityID || existing.Date != b.Date {
			continue
		}
		if existing.Status == model.BookingCancelled {
			continue
		}
		taken++
		slot := model.Slot{Start: existing.StartTime, End: existing.EndTime}
		if slot.Overlaps(b.StartTime, b.EndTime) {
			return ErrSlotTaken
		}
	}
	if maxPerDay > 0 && taken >= maxPerDay {
		return ErrDailyLimitReached
	}
	s.bookings[b.ID] = b
	return nil
}

func (s *MemoryStore) GetBooking(_ context.Context, id string) (model.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.bookings[id]
	if !ok {
		return model.Booking{}, ErrNotFound
	}
	return b, nil
}

func (s *MemoryStore) ListBookings(_ context.Context) ([]model.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Booking, 0, len(s.bookings))
	for _, b := range s.bookings {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date > out[j].Date
		}
		return out[i].StartTime < out[j].StartTime
	})
	return out, nil
}

func (s *MemoryStore) ListBookingsByResident(_ context.Context, residentID string) ([]model.Booking, error) {
	all, _ := s.ListBookings(context.Background())
	var out []model.Booking
	for _, b := range all {
		if b.ResidentID == residentID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (s *MemoryStore) ListBookingsForDay(_ context.Context, amenityID, date string) ([]model.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Booking
	for _, b := range s.bookings {
		if b.AmenityID == amenityID && b.Date == date {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime < out[j].StartTime })
	return out, nil
}

func (s *MemoryStore) UpdateBookingStatus(_ context.Context, id string, to model.BookingStatus, expectedFrom ...model.BookingStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok {
		return ErrNotFound
	}
	if !statusExpected(b.Status, expectedFrom) {
		return ErrConflict
	}
	b.Status = to
	s.bookings[id] = b
	return nil
}

func (s *MemoryStore) AttachBookingReceipt(_ context.Context, id, receiptRef string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok {
		return ErrNotFound
	}
	b.ReceiptRef = receiptRef
	s.bookings[id] = b
	return nil
}

// --- amenities ---

func (s *MemoryStore) GetAmenity(_ context.Context, id string) (model.Amenity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.amenities[id]
	if !ok {
		return model.Amenity{}, ErrNotFound
	}
	return a, nil
}

func (s *MemoryStore) UpdateAmenity(_ context.Context, a model.Amenity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.amenities[a.ID]; !ok {
		return ErrNotFound
	}
	s.amenities[a.ID] = a
	return nil
}

func (s *MemoryStore) ListAmenities(_ context.Context) ([]model.Amenity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Amenity, 0, len(s.amenities))
	for _, a := range s.amenities {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// --- users ---

func (s *MemoryStore) GetUser(_ context.Context, id string) (model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return model.User{}, ErrNotFound
	}
	return u, nil
}

func (s *MemoryStore) GetUserByEmail(_ context.Context, email string) (model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.emailIndex[strings.ToLower(email)]
	if !ok {
		return model.User{}, ErrNotFound
	}
	return s.users[id], nil
}

func (s *MemoryStore) ListUsers(_ context.Context) ([]model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStore) ListUsersByRole(_ context.Context, role model.Role) ([]model.User, error) {
	all, _ := s.ListUsers(context.Background())
	var out []model.User
	for _, u := range all {
		if u.Role == role {
			out = append(out, u)
		}
	}
	return out, nil
}

func (s *MemoryStore) UpdateNotificationSettings(_ context.Context, userID string, ns model.NotificationSettings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return ErrNotFound
	}
	u.NotificationSettings = &ns
	s.users[userID] = u
	return nil
}

// PutUser inserts or replaces a user. Used by seeding and tests.
func (s *MemoryStore) PutUser(u model.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = u
	if u.Email != "" {
		s.emailIndex[strings.ToLower(u.Email)] = u.ID
	}
}

// --- notifications ---

func (s *MemoryStore) CreateNotification(_ context.Context, n model.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications[n.ID] = n
	return nil
}

func (s *MemoryStore) ListNotificationsFor(_ context.Context, u model.User) ([]model.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Notification
	for _, n := range s.notifications {
		if n.Recipient.Addresses(u) {
			out = append(out, n)
		}
	}
	sortByDateDesc(out, func(n model.Notification) time.Time { return n.CreatedAt })
	return out, nil
}

func (s *MemoryStore) MarkNotificationRead(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.notifications[id]
	if !ok {
		return ErrNotFound
	}
	n.Read = true
	s.notifications[id] = n
	return nil
}

func (s *MemoryStore) MarkAllNotificationsRead(_ context.Context, u model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, n := range s.notifications {
		if n.Recipient.Addresses(u) && !n.Read {
			n.Read = true
			s.notifications[id] = n
		}
	}
	return nil
}

// --- providers ---

func (s *MemoryStore) GetProvider(_ context.Context, id string) (model.Provider, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.providers[id]
	if !ok {
		return model.Provider{}, ErrNotFound
	}
	return p, nil
}

func (s *MemoryStore) ListProviders(_ context.Context) ([]model.Provider, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Provider, 0, len(s.providers))
	for _, p := range s.providers {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStore) SaveProvider(_ context.Context, p model.Provider) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.providers[p.ID] = p
	return nil
}

func (s *MemoryStore) CreateProviderVisit(_ context.Context, v model.ProviderVisit) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.providerVisits = append(s.providerVisits, v)
	return nil
}

func (s *MemoryStore) ListProviderVisits(_ context.Context) ([]model.ProviderVisit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.ProviderVisit, len(s.providerVisits))
	copy(out, s.providerVisits)
	return out, nil
}

// --- access control ---

func (s *MemoryStore) CreateAuthRequest(_ context.Context, r model.VisitorAuthorizationRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.authRequests[r.ID] = r
	return nil
}

func (s *MemoryStore) GetAuthRequest(_ context.Context, id string) (model.VisitorAuthorizationRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.authRequests[id]
	if !ok {
		return model.VisitorAuthorizationRequest{}, ErrNotFound
	}
	return r, nil
}

func (s *MemoryStore) ListAuthRequests(_ context.Context) ([]model.VisitorAuthorizationRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.VisitorAuthorizationRequest, 0, len(s.authRequests))
	for _, r := range s.authRequests {
		out = append(out, r)
	}
	sortByDateDesc(out, func(r model.VisitorAuthorizationRequest) time.Time { return r.VisitDate })
	return out, nil
}

func (s *MemoryStore) UpdateAuthRequestStatus(_ context.Context, id string, to model.AuthRequestStatus, expectedFrom ...model.AuthRequestStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.authRequests[id]
	if !ok {
		return ErrNotFound
	}
	if !statusExpected(r.Status, expectedFrom) {
		return ErrConflict
	}
	r.Status = to
	s.authRequests[id] = r
	return nil
}

func (s *MemoryStore) CreateQRPass(_ context.Context, p model.QRPass) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.qrPasses[p.ID] = p
	return nil
}

func (s *MemoryStore) GetQRPass(_ context.Context, id string) (model.QRPass, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.qrPasses[id]
	if !ok {
		return model.QRPass{}, ErrNotFound
	}
	return p, nil
}

func (s *MemoryStore) ListQRPassesByResident(_ context.Context, residentID string) ([]model.QRPass, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.QRPass
	for _, p := range s.qrPasses {
		if p.ResidentID == residentID {
			out = append(out, p)
		}
	}
	sortByDateDesc(out, func(p model.QRPass) time.Time { return p.ValidFrom })
	return out, nil
}

func (s *MemoryStore) UpdateQRPassStatus(_ context.Context, id string, to model.QRPassStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.qrPasses[id]
	if !ok {
		return ErrNotFound
	}
	p.Status = to
	s.qrPasses[id] = p
	return nil
}

func (s *MemoryStore) AppendAccessLog(_ context.Context, e model.AccessLogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accessLog = append(s.accessLog, e)
	return nil
}

func (s *MemoryStore) ListAccessLog(_ context.Context) ([]model.AccessLogEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.AccessLogEntry, len(s.accessLog))
	copy(out, s.accessLog)
	sortByDateDesc(out, func(e model.AccessLogEntry) time.Time { return e.Timestamp })
	return out, nil
}

func (s *MemoryStore) GetGuardByCode(_ context.Context, code string) (model.Guard, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, g := range s.guards {
		if g.AccessCode == code {
			return g, nil
		}
	}
	return model.Guard{}, ErrNotFound
}

func (s *MemoryStore) ListGuards(_ context.Context) ([]model.Guard, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Guard, 0, len(s.guards))
	for _, g := range s.guards {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// PutGuard inserts or replaces a guard. Used by seeding and tests.
func (s *MemoryStore) PutGuard(g model.Guard) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.guards[g.ID] = g
}

// PutAmenity inserts or replaces an amenity. Used by seeding and tests.
func (s *MemoryStore) PutAmenity(a model.Amenity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.amenities[a.ID] = a
}

// --- community ---

func (s *MemoryStore) ListSurveys(_ context.Context) ([]model.Survey, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Survey, 0, len(s.surveys))
	for _, sv := range s.surveys {
		out = append(out, sv)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStore) GetSurvey(_ context.Context, id string) (model.Survey, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sv, ok := s.surveys[id]
	if !ok {
		return model.Survey{}, ErrNotFound
	}
	return sv, nil
}

func (s *MemoryStore) SaveSurvey(_ context.Context, sv model.Survey) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.surveys[sv.ID] = sv
	return nil
}

func (s *MemoryStore) DeleteSurvey(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.surveys[id]; !ok {
		return ErrNotFound
	}
	delete(s.surveys, id)
	return nil
}

func (s *MemoryStore) ListAnnouncements(_ context.Context) ([]model.Announcement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Announcement, len(s.announcements))
	copy(out, s.announcements)
	sortByDateDesc(out, func(a model.Announcement) time.Time { return a.Date })
	return out, nil
}

func (s *MemoryStore) CreateAnnouncement(_ context.Context, a model.Announcement) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.announcements = append(s.announcements, a)
	return nil
}

func (s *MemoryStore) DeleteAnnouncement(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, a := range s.announcements {
		if a.ID == id {
			s.announcements = append(s.announcements[:i], s.announcements[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (s *MemoryStore) ListDirectoryContacts(_ context.Context) ([]model.DirectoryContact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.DirectoryContact, len(s.directory))
	copy(out, s.directory)
	return out, nil
}

func (s *MemoryStore) ListChatMessages(_ context.Context) ([]model.ChatMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.ChatMessage, len(s.chat))
	copy(out, s.chat)
	return out, nil
}

func (s *MemoryStore) AppendChatMessage(_ context.Context, m model.ChatMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chat = append(s.chat, m)
	return nil
}

// --- helpers ---

func statusExpected[T comparable](current T, expected []T) bool {
	if len(expected) == 0 {
		return true
	}
	for _, e := range expected {
		if current == e {
			return true
		}
	}
	return false
}

func txDedupKey(tx model.BankTransaction) string {
	return tx.Date.Format("2006-01-02") + "|" + strconv.FormatFloat(tx.Amount, 'f', 2, 64) + "|" + tx.Reference
}

// sortByDateDesc orders newest first. The slice is reversed before the
// stable sort so that entries sharing a timestamp keep reverse insertion
// order: the latest appended entry wins the tie.
func sortByDateDesc[T any](items []T, date func(T) time.Time) {
	for i, j := 0, len(items)-1; i < j; i, j = i+1, j-1 {
		items[i], items[j] = items[j], items[i]
	}
	sort.SliceStable(items, func(i, j int) bool { return date(items[i]).After(date(items[j])) })
}
