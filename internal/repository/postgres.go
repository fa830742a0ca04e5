package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Xhuk/Habitat-prime/internal/model"
)

// PostgresStore backs the reconciliation and booking core with Postgres.
// Community content, providers and gate state keep the in-memory
// implementation via the embedded MemoryStore; they are demo-scale
// collections with no consistency requirements across restarts.
type PostgresStore struct {
	*MemoryStore
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{MemoryStore: NewMemoryStore(), pool: pool}
}

// --- payments ---

func (s *PostgresStore) CreatePayment(ctx context.Context, p model.Payment) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO payments (id, resident_id, resident_name, property, date,
			reported_amount, extracted_amount, receipt_ref, method, transaction_id, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		p.ID, p.ResidentID, p.ResidentName, p.Property, p.Date,
		p.ReportedAmount, p.ExtractedAmount, p.ReceiptRef, p.Method, p.TransactionID, p.Status)
	if err != nil {
		return fmt.Errorf("insert payment: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetPayment(ctx context.Context, id string) (model.Payment, error) {
	rows, err := s.pool.Query(ctx, paymentSelect+` WHERE id = $1`, id)
	if err != nil {
		return model.Payment{}, fmt.Errorf("query payment: %w", err)
	}
	p, err := pgx.CollectOneRow(rows, scanPayment)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Payment{}, ErrNotFound
	}
	return p, err
}

func (s *PostgresStore) ListPayments(ctx context.Context) ([]model.Payment, error) {
	rows, err := s.pool.Query(ctx, paymentSelect+` ORDER BY date DESC`)
	if err != nil {
		return nil, fmt.Errorf("query payments: %w", err)
	}
	return pgx.CollectRows(rows, scanPayment)
}

func (s *PostgresStore) ListPaymentsByResident(ctx context.Context, residentID string) ([]model.Payment, error) {
	rows, err := s.pool.Query(ctx, paymentSelect+` WHERE resident_id = $1 ORDER BY date DESC`, residentID)
	if err != nil {
		return nil, fmt.Errorf("query resident payments: %w", err)
	}
	return pgx.CollectRows(rows, scanPayment)
}

func (s *PostgresStore) UpdatePaymentStatus(ctx context.Context, id string, to model.PaymentStatus, expectedFrom ...model.PaymentStatus) error {
	if len(expectedFrom) == 0 {
		tag, err := s.pool.Exec(ctx, `UPDATE payments SET status = $2 WHERE id = $1`, id, to)
		if err != nil {
			return fmt.Errorf("update payment status: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		return nil
	}
	from := make([]string, len(expectedFrom))
	for i, st := range expectedFrom {
		from[i] = string(st)
	}
	tag, err := s.pool.Exec(ctx,
		`UPDATE payments SET status = $2 WHERE id = $1 AND status = ANY($3)`, id, to, from)
	if err != nil {
		return fmt.Errorf("update payment status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return s.conflictOrMissing(ctx, `SELECT 1 FROM payments WHERE id = $1`, id)
	}
	return nil
}

func (s *PostgresStore) SetExtractedAmount(ctx context.Context, id string, amount float64) error {
	tag, err := s.pool.Exec(ctx, `UPDATE payments SET extracted_amount = $2 WHERE id = $1`, id, amount)
	if err != nil {
		return fmt.Errorf("set extracted amount: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

const paymentSelect = `
	SELECT id, resident_id, resident_name, property, date, reported_amount,
	       extracted_amount, receipt_ref, method, transaction_id, status
	FROM payments`

func scanPayment(row pgx.CollectableRow) (model.Payment, error) {
	var p model.Payment
	err := row.Scan(&p.ID, &p.ResidentID, &p.ResidentName, &p.Property, &p.Date,
		&p.ReportedAmount, &p.ExtractedAmount, &p.ReceiptRef, &p.Method, &p.TransactionID, &p.Status)
	return p, err
}

// --- bank transactions ---

func (s *PostgresStore) InsertTransactions(ctx context.Context, txs []model.BankTransaction) (int, error) {
	inserted := 0
	for _, t := range txs {
		tag, err := s.pool.Exec(ctx, `
			INSERT INTO bank_transactions (id, date, description, amount, reference)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (date_trunc('day', date), amount, reference) DO NOTHING`,
			t.ID, t.Date, t.Description, t.Amount, t.Reference)
		if err != nil {
			return inserted, fmt.Errorf("insert transaction: %w", err)
		}
		inserted += int(tag.RowsAffected())
	}
	return inserted, nil
}

func (s *PostgresStore) AddTransactions(ctx context.Context, txs []model.BankTransaction) error {
	for _, t := range txs {
		_, err := s.pool.Exec(ctx, `
			INSERT INTO bank_transactions (id, date, description, amount, reference)
			VALUES ($1, $2, $3, $4, $5)`,
			t.ID, t.Date, t.Description, t.Amount, t.Reference)
		if err != nil {
			return fmt.Errorf("add transaction: %w", err)
		}
	}
	return nil
}

func (s *PostgresStore) GetTransaction(ctx context.Context, id string) (model.BankTransaction, error) {
	rows, err := s.pool.Query(ctx, txSelect+` WHERE id = $1`, id)
	if err != nil {
		return model.BankTransaction{}, fmt.Errorf("query transaction: %w", err)
	}
	t, err := pgx.CollectOneRow(rows, scanTransaction)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.BankTransaction{}, ErrNotFound
	}
	return t, err
}

func (s *PostgresStore) ListTransactions(ctx context.Context) ([]model.BankTransaction, error) {
	rows, err := s.pool.Query(ctx, txSelect+` ORDER BY date DESC`)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	return pgx.CollectRows(rows, scanTransaction)
}

func (s *PostgresStore) MarkTransactionReconciled(ctx context.Context, id, paymentID string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE bank_transactions SET reconciled = TRUE, payment_id = $2 WHERE id = $1`, id, paymentID)
	if err != nil {
		return fmt.Errorf("mark transaction reconciled: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

const txSelect = `
	SELECT id, date, description, amount, reference, reconciled, payment_id
	FROM bank_transactions`

func scanTransaction(row pgx.CollectableRow) (model.BankTransaction, error) {
	var t model.BankTransaction
	err := row.Scan(&t.ID, &t.Date, &t.Description, &t.Amount, &t.Reference, &t.Reconciled, &t.PaymentID)
	return t, err
}

// --- reconciliation history ---

func (s *PostgresStore) AppendReconciliation(ctx context.Context, rec model.ReconciliationRecord) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO reconciliation_history (id, reconciled_date, resident_name,
			property, amount, reconciled_by, payment_id, transaction_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		rec.ID, rec.ReconciledDate, rec.ResidentName, rec.Property,
		rec.Amount, rec.ReconciledBy, rec.PaymentID, rec.TransactionID)
	if err != nil {
		return fmt.Errorf("insert reconciliation: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListReconciliations(ctx context.Context) ([]model.ReconciliationRecord, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, reconciled_date, resident_name, property, amount,
		       reconciled_by, payment_id, transaction_id
		FROM reconciliation_history ORDER BY reconciled_date DESC`)
	if err != nil {
		return nil, fmt.Errorf("query reconciliations: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.ReconciliationRecord, error) {
		var r model.ReconciliationRecord
		err := row.Scan(&r.ID, &r.ReconciledDate, &r.ResidentName, &r.Property,
			&r.Amount, &r.ReconciledBy, &r.PaymentID, &r.TransactionID)
		return r, err
	})
}

// --- bookings ---

// CreateBooking serializes concurrent requests for the same amenity by
// locking the amenity row, then re-checks the overlap and daily-cap
// invariants inside the transaction before inserting.
func (s *PostgresStore) CreateBooking(ctx context.Context, b model.Booking, maxPerDay int) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin booking tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var amenityID string
	err = tx.QueryRow(ctx, `SELECT id FROM amenities WHERE id = $1 FOR UPDATE`, b.AmenityID).Scan(&amenityID)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("lock amenity: %w", err)
	}

	rows, err := tx.Query(ctx, `
		SELECT start_time, end_time FROM bookings
		WHERE amenity_id = $1 AND date = $2 AND status <> $3`,
		b.AmenityID, b.Date, model.BookingCancelled)
	if err != nil {
		return fmt.Errorf("query day bookings: %w", err)
	}
	type window struct{ start, end string }
	var windows []window
	for rows.Next() {
		var w window
		if err := rows.Scan(&w.start, &w.end); err != nil {
			rows.Close()
			return fmt.Errorf("scan booking window: %w", err)
		}
		windows = append(windows, w)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate day bookings: %w", err)
	}

	for _, w := range windows {
		slot := model.Slot{Start: w.start, End: w.end}
		if slot.Overlaps(b.StartTime, b.EndTime) {
			return ErrSlotTaken
		}
	}
	if maxPerDay > 0 && len(windows) >= maxPerDay {
		return ErrDailyLimitReached
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO bookings (id, amenity_id, amenity_name, resident_id, resident_name,
			property, date, start_time, end_time, status, cost, cleaning_cost, receipt_ref, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		b.ID, b.AmenityID, b.AmenityName, b.ResidentID, b.ResidentName,
		b.Property, b.Date, b.StartTime, b.EndTime, b.Status, b.Cost, b.CleaningCost, b.ReceiptRef, b.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert booking: %w", err)
	}
	return tx.Commit(ctx)
}

func (s *PostgresStore) GetBooking(ctx context.Context, id string) (model.Booking, error) {
	rows, err := s.pool.Query(ctx, bookingSelect+` WHERE id = $1`, id)
	if err != nil {
		return model.Booking{}, fmt.Errorf("query booking: %w", err)
	}
	b, err := pgx.CollectOneRow(rows, scanBooking)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Booking{}, ErrNotFound
	}
	return b, err
}

func (s *PostgresStore) ListBookings(ctx context.Context) ([]model.Booking, error) {
	rows, err := s.pool.Query(ctx, bookingSelect+` ORDER BY date DESC, start_time`)
	if err != nil {
		return nil, fmt.Errorf("query bookings: %w", err)
	}
	return pgx.CollectRows(rows, scanBooking)
}

func (s *PostgresStore) ListBookingsByResident(ctx context.Context, residentID string) ([]model.Booking, error) {
	rows, err := s.pool.Query(ctx, bookingSelect+` WHERE resident_id = $1 ORDER BY date DESC, start_time`, residentID)
	if err != nil {
		return nil, fmt.Errorf("query resident bookings: %w", err)
	}
	return pgx.CollectRows(rows, scanBooking)
}

func (s *PostgresStore) ListBookingsForDay(ctx context.Context, amenityID, date string) ([]model.Booking, error) {
	rows, err := s.pool.Query(ctx, bookingSelect+` WHERE amenity_id = $1 AND date = $2 ORDER BY start_time`, amenityID, date)
	if err != nil {
		return nil, fmt.Errorf("query day bookings: %w", err)
	}
	return pgx.CollectRows(rows, scanBooking)
}

func (s *PostgresStore) UpdateBookingStatus(ctx context.Context, id string, to model.BookingStatus, expectedFrom ...model.BookingStatus) error {
	if len(expectedFrom) == 0 {
		tag, err := s.pool.Exec(ctx, `UPDATE bookings SET status = $2 WHERE id = $1`, id, to)
		if err != nil {
			return fmt.Errorf("update booking status: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		return nil
	}
	from := make([]string, len(expectedFrom))
	for i, st := range expectedFrom {
		from[i] = string(st)
	}
	tag, err := s.pool.Exec(ctx,
		`UPDATE bookings SET status = $2 WHERE id = $1 AND status = ANY($3)`, id, to, from)
	if err != nil {
		return fmt.Errorf("update booking status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return s.conflictOrMissing(ctx, `SELECT 1 FROM bookings WHERE id = $1`, id)
	}
	return nil
}

func (s *PostgresStore) AttachBookingReceipt(ctx context.Context, id, receiptRef string) error {
	tag, err := s.pool.Exec(ctx, `UPDATE bookings SET receipt_ref = $2 WHERE id = $1`, id, receiptRef)
	if err != nil {
		return fmt.Errorf("attach booking receipt: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

const bookingSelect = `
	SELECT id, amenity_id, amenity_name, resident_id, resident_name, property,
	       date, start_time, end_time, status, cost, cleaning_cost, receipt_ref, created_at
	FROM bookings`

func scanBooking(row pgx.CollectableRow) (model.Booking, error) {
	var b model.Booking
	err := row.Scan(&b.ID, &b.AmenityID, &b.AmenityName, &b.ResidentID, &b.ResidentName,
		&b.Property, &b.Date, &b.StartTime, &b.EndTime, &b.Status, &b.Cost,
		&b.CleaningCost, &b.ReceiptRef, &b.CreatedAt)
	return b, err
}

// --- amenities ---

func (s *PostgresStore) GetAmenity(ctx context.Context, id string) (model.Amenity, error) {
	rows, err := s.pool.Query(ctx, amenitySelect+` WHERE id = $1`, id)
	if err != nil {
		return model.Amenity{}, fmt.Errorf("query amenity: %w", err)
	}
	a, err := pgx.CollectOneRow(rows, scanAmenity)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Amenity{}, ErrNotFound
	}
	return a, err
}

func (s *PostgresStore) UpdateAmenity(ctx context.Context, a model.Amenity) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE amenities
		SET name = $2, description = $3, image_url = $4, cost = $5,
		    booking_block_hours = $6, max_rentals_per_day = $7, capacity = $8,
		    cleaning = $9
		WHERE id = $1`,
		a.ID, a.Name, a.Description, a.ImageURL, a.Cost,
		a.BookingBlockHours, a.MaxRentalsPerDay, a.Capacity, a.Cleaning)
	if err != nil {
		return fmt.Errorf("update amenity: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) ListAmenities(ctx context.Context) ([]model.Amenity, error) {
	rows, err := s.pool.Query(ctx, amenitySelect+` ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query amenities: %w", err)
	}
	return pgx.CollectRows(rows, scanAmenity)
}

const amenitySelect = `
	SELECT id, name, description, image_url, cost, booking_block_hours,
	       max_rentals_per_day, capacity, cleaning
	FROM amenities`

func scanAmenity(row pgx.CollectableRow) (model.Amenity, error) {
	var a model.Amenity
	var cleaning []byte
	err := row.Scan(&a.ID, &a.Name, &a.Description, &a.ImageURL, &a.Cost,
		&a.BookingBlockHours, &a.MaxRentalsPerDay, &a.Capacity, &cleaning)
	if err != nil {
		return a, err
	}
	if err := json.Unmarshal(cleaning, &a.Cleaning); err != nil {
		return a, fmt.Errorf("decode cleaning policy: %w", err)
	}
	return a, nil
}

// --- users ---

func (s *PostgresStore) GetUser(ctx context.Context, id string) (model.User, error) {
	rows, err := s.pool.Query(ctx, userSelect+` WHERE id = $1`, id)
	if err != nil {
		return model.User{}, fmt.Errorf("query user: %w", err)
	}
	u, err := pgx.CollectOneRow(rows, scanUser)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.User{}, ErrNotFound
	}
	return u, err
}

func (s *PostgresStore) GetUserByEmail(ctx context.Context, email string) (model.User, error) {
	rows, err := s.pool.Query(ctx, userSelect+` WHERE lower(email) = lower($1) AND email <> ''`, email)
	if err != nil {
		return model.User{}, fmt.Errorf("query user by email: %w", err)
	}
	u, err := pgx.CollectOneRow(rows, scanUser)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.User{}, ErrNotFound
	}
	return u, err
}

func (s *PostgresStore) ListUsers(ctx context.Context) ([]model.User, error) {
	rows, err := s.pool.Query(ctx, userSelect+` ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	return pgx.CollectRows(rows, scanUser)
}

func (s *PostgresStore) ListUsersByRole(ctx context.Context, role model.Role) ([]model.User, error) {
	rows, err := s.pool.Query(ctx, userSelect+` WHERE role = $1 ORDER BY id`, role)
	if err != nil {
		return nil, fmt.Errorf("query users by role: %w", err)
	}
	return pgx.CollectRows(rows, scanUser)
}

func (s *PostgresStore) UpdateNotificationSettings(ctx context.Context, userID string, ns model.NotificationSettings) error {
	data, err := json.Marshal(ns)
	if err != nil {
		return fmt.Errorf("encode notification settings: %w", err)
	}
	tag, err := s.pool.Exec(ctx, `UPDATE users SET notification_settings = $2 WHERE id = $1`, userID, data)
	if err != nil {
		return fmt.Errorf("update notification settings: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

const userSelect = `
	SELECT id, name, email, role, property, phone, avatar_url, notification_settings
	FROM users`

func scanUser(row pgx.CollectableRow) (model.User, error) {
	var u model.User
	var settings []byte
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.Property, &u.Phone, &u.AvatarURL, &settings)
	if err != nil {
		return u, err
	}
	if len(settings) > 0 {
		var ns model.NotificationSettings
		if err := json.Unmarshal(settings, &ns); err == nil {
			u.NotificationSettings = &ns
		}
	}
	return u, nil
}

func (s *PostgresStore) GetGuardByCode(ctx context.Context, code string) (model.Guard, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, name, access_code, shift, status, COALESCE(last_check_in, 'epoch'::timestamptz)
		FROM guards WHERE access_code = $1`, code)
	if err != nil {
		return model.Guard{}, fmt.Errorf("query guard: %w", err)
	}
	g, err := pgx.CollectOneRow(rows, func(row pgx.CollectableRow) (model.Guard, error) {
		var g model.Guard
		err := row.Scan(&g.ID, &g.Name, &g.AccessCode, &g.Shift, &g.Status, &g.LastCheckIn)
		return g, err
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Guard{}, ErrNotFound
	}
	return g, err
}

func (s *PostgresStore) ListGuards(ctx context.Context) ([]model.Guard, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, name, access_code, shift, status, COALESCE(last_check_in, 'epoch'::timestamptz)
		FROM guards ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query guards: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Guard, error) {
		var g model.Guard
		err := row.Scan(&g.ID, &g.Name, &g.AccessCode, &g.Shift, &g.Status, &g.LastCheckIn)
		return g, err
	})
}

// --- notifications ---

func (s *PostgresStore) CreateNotification(ctx context.Context, n model.Notification) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO notifications (id, recipient_kind, recipient_user, recipient_role,
			title, description, kind, push, read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		n.ID, n.Recipient.Kind, n.Recipient.UserID, n.Recipient.Role,
		n.Title, n.Description, n.Kind, n.Push, n.Read, n.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListNotificationsFor(ctx context.Context, u model.User) ([]model.Notification, error) {
	rows, err := s.pool.Query(ctx, notificationSelect+`
		WHERE (recipient_kind = $1 AND recipient_user = $2)
		   OR (recipient_kind = $3 AND recipient_role = $4)
		   OR recipient_kind = $5
		ORDER BY created_at DESC`,
		model.RecipientIndividual, u.ID, model.RecipientRole, u.Role, model.RecipientBroadcast)
	if err != nil {
		return nil, fmt.Errorf("query notifications: %w", err)
	}
	return pgx.CollectRows(rows, scanNotification)
}

func (s *PostgresStore) MarkNotificationRead(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `UPDATE notifications SET read = TRUE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) MarkAllNotificationsRead(ctx context.Context, u model.User) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE notifications SET read = TRUE
		WHERE read = FALSE
		  AND ((recipient_kind = $1 AND recipient_user = $2)
		    OR (recipient_kind = $3 AND recipient_role = $4)
		    OR recipient_kind = $5)`,
		model.RecipientIndividual, u.ID, model.RecipientRole, u.Role, model.RecipientBroadcast)
	if err != nil {
		return fmt.Errorf("mark all notifications read: %w", err)
	}
	return nil
}

const notificationSelect = `
	SELECT id, recipient_kind, recipient_user, recipient_role, title,
	       description, kind, push, read, created_at
	FROM notifications`

func scanNotification(row pgx.CollectableRow) (model.Notification, error) {
	var n model.Notification
	err := row.Scan(&n.ID, &n.Recipient.Kind, &n.Recipient.UserID, &n.Recipient.Role,
		&n.Title, &n.Description, &n.Kind, &n.Push, &n.Read, &n.CreatedAt)
	return n, err
}

// conflictOrMissing maps a zero-row compare-and-set update to the right
// sentinel: ErrNotFound when the row is absent, ErrConflict otherwise.
func (s *PostgresStore) conflictOrMissing(ctx context.Context, existsQuery, id string) error {
	var one int
	err := s.pool.QueryRow(ctx, existsQuery, id).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("check existence: %w", err)
	}
	return ErrConflict
}
