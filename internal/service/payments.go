package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Xhuk/Habitat-prime/internal/model"
	"github.com/Xhuk/Habitat-prime/internal/oracle"
	"github.com/Xhuk/Habitat-prime/internal/repository"
)

// PaymentService drives the payment lifecycle: submission, the admin
// approve/reject decision, and bank reconciliation. Transport layers depend
// on this interface, not on the concrete implementation.
type PaymentService interface {
	Submit(ctx context.Context, req SubmitPaymentRequest) (model.Payment, error)
	Approve(ctx context.Context, paymentID string) error
	Reject(ctx context.Context, paymentID string) error
	Reconcile(ctx context.Context, paymentID, transactionID, reconciledBy string) error
	EnsureExtractedAmount(ctx context.Context, paymentID string) (model.Payment, error)
	Get(ctx context.Context, paymentID string) (model.Payment, error)
	ListPending(ctx context.Context) ([]model.Payment, error)
	ListForResident(ctx context.Context, residentID string) ([]model.Payment, error)
	MatchCandidates(ctx context.Context, paymentID string) ([]model.BankTransaction, error)
	History(ctx context.Context) ([]model.ReconciliationRecord, error)
	PropertyInfo(ctx context.Context, residentID string) (model.PropertyInfo, error)
}

type SubmitPaymentRequest struct {
	ResidentID     string
	Amount         float64
	Method         model.PaymentMethod
	ReceiptRef     string
	TransactionID  string
	IdempotencyKey string
}

type paymentService struct {
	store     repository.Store
	settings  repository.SettingsStore
	bus       repository.MessageBus
	extractor oracle.AmountExtractor
	logger    *slog.Logger
	now       func() time.Time
}

func NewPaymentService(store repository.Store, settings repository.SettingsStore, bus repository.MessageBus, extractor oracle.AmountExtractor, logger *slog.Logger) PaymentService {
	return &paymentService{
		store:     store,
		settings:  settings,
		bus:       bus,
		extractor: extractor,
		logger:    logger,
		now:       time.Now,
	}
}

// Submit registers a resident payment. Card payments are approved on the
// spot; transfers wait for the admin. When a receipt is attached the amount
// oracle runs once, and its failure is never fatal: the payment proceeds on
// the reported amount alone.
func (s *paymentService) Submit(ctx context.Context, req SubmitPaymentRequest) (model.Payment, error) {
	if req.Amount <= 0 {
		return model.Payment{}, fmt.Errorf("%w: amount must be positive", ErrInvalidInput)
	}
	if req.Method != model.MethodCard && req.Method != model.MethodTransfer {
		return model.Payment{}, fmt.Errorf("%w: unknown payment method %q", ErrInvalidInput, req.Method)
	}

	if req.IdempotencyKey != "" {
		if p, ok, err := s.replayedPayment(ctx, req.IdempotencyKey); err != nil {
			return model.Payment{}, err
		} else if ok {
			return p, nil
		}
	}

	resident, err := s.store.GetUser(ctx, req.ResidentID)
	if err != nil {
		return model.Payment{}, fmt.Errorf("lookup resident: %w", err)
	}

	status := model.PaymentPending
	if req.Method == model.MethodCard {
		status = model.PaymentApproved
	}

	p := model.Payment{
		ID:             "pay-" + uuid.NewString(),
		ResidentID:     resident.ID,
		ResidentName:   resident.Name,
		Property:       resident.Property,
		Date:           s.now(),
		ReportedAmount: req.Amount,
		ReceiptRef:     req.ReceiptRef,
		Method:         req.Method,
		TransactionID:  req.TransactionID,
		Status:         status,
	}

	if req.ReceiptRef != "" {
		if amount, err := s.extractor.ExtractAmount(ctx, req.ReceiptRef); err != nil {
			s.logger.Warn("receipt extraction failed, continuing on reported amount",
				"payment_id", p.ID, "error", err)
		} else {
			p.ExtractedAmount = &amount
		}
	}

	if err := s.store.CreatePayment(ctx, p); err != nil {
		return model.Payment{}, fmt.Errorf("create payment: %w", err)
	}

	if req.IdempotencyKey != "" {
		s.rememberPayment(ctx, req.IdempotencyKey, p.ID)
	}

	s.publish(model.TopicPaymentSubmitted, model.PaymentSubmittedEvent{
		PaymentID:    p.ID,
		ResidentName: p.ResidentName,
		Amount:       p.ReportedAmount,
		At:           p.Date,
	})

	s.logger.Info("payment submitted",
		"payment_id", p.ID, "resident_id", p.ResidentID,
		"amount", p.ReportedAmount, "method", p.Method, "status", p.Status)
	return p, nil
}

func (s *paymentService) Approve(ctx context.Context, paymentID string) error {
	p, err := s.store.GetPayment(ctx, paymentID)
	if err != nil {
		return err
	}
	if _, err := model.TransitionPayment(p.Status, model.PaymentEventApprove); err != nil {
		return err
	}
	if err := s.store.UpdatePaymentStatus(ctx, paymentID, model.PaymentApproved, model.PaymentPending); err != nil {
		return err
	}

	s.publish(model.TopicPaymentApproved, model.PaymentApprovedEvent{
		PaymentID:  p.ID,
		ResidentID: p.ResidentID,
		Amount:     p.ReportedAmount,
	})
	s.logger.Info("payment approved", "payment_id", paymentID)
	return nil
}

// Reject moves a pending payment to rejected. No notification is published;
// the rejection shows up in the resident's outstanding balance instead.
func (s *paymentService) Reject(ctx context.Context, paymentID string) error {
	p, err := s.store.GetPayment(ctx, paymentID)
	if err != nil {
		return err
	}
	if _, err := model.TransitionPayment(p.Status, model.PaymentEventReject); err != nil {
		return err
	}
	if err := s.store.UpdatePaymentStatus(ctx, paymentID, model.PaymentRejected, model.PaymentPending); err != nil {
		return err
	}
	s.logger.Info("payment rejected", "payment_id", paymentID)
	return nil
}

// Reconcile binds a payment to a bank transaction, marks both sides and
// appends exactly one history record. The status update is a compare-and-set
// so two concurrent reconciles cannot both succeed.
func (s *paymentService) Reconcile(ctx context.Context, paymentID, transactionID, reconciledBy string) error {
	p, err := s.store.GetPayment(ctx, paymentID)
	if err != nil {
		return err
	}
	if _, err := model.TransitionPayment(p.Status, model.PaymentEventReconcile); err != nil {
		return err
	}
	tx, err := s.store.GetTransaction(ctx, transactionID)
	if err != nil {
		return fmt.Errorf("lookup transaction: %w", err)
	}

	if err := s.store.UpdatePaymentStatus(ctx, paymentID, model.PaymentReconciled,
		model.PaymentPending, model.PaymentApproved); err != nil {
		return err
	}
	if err := s.store.MarkTransactionReconciled(ctx, tx.ID, p.ID); err != nil {
		return fmt.Errorf("mark transaction: %w", err)
	}
	if err := s.store.AppendReconciliation(ctx, model.ReconciliationRecord{
		ID:             "rh-" + uuid.NewString(),
		ReconciledDate: s.now(),
		ResidentName:   p.ResidentName,
		Property:       p.Property,
		Amount:         p.ReportedAmount,
		ReconciledBy:   reconciledBy,
		PaymentID:      p.ID,
		TransactionID:  tx.ID,
	}); err != nil {
		return fmt.Errorf("append history: %w", err)
	}

	s.publish(model.TopicPaymentReconciled, model.PaymentReconciledEvent{
		PaymentID:     p.ID,
		TransactionID: tx.ID,
		ResidentID:    p.ResidentID,
	})
	s.logger.Info("payment reconciled",
		"payment_id", paymentID, "transaction_id", transactionID, "by", reconciledBy)
	return nil
}

// EnsureExtractedAmount runs the amount oracle for a payment that does not
// have an extracted amount yet. A payment that already has one, or that has
// no receipt, is returned untouched. Oracle failures are logged and the
// payment comes back unchanged; the call itself never fails on them.
func (s *paymentService) EnsureExtractedAmount(ctx context.Context, paymentID string) (model.Payment, error) {
	p, err := s.store.GetPayment(ctx, paymentID)
	if err != nil {
		return model.Payment{}, err
	}
	if p.ExtractedAmount != nil || p.ReceiptRef == "" {
		return p, nil
	}

	amount, err := s.extractor.ExtractAmount(ctx, p.ReceiptRef)
	if err != nil {
		s.logger.Warn("receipt extraction failed",
			"payment_id", p.ID, "error", err)
		return p, nil
	}
	if err := s.store.SetExtractedAmount(ctx, p.ID, amount); err != nil {
		return model.Payment{}, fmt.Errorf("store extracted amount: %w", err)
	}
	p.ExtractedAmount = &amount
	return p, nil
}

func (s *paymentService) Get(ctx context.Context, paymentID string) (model.Payment, error) {
	return s.store.GetPayment(ctx, paymentID)
}

// ListPending returns the reconciliation work queue for the admin.
func (s *paymentService) ListPending(ctx context.Context) ([]model.Payment, error) {
	all, err := s.store.ListPayments(ctx)
	if err != nil {
		return nil, err
	}
	var out []model.Payment
	for _, p := range all {
		if p.Status == model.PaymentPending {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *paymentService) ListForResident(ctx context.Context, residentID string) ([]model.Payment, error) {
	return s.store.ListPaymentsByResident(ctx, residentID)
}

// MatchCandidates returns the bank transactions whose amount is within the
// matching tolerance of the payment's effective amount. Already-reconciled
// transactions are excluded.
func (s *paymentService) MatchCandidates(ctx context.Context, paymentID string) ([]model.BankTransaction, error) {
	p, err := s.store.GetPayment(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	txs, err := s.store.ListTransactions(ctx)
	if err != nil {
		return nil, err
	}
	available := txs[:0:0]
	for _, t := range txs {
		if !t.Reconciled {
			available = append(available, t)
		}
	}
	return model.MatchCandidates(p, available), nil
}

func (s *paymentService) History(ctx context.Context) ([]model.ReconciliationRecord, error) {
	return s.store.ListReconciliations(ctx)
}

// PropertyInfo builds the resident's financial summary. The outstanding
// balance sums the reported amounts of pending and rejected payments.
func (s *paymentService) PropertyInfo(ctx context.Context, residentID string) (model.PropertyInfo, error) {
	resident, err := s.store.GetUser(ctx, residentID)
	if err != nil {
		return model.PropertyInfo{}, err
	}
	payments, err := s.store.ListPaymentsByResident(ctx, residentID)
	if err != nil {
		return model.PropertyInfo{}, err
	}
	var balance float64
	for _, p := range payments {
		if p.Status == model.PaymentPending || p.Status == model.PaymentRejected {
			balance += p.ReportedAmount
		}
	}
	return model.PropertyInfo{
		Address:            resident.Property,
		Owner:              resident.Name,
		Residents:          []string{resident.Name},
		OutstandingBalance: balance,
		PaymentHistory:     payments,
	}, nil
}

// replayedPayment returns the previously created payment when the
// idempotency key has been seen before.
func (s *paymentService) replayedPayment(ctx context.Context, key string) (model.Payment, bool, error) {
	data, err := s.settings.Get(ctx, "idem:payment:"+key)
	if err != nil {
		return model.Payment{}, false, nil
	}
	var paymentID string
	if err := json.Unmarshal(data, &paymentID); err != nil {
		return model.Payment{}, false, nil
	}
	p, err := s.store.GetPayment(ctx, paymentID)
	if err != nil {
		return model.Payment{}, false, nil
	}
	return p, true, nil
}

func (s *paymentService) rememberPayment(ctx context.Context, key, paymentID string) {
	data, _ := json.Marshal(paymentID)
	if _, err := s.settings.SetNX(ctx, "idem:payment:"+key, data, 24*time.Hour); err != nil {
		s.logger.Warn("idempotency marker not stored", "key", key, "error", err)
	}
}

func (s *paymentService) publish(topic string, event any) {
	data, err := json.Marshal(event)
	if err != nil {
		s.logger.Error("encode event", "topic", topic, "error", err)
		return
	}
	if err := s.bus.Publish(topic, data); err != nil {
		s.logger.Error("publish event", "topic", topic, "error", err)
	}
}
