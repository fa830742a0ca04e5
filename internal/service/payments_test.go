package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Xhuk/Habitat-prime/internal/model"
	"github.com/Xhuk/Habitat-prime/internal/oracle"
	"github.com/Xhuk/Habitat-prime/internal/repository"
)

func newPaymentEnv(t *testing.T, orc oracle.AmountExtractor) (*paymentService, *repository.MemoryStore, *recordingBus) {
	t.Helper()
	store := repository.NewMemoryStore()
	store.PutUser(model.User{
		ID: "user-resident1", Name: "Carlos Rivera",
		Email: "resident@comunidad.com", Role: model.RoleResident, Property: "Casa 42",
	})
	bus := &recordingBus{}
	svc := NewPaymentService(store, repository.NewMemorySettings(), bus, orc, testLogger()).(*paymentService)
	return svc, store, bus
}

func TestSubmitTransferStaysPending(t *testing.T) {
	svc, _, bus := newPaymentEnv(t, &oracle.StaticOracle{Amount: 1500})

	p, err := svc.Submit(context.Background(), SubmitPaymentRequest{
		ResidentID: "user-resident1", Amount: 1500,
		Method: model.MethodTransfer, ReceiptRef: "receipt-1.jpg",
	})
	require.NoError(t, err)

	assert.Equal(t, model.PaymentPending, p.Status)
	assert.Equal(t, "Carlos Rivera", p.ResidentName)
	assert.Equal(t, "Casa 42", p.Property)
	require.NotNil(t, p.ExtractedAmount)
	assert.Equal(t, 1500.0, *p.ExtractedAmount)
	assert.Equal(t, []string{model.TopicPaymentSubmitted}, bus.topics)
}

func TestSubmitCardApprovedImmediately(t *testing.T) {
	svc, _, _ := newPaymentEnv(t, &oracle.StaticOracle{})

	p, err := svc.Submit(context.Background(), SubmitPaymentRequest{
		ResidentID: "user-resident1", Amount: 250,
		Method: model.MethodCard, TransactionID: "pi_12345",
	})
	require.NoError(t, err)
	assert.Equal(t, model.PaymentApproved, p.Status)
	assert.Nil(t, p.ExtractedAmount)
}

func TestSubmitOracleFailureIsNotFatal(t *testing.T) {
	svc, _, bus := newPaymentEnv(t, &oracle.StaticOracle{Err: errors.New("oracle down")})

	p, err := svc.Submit(context.Background(), SubmitPaymentRequest{
		ResidentID: "user-resident1", Amount: 1500,
		Method: model.MethodTransfer, ReceiptRef: "receipt-1.jpg",
	})
	require.NoError(t, err)
	assert.Nil(t, p.ExtractedAmount)
	assert.Equal(t, 1500.0, p.EffectiveAmount())
	assert.Len(t, bus.topics, 1)
}

func TestSubmitValidation(t *testing.T) {
	svc, _, _ := newPaymentEnv(t, &oracle.StaticOracle{})

	_, err := svc.Submit(context.Background(), SubmitPaymentRequest{
		ResidentID: "user-resident1", Amount: 0, Method: model.MethodCard,
	})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Submit(context.Background(), SubmitPaymentRequest{
		ResidentID: "user-resident1", Amount: 100, Method: "cash",
	})
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestSubmitIdempotentReplay(t *testing.T) {
	svc, _, bus := newPaymentEnv(t, &oracle.StaticOracle{})

	req := SubmitPaymentRequest{
		ResidentID: "user-resident1", Amount: 1500,
		Method: model.MethodTransfer, IdempotencyKey: "key-1",
	}

	first, err := svc.Submit(context.Background(), req)
	require.NoError(t, err)

	second, err := svc.Submit(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	// the replay publishes nothing
	assert.Len(t, bus.topics, 1)
}

func TestApproveRejectLifecycle(t *testing.T) {
	svc, _, bus := newPaymentEnv(t, &oracle.StaticOracle{})
	ctx := context.Background()

	p, err := svc.Submit(ctx, SubmitPaymentRequest{
		ResidentID: "user-resident1", Amount: 1500, Method: model.MethodTransfer,
	})
	require.NoError(t, err)

	require.NoError(t, svc.Approve(ctx, p.ID))
	assert.Contains(t, bus.topics, model.TopicPaymentApproved)

	// approved payments cannot be rejected
	err = svc.Reject(ctx, p.ID)
	require.ErrorIs(t, err, model.ErrIllegalTransition)
}

func TestRejectPublishesNothing(t *testing.T) {
	svc, _, bus := newPaymentEnv(t, &oracle.StaticOracle{})
	ctx := context.Background()

	p, err := svc.Submit(ctx, SubmitPaymentRequest{
		ResidentID: "user-resident1", Amount: 1500, Method: model.MethodTransfer,
	})
	require.NoError(t, err)
	published := len(bus.topics)

	require.NoError(t, svc.Reject(ctx, p.ID))
	assert.Len(t, bus.topics, published)
}

func TestReconcileAppendsOneRecord(t *testing.T) {
	svc, store, bus := newPaymentEnv(t, &oracle.StaticOracle{})
	ctx := context.Background()

	p, err := svc.Submit(ctx, SubmitPaymentRequest{
		ResidentID: "user-resident1", Amount: 1500, Method: model.MethodTransfer,
	})
	require.NoError(t, err)

	_, err = store.InsertTransactions(ctx, []model.BankTransaction{
		{ID: "bt-1", Date: time.Now(), Amount: 1500, Reference: "REF1"},
	})
	require.NoError(t, err)

	require.NoError(t, svc.Reconcile(ctx, p.ID, "bt-1", "Admin Ana"))

	history, err := svc.History(ctx)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, p.ID, history[0].PaymentID)
	assert.Equal(t, "bt-1", history[0].TransactionID)
	assert.Equal(t, "Admin Ana", history[0].ReconciledBy)

	tx, err := store.GetTransaction(ctx, "bt-1")
	require.NoError(t, err)
	assert.True(t, tx.Reconciled)
	assert.Equal(t, p.ID, tx.PaymentID)

	assert.Contains(t, bus.topics, model.TopicPaymentReconciled)

	// a second reconcile of the same payment fails and appends nothing
	err = svc.Reconcile(ctx, p.ID, "bt-1", "Admin Ana")
	require.Error(t, err)
	history, err = svc.History(ctx)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestMatchCandidatesExcludesReconciled(t *testing.T) {
	svc, store, _ := newPaymentEnv(t, &oracle.StaticOracle{})
	ctx := context.Background()

	p, err := svc.Submit(ctx, SubmitPaymentRequest{
		ResidentID: "user-resident1", Amount: 1500, Method: model.MethodTransfer,
	})
	require.NoError(t, err)

	_, err = store.InsertTransactions(ctx, []model.BankTransaction{
		{ID: "bt-1", Date: time.Now(), Amount: 1500, Reference: "REF1"},
		{ID: "bt-2", Date: time.Now(), Amount: 1500.40, Reference: "REF2"},
		{ID: "bt-3", Date: time.Now(), Amount: 1501, Reference: "REF3"},
	})
	require.NoError(t, err)
	require.NoError(t, store.MarkTransactionReconciled(ctx, "bt-1", "pay-other"))

	got, err := svc.MatchCandidates(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "bt-2", got[0].ID)
}

func TestPropertyInfoBalance(t *testing.T) {
	svc, _, _ := newPaymentEnv(t, &oracle.StaticOracle{})
	ctx := context.Background()

	_, err := svc.Submit(ctx, SubmitPaymentRequest{
		ResidentID: "user-resident1", Amount: 1500, Method: model.MethodTransfer,
	})
	require.NoError(t, err)

	rejected, err := svc.Submit(ctx, SubmitPaymentRequest{
		ResidentID: "user-resident1", Amount: 300, Method: model.MethodTransfer,
	})
	require.NoError(t, err)
	require.NoError(t, svc.Reject(ctx, rejected.ID))

	// approved payments do not count toward the balance
	_, err = svc.Submit(ctx, SubmitPaymentRequest{
		ResidentID: "user-resident1", Amount: 250, Method: model.MethodCard,
	})
	require.NoError(t, err)

	info, err := svc.PropertyInfo(ctx, "user-resident1")
	require.NoError(t, err)
	assert.Equal(t, "Casa 42", info.Address)
	assert.Equal(t, 1800.0, info.OutstandingBalance)
	assert.Len(t, info.PaymentHistory, 3)
}

func TestEnsureExtractedAmountFillsOnce(t *testing.T) {
	svc, _, _ := newPaymentEnv(t, &oracle.StaticOracle{Err: errors.New("oracle down")})
	ctx := context.Background()

	p, err := svc.Submit(ctx, SubmitPaymentRequest{
		ResidentID: "user-resident1", Amount: 1500,
		Method: model.MethodTransfer, ReceiptRef: "receipt-5.jpg",
	})
	require.NoError(t, err)
	require.Nil(t, p.ExtractedAmount)

	// oracle recovers: best-effort retry fills the amount
	svc.extractor = &oracle.StaticOracle{Amount: 1488}
	p, err = svc.EnsureExtractedAmount(ctx, p.ID)
	require.NoError(t, err)
	require.NotNil(t, p.ExtractedAmount)
	assert.Equal(t, 1488.0, *p.ExtractedAmount)

	// once filled the amount is never recomputed
	svc.extractor = &oracle.StaticOracle{Amount: 9999}
	p, err = svc.EnsureExtractedAmount(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 1488.0, *p.ExtractedAmount)
}

func TestEnsureExtractedAmountFailureLeavesPaymentUntouched(t *testing.T) {
	svc, _, _ := newPaymentEnv(t, &oracle.StaticOracle{Err: errors.New("oracle down")})
	ctx := context.Background()

	p, err := svc.Submit(ctx, SubmitPaymentRequest{
		ResidentID: "user-resident1", Amount: 800,
		Method: model.MethodTransfer, ReceiptRef: "receipt-6.jpg",
	})
	require.NoError(t, err)

	got, err := svc.EnsureExtractedAmount(ctx, p.ID)
	require.NoError(t, err)
	assert.Nil(t, got.ExtractedAmount)
}
