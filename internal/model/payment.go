package model

import (
	"errors"
	"fmt"
	"math"
	"time"
)

type PaymentMethod string

const (
	MethodCard     PaymentMethod = "card"
	MethodTransfer PaymentMethod = "transfer"
)

type PaymentStatus string

const (
	PaymentPending    PaymentStatus = "pending"
	PaymentApproved   PaymentStatus = "approved"
	PaymentRejected   PaymentStatus = "rejected"
	PaymentReconciled PaymentStatus = "reconciled"
)

type PaymentEvent string

const (
	PaymentEventApprove   PaymentEvent = "approve"
	PaymentEventReject    PaymentEvent = "reject"
	PaymentEventReconcile PaymentEvent = "reconcile"
)

var ErrIllegalTransition = errors.New("illegal status transition")

// TransitionPayment is the single transition function for the payment state
// machine. Approve and reject are legal only from pending; reconcile is legal
// from pending or approved. Rejected and reconciled are terminal.
func TransitionPayment(current PaymentStatus, event PaymentEvent) (PaymentStatus, error) {
	switch event {
	case PaymentEventApprove:
		if current == PaymentPending {
			return PaymentApproved, nil
		}
	case PaymentEventReject:
		if current == PaymentPending {
			return PaymentRejected, nil
		}
	case PaymentEventReconcile:
		if current == PaymentPending || current == PaymentApproved {
			return PaymentReconciled, nil
		}
	}
	return current, fmt.Errorf("%w: payment %s on %s", ErrIllegalTransition, event, current)
}

type Payment struct {
	ID              string        `json:"id"`
	ResidentID      string        `json:"resident_id"`
	ResidentName    string        `json:"resident_name"`
	Property        string        `json:"property"`
	Date            time.Time     `json:"date"`
	ReportedAmount  float64       `json:"reported_amount"`
	ExtractedAmount *float64      `json:"extracted_amount"` // filled once by the amount oracle
	ReceiptRef      string        `json:"receipt_ref,omitempty"`
	Method          PaymentMethod `json:"method"`
	TransactionID   string        `json:"transaction_id,omitempty"`
	Status          PaymentStatus `json:"status"`
}

// EffectiveAmount is the amount used for bank matching: the oracle-extracted
// amount when present, the resident-reported amount otherwise.
func (p Payment) EffectiveAmount() float64 {
	if p.ExtractedAmount != nil {
		return *p.ExtractedAmount
	}
	return p.ReportedAmount
}

// HasDiscrepancy reports whether the reported and extracted amounts disagree
// by at least one currency unit. It is false while no extracted amount exists.
// The >= 1.0 flagging threshold is the exact complement of the < 1.0 matching
// tolerance used by MatchCandidates.
func (p Payment) HasDiscrepancy() bool {
	if p.ExtractedAmount == nil {
		return false
	}
	return math.Abs(p.ReportedAmount-*p.ExtractedAmount) >= 1.0
}

type BankTransaction struct {
	ID          string    `json:"id"`
	Date        time.Time `json:"date"`
	Description string    `json:"description"`
	Amount      float64   `json:"amount"`
	Reference   string    `json:"reference"`
	Reconciled  bool      `json:"reconciled,omitempty"`
	PaymentID   string    `json:"payment_id,omitempty"`
}

// MatchCandidates returns the transactions whose amount is strictly within
// one currency unit of the payment's effective amount. A difference of
// exactly 1.0 does not match.
func MatchCandidates(p Payment, txs []BankTransaction) []BankTransaction {
	var out []BankTransaction
	want := p.EffectiveAmount()
	for _, t := range txs {
		if math.Abs(t.Amount-want) < 1.0 {
			out = append(out, t)
		}
	}
	return out
}

type ReconciliationRecord struct {
	ID             string    `json:"id"`
	ReconciledDate time.Time `json:"reconciled_date"`
	ResidentName   string    `json:"resident_name"`
	Property       string    `json:"property"`
	Amount         float64   `json:"amount"`
	ReconciledBy   string    `json:"reconciled_by"`
	PaymentID      string    `json:"payment_id"`
	TransactionID  string    `json:"transaction_id"`
}
