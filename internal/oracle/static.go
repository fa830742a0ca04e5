package oracle

import (
	"context"
	"time"

	"github.com/Xhuk/Habitat-prime/internal/model"
)

// StaticOracle is the development stand-in for the extraction service. It
// answers every receipt with a fixed amount and every statement with two
// canned lines, mirroring the demo fixtures.
type StaticOracle struct {
	// Amount is returned for every receipt. Zero means "extraction failed".
	Amount float64

	// Err, when set, is returned from every call.
	Err error

	// Now is injectable for tests; defaults to time.Now.
	Now func() time.Time
}

func (o *StaticOracle) ExtractAmount(_ context.Context, _ string) (float64, error) {
	if o.Err != nil {
		return 0, o.Err
	}
	return o.Amount, nil
}

func (o *StaticOracle) ParseStatement(_ context.Context, _ string) ([]model.BankTransaction, error) {
	if o.Err != nil {
		return nil, o.Err
	}
	now := time.Now()
	if o.Now != nil {
		now = o.Now()
	}
	return []model.BankTransaction{
		{Date: now, Description: "IA: SPEI FROM NEW BANK", Amount: 1500.00, Reference: "GEMINI1"},
		{Date: now, Description: "IA: OXXO DEPOSIT", Amount: 250.00, Reference: "GEMINI2"},
	}, nil
}
