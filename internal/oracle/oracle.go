// Package oracle is the boundary to the document-understanding service that
// reads payment receipts and bank statements. Extraction is advisory: callers
// must treat any error as "no answer" and continue on reported amounts.
package oracle

import (
	"context"

	"github.com/Xhuk/Habitat-prime/internal/model"
)

// AmountExtractor reads a single amount off a payment receipt.
type AmountExtractor interface {
	ExtractAmount(ctx context.Context, receiptRef string) (float64, error)
}

// StatementParser turns a raw bank statement upload into transaction lines.
// Returned lines carry no IDs; the ingestion service assigns them.
type StatementParser interface {
	ParseStatement(ctx context.Context, fileContent string) ([]model.BankTransaction, error)
}

// Oracle combines both extraction capabilities.
type Oracle interface {
	AmountExtractor
	StatementParser
}
