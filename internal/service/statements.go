package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/Xhuk/Habitat-prime/internal/model"
	"github.com/Xhuk/Habitat-prime/internal/oracle"
	"github.com/Xhuk/Habitat-prime/internal/repository"
)

// StatementService ingests bank statement uploads and exposes the resulting
// transaction pool.
type StatementService interface {
	Ingest(ctx context.Context, fileContent string) (IngestResult, error)
	AddTransactions(ctx context.Context, txs []model.BankTransaction) ([]model.BankTransaction, error)
	ListTransactions(ctx context.Context) ([]model.BankTransaction, error)
}

type IngestResult struct {
	Parsed   int `json:"parsed"`
	Inserted int `json:"inserted"`
	Skipped  int `json:"skipped"`
}

type statementService struct {
	store  repository.TransactionStore
	parser oracle.StatementParser
	logger *slog.Logger
}

func NewStatementService(store repository.TransactionStore, parser oracle.StatementParser, logger *slog.Logger) StatementService {
	return &statementService{store: store, parser: parser, logger: logger}
}

// Ingest parses the upload and inserts the extracted lines. Lines that
// duplicate an already-known transaction (same day, amount and reference)
// are skipped, so re-uploading a statement is harmless.
func (s *statementService) Ingest(ctx context.Context, fileContent string) (IngestResult, error) {
	if strings.TrimSpace(fileContent) == "" {
		return IngestResult{}, fmt.Errorf("%w: empty statement", ErrInvalidInput)
	}

	lines, err := s.parser.ParseStatement(ctx, fileContent)
	if err != nil {
		return IngestResult{}, fmt.Errorf("parse statement: %w", err)
	}
	if len(lines) == 0 {
		return IngestResult{}, fmt.Errorf("%w: no transactions found in statement", ErrInvalidInput)
	}

	for i := range lines {
		lines[i].ID = "bt-" + uuid.NewString()
	}
	inserted, err := s.store.InsertTransactions(ctx, lines)
	if err != nil {
		return IngestResult{}, fmt.Errorf("insert transactions: %w", err)
	}

	res := IngestResult{Parsed: len(lines), Inserted: inserted, Skipped: len(lines) - inserted}
	s.logger.Info("statement ingested",
		"parsed", res.Parsed, "inserted", res.Inserted, "skipped", res.Skipped)
	return res, nil
}

// AddTransactions stores hand-entered rows as-is. Unlike Ingest there is no
// dedup: entering a row twice is the admin's call.
func (s *statementService) AddTransactions(ctx context.Context, txs []model.BankTransaction) ([]model.BankTransaction, error) {
	if len(txs) == 0 {
		return nil, fmt.Errorf("%w: no transactions provided", ErrInvalidInput)
	}
	for i := range txs {
		if txs[i].Amount <= 0 {
			return nil, fmt.Errorf("%w: transaction amount must be positive", ErrInvalidInput)
		}
		if txs[i].ID == "" {
			txs[i].ID = "bt-" + uuid.NewString()
		}
	}
	if err := s.store.AddTransactions(ctx, txs); err != nil {
		return nil, fmt.Errorf("add transactions: %w", err)
	}
	s.logger.Info("transactions added manually", "count", len(txs))
	return txs, nil
}

func (s *statementService) ListTransactions(ctx context.Context) ([]model.BankTransaction, error) {
	return s.store.ListTransactions(ctx)
}
