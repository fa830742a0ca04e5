package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/Xhuk/Habitat-prime/internal/model"
)

// HTTPOracle calls a remote extraction endpoint. The client timeout is short
// on purpose: a slow oracle must not hold up payment submission, and callers
// already degrade gracefully on error.
type HTTPOracle struct {
	baseURL string
	client  *http.Client
}

func NewHTTPOracle(baseURL string) *HTTPOracle {
	return &HTTPOracle{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 5 * time.Second},
	}
}

type extractAmountRequest struct {
	ReceiptRef string `json:"receipt_ref"`
}

type extractAmountResponse struct {
	Amount float64 `json:"amount"`
}

func (o *HTTPOracle) ExtractAmount(ctx context.Context, receiptRef string) (float64, error) {
	var resp extractAmountResponse
	if err := o.post(ctx, "/v1/extract-amount", extractAmountRequest{ReceiptRef: receiptRef}, &resp); err != nil {
		return 0, err
	}
	return resp.Amount, nil
}

type parseStatementRequest struct {
	Content string `json:"content"`
}

type parseStatementResponse struct {
	Transactions []statementLine `json:"transactions"`
}

type statementLine struct {
	Date        time.Time `json:"date"`
	Description string    `json:"description"`
	Amount      float64   `json:"amount"`
	Reference   string    `json:"reference"`
}

func (o *HTTPOracle) ParseStatement(ctx context.Context, fileContent string) ([]model.BankTransaction, error) {
	var resp parseStatementResponse
	if err := o.post(ctx, "/v1/parse-statement", parseStatementRequest{Content: fileContent}, &resp); err != nil {
		return nil, err
	}
	out := make([]model.BankTransaction, 0, len(resp.Transactions))
	for _, line := range resp.Transactions {
		out = append(out, model.BankTransaction{
			Date:        line.Date,
			Description: line.Description,
			Amount:      line.Amount,
			Reference:   line.Reference,
		})
	}
	return out, nil
}

func (o *HTTPOracle) post(ctx context.Context, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode oracle request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build oracle request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "Habitat-Oracle/1.0")

	resp, err := o.client.Do(req)
	if err != nil {
		return fmt.Errorf("oracle call: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("oracle returned status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode oracle response: %w", err)
	}
	return nil
}
