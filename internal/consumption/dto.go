package consumption

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bildin8/postergram-juice-sub000/pkg/poster"
)

// TransactionSource is the slice of the POS client the aggregator consumes.
type TransactionSource interface {
	GetTransactions(ctx context.Context, dateFrom, dateTo time.Time) ([]poster.Transaction, error)
	GetTransactionLines(ctx context.Context, transactionID string) ([]poster.TransactionLine, error)
}

// Contribution attributes part of an ingredient's usage to one source product
// (or product+modifier combination).
type Contribution struct {
	Label string          `json:"label"`
	Count decimal.Decimal `json:"count"`
}

// UsageRow is the aggregated usage of one ingredient across the date range.
type UsageRow struct {
	IngredientID   string          `json:"ingredientId"`
	IngredientName string          `json:"ingredientName"`
	Unit           string          `json:"unit"`
	Quantity       decimal.Decimal `json:"quantity"`
	Products       []Contribution  `json:"contributingProducts"`
}

// RecordResult summarizes one persisting run. Skipped counts rows that already
// existed under their idempotency key.
type RecordResult struct {
	Lines    int   `json:"lines"`
	Inserted int64 `json:"inserted"`
	Skipped  int64 `json:"skipped"`
}
