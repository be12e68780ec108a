package poster

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is one closed sale on the POS.
type Transaction struct {
	ID       string    `json:"transaction_id"`
	ClosedAt time.Time `json:"date_close"`
}

// TransactionLine is one sold unit-group within a transaction. Modifiers is
// the free-text comma-separated selected-modifier names as the POS records
// them. TransactionID and LineIndex are filled in by the client after decode;
// together they form the stable idempotency key for reprocessing.
type TransactionLine struct {
	TransactionID string          `json:"-"`
	LineIndex     int             `json:"-"`
	ProductID     string          `json:"product_id"`
	ProductName   string          `json:"product_name"`
	Quantity      decimal.Decimal `json:"num"`
	Modifiers     string          `json:"modificators"`
}

// IngredientMovement is the per-ingredient stock movement summary the POS
// reports for a date range. WriteOffs keeps its sign: negative values are
// corrections/reversals and must not be folded into usage totals.
type IngredientMovement struct {
	IngredientID   string          `json:"ingredient_id"`
	IngredientName string          `json:"ingredient_name"`
	Start          decimal.Decimal `json:"start"`
	Income         decimal.Decimal `json:"income"`
	WriteOffs      decimal.Decimal `json:"write_offs"`
	End            decimal.Decimal `json:"end"`
}
