package enums

import "fmt"

// StockUrgency tags an ingredient's projected days of stock remaining.
type StockUrgency string

const (
	StockUrgencyCritical StockUrgency = "critical"
	StockUrgencyWarning  StockUrgency = "warning"
	StockUrgencyOK       StockUrgency = "ok"
)

var validStockUrgencies = []StockUrgency{
	StockUrgencyCritical,
	StockUrgencyWarning,
	StockUrgencyOK,
}

// IsValid reports whether the value matches the canonical stock urgency enum.
func (s StockUrgency) IsValid() bool {
	for _, candidate := range validStockUrgencies {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseStockUrgency converts the raw string to StockUrgency.
func ParseStockUrgency(value string) (StockUrgency, error) {
	for _, candidate := range validStockUrgencies {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid stock urgency %q", value)
}
