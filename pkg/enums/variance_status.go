package enums

import "fmt"

// VarianceStatus classifies a reconciled item: counted above, below, or at the
// expected quantity.
type VarianceStatus string

const (
	VarianceStatusOver  VarianceStatus = "over"
	VarianceStatusUnder VarianceStatus = "under"
	VarianceStatusEqual VarianceStatus = "equal"
)

var validVarianceStatuses = []VarianceStatus{
	VarianceStatusOver,
	VarianceStatusUnder,
	VarianceStatusEqual,
}

// IsValid reports whether the value matches the canonical variance status enum.
func (v VarianceStatus) IsValid() bool {
	for _, candidate := range validVarianceStatuses {
		if candidate == v {
			return true
		}
	}
	return false
}

// ParseVarianceStatus converts the raw string to VarianceStatus.
func ParseVarianceStatus(value string) (VarianceStatus, error) {
	for _, candidate := range validVarianceStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid variance status %q", value)
}
