package enums

import "fmt"

// SessionStatus describes the stock session lifecycle. Completed is terminal.
type SessionStatus string

const (
	SessionStatusInProgress SessionStatus = "in_progress"
	SessionStatusCompleted  SessionStatus = "completed"
)

var validSessionStatuses = []SessionStatus{
	SessionStatusInProgress,
	SessionStatusCompleted,
}

// IsValid reports whether the value matches the canonical session status enum.
func (s SessionStatus) IsValid() bool {
	for _, candidate := range validSessionStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseSessionStatus converts the raw string to SessionStatus.
func ParseSessionStatus(value string) (SessionStatus, error) {
	for _, candidate := range validSessionStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid session status %q", value)
}
