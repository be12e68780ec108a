package enums

import "fmt"

// SessionType describes the allowed values for the `type` column in stock_sessions.
type SessionType string

const (
	SessionTypeOpening SessionType = "opening"
	SessionTypeClosing SessionType = "closing"
)

var validSessionTypes = []SessionType{
	SessionTypeOpening,
	SessionTypeClosing,
}

// IsValid reports whether the value matches the canonical session type enum.
func (s SessionType) IsValid() bool {
	for _, candidate := range validSessionTypes {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseSessionType converts the raw string to SessionType.
func ParseSessionType(value string) (SessionType, error) {
	for _, candidate := range validSessionTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid session type %q", value)
}
