package enums

import "fmt"

// Audience selects which recipient roles a notification fans out to.
type Audience string

const (
	AudienceOwner   Audience = "owner"
	AudienceManager Audience = "manager"
	AudienceStaff   Audience = "staff"
)

var validAudiences = []Audience{
	AudienceOwner,
	AudienceManager,
	AudienceStaff,
}

// IsValid reports whether the value matches the canonical audience enum.
func (a Audience) IsValid() bool {
	for _, candidate := range validAudiences {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseAudience converts the raw string to Audience.
func ParseAudience(value string) (Audience, error) {
	for _, candidate := range validAudiences {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid audience %q", value)
}
