package enums

import "fmt"

// ModifierKind distinguishes a modifier that consumes an ingredient directly
// from one that references another product's recipe.
type ModifierKind string

const (
	ModifierKindIngredient ModifierKind = "ingredient"
	ModifierKindDish       ModifierKind = "dish"
)

var validModifierKinds = []ModifierKind{
	ModifierKindIngredient,
	ModifierKindDish,
}

// IsValid reports whether the value matches the canonical modifier kind enum.
func (m ModifierKind) IsValid() bool {
	for _, candidate := range validModifierKinds {
		if candidate == m {
			return true
		}
	}
	return false
}

// ParseModifierKind converts the raw string to ModifierKind.
func ParseModifierKind(value string) (ModifierKind, error) {
	for _, candidate := range validModifierKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid modifier kind %q", value)
}
