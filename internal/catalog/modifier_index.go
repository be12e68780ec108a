package catalog

import (
	"strings"

	"github.com/bildin8/postergram-juice-sub000/pkg/db/models"
)

// ModifierIndex flattens a recipe's modifier groups into a single
// case-insensitive name lookup, built once per recipe per aggregation run.
type ModifierIndex struct {
	byName   map[string]*models.Modifier
	defaults []*models.Modifier
}

// NormalizeModifierName applies the matching rules for selected-modifier
// strings: lowercase and trimmed.
func NormalizeModifierName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// NewModifierIndex builds the lookup from the recipe's groups. Later groups do
// not override earlier names; the first definition wins.
func NewModifierIndex(recipe *models.Recipe) *ModifierIndex {
	index := &ModifierIndex{byName: make(map[string]*models.Modifier)}
	if recipe == nil {
		return index
	}
	for gi := range recipe.ModifierGroups {
		group := &recipe.ModifierGroups[gi]
		for mi := range group.Modifiers {
			modifier := &group.Modifiers[mi]
			key := NormalizeModifierName(modifier.Name)
			if key == "" {
				continue
			}
			if _, exists := index.byName[key]; !exists {
				index.byName[key] = modifier
			}
			if modifier.DefaultSelected {
				index.defaults = append(index.defaults, modifier)
			}
		}
	}
	return index
}

// Lookup returns the modifier for a normalized name, or nil.
func (i *ModifierIndex) Lookup(normalizedName string) *models.Modifier {
	return i.byName[normalizedName]
}

// Defaults returns the modifiers applied to every line regardless of the
// line's selected-modifier list.
func (i *ModifierIndex) Defaults() []*models.Modifier {
	return i.defaults
}

// HasSelectable reports whether the recipe carries any non-default modifiers.
// Used to flag sub-recipes whose own modifiers are deliberately not expanded.
func (i *ModifierIndex) HasSelectable() bool {
	for _, modifier := range i.byName {
		if !modifier.DefaultSelected {
			return true
		}
	}
	return false
}
