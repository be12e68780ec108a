package catalog

import (
	"testing"

	"github.com/bildin8/postergram-juice-sub000/pkg/db/models"
	"github.com/bildin8/postergram-juice-sub000/pkg/enums"
)

func TestNormalizeModifierName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Extra Cheese", "extra cheese"},
		{"  EXTRA CHEESE  ", "extra cheese"},
		{"", ""},
		{"   ", ""},
	}
	for _, tt := range tests {
		if got := NormalizeModifierName(tt.in); got != tt.want {
			t.Errorf("NormalizeModifierName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestModifierIndexLookupAndDefaults(t *testing.T) {
	recipe := &models.Recipe{
		ProductID:   "p1",
		ProductName: "Burger",
		ModifierGroups: []models.ModifierGroup{
			{
				Name: "Add-ons",
				Modifiers: []models.Modifier{
					{Name: "Extra Cheese", Kind: enums.ModifierKindIngredient, IngredientID: "cheese"},
					{Name: "Sauce", Kind: enums.ModifierKindIngredient, IngredientID: "sauce-a", DefaultSelected: true},
				},
			},
			{
				Name: "Combos",
				Modifiers: []models.Modifier{
					// duplicate name in a later group must not override
					{Name: "extra cheese", Kind: enums.ModifierKindIngredient, IngredientID: "cheese-dup"},
					{Name: "Combo Fries", Kind: enums.ModifierKindDish, DishProductID: "p2"},
				},
			},
		},
	}

	index := NewModifierIndex(recipe)

	got := index.Lookup("extra cheese")
	if got == nil || got.IngredientID != "cheese" {
		t.Fatalf("Lookup(extra cheese) = %+v, want first definition", got)
	}
	if index.Lookup("unknown") != nil {
		t.Fatal("Lookup(unknown) should be nil")
	}

	defaults := index.Defaults()
	if len(defaults) != 1 || defaults[0].Name != "Sauce" {
		t.Fatalf("Defaults() = %+v, want only Sauce", defaults)
	}

	if !index.HasSelectable() {
		t.Fatal("HasSelectable() should be true with non-default modifiers")
	}
}

func TestModifierIndexNilRecipe(t *testing.T) {
	index := NewModifierIndex(nil)
	if index.Lookup("anything") != nil {
		t.Fatal("nil recipe index should not resolve names")
	}
	if len(index.Defaults()) != 0 {
		t.Fatal("nil recipe index should have no defaults")
	}
	if index.HasSelectable() {
		t.Fatal("nil recipe index should have no selectable modifiers")
	}
}
