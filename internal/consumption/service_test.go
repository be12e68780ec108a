package consumption

import (
	"context"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bildin8/postergram-juice-sub000/pkg/db/models"
	"github.com/bildin8/postergram-juice-sub000/pkg/enums"
	"github.com/bildin8/postergram-juice-sub000/pkg/logger"
	"github.com/bildin8/postergram-juice-sub000/pkg/poster"
)

type fakeFeed struct {
	transactions []poster.Transaction
	lines        map[string][]poster.TransactionLine
	txnErr       error
	lineErr      error
}

func (f *fakeFeed) GetTransactions(_ context.Context, _, _ time.Time) ([]poster.Transaction, error) {
	if f.txnErr != nil {
		return nil, f.txnErr
	}
	return f.transactions, nil
}

func (f *fakeFeed) GetTransactionLines(_ context.Context, transactionID string) ([]poster.TransactionLine, error) {
	if f.lineErr != nil {
		return nil, f.lineErr
	}
	return f.lines[transactionID], nil
}

type fakeCatalog struct {
	recipes map[string]*models.Recipe
	errs    map[string]error
	calls   map[string]int
}

func (f *fakeCatalog) GetRecipe(_ context.Context, productID string) (*models.Recipe, error) {
	if f.calls == nil {
		f.calls = make(map[string]int)
	}
	f.calls[productID]++
	if err := f.errs[productID]; err != nil {
		return nil, err
	}
	return f.recipes[productID], nil
}

type fakeLedger struct {
	costs map[string]decimal.Decimal
	err   error
}

func (f *fakeLedger) CostSnapshot(_ context.Context, _ []string) (map[string]decimal.Decimal, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.costs, nil
}

func (f *fakeLedger) OnHand(_ context.Context) (map[string]models.Ingredient, error) {
	return nil, nil
}

type fakeRepo struct {
	records  []models.ConsumptionRecord
	inserted int64
	fixed    bool
	err      error
}

func (f *fakeRepo) InsertRecords(_ context.Context, records []models.ConsumptionRecord) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.records = append(f.records, records...)
	if f.fixed {
		return f.inserted, nil
	}
	return int64(len(records)), nil
}

func dec(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

func baseIngredient(id, name, unit, brutto, netto string) models.RecipeIngredient {
	return models.RecipeIngredient{
		IngredientID:   id,
		IngredientName: name,
		Unit:           unit,
		Brutto:         dec(brutto),
		Netto:          dec(netto),
	}
}

func ingredientModifier(name, ingredientID, ingredientName, unit, brutto, netto string, defaultSelected bool) models.Modifier {
	return models.Modifier{
		Name:            name,
		Kind:            enums.ModifierKindIngredient,
		IngredientID:    ingredientID,
		IngredientName:  ingredientName,
		Unit:            unit,
		Brutto:          dec(brutto),
		Netto:           dec(netto),
		DefaultSelected: defaultSelected,
	}
}

func dishModifier(name, dishProductID string) models.Modifier {
	return models.Modifier{
		Name:          name,
		Kind:          enums.ModifierKindDish,
		DishProductID: dishProductID,
	}
}

func testService(t *testing.T, feed TransactionSource, recipes RecipeCatalog, costs *fakeLedger, repo Repository) Service {
	t.Helper()
	if costs == nil {
		costs = &fakeLedger{}
	}
	if repo == nil {
		repo = &fakeRepo{}
	}
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	svc, err := NewService(feed, recipes, costs, repo, logg)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func findRow(t *testing.T, rows []UsageRow, ingredientID string) UsageRow {
	t.Helper()
	for _, row := range rows {
		if row.IngredientID == ingredientID {
			return row
		}
	}
	t.Fatalf("no usage row for ingredient %q", ingredientID)
	return UsageRow{}
}

func line(txnID string, idx int, productID, productName, qty, modifiers string) poster.TransactionLine {
	return poster.TransactionLine{
		TransactionID: txnID,
		LineIndex:     idx,
		ProductID:     productID,
		ProductName:   productName,
		Quantity:      dec(qty),
		Modifiers:     modifiers,
	}
}

func TestAggregateRangeSumsAcrossProducts(t *testing.T) {
	feed := &fakeFeed{
		transactions: []poster.Transaction{{ID: "t1", ClosedAt: time.Date(2026, 3, 14, 20, 30, 0, 0, time.UTC)}},
		lines: map[string][]poster.TransactionLine{
			"t1": {
				line("t1", 0, "p-a", "Margherita", "6", ""),
				line("t1", 1, "p-b", "Calzone", "3", ""),
			},
		},
	}
	recipes := &fakeCatalog{recipes: map[string]*models.Recipe{
		"p-a": {
			ProductID:   "p-a",
			ProductName: "Margherita",
			Ingredients: []models.RecipeIngredient{baseIngredient("tomato", "Tomato", "kg", "0.2", "0.15")},
		},
		"p-b": {
			ProductID:   "p-b",
			ProductName: "Calzone",
			Ingredients: []models.RecipeIngredient{baseIngredient("tomato", "Tomato", "kg", "0.1", "0.1")},
		},
	}}

	svc := testService(t, feed, recipes, nil, nil)
	rows, err := svc.AggregateRange(context.Background(), time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("AggregateRange: %v", err)
	}

	tomato := findRow(t, rows, "tomato")
	// 6 * 0.15 + 3 * 0.1 = 1.2
	if !tomato.Quantity.Equal(dec("1.2")) {
		t.Fatalf("tomato quantity = %s, want 1.2", tomato.Quantity)
	}
	if len(tomato.Products) != 2 {
		t.Fatalf("tomato contributions = %d, want 2", len(tomato.Products))
	}
	if tomato.Products[0].Label != "Margherita" || !tomato.Products[0].Count.Equal(dec("6")) {
		t.Fatalf("top contribution = %s/%s, want Margherita/6", tomato.Products[0].Label, tomato.Products[0].Count)
	}
	if tomato.Products[1].Label != "Calzone" || !tomato.Products[1].Count.Equal(dec("3")) {
		t.Fatalf("second contribution = %s/%s, want Calzone/3", tomato.Products[1].Label, tomato.Products[1].Count)
	}
}

func TestAggregateRangeNettoFallsBackToBrutto(t *testing.T) {
	feed := &fakeFeed{
		transactions: []poster.Transaction{{ID: "t1"}},
		lines: map[string][]poster.TransactionLine{
			"t1": {line("t1", 0, "p-a", "Soup", "2", "")},
		},
	}
	recipes := &fakeCatalog{recipes: map[string]*models.Recipe{
		"p-a": {
			ProductID:   "p-a",
			ProductName: "Soup",
			Ingredients: []models.RecipeIngredient{
				baseIngredient("carrot", "Carrot", "kg", "0.3", "0"),
				baseIngredient("water", "Water", "l", "0", "0"),
			},
		},
	}}

	svc := testService(t, feed, recipes, nil, nil)
	rows, err := svc.AggregateRange(context.Background(), time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("AggregateRange: %v", err)
	}

	carrot := findRow(t, rows, "carrot")
	if !carrot.Quantity.Equal(dec("0.6")) {
		t.Fatalf("carrot quantity = %s, want 0.6 (brutto fallback)", carrot.Quantity)
	}
	for _, row := range rows {
		if row.IngredientID == "water" {
			t.Fatal("zero-quantity ingredient should not produce a row")
		}
	}
}

func TestAggregateRangeModifierMatchingIsNormalized(t *testing.T) {
	feed := &fakeFeed{
		transactions: []poster.Transaction{{ID: "t1"}},
		lines: map[string][]poster.TransactionLine{
			// repeated and badly cased names count once per line
			"t1": {line("t1", 0, "p-a", "Burger", "2", " Extra Cheese ,EXTRA CHEESE, unknown thing ,")},
		},
	}
	recipes := &fakeCatalog{recipes: map[string]*models.Recipe{
		"p-a": {
			ProductID:   "p-a",
			ProductName: "Burger",
			ModifierGroups: []models.ModifierGroup{{
				Name: "Add-ons",
				Modifiers: []models.Modifier{
					ingredientModifier("Extra Cheese", "cheese", "Cheese", "kg", "0.05", "0.04", false),
				},
			}},
		},
	}}

	svc := testService(t, feed, recipes, nil, nil)
	rows, err := svc.AggregateRange(context.Background(), time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("AggregateRange: %v", err)
	}

	cheese := findRow(t, rows, "cheese")
	// counted once: 2 * 0.04
	if !cheese.Quantity.Equal(dec("0.08")) {
		t.Fatalf("cheese quantity = %s, want 0.08", cheese.Quantity)
	}
	if cheese.Products[0].Label != "Burger + Extra Cheese" {
		t.Fatalf("source label = %q, want %q", cheese.Products[0].Label, "Burger + Extra Cheese")
	}
}

func TestAggregateRangeDefaultModifierAppliedOncePerLine(t *testing.T) {
	feed := &fakeFeed{
		transactions: []poster.Transaction{{ID: "t1"}},
		lines: map[string][]poster.TransactionLine{
			// the default is also listed explicitly on the line
			"t1": {line("t1", 0, "p-a", "Latte", "1", "whole milk")},
		},
	}
	recipes := &fakeCatalog{recipes: map[string]*models.Recipe{
		"p-a": {
			ProductID:   "p-a",
			ProductName: "Latte",
			ModifierGroups: []models.ModifierGroup{{
				Name: "Milk",
				Modifiers: []models.Modifier{
					ingredientModifier("Whole Milk", "milk", "Milk", "l", "0.2", "0.2", true),
				},
			}},
		},
	}}

	svc := testService(t, feed, recipes, nil, nil)
	rows, err := svc.AggregateRange(context.Background(), time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("AggregateRange: %v", err)
	}

	milk := findRow(t, rows, "milk")
	if !milk.Quantity.Equal(dec("0.2")) {
		t.Fatalf("milk quantity = %s, want 0.2 (applied once)", milk.Quantity)
	}
}

func TestAggregateRangeDishModifierGetsDistinctSourceLabel(t *testing.T) {
	feed := &fakeFeed{
		transactions: []poster.Transaction{{ID: "t1"}},
		lines: map[string][]poster.TransactionLine{
			"t1": {
				line("t1", 0, "p-burger", "Burger", "2", "combo fries"),
				line("t1", 1, "p-fries", "Fries", "8", ""),
			},
		},
	}
	recipes := &fakeCatalog{recipes: map[string]*models.Recipe{
		"p-burger": {
			ProductID:   "p-burger",
			ProductName: "Burger",
			ModifierGroups: []models.ModifierGroup{{
				Name:      "Combo",
				Modifiers: []models.Modifier{dishModifier("Combo Fries", "p-fries")},
			}},
		},
		"p-fries": {
			ProductID:   "p-fries",
			ProductName: "Fries",
			Ingredients: []models.RecipeIngredient{baseIngredient("potato", "Potato", "kg", "0.25", "0.2")},
		},
	}}

	svc := testService(t, feed, recipes, nil, nil)
	rows, err := svc.AggregateRange(context.Background(), time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("AggregateRange: %v", err)
	}

	potato := findRow(t, rows, "potato")
	// 8 direct + 2 via combo, all at netto 0.2
	if !potato.Quantity.Equal(dec("2")) {
		t.Fatalf("potato quantity = %s, want 2", potato.Quantity)
	}
	labels := map[string]decimal.Decimal{}
	for _, p := range potato.Products {
		labels[p.Label] = p.Count
	}
	if got := labels["Fries"]; !got.Equal(dec("8")) {
		t.Fatalf("direct contribution = %s, want 8", got)
	}
	if got := labels["Burger > Combo Fries"]; !got.Equal(dec("2")) {
		t.Fatalf("combo contribution = %s, want 2", got)
	}
}

func TestAggregateRangeSkipsLinesWithoutRecipe(t *testing.T) {
	feed := &fakeFeed{
		transactions: []poster.Transaction{{ID: "t1"}},
		lines: map[string][]poster.TransactionLine{
			"t1": {
				line("t1", 0, "p-unknown", "Mystery", "4", ""),
				line("t1", 1, "p-a", "Tea", "1", ""),
			},
		},
	}
	recipes := &fakeCatalog{recipes: map[string]*models.Recipe{
		"p-a": {
			ProductID:   "p-a",
			ProductName: "Tea",
			Ingredients: []models.RecipeIngredient{baseIngredient("tea-leaf", "Tea Leaf", "g", "2", "2")},
		},
	}}

	svc := testService(t, feed, recipes, nil, nil)
	rows, err := svc.AggregateRange(context.Background(), time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("AggregateRange: %v", err)
	}
	if len(rows) != 1 || rows[0].IngredientID != "tea-leaf" {
		t.Fatalf("rows = %+v, want only tea-leaf", rows)
	}
}

func TestAggregateRangeZeroQuantityLineSkipped(t *testing.T) {
	feed := &fakeFeed{
		transactions: []poster.Transaction{{ID: "t1"}},
		lines: map[string][]poster.TransactionLine{
			"t1": {line("t1", 0, "p-a", "Tea", "0", "")},
		},
	}
	recipes := &fakeCatalog{recipes: map[string]*models.Recipe{}}

	svc := testService(t, feed, recipes, nil, nil)
	rows, err := svc.AggregateRange(context.Background(), time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("AggregateRange: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("rows = %d, want 0", len(rows))
	}
	if recipes.calls["p-a"] != 0 {
		t.Fatal("zero-quantity line should not hit the catalog")
	}
}

func TestAggregateRangeSubRecipeFailureSkipsModifierOnly(t *testing.T) {
	feed := &fakeFeed{
		transactions: []poster.Transaction{{ID: "t1"}},
		lines: map[string][]poster.TransactionLine{
			"t1": {line("t1", 0, "p-burger", "Burger", "1", "combo fries")},
		},
	}
	recipes := &fakeCatalog{
		recipes: map[string]*models.Recipe{
			"p-burger": {
				ProductID:   "p-burger",
				ProductName: "Burger",
				Ingredients: []models.RecipeIngredient{baseIngredient("bun", "Bun", "pcs", "1", "1")},
				ModifierGroups: []models.ModifierGroup{{
					Name:      "Combo",
					Modifiers: []models.Modifier{dishModifier("Combo Fries", "p-fries")},
				}},
			},
		},
		errs: map[string]error{"p-fries": fmt.Errorf("catalog down")},
	}

	svc := testService(t, feed, recipes, nil, nil)
	rows, err := svc.AggregateRange(context.Background(), time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("AggregateRange: %v", err)
	}
	if len(rows) != 1 || rows[0].IngredientID != "bun" {
		t.Fatalf("rows = %+v, want only bun", rows)
	}
}

func TestAggregateRangeFeedErrorIsFatal(t *testing.T) {
	feed := &fakeFeed{txnErr: fmt.Errorf("pos unreachable")}
	svc := testService(t, feed, &fakeCatalog{}, nil, nil)
	if _, err := svc.AggregateRange(context.Background(), time.Time{}, time.Time{}); err == nil {
		t.Fatal("expected error when the feed is unreachable")
	}
}

func TestAggregateRangeCachesRecipesPerRun(t *testing.T) {
	feed := &fakeFeed{
		transactions: []poster.Transaction{{ID: "t1"}, {ID: "t2"}},
		lines: map[string][]poster.TransactionLine{
			"t1": {line("t1", 0, "p-a", "Tea", "1", "")},
			"t2": {line("t2", 0, "p-a", "Tea", "2", "")},
		},
	}
	recipes := &fakeCatalog{recipes: map[string]*models.Recipe{
		"p-a": {
			ProductID:   "p-a",
			ProductName: "Tea",
			Ingredients: []models.RecipeIngredient{baseIngredient("tea-leaf", "Tea Leaf", "g", "2", "2")},
		},
	}}

	svc := testService(t, feed, recipes, nil, nil)
	if _, err := svc.AggregateRange(context.Background(), time.Time{}, time.Time{}); err != nil {
		t.Fatalf("AggregateRange: %v", err)
	}
	if recipes.calls["p-a"] != 1 {
		t.Fatalf("catalog calls = %d, want 1 (cached)", recipes.calls["p-a"])
	}
}

func TestRecordRangePersistsWithCostSnapshot(t *testing.T) {
	closedAt := time.Date(2026, 3, 14, 22, 15, 0, 0, time.UTC)
	feed := &fakeFeed{
		transactions: []poster.Transaction{{ID: "t1", ClosedAt: closedAt}},
		lines: map[string][]poster.TransactionLine{
			"t1": {line("t1", 0, "p-a", "Margherita", "2", "extra cheese")},
		},
	}
	recipes := &fakeCatalog{recipes: map[string]*models.Recipe{
		"p-a": {
			ProductID:   "p-a",
			ProductName: "Margherita",
			Ingredients: []models.RecipeIngredient{baseIngredient("tomato", "Tomato", "kg", "0.2", "0.15")},
			ModifierGroups: []models.ModifierGroup{{
				Name: "Add-ons",
				Modifiers: []models.Modifier{
					ingredientModifier("Extra Cheese", "cheese", "Cheese", "kg", "0.05", "0.04", false),
				},
			}},
		},
	}}
	costs := &fakeLedger{costs: map[string]decimal.Decimal{
		"tomato": dec("3.5"),
		"cheese": dec("12"),
	}}
	repo := &fakeRepo{}

	svc := testService(t, feed, recipes, costs, repo)
	result, err := svc.RecordRange(context.Background(), time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("RecordRange: %v", err)
	}
	if result.Lines != 1 || result.Inserted != 2 || result.Skipped != 0 {
		t.Fatalf("result = %+v, want lines=1 inserted=2 skipped=0", result)
	}
	if len(repo.records) != 2 {
		t.Fatalf("persisted records = %d, want 2", len(repo.records))
	}
	byIngredient := map[string]models.ConsumptionRecord{}
	for _, rec := range repo.records {
		byIngredient[rec.IngredientID] = rec
	}
	tomato := byIngredient["tomato"]
	if tomato.LineKey != "t1:0" {
		t.Fatalf("line key = %q, want t1:0", tomato.LineKey)
	}
	if !tomato.UnitCost.Equal(dec("3.5")) {
		t.Fatalf("tomato unit cost = %s, want 3.5", tomato.UnitCost)
	}
	if tomato.FromModifier {
		t.Fatal("base ingredient flagged as modifier")
	}
	if !tomato.BusinessDate.Equal(time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("business date = %s, want 2026-03-14", tomato.BusinessDate)
	}
	cheese := byIngredient["cheese"]
	if !cheese.FromModifier {
		t.Fatal("modifier ingredient not flagged")
	}
	if cheese.SourceLabel != "Margherita + Extra Cheese" {
		t.Fatalf("cheese source label = %q", cheese.SourceLabel)
	}
}

func TestRecordRangeReportsSkippedDuplicates(t *testing.T) {
	feed := &fakeFeed{
		transactions: []poster.Transaction{{ID: "t1"}},
		lines: map[string][]poster.TransactionLine{
			"t1": {line("t1", 0, "p-a", "Tea", "1", "")},
		},
	}
	recipes := &fakeCatalog{recipes: map[string]*models.Recipe{
		"p-a": {
			ProductID:   "p-a",
			ProductName: "Tea",
			Ingredients: []models.RecipeIngredient{baseIngredient("tea-leaf", "Tea Leaf", "g", "2", "2")},
		},
	}}
	// storage reports nothing inserted: the range was already recorded
	repo := &fakeRepo{fixed: true, inserted: 0}

	svc := testService(t, feed, recipes, nil, repo)
	result, err := svc.RecordRange(context.Background(), time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("RecordRange: %v", err)
	}
	if result.Inserted != 0 || result.Skipped != 1 {
		t.Fatalf("result = %+v, want inserted=0 skipped=1", result)
	}
}
