package consumption

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bildin8/postergram-juice-sub000/internal/catalog"
	"github.com/bildin8/postergram-juice-sub000/internal/ledger"
	"github.com/bildin8/postergram-juice-sub000/pkg/db/models"
	"github.com/bildin8/postergram-juice-sub000/pkg/enums"
	"github.com/bildin8/postergram-juice-sub000/pkg/errors"
	"github.com/bildin8/postergram-juice-sub000/pkg/logger"
	"github.com/bildin8/postergram-juice-sub000/pkg/poster"
)

// RecipeCatalog is the slice of the catalog the aggregator reads. A nil recipe
// with a nil error means the product has no recipe on file.
type RecipeCatalog interface {
	GetRecipe(ctx context.Context, productID string) (*models.Recipe, error)
}

// Service turns closed POS transactions into per-ingredient usage.
//
// AggregateRange computes usage in memory for reporting. RecordRange does the
// same walk but persists one row per (line, ingredient, source) with the cost
// snapshot taken at write time; re-running a range only inserts rows that are
// not already there.
type Service interface {
	AggregateRange(ctx context.Context, dateFrom, dateTo time.Time) ([]UsageRow, error)
	RecordRange(ctx context.Context, dateFrom, dateTo time.Time) (*RecordResult, error)
}

type service struct {
	feed    TransactionSource
	recipes RecipeCatalog
	costs   ledger.Service
	repo    Repository
	logg    *logger.Logger
}

func NewService(feed TransactionSource, recipes RecipeCatalog, costs ledger.Service, repo Repository, logg *logger.Logger) (Service, error) {
	if feed == nil {
		return nil, errors.New(errors.CodeInternal, "consumption service requires a transaction source")
	}
	if recipes == nil {
		return nil, errors.New(errors.CodeInternal, "consumption service requires a recipe catalog")
	}
	if costs == nil {
		return nil, errors.New(errors.CodeInternal, "consumption service requires a ledger service")
	}
	if repo == nil {
		return nil, errors.New(errors.CodeInternal, "consumption service requires a repository")
	}
	if logg == nil {
		return nil, errors.New(errors.CodeInternal, "consumption service requires a logger")
	}
	return &service{
		feed:    feed,
		recipes: recipes,
		costs:   costs,
		repo:    repo,
		logg:    logg,
	}, nil
}

// recipeEntry caches one catalog lookup for the duration of a run. A nil
// recipe is a cached negative hit.
type recipeEntry struct {
	recipe *models.Recipe
	index  *catalog.ModifierIndex
}

type sourceUsage struct {
	label    string
	count    decimal.Decimal
	position int
}

type ingredientUsage struct {
	id       string
	name     string
	unit     string
	quantity decimal.Decimal
	sources  map[string]*sourceUsage
	position int
}

// runContext carries the per-run caches: recipes already fetched, modifier
// applications already counted, and the usage accumulator. When collect is
// true every contribution also lands in records for persistence.
type runContext struct {
	entries   map[string]*recipeEntry
	processed map[string]struct{}
	usage     map[string]*ingredientUsage
	collect   bool
	records   []models.ConsumptionRecord
}

func newRunContext(collect bool) *runContext {
	return &runContext{
		entries:   make(map[string]*recipeEntry),
		processed: make(map[string]struct{}),
		usage:     make(map[string]*ingredientUsage),
		collect:   collect,
	}
}

// effectiveQty prefers netto and falls back to brutto when netto is zero or
// negative.
func effectiveQty(netto, brutto decimal.Decimal) decimal.Decimal {
	if netto.IsPositive() {
		return netto
	}
	return brutto
}

func lineKey(transactionID string, lineIndex int) string {
	return fmt.Sprintf("%s:%d", transactionID, lineIndex)
}

func (s *service) AggregateRange(ctx context.Context, dateFrom, dateTo time.Time) ([]UsageRow, error) {
	run := newRunContext(false)
	lines, err := s.walk(ctx, run, dateFrom, dateTo)
	if err != nil {
		return nil, err
	}
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"lines":       lines,
		"ingredients": len(run.usage),
	}), "aggregated consumption range")
	return run.rows(), nil
}

func (s *service) RecordRange(ctx context.Context, dateFrom, dateTo time.Time) (*RecordResult, error) {
	run := newRunContext(true)
	lines, err := s.walk(ctx, run, dateFrom, dateTo)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(run.usage))
	for id := range run.usage {
		ids = append(ids, id)
	}
	snapshot, err := s.costs.CostSnapshot(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range run.records {
		run.records[i].UnitCost = snapshot[run.records[i].IngredientID]
	}

	inserted, err := s.repo.InsertRecords(ctx, run.records)
	if err != nil {
		return nil, err
	}
	result := &RecordResult{
		Lines:    lines,
		Inserted: inserted,
		Skipped:  int64(len(run.records)) - inserted,
	}
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"lines":    result.Lines,
		"inserted": result.Inserted,
		"skipped":  result.Skipped,
	}), "recorded consumption range")
	return result, nil
}

// walk pulls every closed transaction in the range and folds its lines into
// the run accumulator. Feed failures abort the whole run; per-line catalog
// gaps are skipped and logged.
func (s *service) walk(ctx context.Context, run *runContext, dateFrom, dateTo time.Time) (int, error) {
	transactions, err := s.feed.GetTransactions(ctx, dateFrom, dateTo)
	if err != nil {
		return 0, err
	}

	var lines int
	for _, txn := range transactions {
		txnCtx := s.logg.WithTransactionID(ctx, txn.ID)
		txnLines, err := s.feed.GetTransactionLines(txnCtx, txn.ID)
		if err != nil {
			return 0, err
		}
		for i := range txnLines {
			if err := s.processLine(txnCtx, run, txn, &txnLines[i]); err != nil {
				return 0, err
			}
		}
		lines += len(txnLines)
	}
	return lines, nil
}

func (s *service) processLine(ctx context.Context, run *runContext, txn poster.Transaction, line *poster.TransactionLine) error {
	if line.Quantity.IsZero() {
		return nil
	}
	entry, err := s.resolve(ctx, run, line.ProductID)
	if err != nil {
		return err
	}
	if entry.recipe == nil {
		s.logg.Warn(s.logg.WithField(ctx, "product_id", line.ProductID), "no recipe for sold product, line skipped")
		return nil
	}
	recipe := entry.recipe

	for i := range recipe.Ingredients {
		ing := &recipe.Ingredients[i]
		qty := effectiveQty(ing.Netto, ing.Brutto).Mul(line.Quantity)
		if qty.IsZero() {
			continue
		}
		run.add(contribution{
			transaction:  txn,
			line:         line,
			ingredientID: ing.IngredientID,
			name:         ing.IngredientName,
			unit:         ing.Unit,
			quantity:     qty,
			sourceLabel:  recipe.ProductName,
			fromModifier: false,
		})
	}

	for _, name := range selectedModifierNames(line.Modifiers) {
		if err := s.applyModifier(ctx, run, txn, line, entry, name); err != nil {
			return err
		}
	}
	for _, modifier := range entry.index.Defaults() {
		key := catalog.NormalizeModifierName(modifier.Name)
		if err := s.applyModifier(ctx, run, txn, line, entry, key); err != nil {
			return err
		}
	}
	return nil
}

// applyModifier resolves one normalized modifier name against the recipe's
// index and counts its consumption once per line, no matter how often the POS
// repeats the name or whether it is also default-selected.
func (s *service) applyModifier(ctx context.Context, run *runContext, txn poster.Transaction, line *poster.TransactionLine, entry *recipeEntry, name string) error {
	dedupe := fmt.Sprintf("%s|%d|%s", line.TransactionID, line.LineIndex, name)
	if _, done := run.processed[dedupe]; done {
		return nil
	}
	run.processed[dedupe] = struct{}{}

	modifier := entry.index.Lookup(name)
	if modifier == nil {
		s.logg.Warn(s.logg.WithField(ctx, "modifier", name), "selected modifier not in recipe, skipped")
		return nil
	}

	switch modifier.Kind {
	case enums.ModifierKindIngredient:
		if modifier.IngredientID == "" {
			return nil
		}
		qty := effectiveQty(modifier.Netto, modifier.Brutto).Mul(line.Quantity)
		if qty.IsZero() {
			return nil
		}
		run.add(contribution{
			transaction:  txn,
			line:         line,
			ingredientID: modifier.IngredientID,
			name:         modifier.IngredientName,
			unit:         modifier.Unit,
			quantity:     qty,
			sourceLabel:  entry.recipe.ProductName + " + " + modifier.Name,
			fromModifier: true,
		})
	case enums.ModifierKindDish:
		return s.expandDish(ctx, run, txn, line, entry, modifier)
	}
	return nil
}

// expandDish folds the referenced product's base ingredients in under a source
// label distinct from any direct sale of that product. Expansion is one level
// deep: the sub-recipe's own modifiers are not applied.
func (s *service) expandDish(ctx context.Context, run *runContext, txn poster.Transaction, line *poster.TransactionLine, entry *recipeEntry, modifier *models.Modifier) error {
	if modifier.DishProductID == "" {
		return nil
	}
	sub, err := s.resolve(ctx, run, modifier.DishProductID)
	if err != nil {
		s.logg.Error(s.logg.WithField(ctx, "dish_product_id", modifier.DishProductID), "fetching sub-recipe failed, modifier skipped", err)
		return nil
	}
	if sub.recipe == nil {
		s.logg.Warn(s.logg.WithField(ctx, "dish_product_id", modifier.DishProductID), "dish modifier has no recipe, skipped")
		return nil
	}
	if sub.index.HasSelectable() {
		s.logg.Warn(s.logg.WithField(ctx, "dish_product_id", modifier.DishProductID), "sub-recipe carries its own modifiers, not expanded")
	}

	label := entry.recipe.ProductName + " > " + modifier.Name
	for i := range sub.recipe.Ingredients {
		ing := &sub.recipe.Ingredients[i]
		qty := effectiveQty(ing.Netto, ing.Brutto).Mul(line.Quantity)
		if qty.IsZero() {
			continue
		}
		run.add(contribution{
			transaction:  txn,
			line:         line,
			ingredientID: ing.IngredientID,
			name:         ing.IngredientName,
			unit:         ing.Unit,
			quantity:     qty,
			sourceLabel:  label,
			fromModifier: true,
		})
	}
	return nil
}

func (s *service) resolve(ctx context.Context, run *runContext, productID string) (*recipeEntry, error) {
	if entry, ok := run.entries[productID]; ok {
		return entry, nil
	}
	recipe, err := s.recipes.GetRecipe(ctx, productID)
	if err != nil {
		return nil, err
	}
	entry := &recipeEntry{recipe: recipe, index: catalog.NewModifierIndex(recipe)}
	run.entries[productID] = entry
	return entry, nil
}

// selectedModifierNames splits the POS free-text modifier list and normalizes
// each name. Empty segments are dropped.
func selectedModifierNames(raw string) []string {
	if raw == "" {
		return nil
	}
	var names []string
	start := 0
	for i := 0; i <= len(raw); i++ {
		if i == len(raw) || raw[i] == ',' {
			if name := catalog.NormalizeModifierName(raw[start:i]); name != "" {
				names = append(names, name)
			}
			start = i + 1
		}
	}
	return names
}

type contribution struct {
	transaction  poster.Transaction
	line         *poster.TransactionLine
	ingredientID string
	name         string
	unit         string
	quantity     decimal.Decimal
	sourceLabel  string
	fromModifier bool
}

func (r *runContext) add(c contribution) {
	row, ok := r.usage[c.ingredientID]
	if !ok {
		row = &ingredientUsage{
			id:       c.ingredientID,
			name:     c.name,
			unit:     c.unit,
			sources:  make(map[string]*sourceUsage),
			position: len(r.usage),
		}
		r.usage[c.ingredientID] = row
	}
	row.quantity = row.quantity.Add(c.quantity)

	src, ok := row.sources[c.sourceLabel]
	if !ok {
		src = &sourceUsage{label: c.sourceLabel, position: len(row.sources)}
		row.sources[c.sourceLabel] = src
	}
	src.count = src.count.Add(c.line.Quantity)

	if r.collect {
		r.records = append(r.records, models.ConsumptionRecord{
			TransactionID:  c.transaction.ID,
			LineKey:        lineKey(c.line.TransactionID, c.line.LineIndex),
			IngredientID:   c.ingredientID,
			SourceLabel:    c.sourceLabel,
			ProductID:      c.line.ProductID,
			IngredientName: c.name,
			Unit:           c.unit,
			Quantity:       c.quantity,
			FromModifier:   c.fromModifier,
			BusinessDate:   c.transaction.ClosedAt.Truncate(24 * time.Hour),
		})
	}
}

// rows flattens the accumulator, largest consumers first.
func (r *runContext) rows() []UsageRow {
	rows := make([]UsageRow, 0, len(r.usage))
	for _, row := range r.usage {
		sources := make([]*sourceUsage, 0, len(row.sources))
		for _, src := range row.sources {
			sources = append(sources, src)
		}
		sort.Slice(sources, func(i, j int) bool {
			if cmp := sources[i].count.Cmp(sources[j].count); cmp != 0 {
				return cmp > 0
			}
			return sources[i].position < sources[j].position
		})
		products := make([]Contribution, 0, len(sources))
		for _, src := range sources {
			products = append(products, Contribution{Label: src.label, Count: src.count})
		}
		rows = append(rows, UsageRow{
			IngredientID:   row.id,
			IngredientName: row.name,
			Unit:           row.unit,
			Quantity:       row.quantity,
			Products:       products,
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		if cmp := rows[i].Quantity.Cmp(rows[j].Quantity); cmp != 0 {
			return cmp > 0
		}
		return rows[i].IngredientName < rows[j].IngredientName
	})
	return rows
}
