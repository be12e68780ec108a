package par

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bildin8/postergram-juice-sub000/internal/ledger"
	"github.com/bildin8/postergram-juice-sub000/pkg/config"
	"github.com/bildin8/postergram-juice-sub000/pkg/enums"
	"github.com/bildin8/postergram-juice-sub000/pkg/errors"
	"github.com/bildin8/postergram-juice-sub000/pkg/logger"
)

var (
	// noUsageSentinel is reported as DaysRemaining for ingredients with stock
	// but no consumption in the window.
	noUsageSentinel = decimal.NewFromInt(9999)

	criticalThreshold = decimal.NewFromInt(2)
	warningThreshold  = decimal.NewFromInt(5)

	oneHundred = decimal.NewFromInt(100)
)

// Service computes reorder points and days-of-stock from POS write-off
// movements and the on-hand ledger.
type Service interface {
	Suggest(ctx context.Context, params SuggestParams) ([]Suggestion, error)
	Velocity(ctx context.Context, params VelocityParams) ([]VelocityRow, error)
}

type service struct {
	movements MovementSource
	stock     ledger.Service
	defaults  config.ParConfig
	logg      *logger.Logger
}

func NewService(movements MovementSource, stock ledger.Service, defaults config.ParConfig, logg *logger.Logger) (Service, error) {
	if movements == nil {
		return nil, errors.New(errors.CodeInternal, "par service requires a movement source")
	}
	if stock == nil {
		return nil, errors.New(errors.CodeInternal, "par service requires a ledger service")
	}
	if logg == nil {
		return nil, errors.New(errors.CodeInternal, "par service requires a logger")
	}
	return &service{
		movements: movements,
		stock:     stock,
		defaults:  defaults,
		logg:      logg,
	}, nil
}

func (p SuggestParams) withDefaults(defaults config.ParConfig) SuggestParams {
	if p.WindowDays <= 0 {
		p.WindowDays = defaults.WindowDays
	}
	if p.LeadDays <= 0 {
		p.LeadDays = defaults.LeadDays
	}
	if p.SafetyPercent <= 0 {
		p.SafetyPercent = defaults.SafetyPercent
	}
	return p
}

func (s *service) Suggest(ctx context.Context, params SuggestParams) ([]Suggestion, error) {
	params = params.withDefaults(s.defaults)

	usage, names, err := s.windowUsage(ctx, params.WindowDays)
	if err != nil {
		return nil, err
	}
	onHand, err := s.stock.OnHand(ctx)
	if err != nil {
		return nil, err
	}

	window := decimal.NewFromInt(int64(params.WindowDays))
	lead := decimal.NewFromInt(int64(params.LeadDays))
	safety := oneHundred.Add(decimal.NewFromInt(int64(params.SafetyPercent))).Div(oneHundred)

	suggestions := make([]Suggestion, 0, len(usage))
	for id, total := range usage {
		if !total.IsPositive() {
			continue
		}
		ing := onHand[id]
		name := ing.Name
		if name == "" {
			name = names[id]
		}
		avgDaily := total.Div(window)
		par := avgDaily.Mul(lead).Mul(safety).Ceil()
		orderQty := par.Sub(ing.OnHandQty)
		if orderQty.IsNegative() {
			orderQty = decimal.Zero
		}
		suggestions = append(suggestions, Suggestion{
			IngredientID:   id,
			IngredientName: name,
			Unit:           ing.Unit,
			AvgDailyUsage:  avgDaily,
			OnHand:         ing.OnHandQty,
			Par:            par,
			OrderQty:       orderQty,
		})
	}
	sort.Slice(suggestions, func(i, j int) bool {
		if cmp := suggestions[i].OrderQty.Cmp(suggestions[j].OrderQty); cmp != 0 {
			return cmp > 0
		}
		return suggestions[i].IngredientName < suggestions[j].IngredientName
	})

	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"window_days": params.WindowDays,
		"suggestions": len(suggestions),
	}), "computed par suggestions")
	return suggestions, nil
}

func (s *service) Velocity(ctx context.Context, params VelocityParams) ([]VelocityRow, error) {
	if params.WindowDays <= 0 {
		params.WindowDays = s.defaults.WindowDays
	}

	usage, _, err := s.windowUsage(ctx, params.WindowDays)
	if err != nil {
		return nil, err
	}
	onHand, err := s.stock.OnHand(ctx)
	if err != nil {
		return nil, err
	}

	window := decimal.NewFromInt(int64(params.WindowDays))
	rows := make([]VelocityRow, 0, len(onHand))
	for id, ing := range onHand {
		avgDaily := decimal.Zero
		if total, ok := usage[id]; ok && total.IsPositive() {
			avgDaily = total.Div(window)
		}
		days := noUsageSentinel
		if avgDaily.IsPositive() {
			days = ing.OnHandQty.DivRound(avgDaily, 1)
			if days.IsNegative() {
				days = decimal.Zero
			}
		}
		rows = append(rows, VelocityRow{
			IngredientID:   id,
			IngredientName: ing.Name,
			Unit:           ing.Unit,
			AvgDailyUsage:  avgDaily,
			OnHand:         ing.OnHandQty,
			DaysRemaining:  days,
			Urgency:        urgencyFor(days),
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		if cmp := rows[i].DaysRemaining.Cmp(rows[j].DaysRemaining); cmp != 0 {
			return cmp < 0
		}
		return rows[i].IngredientName < rows[j].IngredientName
	})
	return rows, nil
}

// windowUsage sums strictly positive write-offs per ingredient over the
// trailing window. Negative write-offs are stock corrections and are excluded
// rather than folded in.
func (s *service) windowUsage(ctx context.Context, windowDays int) (map[string]decimal.Decimal, map[string]string, error) {
	now := time.Now().UTC()
	from := now.AddDate(0, 0, -windowDays)
	movements, err := s.movements.GetIngredientMovements(ctx, from, now)
	if err != nil {
		return nil, nil, err
	}
	usage := make(map[string]decimal.Decimal, len(movements))
	names := make(map[string]string, len(movements))
	for _, movement := range movements {
		if names[movement.IngredientID] == "" {
			names[movement.IngredientID] = movement.IngredientName
		}
		if !movement.WriteOffs.IsPositive() {
			continue
		}
		usage[movement.IngredientID] = usage[movement.IngredientID].Add(movement.WriteOffs)
	}
	return usage, names, nil
}

func urgencyFor(days decimal.Decimal) enums.StockUrgency {
	switch {
	case days.LessThanOrEqual(criticalThreshold):
		return enums.StockUrgencyCritical
	case days.LessThanOrEqual(warningThreshold):
		return enums.StockUrgencyWarning
	default:
		return enums.StockUrgencyOK
	}
}
