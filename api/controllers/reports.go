package controllers

import (
	"net/http"

	"github.com/bildin8/postergram-juice-sub000/api/responses"
	"github.com/bildin8/postergram-juice-sub000/api/validators"
	"github.com/bildin8/postergram-juice-sub000/internal/consumption"
	"github.com/bildin8/postergram-juice-sub000/internal/par"
	"github.com/bildin8/postergram-juice-sub000/pkg/logger"
)

// UsageReport aggregates per-ingredient consumption for a date range.
func UsageReport(svc consumption.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		from, to, err := validators.ParseDateRange(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		rows, err := svc.AggregateRange(r.Context(), from, to)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"usage": rows})
	}
}

// ParReport computes reorder suggestions; query parameters override the
// configured defaults.
func ParReport(svc par.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		windowDays, err := validators.ParseQueryInt(r, "windowDays", 0, 1, 90)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		leadDays, err := validators.ParseQueryInt(r, "leadDays", 0, 1, 30)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		safetyPercent, err := validators.ParseQueryInt(r, "safetyPercent", 0, 0, 100)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		suggestions, err := svc.Suggest(r.Context(), par.SuggestParams{
			WindowDays:    windowDays,
			LeadDays:      leadDays,
			SafetyPercent: safetyPercent,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"suggestions": suggestions})
	}
}

// VelocityReport returns days-of-stock per ingredient.
func VelocityReport(svc par.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		windowDays, err := validators.ParseQueryInt(r, "windowDays", 0, 1, 90)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		rows, err := svc.Velocity(r.Context(), par.VelocityParams{WindowDays: windowDays})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"velocity": rows})
	}
}
