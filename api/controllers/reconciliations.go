package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/bildin8/postergram-juice-sub000/api/responses"
	"github.com/bildin8/postergram-juice-sub000/api/validators"
	"github.com/bildin8/postergram-juice-sub000/internal/reconciliation"
	"github.com/bildin8/postergram-juice-sub000/pkg/logger"
)

type runReconciliationRequest struct {
	OpeningSessionID uuid.UUID `json:"openingSessionId" validate:"required"`
	ClosingSessionID uuid.UUID `json:"closingSessionId" validate:"required"`
}

func RunReconciliation(svc reconciliation.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req runReconciliationRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.Reconcile(r.Context(), req.OpeningSessionID, req.ClosingSessionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

func ListReconciliations(svc reconciliation.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		date, err := validators.ParseQueryDate(r, "date")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		rows, err := svc.ListByDate(r.Context(), date)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"reconciliations": rows})
	}
}
