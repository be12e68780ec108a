package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/bildin8/postergram-juice-sub000/api/responses"
	"github.com/bildin8/postergram-juice-sub000/api/validators"
	"github.com/bildin8/postergram-juice-sub000/internal/stocksessions"
	"github.com/bildin8/postergram-juice-sub000/pkg/enums"
	pkgerrors "github.com/bildin8/postergram-juice-sub000/pkg/errors"
	"github.com/bildin8/postergram-juice-sub000/pkg/logger"
)

type openSessionRequest struct {
	Type         string `json:"type" validate:"required"`
	BusinessDate string `json:"businessDate" validate:"required"`
}

type addEntryRequest struct {
	ItemName string          `json:"itemName" validate:"required"`
	Quantity decimal.Decimal `json:"quantity" validate:"required"`
}

func OpenStockSession(svc stocksessions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req openSessionRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		sessionType, err := enums.ParseSessionType(req.Type)
		if err != nil {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeValidation, "type must be opening or closing"))
			return
		}
		businessDate, err := time.ParseInLocation("2006-01-02", req.BusinessDate, time.UTC)
		if err != nil {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeValidation, "businessDate must be a YYYY-MM-DD date"))
			return
		}
		session, err := svc.Open(r.Context(), stocksessions.OpenParams{
			Type:         sessionType,
			BusinessDate: businessDate,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, session)
	}
}

func AddStockEntry(svc stocksessions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, err := validators.ParsePathUUID(chi.URLParam(r, "sessionID"), "sessionID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req addEntryRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		entry, err := svc.AddEntry(r.Context(), sessionID, stocksessions.EntryParams{
			ItemName: req.ItemName,
			Quantity: req.Quantity,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, entry)
	}
}

func CompleteStockSession(svc stocksessions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, err := validators.ParsePathUUID(chi.URLParam(r, "sessionID"), "sessionID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		session, err := svc.Complete(r.Context(), sessionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, session)
	}
}

func GetStockSession(svc stocksessions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, err := validators.ParsePathUUID(chi.URLParam(r, "sessionID"), "sessionID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		session, err := svc.Get(r.Context(), sessionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, session)
	}
}

func ListStockSessions(svc stocksessions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		date, err := validators.ParseQueryDate(r, "date")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		sessions, err := svc.ListByDate(r.Context(), date)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"sessions": sessions})
	}
}
