package controllers

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bildin8/postergram-juice-sub000/api/responses"
	"github.com/bildin8/postergram-juice-sub000/api/validators"
	"github.com/bildin8/postergram-juice-sub000/internal/receipts"
	pkgerrors "github.com/bildin8/postergram-juice-sub000/pkg/errors"
	"github.com/bildin8/postergram-juice-sub000/pkg/logger"
)

type goodsReceiptItemRequest struct {
	ItemName     string          `json:"itemName" validate:"required"`
	IngredientID string          `json:"ingredientId"`
	ReceivedQty  decimal.Decimal `json:"receivedQty" validate:"required"`
	UnitCost     decimal.Decimal `json:"unitCost"`
}

type createGoodsReceiptRequest struct {
	Supplier   string                    `json:"supplier" validate:"required"`
	ReceivedAt string                    `json:"receivedAt" validate:"required"`
	Items      []goodsReceiptItemRequest `json:"items" validate:"required,min=1,dive"`
}

func CreateGoodsReceipt(svc receipts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createGoodsReceiptRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		receivedAt, err := time.Parse(time.RFC3339, req.ReceivedAt)
		if err != nil {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeValidation, "receivedAt must be an RFC 3339 timestamp"))
			return
		}
		params := receipts.CreateParams{
			Supplier:   req.Supplier,
			ReceivedAt: receivedAt,
		}
		for _, item := range req.Items {
			params.Items = append(params.Items, receipts.CreateItemParams{
				ItemName:     item.ItemName,
				IngredientID: item.IngredientID,
				ReceivedQty:  item.ReceivedQty,
				UnitCost:     item.UnitCost,
			})
		}
		receipt, err := svc.Create(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, receipt)
	}
}

func ListGoodsReceipts(svc receipts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		date, err := validators.ParseQueryDate(r, "date")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		rows, err := svc.ListByDay(r.Context(), date)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"receipts": rows})
	}
}
