package controllers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/adigart/adigart-backend/api/middleware"
	"github.com/adigart/adigart-backend/api/responses"
	"github.com/adigart/adigart-backend/api/validators"
	"github.com/adigart/adigart-backend/internal/transactions"
	"github.com/adigart/adigart-backend/pkg/enums"
	"github.com/adigart/adigart-backend/pkg/logger"
)

type recordTransactionRequest struct {
	ProductID     uuid.UUID             `json:"product_id" validate:"required"`
	VariantID     *uuid.UUID            `json:"variant_id,omitempty"`
	Type          enums.TransactionType `json:"type" validate:"required"`
	PaymentMethod *enums.PaymentMethod  `json:"payment_method,omitempty"`
	Quantity      int                   `json:"quantity" validate:"gt=0"`
	Amount        decimal.Decimal       `json:"amount"`
	Comment       *string               `json:"comment,omitempty"`
}

type updateTransactionRequest struct {
	Type          *enums.TransactionType `json:"type,omitempty"`
	PaymentMethod *enums.PaymentMethod   `json:"payment_method,omitempty"`
	Quantity      *int                   `json:"quantity,omitempty"`
	Amount        *decimal.Decimal       `json:"amount,omitempty"`
	Comment       *string                `json:"comment,omitempty"`
}

// TransactionRecord registers a sale or gift and debits the stock pool.
func TransactionRecord(svc transactions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := middleware.ActorFromContext(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body recordTransactionRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		tr, err := svc.Record(r.Context(), actor, transactions.RecordTransactionInput{
			ProductID:     body.ProductID,
			VariantID:     body.VariantID,
			Type:          body.Type,
			PaymentMethod: body.PaymentMethod,
			Quantity:      body.Quantity,
			Amount:        body.Amount,
			Comment:       body.Comment,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, tr)
	}
}

// TransactionUpdate corrects a recorded movement; quantity changes settle
// against the stock pool.
func TransactionUpdate(svc transactions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := middleware.ActorFromContext(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		transactionID, err := validators.ParseUUIDParam(r, "transactionId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body updateTransactionRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		tr, err := svc.Update(r.Context(), actor, transactionID, transactions.UpdateTransactionInput{
			Type:          body.Type,
			PaymentMethod: body.PaymentMethod,
			Quantity:      body.Quantity,
			Amount:        body.Amount,
			Comment:       body.Comment,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, tr)
	}
}

// TransactionDelete removes a movement and restores its quantity.
func TransactionDelete(svc transactions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := middleware.ActorFromContext(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		transactionID, err := validators.ParseUUIDParam(r, "transactionId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), actor, transactionID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// TransactionsClear wipes a project's movement log. Admin only; stock pools
// keep their current values.
func TransactionsClear(svc transactions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := middleware.ActorFromContext(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		projectID, err := validators.ParseUUIDParam(r, "projectId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		removed, err := svc.ClearHistory(r.Context(), actor, projectID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]int64{"removed": removed})
	}
}
