package controllers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/adigart/adigart-backend/api/middleware"
	"github.com/adigart/adigart-backend/api/responses"
	"github.com/adigart/adigart-backend/api/validators"
	"github.com/adigart/adigart-backend/internal/cart"
	"github.com/adigart/adigart-backend/pkg/enums"
	"github.com/adigart/adigart-backend/pkg/logger"
)

type checkoutLineRequest struct {
	ProductID uuid.UUID             `json:"product_id" validate:"required"`
	VariantID *uuid.UUID            `json:"variant_id,omitempty"`
	Quantity  int                   `json:"quantity" validate:"gt=0"`
	Type      enums.TransactionType `json:"type" validate:"required"`
	Amount    *decimal.Decimal      `json:"amount,omitempty"`
}

type checkoutRequest struct {
	PaymentMethod *enums.PaymentMethod  `json:"payment_method,omitempty"`
	Comment       *string               `json:"comment,omitempty"`
	Lines         []checkoutLineRequest `json:"lines" validate:"required,min=1"`
}

// CartCheckout turns a cart into transactions, all lines or none.
func CartCheckout(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := middleware.ActorFromContext(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body checkoutRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		lines := make([]cart.CheckoutLine, 0, len(body.Lines))
		for _, line := range body.Lines {
			lines = append(lines, cart.CheckoutLine{
				ProductID: line.ProductID,
				VariantID: line.VariantID,
				Quantity:  line.Quantity,
				Type:      line.Type,
				Amount:    line.Amount,
			})
		}

		result, err := svc.Checkout(r.Context(), actor, cart.CheckoutInput{
			PaymentMethod: body.PaymentMethod,
			Comment:       body.Comment,
			Lines:         lines,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}
