package controllers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/adigart/adigart-backend/api/middleware"
	"github.com/adigart/adigart-backend/api/responses"
	"github.com/adigart/adigart-backend/api/validators"
	"github.com/adigart/adigart-backend/internal/products"
	pkgerrors "github.com/adigart/adigart-backend/pkg/errors"
	"github.com/adigart/adigart-backend/pkg/logger"
)

type variantRequest struct {
	Size  *string `json:"size,omitempty"`
	Color *string `json:"color,omitempty"`
	SKU   *string `json:"sku,omitempty"`
	Stock int     `json:"stock" validate:"gt=0"`
}

type createProductRequest struct {
	ProjectID  uuid.UUID        `json:"project_id" validate:"required"`
	Name       string           `json:"name" validate:"required"`
	SKU        *string          `json:"sku,omitempty"`
	Price      decimal.Decimal  `json:"price"`
	Stock      int              `json:"stock"`
	CategoryID *uuid.UUID       `json:"category_id,omitempty"`
	ImageURL   *string          `json:"image_url,omitempty"`
	Variants   []variantRequest `json:"variants,omitempty"`
}

type updateProductRequest struct {
	Name       *string          `json:"name,omitempty"`
	SKU        *string          `json:"sku,omitempty"`
	Price      *decimal.Decimal `json:"price,omitempty"`
	CategoryID *uuid.UUID       `json:"category_id,omitempty"`
	ImageURL   *string          `json:"image_url,omitempty"`
}

type restockRequest struct {
	Quantity int `json:"quantity" validate:"gt=0"`
}

type createVariantsRequest struct {
	Variants []variantRequest `json:"variants" validate:"required,min=1"`
}

func toVariantInputs(reqs []variantRequest) []products.VariantInput {
	inputs := make([]products.VariantInput, 0, len(reqs))
	for _, v := range reqs {
		inputs = append(inputs, products.VariantInput{
			Size:  v.Size,
			Color: v.Color,
			SKU:   v.SKU,
			Stock: v.Stock,
		})
	}
	return inputs
}

// ProductCreate adds a product, optionally with initial variants.
func ProductCreate(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := middleware.ActorFromContext(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body createProductRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.CreateProduct(r.Context(), actor, products.CreateProductInput{
			ProjectID:  body.ProjectID,
			Name:       body.Name,
			SKU:        body.SKU,
			Price:      body.Price,
			Stock:      body.Stock,
			CategoryID: body.CategoryID,
			ImageURL:   body.ImageURL,
			Variants:   toVariantInputs(body.Variants),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, product)
	}
}

// ProductList returns a project's products with their variants.
func ProductList(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := middleware.ActorFromContext(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		projectID, err := validators.ParseQueryUUID(r, "project_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if projectID == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "project_id is required"))
			return
		}

		list, err := svc.ListProducts(r.Context(), actor, *projectID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// ProductGet returns one product with its variants.
func ProductGet(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := middleware.ActorFromContext(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		productID, err := validators.ParseUUIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.GetProduct(r.Context(), actor, productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

// ProductUpdate mutates a product's descriptive fields. Stock moves only
// through restocks and transactions.
func ProductUpdate(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := middleware.ActorFromContext(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		productID, err := validators.ParseUUIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body updateProductRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.UpdateProduct(r.Context(), actor, productID, products.UpdateProductInput{
			Name:       body.Name,
			SKU:        body.SKU,
			Price:      body.Price,
			CategoryID: body.CategoryID,
			ImageURL:   body.ImageURL,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

// ProductDelete removes a product, its variants, and their transactions.
func ProductDelete(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := middleware.ActorFromContext(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		productID, err := validators.ParseUUIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteProduct(r.Context(), actor, productID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// ProductRestock adds quantity to a product's direct stock pool.
func ProductRestock(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := middleware.ActorFromContext(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		productID, err := validators.ParseUUIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body restockRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.Restock(r.Context(), actor, productID, body.Quantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

// VariantsCreate carves variants out of the product's remaining stock.
// All requested variants are created or none are.
func VariantsCreate(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := middleware.ActorFromContext(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		productID, err := validators.ParseUUIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body createVariantsRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		variants, err := svc.CreateVariants(r.Context(), actor, productID, toVariantInputs(body.Variants))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, variants)
	}
}

// VariantRestock adds quantity to one variant's stock pool.
func VariantRestock(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := middleware.ActorFromContext(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		variantID, err := validators.ParseUUIDParam(r, "variantId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body restockRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		variant, err := svc.RestockVariant(r.Context(), actor, variantID, body.Quantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, variant)
	}
}

// VariantDelete removes a variant and its transactions.
func VariantDelete(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := middleware.ActorFromContext(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		variantID, err := validators.ParseUUIDParam(r, "variantId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteVariant(r.Context(), actor, variantID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}
