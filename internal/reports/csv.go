package reports

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/adigart/adigart-backend/pkg/enums"
)

// Semicolon separated with a UTF-8 BOM so Excel opens the file correctly
// on French locales.
var csvHeader = []string{"Date", "Produit", "Variante", "SKU", "Type", "Paiement", "Quantité", "Montant", "Commentaire"}

const exportTimeFormat = "02/01/2006 15:04"

func writeCSV(w io.Writer, rows []ExportRow, loc *time.Location) error {
	if _, err := w.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
		return err
	}

	writer := csv.NewWriter(w)
	writer.Comma = ';'

	if err := writer.Write(csvHeader); err != nil {
		return err
	}
	for _, row := range rows {
		record := []string{
			row.CreatedAt.In(loc).Format(exportTimeFormat),
			row.ProductName,
			variantLabel(row.VariantSize, row.VariantColor),
			skuLabel(row.VariantSKU, row.ProductSKU),
			typeLabel(row.Type),
			paymentLabel(row.PaymentMethod),
			strconv.Itoa(row.Quantity),
			row.Amount.StringFixed(2),
			stringOrEmpty(row.Comment),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

func variantLabel(size, color *string) string {
	parts := make([]string, 0, 2)
	if size != nil && *size != "" {
		parts = append(parts, *size)
	}
	if color != nil && *color != "" {
		parts = append(parts, *color)
	}
	return strings.Join(parts, " / ")
}

// skuLabel prefers the variant SKU and falls back to the product one.
func skuLabel(variantSKU, productSKU *string) string {
	if variantSKU != nil && *variantSKU != "" {
		return *variantSKU
	}
	return stringOrEmpty(productSKU)
}

func typeLabel(t enums.TransactionType) string {
	switch t {
	case enums.TransactionTypeSale:
		return "Vente"
	case enums.TransactionTypeGift:
		return "Don"
	default:
		return string(t)
	}
}

func paymentLabel(m *enums.PaymentMethod) string {
	if m == nil {
		return ""
	}
	switch *m {
	case enums.PaymentMethodCash:
		return "Espèces"
	case enums.PaymentMethodCard:
		return "Carte"
	default:
		return string(*m)
	}
}

func stringOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
