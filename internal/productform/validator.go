package productform

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// Noms de champs compris par Validate.
const (
	FieldCategory      = "category"
	FieldName          = "name"
	FieldDescription   = "description"
	FieldBasePrice     = "base_price"
	FieldBrand         = "brand"
	FieldDiscount      = "discount"
	FieldMaterial      = "material"
	FieldFit           = "fit"
	FieldNewCollection = "newCollection"
	FieldNewTag        = "newTag"
	FieldVariantPrice  = "variant_price"
	FieldVariantColor  = "variant_color"
	FieldVariantSizes  = "variant_sizes"
	FieldVariantImages = "variant_images"
	FieldVariantStock  = "variant_stock"
	FieldSizeStock     = "size_stock"
)

const (
	MaxNameLength        = 100
	MaxDescriptionLength = 500
	MaxSpecLength        = 100
	MaxLabelLength       = 50
)

var (
	maxPrice    = decimal.RequireFromString("999999.99")
	maxDiscount = decimal.NewFromInt(100)
)

// Validate vérifie la valeur d'un champ et renvoie le message à afficher à
// côté, ou "" si la valeur est acceptable. Les champs texte prennent une string ;
// variant_sizes et variant_images prennent la liste (ou sa longueur) ;
// variant_stock prend les tailles de la variante. Les noms inconnus passent.
func Validate(field string, value any) string {
	switch field {
	case FieldCategory:
		if text(value) == "" {
			return "Category is required"
		}
	case FieldName:
		s := text(value)
		if strings.TrimSpace(s) == "" {
			return "Product name is required"
		}
		if utf8.RuneCountInString(s) > MaxNameLength {
			return "Name must be 100 characters or less"
		}
	case FieldDescription:
		s := text(value)
		if strings.TrimSpace(s) == "" {
			return "Description is required"
		}
		if utf8.RuneCountInString(s) > MaxDescriptionLength {
			return "Description must be 500 characters or less"
		}
	case FieldBasePrice:
		return checkPrice(text(value), "Base price must be a positive number", "Base price must be less than 999999.99")
	case FieldBrand:
		if text(value) == "" {
			return "Brand is required"
		}
	case FieldDiscount:
		s := text(value)
		if strings.TrimSpace(s) == "" {
			return ""
		}
		d, ok := parseNumber(s)
		if !ok || d.IsNegative() || d.GreaterThan(maxDiscount) {
			return "Discount must be between 0 and 100"
		}
	case FieldMaterial:
		if utf8.RuneCountInString(text(value)) > MaxSpecLength {
			return "Material must be 100 characters or less"
		}
	case FieldFit:
		if utf8.RuneCountInString(text(value)) > MaxSpecLength {
			return "Fit must be 100 characters or less"
		}
	case FieldNewCollection:
		if utf8.RuneCountInString(text(value)) > MaxLabelLength {
			return "Collection must be 50 characters or less"
		}
	case FieldNewTag:
		if utf8.RuneCountInString(text(value)) > MaxLabelLength {
			return "Tag must be 50 characters or less"
		}
	case FieldVariantPrice:
		return checkPrice(text(value), "Price must be a positive number", "Price must be less than 999999.99")
	case FieldVariantColor:
		if text(value) == "" {
			return "Color is required"
		}
	case FieldVariantSizes:
		if count(value) == 0 {
			return "At least one size is required"
		}
	case FieldVariantImages:
		if count(value) == 0 {
			return "At least one image is required"
		}
	case FieldVariantStock:
		sizes, _ := value.([]SizeStock)
		for _, s := range sizes {
			if d, ok := parseNumber(s.Stock); ok && !d.IsNegative() {
				return ""
			}
		}
		return "At least one size must have valid stock"
	case FieldSizeStock:
		s := text(value)
		if strings.TrimSpace(s) == "" {
			return ""
		}
		if d, ok := parseNumber(s); !ok || d.IsNegative() {
			return "Stock must be a non-negative number"
		}
	}
	return ""
}

func checkPrice(raw, invalid, tooHigh string) string {
	d, ok := parseNumber(raw)
	if !ok || !d.IsPositive() {
		return invalid
	}
	if d.GreaterThan(maxPrice) {
		return tooHigh
	}
	return ""
}

func parseNumber(raw string) (decimal.Decimal, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

func text(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

func count(value any) int {
	switch v := value.(type) {
	case nil:
		return 0
	case int:
		return v
	case []SizeStock:
		return len(v)
	case []Image:
		return len(v)
	case []string:
		return len(v)
	default:
		return 0
	}
}
