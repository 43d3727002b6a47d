package productform

import (
	"slices"
	"strconv"

	"github.com/shopspring/decimal"

	"catalog_admin/internal/models"
)

// Hydrate construit un brouillon de modification à partir d'un produit du catalogue.
// Les ids du catalogue sur les tailles et images sont ignorés ; les images
// existantes ne gardent que leur URL.
func Hydrate(p *models.Product, opts Options) *Draft {
	d := newDraft(opts)
	d.form = Form{
		Mode:        ModeUpdate,
		ProductID:   p.ID,
		Category:    p.Category.ID,
		Name:        p.Name,
		Description: p.Description,
		BasePrice:   decimalText(p.BasePrice),
		Brand:       p.Brand.ID,
		Specifications: Specifications{
			Material: p.Specifications.Material,
			Fit:      p.Specifications.Fit,
		},
		Collections: nonNil(p.Collections),
		Tags:        nonNil(p.Tags),
		IsFeatured:  p.IsFeatured,
		IsSoldOut:   p.IsSoldOut,
		IsVisible:   p.IsVisible == nil || *p.IsVisible,
		IsActive:    p.IsActive == nil || *p.IsActive,
	}
	if p.Discount.Valid {
		d.form.Discount = decimalText(p.Discount.Decimal)
	}

	for _, pv := range p.Variants {
		v := d.emptyVariant(nil)
		v.Price = decimalText(pv.Price)
		v.Color = pv.Color.ID
		for _, ps := range pv.Sizes {
			s := SizeStock{ID: d.newID(), Size: ps.Size}
			if ps.Stock != nil {
				s.Stock = strconv.Itoa(*ps.Stock)
			}
			v.Sizes = append(v.Sizes, s)
		}
		primary := -1
		for k, pi := range pv.Images {
			v.Images = append(v.Images, Image{ID: d.newID(), URL: pi.URL, Alt: pi.Alt})
			if pi.IsPrimary && primary < 0 {
				primary = k
			}
		}
		if len(v.Images) > 0 {
			setPrimary(&v, max(primary, 0))
		}
		d.form.Variants = append(d.form.Variants, v)
	}
	if len(d.form.Variants) == 0 {
		d.form.Variants = []Variant{d.emptyVariant(nil)}
	}
	return d
}

// decimalText affiche un nombre stocké comme le formulaire le montre ; zéro
// donne un champ vide.
func decimalText(v decimal.Decimal) string {
	if v.IsZero() {
		return ""
	}
	return v.String()
}

func nonNil(labels models.Labels) []string {
	if labels == nil {
		return []string{}
	}
	return slices.Clone([]string(labels))
}
