package productform

import "unicode/utf8"

// ValidateForm recalcule toute la map d'erreurs et indique si toutes les
// règles passent. C'est le seul contrôle avant Submit.
func (d *Draft) ValidateForm() bool {
	f := &d.form
	errs := errorSet{}

	errs.set("", FieldCategory, Validate(FieldCategory, f.Category))
	errs.set("", FieldName, Validate(FieldName, f.Name))
	errs.set("", FieldDescription, Validate(FieldDescription, f.Description))
	errs.set("", FieldBasePrice, Validate(FieldBasePrice, f.BasePrice))
	errs.set("", FieldBrand, Validate(FieldBrand, f.Brand))
	errs.set("", FieldDiscount, Validate(FieldDiscount, f.Discount))
	errs.set("", FieldMaterial, Validate(FieldMaterial, f.Specifications.Material))
	errs.set("", FieldFit, Validate(FieldFit, f.Specifications.Fit))

	for _, c := range f.Collections {
		if utf8.RuneCountInString(c) > MaxLabelLength {
			errs.set(ownerCollection+c, "collection", collectionSet.tooLong)
		}
	}
	for _, t := range f.Tags {
		if utf8.RuneCountInString(t) > MaxLabelLength {
			errs.set(ownerTag+t, "tag", tagSet.tooLong)
		}
	}

	for _, v := range f.Variants {
		errs.set(v.ID, "price", Validate(FieldVariantPrice, v.Price))
		errs.set(v.ID, "color", Validate(FieldVariantColor, v.Color))
		errs.set(v.ID, "sizes", Validate(FieldVariantSizes, v.Sizes))
		errs.set(v.ID, "images", Validate(FieldVariantImages, v.Images))
		if f.Mode == ModeUpdate {
			errs.set(v.ID, "stock", Validate(FieldVariantStock, v.Sizes))
		}
		for _, s := range v.Sizes {
			errs.set(s.ID, "stock", Validate(FieldSizeStock, s.Stock))
		}
	}

	d.errs = errs
	return !errs.any()
}
