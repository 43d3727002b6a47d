package productform

import (
	"context"
	"slices"
	"strings"
)

// Tailles proposées en modification d'un produit existant, dont les tailles de
// catégorie ne sont pas rechargées.
var predefinedSizes = []string{"XS", "S", "M", "L", "XL", "2XL", "3XL", "4XL", "5XL"}

// AvailableSizes liste les tailles que l'UI propose pour un ajout.
func (d *Draft) AvailableSizes() []string {
	if d.form.Mode == ModeUpdate {
		return slices.Clone(predefinedSizes)
	}
	if d.categorySizes == nil {
		return []string{}
	}
	return slices.Clone(d.categorySizes)
}

// VariantIndex renvoie la position actuelle de la variante d'id donné,
// ou -1.
func (d *Draft) VariantIndex(id string) int {
	return slices.IndexFunc(d.form.Variants, func(v Variant) bool { return v.ID == id })
}

// SizeIndex renvoie la position d'une taille dans la variante i, ou -1.
func (d *Draft) SizeIndex(i int, id string) int {
	if i < 0 || i >= len(d.form.Variants) {
		return -1
	}
	return slices.IndexFunc(d.form.Variants[i].Sizes, func(s SizeStock) bool { return s.ID == id })
}

// ImageIndex renvoie la position d'une image dans la variante i, ou -1.
func (d *Draft) ImageIndex(i int, id string) int {
	if i < 0 || i >= len(d.form.Variants) {
		return -1
	}
	return slices.IndexFunc(d.form.Variants[i].Images, func(im Image) bool { return im.ID == id })
}

func (d *Draft) variant(i int) (*Variant, error) {
	if i < 0 || i >= len(d.form.Variants) {
		return nil, ErrOutOfRange
	}
	return &d.form.Variants[i], nil
}

// SetCategory choisit la catégorie et retient ses tailles. En création,
// les tailles de chaque variante sont reconstruites à partir de ces labels en
// gardant le stock déjà saisi ; vider la catégorie les vide.
func (d *Draft) SetCategory(id string, sizes []string) {
	d.form.Category = id
	d.errs.set("", FieldCategory, Validate(FieldCategory, id))
	if id == "" {
		d.categorySizes = nil
	} else {
		d.categorySizes = slices.Clone(sizes)
	}
	if d.form.Mode != ModeCreate {
		return
	}
	for i := range d.form.Variants {
		v := &d.form.Variants[i]
		rebuilt := make([]SizeStock, 0, len(d.categorySizes))
		for _, label := range d.categorySizes {
			j := slices.IndexFunc(v.Sizes, func(s SizeStock) bool { return s.Size == label })
			if j >= 0 {
				rebuilt = append(rebuilt, v.Sizes[j])
				continue
			}
			rebuilt = append(rebuilt, SizeStock{ID: d.newID(), Size: label})
		}
		for _, s := range v.Sizes {
			if !slices.ContainsFunc(rebuilt, func(r SizeStock) bool { return r.ID == s.ID }) {
				d.errs.dropOwner(s.ID)
			}
		}
		v.Sizes = rebuilt
		if _, shown := d.errs.lookup(v.ID, "sizes"); shown {
			d.errs.set(v.ID, "sizes", Validate(FieldVariantSizes, v.Sizes))
		}
	}
}

// AddVariant ajoute une variante vide et renvoie son index. Ses tailles
// viennent de la catégorie si elle est choisie, sinon des labels de la
// variante précédente, stock vidé.
func (d *Draft) AddVariant() int {
	var labels []string
	if d.form.Mode == ModeCreate && len(d.categorySizes) > 0 {
		labels = d.categorySizes
	} else if n := len(d.form.Variants); n > 0 {
		for _, s := range d.form.Variants[n-1].Sizes {
			labels = append(labels, s.Size)
		}
	}
	v := d.emptyVariant(labels)
	d.form.Variants = append(d.form.Variants, v)

	d.errs.set(v.ID, "price", Validate(FieldVariantPrice, v.Price))
	d.errs.set(v.ID, "color", Validate(FieldVariantColor, v.Color))
	d.errs.set(v.ID, "sizes", Validate(FieldVariantSizes, v.Sizes))
	d.errs.set(v.ID, "images", Validate(FieldVariantImages, v.Images))
	if d.form.Mode == ModeUpdate {
		d.errs.set(v.ID, "stock", Validate(FieldVariantStock, v.Sizes))
	}
	return len(d.form.Variants) - 1
}

// RemoveVariant retire la variante i avec ses erreurs et ses aperçus. La
// dernière variante ne peut pas être retirée.
func (d *Draft) RemoveVariant(ctx context.Context, i int) error {
	v, err := d.variant(i)
	if err != nil {
		return err
	}
	if len(d.form.Variants) <= 1 {
		return notice(ErrLastVariant, "At least one variant is required.")
	}
	d.releaseImages(ctx, v.Images)
	d.errs.dropOwner(v.ID)
	for _, s := range v.Sizes {
		d.errs.dropOwner(s.ID)
	}
	for k := range d.uploadErrs {
		if k.variant == v.ID {
			delete(d.uploadErrs, k)
		}
	}
	d.form.Variants = slices.Delete(d.form.Variants, i, i+1)
	return nil
}

// SetVariantField met à jour le prix ou la couleur de la variante i.
func (d *Draft) SetVariantField(i int, field, value string) error {
	v, err := d.variant(i)
	if err != nil {
		return err
	}
	switch field {
	case "price":
		v.Price = value
		d.errs.set(v.ID, "price", Validate(FieldVariantPrice, value))
	case "color":
		v.Color = value
		d.errs.set(v.ID, "color", Validate(FieldVariantColor, value))
	default:
		return ErrUnknownField
	}
	return nil
}

// AddSizeToVariant ajoute une taille sans stock à la variante i. Les labels se
// comparent sans la casse ; un label vide est ignoré.
func (d *Draft) AddSizeToVariant(i int, label string) error {
	v, err := d.variant(i)
	if err != nil {
		return err
	}
	label = strings.TrimSpace(label)
	if label == "" {
		return nil
	}
	if slices.ContainsFunc(v.Sizes, func(s SizeStock) bool { return strings.EqualFold(s.Size, label) }) {
		return notice(ErrDuplicateSize, "Size %s already exists in this variant", label)
	}
	v.Sizes = append(v.Sizes, SizeStock{ID: d.newID(), Size: label})
	d.revalidateSizes(v)
	return nil
}

func (d *Draft) RemoveSizeFromVariant(i, j int) error {
	v, err := d.variant(i)
	if err != nil {
		return err
	}
	if j < 0 || j >= len(v.Sizes) {
		return ErrOutOfRange
	}
	d.errs.dropOwner(v.Sizes[j].ID)
	v.Sizes = slices.Delete(v.Sizes, j, j+1)
	d.revalidateSizes(v)
	return nil
}

// SetSizeStock fixe le stock de la taille j de la variante i et ne revalide
// que cette entrée (plus la règle de stock de la variante en modification).
func (d *Draft) SetSizeStock(i, j int, stock string) error {
	v, err := d.variant(i)
	if err != nil {
		return err
	}
	if j < 0 || j >= len(v.Sizes) {
		return ErrOutOfRange
	}
	v.Sizes[j].Stock = stock
	d.errs.set(v.Sizes[j].ID, "stock", Validate(FieldSizeStock, stock))
	if d.form.Mode == ModeUpdate {
		d.errs.set(v.ID, "stock", Validate(FieldVariantStock, v.Sizes))
	}
	return nil
}

func (d *Draft) revalidateSizes(v *Variant) {
	d.errs.set(v.ID, "sizes", Validate(FieldVariantSizes, v.Sizes))
	if d.form.Mode == ModeUpdate {
		d.errs.set(v.ID, "stock", Validate(FieldVariantStock, v.Sizes))
	}
}
