package productform

import "fmt"

// errKey identifie un résultat de validation par l'id stable de l'entité qui
// le porte. Les clés positionnelles comme variant_0_price ne sont produites
// qu'au rendu : supprimer une entité ne décale jamais les erreurs sur ses
// voisines.
type errKey struct {
	owner string // "" for draft-level fields
	field string
}

type errorSet map[errKey]string

// set enregistre msg, ou efface l'entrée si msg est vide.
func (e errorSet) set(owner, field, msg string) {
	if msg == "" {
		delete(e, errKey{owner, field})
		return
	}
	e[errKey{owner, field}] = msg
}

func (e errorSet) drop(owner, field string) { delete(e, errKey{owner, field}) }

func (e errorSet) dropOwner(owner string) {
	for k := range e {
		if k.owner == owner {
			delete(e, k)
		}
	}
}

func (e errorSet) lookup(owner, field string) (string, bool) {
	msg, ok := e[errKey{owner, field}]
	return msg, ok
}

func (e errorSet) any() bool {
	for _, msg := range e {
		if msg != "" {
			return true
		}
	}
	return false
}

type uploadKey struct {
	variant string
	file    int
}

const (
	ownerTag        = "tag:"
	ownerCollection = "collection:"
)

var topLevelFields = []string{
	FieldCategory, FieldName, FieldDescription, FieldBasePrice, FieldBrand,
	FieldDiscount, FieldMaterial, FieldFit, FieldNewCollection, FieldNewTag,
}

var variantFields = []string{"price", "color", "sizes", "images", "stock"}

// Errors produit la map d'erreurs avec des clés d'affichage tirées de l'ordre
// actuel des variantes, tailles et labels.
func (d *Draft) Errors() map[string]string {
	out := make(map[string]string, len(d.errs))
	for _, f := range topLevelFields {
		if msg, ok := d.errs.lookup("", f); ok {
			out[f] = msg
		}
	}
	for i, t := range d.form.Tags {
		if msg, ok := d.errs.lookup(ownerTag+t, "tag"); ok {
			out[fmt.Sprintf("tag_%d", i)] = msg
		}
	}
	for i, c := range d.form.Collections {
		if msg, ok := d.errs.lookup(ownerCollection+c, "collection"); ok {
			out[fmt.Sprintf("collection_%d", i)] = msg
		}
	}
	for i, v := range d.form.Variants {
		for _, f := range variantFields {
			if msg, ok := d.errs.lookup(v.ID, f); ok {
				out[fmt.Sprintf("variant_%d_%s", i, f)] = msg
			}
		}
		for j, s := range v.Sizes {
			if msg, ok := d.errs.lookup(s.ID, "stock"); ok {
				out[fmt.Sprintf("variant_%d_size_%d_stock", i, j)] = msg
			}
		}
	}
	return out
}

// UploadErrors produit les refus d'upload par fichier sous la forme
// variant_<i>_image_<fileIndex>.
func (d *Draft) UploadErrors() map[string]string {
	out := make(map[string]string, len(d.uploadErrs))
	for i, v := range d.form.Variants {
		for k, msg := range d.uploadErrs {
			if k.variant == v.ID {
				out[fmt.Sprintf("variant_%d_image_%d", i, k.file)] = msg
			}
		}
	}
	return out
}

// HasErrors indique si la map d'erreurs contient au moins un message.
func (d *Draft) HasErrors() bool { return d.errs.any() }
