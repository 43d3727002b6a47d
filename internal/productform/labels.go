package productform

import (
	"slices"
	"strings"
	"unicode/utf8"
)

// TagVocabulary est la liste fixe des tags proposés.
var TagVocabulary = []string{
	"mans-fashion",
	"womans-fashion",
	"woman-Accessories",
	"mens-accessories",
	"discount-deal",
}

// SuggestTags filtre le vocabulaire par sous-chaîne, sans tenir compte de la casse.
// Une saisie vide (le champ vient de prendre le focus) renvoie tout le vocabulaire.
func SuggestTags(input string) []string {
	q := strings.ToLower(strings.TrimSpace(input))
	if q == "" {
		return slices.Clone(TagVocabulary)
	}
	out := []string{}
	for _, s := range TagVocabulary {
		if strings.Contains(strings.ToLower(s), q) {
			out = append(out, s)
		}
	}
	return out
}

type labelSet struct {
	field     string // clé d'erreur du champ de saisie
	owner     string // préfixe des propriétaires d'erreur par entrée
	entry     string // champ d'erreur par entrée
	duplicate error
	tooLong   string
	name      string
}

var (
	tagSet = labelSet{
		field:     FieldNewTag,
		owner:     ownerTag,
		entry:     "tag",
		duplicate: ErrDuplicateTag,
		tooLong:   "Tag must be 50 characters or less",
		name:      "Tag",
	}
	collectionSet = labelSet{
		field:     FieldNewCollection,
		owner:     ownerCollection,
		entry:     "collection",
		duplicate: ErrDuplicateCollection,
		tooLong:   "Collection must be 50 characters or less",
		name:      "Collection",
	}
)

func (d *Draft) addLabel(ls labelSet, list *[]string, input *string, value string) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return notice(ErrEmptyLabel, "%s cannot be empty", ls.name)
	}
	if utf8.RuneCountInString(value) > MaxLabelLength {
		d.errs.set("", ls.field, ls.tooLong)
		return notice(ErrLabelTooLong, "%s", ls.tooLong)
	}
	if slices.Contains(*list, value) {
		return notice(ls.duplicate, "%s %q is already added", ls.name, value)
	}
	*list = append(*list, value)
	*input = ""
	d.errs.drop("", ls.field)
	return nil
}

func (d *Draft) removeLabel(ls labelSet, list *[]string, value string) {
	*list = slices.DeleteFunc(*list, func(s string) bool { return s == value })
	d.errs.dropOwner(ls.owner + value)
}

// AddTag ajoute un tag nettoyé. Les tags vides, trop longs ou en double sont
// refusés avec une Notice et l'ensemble reste inchangé.
func (d *Draft) AddTag(value string) error {
	return d.addLabel(tagSet, &d.form.Tags, &d.form.NewTag, value)
}

func (d *Draft) RemoveTag(value string) {
	d.removeLabel(tagSet, &d.form.Tags, value)
}

// AddSuggestedTag ajoute une suggestion choisie dans la liste. Choisir un tag
// déjà présent ne fait rien.
func (d *Draft) AddSuggestedTag(value string) error {
	if slices.Contains(d.form.Tags, strings.TrimSpace(value)) {
		return nil
	}
	return d.AddTag(value)
}

func (d *Draft) AddCollection(value string) error {
	return d.addLabel(collectionSet, &d.form.Collections, &d.form.NewCollection, value)
}

func (d *Draft) RemoveCollection(value string) {
	d.removeLabel(collectionSet, &d.form.Collections, value)
}
