package productform

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Mode indique si un brouillon crée un produit ou modifie un produit existant.
type Mode string

const (
	ModeCreate Mode = "create"
	ModeUpdate Mode = "update"
)

// Form est l'état modifiable d'un brouillon. Les champs numériques gardent le
// texte saisi ; ils ne sont parsés que pour la validation.
type Form struct {
	Mode           Mode           `json:"mode"`
	ProductID      string         `json:"productId,omitempty"`
	Category       string         `json:"category"`
	Name           string         `json:"name"`
	Description    string         `json:"description"`
	BasePrice      string         `json:"base_price"`
	Brand          string         `json:"brand"`
	Discount       string         `json:"discount"`
	Specifications Specifications `json:"specifications"`
	Collections    []string       `json:"collections"`
	Tags           []string       `json:"tags"`
	IsFeatured     bool           `json:"isFeatured"`
	IsSoldOut      bool           `json:"isSoldOut"`
	IsVisible      bool           `json:"isVisible"`
	IsActive       bool           `json:"isActive"`
	Variants       []Variant      `json:"variants"`

	// Texte saisi dans les champs tag et collection, pas encore ajouté.
	NewTag        string `json:"newTag"`
	NewCollection string `json:"newCollection"`
}

type Specifications struct {
	Material string `json:"material"`
	Fit      string `json:"fit"`
}

// Variant est une déclinaison vendable du produit. L'ID est attribué par le
// brouillon et n'est jamais envoyé au catalogue.
type Variant struct {
	ID     string      `json:"id"`
	Price  string      `json:"price"`
	Color  string      `json:"color"`
	Sizes  []SizeStock `json:"sizes"`
	Images []Image     `json:"images"`
}

type SizeStock struct {
	ID    string `json:"id"`
	Size  string `json:"size"`
	Stock string `json:"stock"`
}

// Image est soit un upload en attente dans le stockage temporaire, soit une
// image déjà présente sur le produit (URL renseignée, modification uniquement).
type Image struct {
	ID          string `json:"id"`
	FileName    string `json:"fileName,omitempty"`
	FileSize    int64  `json:"fileSize,omitempty"`
	ContentType string `json:"contentType,omitempty"`
	PreviewURL  string `json:"previewUrl,omitempty"`
	URL         string `json:"url,omitempty"`
	Alt         string `json:"alt,omitempty"`
	IsPrimary   bool   `json:"isPrimary"`

	key string
}

// Pending indique si l'image est un nouvel upload.
func (im Image) Pending() bool { return im.key != "" }

func (im Image) fingerprint() fileKey {
	if im.Pending() {
		return fileKey{im.FileName, im.FileSize}
	}
	return fileKey{lastSegment(im.URL), 0}
}

type fileKey struct {
	name string
	size int64
}

func lastSegment(u string) string {
	if i := strings.IndexAny(u, "?#"); i >= 0 {
		u = u[:i]
	}
	return u[strings.LastIndex(u, "/")+1:]
}

// Options configure un nouveau brouillon.
type Options struct {
	// ID du brouillon, généré s'il est vide.
	ID      string
	Staging Staging
	Logger  *zerolog.Logger
}

// Draft est un produit en cours de création ou de modification. Un Draft
// n'est pas sûr en concurrence ; l'appelant sérialise les accès.
type Draft struct {
	id            string
	form          Form
	categorySizes []string
	errs          errorSet
	uploadErrs    map[uploadKey]string
	staging       Staging
	log           zerolog.Logger
	newID         func() string
}

// New renvoie un brouillon de création vide avec une variante vide.
func New(opts Options) *Draft {
	d := newDraft(opts)
	d.form = Form{
		Mode:        ModeCreate,
		Collections: []string{},
		Tags:        []string{},
		IsVisible:   true,
		IsActive:    true,
	}
	d.form.Variants = []Variant{d.emptyVariant(nil)}
	return d
}

func newDraft(opts Options) *Draft {
	d := &Draft{
		id:         opts.ID,
		errs:       errorSet{},
		uploadErrs: map[uploadKey]string{},
		staging:    opts.Staging,
		newID:      uuid.NewString,
	}
	if d.id == "" {
		d.id = d.newID()
	}
	if opts.Logger != nil {
		d.log = opts.Logger.With().Str("draft", d.id).Logger()
	} else {
		d.log = zerolog.Nop()
	}
	return d
}

func (d *Draft) emptyVariant(labels []string) Variant {
	v := Variant{ID: d.newID(), Sizes: []SizeStock{}, Images: []Image{}}
	for _, l := range labels {
		v.Sizes = append(v.Sizes, SizeStock{ID: d.newID(), Size: l})
	}
	return v
}

func (d *Draft) ID() string { return d.id }

func (d *Draft) Mode() Mode { return d.form.Mode }

// Form renvoie une copie profonde de l'état du brouillon.
func (d *Draft) Form() Form {
	f := d.form
	f.Collections = slices.Clone(d.form.Collections)
	f.Tags = slices.Clone(d.form.Tags)
	f.Variants = make([]Variant, len(d.form.Variants))
	for i, v := range d.form.Variants {
		v.Sizes = slices.Clone(v.Sizes)
		v.Images = slices.Clone(v.Images)
		f.Variants[i] = v
	}
	return f
}

// View est le modèle de lecture envoyé à l'interface d'édition.
type View struct {
	ID             string            `json:"id"`
	Form           Form              `json:"form"`
	Errors         map[string]string `json:"errors"`
	UploadErrors   map[string]string `json:"uploadErrors"`
	AvailableSizes []string          `json:"availableSizes"`
}

func (d *Draft) Snapshot() View {
	return View{
		ID:             d.id,
		Form:           d.Form(),
		Errors:         d.Errors(),
		UploadErrors:   d.UploadErrors(),
		AvailableSizes: d.AvailableSizes(),
	}
}

// text renvoie le champ du formulaire modifié par name, nil pour les noms
// refusés par SetField. La catégorie passe par SetCategory car elle pilote
// aussi les listes de tailles.
func (d *Draft) text(name string) *string {
	switch name {
	case FieldName:
		return &d.form.Name
	case FieldDescription:
		return &d.form.Description
	case FieldBasePrice:
		return &d.form.BasePrice
	case FieldBrand:
		return &d.form.Brand
	case FieldDiscount:
		return &d.form.Discount
	case FieldMaterial:
		return &d.form.Specifications.Material
	case FieldFit:
		return &d.form.Specifications.Fit
	case FieldNewTag:
		return &d.form.NewTag
	case FieldNewCollection:
		return &d.form.NewCollection
	}
	return nil
}

// SetField met à jour un champ texte de premier niveau et le revalide.
func (d *Draft) SetField(name, value string) error {
	p := d.text(name)
	if p == nil {
		return fmt.Errorf("%w: %s", ErrUnknownField, name)
	}
	*p = value
	d.errs.set("", name, Validate(name, value))
	return nil
}

// Flags acceptés par SetFlag.
const (
	FlagFeatured = "isFeatured"
	FlagSoldOut  = "isSoldOut"
	FlagVisible  = "isVisible"
	FlagActive   = "isActive"
)

func (d *Draft) flag(name string) *bool {
	switch name {
	case FlagFeatured:
		return &d.form.IsFeatured
	case FlagSoldOut:
		return &d.form.IsSoldOut
	case FlagVisible:
		return &d.form.IsVisible
	case FlagActive:
		return &d.form.IsActive
	}
	return nil
}

func (d *Draft) SetFlag(name string, on bool) error {
	p := d.flag(name)
	if p == nil {
		return fmt.Errorf("%w: %s", ErrUnknownField, name)
	}
	*p = on
	return nil
}

// SetFields applique plusieurs champs et flags d'un coup. Tous les noms sont
// vérifiés d'abord : un lot avec un nom inconnu ne change rien.
func (d *Draft) SetFields(values map[string]string, flags map[string]bool) error {
	for name := range values {
		if d.text(name) == nil {
			return fmt.Errorf("%w: %s", ErrUnknownField, name)
		}
	}
	for name := range flags {
		if d.flag(name) == nil {
			return fmt.Errorf("%w: %s", ErrUnknownField, name)
		}
	}
	for name, value := range values {
		_ = d.SetField(name, value)
	}
	for name, on := range flags {
		_ = d.SetFlag(name, on)
	}
	return nil
}

// Blur est appelé quand l'utilisateur quitte un champ. Pour un champ de premier
// niveau la valeur est d'abord enregistrée, l'erreur correspond donc toujours
// au formulaire ; la catégorie garde sa valeur. Les autres noms sont juste vérifiés.
func (d *Draft) Blur(name, value string) string {
	if !slices.Contains(topLevelFields, name) {
		return Validate(name, value)
	}
	current := d.form.Category
	if p := d.text(name); p != nil {
		*p = value
		current = value
	}
	msg := Validate(name, current)
	d.errs.set("", name, msg)
	return msg
}

// Discard libère tous les aperçus stockés par le brouillon.
func (d *Draft) Discard(ctx context.Context) {
	for _, v := range d.form.Variants {
		d.releaseImages(ctx, v.Images)
	}
}
