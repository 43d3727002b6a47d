package categoryform

import (
	"encoding/json"
	"strings"
	"unicode/utf8"

	"catalog_admin/internal/models"
	"catalog_admin/internal/productform"
)

// Champs du formulaire de catégorie, tels que clés de la map d'erreurs.
const (
	FieldName        = "name"
	FieldDescription = "description"
	FieldSizes       = "sizes"
	FieldIcon        = "icon"
	FieldBanner      = "banner"
)

// Form est une catégorie telle qu'envoyée par l'éditeur. Icon et Banner sont
// nil si aucun nouveau fichier n'a été choisi.
type Form struct {
	Name        string
	Description string
	IsActive    bool
	Sizes       []models.SizeOption
	Icon        *productform.FileInput
	Banner      *productform.FileInput
}

// Validate renvoie l'erreur de chaque champ invalide, par nom de champ. En
// création les deux images sont obligatoires ; en modification un fichier absent
// garde l'actuel. Les fichiers acceptés reçoivent leur type MIME détecté.
func (f *Form) Validate(mode productform.Mode) map[string]string {
	errs := map[string]string{}
	set := func(field, msg string) {
		if msg != "" {
			errs[field] = msg
		}
	}

	f.Name = strings.TrimSpace(f.Name)
	f.Description = strings.TrimSpace(f.Description)
	set(FieldName, validateName(f.Name))
	set(FieldDescription, validateDescription(f.Description))

	sizes, msg := normalizeSizes(f.Sizes)
	f.Sizes = sizes
	set(FieldSizes, msg)

	set(FieldIcon, checkAsset(f.Icon, productform.IconImageLimits, mode, "Please select an icon image"))
	set(FieldBanner, checkAsset(f.Banner, productform.BannerImageLimits, mode, "Please select a banner image"))
	return errs
}

func validateName(name string) string {
	n := utf8.RuneCountInString(name)
	switch {
	case n == 0:
		return "Category name is required"
	case n < 2:
		return "Category name must be at least 2 characters"
	case n > 50:
		return "Category name cannot exceed 50 characters"
	}
	return ""
}

func validateDescription(desc string) string {
	n := utf8.RuneCountInString(desc)
	switch {
	case n == 0:
		return "Description is required"
	case n < 10:
		return "Description must be at least 10 characters"
	case n > 200:
		return "Description cannot exceed 200 characters"
	}
	return ""
}

// normalizeSizes nettoie labels et symboles et retire les symboles vides. Les
// labels doivent être présents et uniques sans tenir compte de la casse.
func normalizeSizes(in []models.SizeOption) ([]models.SizeOption, string) {
	if len(in) == 0 {
		return in, "Please add at least one size"
	}
	out := make([]models.SizeOption, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, s := range in {
		label := strings.TrimSpace(s.Label)
		if label == "" {
			return in, "Please enter a label for the size"
		}
		if seen[strings.ToLower(label)] {
			return in, "This label is already used. Please use a unique label."
		}
		seen[strings.ToLower(label)] = true

		opt := models.SizeOption{Label: label}
		if s.Symbol != nil {
			if sym := strings.TrimSpace(*s.Symbol); sym != "" {
				opt.Symbol = &sym
			}
		}
		out = append(out, opt)
	}
	return out, ""
}

func checkAsset(f *productform.FileInput, limits productform.ImageLimits, mode productform.Mode, missing string) string {
	if f == nil {
		if mode == productform.ModeCreate {
			return missing
		}
		return ""
	}
	mt, problem := productform.CheckImage(*f, limits)
	if problem != "" {
		return problem
	}
	f.ContentType = mt
	return ""
}

func sizesJSON(sizes []models.SizeOption) string {
	b, err := json.Marshal(sizes)
	if err != nil {
		return "[]"
	}
	return string(b)
}
