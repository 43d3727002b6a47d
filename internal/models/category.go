package models

// Category telle que listée par GET /api/v1/category. Ses tailles donnent les
// labels proposés à chaque variante d'un nouveau produit.
type Category struct {
	ID       string       `json:"_id"`
	Name     string       `json:"name"`
	IsActive bool         `json:"isActive"`
	Sizes    []SizeOption `json:"sizes"`
}

type SizeOption struct {
	Label  string  `json:"label"`
	Symbol *string `json:"symbol,omitempty"`
}

// SizeLabels renvoie les labels des tailles de la catégorie, dans l'ordre.
func (c Category) SizeLabels() []string {
	labels := make([]string, 0, len(c.Sizes))
	for _, s := range c.Sizes {
		labels = append(labels, s.Label)
	}
	return labels
}

type Brand struct {
	ID   string `json:"_id"`
	Name string `json:"name"`
}

type Color struct {
	ID   string `json:"_id"`
	Name string `json:"name"`
	Hex  string `json:"hex"`
}

// ReferenceData regroupe les listes dont l'éditeur de produit a besoin pour
// ses selects.
type ReferenceData struct {
	Categories []Category `json:"categories"`
	Brands     []Brand    `json:"brands"`
	Colors     []Color    `json:"colors"`
}
