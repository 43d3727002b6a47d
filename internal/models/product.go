package models

import (
	"bytes"
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Product est le document produit de l'API catalogue, tel que renvoyé par
// GET /api/v1/products/:id. Seuls les champs utilisés par l'éditeur sont
// déclarés.
type Product struct {
	ID             string              `json:"_id"`
	Category       Ref                 `json:"category"`
	Name           string              `json:"name"`
	Description    string              `json:"description"`
	BasePrice      decimal.Decimal     `json:"base_price"`
	Brand          Ref                 `json:"brand"`
	Discount       decimal.NullDecimal `json:"discount"`
	Specifications Specifications      `json:"specifications"`
	Collections    Labels              `json:"collections"`
	Tags           Labels              `json:"tags"`
	IsFeatured     bool                `json:"isFeatured"`
	IsSoldOut      bool                `json:"isSoldOut"`
	IsVisible      *bool               `json:"isVisible,omitempty"`
	IsActive       *bool               `json:"isActive,omitempty"`
	Variants       []ProductVariant    `json:"variants"`
}

type Specifications struct {
	Material string `json:"material"`
	Fit      string `json:"fit"`
}

type ProductVariant struct {
	ID     string          `json:"_id,omitempty"`
	Price  decimal.Decimal `json:"price"`
	Color  Ref             `json:"color"`
	Sizes  []ProductSize   `json:"sizes"`
	Images []ProductImage  `json:"images"`
}

// ProductSize porte le _id du backend, ignoré par l'éditeur.
type ProductSize struct {
	ID    string `json:"_id,omitempty"`
	Size  string `json:"size"`
	Stock *int   `json:"stock,omitempty"`
}

type ProductImage struct {
	ID        string `json:"_id,omitempty"`
	URL       string `json:"url"`
	IsPrimary bool   `json:"isPrimary"`
	Alt       string `json:"alt,omitempty"`
}

// Ref est une référence vers un autre document du catalogue. L'API envoie soit
// l'id seul soit le document complet ; les deux donnent l'id.
type Ref struct {
	ID   string `json:"_id"`
	Name string `json:"name,omitempty"`
}

func (r *Ref) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*r = Ref{}
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var id string
		if err := json.Unmarshal(data, &id); err != nil {
			return err
		}
		*r = Ref{ID: id}
		return nil
	}
	type plain Ref
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*r = Ref(p)
	return nil
}

// Labels décode une liste de strings ou d'objets {name}.
type Labels []string

func (l *Labels) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(Labels, 0, len(raw))
	for _, item := range raw {
		var s string
		if err := json.Unmarshal(item, &s); err == nil {
			out = append(out, s)
			continue
		}
		var named struct {
			Name string `json:"name"`
		}
		if err := json.Unmarshal(item, &named); err != nil {
			return err
		}
		out = append(out, named.Name)
	}
	*l = out
	return nil
}
