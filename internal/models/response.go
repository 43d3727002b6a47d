package models

import (
	"encoding/json"
	"fmt"
)

// APIResponse est l'enveloppe de réponse de chaque endpoint du catalogue.
type APIResponse struct {
	StatusCode int             `json:"statusCode"`
	Message    string          `json:"message"`
	Data       json.RawMessage `json:"data,omitempty"`
}

// OK indique si l'enveloppe signale un succès.
func (r *APIResponse) OK() bool {
	return r != nil && (r.StatusCode == 200 || r.StatusCode == 201)
}

// Product décode data.product, ou data directement à défaut.
func (r *APIResponse) Product() (*Product, error) {
	if r == nil || len(r.Data) == 0 {
		return nil, nil
	}
	var wrapped struct {
		Product *Product `json:"product"`
	}
	if err := json.Unmarshal(r.Data, &wrapped); err == nil && wrapped.Product != nil {
		return wrapped.Product, nil
	}
	var p Product
	if err := json.Unmarshal(r.Data, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// APIError est une réponse hors 2xx de l'API catalogue. Message est le texte
// du serveur, vide si le corps n'en contenait pas.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("catalog api: status %d", e.Status)
	}
	return fmt.Sprintf("catalog api: status %d: %s", e.Status, e.Message)
}
