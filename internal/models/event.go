package models

import "time"

// Types d'événements de brouillon poussés vers l'éditeur.
const (
	EventDraftUpdated   = "updated"
	EventDraftSubmitted = "submitted"
	EventDraftDiscarded = "discarded"
	EventDraftExpired   = "expired"
)

// DraftEvent prévient les vues attachées à un brouillon qu'il s'est passé
// quelque chose. Un événement "submitted" indique à la liste parente de se
// rafraîchir et de fermer le formulaire.
type DraftEvent struct {
	Type      string    `json:"type"`
	DraftID   string    `json:"draftId"`
	ProductID string    `json:"productId,omitempty"`
	Message   string    `json:"message,omitempty"`
	At        time.Time `json:"at"`
}
