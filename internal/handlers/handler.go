package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"catalog_admin/internal/cache"
	"catalog_admin/internal/categoryform"
	"catalog_admin/internal/drafts"
	"catalog_admin/internal/models"
	"catalog_admin/internal/productform"
	"catalog_admin/internal/utils"
)

// Reference sert les catégories, marques et couleurs du catalogue.
type Reference interface {
	Reference(ctx context.Context) (*models.ReferenceData, error)
	Category(ctx context.Context, id string) (*models.Category, error)
	Invalidate(ctx context.Context) error
}

// ProductRemover supprime des produits du catalogue.
type ProductRemover interface {
	DeleteProduct(ctx context.Context, id string) (*models.APIResponse, error)
}

// TagSuggester propose les tags déjà utilisés dans le catalogue.
type TagSuggester interface {
	SuggestTags(ctx context.Context, input string, limit int) ([]string, error)
}

// Subscriber diffuse les événements d'un brouillon.
type Subscriber interface {
	Subscribe(ctx context.Context, draftID string) (<-chan models.DraftEvent, func(), error)
}

type Deps struct {
	Drafts     *drafts.Manager
	Categories *categoryform.Service
	Products   ProductRemover
	Reference  Reference
	// Suggester est optionnel ; sans lui on utilise le vocabulaire intégré.
	Suggester TagSuggester
	Events    Subscriber
	Audit     *utils.Auditor
	// AllowedOrigins pour le handshake websocket ; vide accepte toute origine.
	AllowedOrigins []string
	Log            zerolog.Logger
}

// Handler expose l'éditeur de produits à l'interface admin.
type Handler struct {
	Deps
}

func New(deps Deps) *Handler {
	return &Handler{Deps: deps}
}

// owner est l'admin authentifié qui modifie le brouillon.
func owner(c *gin.Context) string { return c.GetString("user_id") }

// fail répond avec le statut correspondant à err. Si le brouillon est connu sa
// vue est jointe pour que l'UI réaffiche les erreurs des champs.
func (h *Handler) fail(c *gin.Context, view *productform.View, err error) {
	body := gin.H{}
	if view != nil && view.ID != "" {
		body["draft"] = view
	}

	var (
		n      *productform.Notice
		se     *productform.SubmitError
		apiErr *models.APIError
	)
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, drafts.ErrNotFound):
		status, body["error"] = http.StatusNotFound, "Draft not found"
	case errors.As(err, &n) && errors.Is(err, productform.ErrInvalidDraft):
		status, body["error"] = http.StatusUnprocessableEntity, n.Message
	case errors.As(err, &n):
		status, body["error"], body["level"] = http.StatusConflict, n.Message, "warning"
	case errors.As(err, &se):
		status, body["error"] = http.StatusBadGateway, se.Message
		if se.Status == http.StatusNotFound {
			status = http.StatusNotFound
		}
		if se.Status != 0 {
			body["status"] = se.Status
		}
	case errors.Is(err, productform.ErrOutOfRange):
		status, body["error"] = http.StatusNotFound, "Not found"
	case errors.Is(err, productform.ErrUnknownField):
		status, body["error"] = http.StatusBadRequest, "Unknown field"
	case errors.Is(err, productform.ErrVariantGone):
		status, body["error"] = http.StatusConflict, "Variant was removed"
	case errors.Is(err, cache.ErrCategoryNotFound):
		status, body["error"] = http.StatusBadRequest, "Category not found"
	case errors.As(err, &apiErr):
		status, body["error"] = http.StatusBadGateway, "Catalog unavailable"
		if apiErr.Status == http.StatusNotFound {
			status, body["error"] = http.StatusNotFound, "Product not found"
		}
	default:
		body["error"] = "Internal server error"
	}

	if status >= http.StatusInternalServerError {
		h.Log.Error().Err(err).Str("path", c.FullPath()).Msg("❌ Requête échouée")
	}
	c.JSON(status, body)
}

func (h *Handler) badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}

// Health indique que le processus tourne.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "drafts": h.Drafts.Len()})
}

// ReferenceData liste catégories, marques et couleurs pour les selects du formulaire.
func (h *Handler) ReferenceData(c *gin.Context) {
	ref, err := h.Reference.Reference(c.Request.Context())
	if err != nil {
		h.fail(c, nil, err)
		return
	}
	c.JSON(http.StatusOK, ref)
}
