package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"catalog_admin/internal/cache"
	"catalog_admin/internal/models"
	"catalog_admin/internal/productform"
)

// =============================================
// CYCLE DE VIE DES BROUILLONS
// =============================================

type openRequest struct {
	ProductID string `json:"productId"`
}

// OpenDraft démarre une création, ou une modification si productId est fourni.
func (h *Handler) OpenDraft(c *gin.Context) {
	var req openRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.badRequest(c, "Invalid request body")
			return
		}
	}
	view, err := h.Drafts.Open(c.Request.Context(), owner(c), req.ProductID)
	if err != nil {
		h.fail(c, nil, err)
		return
	}
	c.JSON(http.StatusCreated, view)
}

func (h *Handler) GetDraft(c *gin.Context) {
	view, err := h.Drafts.View(owner(c), c.Param("id"))
	if err != nil {
		h.fail(c, nil, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// DiscardDraft ferme le formulaire sans enregistrer.
func (h *Handler) DiscardDraft(c *gin.Context) {
	if err := h.Drafts.Discard(c.Request.Context(), owner(c), c.Param("id")); err != nil {
		h.fail(c, nil, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// edit exécute fn sur le brouillon et répond avec la vue obtenue.
func (h *Handler) edit(c *gin.Context, status int, fn func(*productform.Draft) error) {
	view, err := h.Drafts.Edit(c.Request.Context(), owner(c), c.Param("id"), fn)
	if err != nil {
		h.fail(c, &view, err)
		return
	}
	c.JSON(status, view)
}

// =============================================
// CHAMPS DE PREMIER NIVEAU
// =============================================

type fieldsRequest struct {
	Values map[string]string `json:"values"`
	Flags  map[string]bool   `json:"flags"`
}

// UpdateFields modifie des champs texte et des flags. Chaque champ est validé
// au changement ; une requête avec un champ inconnu est refusée en entier.
func (h *Handler) UpdateFields(c *gin.Context) {
	var req fieldsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "Invalid request body")
		return
	}
	h.edit(c, http.StatusOK, func(d *productform.Draft) error {
		return d.SetFields(req.Values, req.Flags)
	})
}

type categoryRequest struct {
	Category string `json:"category"`
}

// SetCategory choisit la catégorie et reconstruit les tailles depuis ses labels.
func (h *Handler) SetCategory(c *gin.Context) {
	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "Invalid request body")
		return
	}

	var labels []string
	if req.Category != "" {
		cat, err := h.category(c.Request.Context(), req.Category)
		if err != nil {
			h.fail(c, nil, err)
			return
		}
		labels = cat.SizeLabels()
	}
	h.edit(c, http.StatusOK, func(d *productform.Draft) error {
		d.SetCategory(req.Category, labels)
		return nil
	})
}

// category cherche l'id dans la liste en cache et la recharge une fois si l'id
// est absent, la catégorie ayant pu être créée après le remplissage du
// cache.
func (h *Handler) category(ctx context.Context, id string) (*models.Category, error) {
	cat, err := h.Reference.Category(ctx, id)
	if !errors.Is(err, cache.ErrCategoryNotFound) {
		return cat, err
	}
	if err := h.Reference.Invalidate(ctx); err != nil {
		h.Log.Warn().Err(err).Msg("⚠️ Cache de référence non invalidé")
		return nil, fmt.Errorf("%w: %s", cache.ErrCategoryNotFound, id)
	}
	return h.Reference.Category(ctx, id)
}

type blurRequest struct {
	Field string `json:"field" binding:"required"`
	Value string `json:"value"`
}

// Blur valide le champ que l'utilisateur vient de quitter.
func (h *Handler) Blur(c *gin.Context) {
	var req blurRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "Field is required")
		return
	}
	var msg string
	view, err := h.Drafts.Edit(c.Request.Context(), owner(c), c.Param("id"), func(d *productform.Draft) error {
		msg = d.Blur(req.Field, req.Value)
		return nil
	})
	if err != nil {
		h.fail(c, &view, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"field": req.Field, "error": msg, "draft": view})
}

// =============================================
// VALIDATION & SOUMISSION
// =============================================

func (h *Handler) ValidateDraft(c *gin.Context) {
	var valid bool
	view, err := h.Drafts.Edit(c.Request.Context(), owner(c), c.Param("id"), func(d *productform.Draft) error {
		valid = d.ValidateForm()
		return nil
	})
	if err != nil {
		h.fail(c, &view, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"valid": valid, "draft": view})
}

// Submit envoie le brouillon au catalogue. En cas de succès le brouillon est
// fermé et la réponse du catalogue renvoyée.
func (h *Handler) Submit(c *gin.Context) {
	resp, view, err := h.Drafts.Submit(c.Request.Context(), owner(c), c.Param("id"))

	action := models.ActionProductCreate
	if view.Form.Mode == productform.ModeUpdate {
		action = models.ActionProductUpdate
	}
	if err != nil {
		var se *productform.SubmitError
		if errors.As(err, &se) {
			h.Audit.LogFailedAction(c, action, models.ResourceProduct, view.Form.ProductID, err.Error())
		}
		h.fail(c, &view, err)
		return
	}

	product, _ := resp.Product()
	productID := view.Form.ProductID
	if product != nil && product.ID != "" {
		productID = product.ID
	}
	h.Audit.LogAction(c, action, models.ResourceProduct, productID, gin.H{"name": view.Form.Name, "variants": len(view.Form.Variants)})

	status := http.StatusOK
	if action == models.ActionProductCreate {
		status = http.StatusCreated
	}
	c.JSON(status, gin.H{"message": resp.Message, "product": product})
}
