package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"catalog_admin/internal/categoryform"
	"catalog_admin/internal/models"
	"catalog_admin/internal/productform"
)

// =============================================
// CATEGORIES
// =============================================

// CreateCategory crée une catégorie avec son icône et sa bannière.
func (h *Handler) CreateCategory(c *gin.Context) {
	h.saveCategory(c, "")
}

// UpdateCategory modifie une catégorie. L'icône et la bannière ne sont
// remplacées que si un nouveau fichier est envoyé.
func (h *Handler) UpdateCategory(c *gin.Context) {
	h.saveCategory(c, c.Param("categoryId"))
}

func (h *Handler) saveCategory(c *gin.Context, id string) {
	form, problem := categoryForm(c)
	if problem != "" {
		h.badRequest(c, problem)
		return
	}

	action, status := models.ActionCategoryCreate, http.StatusCreated
	if id != "" {
		action, status = models.ActionCategoryUpdate, http.StatusOK
	}

	resp, err := h.Categories.Save(c.Request.Context(), id, form)
	if err != nil {
		var (
			invalid *categoryform.InvalidError
			se      *productform.SubmitError
		)
		if errors.As(err, &invalid) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Please fix the errors in the form", "errors": invalid.Fields})
			return
		}
		if errors.As(err, &se) {
			h.Audit.LogFailedAction(c, action, models.ResourceCategory, id, se.Message)
		}
		h.fail(c, nil, err)
		return
	}

	h.Audit.LogAction(c, action, models.ResourceCategory, id, gin.H{"name": form.Name, "sizes": len(form.Sizes)})
	c.JSON(status, gin.H{"message": resp.Message, "data": resp.Data})
}

// categoryForm lit le corps multipart envoyé par l'éditeur de catégorie.
func categoryForm(c *gin.Context) (*categoryform.Form, string) {
	mf, err := c.MultipartForm()
	if err != nil {
		return nil, "Invalid form data"
	}
	f := &categoryform.Form{
		Name:        c.PostForm("name"),
		Description: c.PostForm("description"),
		IsActive:    true,
	}
	if v := c.PostForm("isActive"); v != "" {
		on, err := strconv.ParseBool(v)
		if err != nil {
			return nil, "isActive must be true or false"
		}
		f.IsActive = on
	}
	if raw := c.PostForm("sizes"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &f.Sizes); err != nil {
			return nil, "Sizes must be a JSON list"
		}
	}
	if fhs := mf.File["icon"]; len(fhs) > 0 {
		in := productform.FromFileHeader(fhs[0])
		f.Icon = &in
	}
	if fhs := mf.File["bannerImage"]; len(fhs) > 0 {
		in := productform.FromFileHeader(fhs[0])
		f.Banner = &in
	}
	return f, ""
}

// =============================================
// PRODUITS
// =============================================

const msgDeleteFailed = "Failed to delete product"

// DeleteProduct supprime un produit du catalogue.
func (h *Handler) DeleteProduct(c *gin.Context) {
	id := c.Param("productId")
	resp, err := h.Products.DeleteProduct(c.Request.Context(), id)
	if err != nil {
		se := productform.WriteFailure(nil, err, msgDeleteFailed)
		h.Audit.LogFailedAction(c, models.ActionProductDelete, models.ResourceProduct, id, se.Message)
		h.fail(c, nil, se)
		return
	}

	msg := "Product deleted successfully"
	if resp != nil && resp.Message != "" {
		msg = resp.Message
	}
	h.Audit.LogAction(c, models.ActionProductDelete, models.ResourceProduct, id, nil)
	c.JSON(http.StatusOK, gin.H{"message": msg})
}
