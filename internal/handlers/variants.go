package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"catalog_admin/internal/productform"
)

// variantIndex résout le paramètre :variantId en index actuel.
func variantIndex(c *gin.Context, d *productform.Draft) (int, error) {
	i := d.VariantIndex(c.Param("variantId"))
	if i < 0 {
		return 0, productform.ErrOutOfRange
	}
	return i, nil
}

func (h *Handler) AddVariant(c *gin.Context) {
	h.edit(c, http.StatusCreated, func(d *productform.Draft) error {
		d.AddVariant()
		return nil
	})
}

type variantRequest struct {
	Price *string `json:"price"`
	Color *string `json:"color"`
}

func (h *Handler) UpdateVariant(c *gin.Context) {
	var req variantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "Invalid request body")
		return
	}
	h.edit(c, http.StatusOK, func(d *productform.Draft) error {
		i, err := variantIndex(c, d)
		if err != nil {
			return err
		}
		if req.Price != nil {
			if err := d.SetVariantField(i, "price", *req.Price); err != nil {
				return err
			}
		}
		if req.Color != nil {
			return d.SetVariantField(i, "color", *req.Color)
		}
		return nil
	})
}

// RemoveVariant est refusé avec un avertissement pour la dernière variante.
func (h *Handler) RemoveVariant(c *gin.Context) {
	ctx := context.WithoutCancel(c.Request.Context())
	h.edit(c, http.StatusOK, func(d *productform.Draft) error {
		i, err := variantIndex(c, d)
		if err != nil {
			return err
		}
		return d.RemoveVariant(ctx, i)
	})
}

// =============================================
// TAILLES
// =============================================

type sizeRequest struct {
	Size string `json:"size"`
}

func (h *Handler) AddSize(c *gin.Context) {
	var req sizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "Invalid request body")
		return
	}
	h.edit(c, http.StatusOK, func(d *productform.Draft) error {
		i, err := variantIndex(c, d)
		if err != nil {
			return err
		}
		return d.AddSizeToVariant(i, req.Size)
	})
}

// sizeIndex résout :variantId et :sizeId.
func sizeIndex(c *gin.Context, d *productform.Draft) (int, int, error) {
	i, err := variantIndex(c, d)
	if err != nil {
		return 0, 0, err
	}
	j := d.SizeIndex(i, c.Param("sizeId"))
	if j < 0 {
		return 0, 0, productform.ErrOutOfRange
	}
	return i, j, nil
}

func (h *Handler) RemoveSize(c *gin.Context) {
	h.edit(c, http.StatusOK, func(d *productform.Draft) error {
		i, j, err := sizeIndex(c, d)
		if err != nil {
			return err
		}
		return d.RemoveSizeFromVariant(i, j)
	})
}

type stockRequest struct {
	Stock string `json:"stock"`
}

func (h *Handler) SetStock(c *gin.Context) {
	var req stockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "Invalid request body")
		return
	}
	h.edit(c, http.StatusOK, func(d *productform.Draft) error {
		i, j, err := sizeIndex(c, d)
		if err != nil {
			return err
		}
		return d.SetSizeStock(i, j, req.Stock)
	})
}
