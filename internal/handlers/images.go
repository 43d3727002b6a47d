package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"catalog_admin/internal/productform"
)

// MaxUploadMemory est la part d'un upload multipart gardée en mémoire ; le
// reste part dans des fichiers temporaires.
const MaxUploadMemory = 32 << 20

// UploadImages rattache les fichiers du champ "images" à une variante.
// Les fichiers refusés sont signalés dans uploadErrors, les autres sont
// rattachés.
func (h *Handler) UploadImages(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		h.badRequest(c, "Invalid multipart form")
		return
	}
	defer form.RemoveAll()

	headers := form.File["images"]
	if len(headers) == 0 {
		h.badRequest(c, "No images selected")
		return
	}
	files := make([]productform.FileInput, len(headers))
	for i, fh := range headers {
		files[i] = productform.FromFileHeader(fh)
	}

	view, err := h.Drafts.Upload(c.Request.Context(), owner(c), c.Param("id"), c.Param("variantId"), files)
	if err != nil {
		h.fail(c, &view, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// imageIndex résout :variantId et :imageId.
func imageIndex(c *gin.Context, d *productform.Draft) (int, int, error) {
	i, err := variantIndex(c, d)
	if err != nil {
		return 0, 0, err
	}
	k := d.ImageIndex(i, c.Param("imageId"))
	if k < 0 {
		return 0, 0, productform.ErrOutOfRange
	}
	return i, k, nil
}

func (h *Handler) RemoveImage(c *gin.Context) {
	ctx := context.WithoutCancel(c.Request.Context())
	h.edit(c, http.StatusOK, func(d *productform.Draft) error {
		i, k, err := imageIndex(c, d)
		if err != nil {
			return err
		}
		return d.RemoveImage(ctx, i, k)
	})
}

// SetPrimaryImage fait de l'image la seule image principale de la variante.
func (h *Handler) SetPrimaryImage(c *gin.Context) {
	h.edit(c, http.StatusOK, func(d *productform.Draft) error {
		i, k, err := imageIndex(c, d)
		if err != nil {
			return err
		}
		return d.TogglePrimary(i, k)
	})
}
