package routes

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"catalog_admin/internal/handlers"
	"catalog_admin/internal/middleware"
)

// Guards sont les middlewares placés devant les routes de l'éditeur.
type Guards struct {
	// Auth doit renseigner user_id et role pour RequireAdmin.
	Auth        gin.HandlerFunc
	UploadLimit gin.HandlerFunc
	SubmitLimit gin.HandlerFunc
}

// CORS autorise l'interface admin à appeler l'API. Une liste vide autorise toute origine.
func CORS(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Session-ID"},
		ExposeHeaders:    []string{"X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(origins) == 0 {
		cfg.AllowOriginFunc = func(string) bool { return true }
	} else {
		cfg.AllowOrigins = origins
	}
	return cors.New(cfg)
}

func pass(c *gin.Context) { c.Next() }

func RegisterRoutes(r *gin.Engine, h *handlers.Handler, g Guards) {
	for _, mw := range []*gin.HandlerFunc{&g.Auth, &g.UploadLimit, &g.SubmitLimit} {
		if *mw == nil {
			*mw = pass
		}
	}
	r.MaxMultipartMemory = handlers.MaxUploadMemory
	r.GET("/health", h.Health)

	admin := r.Group("/api/v1/admin", g.Auth, middleware.RequireAdmin)
	admin.GET("/reference", h.ReferenceData)
	admin.POST("/categories", g.UploadLimit, h.CreateCategory)
	admin.PUT("/categories/:categoryId", g.UploadLimit, h.UpdateCategory)
	admin.DELETE("/products/:productId", g.SubmitLimit, h.DeleteProduct)

	d := admin.Group("/drafts")
	d.POST("", h.OpenDraft)
	d.GET("/:id", h.GetDraft)
	d.DELETE("/:id", h.DiscardDraft)
	d.GET("/:id/events", h.DraftEvents)

	// Champs
	d.PATCH("/:id/fields", h.UpdateFields)
	d.PUT("/:id/category", h.SetCategory)
	d.POST("/:id/blur", h.Blur)

	// Variantes
	d.POST("/:id/variants", h.AddVariant)
	d.PATCH("/:id/variants/:variantId", h.UpdateVariant)
	d.DELETE("/:id/variants/:variantId", h.RemoveVariant)
	d.POST("/:id/variants/:variantId/sizes", h.AddSize)
	d.DELETE("/:id/variants/:variantId/sizes/:sizeId", h.RemoveSize)
	d.PUT("/:id/variants/:variantId/sizes/:sizeId/stock", h.SetStock)

	// Images
	d.POST("/:id/variants/:variantId/images", g.UploadLimit, h.UploadImages)
	d.DELETE("/:id/variants/:variantId/images/:imageId", h.RemoveImage)
	d.PUT("/:id/variants/:variantId/images/:imageId/primary", h.SetPrimaryImage)

	// Tags & collections
	d.POST("/:id/tags", h.AddTag)
	d.DELETE("/:id/tags", h.RemoveTag)
	d.GET("/:id/tags/suggestions", h.TagSuggestions)
	d.POST("/:id/collections", h.AddCollection)
	d.DELETE("/:id/collections", h.RemoveCollection)

	// Soumission
	d.POST("/:id/validate", h.ValidateDraft)
	d.POST("/:id/submit", g.SubmitLimit, h.Submit)
}
