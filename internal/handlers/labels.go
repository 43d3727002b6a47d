package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"catalog_admin/internal/productform"
)

type labelRequest struct {
	// Par défaut Value reprend ce qui est saisi dans le champ.
	Value     string `json:"value"`
	Suggested bool   `json:"suggested"`
}

func (h *Handler) AddTag(c *gin.Context) {
	var req labelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "Invalid request body")
		return
	}
	h.edit(c, http.StatusOK, func(d *productform.Draft) error {
		if req.Suggested {
			return d.AddSuggestedTag(req.Value)
		}
		value := req.Value
		if value == "" {
			value = d.Form().NewTag
		}
		return d.AddTag(value)
	})
}

func (h *Handler) RemoveTag(c *gin.Context) {
	value := c.Query("value")
	h.edit(c, http.StatusOK, func(d *productform.Draft) error {
		d.RemoveTag(value)
		return nil
	})
}

func (h *Handler) AddCollection(c *gin.Context) {
	var req labelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "Invalid request body")
		return
	}
	h.edit(c, http.StatusOK, func(d *productform.Draft) error {
		value := req.Value
		if value == "" {
			value = d.Form().NewCollection
		}
		return d.AddCollection(value)
	})
}

func (h *Handler) RemoveCollection(c *gin.Context) {
	value := c.Query("value")
	h.edit(c, http.StatusOK, func(d *productform.Draft) error {
		d.RemoveCollection(value)
		return nil
	})
}

const defaultSuggestions = 10

// TagSuggestions liste les tags correspondant à ?q=. Les tags déjà utilisés
// dans le catalogue passent d'abord si la recherche est dispo, puis le vocabulaire.
func (h *Handler) TagSuggestions(c *gin.Context) {
	if err := h.Drafts.Authorize(owner(c), c.Param("id")); err != nil {
		h.fail(c, nil, err)
		return
	}
	q := c.Query("q")
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultSuggestions)))
	if err != nil || limit <= 0 {
		limit = defaultSuggestions
	}

	var found []string
	if h.Suggester != nil {
		found, err = h.Suggester.SuggestTags(c.Request.Context(), q, limit)
		if err != nil {
			h.Log.Warn().Err(err).Msg("⚠️ Recherche de tags échouée, vocabulaire utilisé")
		}
	}

	seen := make(map[string]bool)
	out := []string{}
	for _, list := range [][]string{found, productform.SuggestTags(q)} {
		for _, t := range list {
			if seen[t] || len(out) == limit {
				continue
			}
			seen[t] = true
			out = append(out, t)
		}
	}
	c.JSON(http.StatusOK, gin.H{"suggestions": out})
}
