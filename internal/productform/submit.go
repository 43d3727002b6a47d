package productform

import (
	"context"
	"errors"
	"fmt"

	"catalog_admin/internal/models"
)

// ProductWriter enregistre un produit soumis.
type ProductWriter interface {
	CreateProduct(ctx context.Context, p *Payload) (*models.APIResponse, error)
	UpdateProduct(ctx context.Context, id string, p *Payload) (*models.APIResponse, error)
}

const (
	msgCreateFailed = "Failed to create product. Please try again."
	msgUpdateFailed = "Failed to update product"
)

// Submit valide tout le brouillon et passe le payload à w : une création pour
// un nouveau produit, une mise à jour sinon. En cas d'échec le brouillon reste
// tel quel pour être corrigé et renvoyé.
func (d *Draft) Submit(ctx context.Context, w ProductWriter) (*models.APIResponse, error) {
	if !d.ValidateForm() {
		return nil, notice(ErrInvalidDraft, "Please fix all validation errors before submitting.")
	}
	p := d.Assemble()

	var (
		resp     *models.APIResponse
		err      error
		fallback string
	)
	if d.form.Mode == ModeUpdate {
		fallback = msgUpdateFailed
		resp, err = w.UpdateProduct(ctx, d.form.ProductID, p)
	} else {
		fallback = msgCreateFailed
		resp, err = w.CreateProduct(ctx, p)
	}

	if se := WriteFailure(resp, err, fallback); se != nil {
		d.log.Error().Err(se.Err).Str("mode", string(d.form.Mode)).Int("status", se.Status).Msg("❌ Soumission du produit échouée")
		return resp, se
	}

	d.log.Info().Str("mode", string(d.form.Mode)).Str("product", d.form.ProductID).Msg("✅ Produit soumis")
	return resp, nil
}

// WriteFailure transforme une écriture catalogue échouée en *SubmitError, nil
// si elle a réussi. fallback s'affiche quand le catalogue n'a pas de message.
func WriteFailure(resp *models.APIResponse, err error, fallback string) *SubmitError {
	if err != nil {
		se := &SubmitError{Message: fallback, Err: err}
		var apiErr *models.APIError
		if errors.As(err, &apiErr) {
			se.Status = apiErr.Status
			if apiErr.Message != "" {
				se.Message = apiErr.Message
			}
		}
		return se
	}
	if resp.OK() {
		return nil
	}
	se := &SubmitError{Message: fallback}
	if resp != nil {
		se.Status = resp.StatusCode
		if resp.Message != "" {
			se.Message = resp.Message
		}
	}
	se.Err = fmt.Errorf("catalog answered status %d", se.Status)
	return se
}
