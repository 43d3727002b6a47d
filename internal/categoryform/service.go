package categoryform

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"catalog_admin/internal/models"
	"catalog_admin/internal/productform"
)

// Writer enregistre les catégories dans le catalogue.
type Writer interface {
	CreateCategory(ctx context.Context, p *productform.Payload) (*models.APIResponse, error)
	UpdateCategory(ctx context.Context, id string, p *productform.Payload) (*models.APIResponse, error)
}

// Invalidator vide les listes de référence en cache après un changement de catégorie.
type Invalidator interface {
	Invalidate(ctx context.Context) error
}

// InvalidError porte les erreurs de champs d'un formulaire refusé.
type InvalidError struct {
	Fields map[string]string
}

func (e *InvalidError) Error() string {
	return fmt.Sprintf("category form has %d invalid fields", len(e.Fields))
}

var errNoStaging = errors.New("categoryform: no staging store configured")

const (
	msgCreateFailed = "Failed to create category"
	msgUpdateFailed = "Failed to update category"
)

// Service valide les formulaires de catégorie et les transmet au catalogue.
// L'icône et la bannière passent par le stockage temporaire pour être envoyées
// comme les images produit.
type Service struct {
	staging productform.Staging
	writer  Writer
	cache   Invalidator
	log     zerolog.Logger
	newID   func() string
}

func NewService(staging productform.Staging, writer Writer, cache Invalidator, log zerolog.Logger) *Service {
	return &Service{
		staging: staging,
		writer:  writer,
		cache:   cache,
		log:     log.With().Str("component", "categoryform").Logger(),
		newID:   uuid.NewString,
	}
}

// Save crée la catégorie si id est vide, la met à jour sinon.
func (s *Service) Save(ctx context.Context, id string, f *Form) (*models.APIResponse, error) {
	mode := productform.ModeCreate
	if id != "" {
		mode = productform.ModeUpdate
	}
	if errs := f.Validate(mode); len(errs) > 0 {
		return nil, &InvalidError{Fields: errs}
	}

	p, keys, err := s.stage(ctx, f)
	defer s.release(context.WithoutCancel(ctx), keys)
	if err != nil {
		return nil, err
	}

	var (
		resp     *models.APIResponse
		fallback = msgCreateFailed
	)
	if mode == productform.ModeUpdate {
		fallback = msgUpdateFailed
		resp, err = s.writer.UpdateCategory(ctx, id, p)
	} else {
		resp, err = s.writer.CreateCategory(ctx, p)
	}
	if se := productform.WriteFailure(resp, err, fallback); se != nil {
		s.log.Error().Err(se.Err).Str("mode", string(mode)).Int("status", se.Status).Msg("❌ Enregistrement de la catégorie échoué")
		return resp, se
	}

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx); err != nil {
			s.log.Warn().Err(err).Msg("⚠️ Cache de référence non invalidé")
		}
	}
	s.log.Info().Str("mode", string(mode)).Str("category", id).Str("name", f.Name).Msg("✅ Catégorie enregistrée")
	return resp, nil
}

func (s *Service) stage(ctx context.Context, f *Form) (*productform.Payload, []string, error) {
	p := productform.NewPayload(s.staging)
	p.Add("name", f.Name)
	p.Add("description", f.Description)
	p.Add("isActive", strconv.FormatBool(f.IsActive))
	p.Add("sizes", sizesJSON(f.Sizes))

	var keys []string
	batch := s.newID()
	for _, asset := range []struct {
		part string
		file *productform.FileInput
	}{{"icon", f.Icon}, {"bannerImage", f.Banner}} {
		if asset.file == nil {
			continue
		}
		if s.staging == nil {
			return nil, keys, errNoStaging
		}
		key := fmt.Sprintf("categories/%s/%s%s", batch, asset.part, strings.ToLower(path.Ext(asset.file.Name)))
		if _, err := s.staging.Stage(ctx, key, *asset.file); err != nil {
			return nil, keys, fmt.Errorf("stage %s: %w", asset.part, err)
		}
		keys = append(keys, key)
		p.AddFile(asset.part, key, *asset.file)
	}
	return p, keys, nil
}

func (s *Service) release(ctx context.Context, keys []string) {
	for _, k := range keys {
		if err := s.staging.Release(ctx, k); err != nil {
			s.log.Warn().Err(err).Str("key", k).Msg("⚠️ Fichier temporaire de catégorie non libéré")
		}
	}
}
