package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"catalog_admin/internal/models"
)

const (
	KeyCategories = "categories:all"
	KeyBrands     = "brands:all"
	KeyColors     = "colors:all"
)

// ErrCategoryNotFound est renvoyé quand un id de catégorie n'est pas dans la liste.
var ErrCategoryNotFound = errors.New("category not found")

// ReferenceSource charge les listes de référence depuis le catalogue.
type ReferenceSource interface {
	Categories(ctx context.Context) ([]models.Category, error)
	Brands(ctx context.Context) ([]models.Brand, error)
	Colors(ctx context.Context) ([]models.Color, error)
}

// ReferenceCache sert les listes de référence depuis le KV et se rabat sur la
// source en cas d'absence. Sans store, chaque appel va à la source.
type ReferenceCache struct {
	src ReferenceSource
	kv  KV
	ttl time.Duration
	log zerolog.Logger
}

func NewReferenceCache(src ReferenceSource, kv KV, ttl time.Duration, log zerolog.Logger) *ReferenceCache {
	return &ReferenceCache{src: src, kv: kv, ttl: ttl, log: log}
}

func (r *ReferenceCache) Categories(ctx context.Context) ([]models.Category, error) {
	return cached(ctx, r, KeyCategories, r.src.Categories)
}

func (r *ReferenceCache) Brands(ctx context.Context) ([]models.Brand, error) {
	return cached(ctx, r, KeyBrands, r.src.Brands)
}

func (r *ReferenceCache) Colors(ctx context.Context) ([]models.Color, error) {
	return cached(ctx, r, KeyColors, r.src.Colors)
}

// Category trouve une catégorie par id.
func (r *ReferenceCache) Category(ctx context.Context, id string) (*models.Category, error) {
	cats, err := r.Categories(ctx)
	if err != nil {
		return nil, err
	}
	for i := range cats {
		if cats[i].ID == id {
			return &cats[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrCategoryNotFound, id)
}

// Reference charge les trois listes.
func (r *ReferenceCache) Reference(ctx context.Context) (*models.ReferenceData, error) {
	cats, err := r.Categories(ctx)
	if err != nil {
		return nil, err
	}
	brands, err := r.Brands(ctx)
	if err != nil {
		return nil, err
	}
	colors, err := r.Colors(ctx)
	if err != nil {
		return nil, err
	}
	return &models.ReferenceData{Categories: cats, Brands: brands, Colors: colors}, nil
}

// Invalidate supprime les listes en cache.
func (r *ReferenceCache) Invalidate(ctx context.Context) error {
	if r.kv == nil {
		return nil
	}
	return r.kv.Del(ctx, KeyCategories, KeyBrands, KeyColors)
}

func cached[T any](ctx context.Context, r *ReferenceCache, key string, load func(context.Context) ([]T, error)) ([]T, error) {
	if r.kv != nil {
		b, err := r.kv.Get(ctx, key)
		switch {
		case err == nil:
			var out []T
			if json.Unmarshal(b, &out) == nil {
				return out, nil
			}
			r.log.Warn().Str("key", key).Msg("⚠️ Entrée de cache corrompue, rechargement")
		case !errors.Is(err, ErrMiss):
			r.log.Warn().Err(err).Str("key", key).Msg("⚠️ Lecture du cache échouée")
		}
	}

	out, err := load(ctx)
	if err != nil {
		return nil, err
	}
	if r.kv != nil {
		if b, err := json.Marshal(out); err == nil {
			if err := r.kv.Set(ctx, key, b, r.ttl); err != nil {
				r.log.Warn().Err(err).Str("key", key).Msg("⚠️ Écriture du cache échouée")
			}
		}
	}
	return out, nil
}
