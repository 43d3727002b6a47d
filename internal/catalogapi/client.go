package catalogapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"catalog_admin/internal/models"
	"catalog_admin/internal/productform"
)

// Routes de l'API catalogue.
const (
	pathCategories = "/api/v1/category"
	pathBrands     = "/api/v1/brand"
	pathColors     = "/api/v1/color"
	pathProducts   = "/api/v1/products"
)

const maxResponseBytes = 10 << 20

// Client parle à l'API REST du catalogue.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenProvider
	log     zerolog.Logger
}

func New(baseURL string, timeout time.Duration, tokens TokenProvider, log zerolog.Logger) *Client {
	if tokens == nil {
		tokens = ForwardedToken{}
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		tokens:  tokens,
		log:     log.With().Str("component", "catalogapi").Logger(),
	}
}

func (c *Client) Categories(ctx context.Context) ([]models.Category, error) {
	var data struct {
		Categories []models.Category `json:"categories"`
	}
	if err := c.getData(ctx, pathCategories, &data); err != nil {
		return nil, err
	}
	return nonNil(data.Categories), nil
}

func (c *Client) Brands(ctx context.Context) ([]models.Brand, error) {
	var data struct {
		Brands []models.Brand `json:"brands"`
	}
	if err := c.getData(ctx, pathBrands, &data); err != nil {
		return nil, err
	}
	return nonNil(data.Brands), nil
}

func (c *Client) Colors(ctx context.Context) ([]models.Color, error) {
	var data struct {
		Colors []models.Color `json:"colors"`
	}
	if err := c.getData(ctx, pathColors, &data); err != nil {
		return nil, err
	}
	return nonNil(data.Colors), nil
}

// Product charge un produit pour la modification.
func (c *Client) Product(ctx context.Context, id string) (*models.Product, error) {
	resp, err := c.do(ctx, http.MethodGet, pathProducts+"/"+url.PathEscape(id), nil, "")
	if err != nil {
		return nil, err
	}
	p, err := resp.Product()
	if err != nil {
		return nil, fmt.Errorf("decode product %s: %w", id, err)
	}
	if p == nil {
		return nil, &models.APIError{Status: http.StatusNotFound, Message: "Product not found"}
	}
	return p, nil
}

func (c *Client) CreateProduct(ctx context.Context, p *productform.Payload) (*models.APIResponse, error) {
	body, contentType := p.Reader(ctx)
	defer body.Close()
	return c.do(ctx, http.MethodPost, pathProducts, body, contentType)
}

func (c *Client) UpdateProduct(ctx context.Context, id string, p *productform.Payload) (*models.APIResponse, error) {
	body, contentType := p.Reader(ctx)
	defer body.Close()
	return c.do(ctx, http.MethodPut, pathProducts+"/"+url.PathEscape(id), body, contentType)
}

// DeleteProduct supprime un produit du catalogue.
func (c *Client) DeleteProduct(ctx context.Context, id string) (*models.APIResponse, error) {
	return c.do(ctx, http.MethodDelete, pathProducts+"/"+url.PathEscape(id), nil, "")
}

func (c *Client) CreateCategory(ctx context.Context, p *productform.Payload) (*models.APIResponse, error) {
	body, contentType := p.Reader(ctx)
	defer body.Close()
	return c.do(ctx, http.MethodPost, pathCategories, body, contentType)
}

func (c *Client) UpdateCategory(ctx context.Context, id string, p *productform.Payload) (*models.APIResponse, error) {
	body, contentType := p.Reader(ctx)
	defer body.Close()
	return c.do(ctx, http.MethodPut, pathCategories+"/"+url.PathEscape(id), body, contentType)
}

func (c *Client) getData(ctx context.Context, path string, into any) error {
	resp, err := c.do(ctx, http.MethodGet, path, nil, "")
	if err != nil {
		return err
	}
	if len(resp.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Data, into); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// do envoie une requête et décode l'enveloppe {statusCode, message, data}.
// Une réponse hors 2xx est renvoyée en *models.APIError.
func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string) (*models.APIResponse, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("catalog token: %w", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	res, err := c.http.Do(req)
	if err != nil {
		c.log.Error().Err(err).Str("method", method).Str("path", path).Msg("❌ Requête catalogue échouée")
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(res.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", path, err)
	}
	c.log.Debug().Str("method", method).Str("path", path).Int("status", res.StatusCode).
		Dur("latency", time.Since(start)).Msg("appel catalogue")

	var env models.APIResponse
	decodeErr := json.Unmarshal(raw, &env)
	if env.StatusCode == 0 {
		env.StatusCode = res.StatusCode
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, &models.APIError{Status: res.StatusCode, Message: env.Message}
	}
	if decodeErr != nil && len(raw) > 0 {
		return nil, fmt.Errorf("decode %s response: %w", path, decodeErr)
	}
	return &env, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
