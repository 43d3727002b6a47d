package catalogapi

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catalog_admin/internal/models"
	"catalog_admin/internal/productform"
)

type blobStaging map[string][]byte

func (b blobStaging) Stage(_ context.Context, key string, f productform.FileInput) (string, error) {
	rc, err := f.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return "", err
	}
	b[key] = data
	return "blob://" + key, nil
}

func (b blobStaging) Open(_ context.Context, key string) (io.ReadCloser, error) {
	data, ok := b[key]
	if !ok {
		return nil, errors.New("missing")
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (b blobStaging) Release(_ context.Context, key string) error {
	delete(b, key)
	return nil
}

func newClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(srv.URL, 5*time.Second, ForwardedToken{Fallback: StaticToken("service-token")}, zerolog.Nop())
}

func TestCategoriesForwardsToken(t *testing.T) {
	var gotAuth string
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		assert.Equal(t, "/api/v1/category", r.URL.Path)
		_, _ = io.WriteString(w, `{"statusCode":200,"message":"ok","data":{"categories":[
			{"_id":"c1","name":"Shirts","isActive":true,"sizes":[{"label":"S","symbol":"s"},{"label":"M"}]}]}}`)
	})

	cats, err := c.Categories(WithToken(context.Background(), "admin-token"))

	require.NoError(t, err)
	require.Len(t, cats, 1)
	assert.Equal(t, "Bearer admin-token", gotAuth)
	assert.Equal(t, []string{"S", "M"}, cats[0].SizeLabels())
}

func TestFallbackToken(t *testing.T) {
	var gotAuth string
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, _ = io.WriteString(w, `{"statusCode":200,"data":{"brands":null}}`)
	})

	brands, err := c.Brands(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []models.Brand{}, brands)
	assert.Equal(t, "Bearer service-token", gotAuth)
}

func TestErrorCarriesServerMessage(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"statusCode":400,"message":"Invalid color"}`)
	})

	_, err := c.Colors(context.Background())

	var apiErr *models.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "Invalid color", apiErr.Message)
}

func TestErrorWithoutBody(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := c.Product(context.Background(), "p1")

	var apiErr *models.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.Status)
	assert.Empty(t, apiErr.Message)
}

func TestProduct(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/products/p%201", r.URL.EscapedPath())
		_, _ = io.WriteString(w, `{"statusCode":200,"data":{"product":{"_id":"p 1","name":"Tee",
			"category":{"_id":"c1","name":"Shirts"},"brand":"b1","base_price":19.9,
			"tags":[{"name":"sale"},"new"],"variants":[{"price":"21","color":{"_id":"red"},
			"sizes":[{"_id":"x","size":"M","stock":0}],"images":[{"url":"https://cdn/x.jpg","isPrimary":true}]}]}}}`)
	})

	p, err := c.Product(context.Background(), "p 1")

	require.NoError(t, err)
	assert.Equal(t, "c1", p.Category.ID)
	assert.Equal(t, "b1", p.Brand.ID)
	assert.Equal(t, "19.9", p.BasePrice.String())
	assert.Equal(t, models.Labels{"sale", "new"}, p.Tags)
	require.Len(t, p.Variants, 1)
	require.NotNil(t, p.Variants[0].Sizes[0].Stock)
	assert.Equal(t, 0, *p.Variants[0].Sizes[0].Stock)
}

func TestCreateProductSendsMultipart(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		if !assert.NoError(t, r.ParseMultipartForm(1<<20)) {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		assert.Equal(t, "Shirt", r.FormValue("name"))
		assert.Equal(t, "M", r.FormValue("variants[0][sizes][0][size]"))
		files := r.MultipartForm.File["variants[0][image]"]
		if assert.Len(t, files, 1) {
			assert.Equal(t, "front.jpg", files[0].Filename)
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"message":"Product created","data":{"product":{"_id":"new"}}}`)
	})

	d := productform.New(productform.Options{Staging: blobStaging{}})
	d.SetCategory("c1", []string{"M"})
	require.NoError(t, d.SetField(productform.FieldName, "Shirt"))
	require.NoError(t, d.UploadImages(context.Background(), 0, []productform.FileInput{{
		Name: "front.jpg", Size: 4, ContentType: "image/jpeg",
		Open: func() (io.ReadCloser, error) { return io.NopCloser(bytes.NewReader([]byte("jpeg"))), nil },
	}}))

	resp, err := c.CreateProduct(context.Background(), d.Assemble())

	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.True(t, resp.OK())
	p, err := resp.Product()
	require.NoError(t, err)
	assert.Equal(t, "new", p.ID)
}

func TestUpdateCategorySendsMultipart(t *testing.T) {
	staging := blobStaging{"categories/b1/icon.png": []byte("png")}
	var (
		gotPath string
		gotName string
		gotIcon string
	)
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.Method + " " + r.URL.Path
		if !assert.NoError(t, r.ParseMultipartForm(1<<20)) {
			return
		}
		gotName = r.FormValue("name")
		f, _, err := r.FormFile("icon")
		if assert.NoError(t, err) {
			b, _ := io.ReadAll(f)
			gotIcon = string(b)
		}
		_, _ = io.WriteString(w, `{"statusCode":200,"message":"Category updated"}`)
	})

	p := productform.NewPayload(staging)
	p.Add("name", "Jackets")
	p.AddFile("icon", "categories/b1/icon.png", productform.FileInput{Name: "icon.png", Size: 3, ContentType: "image/png"})
	resp, err := c.UpdateCategory(context.Background(), "c1", p)

	require.NoError(t, err)
	assert.Equal(t, "Category updated", resp.Message)
	assert.Equal(t, "PUT /api/v1/category/c1", gotPath)
	assert.Equal(t, "Jackets", gotName)
	assert.Equal(t, "png", gotIcon)
}

func TestDeleteProduct(t *testing.T) {
	var gotPath string
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.Method + " " + r.URL.Path
		if r.URL.Path == "/api/v1/products/gone" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = io.WriteString(w, `{"statusCode":200,"message":"Product deleted"}`)
	})

	resp, err := c.DeleteProduct(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, "DELETE /api/v1/products/p1", gotPath)
	assert.Equal(t, "Product deleted", resp.Message)

	_, err = c.DeleteProduct(context.Background(), "gone")
	var apiErr *models.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
}
