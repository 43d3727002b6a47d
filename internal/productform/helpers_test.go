package productform

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

type memStaging struct {
	mu       sync.Mutex
	blobs    map[string][]byte
	fail     map[string]bool
	released []string
}

func newMemStaging() *memStaging {
	return &memStaging{blobs: map[string][]byte{}, fail: map[string]bool{}}
}

func (m *memStaging) Stage(_ context.Context, key string, f FileInput) (string, error) {
	if m.fail[f.Name] {
		return "", errors.New("disk full")
	}
	rc, err := f.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blobs[key] = data
	return "mem://" + key, nil
}

func (m *memStaging) Open(_ context.Context, key string) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.blobs[key]
	if !ok {
		return nil, errors.New("no such key")
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *memStaging) Release(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.blobs, key)
	m.released = append(m.released, key)
	return nil
}

func (m *memStaging) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.blobs)
}

func imageFile(name string, size int64) FileInput {
	return FileInput{
		Name:        name,
		Size:        size,
		ContentType: "image/jpeg",
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(strings.NewReader("jpeg:" + name)), nil
		},
	}
}

// validDraft construit le brouillon d'un produit complet en création.
func validDraft(t *testing.T) (*Draft, *memStaging) {
	t.Helper()
	st := newMemStaging()
	d := New(Options{Staging: st})
	d.SetCategory("cat-1", []string{"M"})
	require.NoError(t, d.SetField(FieldName, "Shirt"))
	require.NoError(t, d.SetField(FieldDescription, "A soft cotton shirt"))
	require.NoError(t, d.SetField(FieldBasePrice, "29.99"))
	require.NoError(t, d.SetField(FieldBrand, "brand-1"))
	require.NoError(t, d.SetVariantField(0, "price", "29.99"))
	require.NoError(t, d.SetVariantField(0, "color", "color-1"))
	require.NoError(t, d.SetSizeStock(0, 0, "5"))
	require.NoError(t, d.UploadImages(context.Background(), 0, []FileInput{imageFile("front.jpg", 1024)}))
	return d, st
}

func primaryCount(v Variant) int {
	n := 0
	for _, im := range v.Images {
		if im.IsPrimary {
			n++
		}
	}
	return n
}
