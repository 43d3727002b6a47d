package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"sync"

	"catalog_admin/internal/productform"
)

// MemoryStaging garde les uploads en attente en mémoire et les prévisualise en
// data URLs. Utilisé quand aucun stockage objet n'est configuré.
type MemoryStaging struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

func NewMemoryStaging() *MemoryStaging {
	return &MemoryStaging{blobs: make(map[string][]byte)}
}

func (m *MemoryStaging) Stage(_ context.Context, key string, f productform.FileInput) (string, error) {
	rc, err := f.Open()
	if err != nil {
		return "", fmt.Errorf("open %s: %w", f.Name, err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", f.Name, err)
	}

	m.mu.Lock()
	m.blobs[key] = data
	m.mu.Unlock()

	return "data:" + f.ContentType + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

func (m *MemoryStaging) Open(_ context.Context, key string) (io.ReadCloser, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.blobs[key]
	if !ok {
		return nil, fmt.Errorf("staged file %s not found", key)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *MemoryStaging) Release(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.blobs, key)
	m.mu.Unlock()
	return nil
}

// Len est le nombre de fichiers stockés.
func (m *MemoryStaging) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.blobs)
}
