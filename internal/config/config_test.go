package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("CATALOG_API_URL", "https://catalog.example.com/")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("DRAFT_TTL", "90")
	t.Setenv("ALLOWED_ORIGINS", "https://admin.example.com, http://localhost:5173")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "https://catalog.example.com", cfg.CatalogAPIURL)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 90*time.Second, cfg.DraftTTL)
	assert.Equal(t, time.Minute, cfg.SweepInterval)
	assert.Equal(t, []string{"https://admin.example.com", "http://localhost:5173"}, cfg.AllowedOrigins)
	assert.Empty(t, cfg.RedisHost)
}

func TestFromEnvRejectsMissingCatalog(t *testing.T) {
	t.Setenv("CATALOG_API_URL", "")
	t.Setenv("JWT_SECRET", "secret")

	_, err := FromEnv()
	assert.Error(t, err)
}

func TestFromEnvRequiresMinioCredentials(t *testing.T) {
	t.Setenv("CATALOG_API_URL", "http://catalog:4000")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("MINIO_ENDPOINT", "minio:9000")
	t.Setenv("MINIO_ACCESS_KEY", "")

	_, err := FromEnv()
	assert.Error(t, err)
}
