package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config regroupe tous les réglages du service. Les backends sans adresse sont
// désactivés et remplacés par des versions en mémoire.
type Config struct {
	AppEnv string `validate:"oneof=development production test"`
	Port   string `validate:"required,numeric"`

	CatalogAPIURL  string        `validate:"required,url"`
	CatalogTimeout time.Duration `validate:"gt=0"`
	JWTSecret      string        `validate:"required"`
	AllowedOrigins []string      `validate:"dive,required"`

	DraftTTL      time.Duration `validate:"gt=0"`
	SweepInterval time.Duration `validate:"gt=0"`
	ReferenceTTL  time.Duration `validate:"gt=0"`

	RedisHost     string
	RedisPassword string

	MinioEndpoint  string
	MinioAccessKey string `validate:"required_with=MinioEndpoint"`
	MinioSecretKey string `validate:"required_with=MinioEndpoint"`
	MinioBucket    string `validate:"required_with=MinioEndpoint"`
	MinioUseSSL    bool
	PreviewTTL     time.Duration `validate:"gt=0"`

	ElasticURL      string `validate:"omitempty,url"`
	ElasticUser     string
	ElasticPassword string
	ElasticIndex    string

	ScyllaHosts    []string
	ScyllaKeyspace string `validate:"required_with=ScyllaHosts"`
	ScyllaUser     string
	ScyllaPassword string
}

var validate = validator.New()

// Load lit .env s'il existe, puis l'environnement.
func Load() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Println("⚠️  No .env file found, using the process environment")
	} else {
		log.Println("✅ .env file loaded")
	}
	return FromEnv()
}

// FromEnv construit et valide la configuration depuis les variables d'environnement.
func FromEnv() (*Config, error) {
	cfg := &Config{
		AppEnv:         getEnv("APP_ENV", "development"),
		Port:           getEnv("PORT", "8080"),
		CatalogAPIURL:  strings.TrimRight(os.Getenv("CATALOG_API_URL"), "/"),
		CatalogTimeout: getDuration("CATALOG_TIMEOUT", 30*time.Second),
		JWTSecret:      os.Getenv("JWT_SECRET"),
		AllowedOrigins: getList("ALLOWED_ORIGINS", []string{"http://localhost:5173"}),

		DraftTTL:      getDuration("DRAFT_TTL", 2*time.Hour),
		SweepInterval: getDuration("DRAFT_SWEEP_INTERVAL", time.Minute),
		ReferenceTTL:  getDuration("REFERENCE_CACHE_TTL", 10*time.Minute),

		RedisHost:     os.Getenv("REDIS_HOST"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		MinioEndpoint:  os.Getenv("MINIO_ENDPOINT"),
		MinioAccessKey: os.Getenv("MINIO_ACCESS_KEY"),
		MinioSecretKey: os.Getenv("MINIO_SECRET_KEY"),
		MinioBucket:    getEnv("MINIO_BUCKET", "catalog-drafts"),
		MinioUseSSL:    os.Getenv("MINIO_USE_SSL") == "true",
		PreviewTTL:     getDuration("PREVIEW_URL_TTL", time.Hour),

		ElasticURL:      os.Getenv("ELASTIC_URL"),
		ElasticUser:     os.Getenv("ELASTIC_USER"),
		ElasticPassword: os.Getenv("ELASTIC_PASSWORD"),
		ElasticIndex:    getEnv("ELASTIC_INDEX", "products"),

		ScyllaHosts:    getList("SCYLLA_HOSTS", nil),
		ScyllaKeyspace: os.Getenv("SCYLLA_KEYSPACE"),
		ScyllaUser:     os.Getenv("SCYLLA_USER"),
		ScyllaPassword: os.Getenv("SCYLLA_PASSWORD"),
	}

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second
	}
	log.Printf("⚠️  %s=%q is not a duration, using %s", key, v, fallback)
	return fallback
}

func getList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
