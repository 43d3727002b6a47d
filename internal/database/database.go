package database

import (
	"context"
	"fmt"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/gocql/gocql"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"catalog_admin/internal/config"
)

// Connexions partagées par le service. Une valeur nil signifie que le backend
// n'est pas configuré.
var (
	Scylla  *gocql.Session
	Redis   *redis.Client
	Elastic *elasticsearch.Client
	MinIO   *minio.Client
)

// ConnectDatabases ouvre chaque backend configuré. Un backend configuré mais
// injoignable est une erreur.
func ConnectDatabases(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if cfg.RedisHost != "" {
		if err := connectRedis(ctx, cfg); err != nil {
			return err
		}
		log.Info().Str("addr", cfg.RedisHost).Msg("✅ Connecté à Redis")
	} else {
		log.Warn().Msg("⚠️ REDIS_HOST absent : cache de référence désactivé, événements en mémoire")
	}

	if cfg.MinioEndpoint != "" {
		if err := connectMinIO(ctx, cfg, log); err != nil {
			return err
		}
		log.Info().Str("endpoint", cfg.MinioEndpoint).Msg("✅ Connecté à MinIO")
	} else {
		log.Warn().Msg("⚠️ MINIO_ENDPOINT absent : images en attente gardées en mémoire")
	}

	if cfg.ElasticURL != "" {
		if err := connectElastic(cfg); err != nil {
			return err
		}
		log.Info().Str("url", cfg.ElasticURL).Msg("✅ Connecté à Elasticsearch")
	}

	if len(cfg.ScyllaHosts) > 0 {
		if err := connectScylla(cfg); err != nil {
			return err
		}
		log.Info().Str("keyspace", cfg.ScyllaKeyspace).Msg("✅ Connecté à ScyllaDB")
	}
	return nil
}

// Close libère toutes les connexions ouvertes.
func Close() {
	if Redis != nil {
		_ = Redis.Close()
	}
	if Scylla != nil {
		Scylla.Close()
	}
}

// =============================================
// REDIS
// =============================================

func connectRedis(ctx context.Context, cfg *config.Config) error {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.RedisHost,
		Password:     cfg.RedisPassword,
		DB:           0,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	Redis = client
	return nil
}

// =============================================
// MINIO
// =============================================

func connectMinIO(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
		Secure: cfg.MinioUseSSL,
	})
	if err != nil {
		return fmt.Errorf("minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.MinioBucket)
	if err != nil {
		return fmt.Errorf("minio bucket check: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.MinioBucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("minio make bucket: %w", err)
		}
		log.Info().Str("bucket", cfg.MinioBucket).Msg("🪣 Bucket créé")
	}
	MinIO = client
	return nil
}

// =============================================
// ELASTICSEARCH
// =============================================

func connectElastic(cfg *config.Config) error {
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{cfg.ElasticURL},
		Username:  cfg.ElasticUser,
		Password:  cfg.ElasticPassword,
	})
	if err != nil {
		return fmt.Errorf("elasticsearch client: %w", err)
	}
	res, err := client.Info()
	if err != nil {
		return fmt.Errorf("elasticsearch info: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("elasticsearch info: %s", res.Status())
	}
	Elastic = client
	return nil
}

// =============================================
// SCYLLA DB
// =============================================

func connectScylla(cfg *config.Config) error {
	cluster := gocql.NewCluster(cfg.ScyllaHosts...)
	cluster.Keyspace = cfg.ScyllaKeyspace
	cluster.Consistency = gocql.Quorum
	cluster.Timeout = 5 * time.Second
	cluster.NumConns = 4
	cluster.ReconnectInterval = time.Second
	if cfg.ScyllaUser != "" {
		cluster.Authenticator = gocql.PasswordAuthenticator{
			Username: cfg.ScyllaUser,
			Password: cfg.ScyllaPassword,
		}
	}
	cluster.PoolConfig.HostSelectionPolicy = gocql.TokenAwareHostPolicy(gocql.RoundRobinHostPolicy())

	session, err := cluster.CreateSession()
	if err != nil {
		return fmt.Errorf("scylla session: %w", err)
	}
	Scylla = session
	return nil
}
