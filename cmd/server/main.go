package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"catalog_admin/internal/cache"
	"catalog_admin/internal/catalogapi"
	"catalog_admin/internal/categoryform"
	"catalog_admin/internal/config"
	"catalog_admin/internal/database"
	"catalog_admin/internal/drafts"
	"catalog_admin/internal/handlers"
	"catalog_admin/internal/logger"
	"catalog_admin/internal/middleware"
	"catalog_admin/internal/productform"
	"catalog_admin/internal/routes"
	"catalog_admin/internal/services"
	"catalog_admin/internal/utils"
)

type eventBus interface {
	drafts.Publisher
	handlers.Subscriber
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	log := logger.New(cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := database.ConnectDatabases(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("❌ Connexion aux backends échouée")
	}
	defer database.Close()

	// Stockage temporaire des images en attente
	var staging productform.Staging = services.NewMemoryStaging()
	if database.MinIO != nil {
		staging = services.NewMinioStaging(database.MinIO, cfg.MinioBucket, cfg.PreviewTTL)
	}

	// Événements des brouillons et cache de référence
	var (
		bus     eventBus = services.NewMemoryBus()
		kv      cache.KV
		counter middleware.Counter
	)
	if database.Redis != nil {
		bus = services.NewRedisBus(database.Redis, log)
		kv = cache.NewRedisKV(database.Redis)
		counter = middleware.NewRedisCounter(database.Redis)
	}

	catalog := catalogapi.New(cfg.CatalogAPIURL, cfg.CatalogTimeout, catalogapi.ForwardedToken{}, log)
	reference := cache.NewReferenceCache(catalog, kv, cfg.ReferenceTTL, log)

	var suggester handlers.TagSuggester
	if database.Elastic != nil {
		suggester = services.NewTagSuggester(database.Elastic, cfg.ElasticIndex, log)
	}

	var auditStore utils.AuditStore
	if database.Scylla != nil {
		scylla := utils.NewScyllaAudit(database.Scylla)
		if err := scylla.EnsureSchema(ctx); err != nil {
			log.Fatal().Err(err).Msg("❌ Schéma audit_logs")
		}
		auditStore = scylla
	}
	auditor := utils.NewAuditor(auditStore, log)

	manager := drafts.NewManager(drafts.Options{
		Staging: staging,
		Catalog: catalog,
		Writer:  catalog,
		Events:  bus,
		TTL:     cfg.DraftTTL,
		Log:     log,
	})
	sweeperDone := make(chan struct{})
	go func() {
		defer close(sweeperDone)
		manager.Run(ctx, cfg.SweepInterval)
	}()

	h := handlers.New(handlers.Deps{
		Drafts:         manager,
		Categories:     categoryform.NewService(staging, catalog, reference, log),
		Products:       catalog,
		Reference:      reference,
		Suggester:      suggester,
		Events:         bus,
		Audit:          auditor,
		AllowedOrigins: cfg.AllowedOrigins,
		Log:            log,
	})

	if cfg.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), logger.Gin(log), routes.CORS(cfg.AllowedOrigins))
	routes.RegisterRoutes(r, h, routes.Guards{
		Auth:        middleware.AuthRequired([]byte(cfg.JWTSecret), log),
		UploadLimit: middleware.RateLimit(counter, "upload", 60, time.Minute, log),
		SubmitLimit: middleware.RateLimit(counter, "submit", 10, time.Minute, log),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Info().Str("port", cfg.Port).Msg("🚀 Serveur catalog admin lancé")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("❌ Serveur HTTP en échec")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Arrêt en cours")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("❌ Arrêt du serveur")
	}
	<-sweeperDone
	auditor.Wait()
	log.Info().Msg("✅ Serveur arrêté")
}
