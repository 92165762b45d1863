package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ndsf/awesome-douban/backend/go-services/handlers"
	"github.com/ndsf/awesome-douban/backend/go-services/internal/config"
	"github.com/ndsf/awesome-douban/backend/go-services/internal/content/handler"
	"github.com/ndsf/awesome-douban/backend/go-services/internal/content/repository"
	"github.com/ndsf/awesome-douban/backend/go-services/internal/content/service"
	"github.com/ndsf/awesome-douban/backend/go-services/internal/database"
	"github.com/ndsf/awesome-douban/backend/go-services/internal/feed"
	"github.com/ndsf/awesome-douban/backend/go-services/internal/identity"
	"github.com/ndsf/awesome-douban/backend/go-services/internal/oidc"
	"github.com/ndsf/awesome-douban/backend/go-services/internal/storage"
	"github.com/ndsf/awesome-douban/backend/go-services/internal/tokens"
	"github.com/ndsf/awesome-douban/backend/go-services/pkg/logger"
	"github.com/ndsf/awesome-douban/backend/go-services/pkg/metrics"
	"github.com/ndsf/awesome-douban/backend/go-services/pkg/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

var startTime = time.Now()

func main() {
	// LOG_LEVEL: debug|info|warn|error|fatal
	logger.Init(os.Getenv("LOG_LEVEL"))

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	if cfg.Server.Environment == "development" {
		logger.UseConsole()
	}
	logger.Infof("config loaded: keycloak=%v mongo=%v redis=%v minio=%v", cfg.Keycloak.URL != "", cfg.MongoDB.URI != "", cfg.Redis.Host != "", cfg.MinIO.Endpoint != "")

	ctx := context.Background()

	var rdb *redis.Client
	if cfg.Redis.Host != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr(), Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Warnf("failed to connect to Redis (%s): %v", cfg.Redis.Addr(), err)
			rdb = nil
		} else {
			logger.Infof("connected to Redis at %s", cfg.Redis.Addr())
		}
	}

	repo, closeRepo := openRepository(ctx, cfg)
	defer closeRepo()

	var verifiers identity.Chain
	if cfg.JWT.Secret != "" {
		verifiers = append(verifiers, tokens.NewVerifier(cfg.JWT.Secret))
	}
	oidcReady := false
	if cfg.Keycloak.URL != "" && cfg.Keycloak.ClientID != "" {
		ver, err := oidc.NewVerifier(ctx, oidc.IssuerURL(cfg.Keycloak.URL, cfg.Keycloak.Realm), cfg.Keycloak.ClientID)
		if err != nil {
			logger.Warnf("failed to initialize OIDC verifier: %v", err)
		} else {
			verifiers = append(verifiers, ver)
			oidcReady = true
		}
	}
	if cfg.Auth.AllowInsecureToken {
		logger.Warn("enabling insecure token verifier (integration mode)")
		verifiers = append(verifiers, oidc.NewInsecureVerifier())
	}
	var revoked identity.RevocationChecker
	if rdb != nil {
		revoked = identity.NewRedisRevocationList(rdb, "")
	}
	gate := identity.NewGate(verifiers, revoked)

	var avatars feed.AvatarResolver
	if cfg.MinIO.Endpoint != "" {
		st, err := storage.NewMinIOStorage(ctx, cfg.MinIO)
		if err != nil {
			logger.Warnf("MinIO unavailable, group avatars disabled: %v", err)
		} else {
			avatars = st
		}
	}

	if cfg.Server.Environment != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(logger.With(map[string]interface{}{"component": "http"})))
	r.Use(middleware.CORS())

	protect := []gin.HandlerFunc{middleware.AuthMiddleware(gate)}
	if cfg.RateLimit.Enabled {
		// after auth so buckets are per user
		if cfg.RateLimit.UseRedis && rdb != nil {
			win := time.Duration(cfg.RateLimit.WindowSeconds) * time.Second
			protect = append(protect, middleware.RedisRateLimitMiddleware(rdb, cfg.RateLimit.RPS, cfg.RateLimit.Burst, win))
		} else {
			protect = append(protect, middleware.RateLimitMiddleware(cfg.RateLimit.RPS, cfg.RateLimit.Burst))
		}
	}

	h := handler.New(service.New(repo), feed.NewService(repo, avatars, cfg.MinIO.AvatarTTL), cfg.Server.ConflictRetries)
	h.Register(r, protect...)
	handlers.RegisterSwagger(r)

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "healthy")
	})

	// readiness: 200 only when critical dependencies are available
	r.GET("/ready", func(c *gin.Context) {
		deps := map[string]bool{}
		pctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		deps["storage"] = repo.Ping(pctx) == nil
		deps["auth"] = len(verifiers) > 0
		if cfg.Keycloak.URL != "" {
			deps["oidc"] = oidcReady
		}
		if cfg.RateLimit.Enabled && cfg.RateLimit.UseRedis {
			deps["redis"] = rdb != nil && rdb.Ping(pctx).Err() == nil
		}
		ready := true
		for _, ok := range deps {
			ready = ready && ok
		}
		status, code := "ready", http.StatusOK
		if !ready {
			status, code = "not_ready", http.StatusServiceUnavailable
		}
		c.JSON(code, gin.H{"status": status, "deps": deps, "uptime": time.Since(startTime).String()})
	})

	metrics.RegisterCollectors(prometheus.DefaultRegisterer)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	go func() {
		logger.Infof("starting interaction service on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Infof("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		logger.Errorf("forced shutdown: %v", err)
	}
}

// openRepository connects to MongoDB when configured and falls back to the
// in-memory store otherwise.
func openRepository(ctx context.Context, cfg *config.Config) (repository.Repository, func()) {
	if cfg.MongoDB.URI == "" {
		logger.Infof("MONGODB_URI not set, using in-memory store")
		return repository.NewMemoryRepo(), func() {}
	}
	client, err := database.ConnectMongoWithRetry(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout, cfg.MongoDB.ConnectAttempts)
	if err != nil {
		logger.Warnf("%v; using in-memory store", err)
		return repository.NewMemoryRepo(), func() {}
	}
	col := client.Database(cfg.MongoDB.Database).Collection(cfg.MongoDB.Collection)
	repo, err := repository.NewMongoRepo(ctx, col)
	if err != nil {
		logger.Fatalf("failed to prepare %s collection: %v", cfg.MongoDB.Collection, err)
	}
	logger.Infof("using MongoDB collection %s.%s", cfg.MongoDB.Database, cfg.MongoDB.Collection)
	return repo, func() { _ = client.Disconnect(context.Background()) }
}
