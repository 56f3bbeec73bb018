package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/amirhosseinghanipour/storefront/internal/application/ports"
	"github.com/amirhosseinghanipour/storefront/internal/application/refresh"
	"github.com/amirhosseinghanipour/storefront/internal/application/tenancy"
	"github.com/amirhosseinghanipour/storefront/internal/config"
	"github.com/amirhosseinghanipour/storefront/internal/infrastructure/cache"
	httprouter "github.com/amirhosseinghanipour/storefront/internal/infrastructure/http"
	"github.com/amirhosseinghanipour/storefront/internal/infrastructure/http/handlers"
	"github.com/amirhosseinghanipour/storefront/internal/infrastructure/http/middleware"
	"github.com/amirhosseinghanipour/storefront/internal/infrastructure/invalidation"
	"github.com/amirhosseinghanipour/storefront/internal/infrastructure/persistence/memory"
	"github.com/amirhosseinghanipour/storefront/internal/infrastructure/persistence/postgres"
)

func main() {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	log = newLogger(cfg.Log)

	ctx := context.Background()

	var vendorRepo ports.VendorRepository
	var dbPing handlers.Pinger
	if cfg.Database.URL != "" {
		pool, err := pgxpool.New(ctx, cfg.Database.URL)
		if err != nil {
			log.Fatal().Err(err).Msg("connect to database")
		}
		defer pool.Close()
		if err := pool.Ping(ctx); err != nil {
			log.Fatal().Err(err).Msg("ping database")
		}
		vendorRepo = postgres.NewVendorRepository(pool, cfg.Database.QueryTimeout)
		dbPing = pool
	} else {
		mem := memory.NewVendorRepository()
		n, err := mem.LoadSeedFile(cfg.VendorSeed)
		if err != nil {
			log.Fatal().Err(err).Str("file", cfg.VendorSeed).Msg("load vendor seed file")
		}
		log.Warn().Int("vendors", n).Msg("no DATABASE_URL; serving vendors from seed file")
		vendorRepo = mem
	}

	var redisClient *redis.Client
	if cfg.Redis.URL != "" {
		opt, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			log.Fatal().Err(err).Msg("parse REDIS_URL")
		}
		redisClient = redis.NewClient(opt)
		defer redisClient.Close()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Warn().Err(err).Msg("redis ping failed; cache invalidation stays local")
			redisClient = nil
		}
	}

	vendorCache := cache.NewVendorCache(cfg.Cache.TTL, cache.WithCapacity(cfg.Cache.Capacity))
	go vendorCache.Start()
	defer vendorCache.Stop()
	log.Info().Dur("ttl", vendorCache.TTL()).Uint64("capacity", cfg.Cache.Capacity).Msg("vendor cache ready")

	var publisher ports.InvalidationPublisher
	var broadcaster *invalidation.RedisBroadcaster
	if redisClient != nil {
		broadcaster = invalidation.NewRedisBroadcaster(redisClient, cfg.Redis.InvalidationChannel, log)
		publisher = broadcaster
	}

	svc := tenancy.NewService(vendorRepo, vendorCache, tenancy.Options{
		RootDomain:    cfg.Tenancy.RootDomain,
		LookupTimeout: cfg.Tenancy.LookupTimeout,
		Publisher:     publisher,
		Log:           log,
	})

	bgCtx, stopBackground := context.WithCancel(ctx)
	defer stopBackground()
	if broadcaster != nil {
		go func() {
			apply := func(key string) {
				if _, err := svc.Invalidator().Apply(key); err != nil {
					log.Warn().Err(err).Str("key", key).Msg("ignoring invalidation message")
				}
			}
			if err := broadcaster.Subscribe(bgCtx, apply); err != nil {
				log.Warn().Err(err).Msg("invalidation subscriber stopped")
			}
		}()
	}

	const warmTimeout = 30 * time.Second
	if cfg.Cache.WarmOnStart {
		if _, err := refresh.RunOnce(ctx, svc, warmTimeout); err != nil {
			log.Warn().Err(err).Msg("cache warm failed; starting cold")
		}
	}
	go refresh.Run(bgCtx, svc, cfg.Cache.RefreshInterval, warmTimeout, log)

	ipLimit, err := middleware.NewIPRateLimiter(cfg.RateLimit.RatePerIP)
	if err != nil {
		log.Fatal().Err(err).Msg("create IP rate limiter")
	}
	vendorLimit, err := middleware.NewVendorRateLimiter(cfg.RateLimit.RatePerVendor)
	if err != nil {
		log.Fatal().Err(err).Msg("create vendor rate limiter")
	}

	router := httprouter.NewRouter(httprouter.RouterConfig{
		HealthHandler:   handlers.NewHealthHandler(dbPing, redisClient),
		VendorsHandler:  handlers.NewVendorsHandler(svc, log),
		AdminHandler:    handlers.NewAdminHandler(svc, log),
		Tenant:          middleware.NewTenantResolver(svc, cfg.Server.TrustForwardedHost, log),
		RequireAdmin:    middleware.RequireAdminSecret(cfg.Admin.Secret),
		Log:             log,
		Secure:          middleware.NewSecure(middleware.SecureOptions(cfg.Secure.IsDevelopment)),
		CORS:            middleware.CORS(cfg.CORS.AllowedOrigins),
		IPRateLimit:     ipLimit,
		VendorRateLimit: vendorLimit,
		Metrics:         true,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Server.Port).Str("root_domain", cfg.Tenancy.RootDomain).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown")
	}
	stopBackground()
	log.Info().Msg("server stopped")
}

func newLogger(cfg config.LogConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	var log zerolog.Logger
	if cfg.Format == "json" {
		log = zerolog.New(os.Stderr)
	} else {
		log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr})
	}
	return log.Level(level).With().Timestamp().Logger()
}
