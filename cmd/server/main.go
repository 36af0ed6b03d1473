package main // Entry point package

import (
	"context" // Context for startup database calls
	"log"     // Logging library
	"time"    // Timeouts for startup checks

	"github.com/joho/godotenv"    // Load .env files in development
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/moviehub/movie-catalog/internal/config"     // Internal config loader
	"github.com/moviehub/movie-catalog/internal/database"   // MySQL pool, schema and seed
	"github.com/moviehub/movie-catalog/internal/handler"    // HTTP handlers
	"github.com/moviehub/movie-catalog/internal/middleware" // Response cache + rate limiting
	"github.com/moviehub/movie-catalog/internal/queue"      // Rating activity consumer
	"github.com/moviehub/movie-catalog/internal/repository" // Data access layer
	"github.com/moviehub/movie-catalog/internal/router"     // Internal router setup
	"github.com/moviehub/movie-catalog/internal/upload"     // Media upload store
)

func main() {
	_ = godotenv.Load() // Load .env if present; ignore error in production

	cfg := config.Load() // Load environment config

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := database.EnsureSchema(ctx, db); err != nil {
		cancel()
		log.Fatalf("schema: %v", err)
	}
	if err := database.Seed(ctx, db, cfg.AdminUser, cfg.AdminPass, cfg.AdminEmail, cfg.BcryptCost); err != nil {
		cancel()
		log.Fatalf("seed: %v", err)
	}
	cancel()

	uploads, err := upload.NewStore(cfg.UploadDir, "/uploads", cfg.MaxImageBytes, cfg.MaxVideoBytes)
	if err != nil {
		log.Fatalf("upload store: %v", err)
	}

	// Repositories share the single pool.
	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	movies := repository.NewMovieRepo(db)
	categories := repository.NewCategoryRepo(db)
	ratings := repository.NewRatingRepo(db)

	e := echo.New()
	e.HideBanner = true

	// Redis is optional: when unreachable the public routes simply run
	// without the response cache and rate limiter.
	var publicMW []echo.MiddlewareFunc
	if rdb := config.NewRedisClient(); rdb != nil {
		rlCfg := config.LoadRateLimitConfig()
		if rlCfg.Enabled {
			e.Use(middleware.NewTokenBucket(rlCfg, rdb))
		}
		cacheCfg := config.LoadCacheConfig()
		if cacheCfg.Enabled {
			publicMW = append(publicMW, middleware.NewRedisCache(cacheCfg, rdb))
		}
	} else {
		log.Printf("redis unavailable; cache and rate limiting disabled")
	}

	router.RegisterRoutes(e, cfg.UploadDir) // Health check + static media
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, users, tokens), cfg.JWTSecret)
	router.RegisterPublic(e, handler.NewPublicHandler(movies, categories, ratings), cfg.JWTSecret, publicMW...)
	router.RegisterUser(e, handler.NewRatingHandler(movies, ratings), handler.NewProfileHandler(cfg, users, ratings), cfg.JWTSecret)
	router.RegisterAdmin(e, handler.NewAdminHandler(movies, categories, users, uploads), cfg.JWTSecret)

	// Background consumer that appends rating activity to the audit log.
	go func() {
		if err := queue.StartRatingConsumer(); err != nil {
			log.Printf("rating-consumer: %v", err)
		}
	}()

	addr := ":" + cfg.Port                                // Address string with port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env) // Print startup info

	if err := e.Start(addr); err != nil { // Start HTTP server
		log.Fatal(err) // Log and exit if server fails
	}
}
