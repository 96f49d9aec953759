package main // Entry point package

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/agritrack/farm-records/internal/config"
	"github.com/agritrack/farm-records/internal/database"
	"github.com/agritrack/farm-records/internal/handler"
	"github.com/agritrack/farm-records/internal/middleware"
	"github.com/agritrack/farm-records/internal/queue"
	"github.com/agritrack/farm-records/internal/repository"
	"github.com/agritrack/farm-records/internal/router"
	"github.com/agritrack/farm-records/internal/service"
	"github.com/agritrack/farm-records/internal/token"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := database.Migrate(ctx, db); err != nil {
		cancel()
		log.Fatalf("migrate: %v", err)
	}
	cancel()

	// Repositories and the token service. Everything is wired here and
	// passed down explicitly; no package holds shared state.
	users := repository.NewUserRepo(db)
	blacklist := repository.NewBlacklistRepo(db)
	farmTypes := repository.NewFarmTypeRepo(db)
	crops := repository.NewCropRepo(db)
	farmers := repository.NewFarmerRepo(db)
	tokens := token.NewService(cfg.JWTSecret, cfg.AccessTTLMin, cfg.RefreshTTLDays, users, blacklist)

	publisher := service.NewPublisher(cfg.RabbitURL)

	e := echo.New()
	e.HideBanner = true

	// Redis-backed rate limiting and response caching; both degrade to
	// pass-throughs when Redis is unavailable. The router mounts them
	// inside the authenticated group, behind JWTAuth.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable; rate limiting and caching disabled")
	}

	router.Register(e, router.Handlers{
		Auth:      handler.NewAuthHandler(cfg, tokens, users),
		FarmTypes: handler.NewFarmTypeHandler(farmTypes),
		Crops:     handler.NewCropHandler(crops, cfg.MediaDir),
		Farmers:   handler.NewFarmerHandler(farmers, publisher),
		Users:     handler.NewUserHandler(cfg, users),
		UserStore: users,
		Tokens:    tokens,
		RateLimit: middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb),
		Cache:     middleware.NewRedisCache(config.LoadCacheConfig(), rdb),
	})

	// Background consumer appending farmer registrations to the audit log.
	go func() {
		if err := queue.StartFarmerConsumer(cfg.RabbitURL); err != nil {
			log.Printf("farmer consumer stopped: %v", err)
		}
	}()

	// Expired refresh tokens already fail validation, so their blacklist
	// rows can be dropped periodically.
	go func() {
		for range time.Tick(12 * time.Hour) {
			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			if n, err := blacklist.PruneExpired(ctx); err != nil {
				log.Printf("blacklist prune failed: %v", err)
			} else if n > 0 {
				log.Printf("pruned %d expired blacklist rows", n)
			}
			cancel()
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
