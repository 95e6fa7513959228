package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.uber.org/zap"

	"secondchance-backend/internal/config"
	"secondchance-backend/internal/db"
	apihttp "secondchance-backend/internal/http"
	"secondchance-backend/internal/repository"
	"secondchance-backend/internal/service"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	jwtSvc, err := service.NewJWTService(cfg.JWTSecret, time.Duration(cfg.JWTTTLMinutes)*time.Minute, cfg.JWTIssuer)
	if err != nil {
		logger.Fatal("jwt config", zap.Error(err))
	}

	var userRepo repository.UserRepository
	switch cfg.StoreDriver {
	case config.StoreDriverPostgres:
		pool, err := db.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatal("postgres connect", zap.Error(err))
		}
		defer pool.Close()
		userRepo = repository.NewPgUserRepository(pool)
	default:
		client, err := db.NewMongoClient(ctx, cfg.MongoURI)
		if err != nil {
			logger.Fatal("mongo connect", zap.Error(err))
		}
		defer disconnectMongo(logger, client)
		mongoRepo := repository.NewMongoUserRepository(client.Database(cfg.MongoDatabase))
		if err := mongoRepo.EnsureIndexes(ctx); err != nil {
			logger.Fatal("mongo indexes", zap.Error(err))
		}
		userRepo = mongoRepo
	}

	var (
		regLock     service.RegistrationLock
		redisClient *redis.Client
	)
	if cfg.RedisAddr != "" {
		redisClient, err = db.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			logger.Warn("redis ping failed, using in-memory registration lock", zap.Error(err))
			_ = redisClient.Close()
		} else {
			defer redisClient.Close()
			regLock = service.NewRedisRegistrationLock(redisClient, 0)
		}
	}

	hasher := service.NewPasswordHasher(cfg.HashConcurrency)
	userSvc := service.NewUserService(logger, userRepo, hasher, jwtSvc, regLock)
	userHandler := apihttp.NewUserHandler(logger, userSvc)
	healthHandler := apihttp.NewHealthHandler(logger, userRepo)
	router := apihttp.NewRouter(logger, jwtSvc, userHandler, healthHandler)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("starting server", zap.String("port", cfg.HTTPPort), zap.String("store", cfg.StoreDriver))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.ShutdownTimeoutSeconds)*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}

func disconnectMongo(logger *zap.Logger, client *mongo.Client) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Disconnect(ctx); err != nil {
		logger.Warn("mongo disconnect", zap.Error(err))
	}
}
