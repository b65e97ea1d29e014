package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rafaelleal24/shoplist/internal/adapters/config"
	"github.com/rafaelleal24/shoplist/internal/adapters/factory"
	"github.com/rafaelleal24/shoplist/internal/adapters/http"
	"github.com/rafaelleal24/shoplist/internal/adapters/http/controllers"
	"github.com/rafaelleal24/shoplist/internal/adapters/http/middleware"
	"github.com/rafaelleal24/shoplist/internal/adapters/rabbitmq"
	"github.com/rafaelleal24/shoplist/internal/adapters/redis"
	"github.com/rafaelleal24/shoplist/internal/core/domain"
	"github.com/rafaelleal24/shoplist/internal/core/logger"
	"github.com/rafaelleal24/shoplist/internal/core/port"
	"github.com/rafaelleal24/shoplist/internal/core/service"
)

// @title       Shoplist API
// @version     1.0
// @description Shopping list and product inventory API

// @host     localhost:8080
// @BasePath /

//go:generate swag init -d ../.. -g cmd/http/main.go -o ../../docs --parseInternal

func main() {
	// initialize config and logger
	cfg := config.NewConfig()
	if err := logger.Initialize(cfg.Logger.Endpoint, cfg.Logger.ServiceName, cfg.Logger.IsProduction); err != nil {
		// logger not available yet, fall back to stderr
		fmt.Println("failed to initialize logger: " + err.Error())
		os.Exit(1)
	}

	// cancellable context for shutdown handling
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// pick the best available persistence backend; in-memory is the
	// terminal fallback, so this never fails
	repository := factory.NewWithFallback(ctx, cfg)

	// redis is optional: without it the service runs uncached and
	// unthrottled
	var (
		productCache port.CachePort[domain.Product]
		rateLimiter  middleware.RateLimiter
	)
	redisClient, err := redis.NewConnection(cfg.Redis)
	if err != nil {
		logger.Warn(ctx, "Redis unavailable, running without cache and rate limit", map[string]any{"error": err.Error()})
	} else {
		defer redisClient.Close()
		productCache = redis.NewCache[domain.Product](redisClient, "product-cache")
		rateLimiter = redis.NewRateLimiter(redisClient)
		logger.Info(ctx, "Connected to Redis", nil)
	}

	// rabbitmq is optional too: change events are best effort
	var broker port.BrokerPort
	rabbit, err := rabbitmq.NewRabbitMQAdapter(cfg.RabbitMQ)
	if err != nil {
		logger.Warn(ctx, "RabbitMQ unavailable, product events disabled", map[string]any{"error": err.Error()})
	} else {
		defer rabbit.Close()
		broker = rabbit
		logger.Info(ctx, "Connected to RabbitMQ", nil)
	}

	// services
	normalizer := service.NewNameNormalizer()
	productService := service.NewProductService(repository, productCache, broker, normalizer)

	// controllers
	productController := controllers.NewProductController(productService)
	checkers := []controllers.HealthChecker{
		{Name: "repository", Check: repository.HealthCheck},
	}
	if redisClient != nil {
		checkers = append(checkers, controllers.HealthChecker{
			Name:  "redis",
			Check: func(ctx context.Context) error { return redisClient.Ping(ctx) },
		})
	}
	if rabbit != nil {
		checkers = append(checkers, controllers.HealthChecker{
			Name:  "rabbitmq",
			Check: func(ctx context.Context) error { return rabbit.HealthCheck() },
		})
	}
	healthController := controllers.NewHealthController(checkers)

	// router
	router := http.NewRouter(healthController, productController, rateLimiter)

	// graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigCh
		logger.Info(ctx, "Received shutdown signal", map[string]any{"signal": sig.String()})
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := logger.Shutdown(shutdownCtx); err != nil {
			fmt.Println("logger shutdown error: " + err.Error())
		}
	}()

	logger.Info(ctx, "Starting HTTP server", map[string]any{"addr": cfg.HTTP.BindInterface + ":" + cfg.HTTP.Port})
	if err := router.ListenAndServe(ctx, cfg.HTTP); err != nil {
		logger.Fatal(ctx, "Failed to start HTTP server", err, nil)
	}
}
