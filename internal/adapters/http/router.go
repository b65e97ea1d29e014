package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rafaelleal24/shoplist/internal/adapters/config"
	"github.com/rafaelleal24/shoplist/internal/adapters/http/controllers"
	"github.com/rafaelleal24/shoplist/internal/adapters/http/middleware"
)

type Router struct {
	healthController  *controllers.HealthController
	productController *controllers.ProductController
	rateLimiter       middleware.RateLimiter
}

func NewRouter(
	healthController *controllers.HealthController,
	productController *controllers.ProductController,
	rateLimiter middleware.RateLimiter,
) *Router {
	return &Router{
		healthController:  healthController,
		productController: productController,
		rateLimiter:       rateLimiter,
	}
}

func (r *Router) SetupRoutes(router *gin.Engine) {
	apiGroup := router.Group("/api")
	v1Group := apiGroup.Group("/v1")
	{
		v1Group.Use(middleware.LogRequest())
		v1Group.GET("/health", r.healthController.Health)

		v1Group.GET("/products", r.productController.GetAll)
		v1Group.GET("/products/stats", r.productController.Stats)
		v1Group.GET("/products/:id", r.productController.GetByID)
		v1Group.DELETE("/products/:id", r.productController.RemoveProduct)
		v1Group.PUT("/products/:id", r.productController.UpdateProduct)
		v1Group.PATCH("/products/:id/purchase", r.productController.MarkPurchased)

		addProduct := []gin.HandlerFunc{r.productController.AddProduct}
		if r.rateLimiter != nil {
			addProduct = append([]gin.HandlerFunc{middleware.RateLimit(r.rateLimiter, 30, 1*time.Minute)}, addProduct...)
		}
		v1Group.POST("/products", addProduct...)
	}
}

func (r *Router) ListenAndServe(ctx context.Context, config config.HTTPConfig) error {
	engine := gin.Default()
	r.SetupRoutes(engine)

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%s", config.BindInterface, config.Port),
		Handler: engine,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
