package handlers

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	portssvc "github.com/ledgerhq/ledgercore/internal/core/ports/services"
	"github.com/ledgerhq/ledgercore/internal/middleware"
	"github.com/ledgerhq/ledgercore/internal/platform/config"
)

// RegisterRoutes sets up all application routes, injecting the service
// container and the tenant/idempotency middleware chain.
func RegisterRoutes(r *gin.Engine, cfg *config.Config, services *portssvc.ServiceContainer, idempotencyStore *middleware.IdempotencyStore) {
	v1 := r.Group("/api/v1", middleware.TenantContext(cfg.JWTSecret), middleware.Idempotency(idempotencyStore))

	registerPeriodRoutes(v1, services.Period)
	registerJournalRoutes(v1, services.Journal, services.Posting, services.Hash)

	setupSwaggerRoutes(r, cfg)
}

// setupSwaggerRoutes configures the swagger documentation routes.
func setupSwaggerRoutes(r *gin.Engine, cfg *config.Config) {
	if cfg.IsProduction {
		return
	}
	swagger := r.Group("/swagger")
	swagger.GET("/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}
