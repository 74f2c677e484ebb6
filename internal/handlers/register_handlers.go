package handlers

import (
	"github.com/SscSPs/fx_rate_dashboard/cmd/docs"
	portssvc "github.com/SscSPs/fx_rate_dashboard/internal/core/ports/services"
	"github.com/SscSPs/fx_rate_dashboard/internal/dashboard"
	"github.com/SscSPs/fx_rate_dashboard/internal/platform/config"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces.
// apiMiddleware runs in front of every /api route.
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
	sessions *dashboard.Manager,
	apiMiddleware ...gin.HandlerFunc,
) {
	setupValidation()

	setupAPIRoutes(r, cfg, services, sessions, apiMiddleware)

	// Swagger routes (typically public or conditionally available)
	setupSwaggerRoutes(r, cfg)
}

// setupAPIRoutes configures the /api group and delegates to specific route registrations
func setupAPIRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
	sessions *dashboard.Manager,
	apiMiddleware []gin.HandlerFunc,
) {
	api := r.Group("/api", apiMiddleware...)

	registerHealthRoutes(api, cfg.Location)
	registerExchangeRateRoutes(api, services.ExchangeRate, cfg.Location, cfg.AdminJWTSecret, cfg.CronKey)
	registerUserRateRoutes(api, services.UserRate)
	if sessions != nil {
		registerDashboardRoutes(api, sessions, cfg.Location)
	}
}

// setupSwaggerRoutes configures the swagger documentation routes
func setupSwaggerRoutes(r *gin.Engine, cfg *config.Config) {
	if cfg.IsProduction {
		//no swagger in prod
		return
	}
	docs.SwaggerInfo.BasePath = "/api"
	swagger := r.Group("/swagger")
	swagger.GET("/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}
