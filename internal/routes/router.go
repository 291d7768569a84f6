package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"cargo-transport/internal/config"
	"cargo-transport/internal/delivery/http/handler"
	"cargo-transport/internal/infrastructure/database/postgres"
	"cargo-transport/internal/logger"
	"cargo-transport/internal/middleware"
	"cargo-transport/internal/usecase/cargo"
	"cargo-transport/internal/usecase/device"
	"cargo-transport/internal/usecase/directory"
)

func SetupRoutes(cfg *config.Config, db *postgres.DB) *gin.Engine {
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Middleware order: recovery, request ID, logging, security headers,
	// CORS, request size limit, general rate limit.
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())
	router.Use(middleware.CORSMiddleware(&cfg.CORS))
	router.Use(middleware.RequestSizeLimitMiddleware(10 << 20))
	router.Use(middleware.RateLimitMiddleware(cfg.RateLimit.GeneralRPS, cfg.RateLimit.GeneralBurst))

	router.GET("/health", func(c *gin.Context) {
		if err := db.Health(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":  "unhealthy",
				"message": "Database connection failed",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"message": "Service is running",
		})
	})

	txManager := postgres.NewTxManager(db)
	cargoRepository := postgres.NewCargoRepository(db)
	deviceRepository := postgres.NewDeviceRepository(db)
	clientRepository := postgres.NewClientRepository(db)
	dispatcherRepository := postgres.NewDispatcherRepository(db)
	routeRepository := postgres.NewRouteRepository(db)
	vehicleRepository := postgres.NewVehicleRepository(db)

	reconciler := cargo.NewReconciler(deviceRepository, cfg.Assignment.AllowReassign)
	cargoService := cargo.NewService(
		txManager,
		cargoRepository,
		deviceRepository,
		clientRepository,
		dispatcherRepository,
		routeRepository,
		vehicleRepository,
		reconciler,
	)
	cargoHandler := handler.NewCargoHandler(cargoService)

	deviceService := device.NewService(txManager, deviceRepository, cargoRepository, cfg.Assignment.AllowReassign)
	deviceHandler := handler.NewDeviceHandler(deviceService)

	referenceGuard := directory.NewReferenceGuard(cargoRepository)
	directoryService := directory.NewService(
		txManager,
		clientRepository,
		dispatcherRepository,
		routeRepository,
		vehicleRepository,
		referenceGuard,
	)
	directoryHandler := handler.NewDirectoryHandler(directoryService)

	v1 := router.Group("/api/v1")
	{
		cargoHandler.RegisterRoutes(v1)
		deviceHandler.RegisterRoutes(v1)
		directoryHandler.RegisterRoutes(v1)
	}

	logger.Info("All routes initialized")
	return router
}
