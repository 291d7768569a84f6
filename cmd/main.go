package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"cargo-transport/internal/config"
	"cargo-transport/internal/infrastructure/database/postgres"
	"cargo-transport/internal/ingestion"
	"cargo-transport/internal/logger"
	"cargo-transport/internal/routes"
	"cargo-transport/internal/usecase/device"
	pkgmqtt "cargo-transport/pkg/mqtt"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("Failed to load configuration: " + err.Error() + "\n")
		os.Exit(1)
	}

	env := cfg.Server.Environment
	if env == "" {
		env = "development"
	}
	if err := logger.Init(env); err != nil {
		os.Stderr.WriteString("Failed to initialize logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting application",
		zap.String("environment", env),
	)

	if cfg.Database.Host == "" || cfg.Database.DBName == "" {
		logger.Fatal("Database configuration is missing. Please set DB_HOST and DB_NAME environment variables.")
	}

	db, err := postgres.NewDB(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database connection", zap.Error(err))
		}
	}()

	if err := postgres.Migrate(db); err != nil {
		logger.Fatal("Failed to run database migrations", zap.Error(err))
	}

	router := routes.SetupRoutes(cfg, db)

	// Location ingestion runs only when a broker is configured; the HTTP API
	// is fully functional without it.
	var subscriber *ingestion.Subscriber
	var processor *ingestion.Processor
	if cfg.MQTT.Broker != "" {
		txManager := postgres.NewTxManager(db)
		deviceRepository := postgres.NewDeviceRepository(db)
		cargoRepository := postgres.NewCargoRepository(db)
		deviceService := device.NewService(txManager, deviceRepository, cargoRepository, cfg.Assignment.AllowReassign)

		processor = ingestion.NewProcessor(
			deviceService,
			cfg.Ingestion.Workers,
			cfg.Ingestion.BufferSize,
			cfg.Ingestion.ApplyTimeout,
		)
		processor.Start()

		subscriber, err = ingestion.NewSubscriber(&ingestion.SubscriberConfig{
			ClientConfig: &pkgmqtt.Config{
				Broker:               cfg.MQTT.Broker,
				ClientID:             cfg.MQTT.ClientID,
				Username:             cfg.MQTT.Username,
				Password:             cfg.MQTT.Password,
				CleanSession:         true,
				KeepAlive:            cfg.MQTT.KeepAlive,
				ConnectTimeout:       cfg.MQTT.ConnectTimeout,
				AutoReconnect:        true,
				MaxReconnectInterval: time.Minute,
			},
			LocationTopic: ingestion.DefaultLocationTopic,
			QoS:           1,
		}, processor)
		if err != nil {
			logger.Fatal("Failed to build MQTT subscriber", zap.Error(err))
		}
		if err := subscriber.Start(); err != nil {
			logger.Fatal("Failed to start MQTT subscriber", zap.Error(err))
		}
	} else {
		logger.Info("MQTT broker not configured, location ingestion disabled")
	}

	host := cfg.Server.Host
	if host == "" {
		host = "0.0.0.0"
	}
	port := cfg.Server.Port
	if port == "" {
		port = "8080"
	}
	addr := net.JoinHostPort(host, port)

	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Server starting",
			zap.String("address", addr),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutdown Server ...")

	if subscriber != nil {
		subscriber.Stop()
	}
	if processor != nil {
		processor.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("Failed to shutdown server", zap.Error(err))
	}

	logger.Info("Server exited properly")
}
