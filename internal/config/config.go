package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	MQTT       MQTTConfig
	Ingestion  IngestionConfig
	RateLimit  RateLimitConfig
	CORS       CORSConfig
	Assignment AssignmentConfig
}

type ServerConfig struct {
	Port        string
	Host        string
	Environment string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type MQTTConfig struct {
	Broker         string
	ClientID       string
	Username       string
	Password       string
	KeepAlive      int
	ConnectTimeout int
}

type IngestionConfig struct {
	Workers      int
	BufferSize   int
	ApplyTimeout time.Duration
}

type RateLimitConfig struct {
	GeneralRPS   float64 // Requests per second for general endpoints
	GeneralBurst int     // Burst size for general endpoints
}

type CORSConfig struct {
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	ExposedHeaders   []string
	AllowCredentials bool
	MaxAge           int
}

// AssignmentConfig controls how the cargo-device reconciler treats a device
// that is already attached to another cargo. AllowReassign true keeps the
// historical last-writer-wins behavior; false rejects the attach outright.
type AssignmentConfig struct {
	AllowReassign bool
}

func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.AddConfigPath(".")
	if homeDir, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(homeDir)
	}
	viper.AutomaticEnv()

	viper.SetDefault("INGESTION_WORKERS", 4)
	viper.SetDefault("INGESTION_BUFFER_SIZE", 256)
	viper.SetDefault("INGESTION_APPLY_TIMEOUT_SEC", 5)
	viper.SetDefault("MQTT_KEEPALIVE_SEC", 30)
	viper.SetDefault("MQTT_CONNECT_TIMEOUT_SEC", 10)
	viper.SetDefault("ASSIGNMENT_ALLOW_REASSIGN", true)

	if err := viper.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		log.Printf("Warning: config file not found: %v. Falling back to environment variables only.", err)
	}

	config := &Config{
		Server: ServerConfig{
			Port:        viper.GetString("SERVER_PORT"),
			Host:        viper.GetString("SERVER_HOST"),
			Environment: viper.GetString("ENVIRONMENT"),
		},
		Database: DatabaseConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASSWORD"),
			DBName:   viper.GetString("DB_NAME"),
			SSLMode:  viper.GetString("DB_SSLMODE"),
		},
		MQTT: MQTTConfig{
			Broker:         viper.GetString("MQTT_BROKER"),
			ClientID:       viper.GetString("MQTT_CLIENT_ID"),
			Username:       viper.GetString("MQTT_USERNAME"),
			Password:       viper.GetString("MQTT_PASSWORD"),
			KeepAlive:      viper.GetInt("MQTT_KEEPALIVE_SEC"),
			ConnectTimeout: viper.GetInt("MQTT_CONNECT_TIMEOUT_SEC"),
		},
		Ingestion: IngestionConfig{
			Workers:      viper.GetInt("INGESTION_WORKERS"),
			BufferSize:   viper.GetInt("INGESTION_BUFFER_SIZE"),
			ApplyTimeout: time.Duration(viper.GetInt("INGESTION_APPLY_TIMEOUT_SEC")) * time.Second,
		},
		RateLimit: RateLimitConfig{
			GeneralRPS:   viper.GetFloat64("RATE_LIMIT_GENERAL_RPS"),
			GeneralBurst: viper.GetInt("RATE_LIMIT_GENERAL_BURST"),
		},
		CORS: CORSConfig{
			AllowedOrigins:   viper.GetStringSlice("CORS_ALLOWED_ORIGINS"),
			AllowedMethods:   viper.GetStringSlice("CORS_ALLOWED_METHODS"),
			AllowedHeaders:   viper.GetStringSlice("CORS_ALLOWED_HEADERS"),
			ExposedHeaders:   viper.GetStringSlice("CORS_EXPOSED_HEADERS"),
			AllowCredentials: viper.GetBool("CORS_ALLOW_CREDENTIALS"),
			MaxAge:           viper.GetInt("CORS_MAX_AGE"),
		},
		Assignment: AssignmentConfig{
			AllowReassign: viper.GetBool("ASSIGNMENT_ALLOW_REASSIGN"),
		},
	}

	return config, nil
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}
