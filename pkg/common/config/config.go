package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	ServerPort     string
	ServerHost     string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	MaxRequestBody int64
	RateLimitRPS   int
	RateLimitBurst int

	// Pipeline paths
	RawDataDir       string
	ProcessedDataDir string
	DatasetFile      string
	ModelDir         string
	ModelName        string
	ModelConfigPath  string

	// Labeling / feature windows
	ReadmissionWindowDays int
	LookbackDays          int
	PredictionThreshold   float64

	// Database (training-job registry, offline feature store)
	RegistryEnabled  bool
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	// Redis (online feature cache)
	FeatureStoreEnabled bool
	RedisHost           string
	RedisPort           string
	RedisPassword       string
	RedisDB             int
	FeatureCacheTTL     time.Duration

	// Kafka (pipeline lifecycle events)
	EventsEnabled bool
	KafkaBrokers  []string
	KafkaTopic    string
	KafkaGroupID  string
}

func Load() *Config {
	// Best effort: absent .env is the normal case in containers.
	_ = godotenv.Load()

	return &Config{
		ServerPort:     getEnv("SERVER_PORT", "8080"),
		ServerHost:     getEnv("SERVER_HOST", "0.0.0.0"),
		ReadTimeout:    getDuration("READ_TIMEOUT", 30*time.Second),
		WriteTimeout:   getDuration("WRITE_TIMEOUT", 30*time.Second),
		MaxRequestBody: int64(getIntEnv("MAX_REQUEST_BODY_BYTES", 1*1024*1024)),
		RateLimitRPS:   getIntEnv("RATE_LIMIT_RPS", 50),
		RateLimitBurst: getIntEnv("RATE_LIMIT_BURST", 100),

		RawDataDir:       getEnv("RAW_DATA_DIR", "data/raw"),
		ProcessedDataDir: getEnv("PROCESSED_DATA_DIR", "data/processed"),
		DatasetFile:      getEnv("DATASET_FILE", "readmission_dataset.csv"),
		ModelDir:         getEnv("MODEL_DIR", "models"),
		ModelName:        getEnv("MODEL_NAME", "readmission"),
		ModelConfigPath:  getEnv("MODEL_CONFIG_PATH", ""),

		ReadmissionWindowDays: getIntEnv("READMISSION_WINDOW_DAYS", 30),
		LookbackDays:          getIntEnv("LOOKBACK_DAYS", 365),
		PredictionThreshold:   getFloatEnv("PREDICTION_THRESHOLD", 0.5),

		RegistryEnabled:  getBoolEnv("REGISTRY_ENABLED", false),
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "readmission"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "readmission123"),
		PostgresDB:       getEnv("POSTGRES_DB", "readmission"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),

		FeatureStoreEnabled: getBoolEnv("FEATURE_STORE_ENABLED", false),
		RedisHost:           getEnv("REDIS_HOST", "localhost"),
		RedisPort:           getEnv("REDIS_PORT", "6379"),
		RedisPassword:       getEnv("REDIS_PASSWORD", ""),
		RedisDB:             getIntEnv("REDIS_DB", 0),
		FeatureCacheTTL:     getDuration("FEATURE_CACHE_TTL", 5*time.Minute),

		EventsEnabled: getBoolEnv("EVENTS_ENABLED", false),
		KafkaBrokers:  getStringSliceEnv("KAFKA_BROKERS", []string{"localhost:9092"}),
		KafkaTopic:    getEnv("KAFKA_TOPIC", "readmission.pipeline"),
		KafkaGroupID:  getEnv("KAFKA_GROUP_ID", "readmission-serving"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getStringSliceEnv(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		return []string{value}
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
