package configs

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type DatabaseConfig struct {
	URL             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
}

// RabbitMQConfig хранит конфигурацию для RabbitMQ
type RabbitMQConfig struct {
	URL     string
	Enabled bool
}

type RESTconfig struct {
	PORT               string
	RateLimitRPS       float64
	RateLimitBurst     int
	CORSAllowedOrigins []string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	QuoteTTL time.Duration
	Enabled  bool
}

type MetricsConfig struct {
	Enabled   bool
	Namespace string
}

type StdoutLogConfig struct {
	Level string
	JSON  bool
}

type FluentBitConfig struct {
	Host    string
	Port    int
	Enabled bool
	Async   bool
	Level   string
}

// ValuationConfig - параметры расчета
type ValuationConfig struct {
	FallbackLegalRate float64
	CurrentYear       int // 0 - год по системным часам
}

// OMIImportConfig - метаданные и размер пачки для импорта выгрузки OMI
type OMIImportConfig struct {
	BatchSize  int
	Semester   string
	SurveyDate string
}

// AppConfig хранит всю конфигурацию приложения
type AppConfig struct {
	Database     DatabaseConfig
	RabbitMQ     RabbitMQConfig
	Rest         RESTconfig
	Redis        RedisConfig
	Metrics      MetricsConfig
	FluentBit    FluentBitConfig
	StdoutLogger StdoutLogConfig
	Valuation    ValuationConfig
	OMIImport    OMIImportConfig
	AppName      string
}

// LoadConfig загружает конфигурацию из переменных окружения.
// Файл .env необязателен: без него читается только окружение процесса.
func LoadConfig(envPath ...string) (*AppConfig, error) {
	var err error
	if len(envPath) > 0 && envPath[0] != "" {
		err = godotenv.Load(envPath[0])
	} else {
		err = godotenv.Load()
	}
	if err != nil {
		log.Printf("Info: Could not load .env file (path: %v): %v. Using process environment.\n", envPath, err)
	}

	cfg := &AppConfig{}

	cfg.AppName = getEnvAsString("APP_NAME", "valuation-service")

	cfg.Database.URL = os.Getenv("DATABASE_URL")
	cfg.Database.MaxConns = int32(getEnvAsInt("DB_MAX_CONNS", 10))
	cfg.Database.MinConns = int32(getEnvAsInt("DB_MIN_CONNS", 0))
	cfg.Database.MaxConnLifetime = getEnvAsDuration("DB_MAX_CONN_LIFETIME", time.Hour)

	// REST
	cfg.Rest.PORT = getEnvAsString("PORT", "8090")
	cfg.Rest.RateLimitRPS = getEnvAsFloat("RATE_LIMIT_RPS", 20)
	cfg.Rest.RateLimitBurst = getEnvAsInt("RATE_LIMIT_BURST", 40)
	cfg.Rest.CORSAllowedOrigins = getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"})

	// RabbitMQ
	cfg.RabbitMQ.Enabled = getEnvAsBool("RABBITMQ_ENABLED", false)
	cfg.RabbitMQ.URL = os.Getenv("RABBITMQ_URL")
	if cfg.RabbitMQ.Enabled && cfg.RabbitMQ.URL == "" {
		return nil, fmt.Errorf("RABBITMQ_URL environment variable is required when RABBITMQ_ENABLED is true")
	}

	// Redis
	cfg.Redis.Enabled = getEnvAsBool("REDIS_ENABLED", false)
	cfg.Redis.Addr = getEnvAsString("REDIS_ADDR", "localhost:6379")
	cfg.Redis.Password = os.Getenv("REDIS_PASSWORD")
	cfg.Redis.DB = getEnvAsInt("REDIS_DB", 0)
	cfg.Redis.QuoteTTL = getEnvAsDuration("REDIS_QUOTE_TTL", 6*time.Hour)

	// Метрики
	cfg.Metrics.Enabled = getEnvAsBool("METRICS_ENABLED", true)
	cfg.Metrics.Namespace = getEnvAsString("METRICS_NAMESPACE", "valuation")

	// Логи
	cfg.FluentBit.Enabled = getEnvAsBool("FLUENTBIT_ENABLED", false)
	if cfg.FluentBit.Enabled {
		cfg.FluentBit.Host = os.Getenv("FLUENTBIT_HOST")
		if cfg.FluentBit.Host == "" {
			log.Println("WARNING: FLUENTBIT_ENABLED is true, but FLUENTBIT_HOST is not set. Disabling Fluent Bit.")
			cfg.FluentBit.Enabled = false
		}
		cfg.FluentBit.Port = getEnvAsInt("FLUENTBIT_PORT", 24224)
		cfg.FluentBit.Level = getEnvAsString("FLUENTBIT_LOG_LEVEL", "info")
		cfg.FluentBit.Async = getEnvAsBool("FLUENTBIT_ASYNC", true)
	}
	cfg.StdoutLogger.Level = getEnvAsString("STDOUT_LOG_LEVEL", "debug")
	cfg.StdoutLogger.JSON = getEnvAsBool("STDOUT_LOG_JSON", false)

	// Расчет
	cfg.Valuation.FallbackLegalRate = getEnvAsFloat("FALLBACK_LEGAL_RATE", 0.025)
	cfg.Valuation.CurrentYear = getEnvAsInt("VALUATION_CURRENT_YEAR", 0)
	if cfg.Valuation.FallbackLegalRate <= 0 {
		return nil, fmt.Errorf("FALLBACK_LEGAL_RATE must be positive, got %v", cfg.Valuation.FallbackLegalRate)
	}

	// Импорт OMI
	cfg.OMIImport.BatchSize = getEnvAsInt("OMI_IMPORT_BATCH_SIZE", 1000)
	cfg.OMIImport.Semester = getEnvAsString("OMI_SEMESTER", "2025/1")
	cfg.OMIImport.SurveyDate = getEnvAsString("OMI_SURVEY_DATE", "2025-01-15")

	return cfg, nil
}

// RequireDatabase проверяет наличие DATABASE_URL для команд, работающих с Postgres
func (c *AppConfig) RequireDatabase() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL environment variable is required")
	}
	return nil
}

func getEnvAsString(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt читает переменную окружения как int или возвращает значение по умолчанию
// Логирует ошибку, если переменная есть, но не может быть преобразована в int
func getEnvAsInt(key string, defaultValue int) int {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}

	valueInt, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Environment variable %s (value: %s) could not be parsed as int: %v. Using default value: %d\n", key, valueStr, err, defaultValue)
		return defaultValue
	}
	return valueInt
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		log.Printf("Warning: Environment variable %s (value: %s) could not be parsed as float: %v. Using default value: %v\n", key, valueStr, err, defaultValue)
		return defaultValue
	}
	return value
}

// getEnvAsBool читает переменную окружения как bool или возвращает значение по умолчанию
func getEnvAsBool(key string, defaultValue bool) bool {
	valStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	valBool, err := strconv.ParseBool(valStr)
	if err != nil {
		log.Printf("Warning: Environment variable %s (value: %s) could not be parsed as bool: %v. Using default value: %t\n", key, valStr, err, defaultValue)
		return defaultValue
	}
	return valBool
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	d, err := time.ParseDuration(valStr)
	if err != nil {
		log.Printf("Warning: Environment variable %s (value: %s) could not be parsed as duration: %v. Using default value: %s\n", key, valStr, err, defaultValue)
		return defaultValue
	}
	return d
}

// getEnvAsList - значения через запятую
func getEnvAsList(key string, defaultValue []string) []string {
	valStr, exists := os.LookupEnv(key)
	if !exists || strings.TrimSpace(valStr) == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(valStr, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
