package internal

import (
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"

	"github.com/fluent/fluent-logger-golang/fluent"
	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"

	logger_adapter "valuation-service/internal/adapters/logger"
	metrics_adapter "valuation-service/internal/adapters/metrics"
	postgres_adapter "valuation-service/internal/adapters/postgres"
	redis_adapter "valuation-service/internal/adapters/redis"
	"valuation-service/internal/configs"
	"valuation-service/internal/core/port"
	"valuation-service/internal/core/usecase"
	fluentlogger "valuation-service/pkg/fluent_logger"
	"valuation-service/pkg/postgres"
)

// Bootstrap - общие зависимости сервиса и команд CLI.
// Подключения к Postgres и Redis открываются лениво, при первом запросе.
type Bootstrap struct {
	Config  *configs.AppConfig
	Logger  port.LoggerPort
	Metrics *metrics_adapter.PrometheusMetrics // nil, если метрики выключены

	appLogger    port.LoggerPort
	fluentClient *fluent.Fluent
	dbPool       *pgxpool.Pool
	redisClient  *goredis.Client
	references   port.ReferencePricePort
}

// NewBootstrap поднимает логгеры и метрики. logOut - куда пишет stdout-логгер.
func NewBootstrap(cfg *configs.AppConfig, logOut io.Writer) (*Bootstrap, error) {
	// --- 1. ЛОГГЕРЫ ---
	var activeLoggers []port.LoggerPort

	stdoutLogger := logger_adapter.NewSlogAdapter(logger_adapter.SlogConfig{
		Writer:   logOut,
		Level:    parseLogLevel(cfg.StdoutLogger.Level),
		IsJSON:   cfg.StdoutLogger.JSON,
		UseColor: !cfg.StdoutLogger.JSON,
	})
	activeLoggers = append(activeLoggers, stdoutLogger)

	var fluentClient *fluent.Fluent
	if cfg.FluentBit.Enabled {
		var err error
		fluentClient, err = fluentlogger.NewClient(fluentlogger.Config{
			Host:      cfg.FluentBit.Host,
			Port:      cfg.FluentBit.Port,
			TagPrefix: cfg.AppName,
			Async:     cfg.FluentBit.Async,
		})
		if err != nil {
			stdoutLogger.Error("Failed to create fluentbit client", err, nil)
			return nil, fmt.Errorf("failed to create fluentbit client: %w", err)
		}

		fluentAdapter, err := logger_adapter.NewFluentLoggerAdapter(fluentClient, parseLogLevel(cfg.FluentBit.Level))
		if err != nil {
			stdoutLogger.Error("Failed to create fluentbit adapter", err, nil)
			fluentClient.Close()
			return nil, err
		}
		activeLoggers = append(activeLoggers, fluentAdapter)
	}

	multiLogger, err := logger_adapter.NewMultiloggerAdapter(activeLoggers...)
	if err != nil {
		return nil, fmt.Errorf("failed to create multi-logger: %w", err)
	}

	// --- 2. БАЗОВЫЙ ЛОГГЕР ПРИЛОЖЕНИЯ ---
	baseLogger := multiLogger.WithFields(port.Fields{"service_name": cfg.AppName})
	appLogger := baseLogger.WithFields(port.Fields{"component": "bootstrap"})
	appLogger.Debug("Logger system initialized", port.Fields{
		"active_loggers": len(activeLoggers), "fluent_enabled": cfg.FluentBit.Enabled,
	})

	b := &Bootstrap{
		Config:       cfg,
		Logger:       baseLogger,
		appLogger:    appLogger,
		fluentClient: fluentClient,
	}

	// --- 3. МЕТРИКИ ---
	if cfg.Metrics.Enabled {
		m, err := metrics_adapter.NewPrometheusMetrics(cfg.Metrics.Namespace, true)
		if err != nil {
			b.Close()
			return nil, fmt.Errorf("failed to create metrics: %w", err)
		}
		b.Metrics = m
	}

	return b, nil
}

// BusinessMetrics - метрики для use case, заглушка при выключенных метриках
func (b *Bootstrap) BusinessMetrics() port.MetricsPort {
	if b.Metrics == nil {
		return port.NoopMetrics{}
	}
	return b.Metrics
}

// Database открывает пул PostgreSQL один раз
func (b *Bootstrap) Database(ctx context.Context) (*pgxpool.Pool, error) {
	if b.dbPool != nil {
		return b.dbPool, nil
	}
	if err := b.Config.RequireDatabase(); err != nil {
		return nil, err
	}

	pool, err := postgres.NewClient(ctx, postgres.Config{
		DatabaseURL:     b.Config.Database.URL,
		MaxConns:        b.Config.Database.MaxConns,
		MinConns:        b.Config.Database.MinConns,
		MaxConnLifetime: b.Config.Database.MaxConnLifetime,
	})
	if err != nil {
		b.appLogger.Error("Failed to connect to PostgreSQL", err, nil)
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	b.appLogger.Info("Successfully connected to PostgreSQL pool!", nil)
	b.dbPool = pool
	return pool, nil
}

// ReferenceSource - справочник котировок из Postgres, при включенном Redis - через кэш.
// Недоступный на старте Redis не мешает работе: кэш просто отключается.
func (b *Bootstrap) ReferenceSource(ctx context.Context) (port.ReferencePricePort, error) {
	if b.references != nil {
		return b.references, nil
	}

	pool, err := b.Database(ctx)
	if err != nil {
		return nil, err
	}
	pgReferences, err := postgres_adapter.NewPostgresReferenceAdapter(pool)
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres reference adapter: %w", err)
	}
	b.references = pgReferences

	if !b.Config.Redis.Enabled {
		return b.references, nil
	}

	client, err := redis_adapter.NewClient(ctx, redis_adapter.Config{
		Addr:     b.Config.Redis.Addr,
		Password: b.Config.Redis.Password,
		DB:       b.Config.Redis.DB,
	})
	if err != nil {
		b.appLogger.Warn("Redis unavailable, reference cache disabled", port.Fields{"error": err.Error()})
		return b.references, nil
	}
	b.redisClient = client

	opts := []redis_adapter.Option{redis_adapter.WithTTL(b.Config.Redis.QuoteTTL)}
	if b.Metrics != nil {
		opts = append(opts, redis_adapter.WithObserver(b.Metrics))
	}
	cached, err := redis_adapter.NewCachedReferenceAdapter(pgReferences, client, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create cached reference adapter: %w", err)
	}
	b.appLogger.Info("Reference cache enabled", port.Fields{"redis_addr": b.Config.Redis.Addr})
	b.references = cached
	return b.references, nil
}

// LegalRates - ставка из omi_settings
func (b *Bootstrap) LegalRates(ctx context.Context) (port.LegalRatePort, error) {
	pool, err := b.Database(ctx)
	if err != nil {
		return nil, err
	}
	return postgres_adapter.NewPostgresSettingsAdapter(pool)
}

// ValuatePropertyUseCase собирает полный конвейер оценки
func (b *Bootstrap) ValuatePropertyUseCase(ctx context.Context) (*usecase.ValuatePropertyUseCase, error) {
	references, err := b.ReferenceSource(ctx)
	if err != nil {
		return nil, err
	}
	rates, err := b.LegalRates(ctx)
	if err != nil {
		return nil, err
	}
	return usecase.NewValuatePropertyUseCase(references, rates, b.BusinessMetrics(), usecase.ValuationSettings{
		FallbackLegalRate: b.Config.Valuation.FallbackLegalRate,
		CurrentYear:       b.Config.Valuation.CurrentYear,
	}), nil
}

// Close освобождает открытые подключения
func (b *Bootstrap) Close() {
	if b.redisClient != nil {
		if err := b.redisClient.Close(); err != nil {
			b.appLogger.Error("Error closing redis client", err, nil)
		}
	}
	if b.dbPool != nil {
		b.dbPool.Close()
		b.appLogger.Info("PostgreSQL pool closed.", nil)
	}
	if b.fluentClient != nil {
		if err := b.fluentClient.Close(); err != nil {
			// fluent может быть уже недоступен
			fmt.Printf("ERROR: Error closing fluent client: %v\n", err)
		}
	}
}

func parseLogLevel(levelStr string) slog.Level {
	level, err := logger_adapter.ParseLevel(levelStr)
	if err != nil {
		log.Printf("Warning: %v. Defaulting to 'info'.", err)
		return slog.LevelInfo
	}
	return level
}
