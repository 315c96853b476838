package internal

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	rabbitmq_adapter "valuation-service/internal/adapters/rabbitmq"
	"valuation-service/internal/adapters/rest"
	"valuation-service/internal/configs"
	"valuation-service/internal/constants"
	"valuation-service/internal/core/port"
	"valuation-service/internal/core/usecase"
	"valuation-service/pkg/rabbitmq/rabbitmq_common"
	"valuation-service/pkg/rabbitmq/rabbitmq_producer"
)

const shutdownTimeout = 15 * time.Second

// App – структура приложения
type App struct {
	bootstrap *Bootstrap
	logger    port.LoggerPort
	apiServer *rest.Server

	rabbitConn               *rabbitmq_common.ConnectionManager
	resultProducer           *rabbitmq_producer.Publisher
	valuationRequestListener port.EventListenerPort
}

// NewApp создает новый экземпляр приложения
func NewApp(appConfig *configs.AppConfig) (*App, error) {
	b, err := NewBootstrap(appConfig, os.Stdout)
	if err != nil {
		return nil, err
	}
	appLogger := b.Logger.WithFields(port.Fields{"component": "app"})

	ctx := context.Background()

	// --- 1. ИСХОДЯЩИЕ АДАПТЕРЫ ---
	references, err := b.ReferenceSource(ctx)
	if err != nil {
		b.Close()
		return nil, err
	}
	rates, err := b.LegalRates(ctx)
	if err != nil {
		b.Close()
		return nil, fmt.Errorf("failed to create settings adapter: %w", err)
	}
	appLogger.Info("All outgoing adapters initialized.", nil)

	// --- 2. USE CASES ---
	metrics := b.BusinessMetrics()
	valuatePropertyUseCase := usecase.NewValuatePropertyUseCase(references, rates, metrics, usecase.ValuationSettings{
		FallbackLegalRate: appConfig.Valuation.FallbackLegalRate,
		CurrentYear:       appConfig.Valuation.CurrentYear,
	})
	getQuickQuoteUseCase := usecase.NewGetQuickQuoteUseCase(references)
	listZonesUseCase := usecase.NewListZonesUseCase(references)
	coefficientsUseCase := usecase.NewUsufructCoefficientsUseCase(rates, metrics, appConfig.Valuation.FallbackLegalRate)
	appLogger.Info("All use cases initialized.", nil)

	application := &App{
		bootstrap: b,
		logger:    appLogger,
	}

	// --- 3. RABBITMQ ---
	if appConfig.RabbitMQ.Enabled {
		if err := application.initRabbitMQ(valuatePropertyUseCase); err != nil {
			application.closeResources()
			return nil, err
		}
	} else {
		appLogger.Info("RabbitMQ disabled, only REST API will be served.", nil)
	}

	// --- 4. REST API ---
	var httpMetrics rest.HTTPMetrics
	if b.Metrics != nil {
		httpMetrics = b.Metrics
	}
	apiHandlers := rest.NewValuationHandler(valuatePropertyUseCase, getQuickQuoteUseCase, listZonesUseCase, coefficientsUseCase)
	application.apiServer = rest.NewServer(rest.ServerConfig{
		Port:           appConfig.Rest.PORT,
		AllowedOrigins: appConfig.Rest.CORSAllowedOrigins,
		RateLimitRPS:   appConfig.Rest.RateLimitRPS,
		RateLimitBurst: appConfig.Rest.RateLimitBurst,
	}, apiHandlers, httpMetrics, b.Logger.WithFields(port.Fields{"component": "rest_server"}))

	return application, nil
}

func (a *App) initRabbitMQ(valuate *usecase.ValuatePropertyUseCase) error {
	cfg := a.bootstrap.Config
	baseLogger := a.bootstrap.Logger

	connManager, err := rabbitmq_common.NewConnectionManager(
		rabbitmq_common.Config{URL: cfg.RabbitMQ.URL},
		rabbitmq_adapter.NewPkgLoggerBridge(baseLogger.WithFields(port.Fields{"component": "rabbitmq_connection"})),
	)
	if err != nil {
		return fmt.Errorf("failed to create RabbitMQ connection manager: %w", err)
	}
	a.rabbitConn = connManager

	producer, err := rabbitmq_producer.NewPublisher(rabbitmq_producer.PublisherConfig{
		Config:                   rabbitmq_common.Config{URL: cfg.RabbitMQ.URL},
		ExchangeName:             constants.ExchangeValuation,
		ExchangeType:             constants.ExchangeValuationType,
		DurableExchange:          true,
		DeclareExchangeIfMissing: true,
		Logger:                   rabbitmq_adapter.NewPkgLoggerBridge(baseLogger.WithFields(port.Fields{"component": "rabbitmq_producer"})),
	}, connManager)
	if err != nil {
		return fmt.Errorf("failed to create result publisher: %w", err)
	}
	a.resultProducer = producer

	reporter, err := rabbitmq_adapter.NewValuationResultPublisherAdapter(producer)
	if err != nil {
		return err
	}

	processUseCase := usecase.NewProcessValuationRequestUseCase(valuate, reporter)

	listener, err := rabbitmq_adapter.NewValuationRequestConsumerAdapter(
		rabbitmq_adapter.ValuationConsumerConfig(cfg.RabbitMQ.URL),
		processUseCase,
		reporter,
		baseLogger.WithFields(port.Fields{"component": "valuation_request_listener"}),
		connManager,
	)
	if err != nil {
		return err
	}
	a.valuationRequestListener = listener
	a.logger.Info("Valuation Request Listener initialized.", nil)
	return nil
}

// Run запускает все компоненты приложения и управляет их жизненным циклом
func (a *App) Run() error {
	// единый контекст для всего приложения для управления graceful shutdown
	appCtx, cancelApp := context.WithCancel(context.Background())
	defer cancelApp()

	// для ожидания завершения всех фоновых задач
	var wg sync.WaitGroup

	defer func() {
		a.logger.Info("Shutdown sequence initiated...", nil)

		a.logger.Info("Waiting for background processes to finish...", nil)
		wg.Wait()
		a.logger.Info("All background processes finished.", nil)

		if a.apiServer != nil {
			stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			if err := a.apiServer.Stop(stopCtx); err != nil {
				a.logger.Error("Error closing api server", err, nil)
			}
			cancel()
		}

		a.closeResources()
	}()

	a.logger.Info("Application is starting...", nil)

	componentErrors := make(chan error, 2)

	// Функция для запуска слушателей
	startListener := func(name string, listener port.EventListenerPort) {
		defer wg.Done()
		a.logger.Info("Starting listener", port.Fields{"listener": name})
		if err := listener.Start(appCtx); err != nil {
			a.logger.Error("Listener stopped with an unexpected error", err, port.Fields{"listener": name})
			componentErrors <- fmt.Errorf("%s error: %w", name, err)
		} else {
			a.logger.Info("Listener stopped gracefully due to context cancellation.", port.Fields{"listener": name})
		}
	}

	if a.valuationRequestListener != nil {
		wg.Add(1)
		go startListener("Valuation Request Listener", a.valuationRequestListener)
	}

	go func() {
		if err := a.apiServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			componentErrors <- fmt.Errorf("http server error: %w", err)
		}
	}()

	// Ожидание сигнала на завершение или ошибки от одного из компонентов
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	a.logger.Info("Application running. Waiting for signals or component error...", nil)
	var runErr error
	select {
	case receivedSignal := <-quit:
		a.logger.Info("Received signal. Shutting down...", port.Fields{"signal": receivedSignal.String()})
	case err := <-componentErrors:
		a.logger.Error("A critical component failed. Shutting down...", err, nil)
		runErr = err
	case <-appCtx.Done():
		a.logger.Warn("Context was cancelled unexpectedly. Shutting down...", nil)
	}

	// Инициируем graceful shutdown, отменяя главный контекст
	cancelApp()

	return runErr
}

// closeResources закрывает слушателя, издателя и подключения в обратном порядке
func (a *App) closeResources() {
	if a.valuationRequestListener != nil {
		if err := a.valuationRequestListener.Close(); err != nil {
			a.logger.Error("Error closing valuation request listener", err, nil)
		}
	}
	if a.resultProducer != nil {
		if err := a.resultProducer.Close(); err != nil {
			a.logger.Error("Error closing result publisher", err, nil)
		}
	}
	if a.rabbitConn != nil {
		if err := a.rabbitConn.Close(); err != nil {
			a.logger.Error("Error closing RabbitMQ connection", err, nil)
		}
	}
	a.bootstrap.Close()
	a.logger.Info("Application shut down gracefully.", nil)
}
