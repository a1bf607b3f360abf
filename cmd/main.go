package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/shenikar/flood_dispatch_system/internal/config"
	"github.com/shenikar/flood_dispatch_system/internal/eventbus"
	v1 "github.com/shenikar/flood_dispatch_system/internal/handler/http/v1"
	"github.com/shenikar/flood_dispatch_system/internal/ledger"
	"github.com/shenikar/flood_dispatch_system/internal/observability"
	"github.com/shenikar/flood_dispatch_system/internal/service"
	"github.com/shenikar/flood_dispatch_system/internal/webhook"
	"github.com/shenikar/flood_dispatch_system/pkg/logger"
	redisclient "github.com/shenikar/flood_dispatch_system/pkg/redis"

	_ "github.com/shenikar/flood_dispatch_system/docs"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// eventSink - выбранный приемник событий и функция его остановки
type eventSink struct {
	publisher webhook.WebhookPublisher
	stop      func()
}

// newEventSink выбирает приемник событий по EVENT_SINK
func newEventSink(ctx context.Context, cfg *config.Config, log *logrus.Logger, metrics *observability.Metrics) (*eventSink, error) {
	switch cfg.EventSink {
	case config.EventSinkRedis:
		redisClient, err := redisclient.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
		if err != nil {
			return nil, err
		}
		log.Info("Successfully connected to Redis")

		// Воркер доставляет события из очереди на WEBHOOK_URL
		workerCtx, cancelWorker := context.WithCancel(ctx)
		done := webhook.NewWebhookWorker(redisClient, log, cfg, metrics).Start(workerCtx)
		return &eventSink{
			publisher: webhook.NewRedisWebhookPublisher(redisClient),
			stop: func() {
				cancelWorker()
				<-done
				_ = redisClient.Close()
			},
		}, nil

	case config.EventSinkNATS:
		publisher, err := eventbus.NewNATSPublisher(cfg.NATSURL, cfg.NATSSubject, log)
		if err != nil {
			return nil, err
		}
		log.WithField("subject", cfg.NATSSubject).Info("NATS event sink configured")
		return &eventSink{publisher: publisher, stop: func() { _ = publisher.Close() }}, nil

	case config.EventSinkKafka:
		publisher := eventbus.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		log.WithField("topic", cfg.KafkaTopic).Info("Kafka publisher configured")
		return &eventSink{publisher: publisher, stop: func() { _ = publisher.Close() }}, nil

	default:
		log.Info("Event sink disabled, ledger events are dropped")
		return &eventSink{publisher: webhook.NoopPublisher{}, stop: func() {}}, nil
	}
}

// @title Flood Dispatch System API
// @version 1.0
// @description Incident ledger and dispatch engine for the urban flood dashboard.
// @host localhost:8080
// @BasePath /api/v1
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key
func main() {
	// Загрузка конфигурации
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	// Инициализация логгера
	log := logger.New(cfg.LogLevel)

	// Контекст для graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	metrics := observability.NewMetrics()

	// Леджер стартует с демонстрационного состояния
	incidentLedger := ledger.New(ledger.Seed())
	// Пулы и число инцидентов читаются из леджера в момент scrape
	prometheus.MustRegister(observability.NewLedgerCollector(incidentLedger.Snapshot))

	sink, err := newEventSink(ctx, cfg, log, metrics)
	if err != nil {
		log.Fatalf("Failed to initialize event sink %q: %v", cfg.EventSink, err)
	}
	defer sink.stop()

	// Инициализация сервисов
	incidentService := service.NewIncidentService(incidentLedger, log, cfg, sink.publisher, metrics, clockwork.NewRealClock())

	// Инициализация хэндлеров
	handler := v1.NewHandler(incidentService, log, cfg)

	// Настройка Gin роутера
	router := gin.Default()
	api := router.Group("/api/v1")
	handler.RegisterRoutes(api)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	// Добавление маршрута для Swagger UI
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Запуск HTTP-сервера
	serverAddr := fmt.Sprintf(":%s", cfg.HTTPPort)

	srv := &http.Server{
		Addr:    serverAddr,
		Handler: router,
	}

	// Запуск сервера в горутине
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Error starting HTTP server: %v", err)
		}
	}()
	log.WithField("event_sink", sink.publisher.Name()).Infof("HTTP server started on port %s", cfg.HTTPPort)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Received shutdown signal, shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorf("Server forced to shutdown: %v", err)
	}

	log.Info("Server gracefully stopped")
}
