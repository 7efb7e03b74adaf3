package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/m04kA/SMC-AppointmentService/internal/api"
	"github.com/m04kA/SMC-AppointmentService/internal/api/middleware"
	"github.com/m04kA/SMC-AppointmentService/internal/config"
	appointmentRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/appointment"
	"github.com/m04kA/SMC-AppointmentService/internal/infra/storage/memstore"
	"github.com/m04kA/SMC-AppointmentService/internal/integrations/notifier"
	personServiceClient "github.com/m04kA/SMC-AppointmentService/internal/integrations/personservice"
	weatherServiceClient "github.com/m04kA/SMC-AppointmentService/internal/integrations/weatherservice"
	appointmentsService "github.com/m04kA/SMC-AppointmentService/internal/service/appointments"
	getFreeSlotsUC "github.com/m04kA/SMC-AppointmentService/internal/usecase/get_free_slots"
	remindStaleRequestsUC "github.com/m04kA/SMC-AppointmentService/internal/usecase/remind_stale_requests"
	"github.com/m04kA/SMC-AppointmentService/pkg/dbmetrics"
	"github.com/m04kA/SMC-AppointmentService/pkg/logger"
	"github.com/m04kA/SMC-AppointmentService/pkg/metrics"
	"github.com/m04kA/SMC-AppointmentService/pkg/tracing"
	"github.com/m04kA/SMC-AppointmentService/pkg/txmanager"
)

const defaultConfigPath = "config.toml"

func main() {
	// Загружаем конфигурацию
	configPath := defaultConfigPath
	if p := os.Getenv("APPT_CONFIG_PATH"); p != "" {
		configPath = p
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Инициализируем логгер
	log, err := logger.New(cfg.Logs.File, cfg.Logs.Level)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	log.Info("Starting SMC-AppointmentService...")
	log.Info("Configuration loaded from %s", configPath)

	// Трейсинг
	shutdownTracing, err := tracing.Setup(context.Background(), tracing.Config{
		Enabled:      cfg.Tracing.Enabled,
		ServiceName:  cfg.Metrics.ServiceName,
		OTLPEndpoint: cfg.Tracing.Endpoint,
		SampleRatio:  cfg.Tracing.SampleRatio,
	})
	if err != nil {
		log.Fatal("Failed to set up tracing: %v", err)
	}

	// Инициализируем метрики (если включены)
	var metricsCollector *metrics.Metrics
	stopMetricsCh := make(chan struct{})

	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	// Хранилище: postgres или in-memory
	var (
		repository appointmentsService.AppointmentRepository
		txMgr      appointmentsService.TransactionManager
		health     func(ctx context.Context) error
	)

	switch cfg.Database.Driver {
	case "memory":
		store := memstore.NewStore()
		repository = store
		txMgr = memstore.NewTxManager(store)
		log.Warn("Using in-memory storage: appointments are lost on restart")

	default:
		db, err := sql.Open("postgres", cfg.Database.DSN())
		if err != nil {
			log.Fatal("Failed to connect to database: %v", err)
		}
		defer db.Close()

		// Настраиваем connection pool
		db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
		db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
		db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

		// Проверяем соединение
		if err := db.Ping(); err != nil {
			log.Fatal("Failed to ping database: %v", err)
		}
		log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
			cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

		// Без коллектора обёртка работает как прозрачный прокси
		wrappedDB := dbmetrics.WrapWithDefault(db, metricsCollector, stopMetricsCh)
		repository = appointmentRepo.NewRepository(wrappedDB)
		txMgr = txmanager.NewTransactionManager(wrappedDB, txmanager.WithMaxRetries(cfg.Database.TxMaxRetries))
		health = wrappedDB.PingContext
	}

	// Инициализируем интеграционных клиентов
	personClient := personServiceClient.NewClient(
		cfg.PersonService.URL,
		time.Duration(cfg.PersonService.Timeout)*time.Second,
		log,
	)
	log.Info("PersonService client initialized (url=%s, timeout=%ds)", cfg.PersonService.URL, cfg.PersonService.Timeout)

	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()

		pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := redisClient.Ping(pingCtx).Err(); err != nil {
			log.Warn("Redis is unavailable at %s, forecast cache disabled: %v", cfg.Redis.Addr, err)
			redisClient = nil
		}
		cancel()
	}

	var weatherProvider appointmentsService.WeatherProvider
	if cfg.Weather.Enabled {
		opts := []weatherServiceClient.Option{
			weatherServiceClient.WithRateLimit(cfg.Weather.RequestsPerSecond, cfg.Weather.Burst),
		}
		if redisClient != nil {
			opts = append(opts, weatherServiceClient.WithCache(
				weatherServiceClient.NewRedisCache(redisClient),
				time.Duration(cfg.Weather.CacheTTL)*time.Second,
			))
		}
		weatherProvider = weatherServiceClient.NewClient(
			cfg.Weather.URL,
			time.Duration(cfg.Weather.Timeout)*time.Second,
			log,
			opts...,
		)
		log.Info("WeatherService client initialized (url=%s, cache=%t)", cfg.Weather.URL, redisClient != nil)
	} else {
		log.Info("WeatherService disabled, default forecast will be used for outdoor training")
	}

	var dispatcher appointmentsService.NotificationDispatcher
	switch cfg.Notifications.Driver {
	case "sms":
		dispatcher = notifier.NewSMSWebhook(
			cfg.Notifications.SMSWebhookURL,
			cfg.Notifications.SMSToken,
			time.Duration(cfg.Notifications.SMSTimeout)*time.Second,
			log,
		)
	case "kafka":
		kafkaNotifier := notifier.NewKafka(cfg.Notifications.KafkaBrokers, cfg.Notifications.KafkaTopic, log)
		defer func() {
			if err := kafkaNotifier.Close(); err != nil {
				log.Error("Failed to close kafka writer: %v", err)
			}
		}()
		dispatcher = kafkaNotifier
	default:
		dispatcher = notifier.NewNoop(log)
	}
	log.Info("Notifications driver: %s", cfg.Notifications.Driver)

	// Инициализируем сервис записей
	serviceOpts := []appointmentsService.Option{
		appointmentsService.WithSideEffectTimeout(time.Duration(cfg.Booking.SideEffectTimeout) * time.Second),
	}
	if metricsCollector != nil {
		serviceOpts = append(serviceOpts, appointmentsService.WithMetrics(metricsCollector))
	}

	appointmentSvc := appointmentsService.NewService(
		repository,
		personClient,
		dispatcher,
		weatherProvider,
		txMgr,
		cfg.Policy(),
		log,
		serviceOpts...,
	)
	log.Info("Booking policy: max_active_appointments=%d", cfg.Booking.MaxActiveAppointments)

	// Фоновые напоминания о неподтвержденных запросах
	workerCtx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()

	if cfg.Reminders.Enabled {
		reminder := remindStaleRequestsUC.NewUseCase(repository, personClient, dispatcher, log)
		worker := remindStaleRequestsUC.NewWorker(reminder, remindStaleRequestsUC.WorkerConfig{
			Interval:   time.Duration(cfg.Reminders.Interval) * time.Second,
			StaleAfter: cfg.Policy().StaleRequestAge,
			BatchSize:  cfg.Reminders.BatchSize,
		}, log)
		go worker.Run(workerCtx)
	}

	// Настраиваем роутер
	routerCfg := api.RouterConfig{
		Auth: middleware.AuthConfig{
			JWTSecret: cfg.Auth.JWTSecret,
			Issuer:    cfg.Auth.Issuer,
		},
		Metrics:     metricsCollector,
		MetricsPath: cfg.Metrics.Path,
		Health:      health,
		FreeSlots:   getFreeSlotsUC.NewUseCase(repository, personClient, log),
	}
	if cfg.RateLimit.Enabled {
		routerCfg.RateLimiter = middleware.NewRateLimiter(
			cfg.RateLimit.RequestsPerSecond,
			cfg.RateLimit.Burst,
			middleware.WithIdleTTL(time.Duration(cfg.RateLimit.IdleTTL)*time.Second),
		)
	}
	if cfg.Auth.JWTSecret == "" {
		log.Warn("auth.jwt_secret is empty: caller identity is taken from X-User-ID and X-User-Role headers")
	}

	r := api.NewRouter(appointmentSvc, routerCfg, log)

	// Создаем HTTP сервер
	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      otelhttp.NewHandler(r, cfg.Metrics.ServiceName),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info("Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server failed to start: %v", err)
		}
	}()

	// Ожидаем сигнал завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	stopWorkers()

	// Останавливаем сбор метрик connection pool
	close(stopMetricsCh)

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Error("Failed to flush traces: %v", err)
	}

	log.Info("Server stopped gracefully")
}
