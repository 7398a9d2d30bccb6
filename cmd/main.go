package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	cancelBookingHandler "github.com/bookline/booking-engine/internal/api/handlers/cancel_booking"
	createBookingHandler "github.com/bookline/booking-engine/internal/api/handlers/create_booking"
	getBookingHandler "github.com/bookline/booking-engine/internal/api/handlers/get_booking"
	getCustomerBookingsHandler "github.com/bookline/booking-engine/internal/api/handlers/get_customer_bookings"
	getNotificationHandler "github.com/bookline/booking-engine/internal/api/handlers/get_notification"
	getTenantBookingsHandler "github.com/bookline/booking-engine/internal/api/handlers/get_tenant_bookings"
	rescheduleBookingHandler "github.com/bookline/booking-engine/internal/api/handlers/reschedule_booking"
	updateBookingStatusHandler "github.com/bookline/booking-engine/internal/api/handlers/update_booking_status"
	"github.com/bookline/booking-engine/internal/api/middleware"
	"github.com/bookline/booking-engine/internal/config"
	"github.com/bookline/booking-engine/internal/domain"
	bookingRepo "github.com/bookline/booking-engine/internal/infra/storage/booking"
	notificationRepo "github.com/bookline/booking-engine/internal/infra/storage/notification"
	promoRepo "github.com/bookline/booking-engine/internal/infra/storage/promo"
	resourceRepo "github.com/bookline/booking-engine/internal/infra/storage/resource"
	"github.com/bookline/booking-engine/internal/infra/stream"
	"github.com/bookline/booking-engine/internal/integrations/notifygateway"
	"github.com/bookline/booking-engine/internal/integrations/quotaservice"
	bookingsService "github.com/bookline/booking-engine/internal/service/bookings"
	notificationsService "github.com/bookline/booking-engine/internal/service/notifications"
	promotionsService "github.com/bookline/booking-engine/internal/service/promotions"
	createBookingUC "github.com/bookline/booking-engine/internal/usecase/create_booking"
	rescheduleBookingUC "github.com/bookline/booking-engine/internal/usecase/reschedule_booking"
	updateBookingStatusUC "github.com/bookline/booking-engine/internal/usecase/update_booking_status"
	"github.com/bookline/booking-engine/pkg/dbmetrics"
	"github.com/bookline/booking-engine/pkg/logger"
	"github.com/bookline/booking-engine/pkg/metrics"
	"github.com/bookline/booking-engine/pkg/simpletxmanager"
	"github.com/bookline/booking-engine/pkg/txmanager"
)

// allowAllQuota используется при выключенном enforcement point
type allowAllQuota struct{}

func (allowAllQuota) CheckQuota(ctx context.Context, tenantID int64, code string) error {
	return nil
}

// noopPublisher используется при выключенном Kafka стриме
type noopPublisher struct{}

func (noopPublisher) Publish(ctx context.Context, event stream.BookingEvent) error {
	return nil
}

func main() {
	// Загружаем конфигурацию
	cfg, err := config.Load("config.toml")
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

	log.Info("Starting booking-engine...")
	log.Info("Configuration loaded from config.toml")

	// Инициализируем метрики (если включены)
	var metricsCollector *metrics.Metrics
	var wrappedDB *dbmetrics.DB
	stopMetricsCh := make(chan struct{})

	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	// Подключаемся к базе данных
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

	// Интерфейсные значения метрик заполняются только при включенных метриках
	var (
		quotaMetrics        quotaservice.Metrics
		notificationMetrics notificationsService.Metrics
		createMetrics       createBookingUC.Metrics
		statusMetrics       updateBookingStatusUC.Metrics
		rescheduleMetrics   rescheduleBookingUC.Metrics
	)
	if cfg.Metrics.Enabled {
		quotaMetrics = metricsCollector
		notificationMetrics = metricsCollector
		createMetrics = metricsCollector
		statusMetrics = metricsCollector
		rescheduleMetrics = metricsCollector
	}

	// Enforcement point квот: счетчики живут в Redis и управляются
	// вызывающим приложением, движок их только сверяет
	type QuotaChecker interface {
		CheckQuota(ctx context.Context, tenantID int64, code string) error
	}
	var quota QuotaChecker = allowAllQuota{}

	if cfg.Quota.Enabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		})
		defer rdb.Close()

		quota = quotaservice.NewClient(rdb, cfg.Quota.DefaultLimit, cfg.Quota.FailOpenOnRedisDown, log, quotaMetrics)
		log.Info("Quota enforcement enabled (redis=%s, default_limit=%d, fail_open=%v)",
			cfg.Redis.Address, cfg.Quota.DefaultLimit, cfg.Quota.FailOpenOnRedisDown)
	} else {
		log.Info("Quota enforcement disabled, all requests allowed")
	}

	// Шлюз доставки уведомлений
	gateway := notifygateway.NewClient(
		cfg.NotifyGateway.URL,
		time.Duration(cfg.NotifyGateway.Timeout)*time.Second,
		log,
	)
	if cfg.NotifyGateway.URL == "" {
		log.Info("Notify gateway URL not set, deliveries run in dry-run mode")
	}

	// Стрим событий жизненного цикла бронирований
	type EventPublisher interface {
		Publish(ctx context.Context, event stream.BookingEvent) error
	}
	var publisher EventPublisher = noopPublisher{}
	var kafkaPublisher *stream.Publisher
	var kafkaConsumer *stream.Consumer

	if cfg.Kafka.Enabled {
		kafkaPublisher = stream.NewPublisher(cfg.Kafka.Brokers, cfg.Kafka.BookingsTopic, log)
		defer kafkaPublisher.Close()

		kafkaConsumer = stream.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.BookingsTopic, cfg.Kafka.ConsumerGroup, log)
		defer kafkaConsumer.Close()

		publisher = kafkaPublisher
		log.Info("Kafka stream enabled (brokers=%v, topic=%s, group=%s)",
			cfg.Kafka.Brokers, cfg.Kafka.BookingsTopic, cfg.Kafka.ConsumerGroup)
	} else {
		log.Info("Kafka stream disabled, lifecycle events are dropped")
	}

	// Инициализируем репозитории (с метриками или без)
	var (
		bookingRepository      *bookingRepo.Repository
		resourceRepository     *resourceRepo.Repository
		promoRepository        *promoRepo.Repository
		notificationRepository *notificationRepo.Repository
	)

	// Интерфейс для transaction manager: usecases требуют SERIALIZABLE,
	// диспетчеру уведомлений достаточно изоляции по умолчанию
	type TxManager interface {
		DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
		Do(ctx context.Context, fn func(ctx context.Context) error) error
	}
	var txMgr TxManager

	if cfg.Metrics.Enabled {
		wrappedDB = dbmetrics.WrapWithDefault(db, metricsCollector, cfg.Metrics.ServiceName, stopMetricsCh)
		log.Info("Database metrics collection started")

		bookingRepository = bookingRepo.NewRepository(wrappedDB)
		resourceRepository = resourceRepo.NewRepository(wrappedDB)
		promoRepository = promoRepo.NewRepository(wrappedDB)
		notificationRepository = notificationRepo.NewRepository(wrappedDB)
		txMgr = txmanager.NewTransactionManager(wrappedDB)
	} else {
		bookingRepository = bookingRepo.NewRepository(db)
		resourceRepository = resourceRepo.NewRepository(db)
		promoRepository = promoRepo.NewRepository(db)
		notificationRepository = notificationRepo.NewRepository(db)
		txMgr = simpletxmanager.NewTransactionManager(db)
	}

	// Инициализируем сервисы
	bookingSvc := bookingsService.NewService(bookingRepository, log)
	promoSvc := promotionsService.NewService(promoRepository, log)

	notificationCtrl := notificationsService.NewController(
		notificationRepository,
		gateway,
		txMgr,
		quota,
		log,
		notificationMetrics,
		notificationsService.Config{
			MaxAttempts:      cfg.Notifications.MaxAttempts,
			ScheduleHorizon:  time.Duration(cfg.Notifications.ScheduleHorizonDays) * 24 * time.Hour,
			DispatchBatch:    cfg.Notifications.BatchSize,
			DispatchInterval: time.Duration(cfg.Notifications.DispatchIntervalSec) * time.Second,
		},
	)

	// Инициализируем use cases
	createBookingUseCase := createBookingUC.NewUseCase(
		bookingRepository,
		resourceRepository,
		promoSvc,
		quota,
		publisher,
		txMgr,
		log,
		createMetrics,
	)

	updateBookingStatusUseCase := updateBookingStatusUC.NewUseCase(
		bookingRepository,
		publisher,
		txMgr,
		log,
		statusMetrics,
	)

	rescheduleBookingUseCase := rescheduleBookingUC.NewUseCase(
		bookingRepository,
		publisher,
		txMgr,
		log,
		rescheduleMetrics,
	)

	// Инициализируем handlers
	createBooking := createBookingHandler.NewHandler(createBookingUseCase, log)
	getBooking := getBookingHandler.NewHandler(bookingSvc, log)
	cancelBooking := cancelBookingHandler.NewHandler(updateBookingStatusUseCase, log)
	updateBookingStatus := updateBookingStatusHandler.NewHandler(updateBookingStatusUseCase, log)
	rescheduleBooking := rescheduleBookingHandler.NewHandler(rescheduleBookingUseCase, log)
	getCustomerBookings := getCustomerBookingsHandler.NewHandler(bookingSvc, log)
	getTenantBookings := getTenantBookingsHandler.NewHandler(bookingSvc, log)
	getNotification := getNotificationHandler.NewHandler(notificationCtrl, log)

	// Фоновые воркеры: consumer стрима и диспетчер уведомлений
	workersCtx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()

	go notificationCtrl.RunDispatcher(workersCtx)

	if cfg.Kafka.Enabled {
		handler := notificationCtrl.HandleBookingEvent(func(event stream.BookingEvent) (string, domain.NotificationChannel) {
			// Резолв адреса получателя принадлежит шлюзу доставки;
			// движок передает ссылку на клиента
			return fmt.Sprintf("customer:%d", event.CustomerID), domain.ChannelEmail
		})

		go func() {
			if err := kafkaConsumer.Run(workersCtx, handler); err != nil {
				log.Error("Stream consumer stopped with error: %v", err)
			}
		}()
	}

	// Настраиваем роутер
	r := mux.NewRouter()

	// Добавляем metrics middleware (если метрики включены)
	if cfg.Metrics.Enabled {
		r.Use(middleware.Metrics(metricsCollector))
		log.Info("HTTP metrics middleware enabled")
	}

	// Metrics endpoint (публичный, без аутентификации)
	if cfg.Metrics.Enabled {
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	// API prefix
	api := r.PathPrefix("/api/v1").Subrouter()

	// Все маршруты требуют X-User-ID и X-Tenant-ID (проставляются шлюзом)
	api.Use(middleware.Auth(log))

	if cfg.RateLimit.Enabled {
		rateLimiter := middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst, log)
		api.Use(rateLimiter.Middleware)
		log.Info("Rate limit middleware enabled (rps=%.1f, burst=%d)", cfg.RateLimit.RPS, cfg.RateLimit.Burst)
	}

	// --- Бронирования ---
	// Создание бронирования (идемпотентно по clientGeneratedId)
	api.HandleFunc("/bookings", createBooking.Handle).Methods(http.MethodPost)

	// История бронирований вызывающего клиента
	api.HandleFunc("/bookings", getCustomerBookings.Handle).Methods(http.MethodGet)

	// Получение бронирования по ID
	api.HandleFunc("/bookings/{bookingId}", getBooking.Handle).Methods(http.MethodGet)

	// Отмена бронирования
	api.HandleFunc("/bookings/{bookingId}/cancel", cancelBooking.Handle).Methods(http.MethodPatch)

	// Применение действия жизненного цикла
	api.HandleFunc("/bookings/{bookingId}/status", updateBookingStatus.Handle).Methods(http.MethodPatch)

	// Перенос бронирования на новый интервал
	api.HandleFunc("/bookings/{bookingId}/reschedule", rescheduleBooking.Handle).Methods(http.MethodPost)

	// --- Тенант ---
	// Выборка бронирований тенанта с фильтрацией
	api.HandleFunc("/tenants/{tenantId}/bookings", getTenantBookings.Handle).Methods(http.MethodGet)

	// Состояние запроса на уведомление
	api.HandleFunc("/tenants/{tenantId}/notifications/{requestId}", getNotification.Handle).Methods(http.MethodGet)

	// Создаем HTTP сервер
	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info("Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start: %v", err)
		}
	}()

	// Ожидаем сигнал завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	// Останавливаем фоновые воркеры
	stopWorkers()

	// Останавливаем сбор метрик connection pool
	if cfg.Metrics.Enabled {
		close(stopMetricsCh)
		log.Info("Metrics collection stopped")
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	log.Info("Server stopped gracefully")
}
