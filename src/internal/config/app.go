package config

import (
	"booking-service/src/internal/delivery/http"
	"booking-service/src/internal/delivery/http/middleware"
	"booking-service/src/internal/delivery/http/route"
	"booking-service/src/internal/gateway/geo"
	"booking-service/src/internal/gateway/messaging"
	"booking-service/src/internal/gateway/payment"
	"booking-service/src/internal/repository"
	"booking-service/src/internal/usecase"
	kafkaPkgConfluent "booking-service/src/pkg/kafka/confluent"
	"booking-service/src/pkg/lock"
	"booking-service/src/pkg/log"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"
)

type BootstrapConfig struct {
	Repos       repository.Repositories
	App         *fiber.App
	Log         log.Log
	Validate    *validator.Validate
	Config      *viper.Viper
	Producer    kafkaPkgConfluent.Producer
	Redis       redis.UniversalClient
	Distance    usecase.DistanceCalculator
	AsynqClient *asynq.Client
	Async       *asynq.ServeMux
}

func Bootstrap(config *BootstrapConfig) {
	notifier, deliverer := NewNotifier(config)

	// setup use cases
	otp := usecase.NewOTPGate(config.Config.GetString("otp.secret"), config.Config.GetDuration("otp.ttl"))
	core := usecase.NewCore(config.Log, config.Validate, config.Repos, NewLocker(config), notifier, otp)

	var (
		locator  usecase.WorkerLocator
		finder   usecase.AssignableWorkerFinder
		location usecase.LocationWriter
	)
	if config.Redis != nil {
		index := geo.NewWorkerIndex(config.Redis, config.Config.GetFloat64("worker.search_radius_km"))
		locator, finder, location = index, index, index
	}

	var processor usecase.PaymentProcessor
	if config.Config.GetString("payment.processor.base_url") != "" {
		processor = payment.NewClient(payment.ConfigFromViper(config.Config), config.Log)
	}

	bookingUseCase := usecase.NewBookingUseCase(core, config.Distance, locator, finder)
	paymentUseCase := usecase.NewPaymentUseCase(core, processor)
	payoutUseCase := usecase.NewPayoutUseCase(core)
	locationUseCase := usecase.NewLocationUseCase(config.Log, config.Validate, location)

	// setup controller
	bookingController := http.NewBookingController(bookingUseCase, config.Log)
	paymentController := http.NewPaymentController(paymentUseCase, config.Log)
	walletController := http.NewWalletController(payoutUseCase, locationUseCase, config.Log)

	// setup middleware
	authMiddleware := middleware.VerifyBearer(config.Config.GetString("auth.jwt.secret"))
	if config.Async != nil {
		config.Async.HandleFunc(messaging.TypeDeliverNotification, messaging.DeliverNotificationHandler(deliverer))
	}
	routeConfig := route.RouteConfig{
		App:               config.App,
		Log:               config.Log,
		BookingController: bookingController,
		PaymentController: paymentController,
		WalletController:  walletController,
		AuthMiddleware:    authMiddleware,
	}
	routeConfig.Setup()
}

// NewLocker serializes per-key work across replicas through Redis when lock.driver is
// redis, otherwise within the process.
func NewLocker(config *BootstrapConfig) lock.Locker {
	if config.Config.GetString("lock.driver") == "redis" && config.Redis != nil {
		l := lock.NewRedis(config.Redis)
		if ttl := config.Config.GetDuration("lock.ttl"); ttl > 0 {
			l.TTL = ttl
		}
		return l
	}
	return lock.NewLocal()
}

// NewNotifier returns the dispatcher the usecases publish to and the one queued tasks are
// finally delivered through. Kafka delivers whenever a producer is configured.
func NewNotifier(config *BootstrapConfig) (usecase.NotificationDispatcher, usecase.NotificationDispatcher) {
	var deliverer usecase.NotificationDispatcher = messaging.LogDispatcher{Log: config.Log}
	driver := config.Config.GetString("notification.driver")
	if driver != "log" && config.Producer != nil {
		deliverer = messaging.NewNotificationProducer(config.Producer, config.Log, config.Config.GetString("kafka.topic.notification"))
	}

	switch driver {
	case "asynq":
		if config.AsynqClient != nil {
			return messaging.NewAsynqDispatcher(config.AsynqClient, config.Config.GetString("notification.queue"), config.Log), deliverer
		}
		config.Log.Warn("bootstrap", "asynq notifier selected without a client, delivering directly", "NewNotifier", "")
	case "kafka":
		if config.Producer == nil {
			config.Log.Warn("bootstrap", "kafka notifier selected with producer disabled, logging only", "NewNotifier", "")
		}
	}
	return deliverer, deliverer
}
