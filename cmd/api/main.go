package main

import (
	"context"
	"net/http"

	authhandler "github.com/Lala-Rental/lala-rental-backend/internal/auth/handler"
	authservice "github.com/Lala-Rental/lala-rental-backend/internal/auth/service"
	bookinghandler "github.com/Lala-Rental/lala-rental-backend/internal/bookings/handler"
	bookingrepo "github.com/Lala-Rental/lala-rental-backend/internal/bookings/repository"
	bookingservice "github.com/Lala-Rental/lala-rental-backend/internal/bookings/service"
	bookingvalidator "github.com/Lala-Rental/lala-rental-backend/internal/bookings/validator"
	propertyhandler "github.com/Lala-Rental/lala-rental-backend/internal/properties/handler"
	propertyrepo "github.com/Lala-Rental/lala-rental-backend/internal/properties/repository"
	propertyservice "github.com/Lala-Rental/lala-rental-backend/internal/properties/service"
	propertyvalidator "github.com/Lala-Rental/lala-rental-backend/internal/properties/validator"
	userhandler "github.com/Lala-Rental/lala-rental-backend/internal/users/handler"
	userrepo "github.com/Lala-Rental/lala-rental-backend/internal/users/repository"
	userservice "github.com/Lala-Rental/lala-rental-backend/internal/users/service"
	uservalidator "github.com/Lala-Rental/lala-rental-backend/internal/users/validator"
	"github.com/Lala-Rental/lala-rental-backend/pkg/app"
	"github.com/Lala-Rental/lala-rental-backend/pkg/auth"
	"github.com/Lala-Rental/lala-rental-backend/pkg/config"
	"github.com/Lala-Rental/lala-rental-backend/pkg/contracts"
	"github.com/Lala-Rental/lala-rental-backend/pkg/events"
	"github.com/Lala-Rental/lala-rental-backend/pkg/google"
	"github.com/Lala-Rental/lala-rental-backend/pkg/kafka"
	kafka_config "github.com/Lala-Rental/lala-rental-backend/pkg/kafka/config"
	kafka_middleware "github.com/Lala-Rental/lala-rental-backend/pkg/kafka/middleware"
	"github.com/Lala-Rental/lala-rental-backend/pkg/middleware"
	"github.com/Lala-Rental/lala-rental-backend/pkg/storage"
)

const ServiceName = "lala-api"

func main() {
	cfg := config.Load(ServiceName, config.RequireJWT)
	cfg.SetMongo()
	cfg.SetRedis()

	cfg.Log.Info("Starting Lala Rental API")

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL, cfg.JWTIssuer)
	serverApp := app.NewApplication(tokens)

	publisher := initPublisher(cfg)
	serverApp.OnShutdown(func(context.Context) {
		if err := publisher.Close(); err != nil {
			cfg.Log.Error("Failed to close event publisher", "error", err)
		}
	})

	store := initStorage(cfg, serverApp)

	users := userservice.NewUserService(
		userrepo.NewMongoUserRepository(cfg),
		uservalidator.NewUserValidator(cfg.Log),
		cfg,
	)
	properties := propertyservice.NewPropertyService(
		propertyrepo.NewMongoPropertyRepository(cfg),
		store,
		propertyvalidator.NewPropertyValidator(cfg.Log, int64(cfg.MaxImageSize)),
		cfg,
	)
	bookings := bookingservice.NewBookingService(
		bookingrepo.NewMongoBookingRepository(cfg),
		bookingrepo.NewMongoGuardRepository(cfg),
		properties,
		users,
		publisher,
		bookingvalidator.NewBookingValidator(cfg.Log),
		cfg,
	)
	authentication := authservice.NewAuthService(
		google.NewClient(cfg.GoogleUserInfoURL, &http.Client{Timeout: cfg.RequestTimeout}),
		tokens,
		users,
		publisher,
		cfg,
	)

	serverApp.SetApp(cfg,
		authhandler.NewAuthHandler(authentication, cfg.Log),
		userhandler.NewUserHandler(users, cfg.Log),
		propertyhandler.NewPropertyHandler(properties, cfg.Log, int64(cfg.MaxUploadSize)),
		bookinghandler.NewBookingHandler(bookings, cfg.Log),
	)
	serverApp.Run()
}

// initPublisher wires Kafka producers for booking and user events, or a
// no-op publisher when no brokers are configured.
func initPublisher(cfg *config.Config) contracts.EventPublisher {
	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}
	if !kafkaCfg.Enabled() {
		cfg.Log.Warn("Kafka disabled, domain events will not be published")
		return events.NopPublisher{}
	}
	kafkaCfg.LogConfiguration(cfg.Log.Info)

	metrics := &kafka_middleware.Metrics{}
	newProducer := func(topic string) *kafka.Producer {
		producer, err := kafka.NewProducer(kafkaCfg, topic, kafkaCfg.DLQTopic(topic), cfg.Log)
		if err != nil {
			cfg.Log.Fatal("Failed to create Kafka producer", "topic", topic, "error", err)
		}
		if kafkaCfg.EnableMiddleware {
			producer.Use(kafka_middleware.LoggingProducerMiddleware(cfg.Log))
			producer.Use(kafka_middleware.MetricsProducerMiddleware(metrics))
		}
		return producer
	}

	return events.NewKafkaPublisher(ServiceName, middleware.RequestIDFromContext).
		Route("booking", newProducer(cfg.BookingTopic)).
		Route("user", newProducer(cfg.UserTopic))
}

// initStorage prefers S3 and falls back to the local upload directory,
// which the application then serves under /uploads/.
func initStorage(cfg *config.Config, serverApp *app.Application) storage.Store {
	if cfg.S3Bucket != "" {
		store, err := storage.NewS3Store(storage.S3Config{
			Bucket:        cfg.S3Bucket,
			Region:        cfg.S3Region,
			Endpoint:      cfg.S3Endpoint,
			PublicBaseURL: cfg.PublicBaseURL,
		})
		if err != nil {
			cfg.Log.Fatal("Failed to initialize S3 storage", "bucket", cfg.S3Bucket, "error", err)
		}
		cfg.Log.Info("Image storage: S3", "bucket", cfg.S3Bucket, "region", cfg.S3Region)
		return store
	}

	store, err := storage.NewLocalStore(cfg.LocalUploadDir, cfg.PublicBaseURL)
	if err != nil {
		cfg.Log.Fatal("Failed to initialize local storage", "dir", cfg.LocalUploadDir, "error", err)
	}
	serverApp.ServeUploads(store.Dir())
	cfg.Log.Info("Image storage: local disk", "dir", store.Dir())
	return store
}
