package main

import (
	"context"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/Lala-Rental/lala-rental-backend/internal/notifications"
	"github.com/Lala-Rental/lala-rental-backend/pkg/config"
	"github.com/Lala-Rental/lala-rental-backend/pkg/kafka"
	kafka_config "github.com/Lala-Rental/lala-rental-backend/pkg/kafka/config"
	kafka_middleware "github.com/Lala-Rental/lala-rental-backend/pkg/kafka/middleware"
	"github.com/Lala-Rental/lala-rental-backend/pkg/mailer"
)

const (
	ServiceName     = "lala-notifier"
	metricsInterval = time.Minute
)

func main() {
	cfg := config.Load(ServiceName, config.RequireSMTP)

	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}
	if !kafkaCfg.Enabled() {
		cfg.Log.Fatal("KAFKA_BROKERS is required for the notifier")
	}
	kafkaCfg.LogConfiguration(cfg.Log.Info)

	sender := mailer.NewSMTPMailer(mailer.Config{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.MailFrom,
	})
	notifier := notifications.NewNotifier(sender, cfg.FrontendURL, cfg.Log)

	metrics := &kafka_middleware.Metrics{}
	newConsumer := func(topic string, handler kafka.MessageHandler) *kafka.Consumer {
		consumer, err := kafka.NewConsumer(kafkaCfg, topic, cfg.ConsumerGroup, kafkaCfg.DLQTopic(topic), handler, cfg.Log)
		if err != nil {
			cfg.Log.Fatal("Failed to create Kafka consumer", "topic", topic, "error", err)
		}
		if kafkaCfg.EnableMiddleware {
			consumer.Use(kafka_middleware.LoggingConsumerMiddleware(cfg.Log))
			consumer.Use(kafka_middleware.MetricsConsumerMiddleware(metrics))
		}
		return consumer
	}
	consumers := []*kafka.Consumer{
		newConsumer(cfg.BookingTopic, notifier.HandleBooking),
		newConsumer(cfg.UserTopic, notifier.HandleUser),
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg.Log.Info("Starting notifier", "booking_topic", cfg.BookingTopic, "user_topic", cfg.UserTopic, "group_id", cfg.ConsumerGroup)

	var wg sync.WaitGroup
	for _, consumer := range consumers {
		wg.Add(1)
		go func(c *kafka.Consumer) {
			defer wg.Done()
			if err := c.Start(ctx); err != nil && !kafka.IsClosedError(err) {
				cfg.Log.Error("Kafka consumer stopped", "error", err)
				stop()
			}
		}(consumer)
	}

	go reportMetrics(ctx, cfg, metrics)

	<-ctx.Done()
	cfg.Log.Info("Shutting down notifier")

	for _, consumer := range consumers {
		if err := consumer.Close(); err != nil {
			cfg.Log.Error("Failed to close Kafka consumer", "error", err)
		}
	}
	wg.Wait()

	cfg.Log.Info("Notifier stopped", metrics.LogAttrs()...)
}

func reportMetrics(ctx context.Context, cfg *config.Config, metrics *kafka_middleware.Metrics) {
	ticker := time.NewTicker(metricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			cfg.Log.Info("Kafka consumer metrics", metrics.LogAttrs()...)
		}
	}
}
