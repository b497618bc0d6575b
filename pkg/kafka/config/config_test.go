package kafka_config

import "testing"

func TestLoad_DisabledByDefault(t *testing.T) {
	t.Setenv(EnvKafkaBrokers, "")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Enabled() {
		t.Error("Kafka should be disabled without brokers")
	}
}

func TestLoad_ParsesBrokers(t *testing.T) {
	t.Setenv(EnvKafkaBrokers, " kafka-1:9092, ,kafka-2:9092 ")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(cfg.Brokers) != 2 || cfg.Brokers[0] != "kafka-1:9092" || cfg.Brokers[1] != "kafka-2:9092" {
		t.Errorf("Brokers = %v", cfg.Brokers)
	}
	if cfg.DLQTopic("lala.bookings") != "lala.bookings.dlq" {
		t.Errorf("DLQTopic() = %s", cfg.DLQTopic("lala.bookings"))
	}
}

func TestLoad_Invalid(t *testing.T) {
	t.Setenv(EnvKafkaBrokers, "kafka-without-port")
	t.Setenv(EnvKafkaProducerCompression, "brotli")
	if _, err := Load(); err == nil {
		t.Error("expected validation error")
	}
}
