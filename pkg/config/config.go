package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/Lala-Rental/lala-rental-backend/pkg/client"
	"github.com/Lala-Rental/lala-rental-backend/pkg/logger"

	"github.com/joho/godotenv"
)

type Config struct {
	MongoURI          string
	MongoDatabaseName string
	MongoConnTimeout  time.Duration

	Port     string
	LogLevel string

	RateLimitRequests int
	RateLimitWindow   time.Duration

	RequestTimeout time.Duration
	UploadTimeout  time.Duration
	IdempotencyTTL time.Duration
	MaxRequestSize int

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	JWTSecret         string
	JWTTTL            time.Duration
	JWTIssuer         string
	GoogleUserInfoURL string

	RedisURL string

	AllowSameDayTurnover bool

	MaxImageSize   int
	MaxUploadSize  int
	S3Bucket       string
	S3Region       string
	S3Endpoint     string
	LocalUploadDir string
	PublicBaseURL  string

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	MailFrom     string
	FrontendURL  string

	BookingTopic  string
	UserTopic     string
	ConsumerGroup string

	Log    *logger.Logger
	Client *client.Client
}

// Check is an extra validation rule a process adds on top of the common ones.
type Check func(cfg *Config) []string

// RequireJWT is used by processes that issue or verify access tokens.
func RequireJWT(cfg *Config) []string {
	var errors []string
	if len(cfg.JWTSecret) < 32 {
		errors = append(errors, fmt.Sprintf("JWTSecret must be at least 32 characters, got %d", len(cfg.JWTSecret)))
	}
	if cfg.JWTTTL <= 0 {
		errors = append(errors, fmt.Sprintf("JWTTTL must be positive, got: %s", cfg.JWTTTL))
	}
	if err := checkHTTPURL(cfg.GoogleUserInfoURL); err != nil {
		errors = append(errors, fmt.Sprintf("GoogleUserInfoURL %v", err))
	}
	return errors
}

// RequireSMTP is used by processes that deliver mail.
func RequireSMTP(cfg *Config) []string {
	var errors []string
	if cfg.SMTPHost == "" {
		errors = append(errors, "SMTPHost cannot be empty")
	}
	if cfg.SMTPPort < 1 || cfg.SMTPPort > 65535 {
		errors = append(errors, fmt.Sprintf("SMTPPort must be between 1 and 65535, got: %d", cfg.SMTPPort))
	}
	if cfg.MailFrom == "" {
		errors = append(errors, "MailFrom cannot be empty")
	}
	return errors
}

func Load(serviceName string, checks ...Check) *Config {
	// A missing .env file is normal outside local development.
	_ = godotenv.Load()

	cfg := FromEnv()
	cfg.Log = logger.New(logger.Config{
		Level:     cfg.LogLevel,
		Format:    logger.JSON,
		AddSource: true,
		Service:   serviceName,
	})
	cfg.Client = client.NewClient()

	if err := cfg.Validate(checks...); err != nil {
		cfg.Log.Fatal(err.Error())
	}
	cfg.LogConfiguration()
	return cfg
}

// FromEnv reads every setting from the environment without validating or
// connecting anything.
func FromEnv() *Config {
	return &Config{
		MongoURI:          getEnvStr(EnvMongoURI, DefaultMongoURI),
		MongoDatabaseName: getEnvStr(EnvMongoDatabaseName, DefaultMongoDatabaseName),
		MongoConnTimeout:  getEnvDuration(EnvMongoConnTimeout, DefaultMongoConnTimeout),

		Port:     getEnvStr(EnvPort, DefaultPort),
		LogLevel: getEnvStr(EnvLogLevel, DefaultLogLevel),

		RateLimitRequests: getEnvNum(EnvRateLimitRequests, DefaultRateLimitRequests),
		RateLimitWindow:   getEnvDuration(EnvRateLimitWindow, DefaultRateLimitWindow),

		RequestTimeout: getEnvDuration(EnvRequestTimeout, DefaultRequestTimeout),
		UploadTimeout:  getEnvDuration(EnvUploadTimeout, DefaultUploadTimeout),
		IdempotencyTTL: getEnvDuration(EnvIdempotencyTTL, DefaultIdempotencyTTL),
		MaxRequestSize: getEnvNum(EnvMaxRequestSize, DefaultMaxRequestSize),

		ReadTimeout:     getEnvDuration(EnvReadTimeout, DefaultReadTimeout),
		WriteTimeout:    getEnvDuration(EnvWriteTimeout, DefaultWriteTimeout),
		IdleTimeout:     getEnvDuration(EnvIdleTimeout, DefaultIdleTimeout),
		ShutdownTimeout: getEnvDuration(EnvShutdownTimeout, DefaultShutdownTimeout),

		JWTSecret:         getEnvStr(EnvJWTSecret, ""),
		JWTTTL:            getEnvDuration(EnvJWTTTL, DefaultJWTTTL),
		JWTIssuer:         getEnvStr(EnvJWTIssuer, DefaultJWTIssuer),
		GoogleUserInfoURL: getEnvStr(EnvGoogleUserInfoURL, DefaultGoogleUserInfoURL),

		RedisURL: getEnvStr(EnvRedisURL, ""),

		AllowSameDayTurnover: getEnvBool(EnvAllowSameDayTurnover, DefaultAllowSameDayTurnover),

		MaxImageSize:   getEnvNum(EnvMaxImageSize, DefaultMaxImageSize),
		MaxUploadSize:  getEnvNum(EnvMaxUploadSize, DefaultMaxUploadSize),
		S3Bucket:       getEnvStr(EnvS3Bucket, ""),
		S3Region:       getEnvStr(EnvS3Region, DefaultS3Region),
		S3Endpoint:     getEnvStr(EnvS3Endpoint, ""),
		LocalUploadDir: getEnvStr(EnvLocalUploadDir, DefaultLocalUploadDir),
		PublicBaseURL:  getEnvStr(EnvPublicBaseURL, ""),

		SMTPHost:     getEnvStr(EnvSMTPHost, ""),
		SMTPPort:     getEnvNum(EnvSMTPPort, DefaultSMTPPort),
		SMTPUsername: getEnvStr(EnvSMTPUsername, ""),
		SMTPPassword: getEnvStr(EnvSMTPPassword, ""),
		MailFrom:     getEnvStr(EnvMailFrom, DefaultMailFrom),
		FrontendURL:  getEnvStr(EnvFrontendURL, DefaultFrontendURL),

		BookingTopic:  getEnvStr(EnvBookingTopic, DefaultBookingTopic),
		UserTopic:     getEnvStr(EnvUserTopic, DefaultUserTopic),
		ConsumerGroup: getEnvStr(EnvConsumerGroup, DefaultConsumerGroup),
	}
}

func (cfg *Config) SetMongo() {
	cfg.Client.SetMongo(cfg.Log, cfg.MongoURI, cfg.MongoConnTimeout)
}

// SetRedis connects the shared Redis client when REDIS_URL is configured.
func (cfg *Config) SetRedis() {
	if cfg.RedisURL == "" {
		cfg.Log.Info("REDIS_URL not set, Redis-backed features fall back to in-memory stores")
		return
	}
	cfg.Client.SetRedis(cfg.Log, cfg.RedisURL, cfg.MongoConnTimeout)
}

func (cfg *Config) Validate(checks ...Check) error {
	var errors []string

	if port, err := strconv.Atoi(cfg.Port); err != nil || port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("Port must be between 1 and 65535, got: %s", cfg.Port))
	}

	if cfg.MongoURI == "" {
		errors = append(errors, "MongoURI cannot be empty")
	} else if len(cfg.MongoURI) < 10 || !regexp.MustCompile(`^mongodb(\+srv)?://`).MatchString(cfg.MongoURI) {
		errors = append(errors, fmt.Sprintf("MongoURI must start with 'mongodb://' or 'mongodb+srv://', got: %s", redactMongoURI(cfg.MongoURI)))
	}

	if cfg.MongoDatabaseName == "" {
		errors = append(errors, "MongoDatabaseName cannot be empty")
	}

	if cfg.MongoConnTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("MongoConnTimeout must be positive, got: %s", cfg.MongoConnTimeout))
	}
	if cfg.RateLimitWindow <= 0 {
		errors = append(errors, fmt.Sprintf("RateLimitWindow must be positive, got: %s", cfg.RateLimitWindow))
	}
	if cfg.RequestTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("RequestTimeout must be positive, got: %s", cfg.RequestTimeout))
	}
	if cfg.UploadTimeout < cfg.RequestTimeout {
		errors = append(errors, fmt.Sprintf("UploadTimeout (%s) must be >= RequestTimeout (%s)", cfg.UploadTimeout, cfg.RequestTimeout))
	}
	if cfg.IdempotencyTTL <= 0 {
		errors = append(errors, fmt.Sprintf("IdempotencyTTL must be positive, got: %s", cfg.IdempotencyTTL))
	}
	if cfg.ReadTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("ReadTimeout must be positive, got: %s", cfg.ReadTimeout))
	}
	if cfg.WriteTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("WriteTimeout must be positive, got: %s", cfg.WriteTimeout))
	}
	if cfg.IdleTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("IdleTimeout must be positive, got: %s", cfg.IdleTimeout))
	}
	if cfg.ShutdownTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("ShutdownTimeout must be positive, got: %s", cfg.ShutdownTimeout))
	}

	if cfg.RateLimitRequests <= 0 {
		errors = append(errors, fmt.Sprintf("RateLimitRequests must be positive, got: %d", cfg.RateLimitRequests))
	}
	if cfg.MaxRequestSize <= 0 {
		errors = append(errors, fmt.Sprintf("MaxRequestSize must be positive, got: %d", cfg.MaxRequestSize))
	}
	if cfg.MaxImageSize <= 0 {
		errors = append(errors, fmt.Sprintf("MaxImageSize must be positive, got: %d", cfg.MaxImageSize))
	}
	if cfg.MaxUploadSize < cfg.MaxImageSize {
		errors = append(errors, fmt.Sprintf("MaxUploadSize (%d) must be >= MaxImageSize (%d)", cfg.MaxUploadSize, cfg.MaxImageSize))
	}

	if cfg.RedisURL != "" && !strings.HasPrefix(cfg.RedisURL, "redis://") && !strings.HasPrefix(cfg.RedisURL, "rediss://") {
		errors = append(errors, "RedisURL must start with 'redis://' or 'rediss://'")
	}
	if cfg.S3Bucket == "" && cfg.LocalUploadDir == "" {
		errors = append(errors, "either S3Bucket or LocalUploadDir must be set")
	}

	if cfg.BookingTopic == "" {
		errors = append(errors, "BookingTopic cannot be empty")
	}
	if cfg.UserTopic == "" {
		errors = append(errors, "UserTopic cannot be empty")
	}

	for _, check := range checks {
		errors = append(errors, check(cfg)...)
	}

	if len(errors) > 0 {
		errMsg := "Configuration validation failed:\n"
		for i, err := range errors {
			errMsg += fmt.Sprintf("  %d. %s\n", i+1, err)
		}
		return fmt.Errorf("%s", errMsg)
	}

	return nil
}

func (cfg *Config) LogConfiguration() {
	cfg.Log.Info("Configuration loaded successfully",
		"mongo_uri", redactMongoURI(cfg.MongoURI),
		"mongo_database", cfg.MongoDatabaseName,
		"mongo_conn_timeout", cfg.MongoConnTimeout,
		"port", cfg.Port,
		"rate_limit_requests", cfg.RateLimitRequests,
		"rate_limit_window", cfg.RateLimitWindow,
		"request_timeout", cfg.RequestTimeout,
		"upload_timeout", cfg.UploadTimeout,
		"idempotency_ttl", cfg.IdempotencyTTL,
		"max_request_size", cfg.MaxRequestSize,
		"read_timeout", cfg.ReadTimeout,
		"write_timeout", cfg.WriteTimeout,
		"idle_timeout", cfg.IdleTimeout,
		"shutdown_timeout", cfg.ShutdownTimeout,
		"jwt_secret_set", cfg.JWTSecret != "",
		"jwt_ttl", cfg.JWTTTL,
		"redis_url", redactURLPassword(cfg.RedisURL),
		"allow_same_day_turnover", cfg.AllowSameDayTurnover,
		"max_image_size", cfg.MaxImageSize,
		"s3_bucket", cfg.S3Bucket,
		"s3_region", cfg.S3Region,
		"local_upload_dir", cfg.LocalUploadDir,
		"smtp_host", cfg.SMTPHost,
		"smtp_port", cfg.SMTPPort,
		"smtp_password_set", cfg.SMTPPassword != "",
		"booking_topic", cfg.BookingTopic,
		"user_topic", cfg.UserTopic,
	)
}

func redactMongoURI(uri string) string {
	credentialRegex := regexp.MustCompile(`(mongodb(\+srv)?://)[^:]+:[^@]+@`)
	return credentialRegex.ReplaceAllString(uri, "${1}***:***@")
}

func redactURLPassword(uri string) string {
	credentialRegex := regexp.MustCompile(`(rediss?://)([^:@/]*):[^@]+@`)
	return credentialRegex.ReplaceAllString(uri, "${1}${2}:***@")
}

func checkHTTPURL(raw string) error {
	if !strings.HasPrefix(raw, "https://") && !strings.HasPrefix(raw, "http://") {
		return fmt.Errorf("must be an http(s) URL, got: %s", raw)
	}
	return nil
}

func getEnvStr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvNum(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

func (cfg *Config) GracefulShutdown() {
	cfg.Client.GracefulShutdown(cfg.Log, cfg.ShutdownTimeout)
}

func NormalizePaginationLimit(limit int) int {
	if limit <= 0 {
		limit = 10
	} else if limit > DefaultPaginationLimit {
		limit = DefaultPaginationLimit
	}
	return limit
}

func NormalizeOffset(offset int64) int64 {
	return max(0, offset)
}
