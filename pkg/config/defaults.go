package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "lala_rental"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPort     = "8080"
	DefaultLogLevel = "info"

	DefaultRateLimitRequests = 60
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultRequestTimeout = 30 * time.Second
	DefaultUploadTimeout  = 2 * time.Minute
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 30 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultPaginationLimit = 100

	DefaultJWTTTL            = 24 * time.Hour
	DefaultJWTIssuer         = "lala-rental"
	DefaultGoogleUserInfoURL = "https://www.googleapis.com/oauth2/v3/userinfo"

	DefaultAllowSameDayTurnover = false

	DefaultMaxImageSize   = 5 * 1024 * 1024 // 5MB
	DefaultMaxUploadSize  = 25 * 1024 * 1024
	DefaultLocalUploadDir = "uploads"
	DefaultS3Region       = "us-east-1"

	DefaultSMTPPort    = 587
	DefaultMailFrom    = "Lala Rental <no-reply@lala-rental.com>"
	DefaultFrontendURL = "http://localhost:3000"

	DefaultBookingTopic  = "lala.bookings"
	DefaultUserTopic     = "lala.users"
	DefaultConsumerGroup = "lala-notifier"
)
