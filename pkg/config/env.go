package config

const (
	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvPort     = "PORT"
	EnvLogLevel = "LOG_LEVEL"

	EnvRateLimitRequests = "RATE_LIMIT_REQUESTS"
	EnvRateLimitWindow   = "RATE_LIMIT_WINDOW"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvUploadTimeout  = "UPLOAD_TIMEOUT"
	EnvIdempotencyTTL = "IDEMPOTENCY_TTL"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"

	EnvJWTSecret         = "JWT_SECRET"
	EnvJWTTTL            = "JWT_TTL"
	EnvJWTIssuer         = "JWT_ISSUER"
	EnvGoogleUserInfoURL = "GOOGLE_USERINFO_URL"

	EnvRedisURL = "REDIS_URL"

	EnvAllowSameDayTurnover = "BOOKING_ALLOW_SAME_DAY_TURNOVER"

	EnvMaxImageSize   = "MAX_IMAGE_SIZE"
	EnvMaxUploadSize  = "MAX_UPLOAD_SIZE"
	EnvS3Bucket       = "S3_BUCKET"
	EnvS3Region       = "S3_REGION"
	EnvS3Endpoint     = "S3_ENDPOINT"
	EnvLocalUploadDir = "LOCAL_UPLOAD_DIR"
	EnvPublicBaseURL  = "PUBLIC_BASE_URL"

	EnvSMTPHost     = "SMTP_HOST"
	EnvSMTPPort     = "SMTP_PORT"
	EnvSMTPUsername = "SMTP_USERNAME"
	EnvSMTPPassword = "SMTP_PASSWORD"
	EnvMailFrom     = "MAIL_FROM"
	EnvFrontendURL  = "FRONTEND_URL"

	EnvBookingTopic  = "KAFKA_BOOKING_TOPIC"
	EnvUserTopic     = "KAFKA_USER_TOPIC"
	EnvConsumerGroup = "KAFKA_CONSUMER_GROUP"
)
