package config

// EnvPrefix is passed to envconfig; individual fields carry explicit
// envconfig tags so the prefix only matters for unannotated fields.
const EnvPrefix = "SPECCOM"

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

const (
	EnvAppEnv   = "SPECCOM_APP_ENV"
	EnvPort     = "SPECCOM_APP_PORT"
	EnvLogLevel = "SPECCOM_LOG_LEVEL"

	EnvDBDSN      = "SPECCOM_DB_DSN"
	EnvDBHost     = "SPECCOM_DB_HOST"
	EnvDBPort     = "SPECCOM_DB_PORT"
	EnvDBUser     = "SPECCOM_DB_USER"
	EnvDBPassword = "SPECCOM_DB_PASSWORD"
	EnvDBName     = "SPECCOM_DB_NAME"

	EnvRedisURL = "SPECCOM_REDIS_URL"

	EnvJWTSecret  = "SPECCOM_JWT_SECRET"
	EnvJWTIssuer  = "SPECCOM_JWT_ISSUER"
	EnvJWTExpMins = "SPECCOM_JWT_EXPIRATION_MINUTES"

	EnvGCPProjectID = "SPECCOM_GCP_PROJECT_ID"

	EnvGCSBucket         = "SPECCOM_GCS_BUCKET_NAME"
	EnvGCSUploadExpiry   = "SPECCOM_GCS_UPLOAD_URL_EXPIRY"
	EnvGCSDownloadExpiry = "SPECCOM_GCS_DOWNLOAD_URL_EXPIRY"

	EnvPubSubUsageTopic        = "SPECCOM_PUBSUB_USAGE_TOPIC"
	EnvPubSubUsageSubscription = "SPECCOM_PUBSUB_USAGE_SUBSCRIPTION"
)

// legacyDBEnvVars are the discrete connection vars accepted when
// SPECCOM_DB_DSN is not set.
var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
