package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	FeatureFlags FeatureFlagsConfig
	GCP          GCPConfig
	GCS          GCSConfig
	Proof        ProofConfig
	Usage        UsageConfig
	Billing      BillingConfig
	PubSub       PubSubConfig
	Worker       WorkerConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"SPECCOM_APP_ENV" required:"true"`
	Port         string `envconfig:"SPECCOM_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"SPECCOM_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"SPECCOM_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"SPECCOM_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"SPECCOM_DB_DSN"`
	Driver string `envconfig:"SPECCOM_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"SPECCOM_DB_HOST"`
	LegacyPort     int    `envconfig:"SPECCOM_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"SPECCOM_DB_USER"`
	LegacyPassword string `envconfig:"SPECCOM_DB_PASSWORD"`
	LegacyName     string `envconfig:"SPECCOM_DB_NAME"`
	LegacySSLMode  string `envconfig:"SPECCOM_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"SPECCOM_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"SPECCOM_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"SPECCOM_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"SPECCOM_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"SPECCOM_REDIS_URL" required:"true"`
	Address      string        `envconfig:"SPECCOM_REDIS_ADDR"`
	Password     string        `envconfig:"SPECCOM_REDIS_PASSWORD"`
	DB           int           `envconfig:"SPECCOM_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"SPECCOM_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"SPECCOM_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"SPECCOM_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SPECCOM_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SPECCOM_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"SPECCOM_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"SPECCOM_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"SPECCOM_JWT_EXPIRATION_MINUTES" required:"true"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"SPECCOM_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"SPECCOM_AUTO_MIGRATE" default:"false"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"SPECCOM_GCP_PROJECT_ID" required:"true"`
	CredentialsJSON        string `envconfig:"SPECCOM_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"SPECCOM_GOOGLE_APPLICATION_CREDENTIALS"`
}

type GCSConfig struct {
	BucketName        string        `envconfig:"SPECCOM_GCS_BUCKET_NAME" required:"true"`
	UploadURLExpiry   time.Duration `envconfig:"SPECCOM_GCS_UPLOAD_URL_EXPIRY" default:"15m"`
	DownloadURLExpiry time.Duration `envconfig:"SPECCOM_GCS_DOWNLOAD_URL_EXPIRY" default:"24h"`
}

// ProofConfig tunes capture-session validation.
type ProofConfig struct {
	MaxUploadMB     int           `envconfig:"SPECCOM_PROOF_MAX_UPLOAD_MB" default:"25"`
	SessionMaxAge   time.Duration `envconfig:"SPECCOM_PROOF_SESSION_MAX_AGE" default:"10m"`
	RequireGPS      bool          `envconfig:"SPECCOM_PROOF_REQUIRE_GPS" default:"true"`
	SnapshotTTL     time.Duration `envconfig:"SPECCOM_PROOF_SNAPSHOT_TTL" default:"1h"`
	DefaultPorts    int           `envconfig:"SPECCOM_PROOF_DEFAULT_PORTS" default:"2"`
	MaxPortsPerNode int           `envconfig:"SPECCOM_PROOF_MAX_PORTS_PER_NODE" default:"8"`
}

// UsageConfig tunes remaining-quantity alerting.
type UsageConfig struct {
	AlertThresholdPct float64 `envconfig:"SPECCOM_USAGE_ALERT_THRESHOLD_PCT" default:"0.15"`
	AlertThresholdAbs string  `envconfig:"SPECCOM_USAGE_ALERT_THRESHOLD_ABS"`
}

type BillingConfig struct {
	InvoicePrefix string `envconfig:"SPECCOM_BILLING_INVOICE_PREFIX" default:"SC"`
}

type PubSubConfig struct {
	UsageTopic        string `envconfig:"SPECCOM_PUBSUB_USAGE_TOPIC" required:"true"`
	UsageSubscription string `envconfig:"SPECCOM_PUBSUB_USAGE_SUBSCRIPTION" required:"true"`
}

type WorkerConfig struct {
	MetricsPort         string        `envconfig:"SPECCOM_WORKER_METRICS_PORT" default:"9090"`
	ShutdownGracePeriod time.Duration `envconfig:"SPECCOM_WORKER_SHUTDOWN_GRACE" default:"30s"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
