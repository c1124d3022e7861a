package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	Service       ServiceConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	FeatureFlags  FeatureFlagsConfig
	Eventing      EventingConfig
	GCP           GCPConfig
	PubSub        PubSubConfig
	BigQuery      BigQueryConfig
	Outbox        OutboxConfig
	Dashboard     DashboardConfig
	Cron          CronConfig
	PaymentIntake PaymentIntakeConfig
	AuthRateLimit AuthRateLimitConfig
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
	Env          string `envconfig:"VELORA_APP_ENV" required:"true"`
	Port         string `envconfig:"VELORA_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"VELORA_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"VELORA_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"VELORA_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"VELORA_DB_DSN"`
	Driver string `envconfig:"VELORA_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"VELORA_DB_HOST"`
	LegacyPort     int    `envconfig:"VELORA_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"VELORA_DB_USER"`
	LegacyPassword string `envconfig:"VELORA_DB_PASSWORD"`
	LegacyName     string `envconfig:"VELORA_DB_NAME"`
	LegacySSLMode  string `envconfig:"VELORA_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"VELORA_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"VELORA_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"VELORA_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"VELORA_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"VELORA_REDIS_URL" required:"true"`
	Address      string        `envconfig:"VELORA_REDIS_ADDR"`
	Password     string        `envconfig:"VELORA_REDIS_PASSWORD"`
	DB           int           `envconfig:"VELORA_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"VELORA_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"VELORA_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"VELORA_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"VELORA_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"VELORA_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"VELORA_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"VELORA_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"VELORA_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"VELORA_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"VELORA_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"VELORA_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"VELORA_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"VELORA_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"VELORA_ARGON_KEY_LEN" default:"32"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"VELORA_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"VELORA_AUTO_MIGRATE" default:"false"`
}

type EventingConfig struct {
	OutboxIdempotencyTTL time.Duration `envconfig:"VELORA_EVENTING_IDEMPOTENCY_TTL" default:"720h"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"VELORA_GCP_PROJECT_ID" required:"true"`
	CredentialsJSON        string `envconfig:"VELORA_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"VELORA_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	BookingsTopic            string `envconfig:"VELORA_PUBSUB_BOOKINGS_TOPIC" required:"true"`
	DashboardSubscription    string `envconfig:"VELORA_PUBSUB_DASHBOARD_SUBSCRIPTION" required:"true"`
	NotificationSubscription string `envconfig:"VELORA_PUBSUB_NOTIFICATION_SUBSCRIPTION" required:"true"`
	AnalyticsSubscription    string `envconfig:"VELORA_PUBSUB_ANALYTICS_SUBSCRIPTION" required:"true"`
}

type BigQueryConfig struct {
	Dataset            string `envconfig:"VELORA_BIGQUERY_DATASET" default:"velora"`
	BookingEventsTable string `envconfig:"VELORA_BIGQUERY_BOOKING_EVENTS_TABLE" default:"booking_events"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"VELORA_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"VELORA_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"VELORA_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

type DashboardConfig struct {
	ProjectionTTL   time.Duration `envconfig:"VELORA_DASHBOARD_PROJECTION_TTL" default:"24h"`
	RecentLimit     int           `envconfig:"VELORA_DASHBOARD_RECENT_LIMIT" default:"10"`
	UpcomingLimit   int           `envconfig:"VELORA_DASHBOARD_UPCOMING_LIMIT" default:"10"`
	StreamKeepAlive time.Duration `envconfig:"VELORA_DASHBOARD_STREAM_KEEPALIVE" default:"25s"`
}

type CronConfig struct {
	Interval                  time.Duration `envconfig:"VELORA_CRON_INTERVAL" default:"1h"`
	LockTTL                   time.Duration `envconfig:"VELORA_CRON_LOCK_TTL" default:"2h"`
	ReconcileHorizonDays      int           `envconfig:"VELORA_CRON_RECONCILE_HORIZON_DAYS" default:"365"`
	OutboxRetentionDays       int           `envconfig:"VELORA_CRON_OUTBOX_RETENTION_DAYS" default:"30"`
	NotificationRetentionDays int           `envconfig:"VELORA_CRON_NOTIFICATION_RETENTION_DAYS" default:"90"`
}

type PaymentIntakeConfig struct {
	SigningSecret string `envconfig:"VELORA_PAYMENT_WEBHOOK_SECRET" required:"true"`
}

type AuthRateLimitConfig struct {
	LoginWindow     time.Duration `envconfig:"VELORA_AUTH_RATE_LOGIN_WINDOW" default:"5m"`
	LoginIPLimit    int           `envconfig:"VELORA_AUTH_RATE_LOGIN_IP_LIMIT" default:"20"`
	LoginEmailLimit int           `envconfig:"VELORA_AUTH_RATE_LOGIN_EMAIL_LIMIT" default:"5"`
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
