package config

import (
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// APIConfig configures the HTTP API binary. The token settings are carried
// here and handed to the token manager explicitly; business logic never
// reads the environment.
type APIConfig struct {
	DBDSN     string `envconfig:"DB_DSN" required:"true"`
	Port      string `envconfig:"PORT" default:"8080"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"json"`

	TokenSecret   string        `envconfig:"TOKEN_SECRET" required:"true"`
	TokenLifetime time.Duration `envconfig:"TOKEN_LIFETIME" default:"30m"`
	TokenIssuer   string        `envconfig:"TOKEN_ISSUER" default:"rcsapi"`

	DBPoolMaxConns          int32         `envconfig:"DB_POOL_MAX_CONNS" default:"0"`
	DBPoolMinConns          int32         `envconfig:"DB_POOL_MIN_CONNS" default:"0"`
	DBPoolMaxConnLifetime   time.Duration `envconfig:"DB_POOL_MAX_CONN_LIFETIME"`
	DBPoolMaxConnIdleTime   time.Duration `envconfig:"DB_POOL_MAX_CONN_IDLE_TIME"`
	DBPoolHealthCheckPeriod time.Duration `envconfig:"DB_POOL_HEALTH_CHECK_PERIOD"`
}

// FeedConfig configures the delivery-event feed consumer.
type FeedConfig struct {
	DBDSN       string `envconfig:"DB_DSN" required:"true"`
	Port        string `envconfig:"PORT" default:"8080"`
	MetricsPort string `envconfig:"METRICS_PORT" default:"9090"`
	LogFormat   string `envconfig:"LOG_FORMAT" default:"json"`

	AWSRegion          string `envconfig:"AWS_REGION" required:"true"`
	FeedQueueURL       string `envconfig:"FEED_QUEUE_URL" required:"true"`
	LocalstackEndpoint string `envconfig:"LOCALSTACK_ENDPOINT"`
	SQSWaitTime        int32  `envconfig:"SQS_WAIT_TIME" default:"20"`
	SQSMaxMsgs         int32  `envconfig:"SQS_MAX_MSGS" default:"10"`
	SQSVizTimeout      int32  `envconfig:"SQS_VISIBILITY_TIMEOUT" default:"60"`

	FeedConcurrency int     `envconfig:"FEED_CONCURRENCY" default:"8"`
	FeedInsertRPS   float64 `envconfig:"FEED_INSERT_RPS" default:"50"`
	FeedInsertBurst int     `envconfig:"FEED_INSERT_BURST" default:"100"`

	DBPoolMaxConns          int32         `envconfig:"DB_POOL_MAX_CONNS" default:"0"`
	DBPoolMinConns          int32         `envconfig:"DB_POOL_MIN_CONNS" default:"0"`
	DBPoolMaxConnLifetime   time.Duration `envconfig:"DB_POOL_MAX_CONN_LIFETIME"`
	DBPoolMaxConnIdleTime   time.Duration `envconfig:"DB_POOL_MAX_CONN_IDLE_TIME"`
	DBPoolHealthCheckPeriod time.Duration `envconfig:"DB_POOL_HEALTH_CHECK_PERIOD"`
}

// SeedConfig configures the schema bootstrap / provisioning binary.
type SeedConfig struct {
	DBDSN     string `envconfig:"DB_DSN" required:"true"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"text"`
}

// MockFeedConfig configures the local-dev feed publisher.
type MockFeedConfig struct {
	AWSRegion          string `envconfig:"AWS_REGION" required:"true"`
	FeedQueueURL       string `envconfig:"FEED_QUEUE_URL" required:"true"`
	LocalstackEndpoint string `envconfig:"LOCALSTACK_ENDPOINT"`
	LogFormat          string `envconfig:"LOG_FORMAT" default:"text"`
}

func LoadAPI() APIConfig {
	var cfg APIConfig
	load(&cfg)
	return cfg
}

func LoadFeed() FeedConfig {
	var cfg FeedConfig
	load(&cfg)
	return cfg
}

func LoadSeed() SeedConfig {
	var cfg SeedConfig
	load(&cfg)
	return cfg
}

func LoadMockFeed() MockFeedConfig {
	var cfg MockFeedConfig
	load(&cfg)
	return cfg
}

func load(cfg any) {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()
	if err := envconfig.Process("", cfg); err != nil {
		panic(err)
	}
}
