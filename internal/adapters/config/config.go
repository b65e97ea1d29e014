package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
)

type RepositoryConfig struct {
	Kind     string
	JSONPath string
}

type PostgresConfig struct {
	Host           string
	Port           string
	Database       string
	User           string
	Password       string
	ConnectTimeout time.Duration
	MaxConns       int
}

// URL renders a keyword/value free DSN accepted by pgx.
func (c PostgresConfig) URL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.User, c.Password, c.Host, c.Port, c.Database)
}

type MongoConfig struct {
	URI                    string
	Database               string
	Timeout                time.Duration
	MaxPoolSize            uint64
	MinPoolSize            uint64
	ConnectTimeout         time.Duration
	ServerSelectionTimeout time.Duration
}

type RedisConfig struct {
	URL      string
	Password string
	DB       int
}

type RabbitMQConfig struct {
	URL             string
	MaxRetries      int
	RetryDelay      time.Duration
	ExchangeConfigs []ExchangeConfig
}

type ExchangeConfig struct {
	Name       string
	Type       string // direct, topic, fanout, headers
	Durable    bool
	AutoDelete bool
}

type HTTPConfig struct {
	Port          string
	BindInterface string
}

type LoggerConfig struct {
	Endpoint     string
	ServiceName  string
	IsProduction bool
}

type Config struct {
	Repository RepositoryConfig
	Postgres   PostgresConfig
	Mongo      MongoConfig
	Redis      RedisConfig
	RabbitMQ   RabbitMQConfig
	HTTP       HTTPConfig
	Logger     LoggerConfig
}

func NewConfig() *Config {
	_ = godotenv.Load()
	return &Config{
		Repository: RepositoryConfig{
			Kind:     getStringEnv("REPOSITORY_KIND", "json"),
			JSONPath: getStringEnv("JSON_FILE_PATH", "data/products.json"),
		},
		Postgres: PostgresConfig{
			Host:           getStringEnv("POSTGRES_HOST", "localhost"),
			Port:           getStringEnv("POSTGRES_PORT", "5432"),
			Database:       getStringEnv("POSTGRES_DB", "shoplist"),
			User:           getStringEnv("POSTGRES_USER", "shoplist_user"),
			Password:       getStringEnv("POSTGRES_PASSWORD", "shoplist_pass"),
			ConnectTimeout: time.Duration(getIntEnv("POSTGRES_CONNECT_TIMEOUT", 3)) * time.Second,
			MaxConns:       getIntEnv("POSTGRES_MAX_CONNS", 4),
		},
		Mongo: MongoConfig{
			URI:                    getStringEnv("MONGO_URI", "mongodb://localhost:27017"),
			Database:               getStringEnv("MONGO_DATABASE", "shoplist"),
			Timeout:                time.Duration(getIntEnv("MONGO_TIMEOUT", 10)) * time.Second,
			MaxPoolSize:            uint64(getIntEnv("MONGO_MAX_POOL_SIZE", 100)),
			MinPoolSize:            uint64(getIntEnv("MONGO_MIN_POOL_SIZE", 10)),
			ConnectTimeout:         time.Duration(getIntEnv("MONGO_CONNECT_TIMEOUT", 10)) * time.Second,
			ServerSelectionTimeout: time.Duration(getIntEnv("MONGO_SERVER_SELECTION_TIMEOUT", 5)) * time.Second,
		},
		Redis: RedisConfig{
			URL:      getStringEnv("REDIS_URL", "redis://localhost:6379"),
			Password: getStringEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 0),
		},
		RabbitMQ: RabbitMQConfig{
			URL:        getStringEnv("RABBITMQ_URL", "amqp://localhost:5672"),
			MaxRetries: getIntEnv("RABBITMQ_MAX_RETRIES", 3),
			RetryDelay: time.Duration(getIntEnv("RABBITMQ_RETRY_DELAY", 1)) * time.Second,
			ExchangeConfigs: []ExchangeConfig{
				{
					Name:       getStringEnv("RABBITMQ_EXCHANGE_NAME", "exchange.product"),
					Type:       getStringEnv("RABBITMQ_EXCHANGE_TYPE", "direct"),
					Durable:    getBoolEnv("RABBITMQ_EXCHANGE_DURABLE", true),
					AutoDelete: getBoolEnv("RABBITMQ_EXCHANGE_AUTO_DELETE", false),
				},
			},
		},
		HTTP: HTTPConfig{
			Port:          getStringEnv("HTTP_PORT", "8080"),
			BindInterface: getStringEnv("HTTP_BIND_INTERFACE", "0.0.0.0"),
		},
		Logger: LoggerConfig{
			Endpoint:     getStringEnv("OTEL_ENDPOINT", "localhost:4317"),
			ServiceName:  getStringEnv("OTEL_SERVICE_NAME", "shoplist"),
			IsProduction: getBoolEnv("IS_PRODUCTION", false),
		},
	}
}
