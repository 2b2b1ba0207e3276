package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// DevJWTSecret signs tokens when ENV=dev and no JWT_SECRET is set.
// It is public knowledge and must never be used outside local development.
const DevJWTSecret = "voterreg-insecure-dev-secret"

// ErrMissingJWTSecret is returned when no signing secret is configured
// outside of development.
var ErrMissingJWTSecret = errors.New("JWT_SECRET is required")

type Config struct {
	Env                string
	ServerPort         int
	LogLevel           string
	CORSAllowedOrigins []string
	Database           DatabaseConfig
	Events             EventsConfig
	Storage            StorageConfig

	jwtSecret string
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	UseSSL   bool
}

// EventsConfig selects the broker voter events are published to.
// An empty Backend disables publishing.
type EventsConfig struct {
	Backend  string
	Channel  string
	RabbitMQ RabbitMQConfig
	PubSub   PubSubConfig
}

type RabbitMQConfig struct {
	URL             string
	QueueDurable    bool
	QueueAutoDelete bool
	PrefetchCount   int
}

type PubSubConfig struct {
	ProjectID          string
	CredentialsFile    string
	SubscriptionSuffix string
}

// StorageConfig selects the object store used for roster exports.
// An empty Backend disables exports.
type StorageConfig struct {
	Backend string
	Minio   MinioConfig
	GCS     GCSConfig
}

type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

type GCSConfig struct {
	Bucket          string
	ProjectID       string
	CredentialsFile string
}

func LoadConfig() Config {
	env := getEnv("ENV", "production")
	if env == "dev" {
		godotenv.Load()
	}

	dbConfig := DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnvInt("DB_PORT", 5432),
		User:     getEnv("DB_USER", "voterreg"),
		Password: getEnv("DB_PASSWORD", "password"),
		DBName:   getEnv("DB_NAME", "voterreg"),
		UseSSL:   getEnvBool("DB_USE_SSL", false),
	}

	events := EventsConfig{
		Backend: strings.ToLower(getEnv("MQ_BACKEND", "")),
		Channel: getEnv("EVENTS_CHANNEL", "voter-events"),
		RabbitMQ: RabbitMQConfig{
			URL:             getEnv("RABBITMQ_URL", ""),
			QueueDurable:    getEnvBool("RABBITMQ_QUEUE_DURABLE", true),
			QueueAutoDelete: getEnvBool("RABBITMQ_QUEUE_AUTO_DELETE", false),
			PrefetchCount:   getEnvInt("RABBITMQ_PREFETCH_COUNT", 0),
		},
		PubSub: PubSubConfig{
			ProjectID:          getEnv("PUBSUB_PROJECT_ID", ""),
			CredentialsFile:    getEnv("PUBSUB_CREDENTIALS_FILE", ""),
			SubscriptionSuffix: getEnv("PUBSUB_SUBSCRIPTION_SUFFIX", "-sub"),
		},
	}

	storage := StorageConfig{
		Backend: strings.ToLower(getEnv("STORAGE_BACKEND", "")),
		Minio: MinioConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", "localhost:9000"),
			AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey: getEnv("MINIO_SECRET_KEY", ""),
			Bucket:    getEnv("MINIO_BUCKET", "voterreg"),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
		},
		GCS: GCSConfig{
			Bucket:          getEnv("GCS_BUCKET", ""),
			ProjectID:       getEnv("GCS_PROJECT_ID", ""),
			CredentialsFile: getEnv("GCS_CREDENTIALS_FILE", ""),
		},
	}

	return Config{
		Env:                env,
		ServerPort:         getEnvInt("SERVER_PORT", 8080),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		CORSAllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
		Database:           dbConfig,
		Events:             events,
		Storage:            storage,
		jwtSecret:          strings.TrimSpace(getEnv("JWT_SECRET", "")),
	}
}

// IsDev reports whether the process runs in local development mode.
func (c Config) IsDev() bool {
	return c.Env == "dev"
}

// JWTSecret returns the token signing secret. Outside of development a
// missing secret is a configuration error; in development the insecure
// DevJWTSecret is returned and fallback is reported as true.
func (c Config) JWTSecret() (secret string, fallback bool, err error) {
	if c.jwtSecret != "" {
		return c.jwtSecret, false, nil
	}
	if c.IsDev() {
		return DevJWTSecret, true, nil
	}
	return "", false, ErrMissingJWTSecret
}

// WithJWTSecret returns a copy of c using the given signing secret.
func (c Config) WithJWTSecret(secret string) Config {
	c.jwtSecret = strings.TrimSpace(secret)
	return c
}

// PostgresURL builds the lib/pq connection URL for the database settings.
func (c Config) PostgresURL() string {
	sslmode := "disable"
	if c.Database.UseSSL {
		sslmode = "require"
	}

	u := &url.URL{
		Scheme: "postgres",
		Host:   fmt.Sprintf("%s:%d", c.Database.Host, c.Database.Port),
		User:   url.UserPassword(c.Database.User, c.Database.Password),
		Path:   c.Database.DBName,
	}
	q := u.Query()
	q.Set("sslmode", sslmode)
	u.RawQuery = q.Encode()
	return u.String()
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if valueStr, exists := os.LookupEnv(key); exists {
		var value int
		fmt.Sscanf(valueStr, "%d", &value)
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	switch strings.ToLower(strings.TrimSpace(valueStr)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return defaultValue
	}
}

func getEnvList(key string, defaultValue []string) []string {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
