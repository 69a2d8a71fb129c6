package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort  string
	Environment string

	DBDriver    string
	DatabaseURL string

	AuthProvider              string
	FirebaseProject           string
	FirebaseServiceAccount    string
	FirebaseServiceAccountRaw string
	JWTSecret                 string
	JWTExpiry                 int64

	LogLevel string
	LogFile  string

	WorkerCount          int
	WorkerQueueSize      int
	MessageRatePerMinute int
	AllowedOrigins       []string
}

func Load() (*Config, error) {
	godotenv.Load()

	config := &Config{
		ServerPort:  getEnv("SERVER_PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "production"),

		DBDriver:    strings.ToLower(getEnv("DB_DRIVER", "sqlite")),
		DatabaseURL: getEnv("DATABASE_URL", "rentalhub.db"),

		AuthProvider:              strings.ToLower(getEnv("AUTH_PROVIDER", "jwt")),
		FirebaseProject:           getEnv("FIREBASE_PROJECT_ID", ""),
		FirebaseServiceAccount:    getEnv("FIREBASE_SERVICE_ACCOUNT_PATH", ""),
		FirebaseServiceAccountRaw: getEnv("FIREBASE_SERVICE_ACCOUNT_JSON", ""),
		JWTSecret:                 getEnv("JWT_SECRET", "your-secret-key"),
		JWTExpiry:                 getEnvAsInt64("JWT_EXPIRY", 24*60*60), // 24 hours

		LogLevel: getEnv("LOG_LEVEL", "info"),
		LogFile:  getEnv("LOG_FILE", ""),

		WorkerCount:          int(getEnvAsInt64("WORKER_COUNT", 4)),
		WorkerQueueSize:      int(getEnvAsInt64("WORKER_QUEUE_SIZE", 256)),
		MessageRatePerMinute: int(getEnvAsInt64("MESSAGE_RATE_PER_MINUTE", 30)),
		AllowedOrigins:       getEnvAsList("WS_ALLOWED_ORIGINS"),
	}

	if err := config.validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// IsDevelopment gates the dev token route and the default JWT secret.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func (c *Config) validate() error {
	switch c.DBDriver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}

	switch c.AuthProvider {
	case "jwt":
		if !c.IsDevelopment() && (c.JWTSecret == "" || c.JWTSecret == "your-secret-key") {
			return fmt.Errorf("JWT_SECRET must be set unless ENVIRONMENT=development")
		}
	case "firebase":
		if c.FirebaseProject == "" {
			return fmt.Errorf("FIREBASE_PROJECT_ID is required when AUTH_PROVIDER=firebase")
		}
	default:
		return fmt.Errorf("unsupported AUTH_PROVIDER %q", c.AuthProvider)
	}

	if c.WorkerCount <= 0 {
		return fmt.Errorf("WORKER_COUNT must be positive")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value, exists := os.LookupEnv(key); exists {
		intValue, err := strconv.ParseInt(value, 10, 64)
		if err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsList(key string) []string {
	value := getEnv(key, "")
	if value == "" {
		return nil
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
