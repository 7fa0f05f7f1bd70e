package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StoreFirestore = "firestore"
	StoreMemory    = "memory"

	AuthJWT      = "jwt"
	AuthFirebase = "firebase"
)

type Config struct {
	ServerPort  string
	Environment string
	LogLevel    string

	StoreDriver          string
	FirebaseProject      string
	ServiceAccountJSON   string
	ServiceAccountPath   string
	StorageBucket        string
	AuthProvider         string
	FirebaseWebAPIKey    string
	JWTSecret            string
	JWTExpiry            int64
	RateLimitRequests    int
	RateLimitWindow      time.Duration
	MessageRatePerMinute int
	ListingAutoApprove   bool
	DefaultPoints        int
	CORSOrigins          []string
}

func Load() (*Config, error) {
	godotenv.Load()

	config := &Config{
		ServerPort:           getEnv("SERVER_PORT", "8080"),
		Environment:          getEnv("ENVIRONMENT", "development"),
		LogLevel:             getEnv("LOG_LEVEL", ""),
		StoreDriver:          getEnv("STORE_DRIVER", StoreFirestore),
		FirebaseProject:      getEnv("FIREBASE_PROJECT_ID", ""),
		ServiceAccountJSON:   getEnv("FIREBASE_SERVICE_ACCOUNT_JSON", ""),
		ServiceAccountPath:   getEnv("FIREBASE_SERVICE_ACCOUNT_PATH", ""),
		StorageBucket:        getEnv("STORAGE_BUCKET", ""),
		AuthProvider:         getEnv("AUTH_PROVIDER", AuthJWT),
		FirebaseWebAPIKey:    getEnv("FIREBASE_WEB_API_KEY", ""),
		JWTSecret:            getEnv("JWT_SECRET", "your-secret-key"),
		JWTExpiry:            getEnvAsInt64("JWT_EXPIRY", 7*24*60*60), // 7 days
		RateLimitRequests:    int(getEnvAsInt64("RATE_LIMIT_REQUESTS", 100)),
		RateLimitWindow:      getEnvAsDuration("RATE_LIMIT_WINDOW", 15*time.Minute),
		MessageRatePerMinute: int(getEnvAsInt64("MESSAGE_RATE_PER_MINUTE", 10)),
		ListingAutoApprove:   getEnvAsBool("LISTING_AUTO_APPROVE", false),
		DefaultPoints:        int(getEnvAsInt64("DEFAULT_POINTS", 100)),
		CORSOrigins:          getEnvAsList("CORS_ORIGINS", []string{"*"}),
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate rejects combinations the server cannot start with.
func (c *Config) Validate() error {
	switch c.StoreDriver {
	case StoreFirestore:
		if c.FirebaseProject == "" {
			return fmt.Errorf("FIREBASE_PROJECT_ID is required for the firestore store driver")
		}
	case StoreMemory:
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}

	switch c.AuthProvider {
	case AuthJWT:
		if c.Environment == "production" && c.JWTSecret == "your-secret-key" {
			return fmt.Errorf("JWT_SECRET must be set in production")
		}
	case AuthFirebase:
		if c.FirebaseProject == "" {
			return fmt.Errorf("FIREBASE_PROJECT_ID is required for the firebase auth provider")
		}
	default:
		return fmt.Errorf("unknown AUTH_PROVIDER %q", c.AuthProvider)
	}

	if c.RateLimitRequests <= 0 || c.RateLimitWindow <= 0 {
		return fmt.Errorf("rate limit requests and window must be positive")
	}
	if c.DefaultPoints < 0 {
		return fmt.Errorf("DEFAULT_POINTS must not be negative")
	}

	return nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
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

func getEnvAsBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		boolValue, err := strconv.ParseBool(value)
		if err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		d, err := time.ParseDuration(value)
		if err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	value, exists := os.LookupEnv(key)
	if !exists || strings.TrimSpace(value) == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
