package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cast"
)

// Config holds the console's runtime settings.
type Config struct {
	ServiceName string
	LogLevel    string

	APIBaseURL     string
	RequestTimeout time.Duration
	SessionFile    string

	CacheBackend string // "memory", "redis" or "mongo"
	CacheTTL     time.Duration

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	MongoURI      string
	MongoDatabase string

	MQTTBrokerURL string
	MQTTTopic     string
	MQTTClientID  string

	SearchDebounce time.Duration

	FleetSize    int
	SeedEmail    string
	SeedPassword string
}

// Load reads .env (if present) and the environment.
func Load() Config {
	_ = godotenv.Load(".env")

	cfg := Config{}

	cfg.ServiceName = cast.ToString(getOrReturnDefault("SERVICE_NAME", "fleetadmin"))
	cfg.LogLevel = cast.ToString(getOrReturnDefault("LOG_LEVEL", "info"))

	cfg.APIBaseURL = cast.ToString(getOrReturnDefault("API_BASE_URL", "http://localhost:5000/api"))
	cfg.RequestTimeout = cast.ToDuration(getOrReturnDefault("REQUEST_TIMEOUT", "15s"))
	cfg.SessionFile = cast.ToString(getOrReturnDefault("SESSION_FILE", defaultSessionFile()))

	cfg.CacheBackend = cast.ToString(getOrReturnDefault("CACHE_BACKEND", "memory"))
	cfg.CacheTTL = cast.ToDuration(getOrReturnDefault("CACHE_TTL", "60s"))

	cfg.RedisAddr = cast.ToString(getOrReturnDefault("REDIS_ADDR", "localhost:6379"))
	cfg.RedisPassword = cast.ToString(getOrReturnDefault("REDIS_PASSWORD", ""))
	cfg.RedisDB = cast.ToInt(getOrReturnDefault("REDIS_DB", 0))

	cfg.MongoURI = cast.ToString(getOrReturnDefault("MONGO_URI", "mongodb://localhost:27017"))
	cfg.MongoDatabase = cast.ToString(getOrReturnDefault("MONGO_DB", "fleetadmin"))

	cfg.MQTTBrokerURL = cast.ToString(getOrReturnDefault("MQTT_BROKER_URL", ""))
	cfg.MQTTTopic = cast.ToString(getOrReturnDefault("MQTT_TOPIC", "fleetadmin/invalidate"))
	cfg.MQTTClientID = cast.ToString(getOrReturnDefault("MQTT_CLIENT_ID", ""))

	cfg.SearchDebounce = cast.ToDuration(getOrReturnDefault("SEARCH_DEBOUNCE", "300ms"))

	cfg.FleetSize = cast.ToInt(getOrReturnDefault("FLEET_SIZE", 10))
	cfg.SeedEmail = cast.ToString(getOrReturnDefault("SEED_ADMIN_EMAIL", ""))
	cfg.SeedPassword = cast.ToString(getOrReturnDefault("SEED_ADMIN_PASSWORD", ""))

	return cfg
}

func getOrReturnDefault(key string, defaultValue interface{}) interface{} {
	value := os.Getenv(key)
	if value != "" {
		return value
	}
	return defaultValue
}

func defaultSessionFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "fleetadmin", "session.json")
}
