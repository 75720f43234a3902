package utils

import (
	"os"
	"time"

	"github.com/RichardKnop/machinery/v1/log"
	"github.com/joho/godotenv"
)

func GetEnvVar(envVar string) string {
	value, found := os.LookupEnv(envVar)
	if !found {
		panic("Env var '" + envVar + "' not specified")
	}
	return value
}

func GetEnvVarWithDefault(envVar, defaultValue string) string {
	value, found := os.LookupEnv(envVar)
	if !found {
		return defaultValue
	}
	return value
}

type Config struct {
	AppMode       string
	StorageMode   string
	ServerPort    string
	MongoUrl      string
	MongoDbName   string
	RedisUrl      string
	CacheTTL      time.Duration
	NotifyMode    string
	NotifyChannel string
	BrokerUrl     string
}

// LoadConfig reads the environment, after loading a .env file if one exists.
// Connection settings are only required by the modes that use them.
func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.WARNING.Printf("Failed to load .env file: %s", err.Error())
	}

	cfg := &Config{
		AppMode:       GetEnvVarWithDefault("APP_MODE", "server"),
		StorageMode:   GetEnvVarWithDefault("STORAGE_MODE", "inmemory"),
		ServerPort:    GetEnvVarWithDefault("SERVER_PORT", "8080"),
		MongoUrl:      GetEnvVarWithDefault("MONGO_URL", ""),
		MongoDbName:   GetEnvVarWithDefault("MONGO_DBNAME", ""),
		RedisUrl:      GetEnvVarWithDefault("REDIS_URL", ""),
		NotifyMode:    GetEnvVarWithDefault("NOTIFY_MODE", "log"),
		NotifyChannel: GetEnvVarWithDefault("NOTIFY_CHANNEL", "liveblog-notifications"),
		BrokerUrl:     GetEnvVarWithDefault("BROKER_URL", "redis://localhost:6379"),
		CacheTTL:      time.Hour,
	}
	if raw := GetEnvVarWithDefault("CACHE_TTL", ""); raw != "" {
		ttl, err := time.ParseDuration(raw)
		if err != nil {
			panic("Invalid 'CACHE_TTL': " + err.Error())
		}
		cfg.CacheTTL = ttl
	}
	return cfg
}
