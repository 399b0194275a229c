package config

import (
	"os"
	"strconv"
)

type Config struct {
	MongoURI          string
	MongoDatabase     string
	RedisAddr         string
	Port              string
	AdminUsername     string
	AdminSecret       string
	JWTSecret         string
	HistoryCacheLimit int
}

func Load() *Config {
	return &Config{
		MongoURI:          getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase:     getEnv("MONGO_DATABASE", "gatechat"),
		RedisAddr:         getEnv("REDIS_ADDR", "localhost:6379"),
		Port:              getEnv("PORT", "3000"),
		AdminUsername:     getEnv("ADMIN_USERNAME", "admin"),
		AdminSecret:       getEnv("ADMIN_SECRET", "change-me"),
		JWTSecret:         getEnv("JWT_SECRET", "super-secret-key-change-in-production"),
		HistoryCacheLimit: getEnvInt("HISTORY_CACHE_LIMIT", 200),
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return defaultVal
}
