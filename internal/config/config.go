package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port                  string
	AllowedOrigin         string
	DatabaseURL           string
	RedisAddr             string
	RedisPassword         string
	RedisDB               int
	WarungID              string
	SeedDemo              bool
	AuthSecret            string
	AccessTokenTTLMinutes int
	OwnerUsername         string
	OwnerPassword         string
	StaffUsername         string
	StaffPassword         string
}

// Load reads configuration from the environment, after loading .env when one
// exists. Missing optional values fall back to development defaults; secrets
// never do.
func Load() Config {
	_ = godotenv.Load()

	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	tokenTTL, err := strconv.Atoi(getEnv("ACCESS_TOKEN_TTL_MINUTES", "480"))
	if err != nil || tokenTTL < 1 {
		tokenTTL = 480
	}

	return Config{
		Port:                  getEnv("PORT", "8080"),
		AllowedOrigin:         getEnv("ALLOWED_ORIGIN", "http://127.0.0.1:3000"),
		DatabaseURL:           os.Getenv("DATABASE_URL"),
		RedisAddr:             os.Getenv("REDIS_ADDR"),
		RedisPassword:         os.Getenv("REDIS_PASSWORD"),
		RedisDB:               redisDB,
		WarungID:              getEnv("WARUNG_ID", "warung-main"),
		SeedDemo:              getEnv("SEED_DEMO", "false") == "true",
		AuthSecret:            strings.TrimSpace(os.Getenv("AUTH_SECRET")),
		AccessTokenTTLMinutes: tokenTTL,
		OwnerUsername:         getEnv("OWNER_USERNAME", "owner"),
		OwnerPassword:         strings.TrimSpace(os.Getenv("OWNER_PASSWORD")),
		StaffUsername:         getEnv("STAFF_USERNAME", "staff"),
		StaffPassword:         strings.TrimSpace(os.Getenv("STAFF_PASSWORD")),
	}
}

func (c Config) Address() string {
	return fmt.Sprintf(":%s", c.Port)
}

func getEnv(key string, fallback string) string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	return val
}
