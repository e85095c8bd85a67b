// Package config loads runtime configuration from environment
// variables.  Required variables are enforced with fatal helpers so a
// misconfigured deployment fails at startup, not mid-game.
package config

import (
	"log"
	"os"
	"time"
)

// Config holds all runtime configuration values.  Each field
// corresponds to an environment variable.
type Config struct {
	Env            string        // application environment (e.g. "dev", "prod")
	Port           string        // HTTP port to listen on
	DBUser         string        // database username
	DBPass         string        // database password (optional)
	DBHost         string        // database host address
	DBPort         string        // database port number
	DBName         string        // database name
	DBMaxConns     int           // connection pool size (open and idle)
	DBConnLifetime time.Duration // max age of a pooled connection
	JWTSecret      string        // secret used to verify bearer tokens
	AMQPURL        string        // broker URL for the play-by-play queue (optional)
}

// Load reads configuration from the environment.  Missing required
// variables cause a fatal log and exit.
func Load() Config {
	return Config{
		Env:            must("APP_ENV"),
		Port:           must("APP_PORT"),
		DBUser:         must("DB_USER"),
		DBPass:         os.Getenv("DB_PASS"),
		DBHost:         must("DB_HOST"),
		DBPort:         must("DB_PORT"),
		DBName:         must("DB_NAME"),
		DBMaxConns:     envInt("DB_MAX_CONNS", 25),
		DBConnLifetime: envDur("DB_CONN_LIFETIME", 30*time.Minute),
		JWTSecret:      must("JWT_SECRET"),
		AMQPURL:        os.Getenv("RABBITMQ_URL"),
	}
}

// must retrieves a required environment variable or exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}
