package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr string `validate:"required"`

	DBDriver string `validate:"required,oneof=sqlite postgres pq"`
	DBDSN    string

	AuthHMACSecret string        `validate:"required,min=16"`
	TokenTTL       time.Duration `validate:"gt=0"`
	BcryptCost     int           `validate:"gte=4,lte=31"`

	BlobBasePath string `validate:"required"`

	CORSOrigins    []string      `validate:"required,dive,required"`
	RequestTimeout time.Duration `validate:"gt=0"`
}

// Load reads an optional .env file and then the environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("config: .env: %v", err)
	}
	return FromEnv()
}

// FromEnv builds the config from environment variables and validates it.
func FromEnv() (Config, error) {
	cfg := Config{
		HTTPAddr:       envOr("HTTP_ADDR", ":8080"),
		DBDriver:       envOr("DB_DRIVER", "sqlite"),
		DBDSN:          envOr("DB_DSN", ""),
		AuthHMACSecret: envOr("AUTH_HMAC_SECRET", "supersecret-dev-key"),
		TokenTTL:       envDuration("TOKEN_TTL", 30*time.Minute),
		BcryptCost:     envInt("BCRYPT_COST", 12),
		BlobBasePath:   envOr("BLOB_BASE_PATH", "./data"),
		CORSOrigins:    csvOr("CORS_ORIGINS", "http://localhost:3000"),
		RequestTimeout: envDuration("REQUEST_TIMEOUT", 30*time.Second),
	}
	if err := validator.New().Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return Config{}, fmt.Errorf("config: %w", err)
		}
		msgs := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			msgs = append(msgs, fmt.Sprintf("%s failed %q (value: %v)", fe.Field(), fe.Tag(), fe.Value()))
		}
		return Config{}, fmt.Errorf("config: %s", strings.Join(msgs, "; "))
	}
	return cfg, nil
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func envInt(k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("config: %s=%q is not an integer, using %d", k, v, def)
		return def
	}
	return n
}

func envDuration(k string, def time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("config: %s=%q is not a duration, using %s", k, v, def)
		return def
	}
	return d
}

func csvOr(k, def string) []string {
	v := envOr(k, def)
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
