package config

import (
	"strings"
	"testing"
	"time"
)

func TestFromEnv_Defaults(t *testing.T) {
	for _, k := range []string{"HTTP_ADDR", "DB_DRIVER", "DB_DSN", "AUTH_HMAC_SECRET", "TOKEN_TTL", "BCRYPT_COST", "BLOB_BASE_PATH", "CORS_ORIGINS", "REQUEST_TIMEOUT"} {
		t.Setenv(k, "")
	}
	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if cfg.HTTPAddr != ":8080" || cfg.DBDriver != "sqlite" || cfg.TokenTTL != 30*time.Minute || cfg.BcryptCost != 12 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if len(cfg.CORSOrigins) != 1 || cfg.CORSOrigins[0] != "http://localhost:3000" {
		t.Fatalf("CORSOrigins = %v", cfg.CORSOrigins)
	}
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DB_DSN", "postgres://db/learn")
	t.Setenv("TOKEN_TTL", "2h")
	t.Setenv("BCRYPT_COST", "10")
	t.Setenv("CORS_ORIGINS", " https://a.example , https://b.example ,")
	t.Setenv("AUTH_HMAC_SECRET", "0123456789abcdef0123")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if cfg.DBDriver != "postgres" || cfg.DBDSN != "postgres://db/learn" {
		t.Fatalf("db = %s %s", cfg.DBDriver, cfg.DBDSN)
	}
	if cfg.TokenTTL != 2*time.Hour || cfg.BcryptCost != 10 {
		t.Fatalf("ttl=%s cost=%d", cfg.TokenTTL, cfg.BcryptCost)
	}
	if strings.Join(cfg.CORSOrigins, "|") != "https://a.example|https://b.example" {
		t.Fatalf("CORSOrigins = %v", cfg.CORSOrigins)
	}
}

func TestFromEnv_Rejects(t *testing.T) {
	cases := map[string][2]string{
		"unknown driver": {"DB_DRIVER", "mysql"},
		"short secret":   {"AUTH_HMAC_SECRET", "short"},
		"bcrypt too low": {"BCRYPT_COST", "2"},
	}
	for name, kv := range cases {
		t.Run(name, func(t *testing.T) {
			t.Setenv(kv[0], kv[1])
			if _, err := FromEnv(); err == nil {
				t.Fatalf("%s=%s accepted", kv[0], kv[1])
			}
		})
	}
}
