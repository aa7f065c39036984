package config

import (
	"os"
	"strings"
	"time"
)

type Config struct {
	Env      string // "development" | "production"
	HTTPAddr string

	DBDriver string
	DBDSN    string

	// Optional redis topic cache; disabled when empty.
	CacheAddr string
	CacheTTL  time.Duration

	// Optional directory of starter-topic JSON files; skipped when empty.
	SeedDir string

	AuthSecret string
	TokenTTL   time.Duration

	AdminUser     string
	AdminPassHash string // bcrypt

	CORSOrigins []string
}

func FromEnv() Config {
	return Config{
		Env:           envOr("ENV", "development"),
		HTTPAddr:      envOr("HTTP_ADDR", ":8080"),
		DBDriver:      envOr("DB_DRIVER", "sqlite"),
		DBDSN:         envOr("DB_DSN", ""),
		CacheAddr:     os.Getenv("CACHE_ADDR"),
		CacheTTL:      durOr("CACHE_TTL", 5*time.Minute),
		SeedDir:       os.Getenv("SEED_DIR"),
		AuthSecret:    envOr("AUTH_HMAC_SECRET", "supersecret-dev-key"),
		TokenTTL:      durOr("TOKEN_TTL", 8*time.Hour),
		AdminUser:     envOr("ADMIN_USER", "admin"),
		AdminPassHash: envOr("ADMIN_PASS_HASH", "$2y$12$pyZAiWaTfVtM7UElIRStvOC3gNbnp70nmQU4eYopLGBfCJr1DOvji"),
		CORSOrigins:   csvOr("CORS_ORIGINS", "http://localhost:3000,http://localhost:5173"),
	}
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func durOr(k string, def time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
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
