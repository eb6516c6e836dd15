package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config is read from the environment, optionally seeded from a .env file.
type Config struct {
	SiteToken string
	APIURL    string

	LogLevel  string
	LogFormat string
	GelfAddr  string
	SentryDSN string

	Dev DevConfig
}

// DevConfig configures the local dev server.
type DevConfig struct {
	Addr      string
	PublicURL string
	DBDriver  string
	DBDSN     string
	JWTSecret string
	OrgKey    string
	Seed      bool
	// MaxUploadMB caps the multipart body of a widget submission.
	MaxUploadMB int

	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool
}

// Load reads the configuration. files are .env files to try first; a
// missing file is not an error and existing variables are never overridden.
func Load(files ...string) *Config {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		_ = godotenv.Load(f)
	}

	addr := getEnv("DEV_ADDR", ":8787")
	return &Config{
		SiteToken: getEnv("AIFEATURES_SITE_TOKEN", ""),
		APIURL:    getEnv("AIFEATURES_API_URL", "https://aifeatures.dev"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),
		GelfAddr:  getEnv("GELF_ADDR", ""),
		SentryDSN: getEnv("SENTRY_DSN", ""),
		Dev: DevConfig{
			Addr:           addr,
			PublicURL:      getEnv("DEV_PUBLIC_URL", "http://localhost"+addr),
			DBDriver:       getEnv("DEV_DB_DRIVER", "sqlite"),
			DBDSN:          getEnv("DEV_DB_DSN", "file::memory:?cache=shared"),
			JWTSecret:      getEnv("DEV_JWT_SECRET", "aifeatures-dev-secret-change-me"),
			OrgKey:         getEnv("DEV_ORG_KEY", "sk_dev_organization_key"),
			Seed:           getEnvBool("DEV_SEED", true),
			MaxUploadMB:    getEnvInt("DEV_MAX_UPLOAD_MB", 10),
			MinioEndpoint:  getEnv("MINIO_ENDPOINT", ""),
			MinioAccessKey: getEnv("MINIO_ACCESS_KEY", "minioadmin"),
			MinioSecretKey: getEnv("MINIO_SECRET_KEY", "minioadmin"),
			MinioBucket:    getEnv("MINIO_BUCKET", "aifeatures-attachments"),
			MinioUseSSL:    getEnvBool("MINIO_USE_SSL", false),
		},
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
