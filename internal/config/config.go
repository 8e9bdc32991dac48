package config

import (
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	App    AppConfig
	Log    LogConfig
	DB     DBConfig
	Redis  RedisConfig
	JWT    JWTConfig
	Gate   GateConfig
	Check  CheckConfig
	Verify VerifyConfig
	MinIO  MinIOConfig
	CORS   CORSConfig
}

type AppConfig struct {
	Env  string
	Port string
}

type LogConfig struct {
	Level string
}

type DBConfig struct {
	Driver     string // postgres | sqlite
	Host       string
	Port       string
	User       string
	Password   string
	Name       string
	SSLMode    string
	SQLitePath string
}

// DSN returns the PostgreSQL connection string
func (d DBConfig) DSN() string {
	return "host=" + d.Host +
		" user=" + d.User +
		" password=" + d.Password +
		" dbname=" + d.Name +
		" port=" + d.Port +
		" sslmode=" + d.SSLMode +
		" TimeZone=UTC"
}

// URL returns the PostgreSQL connection URL (for golang-migrate)
func (d DBConfig) URL() string {
	return "postgres://" + d.User + ":" + d.Password +
		"@" + d.Host + ":" + d.Port +
		"/" + d.Name + "?sslmode=" + d.SSLMode
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
}

// Addr returns the Redis address
func (r RedisConfig) Addr() string {
	return r.Host + ":" + r.Port
}

type JWTConfig struct {
	Secret string
	Expiry time.Duration // service tokens
}

// GateConfig controls the landing gate and the browser storage cookie
type GateConfig struct {
	MaxAge        time.Duration
	ValidTokenTTL time.Duration
	RenderTimeout time.Duration // 0 waits for the lookup indefinitely
	CookieName    string
	CookieSecure  bool
}

// CheckConfig points the gate at the verification store
type CheckConfig struct {
	APIURL   string        // empty uses the in-process store
	Timeout  time.Duration // 0 waits on the remote store indefinitely
	CacheTTL time.Duration
}

type VerifyConfig struct {
	RedirectURL     string
	Retention       time.Duration
	CleanupInterval time.Duration
}

type MinIOConfig struct {
	Endpoint  string
	PublicURL string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

type CORSConfig struct {
	Origins []string
}

// Load reads configuration from .env file and environment variables
func Load() *Config {
	// Load .env file (ignore error if not exists - e.g. in Docker)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment variables")
	}

	return &Config{
		App: AppConfig{
			Env:  getEnv("APP_ENV", "development"),
			Port: getEnv("APP_PORT", "8080"),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		DB: DBConfig{
			Driver:     getEnv("DB_DRIVER", "postgres"),
			Host:       getEnv("DB_HOST", "localhost"),
			Port:       getEnv("DB_PORT", "5432"),
			User:       getEnv("DB_USER", "blackhole"),
			Password:   getEnv("DB_PASSWORD", "blackhole"),
			Name:       getEnv("DB_NAME", "blackhole"),
			SSLMode:    getEnv("DB_SSLMODE", "disable"),
			SQLitePath: getEnv("SQLITE_PATH", "blackhole.db"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", "default-secret"),
			Expiry: getDuration("JWT_EXPIRY", 30*24*time.Hour),
		},
		Gate: GateConfig{
			MaxAge:        getDuration("GATE_MAX_AGE", 24*time.Hour),
			ValidTokenTTL: getDuration("VALID_TOKEN_TTL", 12*time.Hour),
			RenderTimeout: getDuration("GATE_RENDER_TIMEOUT", 0),
			CookieName:    getEnv("STORAGE_COOKIE_NAME", "bh_storage"),
			CookieSecure:  getEnv("STORAGE_COOKIE_SECURE", "false") == "true",
		},
		Check: CheckConfig{
			APIURL:   strings.TrimRight(getEnv("CHECK_API_URL", ""), "/"),
			Timeout:  getDuration("CHECK_TIMEOUT", 0),
			CacheTTL: getDuration("CHECK_CACHE_TTL", 30*time.Second),
		},
		Verify: VerifyConfig{
			RedirectURL:     getEnv("VERIFY_REDIRECT_URL", "https://t.me/+gZwK3ZfUANxiYjk1"),
			Retention:       getDuration("VERIFICATION_RETENTION", 48*time.Hour),
			CleanupInterval: getDuration("CLEANUP_INTERVAL", time.Hour),
		},
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", "localhost:9000"),
			PublicURL: getEnv("MINIO_PUBLIC_URL", ""),
			AccessKey: getEnv("MINIO_ACCESS_KEY", "minioadmin"),
			SecretKey: getEnv("MINIO_SECRET_KEY", "minioadmin"),
			Bucket:    getEnv("MINIO_BUCKET", "blackhole-posters"),
			UseSSL:    getEnv("MINIO_USE_SSL", "false") == "true",
		},
		CORS: CORSConfig{
			Origins: strings.Split(getEnv("CORS_ORIGINS", "http://localhost:3000"), ","),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(getEnv(key, fallback.String()))
	if err != nil {
		return fallback
	}
	return d
}
