package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DBDriver         string
	DBHost           string
	DBPort           string
	DBUser           string
	DBPassword       string
	DBName           string
	DBPath           string
	ServerPort       string
	PublicURL        string
	JWTSecret        string
	JWTExpiry        time.Duration
	StorageDir       string
	SignedURLTTL     time.Duration
	ReminderInterval time.Duration
	MaxUploadBytes   int64
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		slog.Warn("⚠️  No .env file found, using system environment variables")
	}

	port := getEnv("SERVER_PORT", "8080")
	return &Config{
		DBDriver:         getEnv("DB_DRIVER", "postgres"),
		DBHost:           getEnv("DB_HOST", "localhost"),
		DBPort:           getEnv("DB_PORT", "5432"),
		DBUser:           getEnv("DB_USER", "planner_user"),
		DBPassword:       getEnv("DB_PASSWORD", "planner_pass"),
		DBName:           getEnv("DB_NAME", "planner_db"),
		DBPath:           getEnv("DB_PATH", "data/planner.db"),
		ServerPort:       port,
		PublicURL:        getEnv("PUBLIC_URL", "http://localhost:"+port),
		JWTSecret:        getEnv("JWT_SECRET", "supersecretkey"),
		JWTExpiry:        time.Duration(getInt("JWT_EXPIRY_HOURS", 24)) * time.Hour,
		StorageDir:       getEnv("STORAGE_DIR", "data/objects"),
		SignedURLTTL:     getDuration("SIGNED_URL_TTL", time.Hour),
		ReminderInterval: getDuration("REMINDER_INTERVAL", time.Minute),
		MaxUploadBytes:   int64(getInt("MAX_UPLOAD_MB", 20)) * 1024 * 1024,
	}
}

// PostgresDSN builds the connection string for the postgres driver.
func (c *Config) PostgresDSN() string {
	return "host=" + c.DBHost + " port=" + c.DBPort + " user=" + c.DBUser +
		" password=" + c.DBPassword + " dbname=" + c.DBName + " sslmode=disable"
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}

func getInt(key string, defaultVal int) int {
	n, err := strconv.Atoi(getEnv(key, ""))
	if err != nil || n <= 0 {
		return defaultVal
	}
	return n
}

func getDuration(key string, defaultVal time.Duration) time.Duration {
	d, err := time.ParseDuration(getEnv(key, ""))
	if err != nil || d <= 0 {
		return defaultVal
	}
	return d
}
